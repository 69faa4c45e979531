package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"spritegen/internal/domain"
)

const maxAnimateBody = 1 << 16

type animateRequest struct {
	ImageURL string `json:"image_url"`
	Frames   *int   `json:"frames"`
}

// Animate handles POST /animate/{animationType}.
func (a *App) Animate(w http.ResponseWriter, r *http.Request) {
	format, err := frameFormat(r)
	if err != nil {
		a.fail(w, r, err, false, "invalid request")
		return
	}
	var req animateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAnimateBody))
	if err := dec.Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation_error", "invalid JSON body: "+err.Error())
		return
	}
	if req.ImageURL == "" {
		a.error(w, http.StatusBadRequest, "validation_error", "image_url is required")
		return
	}
	frames := domain.DefaultAnimationFrames
	if req.Frames != nil {
		frames = *req.Frames
	}

	animationType := pathParam(r, "animationType")
	result, err := a.Animations.Animate(r.Context(), req.ImageURL, animationType, frames)
	if err != nil {
		// Only the caller's source image can produce a FetchError here.
		a.fail(w, r, err, errors.Is(err, domain.ErrFetch), "animation generation failed")
		return
	}
	a.writeFrames(w, r, format, string(result.AnimationType), result.Frames, result)
}
