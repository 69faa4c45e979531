package handlers

import (
	"net/http"

	"spritegen/internal/providers/image"
)

// GenerateSprite handles GET /spritegen/{description}.
func (a *App) GenerateSprite(w http.ResponseWriter, r *http.Request) {
	description := pathParam(r, "description")
	if description == "" {
		a.error(w, http.StatusBadRequest, "validation_error", "description is required")
		return
	}
	data, err := a.generate(r.Context(), image.StylizedSpritePrompt(description))
	if err != nil {
		a.fail(w, r, err, false, "sprite generation failed")
		return
	}
	a.image(w, data)
}

// GenerateSpriteSet handles GET /spritegen-multi/{description}.
func (a *App) GenerateSpriteSet(w http.ResponseWriter, r *http.Request) {
	format, err := frameFormat(r)
	if err != nil {
		a.fail(w, r, err, false, "invalid request")
		return
	}
	description := pathParam(r, "description")
	result, err := a.Sprites.Generate(r.Context(), description)
	if err != nil {
		a.fail(w, r, err, false, "sprite set generation failed")
		return
	}
	a.writeFrames(w, r, format, archiveName(description), result.Sprites, result)
}
