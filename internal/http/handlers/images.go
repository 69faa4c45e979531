package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"spritegen/internal/domain"
)

// GenerateImage handles GET /img/{prompt}.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	prompt := pathParam(r, "prompt")
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "validation_error", "prompt is required")
		return
	}
	data, err := a.generate(r.Context(), prompt)
	if err != nil {
		a.fail(w, r, err, false, "image generation failed")
		return
	}
	a.image(w, data)
}

// GenerateAndEditImage handles GET /img/{prompt}/{editPrompt}: one generation
// followed by one edit conditioned on its output.
func (a *App) GenerateAndEditImage(w http.ResponseWriter, r *http.Request) {
	prompt := pathParam(r, "prompt")
	editPrompt := pathParam(r, "editPrompt")
	if prompt == "" || editPrompt == "" {
		a.error(w, http.StatusBadRequest, "validation_error", "prompt and edit prompt are required")
		return
	}
	base, err := a.generate(r.Context(), prompt)
	if err != nil {
		a.fail(w, r, err, false, "image generation and editing failed")
		return
	}
	data, err := a.edit(r.Context(), editPrompt, base64.StdEncoding.EncodeToString(base))
	if err != nil {
		a.fail(w, r, err, false, "image generation and editing failed")
		return
	}
	a.image(w, data)
}

// EditImage handles GET /edit/{imageUrl}/{editPrompt} where imageUrl is path-escaped.
func (a *App) EditImage(w http.ResponseWriter, r *http.Request) {
	a.editFromURL(w, r, pathParam(r, "imageUrl"), pathParam(r, "editPrompt"))
}

// EditImageRaw handles GET /edit/* for unescaped image URLs such as
// /edit/https://example.com/cat.png/make it blue. The last segment is the prompt.
func (a *App) EditImageRaw(w http.ResponseWriter, r *http.Request) {
	rest := pathParam(r, "*")
	idx := strings.LastIndex(rest, "/")
	if idx <= 0 {
		a.error(w, http.StatusBadRequest, "validation_error", "expected /edit/{imageUrl}/{editPrompt}")
		return
	}
	a.editFromURL(w, r, repairScheme(rest[:idx]), strings.TrimSpace(rest[idx+1:]))
}

func (a *App) editFromURL(w http.ResponseWriter, r *http.Request, imageURL, editPrompt string) {
	if imageURL == "" || editPrompt == "" {
		a.error(w, http.StatusBadRequest, "validation_error", "image url and edit prompt are required")
		return
	}
	source, err := a.Fetcher.FetchBase64(r.Context(), imageURL)
	if err != nil {
		a.fail(w, r, err, true, "failed to download image")
		return
	}
	data, err := a.edit(r.Context(), editPrompt, source)
	if err != nil {
		a.fail(w, r, err, false, "image editing failed")
		return
	}
	a.image(w, data)
}

func (a *App) generate(ctx context.Context, prompt string) ([]byte, error) {
	out, err := a.Generator.GenerateFromText(ctx, prompt, a.Options)
	if err != nil {
		return nil, err
	}
	data, _, err := a.Fetcher.FetchOutput(ctx, out)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyOutput
	}
	return data, nil
}

func (a *App) edit(ctx context.Context, prompt, referenceBase64 string) ([]byte, error) {
	out, err := a.Generator.GenerateFromImage(ctx, prompt, referenceBase64, a.Options)
	if err != nil {
		return nil, err
	}
	data, _, err := a.Fetcher.FetchOutput(ctx, out)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyOutput
	}
	return data, nil
}

// repairScheme restores the double slash that some proxies collapse in
// "https://" when a URL travels inside a path.
func repairScheme(raw string) string {
	for _, scheme := range []string{"https:/", "http:/"} {
		if strings.HasPrefix(raw, scheme) && !strings.HasPrefix(raw, scheme+"/") {
			return scheme + "/" + strings.TrimPrefix(raw, scheme)
		}
	}
	return raw
}
