package image

import (
	"context"

	"spritegen/internal/domain"
)

// Options are passed through to the model unmodified.
type Options struct {
	AspectRatio     string
	OutputFormat    string
	OutputQuality   int
	SafetyTolerance int
}

// DefaultOptions mirrors the service defaults used when no configuration is supplied.
func DefaultOptions() Options {
	return Options{
		AspectRatio:     "1:1",
		OutputFormat:    "png",
		OutputQuality:   80,
		SafetyTolerance: 2,
	}
}

// MatchInputAspectRatio asks the model to keep the reference image proportions.
const MatchInputAspectRatio = "match_input_image"

// Generator is the contract implemented by image providers: generate from a
// text prompt, or edit a base64-encoded reference image with a prompt.
type Generator interface {
	GenerateFromText(ctx context.Context, prompt string, opts Options) (domain.GenerationResult, error)
	GenerateFromImage(ctx context.Context, prompt, referenceBase64 string, opts Options) (domain.GenerationResult, error)
}
