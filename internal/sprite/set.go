package sprite

import (
	"context"
	"fmt"
	"strings"

	"spritegen/internal/domain"
	"spritegen/internal/providers/image"
)

// SetOrchestrator builds a six-pose sprite set: an idle base sprite generated
// from text, then five poses each conditioned on that base.
type SetOrchestrator struct {
	deps Deps
}

func NewSetOrchestrator(deps Deps) *SetOrchestrator {
	return &SetOrchestrator{deps: deps}
}

// Generate runs the sprite set pipeline. Only a failure of the base
// generation or base download aborts; the result then holds no frames.
func (o *SetOrchestrator) Generate(ctx context.Context, description string) (*domain.SpriteSetResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("description", "description is required")
	}
	log := o.deps.logger()

	out, err := o.deps.Generator.GenerateFromText(ctx, image.SpriteBasePrompt(description), o.deps.Options)
	if err != nil {
		return nil, fmt.Errorf("generate base sprite: %w", err)
	}
	url, err := out.PrimaryURL()
	if err != nil {
		return nil, fmt.Errorf("generate base sprite: %w", err)
	}
	data, err := o.deps.Fetcher.FetchBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download base sprite: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download base sprite: %w", domain.ErrEmptyOutput)
	}
	log.Debug().Str("description", description).Str("url", url).Msg("base sprite ready")

	steps := make([]step, 0, len(domain.SpriteVariations))
	for _, variation := range domain.SpriteVariations {
		prompt, err := image.SpriteVariationPrompt(description, variation)
		steps = append(steps, step{label: variation, prompt: prompt, err: err})
	}

	frames := o.deps.conditionedFrames(ctx, "sprite", domain.LabelIdle, newBase(data, url), steps)
	result := domain.NewSpriteSetResult(description, frames)
	log.Info().
		Str("description", description).
		Int("total", result.Total).
		Int("successful", result.Successful).
		Msg("sprite set generated")
	return result, nil
}
