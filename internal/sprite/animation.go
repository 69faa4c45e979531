package sprite

import (
	"context"
	"fmt"
	"strings"

	"spritegen/internal/domain"
	"spritegen/internal/providers/image"
)

// AnimationOrchestrator turns a caller-supplied image into animation frames,
// each conditioned on that image.
type AnimationOrchestrator struct {
	deps Deps
}

func NewAnimationOrchestrator(deps Deps) *AnimationOrchestrator {
	return &AnimationOrchestrator{deps: deps}
}

// ValidateAnimation checks the animation type and frame count without any
// network call.
func ValidateAnimation(animationType string, frames int) (domain.AnimationType, error) {
	t, ok := domain.ParseAnimationType(animationType)
	if !ok {
		names := make([]string, len(domain.AnimationTypes))
		for i, at := range domain.AnimationTypes {
			names[i] = string(at)
		}
		return "", &domain.ValidationError{
			Field:   "animation_type",
			Message: fmt.Sprintf("unknown animation type %q, expected one of %s", animationType, strings.Join(names, ", ")),
			Err:     domain.ErrUnknownAnimationType,
		}
	}
	if frames < domain.MinAnimationFrames || frames > domain.MaxAnimationFrames {
		return "", domain.NewValidationError("frames",
			fmt.Sprintf("frames must be between %d and %d, got %d", domain.MinAnimationFrames, domain.MaxAnimationFrames, frames))
	}
	return t, nil
}

// Animate produces exactly frames entries: the caller image followed by
// frames-1 generated frames. Validation happens before any network call.
func (o *AnimationOrchestrator) Animate(ctx context.Context, imageURL, animationType string, frames int) (*domain.AnimationResult, error) {
	t, err := ValidateAnimation(animationType, frames)
	if err != nil {
		return nil, err
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, domain.NewValidationError("image_url", "image_url is required")
	}
	log := o.deps.logger()

	data, err := o.deps.Fetcher.FetchBytes(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("download source image: %w", err)
	}
	if len(data) == 0 {
		return nil, &domain.FetchError{URL: imageURL, Err: domain.ErrEmptyOutput}
	}

	steps := make([]step, 0, frames-1)
	for i := 0; i < frames-1; i++ {
		prompt, name, err := image.AnimationStepPrompt(t, i)
		steps = append(steps, step{label: name, prompt: prompt, err: err})
	}

	result := domain.NewAnimationResult(t, o.deps.conditionedFrames(ctx, "animation", domain.LabelBase, newBase(data, imageURL), steps))
	log.Info().
		Str("animation_type", string(t)).
		Int("total", result.Total).
		Int("successful", result.Successful).
		Msg("animation generated")
	return result, nil
}
