package image

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"spritegen/internal/domain"
	"spritegen/internal/providers/replicate"
)

type replicateRunner interface {
	Run(context.Context, replicate.Input) (*replicate.Prediction, error)
	HasCredentials() bool
	Model() string
}

// ReplicateGenerator maps generation calls onto Replicate prediction inputs.
type ReplicateGenerator struct {
	client replicateRunner
}

// NewReplicateGenerator wires a Replicate client into the Generator contract.
func NewReplicateGenerator(client replicateRunner) *ReplicateGenerator {
	return &ReplicateGenerator{client: client}
}

// GenerateFromText produces an image from a prompt only.
func (g *ReplicateGenerator) GenerateFromText(ctx context.Context, prompt string, opts Options) (domain.GenerationResult, error) {
	input := baseInput(prompt, opts)
	return g.run(ctx, input)
}

// GenerateFromImage edits the reference image according to prompt. The aspect
// ratio always follows the reference image.
func (g *ReplicateGenerator) GenerateFromImage(ctx context.Context, prompt, referenceBase64 string, opts Options) (domain.GenerationResult, error) {
	ref := strings.TrimSpace(referenceBase64)
	if ref == "" {
		return domain.GenerationResult{}, &domain.GenerationError{Model: g.String(), Message: "reference image is empty"}
	}
	input := baseInput(prompt, opts)
	input["input_image"] = DataURI(ref)
	input["aspect_ratio"] = MatchInputAspectRatio
	return g.run(ctx, input)
}

func (g *ReplicateGenerator) String() string {
	if g == nil || g.client == nil {
		return "replicate"
	}
	return g.client.Model()
}

var _ Generator = (*ReplicateGenerator)(nil)

func (g *ReplicateGenerator) run(ctx context.Context, input replicate.Input) (domain.GenerationResult, error) {
	if g == nil || g.client == nil {
		return domain.GenerationResult{}, &domain.GenerationError{Message: "replicate generator not configured"}
	}
	if !g.client.HasCredentials() {
		return domain.GenerationResult{}, &domain.GenerationError{Model: g.String(), Err: replicate.ErrMissingAPIToken}
	}
	if p, _ := input["prompt"].(string); p == "" {
		return domain.GenerationResult{}, &domain.GenerationError{Model: g.String(), Message: "prompt is required"}
	}
	pred, err := g.client.Run(ctx, input)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyOutput) {
			return domain.GenerationResult{}, err
		}
		return domain.GenerationResult{}, &domain.GenerationError{Model: g.String(), Message: err.Error(), Err: err}
	}
	return pred.Output, nil
}

func baseInput(prompt string, opts Options) replicate.Input {
	input := replicate.Input{"prompt": strings.TrimSpace(prompt)}
	if opts.AspectRatio != "" {
		input["aspect_ratio"] = opts.AspectRatio
	}
	if opts.OutputFormat != "" {
		input["output_format"] = opts.OutputFormat
	}
	if opts.OutputQuality > 0 {
		input["output_quality"] = opts.OutputQuality
	}
	if opts.SafetyTolerance > 0 {
		input["safety_tolerance"] = opts.SafetyTolerance
	}
	return input
}

// DataURI embeds base64 image data, sniffing the MIME type from its header.
func DataURI(b64 string) string {
	mime := "image/png"
	head := b64
	if len(head) > 64 {
		head = head[:64]
	}
	if decoded, err := base64.StdEncoding.DecodeString(head[:len(head)/4*4]); err == nil {
		mime = DetectImageType(decoded)
	}
	return "data:" + mime + ";base64," + b64
}
