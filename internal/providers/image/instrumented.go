package image

import (
	"context"
	"time"

	"spritegen/internal/domain"
)

// CallObserver receives the outcome of every provider call.
type CallObserver interface {
	ObserveProviderCall(operation string, elapsed time.Duration, err error)
}

// InstrumentedGenerator reports each call of the wrapped Generator to an observer.
type InstrumentedGenerator struct {
	next     Generator
	observer CallObserver
}

func NewInstrumentedGenerator(next Generator, observer CallObserver) *InstrumentedGenerator {
	return &InstrumentedGenerator{next: next, observer: observer}
}

func (g *InstrumentedGenerator) GenerateFromText(ctx context.Context, prompt string, opts Options) (domain.GenerationResult, error) {
	start := time.Now()
	out, err := g.next.GenerateFromText(ctx, prompt, opts)
	g.observe("generate_from_text", start, err)
	return out, err
}

func (g *InstrumentedGenerator) GenerateFromImage(ctx context.Context, prompt, referenceBase64 string, opts Options) (domain.GenerationResult, error) {
	start := time.Now()
	out, err := g.next.GenerateFromImage(ctx, prompt, referenceBase64, opts)
	g.observe("generate_from_image", start, err)
	return out, err
}

func (g *InstrumentedGenerator) observe(operation string, start time.Time, err error) {
	if g.observer != nil {
		g.observer.ObserveProviderCall(operation, time.Since(start), err)
	}
}

var _ Generator = (*InstrumentedGenerator)(nil)
