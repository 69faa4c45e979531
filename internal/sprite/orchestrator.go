// Package sprite chains dependent image generations into sprite sets and
// animation frames. Every step after the base image is conditioned on that
// same base image, and a failing step only marks its own frame as failed.
package sprite

import (
	"context"
	"encoding/base64"
	"io"

	"github.com/rs/zerolog"

	"spritegen/internal/domain"
	"spritegen/internal/infra"
	"spritegen/internal/providers/image"
)

// Fetcher downloads image bytes.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// FrameRecorder is notified of every produced frame.
type FrameRecorder interface {
	RecordFrame(kind string, ok bool)
}

// Deps groups the collaborators shared by both orchestrators.
type Deps struct {
	Generator image.Generator
	Fetcher   Fetcher
	Options   image.Options
	Logger    *infra.Logger
	Recorder  FrameRecorder
}

func (d Deps) logger() *infra.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	l := zerolog.New(io.Discard)
	return &l
}

// step is one conditioned generation: a label and the prompt that produces it.
type step struct {
	label  string
	prompt string
	err    error
}

// base is the conditioning image reused by every step.
type base struct {
	data      []byte
	encoded   string
	sourceURL string
}

func newBase(data []byte, sourceURL string) base {
	return base{data: data, encoded: base64.StdEncoding.EncodeToString(data), sourceURL: sourceURL}
}

// conditionedFrames folds steps into frames, starting with the base frame at
// index 1. It never drops a step: failures become error frames.
func (d Deps) conditionedFrames(ctx context.Context, kind, baseLabel string, b base, steps []step) []domain.Frame {
	log := d.logger()
	frames := make([]domain.Frame, 0, len(steps)+1)
	frames = append(frames, domain.SucceededFrame(1, baseLabel, b.data, b.sourceURL))
	d.record(kind, frames[0])

	for i, s := range steps {
		index := i + 2
		frame := d.runStep(ctx, index, s, b)
		if !frame.OK() {
			log.Warn().
				Str("kind", kind).
				Int("frame", index).
				Str("label", s.label).
				Str("error", frame.Error).
				Msg("frame generation failed")
		}
		d.record(kind, frame)
		frames = append(frames, frame)
	}
	return frames
}

func (d Deps) runStep(ctx context.Context, index int, s step, b base) domain.Frame {
	if s.err != nil {
		return domain.FailedFrame(index, s.label, s.err)
	}
	if err := ctx.Err(); err != nil {
		return domain.FailedFrame(index, s.label, err)
	}
	out, err := d.Generator.GenerateFromImage(ctx, s.prompt, b.encoded, d.Options)
	if err != nil {
		return domain.FailedFrame(index, s.label, err)
	}
	url, err := out.PrimaryURL()
	if err != nil {
		return domain.FailedFrame(index, s.label, err)
	}
	data, err := d.Fetcher.FetchBytes(ctx, url)
	if err != nil {
		return domain.FailedFrame(index, s.label, err)
	}
	return domain.SucceededFrame(index, s.label, data, url)
}

func (d Deps) record(kind string, f domain.Frame) {
	if d.Recorder != nil {
		d.Recorder.RecordFrame(kind, f.OK())
	}
}
