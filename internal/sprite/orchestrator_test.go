package sprite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegen/internal/domain"
	"spritegen/internal/providers/image"
)

type generatorCall struct {
	prompt    string
	reference string
}

// fakeGenerator returns one URL per call and fails calls whose prompt
// contains any of failOn.
type fakeGenerator struct {
	mu        sync.Mutex
	textCalls []generatorCall
	imgCalls  []generatorCall
	textErr   error
	failOn    []string
	emptyOn   []string
}

func (g *fakeGenerator) GenerateFromText(ctx context.Context, prompt string, opts image.Options) (domain.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.textCalls = append(g.textCalls, generatorCall{prompt: prompt})
	if g.textErr != nil {
		return domain.GenerationResult{}, g.textErr
	}
	return domain.SingleResult("https://cdn.test/base.png"), nil
}

func (g *fakeGenerator) GenerateFromImage(ctx context.Context, prompt, reference string, opts image.Options) (domain.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.imgCalls = append(g.imgCalls, generatorCall{prompt: prompt, reference: reference})
	for _, needle := range g.failOn {
		if strings.Contains(prompt, needle) {
			return domain.GenerationResult{}, &domain.GenerationError{Model: "fake", Message: "upstream exploded: " + needle}
		}
	}
	for _, needle := range g.emptyOn {
		if strings.Contains(prompt, needle) {
			return domain.ListResult(nil), nil
		}
	}
	return domain.ListResult([]string{fmt.Sprintf("https://cdn.test/out-%d.png", len(g.imgCalls))}), nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	urls  []string
	data  map[string][]byte
	fail  map[string]bool
	empty []byte
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: map[string][]byte{}, fail: map[string]bool{}}
}

func (f *fakeFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.fail[url] {
		return nil, &domain.FetchError{URL: url, Status: 404}
	}
	if d, ok := f.data[url]; ok {
		return d, nil
	}
	return []byte("bytes of " + url), nil
}

type countingRecorder struct {
	ok, failed int
}

func (r *countingRecorder) RecordFrame(kind string, ok bool) {
	if ok {
		r.ok++
	} else {
		r.failed++
	}
}

func labels(frames []domain.Frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Label
	}
	return out
}

func assertExactlyOnePayload(t *testing.T, frames []domain.Frame) {
	t.Helper()
	for i, f := range frames {
		assert.Equal(t, i+1, f.Index)
		assert.NotEqual(t, f.Image == "", f.Error == "", "frame %d must carry exactly one of image or error", f.Index)
	}
}

var spriteLabels = []string{"idle", "left_facing", "right_facing", "jumping", "crouching", "attacking"}

func TestSpriteSetAllSucceed(t *testing.T) {
	gen := &fakeGenerator{}
	fetcher := newFakeFetcher()
	rec := &countingRecorder{}
	o := NewSetOrchestrator(Deps{Generator: gen, Fetcher: fetcher, Options: image.DefaultOptions(), Recorder: rec})

	result, err := o.Generate(context.Background(), "a pirate frog")
	require.NoError(t, err)

	assert.Equal(t, spriteLabels, labels(result.Sprites))
	assert.Equal(t, 6, result.Total)
	assert.Equal(t, 6, result.Successful)
	assert.Equal(t, "a pirate frog", result.Description)
	assertExactlyOnePayload(t, result.Sprites)
	assert.Equal(t, 6, rec.ok)

	require.Len(t, gen.textCalls, 1)
	assert.Contains(t, gen.textCalls[0].prompt, "a pirate frog")
	require.Len(t, gen.imgCalls, 5)
	baseRef := gen.imgCalls[0].reference
	for _, call := range gen.imgCalls {
		assert.Equal(t, baseRef, call.reference, "every variation must be conditioned on the base image")
	}
	assert.Equal(t, "https://cdn.test/base.png", fetcher.urls[0])
}

func TestSpriteSetIsolatesFailures(t *testing.T) {
	gen := &fakeGenerator{failOn: []string{"mid-jump"}, emptyOn: []string{"crouching"}}
	fetcher := newFakeFetcher()
	fetcher.fail["https://cdn.test/out-1.png"] = true
	o := NewSetOrchestrator(Deps{Generator: gen, Fetcher: fetcher})

	result, err := o.Generate(context.Background(), "a pirate frog")
	require.NoError(t, err)

	require.Len(t, result.Sprites, 6)
	assert.Equal(t, spriteLabels, labels(result.Sprites))
	assert.Equal(t, 3, result.Successful)
	assertExactlyOnePayload(t, result.Sprites)

	left := result.Sprites[1]
	assert.Contains(t, left.Error, "status 404")
	jumping := result.Sprites[3]
	assert.Contains(t, jumping.Error, "upstream exploded")
	crouching := result.Sprites[4]
	assert.Contains(t, crouching.Error, domain.ErrEmptyOutput.Error())
	assert.True(t, result.Sprites[2].OK())
	assert.True(t, result.Sprites[5].OK())
}

func TestSpriteSetAlwaysSixFramesWhenEverythingFails(t *testing.T) {
	gen := &fakeGenerator{failOn: []string{""}}
	o := NewSetOrchestrator(Deps{Generator: gen, Fetcher: newFakeFetcher()})

	result, err := o.Generate(context.Background(), "robot")
	require.NoError(t, err)
	assert.Len(t, result.Sprites, 6)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, spriteLabels, labels(result.Sprites))
}

func TestSpriteSetBaseFailureAborts(t *testing.T) {
	gen := &fakeGenerator{textErr: &domain.GenerationError{Model: "fake", Message: "quota exhausted"}}
	o := NewSetOrchestrator(Deps{Generator: gen, Fetcher: newFakeFetcher()})

	result, err := o.Generate(context.Background(), "robot")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeneration))
	assert.Contains(t, err.Error(), "quota exhausted")
	assert.Empty(t, gen.imgCalls)
}

func TestSpriteSetBaseDownloadFailureAborts(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fail["https://cdn.test/base.png"] = true
	gen := &fakeGenerator{}
	o := NewSetOrchestrator(Deps{Generator: gen, Fetcher: fetcher})

	result, err := o.Generate(context.Background(), "robot")
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Empty(t, gen.imgCalls)
}

func TestSpriteSetRequiresDescription(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewSetOrchestrator(Deps{Generator: gen, Fetcher: newFakeFetcher()})

	_, err := o.Generate(context.Background(), "   ")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, gen.textCalls)
}

func TestAnimateProducesRequestedFrameCount(t *testing.T) {
	for _, frames := range []int{2, 4, 5, 8} {
		t.Run(fmt.Sprintf("frames=%d", frames), func(t *testing.T) {
			gen := &fakeGenerator{}
			fetcher := newFakeFetcher()
			o := NewAnimationOrchestrator(Deps{Generator: gen, Fetcher: fetcher})

			result, err := o.Animate(context.Background(), "https://cdn.test/hero.png", "Walk", frames)
			require.NoError(t, err)
			assert.Equal(t, domain.AnimationWalk, result.AnimationType)
			require.Len(t, result.Frames, frames)
			assert.Equal(t, frames, result.Total)
			assert.Equal(t, frames, result.Successful)
			assertExactlyOnePayload(t, result.Frames)

			first := result.Frames[0]
			assert.Equal(t, domain.LabelBase, first.Label)
			assert.Equal(t, "https://cdn.test/hero.png", first.SourceURL)
			assert.Equal(t, []byte("bytes of https://cdn.test/hero.png"), first.Data())

			assert.Empty(t, gen.textCalls)
			require.Len(t, gen.imgCalls, frames-1)
			for _, call := range gen.imgCalls {
				assert.Equal(t, gen.imgCalls[0].reference, call.reference)
			}
		})
	}
}

func TestAnimateCyclesTemplatesPastTable(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewAnimationOrchestrator(Deps{Generator: gen, Fetcher: newFakeFetcher()})

	result, err := o.Animate(context.Background(), "https://cdn.test/hero.png", "jump", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "crouch", "rise", "peak", "crouch_2"}, labels(result.Frames))
	assert.Contains(t, gen.imgCalls[3].prompt, "pass 2")
}

func TestAnimateValidationHappensBeforeNetwork(t *testing.T) {
	cases := []struct {
		name   string
		kind   string
		frames int
	}{
		{name: "too few frames", kind: "walk", frames: 1},
		{name: "too many frames", kind: "walk", frames: 9},
		{name: "unknown type", kind: "teleport", frames: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			fetcher := newFakeFetcher()
			o := NewAnimationOrchestrator(Deps{Generator: gen, Fetcher: fetcher})

			result, err := o.Animate(context.Background(), "https://cdn.test/hero.png", tc.kind, tc.frames)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, domain.ErrValidation), "error = %v", err)
			assert.Empty(t, fetcher.urls)
			assert.Empty(t, gen.imgCalls)
		})
	}
}

func TestAnimateSourceFetchFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fail["https://cdn.test/hero.png"] = true
	gen := &fakeGenerator{}
	o := NewAnimationOrchestrator(Deps{Generator: gen, Fetcher: fetcher})

	_, err := o.Animate(context.Background(), "https://cdn.test/hero.png", "idle", 3)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Empty(t, gen.imgCalls)
}

func TestAnimateIsolatesFrameFailures(t *testing.T) {
	gen := &fakeGenerator{failOn: []string{"strike"}}
	o := NewAnimationOrchestrator(Deps{Generator: gen, Fetcher: newFakeFetcher()})

	result, err := o.Animate(context.Background(), "https://cdn.test/hero.png", "attack", 4)
	require.NoError(t, err)
	require.Len(t, result.Frames, 4)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, "strike", result.Frames[2].Label)
	assert.Contains(t, result.Frames[2].Error, "upstream exploded")
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComposeSheet(t *testing.T) {
	frames := []domain.Frame{
		domain.SucceededFrame(1, "base", solidPNG(t, 16, 16, color.NRGBA{R: 255, A: 255}), ""),
		domain.FailedFrame(2, "contact", errors.New("boom")),
		domain.SucceededFrame(3, "passing", solidPNG(t, 32, 32, color.NRGBA{B: 255, A: 255}), ""),
	}

	data, err := ComposeSheet(frames)
	require.NoError(t, err)

	sheet, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 48, sheet.Bounds().Dx())
	assert.Equal(t, 16, sheet.Bounds().Dy())

	_, _, _, a := sheet.At(20, 8).RGBA()
	assert.Zero(t, a, "failed frame cell should stay transparent")
	r, _, _, _ := sheet.At(4, 8).RGBA()
	assert.NotZero(t, r)
	_, _, b, _ := sheet.At(40, 8).RGBA()
	assert.NotZero(t, b)
}

func TestComposeSheetWithoutFrames(t *testing.T) {
	_, err := ComposeSheet([]domain.Frame{domain.FailedFrame(1, "base", errors.New("x"))})
	assert.ErrorIs(t, err, ErrNoFrames)
}
