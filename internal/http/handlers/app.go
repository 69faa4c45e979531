package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"spritegen/internal/domain"
	"spritegen/internal/infra"
	"spritegen/internal/metrics"
	"spritegen/internal/providers/image"
	"spritegen/internal/sprite"
)

type imageFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	FetchBase64(ctx context.Context, url string) (string, error)
	FetchOutput(ctx context.Context, out domain.GenerationResult) ([]byte, string, error)
}

type spriteSetGenerator interface {
	Generate(ctx context.Context, description string) (*domain.SpriteSetResult, error)
}

type animator interface {
	Animate(ctx context.Context, imageURL, animationType string, frames int) (*domain.AnimationResult, error)
}

type App struct {
	Config     *infra.Config
	Logger     zerolog.Logger
	Generator  image.Generator
	Fetcher    imageFetcher
	Options    image.Options
	Sprites    spriteSetGenerator
	Animations animator
	Metrics    *metrics.Collector
}

// NewApp wires the generator, fetcher and orchestrators used by the handlers.
// The generator is instrumented when a collector is supplied.
func NewApp(cfg *infra.Config, logger zerolog.Logger, gen image.Generator, fetcher imageFetcher, collector *metrics.Collector) *App {
	opts := image.DefaultOptions()
	if cfg != nil {
		opts = image.Options{
			AspectRatio:     cfg.ImageAspectRatio,
			OutputFormat:    cfg.ImageOutputFormat,
			OutputQuality:   cfg.ImageOutputQuality,
			SafetyTolerance: cfg.ImageSafetyTolerance,
		}
	}
	if collector != nil {
		gen = image.NewInstrumentedGenerator(gen, collector)
	}
	deps := sprite.Deps{
		Generator: gen,
		Fetcher:   fetcher,
		Options:   opts,
		Logger:    &logger,
	}
	if collector != nil {
		deps.Recorder = collector
	}
	return &App{
		Config:     cfg,
		Logger:     logger,
		Generator:  gen,
		Fetcher:    fetcher,
		Options:    opts,
		Sprites:    sprite.NewSetOrchestrator(deps),
		Animations: sprite.NewAnimationOrchestrator(deps),
		Metrics:    collector,
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	var body errorBody
	body.Error.Code = kind
	body.Error.Message = message
	a.json(w, code, body)
}

// fail maps err onto a status code. sourceFetch marks errors raised while
// downloading a caller-supplied image, which are the caller's fault.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, sourceFetch bool, action string) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, kind = http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrFetch) && sourceFetch:
		status, kind = http.StatusBadRequest, "fetch_error"
	case errors.Is(err, domain.ErrFetch):
		kind = "fetch_error"
	case errors.Is(err, domain.ErrEmptyOutput):
		kind = "empty_output"
	case errors.Is(err, domain.ErrGeneration):
		kind = "generation_error"
	}
	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("kind", kind).Msg(action)
	a.error(w, status, kind, action+": "+err.Error())
}

func (a *App) image(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", image.DetectImageType(data))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// pathParam returns the decoded value of a chi URL parameter. chi routes on
// RawPath when the request carries escaped slashes, and only then are the
// parameters still escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if v, err := url.PathUnescape(raw); err == nil {
			raw = v
		}
	}
	return strings.TrimSpace(raw)
}
