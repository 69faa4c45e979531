package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"spritegen/internal/http/handlers"
	"spritegen/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger, app.Metrics))
	if app.Config != nil && len(app.Config.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	}

	r.Get("/", app.Landing)
	r.Get("/health", app.Health)
	if app.Metrics != nil {
		r.Method(stdhttp.MethodGet, "/metrics", app.Metrics.Handler())
	}

	// Images
	r.Get("/img/{prompt}", app.GenerateImage)
	r.Get("/img/{prompt}/{editPrompt}", app.GenerateAndEditImage)
	r.Get("/edit/{imageUrl}/{editPrompt}", app.EditImage)
	r.Get("/edit/*", app.EditImageRaw)

	// Sprites
	r.Get("/spritegen/{description}", app.GenerateSprite)
	r.Get("/spritegen-multi/{description}", app.GenerateSpriteSet)
	r.Post("/animate/{animationType}", app.Animate)

	return r
}
