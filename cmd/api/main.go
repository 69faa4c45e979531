package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spritegen/internal/http/handlers"
	httpapi "spritegen/internal/http/httpapi"
	"spritegen/internal/infra"
	"spritegen/internal/metrics"
	"spritegen/internal/providers/image"
	"spritegen/internal/providers/replicate"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	client, err := replicate.NewClient(replicate.Options{
		APIToken:       cfg.ReplicateAPIToken,
		BaseURL:        cfg.ReplicateBaseURL,
		Model:          cfg.ReplicateModel,
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
		PollInterval:   cfg.ReplicatePollInterval,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure replicate client")
	}
	fetcher := image.NewFetcher(image.FetcherOptions{
		Timeout:  cfg.FetchTimeout,
		MaxBytes: cfg.FetchMaxBytes,
		Logger:   &logger,
	})
	collector := metrics.NewCollector("spritegen")

	app := handlers.NewApp(cfg, logger, image.NewReplicateGenerator(client), fetcher, collector)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", client.Model()).Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
