package infra

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"spritegen/internal/domain"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	ReplicateAPIToken     string
	ReplicateBaseURL      string
	ReplicateModel        string
	ReplicatePollInterval time.Duration

	ImageAspectRatio     string
	ImageOutputFormat    string
	ImageOutputQuality   int
	ImageSafetyTolerance int

	ProviderTimeout time.Duration
	FetchTimeout    time.Duration
	FetchMaxBytes   int64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	CORSAllowedOrigins []string
}

// writeTimeoutSlack covers request decoding, sheet composition and response encoding.
const writeTimeoutSlack = 30 * time.Second

// LongestRequest is the worst-case duration of the longest endpoint: an animation
// with the maximum frame count fetches the source once and then runs one
// provider call plus one download per generated frame, all sequentially.
// HTTP_WRITE_TIMEOUT_SECONDS defaults to this value.
func (c *Config) LongestRequest() time.Duration {
	steps := time.Duration(domain.MaxAnimationFrames - 1)
	return c.FetchTimeout + steps*(c.ProviderTimeout+c.FetchTimeout) + writeTimeoutSlack
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8000"),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		ReplicateAPIToken:     strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateBaseURL:      getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ReplicateModel:        getEnv("REPLICATE_MODEL", "black-forest-labs/flux-kontext-pro"),
		ReplicatePollInterval: time.Millisecond * time.Duration(getEnvInt("REPLICATE_POLL_INTERVAL_MS", 1000)),
		ImageAspectRatio:      getEnv("IMAGE_ASPECT_RATIO", "1:1"),
		ImageOutputFormat:     getEnv("IMAGE_OUTPUT_FORMAT", "png"),
		ImageOutputQuality:    getEnvInt("IMAGE_OUTPUT_QUALITY", 80),
		ImageSafetyTolerance:  getEnvInt("IMAGE_SAFETY_TOLERANCE", 2),
		ProviderTimeout:       time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)),
		FetchTimeout:          time.Second * time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 45)),
		FetchMaxBytes:         int64(getEnvInt("FETCH_MAX_BYTES", 20<<20)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
	}
	cfg.HTTPWriteTimeout = time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", int(cfg.LongestRequest()/time.Second)))

	if cfg.ReplicateAPIToken == "" {
		return nil, errors.New("REPLICATE_API_TOKEN is required")
	}
	if !strings.Contains(cfg.ReplicateModel, "/") {
		return nil, errors.New("REPLICATE_MODEL must look like owner/name")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
