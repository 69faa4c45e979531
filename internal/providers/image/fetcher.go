package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spritegen/internal/domain"
	"spritegen/internal/infra"
)

// DefaultMaxImageBytes caps a single download when FetcherOptions.MaxBytes is unset.
const DefaultMaxImageBytes int64 = 20 << 20

// ErrImageTooLarge is wrapped in a *domain.FetchError when a body exceeds the cap.
var ErrImageTooLarge = errors.New("image exceeds size limit")

// FetcherOptions configures the image downloader.
type FetcherOptions struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxBytes   int64
	Logger     *infra.Logger
}

// Fetcher downloads images referenced by URL. Each call is a single attempt.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *infra.Logger
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Fetcher{httpClient: client, maxBytes: maxBytes, logger: logger}
}

// FetchBytes GETs rawURL and returns the body. Transport failures and
// non-2xx statuses are reported as *domain.FetchError.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		if err == nil {
			err = fmt.Errorf("unsupported url %q", rawURL)
		}
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{URL: rawURL, Status: resp.StatusCode}
	}
	if resp.ContentLength > f.maxBytes {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("%w: %d bytes", ErrImageTooLarge, resp.ContentLength)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &domain.FetchError{URL: rawURL, Err: fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, f.maxBytes)}
	}
	f.logger.Debug().Str("url", rawURL).Int("bytes", len(data)).Msg("image fetched")
	return data, nil
}

// FetchBase64 downloads rawURL and returns its std base64 encoding.
func (f *Fetcher) FetchBase64(ctx context.Context, rawURL string) (string, error) {
	data, err := f.FetchBytes(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// FetchOutput downloads the primary image of a generation result and returns
// its bytes together with the URL that was used.
func (f *Fetcher) FetchOutput(ctx context.Context, out domain.GenerationResult) ([]byte, string, error) {
	primary, err := PrimaryURL(out)
	if err != nil {
		return nil, "", err
	}
	data, err := f.FetchBytes(ctx, primary)
	if err != nil {
		return nil, primary, err
	}
	return data, primary, nil
}

// PrimaryURL extracts the canonical URL from a generation result.
func PrimaryURL(out domain.GenerationResult) (string, error) {
	return out.PrimaryURL()
}

// DetectImageType sniffs an image MIME type, defaulting to image/png.
func DetectImageType(data []byte) string {
	if len(data) == 0 {
		return "image/png"
	}
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/png"
}
