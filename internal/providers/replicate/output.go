package replicate

import (
	"encoding/json"
	"fmt"
	"strings"

	"spritegen/internal/domain"
)

// ParseOutput normalizes a prediction output, which models return either as a
// single URL string or as a list of URL strings.
func ParseOutput(raw json.RawMessage) (domain.GenerationResult, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return domain.GenerationResult{}, fmt.Errorf("replicate: %w", domain.ErrEmptyOutput)
	}
	switch trimmed[0] {
	case '"':
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return domain.GenerationResult{}, fmt.Errorf("replicate: decode output: %w", err)
		}
		return domain.SingleResult(url), nil
	case '[':
		var urls []string
		if err := json.Unmarshal(raw, &urls); err != nil {
			return domain.GenerationResult{}, fmt.Errorf("replicate: decode output list: %w", err)
		}
		return domain.ListResult(urls), nil
	default:
		return domain.GenerationResult{}, fmt.Errorf("replicate: unexpected output shape: %.64s", trimmed)
	}
}
