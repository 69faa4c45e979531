package domain

import "strings"

// GenerationResult is the normalized provider output: either a single image
// URL or an ordered list of URLs whose first element is canonical.
type GenerationResult struct {
	URL  string
	URLs []string
	List bool
}

func SingleResult(url string) GenerationResult {
	return GenerationResult{URL: url}
}

func ListResult(urls []string) GenerationResult {
	return GenerationResult{URLs: append([]string(nil), urls...), List: true}
}

// PrimaryURL returns the canonical image URL. An empty list or an empty scalar
// yields ErrEmptyOutput.
func (r GenerationResult) PrimaryURL() (string, error) {
	if r.List {
		if len(r.URLs) == 0 {
			return "", ErrEmptyOutput
		}
		return r.URLs[0], nil
	}
	if strings.TrimSpace(r.URL) == "" {
		return "", ErrEmptyOutput
	}
	return r.URL, nil
}
