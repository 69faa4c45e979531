package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"spritegen/internal/domain"
	"spritegen/internal/providers/image"
	"spritegen/internal/sprite"
	"spritegen/pkg/zip"
)

const (
	formatJSON  = "json"
	formatZip   = "zip"
	formatSheet = "sheet"
)

// frameFormat reads ?format= and rejects unknown values before any work is done.
func frameFormat(r *http.Request) (string, error) {
	f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch f {
	case "", formatJSON:
		return formatJSON, nil
	case formatZip, formatSheet:
		return f, nil
	}
	return "", domain.NewValidationError("format", fmt.Sprintf("unsupported format %q (json, zip, sheet)", f))
}

// writeFrames renders frames in the requested format. body is the JSON payload.
func (a *App) writeFrames(w http.ResponseWriter, r *http.Request, format, name string, frames []domain.Frame, body any) {
	switch format {
	case formatZip:
		assets := make([]zip.Asset, 0, len(frames))
		for _, f := range frames {
			data := f.Data()
			if data == nil {
				continue
			}
			assets = append(assets, zip.Asset{
				Filename: fmt.Sprintf("%02d-%s", f.Index, f.Label),
				MIME:     image.DetectImageType(data),
				Data:     data,
			})
		}
		archive, err := zip.ArchiveAssets(assets)
		if err != nil {
			a.fail(w, r, err, false, "failed to build archive")
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(archive)
	case formatSheet:
		sheet, err := sprite.ComposeSheet(frames)
		if err != nil {
			a.fail(w, r, err, false, "failed to compose sprite sheet")
			return
		}
		a.image(w, sheet)
	default:
		a.json(w, http.StatusOK, body)
	}
}

// archiveName turns free text into a safe attachment file name.
func archiveName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
		if b.Len() >= 48 {
			break
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "sprites"
	}
	return name
}
