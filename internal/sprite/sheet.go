package sprite

import (
	"bytes"
	"errors"
	"fmt"
	stdimage "image"
	"image/png"

	// Decoders for provider output formats.
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"

	"spritegen/internal/domain"
)

// ErrNoFrames is returned when a sheet is requested but no frame succeeded.
var ErrNoFrames = errors.New("sprite: no successful frames to compose")

// ComposeSheet lays the frames out left to right in one PNG strip. Every cell
// has the height of the first decodable frame; failed or undecodable frames
// leave a transparent cell so positions keep their frame index.
func ComposeSheet(frames []domain.Frame) ([]byte, error) {
	decoded := make([]stdimage.Image, len(frames))
	cellH := 0
	for i, f := range frames {
		data := f.Data()
		if len(data) == 0 {
			continue
		}
		img, _, err := stdimage.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		decoded[i] = img
		if cellH == 0 {
			cellH = img.Bounds().Dy()
		}
	}
	if cellH == 0 {
		return nil, ErrNoFrames
	}

	widths := make([]int, len(frames))
	total := 0
	for i, img := range decoded {
		w := cellH
		if img != nil {
			b := img.Bounds()
			w = b.Dx() * cellH / b.Dy()
			if w <= 0 {
				w = 1
			}
		}
		widths[i] = w
		total += w
	}

	sheet := stdimage.NewNRGBA(stdimage.Rect(0, 0, total, cellH))
	x := 0
	for i, img := range decoded {
		cell := stdimage.Rect(x, 0, x+widths[i], cellH)
		if img != nil {
			draw.CatmullRom.Scale(sheet, cell, img, img.Bounds(), draw.Over, nil)
		}
		x += widths[i]
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return nil, fmt.Errorf("sprite: encode sheet: %w", err)
	}
	return buf.Bytes(), nil
}
