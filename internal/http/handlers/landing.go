package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"spritegen/internal/domain"
)

//go:embed templates/index.html
var landingHTML string

var landingTemplate = template.Must(template.New("index").Parse(landingHTML))

type landingAnimation struct {
	Slug  string
	Title string
}

type landingData struct {
	Model      string
	Animations []landingAnimation
	Variations []string
	MinFrames  int
	MaxFrames  int
}

// Landing handles GET / with a short usage page.
func (a *App) Landing(w http.ResponseWriter, r *http.Request) {
	title := cases.Title(language.English)
	data := landingData{
		Variations: append([]string{domain.LabelIdle}, domain.SpriteVariations...),
		MinFrames:  domain.MinAnimationFrames,
		MaxFrames:  domain.MaxAnimationFrames,
	}
	if a.Config != nil {
		data.Model = a.Config.ReplicateModel
	}
	for _, t := range domain.AnimationTypes {
		data.Animations = append(data.Animations, landingAnimation{Slug: string(t), Title: title.String(string(t))})
	}

	var buf bytes.Buffer
	if err := landingTemplate.Execute(&buf, data); err != nil {
		a.fail(w, r, err, false, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
