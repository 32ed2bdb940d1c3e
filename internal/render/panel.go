// Package render draws a review as the HTML suggestion panel: plain text,
// pending suggestions with accept and reject controls, and decided ones in
// their final form.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var panelTmpl = template.Must(template.New("panel.html").
	Funcs(template.FuncMap{
		"accepted":  func(d models.Decision) bool { return d == models.Accepted },
		"rejected":  func(d models.Decision) bool { return d == models.Rejected },
		"isText":    func(k models.SegmentKind) bool { return k == models.SegmentText },
		"isNotice":  func(k models.SegmentKind) bool { return k == models.SegmentNotice },
		"isSuggest": func(k models.SegmentKind) bool { return k == models.SegmentSuggestion },
	}).
	ParseFS(templateFS, "templates/panel.html"))

// View is what the panel template receives.
type View struct {
	Status    models.ReviewStatus
	FileName  string
	Warning   string
	Segments  []models.Segment
	ActionURL string // prefix of the accept/reject endpoints
}

// NewView builds the template input for r. actionURL is the path the
// accept and reject buttons post to, followed by /{id}/accept|reject.
func NewView(r models.Review, actionURL string) View {
	return View{
		Status:    r.Status,
		FileName:  r.FileName,
		Warning:   r.Warning,
		Segments:  r.Segments,
		ActionURL: actionURL,
	}
}

// Panel writes the suggestion panel for v to w.
func Panel(w io.Writer, v View) error {
	return panelTmpl.Execute(w, v)
}

// PanelString is Panel into a string.
func PanelString(v View) (string, error) {
	var buf bytes.Buffer
	if err := Panel(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
