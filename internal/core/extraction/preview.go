package extraction

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// previewPolicy allows the markup RenderDOCX and textPreview produce and
// nothing else of note.
func previewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("article", "pre")
	p.AllowAttrs("class").OnElements("article", "p", "pre")
	return p
}

func textPreview(text string) string {
	return `<pre class="plain">` + html.EscapeString(text) + `</pre>`
}
