package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxDocumentXML bounds the decompressed size of word/document.xml.
const maxDocumentXML = 64 << 20

// RenderDOCX renders the body of a .docx file into an HTML container with
// one <p> element per Word paragraph.
func RenderDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("word/document.xml not found in archive")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return renderBody(io.LimitReader(rc, maxDocumentXML))
}

type runStyle struct {
	bold, italic bool
}

func renderBody(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var out strings.Builder
	out.WriteString(`<article class="docx">`)

	var (
		inPara  bool
		inRun   bool
		inRPr   bool
		inText  bool
		style   string
		run     runStyle
		content strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				style = ""
				content.Reset()
			case "pStyle":
				style = attr(t, "val")
			case "r":
				inRun = true
				run = runStyle{}
			case "rPr":
				inRPr = true
			case "b":
				if inRPr && attr(t, "val") != "0" && attr(t, "val") != "false" {
					run.bold = true
				}
			case "i":
				if inRPr && attr(t, "val") != "0" && attr(t, "val") != "false" {
					run.italic = true
				}
			case "t":
				inText = inRun
			case "tab":
				if inPara && inRun && !inRPr {
					content.WriteString("\t")
				}
			case "br", "cr":
				if inPara && inRun {
					content.WriteString("<br>")
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "rPr":
				inRPr = false
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				if inPara {
					writeParagraph(&out, style, content.String())
					inPara = false
				}
			}

		case xml.CharData:
			if inPara && inText {
				writeRun(&content, run, string(t))
			}
		}
	}

	out.WriteString(`</article>`)
	return out.String(), nil
}

func writeRun(b *strings.Builder, s runStyle, text string) {
	text = html.EscapeString(text)
	if s.bold {
		text = "<strong>" + text + "</strong>"
	}
	if s.italic {
		text = "<em>" + text + "</em>"
	}
	b.WriteString(text)
}

func writeParagraph(b *strings.Builder, style, inner string) {
	if style != "" {
		fmt.Fprintf(b, `<p class="%s">`, html.EscapeString(strings.ToLower(style)))
	} else {
		b.WriteString("<p>")
	}
	b.WriteString(inner)
	b.WriteString("</p>")
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Paragraphs reads the text of every <p> element of a rendered document,
// trimmed, in document order. Empty paragraphs are kept.
func Paragraphs(rendered string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parse rendered docx: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		s.Find("br").ReplaceWithHtml("\n")
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
	})
	return paragraphs, nil
}
