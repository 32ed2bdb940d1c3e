// Package extraction turns uploaded PDF, DOCX and text files into one
// normalized text string plus a preview.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatText = "text"
)

// ErrNoText is returned by page sources that found nothing to extract.
var ErrNoText = errors.New("extraction: no text content")

// PageSource yields the text of every page of a PDF, in page order 1..N.
type PageSource interface {
	Pages(ctx context.Context, data []byte) ([]string, error)
}

var _ core.DocumentExtractor = (*Extractor)(nil)

// Extractor dispatches on the declared MIME type. PDF and DOCX files that
// cannot be parsed fall through to the plain-text path.
type Extractor struct {
	pdf      PageSource
	fallback PageSource
	policy   *bluemonday.Policy
	logger   *slog.Logger
}

type Option func(*Extractor)

// WithFallback sets a page source tried when the primary one fails or finds
// no readable text.
func WithFallback(ps PageSource) Option {
	return func(e *Extractor) { e.fallback = ps }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

func NewExtractor(pdf PageSource, opts ...Option) *Extractor {
	e := &Extractor{
		pdf:    pdf,
		policy: previewPolicy(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Extractor) Extract(ctx context.Context, data []byte, contentType string) (*core.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch mediaType(contentType) {
	case MimePDF:
		res, err := e.extractPDF(ctx, data)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Warn("pdf extraction failed, reading as plain text", "error", err)
	case MimeDOCX:
		res, err := e.extractDOCX(data)
		if err == nil {
			return res, nil
		}
		e.logger.Warn("docx extraction failed, reading as plain text", "error", err)
	}
	return e.extractText(data), nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*core.ExtractedText, error) {
	pages, err := e.pdf.Pages(ctx, data)
	if (err != nil || !readable(pages)) && e.fallback != nil {
		e.logger.Debug("primary pdf source found no readable text, trying fallback", "error", err)
		fbPages, fbErr := e.fallback.Pages(ctx, data)
		switch {
		case fbErr == nil:
			pages, err = fbPages, nil
		case err != nil || !hasText(pages):
			err = fbErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("pdf pages: %w", err)
	}

	var b strings.Builder
	for _, p := range pages {
		b.WriteString(stripGarbage(p))
		b.WriteByte('\n')
	}
	return &core.ExtractedText{
		Text:   b.String(),
		Format: FormatPDF,
		Pages:  len(pages),
	}, nil
}

func (e *Extractor) extractDOCX(data []byte) (*core.ExtractedText, error) {
	rendered, err := RenderDOCX(data)
	if err != nil {
		return nil, err
	}
	paragraphs, err := Paragraphs(rendered)
	if err != nil {
		return nil, err
	}
	return &core.ExtractedText{
		Text:        strings.Join(paragraphs, "\n"),
		Format:      FormatDOCX,
		PreviewHTML: e.policy.Sanitize(rendered),
		Metadata:    map[string]string{"paragraphs": fmt.Sprint(len(paragraphs))},
	}, nil
}

func (e *Extractor) extractText(data []byte) *core.ExtractedText {
	text := NormalizeText(string(data))
	return &core.ExtractedText{
		Text:        text,
		Format:      FormatText,
		PreviewHTML: e.policy.Sanitize(textPreview(text)),
	}
}

// NormalizeText converts CRLF line endings to LF.
func NormalizeText(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
