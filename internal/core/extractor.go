package core

import (
	"context"
)

// ExtractedText is the result of text extraction, with what the viewer needs
// to show a preview of the original.
type ExtractedText struct {
	Text        string
	Format      string // pdf | docx | text
	Pages       int
	PreviewHTML string // empty when the original itself is the preview (PDF)
	Metadata    map[string]string
}

// DocumentExtractor extracts text from an uploaded document.
// The contentType is the declared MIME type; it alone selects the strategy.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (*ExtractedText, error)
}
