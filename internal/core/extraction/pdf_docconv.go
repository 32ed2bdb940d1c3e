package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// DocconvPages extracts PDF text through docconv, which shells out to
// poppler's pdftotext. docconv strips page breaks, so the whole document
// comes back as a single page.
type DocconvPages struct{}

func NewDocconvPages() *DocconvPages { return &DocconvPages{} }

func (DocconvPages) Pages(ctx context.Context, data []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}
	body = strings.TrimRight(body, "\n")
	if strings.TrimSpace(body) == "" {
		return nil, ErrNoText
	}
	return []string{body}, nil
}
