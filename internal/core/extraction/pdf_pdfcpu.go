package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PdfcpuPages reads page text straight from each page's content stream.
type PdfcpuPages struct{}

func NewPdfcpuPages() *PdfcpuPages { return &PdfcpuPages{} }

func (PdfcpuPages) Pages(ctx context.Context, data []byte) ([]string, error) {
	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, pctx.PageCount)
	for nr := 1; nr <= pctx.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(pctx, nr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pageText(pctx *model.Context, nr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(pctx, nr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return joinItems(ContentStreamText(data)), nil
}

func joinItems(items []string) string {
	var b bytes.Buffer
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it)
	}
	return b.String()
}
