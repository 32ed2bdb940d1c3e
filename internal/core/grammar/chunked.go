package grammar

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

// Chunked splits long texts at line boundaries and checks the pieces
// concurrently. Offsets are shifted back into whole-text coordinates. A
// failure of any piece fails the whole check.
type Chunked struct {
	inner       core.GrammarChecker
	maxUnits    int
	concurrency int
}

// NewChunked wraps inner. maxUnits is the chunk size in UTF-16 code units;
// zero or less disables splitting.
func NewChunked(inner core.GrammarChecker, maxUnits, concurrency int) *Chunked {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Chunked{inner: inner, maxUnits: maxUnits, concurrency: concurrency}
}

var _ core.GrammarChecker = (*Chunked)(nil)

type chunk struct {
	text   string
	offset int // UTF-16 units from the start of the document
}

func (c *Chunked) Check(ctx context.Context, text string) ([]models.Match, error) {
	if c.maxUnits <= 0 || util.UTF16Len(text) <= c.maxUnits {
		return c.inner.Check(ctx, text)
	}

	chunks := splitLines(text, c.maxUnits)
	results := make([][]models.Match, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ch := range chunks {
		g.Go(func() error {
			ms, err := c.inner.Check(gctx, ch.text)
			if err != nil {
				return err
			}
			for j := range ms {
				ms[j].Offset += ch.offset
			}
			results[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Match
	for _, ms := range results {
		all = append(all, ms...)
	}
	return all, nil
}

// splitLines groups whole lines into chunks of at most maxUnits UTF-16 units.
// A single line longer than maxUnits becomes a chunk of its own.
func splitLines(text string, maxUnits int) []chunk {
	var (
		chunks []chunk
		cur    strings.Builder
		curLen int
		start  int
	)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, chunk{text: cur.String(), offset: start})
		start += curLen
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		n := util.UTF16Len(line)
		if curLen > 0 && curLen+n > maxUnits {
			flush()
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return chunks
}
