// Package review turns grammar matches into reviewable segments and keeps
// the accept/reject state of each session.
package review

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

const (
	NoSuggestionsMessage = "Document appears to be fine. No suggestions."
	CheckFailedMessage   = "Error checking suggestions. Please try again later."
)

// NormalizeMatches sorts matches by offset and drops the ones that cannot be
// applied to text: empty or negative spans, spans starting past the end, and
// spans overlapping an earlier kept match. Spans running past the end are
// clamped. Offsets are UTF-16 code units.
func NormalizeMatches(text string, matches []models.Match) []models.Match {
	if len(matches) == 0 {
		return nil
	}
	total := util.UTF16Len(text)

	sorted := make([]models.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	out := sorted[:0]
	end := 0
	for _, m := range sorted {
		if m.Offset < 0 || m.Length <= 0 || m.Offset >= total {
			continue
		}
		if m.Offset < end {
			continue
		}
		if m.Offset+m.Length > total {
			m.Length = total - m.Offset
		}
		out = append(out, m)
		end = m.Offset + m.Length
	}
	return out
}

// BuildSegments splits text into alternating literal text and suggestion
// segments. matches must be ascending and non-overlapping (see
// NormalizeMatches). A text segment precedes every suggestion and one closes
// the sequence, even when empty, so the sequence always has 2n+1 entries.
func BuildSegments(text string, matches []models.Match) []models.Segment {
	idx := util.NewUTF16Index(text)
	segments := make([]models.Segment, 0, 2*len(matches)+1)

	cursor := 0
	for i, m := range matches {
		start := idx.ByteOffset(m.Offset)
		end := idx.ByteOffset(m.Offset + m.Length)
		if start < cursor {
			start = cursor
		}
		if end < start {
			end = start
		}
		segments = append(segments, models.Segment{
			Kind: models.SegmentText,
			Text: text[cursor:start],
		})
		segments = append(segments, models.Segment{
			Kind:        models.SegmentSuggestion,
			ID:          i,
			Original:    text[start:end],
			Replacement: m.Replacement,
			Decision:    models.Undecided,
			Message:     m.Message,
		})
		cursor = end
	}
	segments = append(segments, models.Segment{
		Kind: models.SegmentText,
		Text: text[cursor:],
	})
	return segments
}

// Outcome produces what a reviewer sees for a finished check: an error
// notice when the check failed, a "no suggestions" notice when nothing was
// flagged, and the segment sequence otherwise.
func Outcome(text string, matches []models.Match, err error) []models.Segment {
	if err != nil {
		return []models.Segment{Notice(CheckFailedMessage)}
	}
	matches = NormalizeMatches(text, matches)
	if len(matches) == 0 {
		return []models.Segment{Notice(NoSuggestionsMessage)}
	}
	return BuildSegments(text, matches)
}

// Notice is a segment that stands in for a whole review.
func Notice(msg string) models.Segment {
	return models.Segment{Kind: models.SegmentNotice, Text: msg}
}

// Original reassembles the source text from segments. Notices contribute
// nothing.
func Original(segments []models.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		switch s.Kind {
		case models.SegmentText:
			b.WriteString(s.Text)
		case models.SegmentSuggestion:
			b.WriteString(s.Original)
		}
	}
	return b.String()
}

// Resolve assembles the improved document: accepted suggestions contribute
// their replacement, everything else its original text.
func Resolve(segments []models.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		switch s.Kind {
		case models.SegmentText:
			b.WriteString(s.Text)
		case models.SegmentSuggestion:
			if s.Decision == models.Accepted {
				b.WriteString(s.Replacement)
			} else {
				b.WriteString(s.Original)
			}
		}
	}
	return b.String()
}

// SizeWarning returns the advisory shown when text is longer than limit
// characters, counted in UTF-16 code units. A limit of zero or less turns the
// warning off.
func SizeWarning(text string, limit int) string {
	if limit <= 0 || util.UTF16Len(text) <= limit {
		return ""
	}
	return fmt.Sprintf("Warning: Document is too large. Please limit it to approximately %s characters to ensure full analysis.", groupThousands(limit))
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Improved is the document with every accepted suggestion applied. A review
// that holds only a notice has nothing to apply and yields its text as is.
func Improved(r models.Review) string {
	for _, s := range r.Segments {
		if s.Kind != models.SegmentNotice {
			return Resolve(r.Segments)
		}
	}
	return r.Text
}
