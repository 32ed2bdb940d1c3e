package review

import (
	"errors"
	"fmt"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// ErrSuggestionNotFound is returned when a decision targets an id that no
// suggestion segment carries.
var ErrSuggestionNotFound = errors.New("review: suggestion not found")

// SetDecision returns a copy of segments where the suggestion with the given
// id carries decision d. The input slice is left untouched.
func SetDecision(segments []models.Segment, id int, d models.Decision) ([]models.Segment, error) {
	switch d {
	case models.Undecided, models.Accepted, models.Rejected:
	default:
		return nil, fmt.Errorf("review: unknown decision %q", d)
	}

	out := make([]models.Segment, len(segments))
	copy(out, segments)
	for i := range out {
		if out[i].Kind == models.SegmentSuggestion && out[i].ID == id {
			out[i].Decision = d
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrSuggestionNotFound, id)
}

// Accept marks suggestion id as accepted.
func Accept(segments []models.Segment, id int) ([]models.Segment, error) {
	return SetDecision(segments, id, models.Accepted)
}

// Reject marks suggestion id as rejected.
func Reject(segments []models.Segment, id int) ([]models.Segment, error) {
	return SetDecision(segments, id, models.Rejected)
}

// FindSuggestion returns the suggestion segment with the given id.
func FindSuggestion(segments []models.Segment, id int) (models.Segment, bool) {
	for _, s := range segments {
		if s.Kind == models.SegmentSuggestion && s.ID == id {
			return s, true
		}
	}
	return models.Segment{}, false
}
