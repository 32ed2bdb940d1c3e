package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

func readyReview(text string, matches []models.Match) models.Review {
	return models.Review{
		Status:   models.StatusReady,
		Text:     text,
		Segments: Outcome(text, matches, nil),
	}
}

func TestStore_UnknownSessionIsIdle(t *testing.T) {
	s := NewStore()
	r := s.Snapshot("nobody")
	assert.Equal(t, models.StatusIdle, r.Status)
	assert.Empty(t, r.Segments)
}

func TestStore_BeginMarksLoading(t *testing.T) {
	s := NewStore()
	_, gen := s.Begin(context.Background(), "s1", models.Document{ID: "doc-a", FileName: "a.txt"})
	r := s.Snapshot("s1")
	assert.Equal(t, models.StatusLoading, r.Status)
	assert.Equal(t, gen, r.Generation)
	assert.Equal(t, "doc-a", r.DocumentID)
}

func TestStore_OvertakenUploadIsDiscarded(t *testing.T) {
	s := NewStore()
	ctxA, genA := s.Begin(context.Background(), "s1", models.Document{ID: "a"})
	ctxB, genB := s.Begin(context.Background(), "s1", models.Document{ID: "b"})
	require.Greater(t, genB, genA)

	assert.ErrorIs(t, ctxA.Err(), context.Canceled, "overtaken upload is cancelled")
	assert.NoError(t, ctxB.Err())

	// B settles first, then the stale A result arrives.
	assert.True(t, s.Commit("s1", genB, readyReview("B text", []models.Match{{Offset: 0, Length: 1, Replacement: "b"}})))
	assert.False(t, s.Commit("s1", genA, readyReview("A text", []models.Match{{Offset: 0, Length: 1, Replacement: "a"}})))

	r := s.Snapshot("s1")
	assert.Equal(t, "B text", r.Text)
	assert.Equal(t, genB, r.Generation)
	seg, ok := FindSuggestion(r.Segments, 0)
	require.True(t, ok)
	assert.Equal(t, "b", seg.Replacement)
}

func TestStore_StaleResultBeforeNewerSettles(t *testing.T) {
	s := NewStore()
	_, genA := s.Begin(context.Background(), "s1", models.Document{ID: "a"})
	_, genB := s.Begin(context.Background(), "s1", models.Document{ID: "b"})

	assert.False(t, s.Commit("s1", genA, readyReview("A text", nil)))
	assert.Equal(t, models.StatusLoading, s.Snapshot("s1").Status)
	assert.False(t, s.Current("s1", genA))
	assert.True(t, s.Current("s1", genB))
}

func TestStore_FailureReplacesPriorState(t *testing.T) {
	s := NewStore()
	_, gen := s.Begin(context.Background(), "s1", models.Document{ID: "a"})
	require.True(t, s.Commit("s1", gen, readyReview("Teh cat", []models.Match{{Offset: 0, Length: 3, Replacement: "The"}})))
	_, err := s.Accept("s1", 0)
	require.NoError(t, err)

	_, gen = s.Begin(context.Background(), "s1", models.Document{ID: "b"})
	require.True(t, s.Commit("s1", gen, models.Review{
		Status:   models.StatusError,
		Segments: Outcome("whatever", nil, assert.AnError),
	}))

	r := s.Snapshot("s1")
	assert.Equal(t, models.StatusError, r.Status)
	require.Len(t, r.Segments, 1)
	assert.Equal(t, CheckFailedMessage, r.Segments[0].Text)
}

func TestStore_AcceptReject(t *testing.T) {
	s := NewStore()
	_, gen := s.Begin(context.Background(), "s1", models.Document{ID: "a"})
	require.True(t, s.Commit("s1", gen, readyReview("Teh cat", []models.Match{{Offset: 0, Length: 3, Replacement: "The"}})))

	seg, err := s.Accept("s1", 0)
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, seg.Decision)

	seg, err = s.Reject("s1", 0)
	require.NoError(t, err)
	assert.Equal(t, models.Rejected, seg.Decision)

	_, err = s.Accept("s1", 42)
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
	_, err = s.Accept("other", 0)
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	_, gen := s.Begin(context.Background(), "s1", models.Document{ID: "a"})
	require.True(t, s.Commit("s1", gen, readyReview("Teh cat", []models.Match{{Offset: 0, Length: 3, Replacement: "The"}})))

	r := s.Snapshot("s1")
	r.Segments[1].Decision = models.Accepted

	seg, _ := FindSuggestion(s.Snapshot("s1").Segments, 0)
	assert.Equal(t, models.Undecided, seg.Decision)
}

func TestStore_Prune(t *testing.T) {
	s := NewStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, gen := s.Begin(context.Background(), "old", models.Document{})
	s.Commit("old", gen, readyReview("x", nil))
	s.Begin(context.Background(), "inflight", models.Document{})

	now = now.Add(2 * time.Hour)
	_, gen = s.Begin(context.Background(), "fresh", models.Document{})
	s.Commit("fresh", gen, readyReview("y", nil))

	assert.Equal(t, 1, s.Prune(time.Hour))
	assert.Equal(t, models.StatusIdle, s.Snapshot("old").Status)
	assert.Equal(t, models.StatusLoading, s.Snapshot("inflight").Status)
	assert.Equal(t, models.StatusReady, s.Snapshot("fresh").Status)
}
