package review

import (
	"context"
	"sync"
	"time"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// Store holds the current review of every session. Each upload bumps the
// session's generation; results carrying an older generation are dropped so
// an overtaken upload can never overwrite a newer one. Segment slices are
// replaced whole on every write and never mutated in place.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	generation uint64
	cancel     context.CancelFunc
	review     models.Review
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Begin registers a new upload for the session and returns the generation it
// must commit with. The context of the upload it overtakes is cancelled; the
// returned context is cancelled in turn when a newer upload begins or this
// one commits.
func (s *Store) Begin(ctx context.Context, sessionID string, doc models.Document) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	if sess.cancel != nil {
		sess.cancel()
	}

	sess.generation++
	jobCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	sess.review = models.Review{
		Generation:  sess.generation,
		Status:      models.StatusLoading,
		DocumentID:  doc.ID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		UpdatedAt:   s.now(),
	}
	return jobCtx, sess.generation
}

// Commit installs r as the session's review if generation is still current.
// It reports whether r was installed.
func (s *Store) Commit(sessionID string, generation uint64, r models.Review) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.generation != generation {
		return false
	}
	if sess.cancel != nil {
		sess.cancel()
		sess.cancel = nil
	}
	r.Generation = generation
	r.UpdatedAt = s.now()
	sess.review = r
	return true
}

// Current reports whether generation is still the session's latest upload.
func (s *Store) Current(sessionID string, generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	return ok && sess.generation == generation
}

// Snapshot returns a copy of the session's review. Unknown sessions are idle.
func (s *Store) Snapshot(sessionID string) models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.Review{Status: models.StatusIdle, Segments: []models.Segment{}}
	}
	r := sess.review
	r.Segments = append([]models.Segment(nil), sess.review.Segments...)
	return r
}

// Decide sets the decision of suggestion id in the session's review and
// returns the updated segment.
func (s *Store) Decide(sessionID string, id int, d models.Decision) (models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return models.Segment{}, ErrSuggestionNotFound
	}
	next, err := SetDecision(sess.review.Segments, id, d)
	if err != nil {
		return models.Segment{}, err
	}
	sess.review.Segments = next
	sess.review.UpdatedAt = s.now()
	seg, _ := FindSuggestion(next, id)
	return seg, nil
}

func (s *Store) Accept(sessionID string, id int) (models.Segment, error) {
	return s.Decide(sessionID, id, models.Accepted)
}

func (s *Store) Reject(sessionID string, id int) (models.Segment, error) {
	return s.Decide(sessionID, id, models.Rejected)
}

// Prune forgets sessions untouched for longer than ttl and returns how many
// were dropped. Sessions with an upload in flight are kept.
func (s *Store) Prune(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.review.Status == models.StatusLoading {
			continue
		}
		if sess.review.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
