package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Document represents one uploaded file and where its original bytes live.
type Document struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	StorageKey  string    `db:"storage_key" json:"-"`
	StorageURL  string    `db:"storage_url" json:"storage_url"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	Status      string    `db:"status" json:"status"` // uploaded | processing | ready | failed | superseded
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	DocumentUploaded   = "uploaded"
	DocumentProcessing = "processing"
	DocumentReady      = "ready"
	DocumentFailed     = "failed"
	// DocumentSuperseded marks an upload overtaken by a newer one in the
	// same session before its review was installed.
	DocumentSuperseded = "superseded"
)

// Match is a span flagged by the grammar checker. Offset and Length count
// UTF-16 code units, the unit LanguageTool reports in.
type Match struct {
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
	Replacement string `json:"replacement"`
	Message     string `json:"message,omitempty"`
	RuleID      string `json:"rule_id,omitempty"`
}

// SegmentKind discriminates the Segment union.
type SegmentKind string

const (
	SegmentText       SegmentKind = "text"
	SegmentSuggestion SegmentKind = "suggestion"
	SegmentNotice     SegmentKind = "notice"
)

// Decision is the reviewer's verdict on one suggestion.
type Decision string

const (
	Undecided Decision = "undecided"
	Accepted  Decision = "accepted"
	Rejected  Decision = "rejected"
)

// Segment is a unit of display content: literal text, a reviewable
// suggestion, or a notice that stands in for the whole review.
type Segment struct {
	Kind        SegmentKind `json:"kind"`
	Text        string      `json:"text,omitempty"`
	ID          int         `json:"id"`
	Original    string      `json:"original,omitempty"`
	Replacement string      `json:"replacement,omitempty"`
	Decision    Decision    `json:"decision,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// MarshalJSON writes id only for suggestions, so text and notice segments
// never share an id with the first suggestion.
func (s Segment) MarshalJSON() ([]byte, error) {
	type plain Segment
	out := struct {
		plain
		ID *int `json:"id,omitempty"`
	}{plain: plain(s)}
	if s.Kind == SegmentSuggestion {
		id := s.ID
		out.ID = &id
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ReviewStatus is the lifecycle flag of a session's current review.
type ReviewStatus string

const (
	StatusIdle    ReviewStatus = "idle"
	StatusLoading ReviewStatus = "loading"
	StatusReady   ReviewStatus = "ready"
	StatusError   ReviewStatus = "error"
)

// Review is everything a session currently shows for its latest upload.
type Review struct {
	Generation  uint64       `json:"generation"`
	Status      ReviewStatus `json:"status"`
	DocumentID  string       `json:"document_id,omitempty"`
	FileName    string       `json:"file_name,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
	Text        string       `json:"text"`
	Warning     string       `json:"warning,omitempty"`
	PreviewHTML string       `json:"-"`
	Segments    []Segment    `json:"segments"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
