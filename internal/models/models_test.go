package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentJSON_IDOnlyOnSuggestions(t *testing.T) {
	segs := []Segment{
		{Kind: SegmentSuggestion, ID: 0, Original: "Teh", Replacement: "The", Decision: Undecided},
		{Kind: SegmentText, Text: " cat & <dog>"},
		{Kind: SegmentNotice, Text: "Document appears to be fine. No suggestions."},
	}
	b, err := json.Marshal(segs)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kind":"suggestion","id":0,"original":"Teh","replacement":"The","decision":"undecided"},
		{"kind":"text","text":" cat & <dog>"},
		{"kind":"notice","text":"Document appears to be fine. No suggestions."}
	]`, string(b))

	var back []Segment
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, segs, back)
}
