package grammar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

type fakeLLM struct {
	out    string
	err    error
	system string
	user   string
}

func (f *fakeLLM) Generate(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.out, f.err
}

func TestLLMChecker_LocatesCorrectionsInOrder(t *testing.T) {
	llm := &fakeLLM{out: "```json\n" + `{"corrections":[
		{"original":"Teh","replacement":"The","message":"spelling"},
		{"original":"missing","replacement":"x","message":"not in text"},
		{"original":"teh","replacement":"the","message":"spelling"},
		{"original":"same","replacement":"same"}
	]}` + "\n```"}
	c := NewLLMChecker(llm, "")

	text := "Teh 😀 dog and teh cat"
	got, err := c.Check(context.Background(), text)
	require.NoError(t, err)

	assert.Contains(t, llm.system, DefaultLanguage)
	assert.Equal(t, text, llm.user)
	// the emoji counts as two UTF-16 units
	assert.Equal(t, []models.Match{
		{Offset: 0, Length: 3, Replacement: "The", Message: "spelling", RuleID: "LLM"},
		{Offset: 15, Length: 3, Replacement: "the", Message: "spelling", RuleID: "LLM"},
	}, got)
}

func TestLLMChecker_RepeatedOriginalsAdvance(t *testing.T) {
	llm := &fakeLLM{out: `{"corrections":[
		{"original":"its","replacement":"it's"},
		{"original":"its","replacement":"it's"}
	]}`}
	got, err := NewLLMChecker(llm, "en-US").Check(context.Background(), "its fine, its done")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Offset)
	assert.Equal(t, 10, got[1].Offset)
}

func TestLLMChecker_Failures(t *testing.T) {
	_, err := NewLLMChecker(&fakeLLM{err: errors.New("quota")}, "").Check(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = NewLLMChecker(&fakeLLM{out: "I found no issues!"}, "").Check(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestLLMChecker_BlankTextSkipsModel(t *testing.T) {
	llm := &fakeLLM{err: errors.New("should not be called")}
	got, err := NewLLMChecker(llm, "").Check(context.Background(), "  \n")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, llm.user)
}

func TestStripMarkdownFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripMarkdownFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripMarkdownFence("  {\"a\":1} "))
}
