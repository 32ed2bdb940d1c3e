package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

// LLMChecker asks a language model for corrections and locates each quoted
// original in the text to produce offsets.
type LLMChecker struct {
	llm      core.LLMProvider
	language string
}

func NewLLMChecker(llm core.LLMProvider, language string) *LLMChecker {
	if language == "" {
		language = DefaultLanguage
	}
	return &LLMChecker{llm: llm, language: language}
}

var _ core.GrammarChecker = (*LLMChecker)(nil)

type llmCorrection struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Message     string `json:"message"`
}

type llmResponse struct {
	Corrections []llmCorrection `json:"corrections"`
}

func (c *LLMChecker) Check(ctx context.Context, text string) ([]models.Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	out, err := c.llm.Generate(ctx, fmt.Sprintf(llmSystemPrompt, c.language), text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var resp llmResponse
	content := stripMarkdownFence(out)
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: parse model output: %v", ErrUpstream, err)
	}
	return locate(text, resp.Corrections), nil
}

// locate finds each correction's original in text, searching forward from
// the end of the previous hit. Corrections whose original cannot be found
// are dropped.
func locate(text string, corrections []llmCorrection) []models.Match {
	var matches []models.Match
	cursor := 0
	unit := 0 // UTF-16 position of cursor
	for _, c := range corrections {
		if c.Original == "" || c.Original == c.Replacement {
			continue
		}
		i := strings.Index(text[cursor:], c.Original)
		if i < 0 {
			continue
		}
		start := cursor + i
		offset := unit + util.UTF16Len(text[cursor:start])
		length := util.UTF16Len(c.Original)
		matches = append(matches, models.Match{
			Offset:      offset,
			Length:      length,
			Replacement: c.Replacement,
			Message:     c.Message,
			RuleID:      "LLM",
		})
		cursor = start + len(c.Original)
		unit = offset + length
	}
	return matches
}

// stripMarkdownFence removes an optional ```json ... ``` wrapping.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

const llmSystemPrompt = `You are a careful proofreader for documents written in %s. Output JSON only.

Rules:
- Report spelling, grammar and punctuation mistakes. Do not rephrase correct text.
- "original" must be copied exactly from the input, character for character, and be as short as possible.
- List corrections in the order they appear in the input.
- If nothing needs fixing, return an empty corrections array.

Output format:
{
  "corrections": [
    {"original": "<text from the input>", "replacement": "<corrected text>", "message": "<short reason>"}
  ]
}`
