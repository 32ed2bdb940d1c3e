package core

import (
	"context"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// GrammarChecker flags spans of text. Match offsets are UTF-16 code units
// into text, in any order; callers normalize them.
type GrammarChecker interface {
	Check(ctx context.Context, text string) ([]models.Match, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
