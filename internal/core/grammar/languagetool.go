// Package grammar holds the grammar checking backends: the LanguageTool
// HTTP API, a Gemini prompt and a wrapper that splits long texts.
package grammar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

const (
	DefaultLanguageToolURL = "https://api.languagetoolplus.com/v2"
	DefaultLanguage        = "en-US"
)

// ErrUpstream wraps every failure of a remote checker: transport errors,
// non-2xx answers and bodies that do not decode.
var ErrUpstream = errors.New("grammar: upstream check failed")

// LanguageTool calls the /check endpoint of a LanguageTool server.
type LanguageTool struct {
	client   *resty.Client
	language string
	username string
	apiKey   string
}

type LanguageToolOption func(*LanguageTool)

// WithCredentials sets the username and API key of a premium account.
func WithCredentials(username, apiKey string) LanguageToolOption {
	return func(lt *LanguageTool) {
		lt.username = username
		lt.apiKey = apiKey
	}
}

func WithLanguage(lang string) LanguageToolOption {
	return func(lt *LanguageTool) {
		if lang != "" {
			lt.language = lang
		}
	}
}

func WithTimeout(d time.Duration) LanguageToolOption {
	return func(lt *LanguageTool) {
		if d > 0 {
			lt.client.SetTimeout(d)
		}
	}
}

func NewLanguageTool(baseURL string, opts ...LanguageToolOption) *LanguageTool {
	if baseURL == "" {
		baseURL = DefaultLanguageToolURL
	}
	lt := &LanguageTool{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(60*time.Second).
			SetHeader("Accept", "application/json"),
		language: DefaultLanguage,
	}
	for _, o := range opts {
		o(lt)
	}
	return lt
}

var _ core.GrammarChecker = (*LanguageTool)(nil)

// ltResponse.Matches is a pointer so a body without a matches array is told
// apart from an empty one.
type ltResponse struct {
	Matches *[]ltMatch `json:"matches"`
}

type ltMatch struct {
	Message      string `json:"message"`
	ShortMessage string `json:"shortMessage"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
	Rule struct {
		ID string `json:"id"`
	} `json:"rule"`
}

// Check posts text as a form and returns the reported matches. Only the
// first replacement of each match is kept.
func (lt *LanguageTool) Check(ctx context.Context, text string) ([]models.Match, error) {
	form := map[string]string{
		"text":     text,
		"language": lt.language,
	}
	if lt.username != "" && lt.apiKey != "" {
		form["username"] = lt.username
		form["apiKey"] = lt.apiKey
	}

	resp, err := lt.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/check")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode(), truncate(resp.String(), 200))
	}

	var body ltResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if body.Matches == nil {
		return nil, fmt.Errorf("%w: response has no matches", ErrUpstream)
	}

	matches := make([]models.Match, 0, len(*body.Matches))
	for _, m := range *body.Matches {
		match := models.Match{
			Offset:  m.Offset,
			Length:  m.Length,
			Message: m.Message,
			RuleID:  m.Rule.ID,
		}
		if len(m.Replacements) > 0 {
			match.Replacement = m.Replacements[0].Value
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
