package grammar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/review"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

func TestLanguageTool_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/check", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "Teh cat sat.", r.PostForm.Get("text"))
		assert.Equal(t, "en-GB", r.PostForm.Get("language"))
		assert.Equal(t, "me@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "k3y", r.PostForm.Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[
			{"message":"Possible spelling mistake found.","offset":0,"length":3,
			 "replacements":[{"value":"The"},{"value":"Tech"}],"rule":{"id":"MORFOLOGIK_RULE_EN_US"}},
			{"message":"No idea.","offset":4,"length":3,"replacements":[],"rule":{"id":"X"}}
		]}`))
	}))
	defer srv.Close()

	lt := NewLanguageTool(srv.URL+"/v2/", WithLanguage("en-GB"), WithCredentials("me@example.com", "k3y"))
	got, err := lt.Check(context.Background(), "Teh cat sat.")
	require.NoError(t, err)
	assert.Equal(t, []models.Match{
		{Offset: 0, Length: 3, Replacement: "The", Message: "Possible spelling mistake found.", RuleID: "MORFOLOGIK_RULE_EN_US"},
		{Offset: 4, Length: 3, Replacement: "", Message: "No idea.", RuleID: "X"},
	}, got)
}

func TestLanguageTool_OmitsPartialCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Empty(t, r.PostForm.Get("username"))
		assert.Empty(t, r.PostForm.Get("apiKey"))
		assert.Equal(t, DefaultLanguage, r.PostForm.Get("language"))
		_, _ = w.Write([]byte(`{"matches":[]}`))
	}))
	defer srv.Close()

	got, err := NewLanguageTool(srv.URL, WithCredentials("me", "")).Check(context.Background(), "fine")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLanguageTool_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"rate limited": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"matches": [`))
		},
		"empty object": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		},
		"null body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		},
		"null matches": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"matches":null}`))
		},
		"matches missing": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"software":{}}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			matches, err := NewLanguageTool(srv.URL).Check(context.Background(), "text")
			assert.ErrorIs(t, err, ErrUpstream)
			assert.Equal(t, []models.Segment{review.Notice(review.CheckFailedMessage)}, review.Outcome("text", matches, err))
		})
	}
}

func TestLanguageTool_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLanguageTool(url, WithTimeout(time.Second)).Check(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUpstream)
}
