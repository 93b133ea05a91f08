package builtin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSummaryTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "go concurrency", req.Query)
		assert.Equal(t, "test-key", req.APIKey)

		resp := searchResponse{
			Query:  req.Query,
			Answer: "Goroutines and channels.",
			Results: []searchResult{
				{Title: "Go Blog", URL: "https://go.dev/blog", Content: "Concurrency patterns in Go."},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	search := NewSearchSummaryTool(func(o *SearchOptions) {
		o.APIKey = "test-key"
		o.APIURL = srv.URL
	})

	result, err := search.Call(context.Background(), map[string]any{"query": "go concurrency"})
	require.NoError(t, err)

	text, ok := result.(string)
	require.True(t, ok)
	assert.Contains(t, text, "Goroutines and channels.")
	assert.Contains(t, text, "Go Blog")
	assert.Contains(t, text, "https://go.dev/blog")
}

func TestSearchSummaryTool_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	search := NewSearchSummaryTool(func(o *SearchOptions) {
		o.APIURL = srv.URL
	})

	_, err := search.Call(context.Background(), map[string]any{"query": "anything"})
	assert.Error(t, err)
}
