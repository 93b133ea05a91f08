package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentapps/agentapps/tool"
)

// SearchOptions configures the web search tool.
type SearchOptions struct {
	// APIKey authenticates against the search API (Tavily-compatible).
	APIKey string
	// APIURL overrides the search endpoint.
	APIURL string
	// MaxResults bounds the number of results included in the summary.
	MaxResults int
	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
}

const defaultSearchURL = "https://api.tavily.com/search"

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// NewSearchSummaryTool returns a tool that queries a Tavily-compatible web
// search API and summarizes the top results for the model.
func NewSearchSummaryTool(optFns ...func(o *SearchOptions)) *tool.FunctionTool {
	opts := SearchOptions{
		APIURL:     defaultSearchURL,
		MaxResults: 5,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIURL == "" {
		opts.APIURL = defaultSearchURL
	}

	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query. Be specific.",
			},
		},
		"required": []string{"query"},
	}

	return tool.NewFunctionTool(
		"search_summary",
		"Search the web and return a short summary of the top results",
		params,
		func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			resp, err := runSearch(ctx, opts, query)
			if err != nil {
				return nil, err
			}
			return formatSearchResults(resp), nil
		},
	)
}

func runSearch(ctx context.Context, opts SearchOptions, query string) (*searchResponse, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:        opts.APIKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    opts.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func formatSearchResults(resp *searchResponse) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Search Query: %s\n\n", resp.Query)
	if resp.Answer != "" {
		fmt.Fprintf(&b, "Summary: %s\n\n", resp.Answer)
	}
	if len(resp.Results) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}
	b.WriteString("Search Results:\n")
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		fmt.Fprintf(&b, "   Content: %s\n", truncate(r.Content, 500))
	}
	return b.String()
}
