package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agentapps/agentapps/tool"
)

// ScraperOptions configures the webpage scraper tool.
type ScraperOptions struct {
	// MaxContentLength truncates the extracted text.
	MaxContentLength int
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

var (
	scriptRe  = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	wsRe      = regexp.MustCompile(`\s+`)
	entityMap = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// NewScraperTool returns a tool that fetches a webpage and extracts its
// visible text content.
func NewScraperTool(optFns ...func(o *ScraperOptions)) *tool.FunctionTool {
	opts := ScraperOptions{
		MaxContentLength: 8000,
		HTTPClient:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL of the webpage to scrape",
			},
		},
		"required": []string{"url"},
	}

	return tool.NewFunctionTool(
		"scrape_webpage",
		"Fetch a webpage and return its visible text content",
		params,
		func(ctx context.Context, args map[string]any) (any, error) {
			url, _ := args["url"].(string)
			return scrapePage(ctx, opts, url)
		},
	)
}

func scrapePage(ctx context.Context, opts ScraperOptions, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "agentapps-scraper/1.0")

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return truncate(extractText(string(body)), opts.MaxContentLength), nil
}

// truncate shortens s to at most limit bytes plus an ellipsis, backing up to
// a rune boundary so multi-byte characters are never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func extractText(html string) string {
	html = scriptRe.ReplaceAllString(html, " ")
	html = styleRe.ReplaceAllString(html, " ")
	html = tagRe.ReplaceAllString(html, " ")
	html = entityMap.Replace(html)
	return strings.TrimSpace(wsRe.ReplaceAllString(html, " "))
}
