package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://serpapi.com/search.json"

// SerpAPIClient implements Provider against the SerpAPI Google search
// endpoint. It holds its own HTTP client with a hard timeout so a slow
// upstream can never hang a tool invocation indefinitely.
type SerpAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// SerpAPIOption customizes a SerpAPIClient.
type SerpAPIOption func(*SerpAPIClient)

// WithBaseURL overrides the search endpoint. Used by tests.
func WithBaseURL(u string) SerpAPIOption {
	return func(c *SerpAPIClient) {
		c.baseURL = u
	}
}

// NewSerpAPIClient creates a SerpAPI search client. The API key must be
// non-empty; callers are expected to have validated credentials upfront.
func NewSerpAPIClient(apiKey string, timeout time.Duration, opts ...SerpAPIOption) *SerpAPIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &SerpAPIClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serpResponse mirrors the subset of the SerpAPI payload we consume.
type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

// Search implements Provider. It returns the organic results in provider
// order; an empty list (not an error) when the query matched nothing.
func (c *SerpAPIClient) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", "toktok/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	// SerpAPI 在 HTTP 200 下也可能回傳業務層錯誤
	if parsed.Error != "" {
		return nil, fmt.Errorf("search provider error: %s", parsed.Error)
	}

	results := make([]Result, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		results = append(results, Result{
			Title:   r.Title,
			Snippet: r.Snippet,
			Link:    r.Link,
		})
	}

	slog.Debug("Search completed", "query", query, "results", len(results))
	return results, nil
}
