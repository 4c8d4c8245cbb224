package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"toktok/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedProvider(results []search.Result, err error) search.Provider {
	return search.ProviderFunc(func(ctx context.Context, query string) ([]search.Result, error) {
		return results, err
	})
}

func recordingProvider(results []search.Result) (search.Provider, *string) {
	var captured string
	return search.ProviderFunc(func(ctx context.Context, query string) ([]search.Result, error) {
		captured = query
		return results, nil
	}), &captured
}

func manyResults(n int) []search.Result {
	results := make([]search.Result, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, search.Result{
			Title:   fmt.Sprintf("Title %d", i),
			Snippet: fmt.Sprintf("Snippet %d", i),
			Link:    fmt.Sprintf("https://example.com/%d", i),
		})
	}
	return results
}

func TestBuildRegistryContainsAllTools(t *testing.T) {
	tr := BuildRegistry(fixedProvider(nil, nil))

	for _, name := range []string{
		"weather_search", "news_search", "recipe_search",
		"stock_search", "translation_search", "general_search",
	} {
		_, ok := tr.Get(name)
		assert.True(t, ok, "tool %s should be registered", name)
	}
	assert.Len(t, tr.GetAll(), 6)
}

func TestWeatherToolAugmentsQuery(t *testing.T) {
	provider, captured := recordingProvider(manyResults(1))
	tool := NewWeatherTool(provider)

	out := tool.Invoke(context.Background(), "Seoul")

	assert.Equal(t, "Seoul today's weather celsius", *captured)
	assert.Contains(t, out, "🌤️ Weather for Seoul")
	assert.Contains(t, out, "Snippet 1")
	assert.Contains(t, out, "°C")
}

func TestWeatherToolEmptyResults(t *testing.T) {
	tool := NewWeatherTool(fixedProvider(nil, nil))
	out := tool.Invoke(context.Background(), "Atlantis")
	assert.Equal(t, "Weather information could not be found.", out)
}

func TestWeatherToolErrorBecomesText(t *testing.T) {
	tool := NewWeatherTool(fixedProvider(nil, errors.New("boom")))
	out := tool.Invoke(context.Background(), "Seoul")
	assert.Contains(t, out, "Error while searching weather")
	assert.Contains(t, out, "boom")
}

func TestNewsToolTopThree(t *testing.T) {
	provider, captured := recordingProvider(manyResults(5))
	tool := NewNewsTool(provider)

	out := tool.Invoke(context.Background(), "AI")

	assert.Equal(t, "AI latest news", *captured)
	assert.Contains(t, out, "1. 📰 Title 1")
	assert.Contains(t, out, "3. 📰 Title 3")
	assert.NotContains(t, out, "Title 4")
	assert.Contains(t, out, "🔗 https://example.com/1")
}

func TestNewsToolMissingFieldsUsePlaceholders(t *testing.T) {
	results := []search.Result{{Link: "https://example.com/a"}}
	tool := NewNewsTool(fixedProvider(results, nil))

	out := tool.Invoke(context.Background(), "AI")

	assert.Contains(t, out, "(no title)")
	assert.Contains(t, out, "(no description)")
}

func TestRecipeToolFiltersNonRecipes(t *testing.T) {
	results := []search.Result{
		{Title: "Best Kimchi Stew Recipe", Snippet: "Boil it."},
		{Title: "Kimchi history article", Snippet: "A long read."},
		{Title: "How To Make Kimchi Stew", Snippet: "Another way."},
	}
	tool := NewRecipeTool(fixedProvider(results, nil))

	out := tool.Invoke(context.Background(), "kimchi stew")

	// Only the first two results are considered, and only recipe-looking
	// titles survive the filter.
	assert.Contains(t, out, "🍳 Best Kimchi Stew Recipe")
	assert.NotContains(t, out, "Kimchi history article")
	assert.NotContains(t, out, "How To Make Kimchi Stew")
}

func TestRecipeToolNoMatches(t *testing.T) {
	results := []search.Result{{Title: "Random page", Snippet: "nothing"}}
	tool := NewRecipeTool(fixedProvider(results, nil))

	out := tool.Invoke(context.Background(), "kimchi stew")
	assert.Equal(t, "No recipes could be found for kimchi stew.", out)
}

func TestStockToolFirstResult(t *testing.T) {
	provider, captured := recordingProvider(manyResults(3))
	tool := NewStockTool(provider)

	out := tool.Invoke(context.Background(), "Samsung Electronics")

	assert.Equal(t, "Samsung Electronics stock price current", *captured)
	assert.Contains(t, out, "📈 Stock info for Samsung Electronics")
	assert.Contains(t, out, "Snippet 1")
	assert.NotContains(t, out, "Snippet 2")
}

func TestTranslationToolPrefixesQuery(t *testing.T) {
	provider, captured := recordingProvider(manyResults(1))
	tool := NewTranslationTool(provider)

	out := tool.Invoke(context.Background(), "hello in Korean")

	assert.Equal(t, "translate hello in Korean", *captured)
	assert.Contains(t, out, "🔤 Translation:")
}

func TestGeneralSearchToolUsesRawQuery(t *testing.T) {
	provider, captured := recordingProvider(manyResults(4))
	tool := NewGeneralSearchTool(provider)

	out := tool.Invoke(context.Background(), "quantum computing")

	assert.Equal(t, "quantum computing", *captured)
	assert.Equal(t, 3, strings.Count(out, "🔍"))
}

func TestToolSchemasRequireQuery(t *testing.T) {
	tr := BuildRegistry(fixedProvider(nil, nil))

	for _, tool := range tr.GetAll() {
		require.Equal(t, []string{"query"}, tool.RequiredParameters(), "tool %s", tool.Name())

		params := tool.Parameters()
		q, ok := params["query"].(map[string]any)
		require.True(t, ok, "tool %s should declare a query parameter", tool.Name())
		assert.Equal(t, "string", q["type"])
		assert.NotEmpty(t, q["description"])
	}
}
