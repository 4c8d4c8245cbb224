package tools

import (
	"context"
	"fmt"
	"strings"

	"toktok/pkg/search"
)

// Placeholders substituted when the search provider omits a field.
const (
	noTitlePlaceholder   = "(no title)"
	noSnippetPlaceholder = "(no description)"
)

// BuildRegistry constructs the fixed tool set backed by the given search
// provider. The returned registry is treated as immutable afterwards.
func BuildRegistry(provider search.Provider) *ToolRegistry {
	tr := NewToolRegistry()
	tr.Register(NewWeatherTool(provider))
	tr.Register(NewNewsTool(provider))
	tr.Register(NewRecipeTool(provider))
	tr.Register(NewStockTool(provider))
	tr.Register(NewTranslationTool(provider))
	tr.Register(NewGeneralSearchTool(provider))
	return tr
}

// queryParameters is the shared single-argument schema: every search tool
// takes one free-text query string.
func queryParameters(description string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": description,
		},
	}
}

// title/snippet fallbacks; link stays empty when absent.
func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// formatNumberedResults renders up to limit results in the shared
// "{index}. {glyph} {title}\n   {snippet}\n   🔗 {link}" layout used by the
// news and general search tools.
func formatNumberedResults(results []search.Result, limit int, glyph string) string {
	if len(results) > limit {
		results = results[:limit]
	}

	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, fmt.Sprintf("%d. %s %s\n   %s\n   🔗 %s",
			i+1,
			glyph,
			orPlaceholder(r.Title, noTitlePlaceholder),
			orPlaceholder(r.Snippet, noSnippetPlaceholder),
			r.Link,
		))
	}
	return strings.Join(entries, "\n\n")
}

//----------------------------------------------------------------
// Weather
//----------------------------------------------------------------

// WeatherTool looks up current weather conditions for a location.
type WeatherTool struct {
	provider search.Provider
}

func NewWeatherTool(p search.Provider) *WeatherTool {
	return &WeatherTool{provider: p}
}

func (t *WeatherTool) Name() string {
	return "weather_search"
}

func (t *WeatherTool) Description() string {
	return "Searches current weather information for a specific location. Usage: weather_search('Seoul')"
}

func (t *WeatherTool) Parameters() map[string]any {
	return queryParameters("The location to look up the weather for, e.g. 'Seoul' or 'San Francisco'.")
}

func (t *WeatherTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *WeatherTool) Invoke(ctx context.Context, query string) string {
	results, err := t.provider.Search(ctx, query+" today's weather celsius")
	if err != nil {
		return fmt.Sprintf("Error while searching weather: %v", err)
	}
	if len(results) == 0 {
		return "Weather information could not be found."
	}

	snippet := orPlaceholder(results[0].Snippet, noSnippetPlaceholder)
	return fmt.Sprintf("🌤️ Weather for %s: %s\nTemperatures are reported in °C unless the source states otherwise.", query, snippet)
}

//----------------------------------------------------------------
// News
//----------------------------------------------------------------

// NewsTool fetches the latest news headlines on a topic.
type NewsTool struct {
	provider search.Provider
}

func NewNewsTool(p search.Provider) *NewsTool {
	return &NewsTool{provider: p}
}

func (t *NewsTool) Name() string {
	return "news_search"
}

func (t *NewsTool) Description() string {
	return "Searches the latest news on a topic. Usage: news_search('AI technology')"
}

func (t *NewsTool) Parameters() map[string]any {
	return queryParameters("The topic or keyword to find recent news about.")
}

func (t *NewsTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *NewsTool) Invoke(ctx context.Context, query string) string {
	results, err := t.provider.Search(ctx, query+" latest news")
	if err != nil {
		return fmt.Sprintf("Error while searching news: %v", err)
	}
	if len(results) == 0 {
		return "No news articles could be found."
	}

	return formatNumberedResults(results, 3, "📰")
}

//----------------------------------------------------------------
// Recipe
//----------------------------------------------------------------

// RecipeTool finds cooking recipes for a dish.
type RecipeTool struct {
	provider search.Provider
}

func NewRecipeTool(p search.Provider) *RecipeTool {
	return &RecipeTool{provider: p}
}

func (t *RecipeTool) Name() string {
	return "recipe_search"
}

func (t *RecipeTool) Description() string {
	return "Searches cooking recipes for a dish. Usage: recipe_search('kimchi stew')"
}

func (t *RecipeTool) Parameters() map[string]any {
	return queryParameters("The dish to find a recipe for, e.g. 'kimchi stew'.")
}

func (t *RecipeTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *RecipeTool) Invoke(ctx context.Context, query string) string {
	results, err := t.provider.Search(ctx, query+" recipe how to make")
	if err != nil {
		return fmt.Sprintf("Error while searching recipes: %v", err)
	}

	if len(results) > 2 {
		results = results[:2]
	}

	// 只保留標題看起來真的是食譜的結果
	var recipes []string
	for _, r := range results {
		title := strings.ToLower(r.Title)
		if strings.Contains(title, "recipe") || strings.Contains(title, "how to") {
			recipes = append(recipes, fmt.Sprintf("🍳 %s\n%s",
				orPlaceholder(r.Title, noTitlePlaceholder),
				orPlaceholder(r.Snippet, noSnippetPlaceholder),
			))
		}
	}

	if len(recipes) == 0 {
		return fmt.Sprintf("No recipes could be found for %s.", query)
	}
	return strings.Join(recipes, "\n\n")
}

//----------------------------------------------------------------
// Stock
//----------------------------------------------------------------

// StockTool looks up current stock price information for a company.
type StockTool struct {
	provider search.Provider
}

func NewStockTool(p search.Provider) *StockTool {
	return &StockTool{provider: p}
}

func (t *StockTool) Name() string {
	return "stock_search"
}

func (t *StockTool) Description() string {
	return "Searches stock price information for a company. Usage: stock_search('Samsung Electronics')"
}

func (t *StockTool) Parameters() map[string]any {
	return queryParameters("The company name or ticker to look up, e.g. 'Samsung Electronics'.")
}

func (t *StockTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *StockTool) Invoke(ctx context.Context, query string) string {
	results, err := t.provider.Search(ctx, query+" stock price current")
	if err != nil {
		return fmt.Sprintf("Error while searching stock information: %v", err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No stock information could be found for %s.", query)
	}

	snippet := orPlaceholder(results[0].Snippet, noSnippetPlaceholder)
	return fmt.Sprintf("📈 Stock info for %s: %s", query, snippet)
}

//----------------------------------------------------------------
// Translation
//----------------------------------------------------------------

// TranslationTool translates text via web search results.
type TranslationTool struct {
	provider search.Provider
}

func NewTranslationTool(p search.Provider) *TranslationTool {
	return &TranslationTool{provider: p}
}

func (t *TranslationTool) Name() string {
	return "translation_search"
}

func (t *TranslationTool) Description() string {
	return "Translates text between languages. Usage: translation_search('hello in Korean')"
}

func (t *TranslationTool) Parameters() map[string]any {
	return queryParameters("The text to translate together with the target language, e.g. 'hello in Korean'.")
}

func (t *TranslationTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *TranslationTool) Invoke(ctx context.Context, query string) string {
	results, err := t.provider.Search(ctx, "translate "+query)
	if err != nil {
		return fmt.Sprintf("Error while translating: %v", err)
	}
	if len(results) == 0 {
		return "No translation could be found."
	}

	snippet := orPlaceholder(results[0].Snippet, noSnippetPlaceholder)
	return fmt.Sprintf("🔤 Translation: %s", snippet)
}

//----------------------------------------------------------------
// General search
//----------------------------------------------------------------

// GeneralSearchTool is the fallback for questions no specialized tool covers.
type GeneralSearchTool struct {
	provider search.Provider
}

func NewGeneralSearchTool(p search.Provider) *GeneralSearchTool {
	return &GeneralSearchTool{provider: p}
}

func (t *GeneralSearchTool) Name() string {
	return "general_search"
}

func (t *GeneralSearchTool) Description() string {
	return "Searches general information on the web. Use for questions not covered by the other tools."
}

func (t *GeneralSearchTool) Parameters() map[string]any {
	return queryParameters("The free-text query to search for.")
}

func (t *GeneralSearchTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *GeneralSearchTool) Invoke(ctx context.Context, query string) string {
	results, err := t.provider.Search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error while searching: %v", err)
	}
	if len(results) == 0 {
		return "No search results could be found."
	}

	return formatNumberedResults(results, 3, "🔍")
}
