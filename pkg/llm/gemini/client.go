package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"toktok/pkg/llm"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GeminiClient Google Gemini API client
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client with a single model and API key
func NewGeminiClient(apiKey string, model string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiClient) Provider() string {
	return "gemini"
}

// Chat implements llm.LLMClient via a single GenerateContent call.
func (g *GeminiClient) Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (*llm.ChatResult, error) {
	contents, systemInstruction := g.convertMessages(messages)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Tools:             g.convertTools(tools),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed for model %s: %w", g.model, err)
	}

	result := &llm.ChatResult{}

	if resp.UsageMetadata != nil {
		u := resp.UsageMetadata
		result.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates for model %s", g.model)
	}

	candidate := resp.Candidates[0]
	result.StopReason = normalizeStopReason(string(candidate.FinishReason))
	if result.Usage != nil {
		result.Usage.StopReason = result.StopReason
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}

		if part.FunctionCall != nil {
			argsB, _ := json.Marshal(part.FunctionCall.Args)
			result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
				// Gemini omits call IDs; the name doubles as the correlation key
				ID:        part.FunctionCall.Name,
				Name:      part.FunctionCall.Name,
				Arguments: string(argsB),
			})
			slog.Debug("Tool call", "provider", "gemini", "name", part.FunctionCall.Name, "args", string(argsB))
		}
	}
	result.Content = text.String()

	if result.Usage != nil {
		llm.LogUsage(g.model, result.Usage)
	}

	return result, nil
}

// convertMessages converts message list to GenAI format
func (g *GeminiClient) convertMessages(messages []llm.Message) ([]*genai.Content, *genai.Content) {
	var genaiContents []*genai.Content
	var systemInstruction *genai.Content

	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			// System role as SystemInstruction
			if msg.Content != "" {
				systemInstruction = &genai.Content{
					Parts: []*genai.Part{{Text: msg.Content}},
				}
			}
			continue
		}

		if msg.Role == llm.RoleTool {
			// Tool results are part of user role in Gemini
			genaiContents = append(genaiContents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{
					{
						FunctionResponse: &genai.FunctionResponse{
							Name:     msg.ToolName,
							Response: map[string]any{"result": msg.Content},
						},
					},
				},
			})
			continue
		}

		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}

		var parts []*genai.Part
		if msg.Content != "" {
			parts = append(parts, &genai.Part{Text: msg.Content})
		}

		// Gemini requires echoing previous tool calls before their responses
		for _, tc := range msg.ToolCalls {
			var args map[string]any
			json.Unmarshal([]byte(tc.Arguments), &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: tc.Name,
					Args: args,
				},
			})
		}

		if len(parts) > 0 {
			genaiContents = append(genaiContents, &genai.Content{
				Role:  role,
				Parts: parts,
			})
		}
	}

	return genaiContents, systemInstruction
}

// convertTools converts tool definitions to GenAI function declarations.
// Parameter schemas go through a JSON round-trip into genai.Schema.
func (g *GeminiClient) convertTools(tools []llm.ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	var fds []*genai.FunctionDeclaration
	for _, t := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}

		schemaB, _ := json.Marshal(map[string]any{
			"type":       "object",
			"properties": t.Parameters,
			"required":   t.Required,
		})
		var schema genai.Schema
		if err := json.Unmarshal(schemaB, &schema); err != nil {
			slog.Warn("Failed to convert tool schema", "provider", "gemini", "tool", t.Name, "error", err)
			continue
		}
		fd.Parameters = &schema

		fds = append(fds, fd)
	}

	if len(fds) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}
}

// normalizeStopReason converts Gemini finish reasons to the shared format
func normalizeStopReason(reason string) string {
	switch strings.ToUpper(reason) {
	case "STOP":
		return llm.StopReasonStop
	case "MAX_TOKENS", "FINISH_REASON_MAX_TOKENS":
		return llm.StopReasonLength
	default:
		return strings.ToLower(reason)
	}
}

// IsTransientError implements the llm.LLMClient interface
func (g *GeminiClient) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()

	// 1. Google API common 503 Service Unavailable / Overloaded
	if strings.Contains(errMsg, "503") || strings.Contains(strings.ToLower(errMsg), "overloaded") {
		return true
	}

	// 2. 429 Too Many Requests (Rate Limit)
	if strings.Contains(errMsg, "429") || strings.Contains(strings.ToLower(errMsg), "resource exhausted") {
		return true
	}

	// 3. 500 Internal Error (Occasional Google Gemini crashes)
	if strings.Contains(errMsg, "500") || strings.Contains(strings.ToLower(errMsg), "internal error") {
		return true
	}

	return false
}
