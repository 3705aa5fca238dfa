package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/texquiz/internal/llm/prompts"
	"github.com/pavelanni/texquiz/internal/model"
	"github.com/pavelanni/texquiz/internal/parser"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping checks that the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// Generated is quiz markup produced by the LLM together with the
// questions that survived parsing.
type Generated struct {
	Source    string
	Questions []model.Question
}

// GenerateQuiz asks the LLM for quiz markup about topic and validates it
// with the parser. Markup without any valid question is an error.
func (c *Client) GenerateQuiz(ctx context.Context, data prompts.GenerateData) (*Generated, error) {
	prompt, err := prompts.BuildGeneratePrompt(data)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: data.Topic},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	source := extractMarkup(raw)
	questions := parser.Parse(source)
	if len(questions) == 0 {
		return nil, fmt.Errorf("LLM response has no valid questions (raw: %s)", raw)
	}
	if len(questions) != data.Count {
		slog.Warn("LLM returned a different number of questions", "want", data.Count, "got", len(questions))
	}
	return &Generated{Source: titled(data.Topic, source), Questions: questions}, nil
}

// extractMarkup strips a surrounding code fence, which models add despite
// being asked not to.
func extractMarkup(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line, including any language tag.
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func titled(topic, source string) string {
	return fmt.Sprintf("\\title{%s}\n\n%s\n", strings.TrimSpace(topic), source)
}
