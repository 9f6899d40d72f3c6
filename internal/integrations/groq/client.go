// Package groq implements the generation client against Groq's
// OpenAI-compatible chat completions API. It invokes the language model with
// the assembled prompt under a hard wall-clock timeout.
package groq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"portfolio-rag-backend/internal/models"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// ErrGenerationTimeout indicates the generation deadline fired before the
// model responded. The call is abandoned without retry; retrying is left to
// the user.
var ErrGenerationTimeout = errors.New("generation request timed out")

// Client calls the Groq chat completions endpoint through langchaingo's
// OpenAI-compatible client, pointed at Groq's base URL. One instance is
// constructed at startup and reused for every query, keeping the underlying
// connections warm. The decoding configuration is fixed: bounded output
// length, low temperature for concise, repeatable answers.
type Client struct {
	llm         *openai.LLM
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewClient creates a generation client against the Groq API.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	return newClient(apiKey, model, defaultBaseURL, timeout)
}

// newClient is the base-URL-parameterized constructor. Tests point it at a
// local server.
func newClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if model == "" {
		model = "llama3-8b-8192"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Groq client: %w", err)
	}

	return &Client{
		llm:         llm,
		maxTokens:   1024,
		temperature: 0.2,
		timeout:     timeout,
	}, nil
}

// Generate invokes the model with the assembled messages and returns the
// generated text. The call races against the configured timeout; if the
// deadline fires first, whether during the request or while the response is
// still being read, the result is ErrGenerationTimeout. Any other failure
// surfaces as a provider error.
func (c *Client) Generate(ctx context.Context, messages []models.Message) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(messageType(m.Role), m.Content))
	}

	resp, err := c.llm.GenerateContent(genCtx, content,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		// The deadline can fire at any phase of the call; inspect the
		// deadline context rather than the error chain.
		if genCtx.Err() != nil && ctx.Err() == nil {
			return "", ErrGenerationTimeout
		}
		return "", fmt.Errorf("calling Groq: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}
	return resp.Choices[0].Content, nil
}

// messageType maps the conversation role onto langchaingo's message types.
func messageType(role models.Role) schema.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return schema.ChatMessageTypeSystem
	case models.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
