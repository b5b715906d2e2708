package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/gnemet/deckforge/internal/catalog"
	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/logger"
	"github.com/gnemet/deckforge/internal/search"
)

var (
	// ErrNoAPIKey is returned when the active provider has no key configured.
	ErrNoAPIKey = errors.New("AI provider API key not configured")
	// ErrNoJSON is returned when the model answer holds no parseable JSON object.
	ErrNoJSON = errors.New("no JSON found in LLM output")
)

// Completer sends a single prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

type Client struct {
	completer Completer
	prompt    *template.Template
	log       *logger.Logger
}

// NewClient builds a client for the active provider in cfg.
func NewClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	name, settings, err := cfg.Provider()
	if err != nil {
		return nil, err
	}
	if settings.Key == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAPIKey, name)
	}

	var completer Completer
	switch settings.Driver {
	case "openrouter", "openai":
		completer = NewOpenRouterClient(settings, cfg.Application.LLMTimeout)
	case "gemini":
		completer, err = NewGeminiClient(ctx, settings, cfg.Application.LLMTimeout)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported AI driver %q", settings.Driver)
	}
	return New(completer, log)
}

// New wraps an existing completer.
func New(completer Completer, log *logger.Logger) (*Client, error) {
	text, err := catalog.NewProvider().Prompt("slides")
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("slides").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid slides prompt: %w", err)
	}
	return &Client{completer: completer, prompt: tmpl, log: log}, nil
}

func (c *Client) Close() error {
	return c.completer.Close()
}

// BuildPrompt renders the slide prompt. Snippets without text are skipped.
func (c *Client) BuildPrompt(topic string, snippets []search.Snippet) (string, error) {
	data := struct {
		Topic    string
		Snippets []search.Snippet
	}{Topic: topic}
	for _, s := range snippets {
		if strings.TrimSpace(s.Text) != "" {
			data.Snippets = append(data.Snippets, s)
		}
	}

	var b strings.Builder
	if err := c.prompt.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}

// GenerateSlides asks the model for slide content and returns the decoded,
// still unvalidated JSON value.
func (c *Client) GenerateSlides(ctx context.Context, topic string, snippets []search.Snippet) (any, error) {
	prompt, err := c.BuildPrompt(topic, snippets)
	if err != nil {
		return nil, err
	}

	content, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	c.log.Debug("LLM raw response", "content", content)

	return ParseJSON(content)
}

// ParseJSON decodes model output, tolerating code fences and prose around a
// single JSON object.
func ParseJSON(content string) (any, error) {
	content = strings.TrimSpace(content)

	var v any
	if err := json.Unmarshal([]byte(content), &v); err == nil {
		return v, nil
	}

	fenced := cleanJSONResponse(content)
	if err := json.Unmarshal([]byte(fenced), &v); err == nil {
		return v, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("%w: LLM output was not valid JSON: %v", ErrNoJSON, err)
	}
	return v, nil
}

// cleanJSONResponse removes markdown code fences from a JSON response.
func cleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
