package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/Denosadchiy/travel-buddy-ai/internal/llm"
)

// Config holds the settings for constructing a provider.
type Config struct {
	// Provider selects the backend: "openai", "anthropic", or "ollama".
	// OpenAI-compatible gateways (io.net and similar) use "openai" with a
	// custom BaseURL.
	Provider string
	APIKey   string
	BaseURL  string
	// Model is the default model; per-request models override it.
	Model string
}

// langchainCompleter adapts a langchaingo model to the Completer contract.
type langchainCompleter struct {
	name  string
	model llms.Model
}

// New constructs a Completer for the configured provider.
func New(cfg Config) (llm.Completer, error) {
	switch cfg.Provider {
	case "openai", "":
		return newOpenAI(cfg)
	case "anthropic":
		return newAnthropic(cfg)
	case "ollama":
		return newOllama(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newOpenAI(cfg Config) (llm.Completer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("openai", err)
	}
	return &langchainCompleter{name: "openai", model: model}, nil
}

func newAnthropic(cfg Config) (llm.Completer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	opts := []anthropic.Option{anthropic.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}
	model, err := anthropic.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("anthropic", err)
	}
	return &langchainCompleter{name: "anthropic", model: model}, nil
}

func newOllama(cfg Config) (llm.Completer, error) {
	opts := []ollama.Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}
	return &langchainCompleter{name: "ollama", model: model}, nil
}

// Name returns the provider name.
func (c *langchainCompleter) Name() string {
	return c.name
}

// Complete sends a system+user message pair and returns the first choice.
func (c *langchainCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, req.System),
		llms.TextParts(schema.ChatMessageTypeHuman, req.Prompt),
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := c.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", llm.TranslateError(c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.TranslateError(c.name, fmt.Errorf("empty completion response"))
	}
	return resp.Choices[0].Content, nil
}
