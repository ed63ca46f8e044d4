package openrouter

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.3-70b-instruct:free"

	noResponseText = "No response received."
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Stop        []string
	HTTPTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		MaxTokens:   1000,
		Temperature: 0.1,
		Stop:        []string{"User Query:"},
		HTTPTimeout: 60 * time.Second,
	}
}

// Completer sends one-turn chat completions to an OpenAI-compatible
// endpoint (OpenRouter by default).
type Completer struct {
	client   *openai.Client
	cfg      Config
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Completer {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = def.BaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = def.HTTPTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}

	return &Completer{
		client:   openai.NewClientWithConfig(clientConfig),
		cfg:      cfg,
		executor: executor,
	}
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stop:        c.cfg.Stop,
	}

	const op = "openrouter.chat_completion"
	resp, err := resilience.Call(ctx, c.executor, op, func(callCtx context.Context) (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(callCtx, req)
	}, classifyOpenRouterError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(op, err)
	}

	if len(resp.Choices) == 0 {
		return noResponseText, nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
