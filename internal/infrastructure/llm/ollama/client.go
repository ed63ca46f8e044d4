package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
	MaxTokens          int
	Temperature        float64
	Stop               []string
}

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
	options    Options
}

func New(baseURL, genModel, embedModel string) *Client {
	return NewWithOptions(baseURL, genModel, embedModel, Options{})
}

func NewWithOptions(baseURL, genModel, embedModel string, options Options) *Client {
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
		options:    options,
	}
}

// Embedder produces dense vectors for outlet records and user queries.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: expected %d vectors, got %d", len(texts), len(response.Embeddings))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Completer runs single-shot, non-streaming generations against a local model.
type Completer struct {
	client *Client
}

func NewCompleter(client *Client) *Completer {
	return &Completer{client: client}
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	opts := map[string]any{}
	if c.client.options.MaxTokens > 0 {
		opts["num_predict"] = c.client.options.MaxTokens
	}
	if c.client.options.Temperature > 0 {
		opts["temperature"] = c.client.options.Temperature
	}
	if len(c.client.options.Stop) > 0 {
		opts["stop"] = c.client.options.Stop
	}

	reqBody := map[string]any{
		"model":  c.client.genModel,
		"prompt": prompt,
		"stream": false,
	}
	if len(opts) > 0 {
		reqBody["options"] = opts
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.client.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
