package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

// QueryEmbedder turns query text into the dense vector used for search.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	APIKey             string
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

// Client stores outlets as points with a named dense vector and a named
// sparse (BM25) vector and serves hybrid queries over both.
type Client struct {
	baseURL    string
	collection string
	apiKey     string
	httpClient *http.Client
	embedder   QueryEmbedder
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string, embedder QueryEmbedder) *Client {
	return NewWithOptions(baseURL, collection, embedder, Options{})
}

func NewWithOptions(baseURL, collection string, embedder QueryEmbedder, options Options) *Client {
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		apiKey:     options.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		embedder:   embedder,
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) HybridSearch(ctx context.Context, query string, alpha float64, limit int) ([]domain.Outlet, error) {
	if limit <= 0 {
		limit = 100
	}
	alpha = min(max(alpha, 0), 1)

	var dense, sparse []queryPoint
	if alpha > 0 {
		vector, err := c.embedder.EmbedQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		dense, err = c.queryPoints(ctx, vector, denseVectorName, limit)
		if err != nil {
			return nil, err
		}
	}
	if sparseQuery := encodeSparseQuery(query); alpha < 1 && !sparseQuery.empty() {
		var err error
		sparse, err = c.queryPoints(ctx, sparseQuery, sparseVectorName, limit)
		if err != nil {
			return nil, err
		}
	}

	return trimOutlets(fuseRelativeScore(dense, sparse, alpha), limit), nil
}

func (c *Client) queryPoints(ctx context.Context, query any, using string, limit int) ([]queryPoint, error) {
	reqBody := map[string]any{
		"query":        query,
		"using":        using,
		"limit":        limit,
		"with_payload": true,
	}

	var points []queryPoint
	path := fmt.Sprintf("/collections/%s/points/query", c.collection)
	err := c.do(ctx, "qdrant.query."+using, http.MethodPost, path, reqBody, func(body io.Reader) error {
		var err error
		points, err = decodeQueryPoints(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) UpsertOutlets(ctx context.Context, outlets []domain.Outlet, vectors [][]float32) error {
	if len(outlets) == 0 {
		return nil
	}
	if len(outlets) != len(vectors) {
		return fmt.Errorf("outlets/vectors mismatch: %d != %d", len(outlets), len(vectors))
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  map[string]any `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(outlets))
	for i, o := range outlets {
		vector := map[string]any{denseVectorName: vectors[i]}
		if sv := encodeSparseOutlet(o); !sv.empty() {
			vector[sparseVectorName] = sv
		}
		points = append(points, point{
			ID:      pointID(o),
			Vector:  vector,
			Payload: outletPayload(o),
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	return c.do(ctx, "qdrant.upsert", http.MethodPut, path, map[string]any{"points": points}, nil)
}

func (c *Client) EnsureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     vectorSize,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{},
		},
	}

	path := fmt.Sprintf("/collections/%s", c.collection)
	err := c.do(ctx, "qdrant.ensure_collection", http.MethodPut, path, reqBody, nil)
	// 409 when the collection already exists.
	if err != nil && resilience.StatusCode(err) != http.StatusConflict {
		return err
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) do(
	ctx context.Context,
	operation, method, path string,
	payload any,
	decode func(io.Reader) error,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &resilience.StatusError{
				Service:    "qdrant",
				Operation:  strings.TrimPrefix(operation, "qdrant."),
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(msg),
			}
		}
		if decode == nil {
			return nil
		}
		return decode(resp.Body)
	}

	err = c.executor.Execute(ctx, operation, call, classifyQdrantError)
	return resilience.MarkTemporary(operation, err, classifyQdrantError)
}
