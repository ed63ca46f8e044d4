// Package redis caches dense embeddings so repeated queries and unchanged
// outlets skip the embedding model.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/outlet-assistant/internal/core/ports"
)

const defaultTTL = 24 * time.Hour

type Options struct {
	// Namespace separates keys of different embedding models.
	Namespace string
	TTL       time.Duration
}

type EmbeddingCache struct {
	client    redis.UniversalClient
	inner     ports.Embedder
	namespace string
	ttl       time.Duration
}

func NewEmbeddingCache(client redis.UniversalClient, inner ports.Embedder, options Options) *EmbeddingCache {
	ttl := options.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	namespace := options.Namespace
	if namespace == "" {
		namespace = "default"
	}
	return &EmbeddingCache{
		client:    client,
		inner:     inner,
		namespace: namespace,
		ttl:       ttl,
	}
}

// Connect parses a redis:// URL and verifies the server answers PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *EmbeddingCache) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Embed serves cached vectors and only sends misses to the wrapped embedder.
// Cache failures are logged and bypassed.
func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.key(text)
	}

	out := make([][]float32, len(texts))
	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Warn("embedding_cache_read_failed", "error", err)
		cached = nil
	}
	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var vector []float32
		if err := json.Unmarshal([]byte(s), &vector); err != nil {
			continue
		}
		out[i] = vector
	}

	var missIdx []int
	var missTexts []string
	for i := range out {
		if out[i] == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding cache: expected %d vectors, got %d", len(missTexts), len(fresh))
	}

	pipe := c.client.Pipeline()
	for j, i := range missIdx {
		out[i] = fresh[j]
		data, err := json.Marshal(fresh[j])
		if err != nil {
			continue
		}
		pipe.Set(ctx, keys[i], data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("embedding_cache_write_failed", "error", err, "entries", len(missIdx))
	}
	return out, nil
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "outlet-assistant:embedding:" + c.namespace + ":" + hex.EncodeToString(sum[:])
}
