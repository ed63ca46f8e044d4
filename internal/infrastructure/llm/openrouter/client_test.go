package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var got struct {
		Model       string   `json:"model"`
		MaxTokens   int      `json:"max_tokens"`
		Temperature float64  `json:"temperature"`
		Stop        []string `json:"stop"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Subway Bangsar opens at 8 AM. "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.APIKey = "secret"
	answer, err := New(cfg, nil).Complete(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "Subway Bangsar opens at 8 AM." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if auth != "Bearer secret" {
		t.Fatalf("expected bearer auth, got %q", auth)
	}
	if got.Model != DefaultModel || got.MaxTokens != 1000 || got.Temperature != 0.1 {
		t.Fatalf("unexpected generation params: %+v", got)
	}
	if len(got.Stop) != 1 || got.Stop[0] != "User Query:" {
		t.Fatalf("unexpected stop sequence: %v", got.Stop)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "prompt text" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteWithoutChoicesReturnsPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	answer, err := New(cfg, nil).Complete(context.Background(), "q")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "No response received." {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestCompleteClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, kind: domain.ErrTemporary},
		{name: "bad key", status: http.StatusUnauthorized, kind: domain.ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"provider_error"}}`))
			}))
			defer server.Close()

			cfg := DefaultConfig()
			cfg.BaseURL = server.URL
			_, err := New(cfg, nil).Complete(context.Background(), "q")
			if !domain.IsKind(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
		})
	}
}
