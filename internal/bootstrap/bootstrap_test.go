package bootstrap

import (
	"testing"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/llm/openrouter"
)

func TestNewCompleterSelectsProvider(t *testing.T) {
	client := ollama.New("http://localhost:11434", "gen", "embed")

	got, err := newCompleter(config.Config{LLMProvider: ProviderOllama}, client, nil)
	if err != nil {
		t.Fatalf("newCompleter(ollama) error = %v", err)
	}
	if _, ok := got.(*ollama.Completer); !ok {
		t.Fatalf("expected ollama completer, got %T", got)
	}

	got, err = newCompleter(config.Config{LLMProvider: ProviderOpenRouter}, client, nil)
	if err != nil {
		t.Fatalf("newCompleter(openrouter) error = %v", err)
	}
	if _, ok := got.(*openrouter.Completer); !ok {
		t.Fatalf("expected openrouter completer, got %T", got)
	}

	if _, err := newCompleter(config.Config{LLMProvider: "gpt-local"}, client, nil); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestStopSequencesSplitsOnPipe(t *testing.T) {
	got := stopSequences("User Query:| ###  |")
	if len(got) != 2 || got[0] != "User Query:" || got[1] != "###" {
		t.Fatalf("unexpected stop sequences %q", got)
	}
	if stopSequences("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestResilienceConfigCarriesOverrides(t *testing.T) {
	got := resilienceConfig(config.Config{
		ResilienceRetryMaxAttempts:   5,
		ResilienceCompletionAttempts: 1,
		ResilienceBreakerEnabled:     true,
		ResilienceBreakerMinRequests: -1,
		ResilienceBreakerOpenTimeout: time.Minute,
	})
	if got.RetryMaxAttempts != 5 || !got.BreakerEnabled || got.BreakerOpenTimeout != time.Minute {
		t.Fatalf("unexpected resilience config %+v", got)
	}
	if got.OperationMaxAttempts["openrouter."] != 1 || got.OperationMaxAttempts["ollama.generate"] != 1 {
		t.Fatalf("expected completion attempts override, got %v", got.OperationMaxAttempts)
	}
	if got.BreakerMinRequests != 0 {
		t.Fatalf("expected negative min requests to clamp to 0, got %d", got.BreakerMinRequests)
	}
}

func TestCloseIsSafeOnNilAndRepeated(t *testing.T) {
	var nilApp *App
	nilApp.Close()

	calls := 0
	app := &App{closers: []func() error{func() error { calls++; return nil }}}
	app.Close()
	app.Close()
	if calls != 1 {
		t.Fatalf("expected closer to run once, got %d", calls)
	}
}
