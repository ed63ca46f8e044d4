package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
	"github.com/kirillkom/outlet-assistant/internal/core/usecase"
	rediscache "github.com/kirillkom/outlet-assistant/internal/infrastructure/cache/redis"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/llm/openrouter"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/vector/qdrant"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Options selects the process-scoped clients a binary needs.
type Options struct {
	// WithQueue connects to NATS for outlet change events.
	WithQueue bool
	// Observer receives retry and breaker transitions from every adapter.
	Observer resilience.Observer
	// QueueLagObserver is forwarded to the NATS subscriber.
	QueueLagObserver func(time.Duration)
}

type App struct {
	Config config.Config

	Repo      *postgres.OutletRepository
	Queue     *nats.Queue
	Chat      ports.ChatService
	Directory ports.OutletDirectory
	Indexer   ports.OutletIndexService
	Exporter  ports.DirectoryExporter

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg}
	if err := app.init(ctx, opts); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context, opts Options) error {
	cfg := a.Config

	executor := resilience.NewExecutor(resilienceConfig(cfg))
	if opts.Observer != nil {
		executor.WithObserver(opts.Observer)
	}

	db, err := postgres.OpenDB(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	repo := postgres.NewOutletRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	a.Repo = repo

	if opts.WithQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			LagObserver:        opts.QueueLagObserver,
			HandlerTimeout:     cfg.IndexEventTimeout,
		})
		if err != nil {
			return fmt.Errorf("init message queue: %w", err)
		}
		a.Queue = queue
		a.closers = append(a.closers, func() error {
			queue.Close()
			return nil
		})
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
		MaxTokens:          cfg.LLMMaxTokens,
		Temperature:        cfg.LLMTemperature,
		Stop:               stopSequences(cfg.LLMStop),
	})

	var embedder ports.Embedder = ollama.NewEmbedder(ollamaClient)
	if cfg.RedisURL != "" {
		redisClient, err := rediscache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("init embedding cache: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)
		embedder = rediscache.NewEmbeddingCache(redisClient, embedder, rediscache.Options{
			Namespace: cfg.OllamaEmbedModel,
			TTL:       cfg.EmbedCacheTTL,
		})
	}

	completer, err := newCompleter(cfg, ollamaClient, executor)
	if err != nil {
		return err
	}

	vectorDB := qdrant.NewWithOptions(cfg.QdrantURL, cfg.QdrantCollection, embedder, qdrant.Options{
		APIKey:             cfg.QdrantAPIKey,
		ResilienceExecutor: executor,
	})

	retriever := usecase.NewRetriever(vectorDB, usecase.RetrievalOptions{
		Alpha:   cfg.RAGHybridAlpha,
		Limit:   cfg.RAGRetrievalLimit,
		Timeout: cfg.RetrievalTimeout,
	})
	generator := usecase.NewGenerativeAnswerBuilder(completer, cfg.Brand, cfg.CompletionTimeout)

	a.Chat = usecase.NewChatUseCase(retriever, usecase.NewRenderer(cfg.Brand), generator)
	a.Directory = usecase.NewDirectoryUseCase(repo)
	a.Indexer = usecase.NewIndexOutletsUseCase(repo, embedder, vectorDB, cfg.IndexBatchSize)
	a.Exporter = xlsx.NewExporter()

	slog.Info("bootstrap_completed",
		"llm_provider", cfg.LLMProvider,
		"embedding_cache", cfg.RedisURL != "",
		"queue", opts.WithQueue,
	)
	return nil
}

// Close releases clients in reverse acquisition order.
func (a *App) Close() {
	if a == nil {
		return
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		slog.Warn("shutdown_close_failed", "error", err)
	}
}

func newCompleter(cfg config.Config, ollamaClient *ollama.Client, executor *resilience.Executor) (ports.TextCompleter, error) {
	switch cfg.LLMProvider {
	case ProviderOllama:
		return ollama.NewCompleter(ollamaClient), nil
	case ProviderOpenRouter, "":
		return openrouter.New(openrouter.Config{
			BaseURL:     cfg.OpenRouterURL,
			APIKey:      cfg.OpenRouterAPIKey,
			Model:       cfg.OpenRouterModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: float32(cfg.LLMTemperature),
			Stop:        stopSequences(cfg.LLMStop),
		}, executor), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	def := resilience.DefaultConfig()
	return resilience.Config{
		RetryMaxAttempts:    cfg.ResilienceRetryMaxAttempts,
		RetryInitialBackoff: cfg.ResilienceRetryInitialBackoff,
		RetryMaxBackoff:     cfg.ResilienceRetryMaxBackoff,
		RetryMultiplier:     def.RetryMultiplier,
		// Completions get their own attempt budget.
		OperationMaxAttempts: map[string]int{
			"openrouter.":     cfg.ResilienceCompletionAttempts,
			"ollama.generate": cfg.ResilienceCompletionAttempts,
		},
		BreakerEnabled:          cfg.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      cfg.ResilienceBreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: def.BreakerHalfOpenMaxCalls,
	}
}

// stopSequences splits a "|"-separated LLM_STOP value.
func stopSequences(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
