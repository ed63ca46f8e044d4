package ports

import (
	"context"
	"io"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

// HybridSearcher blends vector similarity (weight alpha) with keyword
// matching (weight 1-alpha) over indexed outlets.
type HybridSearcher interface {
	HybridSearch(ctx context.Context, query string, alpha float64, limit int) ([]domain.Outlet, error)
}

// OutletIndex writes outlets into the hybrid search index.
type OutletIndex interface {
	EnsureCollection(ctx context.Context, vectorSize int) error
	UpsertOutlets(ctx context.Context, outlets []domain.Outlet, vectors [][]float32) error
}

// Embedder builds dense vectors for outlet text and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TextCompleter sends a single prompt to a language model.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OutletRepository persists canonical outlet records.
type OutletRepository interface {
	ListAll(ctx context.Context) ([]domain.Outlet, error)
	GetByID(ctx context.Context, id int64) (*domain.Outlet, error)
	Upsert(ctx context.Context, outlet *domain.Outlet) error
}

// OutletEventQueue carries "outlet changed" notifications to the index worker.
type OutletEventQueue interface {
	PublishOutletChanged(ctx context.Context, outletID int64) error
	SubscribeOutletChanged(ctx context.Context, handler func(context.Context, int64) error) error
}

// DirectoryExporter renders outlet records into a downloadable document.
type DirectoryExporter interface {
	ContentType() string
	WriteOutlets(w io.Writer, outlets []domain.Outlet) error
}
