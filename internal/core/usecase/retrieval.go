package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
)

const (
	defaultHybridAlpha    = 0.7
	defaultRetrievalLimit = 100
)

type RetrievalOptions struct {
	Alpha   float64
	Limit   int
	Timeout time.Duration
}

// Retriever fetches candidate outlets for a query. Backend failures are
// logged and reported as an empty result.
type Retriever struct {
	searcher ports.HybridSearcher
	opts     RetrievalOptions
}

func NewRetriever(searcher ports.HybridSearcher, opts RetrievalOptions) *Retriever {
	if opts.Alpha < 0 || opts.Alpha > 1 {
		opts.Alpha = defaultHybridAlpha
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultRetrievalLimit
	}
	return &Retriever{searcher: searcher, opts: opts}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) []domain.Outlet {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	outlets, err := r.searcher.HybridSearch(ctx, query, r.opts.Alpha, r.opts.Limit)
	if err != nil {
		slog.Error("hybrid_search_failed",
			"alpha", r.opts.Alpha,
			"limit", r.opts.Limit,
			"error", err,
		)
		return nil
	}
	if len(outlets) > r.opts.Limit {
		outlets = outlets[:r.opts.Limit]
	}
	return outlets
}
