package ports

import (
	"context"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

// ChatService is the inbound contract for answering directory questions.
type ChatService interface {
	Answer(ctx context.Context, query string) (*domain.ChatAnswer, error)
}

// OutletDirectory is the inbound read model for canonical outlet records.
type OutletDirectory interface {
	ListOutlets(ctx context.Context) ([]domain.Outlet, error)
}

// OutletIndexService keeps the search index in sync with the relational store.
type OutletIndexService interface {
	SyncAll(ctx context.Context) (int, error)
	SyncByID(ctx context.Context, outletID int64) error
}
