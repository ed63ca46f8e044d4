package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
)

const defaultIndexBatchSize = 10

// IndexOutletsUseCase copies canonical outlets from the relational store
// into the hybrid search index.
type IndexOutletsUseCase struct {
	repo      ports.OutletRepository
	embedder  ports.Embedder
	index     ports.OutletIndex
	batchSize int
}

func NewIndexOutletsUseCase(
	repo ports.OutletRepository,
	embedder ports.Embedder,
	index ports.OutletIndex,
	batchSize int,
) *IndexOutletsUseCase {
	if batchSize <= 0 {
		batchSize = defaultIndexBatchSize
	}
	return &IndexOutletsUseCase{
		repo:      repo,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
	}
}

func (uc *IndexOutletsUseCase) SyncAll(ctx context.Context) (int, error) {
	outlets, err := uc.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load outlets: %w", err)
	}
	if len(outlets) == 0 {
		slog.Warn("index_sync_empty_directory")
		return 0, nil
	}

	indexed := 0
	for start := 0; start < len(outlets); start += uc.batchSize {
		end := min(start+uc.batchSize, len(outlets))
		if err := uc.indexBatch(ctx, outlets[start:end]); err != nil {
			return indexed, fmt.Errorf("index batch %d-%d: %w", start, end, err)
		}
		indexed += end - start
	}
	slog.Info("index_sync_completed", "outlets", indexed)
	return indexed, nil
}

func (uc *IndexOutletsUseCase) SyncByID(ctx context.Context, outletID int64) error {
	outlet, err := uc.repo.GetByID(ctx, outletID)
	if err != nil {
		return fmt.Errorf("load outlet %d: %w", outletID, err)
	}
	return uc.indexBatch(ctx, []domain.Outlet{*outlet})
}

func (uc *IndexOutletsUseCase) indexBatch(ctx context.Context, outlets []domain.Outlet) error {
	texts := make([]string, 0, len(outlets))
	for _, o := range outlets {
		texts = append(texts, EmbeddingText(o))
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed outlets: %w", err)
	}
	if len(vectors) != len(outlets) || len(vectors[0]) == 0 {
		return fmt.Errorf("embed outlets: got %d vectors for %d outlets", len(vectors), len(outlets))
	}

	if err := uc.index.EnsureCollection(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	if err := uc.index.UpsertOutlets(ctx, outlets, vectors); err != nil {
		return fmt.Errorf("upsert outlets: %w", err)
	}
	return nil
}

// EmbeddingText is the text vectorized for an outlet.
func EmbeddingText(o domain.Outlet) string {
	parts := []string{o.DisplayName(), o.Address, o.OperatingHours}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
