package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
)

type DirectoryUseCase struct {
	repo ports.OutletRepository
}

func NewDirectoryUseCase(repo ports.OutletRepository) *DirectoryUseCase {
	return &DirectoryUseCase{repo: repo}
}

// ListOutlets returns all canonical outlets, or ErrOutletNotFound when the
// directory is empty.
func (uc *DirectoryUseCase) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	outlets, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list outlets: %w", err)
	}
	if len(outlets) == 0 {
		return nil, domain.WrapError(domain.ErrOutletNotFound, "list outlets", errors.New("directory is empty"))
	}
	return outlets, nil
}
