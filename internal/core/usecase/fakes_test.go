package usecase

import (
	"context"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

type searcherFake struct {
	outlets []domain.Outlet
	err     error

	calls int
	query string
	alpha float64
	limit int
}

func (f *searcherFake) HybridSearch(_ context.Context, query string, alpha float64, limit int) ([]domain.Outlet, error) {
	f.calls++
	f.query = query
	f.alpha = alpha
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.outlets, nil
}

type completerFake struct {
	text string
	err  error

	calls  int
	prompt string
}

func (f *completerFake) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func floatPtr(v float64) *float64 { return &v }

func outlet(name, address, hours string) domain.Outlet {
	return domain.Outlet{Name: name, Address: address, OperatingHours: hours}
}
