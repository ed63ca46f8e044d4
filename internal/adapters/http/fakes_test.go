package httpadapter

import (
	"context"
	"io"
	"net/http"

	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

type chatFake struct {
	answer *domain.ChatAnswer
	err    error
	panic  bool
	query  string
}

func (f *chatFake) Answer(_ context.Context, query string) (*domain.ChatAnswer, error) {
	f.query = query
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &domain.ChatAnswer{Text: "ok", Intent: domain.IntentGeneric}, nil
}

type directoryFake struct {
	outlets []domain.Outlet
	err     error
}

func (f directoryFake) ListOutlets(context.Context) ([]domain.Outlet, error) {
	return f.outlets, f.err
}

type exporterFake struct {
	err error
}

func (exporterFake) ContentType() string { return "application/test" }

func (f exporterFake) WriteOutlets(w io.Writer, outlets []domain.Outlet) error {
	if f.err != nil {
		return f.err
	}
	for _, o := range outlets {
		_, _ = io.WriteString(w, o.Name+"\n")
	}
	return nil
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, &chatFake{}, directoryFake{outlets: []domain.Outlet{{ID: 1, Name: "Subway A"}}}, exporterFake{}, nil).Handler()
}
