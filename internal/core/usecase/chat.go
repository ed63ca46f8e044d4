package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/intent"
)

var errEmptyQuery = errors.New("query cannot be empty")

// ChatUseCase answers one query: classify, retrieve, then build the answer
// with the strategy the classifier picked.
type ChatUseCase struct {
	retriever *Retriever
	renderer  *Renderer
	generator *GenerativeAnswerBuilder
}

func NewChatUseCase(retriever *Retriever, renderer *Renderer, generator *GenerativeAnswerBuilder) *ChatUseCase {
	return &ChatUseCase{
		retriever: retriever,
		renderer:  renderer,
		generator: generator,
	}
}

func (uc *ChatUseCase) Answer(ctx context.Context, query string) (*domain.ChatAnswer, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat answer", errEmptyQuery)
	}

	queryIntent := intent.Classify(normalized)
	slog.Info("chat_query_received", "query", normalized, "intent", string(queryIntent.Kind))

	outlets := uc.retriever.Retrieve(ctx, normalized)
	answer := &domain.ChatAnswer{
		Intent:  queryIntent.Kind,
		Records: len(outlets),
	}

	switch queryIntent.Kind {
	case domain.IntentCount:
		answer.Text = uc.renderer.CountAnswer(outlets, queryIntent.Location)
		return answer, nil
	case domain.IntentLatestClosing:
		if text, ok := uc.renderer.LatestClosingAnswer(outlets); ok {
			answer.Text = text
			return answer, nil
		}
		slog.Info("latest_closing_fallthrough", "records", len(outlets))
		answer.FellThrough = true
	}

	text, err := uc.generator.generate(ctx, normalized, outlets)
	answer.Text = text
	answer.CompletionFailed = err != nil
	return answer, nil
}
