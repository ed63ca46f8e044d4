package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

func newChatUseCase(searcher *searcherFake, completer *completerFake) *ChatUseCase {
	return NewChatUseCase(
		NewRetriever(searcher, RetrievalOptions{}),
		NewRenderer("Subway"),
		NewGenerativeAnswerBuilder(completer, "Subway", 0),
	)
}

func TestChatAnswerRejectsEmptyQueryBeforeRetrieval(t *testing.T) {
	searcher := &searcherFake{}
	uc := newChatUseCase(searcher, &completerFake{})

	_, err := uc.Answer(context.Background(), "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if searcher.calls != 0 {
		t.Fatalf("expected no retrieval, got %d calls", searcher.calls)
	}
}

func TestChatAnswerCountSkipsCompletion(t *testing.T) {
	searcher := &searcherFake{outlets: []domain.Outlet{
		outlet("A", "Kuala Lumpur", ""),
		outlet("B", "Petaling Jaya", ""),
	}}
	completer := &completerFake{text: "llm"}
	uc := newChatUseCase(searcher, completer)

	answer, err := uc.Answer(context.Background(), "  How many outlets in Kuala Lumpur  ")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Intent != domain.IntentCount {
		t.Fatalf("expected count intent, got %s", answer.Intent)
	}
	if !strings.Contains(answer.Text, "<b>1</b>") {
		t.Fatalf("unexpected answer %s", answer.Text)
	}
	if completer.calls != 0 {
		t.Fatalf("expected no completion calls, got %d", completer.calls)
	}
	if searcher.query != "how many outlets in kuala lumpur" {
		t.Fatalf("expected normalized query, got %q", searcher.query)
	}
}

func TestChatAnswerCountWinsOverLatestClosing(t *testing.T) {
	searcher := &searcherFake{outlets: []domain.Outlet{outlet("A", "KL", "Daily 9:00 AM - 9:00 PM")}}
	answer, err := newChatUseCase(searcher, &completerFake{}).Answer(context.Background(), "count outlets that closes the latest")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Intent != domain.IntentCount {
		t.Fatalf("expected count intent, got %s", answer.Intent)
	}
}

func TestChatAnswerLatestClosingStructured(t *testing.T) {
	searcher := &searcherFake{outlets: []domain.Outlet{
		outlet("Early", "KL", "Daily 9:00 AM - 9:00 PM"),
		outlet("Late", "KL", "Daily 9:00 AM - 11:00 PM"),
	}}
	completer := &completerFake{}
	answer, err := newChatUseCase(searcher, completer).Answer(context.Background(), "Which outlet closes the latest?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.Contains(answer.Text, "<b>Late</b>") || strings.Contains(answer.Text, "<b>Early</b>") {
		t.Fatalf("unexpected answer %s", answer.Text)
	}
	if completer.calls != 0 || answer.FellThrough {
		t.Fatalf("expected structured answer without completion")
	}
}

func TestChatAnswerLatestClosingFallsThroughToGenerative(t *testing.T) {
	searcher := &searcherFake{outlets: []domain.Outlet{outlet("A", "KL", "")}}
	completer := &completerFake{text: " no hours known "}
	answer, err := newChatUseCase(searcher, completer).Answer(context.Background(), "which outlet closes the latest")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !answer.FellThrough || completer.calls != 1 {
		t.Fatalf("expected generative fallthrough, got %+v calls=%d", answer, completer.calls)
	}
	if answer.Text != "no hours known" {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
}

func TestChatAnswerGenericDegradesOnFailures(t *testing.T) {
	searcher := &searcherFake{err: errors.New("weights unavailable")}
	completer := &completerFake{err: errors.New("status 502")}
	answer, err := newChatUseCase(searcher, completer).Answer(context.Background(), "drive thru near me")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Intent != domain.IntentGeneric || answer.Records != 0 {
		t.Fatalf("unexpected answer metadata %+v", answer)
	}
	if !strings.Contains(answer.Text, "status 502") {
		t.Fatalf("expected failure detail, got %q", answer.Text)
	}
	if !answer.CompletionFailed {
		t.Fatalf("expected completion failure to be flagged")
	}
}
