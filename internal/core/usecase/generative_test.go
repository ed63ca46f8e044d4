package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

func TestGenerativeAnswerBuilderTrimsCompletion(t *testing.T) {
	completer := &completerFake{text: "\n  Try Subway KLCC.  \n"}
	builder := NewGenerativeAnswerBuilder(completer, "Subway", 0)

	got := builder.Build(context.Background(), "are near klcc", []domain.Outlet{
		{Name: "Subway KLCC", Address: "Suria KLCC", OperatingHours: "Daily 10:00 AM - 10:00 PM", WazeLink: "https://waze.com/x"},
	})
	if got != "Try Subway KLCC." {
		t.Fatalf("unexpected answer %q", got)
	}
	for _, want := range []string{
		"The user wants to know about Subway outlets that are near klcc.",
		"<b>Subway KLCC</b><br>📍 Address: Suria KLCC<br>",
		"🕒 Operating Hours: Daily 10:00 AM - 10:00 PM<br>",
		"🌍 Latitude: N/A, Longitude: N/A<br>",
		"### Final Answer:",
	} {
		if !strings.Contains(completer.prompt, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, completer.prompt)
		}
	}
}

func TestGenerativeAnswerBuilderSurfacesFailure(t *testing.T) {
	completer := &completerFake{err: errors.New("dial tcp: connection refused")}
	got := NewGenerativeAnswerBuilder(completer, "Subway", 0).Build(context.Background(), "q", nil)
	if got != "Error: dial tcp: connection refused" {
		t.Fatalf("unexpected answer %q", got)
	}
}

func TestFormatGroundingContextFallbacks(t *testing.T) {
	got := FormatGroundingContext([]domain.Outlet{{}})
	want := "<b>Unknown</b><br>📍 Address: Not available<br>🕒 Operating Hours: Not available<br>" +
		"🌍 Latitude: N/A, Longitude: N/A<br>No Waze link available<br>"
	if got != want {
		t.Fatalf("FormatGroundingContext() = %q, want %q", got, want)
	}
}
