package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
)

// GenerativeAnswerBuilder grounds a language model completion in retrieved
// outlets. Completion failures come back as an "Error: ..." answer.
type GenerativeAnswerBuilder struct {
	completer ports.TextCompleter
	brand     string
	timeout   time.Duration
}

func NewGenerativeAnswerBuilder(completer ports.TextCompleter, brand string, timeout time.Duration) *GenerativeAnswerBuilder {
	return &GenerativeAnswerBuilder{
		completer: completer,
		brand:     NewRenderer(brand).brand,
		timeout:   timeout,
	}
}

func (b *GenerativeAnswerBuilder) Build(ctx context.Context, query string, outlets []domain.Outlet) string {
	text, _ := b.generate(ctx, query, outlets)
	return text
}

// generate also reports the completion error that Build folds into the text.
func (b *GenerativeAnswerBuilder) generate(ctx context.Context, query string, outlets []domain.Outlet) (string, error) {
	prompt := BuildGenerativePrompt(b.brand, query, FormatGroundingContext(outlets))

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	text, err := b.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("completion_failed", "error", err)
		return "Error: " + err.Error(), err
	}
	return strings.TrimSpace(text), nil
}

// FormatGroundingContext renders outlets as fixed-order text blocks.
func FormatGroundingContext(outlets []domain.Outlet) string {
	var b strings.Builder
	for _, o := range outlets {
		fmt.Fprintf(&b,
			"<b>%s</b><br>📍 Address: %s<br>🕒 Operating Hours: %s<br>🌍 Latitude: %s, Longitude: %s<br>%s<br>",
			o.DisplayName(),
			orDefault(o.Address, notAvailable),
			orDefault(o.OperatingHours, notAvailable),
			formatCoordinate(o.Latitude),
			formatCoordinate(o.Longitude),
			wazeAnchor(o.WazeLink),
		)
	}
	return b.String()
}

func BuildGenerativePrompt(brand, query, groundingContext string) string {
	return fmt.Sprintf(`
### Context:
You are an AI assistant helping users find %[1]s outlets with specific queries.

### Query:
The user wants to know about %[1]s outlets that %[2]s.

### Retrieved Data:
%[3]s

### Final Answer:
`, brand, query, groundingContext)
}
