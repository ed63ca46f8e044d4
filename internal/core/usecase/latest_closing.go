package usecase

import (
	"fmt"
	"html"
	"strings"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/hours"
)

type ClosingCandidate struct {
	Outlet  domain.Outlet
	Closing domain.ClosingTimes
}

// LatestClosing returns every outlet sharing the latest regular closing time.
// Outlets without a parseable regular closing time are ignored.
func LatestClosing(outlets []domain.Outlet) []ClosingCandidate {
	candidates := make([]ClosingCandidate, 0, len(outlets))
	var latest domain.ClockTime
	for _, o := range outlets {
		closing := hours.ExtractClosingTime(o.OperatingHours)
		if !closing.Normal.Valid {
			continue
		}
		candidates = append(candidates, ClosingCandidate{Outlet: o, Closing: closing})
		if !latest.Valid || closing.Normal.After(latest) {
			latest = closing.Normal
		}
	}

	out := make([]ClosingCandidate, 0, 1)
	for _, c := range candidates {
		if c.Closing.Normal.Equal(latest) {
			out = append(out, c)
		}
	}
	return out
}

// LatestClosingAnswer renders the outlets that close the latest. It returns
// false when no outlet has a parseable closing time.
func (r *Renderer) LatestClosingAnswer(outlets []domain.Outlet) (string, bool) {
	latest := LatestClosing(outlets)
	if len(latest) == 0 {
		return "", false
	}

	items := make([]string, 0, len(latest))
	for _, c := range latest {
		o := c.Outlet
		holidayStatus := "Open"
		if c.Closing.Holiday.Valid {
			holidayStatus = "Closed"
		}
		items = append(items, fmt.Sprintf(
			"<b>%s</b><br>📍 Address: %s<br>🕒 Operating Hours: %s<br>🚦 Public Holiday Status: %s<br>"+
				"🌍 Location: Latitude %s, Longitude %s<br>%s<br>",
			html.EscapeString(o.DisplayName()),
			html.EscapeString(orDefault(o.Address, notAvailable)),
			html.EscapeString(orDefault(o.OperatingHours, notApplicable)),
			holidayStatus,
			formatCoordinate(o.Latitude),
			formatCoordinate(o.Longitude),
			wazeAnchor(o.WazeLink),
		))
	}

	return fmt.Sprintf("The latest closing %s outlet(s): <br>%s",
		html.EscapeString(r.brand), strings.Join(items, "<br>")), true
}
