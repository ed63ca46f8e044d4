package usecase

import (
	"fmt"
	"html"
	"strings"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

// FilterByLocation keeps outlets whose address contains location as a
// case-insensitive phrase. An empty location keeps everything.
func FilterByLocation(outlets []domain.Outlet, location string) []domain.Outlet {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return outlets
	}
	out := make([]domain.Outlet, 0, len(outlets))
	for _, o := range outlets {
		if o.Address == "" {
			continue
		}
		if strings.Contains(strings.ToLower(o.Address), location) {
			out = append(out, o)
		}
	}
	return out
}

// CountAnswer reports how many outlets match location and lists their names.
func (r *Renderer) CountAnswer(outlets []domain.Outlet, location string) string {
	matched := FilterByLocation(outlets, location)
	if len(matched) == 0 {
		return fmt.Sprintf("<p>❌ There are no %s outlets matching your search.</p>", html.EscapeString(r.brand))
	}

	brand := html.EscapeString(r.brand)
	where := ""
	if location = strings.TrimSpace(location); location != "" {
		where = fmt.Sprintf(" in <b>%s</b>", html.EscapeString(titleCase(location)))
	}

	if len(matched) == 1 {
		return fmt.Sprintf("<p>There is <b>1</b> %s outlet%s, located at <b>%s</b>.</p>",
			brand, where, html.EscapeString(matched[0].DisplayName()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>There are <b>%d</b> %s outlets%s, located at:</p><ul>", len(matched), brand, where)
	for _, o := range matched {
		fmt.Fprintf(&b, "<li>🏪 <b>%s</b></li>", html.EscapeString(o.DisplayName()))
	}
	b.WriteString("</ul>")
	return b.String()
}
