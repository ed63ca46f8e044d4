package usecase

import (
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

const (
	noWazeLinkText = "No Waze link available"
	notAvailable   = "Not available"
	notApplicable  = "N/A"
)

// Renderer builds the HTML-flavoured answers shown by the chat widget.
type Renderer struct {
	brand string
}

func NewRenderer(brand string) *Renderer {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		brand = "Subway"
	}
	return &Renderer{brand: brand}
}

func isPlaceholderLink(link string) bool {
	switch strings.TrimSpace(link) {
	case "", "#", "None":
		return true
	default:
		return false
	}
}

func wazeAnchor(link string) string {
	link = strings.TrimSpace(link)
	if isPlaceholderLink(link) {
		return noWazeLinkText
	}
	return `<a href="` + html.EscapeString(link) + `" target="_blank" rel="noopener noreferrer" ` +
		`style="color: #007bff; text-decoration: none;">🚗 Navigate Here</a>`
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return notApplicable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// titleCase upper-cases the first letter of every space separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
