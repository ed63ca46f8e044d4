// Package intent routes chat queries to a response strategy.
package intent

import (
	"regexp"
	"strings"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

var locationPattern = regexp.MustCompile(`(?i)\bin ([\w\s]+)`)

var latestClosingPhrases = []string{"closes the latest", "open the longest"}

// Classify picks the strategy for query. Count is checked before
// latest-closing so that "how many ... closes the latest" is a count.
func Classify(query string) domain.Intent {
	q := strings.ToLower(strings.TrimSpace(query))

	if strings.Contains(q, "count") || strings.Contains(q, "many") {
		return domain.Intent{
			Kind:     domain.IntentCount,
			Location: ExtractLocation(q),
		}
	}
	for _, phrase := range latestClosingPhrases {
		if strings.Contains(q, phrase) {
			return domain.Intent{Kind: domain.IntentLatestClosing}
		}
	}
	return domain.Intent{Kind: domain.IntentGeneric}
}

// ExtractLocation returns the lower-cased words following the first "in",
// or "" when the query names no location.
func ExtractLocation(query string) string {
	m := locationPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m[1]))
}
