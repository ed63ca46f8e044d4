// Package hours extracts closing times from free-text operating hours.
package hours

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

var dayAbbreviations = []struct {
	pattern *regexp.Regexp
	full    string
}{
	{regexp.MustCompile(`\bMon\b`), "Monday"},
	{regexp.MustCompile(`\bTue\b`), "Tuesday"},
	{regexp.MustCompile(`\bWed\b`), "Wednesday"},
	{regexp.MustCompile(`\bThu\b`), "Thursday"},
	{regexp.MustCompile(`\bFri\b`), "Friday"},
	{regexp.MustCompile(`\bSat\b`), "Saturday"},
	{regexp.MustCompile(`\bSun\b`), "Sunday"},
	{regexp.MustCompile(`\bPH\b`), "Public Holiday"},
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	clockToken    = regexp.MustCompile(`(\d{1,2}):(\d{2})\s?([APMapm]{2})`)
)

// Normalize converts en-dashes to hyphens, collapses whitespace and expands
// abbreviated day names (Mon, Tue, ..., PH) as whole words.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "–", "-")
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	for _, abbr := range dayAbbreviations {
		text = abbr.pattern.ReplaceAllString(text, abbr.full)
	}
	return text
}

// ExtractClosingTime returns the latest regular and public-holiday times
// mentioned in text. Both are absent when the text holds no clock times.
//
// A text that mentions "public holiday" anywhere has all of its times
// classified as holiday times.
func ExtractClosingTime(text string) domain.ClosingTimes {
	normalized := Normalize(text)
	matches := clockToken.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return domain.ClosingTimes{}
	}

	isHoliday := strings.Contains(strings.ToLower(normalized), "public holiday")

	var out domain.ClosingTimes
	for _, m := range matches {
		t, ok := parseClock(m[1], m[2], m[3])
		if !ok {
			continue
		}
		if isHoliday {
			out.Holiday = latest(out.Holiday, t)
		} else {
			out.Normal = latest(out.Normal, t)
		}
	}
	return out
}

// ParseClock parses a single 12-hour token such as "9:30 PM" or "10:00pm".
func ParseClock(token string) (domain.ClockTime, bool) {
	m := clockToken.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil || m[0] != strings.TrimSpace(token) {
		return domain.ClockTime{}, false
	}
	return parseClock(m[1], m[2], m[3])
}

func parseClock(hourText, minuteText, meridiem string) (domain.ClockTime, bool) {
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 1 || hour > 12 {
		return domain.ClockTime{}, false
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute > 59 {
		return domain.ClockTime{}, false
	}

	switch strings.ToUpper(meridiem) {
	case "AM":
		hour %= 12
	case "PM":
		hour = hour%12 + 12
	default:
		return domain.ClockTime{}, false
	}
	return domain.NewClockTime(hour, minute), true
}

func latest(current, candidate domain.ClockTime) domain.ClockTime {
	if !current.Valid || candidate.After(current) {
		return candidate
	}
	return current
}
