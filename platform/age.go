package platform

import (
	"regexp"
	"strconv"
	"strings"
)

var agePattern = regexp.MustCompile(`(?i)(\d+)\s*(m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days|w|wk|wks|week|weeks|mo|mos|month|months|y|yr|yrs|year|years)\b`)

// ParseAgeHours converts a platform age indicator ("3h", "2 d", "1w",
// "5 hours ago", "just now") into hours. The second return value is false
// when the text contains no recognizable age.
func ParseAgeHours(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "just now") || strings.Contains(lower, "now") && len(lower) <= 8 {
		return 0, true
	}
	if strings.Contains(lower, "yesterday") {
		return 24, true
	}

	m := agePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}

	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "mo"):
		return float64(n) * 24 * 30, true
	case strings.HasPrefix(unit, "m"):
		return float64(n) / 60, true
	case strings.HasPrefix(unit, "h"):
		return float64(n), true
	case strings.HasPrefix(unit, "d"):
		return float64(n) * 24, true
	case strings.HasPrefix(unit, "w"):
		return float64(n) * 24 * 7, true
	case strings.HasPrefix(unit, "y"):
		return float64(n) * 24 * 365, true
	}
	return 0, false
}
