package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// The food tables mix measured values with annotations carried over from
// the printed composition tables: estimates in parentheses, "Tr" for trace
// amounts, several dash styles for "not measured", and occasional unit
// suffixes. All of these must resolve to plain numbers before the solver
// sees them.

var (
	parenValueRe = regexp.MustCompile(`^\(([-+]?\d*\.?\d+)\)$`)
	traceRe      = regexp.MustCompile(`(?i)^\(?\s*tr(?:ace)?\s*\)?$`)
	unitSuffixRe = regexp.MustCompile(`\s*(mg|µg|mcg)$`)
)

var missingMarkers = map[string]bool{
	"—": true, "–": true, "-": true, "N/A": true, "*": true, "†": true,
}

// ParseAmount converts a raw table cell to a nutrient amount. Estimated
// values keep their magnitude, trace and missing markers become zero, and
// anything unparseable is treated as zero rather than propagated.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || missingMarkers[s] {
		return 0
	}
	if traceRe.MatchString(s) {
		return 0
	}
	if m := parenValueRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = unitSuffixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParsePrice converts a raw price cell ("¥1,280", "(980)") to yen.
func ParsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("¥", "", "(", "", ")", "", ",", "").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseBool accepts the TRUE/FALSE strings the sheets export.
func parseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
