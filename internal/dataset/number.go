package dataset

import (
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-compiled regex for numeric validation (avoids recompilation on each call)
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseNumber parses a plain decimal number ("25000", "-3.5", ".75").
// Currency symbols, separators and exponents are rejected so that text such
// as ZIP+4 codes or phone numbers with dashes stay strings.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	return scanNumeric(s)
}

// ParseAmount parses a monetary value leniently:
//   - "$1,234.56" → 1234.56
//   - "(123.45)" → -123.45 (accounting negative)
//   - "€1234", "£1234" → 1234
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u20ac", "")
	s = strings.ReplaceAll(s, "\u00a3", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	return scanNumeric(s)
}

// scanNumeric goes through pgtype.Numeric so that arbitrary-precision input
// is rounded once, consistently, to float64.
func scanNumeric(s string) (float64, bool) {
	var n pgtype.Numeric
	if err := n.Scan(strings.TrimPrefix(s, "+")); err != nil || !n.Valid {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}
