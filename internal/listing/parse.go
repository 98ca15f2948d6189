// Package listing converts scraped listing records into typed, validated
// values ready for persistence.
package listing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// ReferencePrefix namespaces reference numbers from this feed source.
	ReferencePrefix = "PF-"

	// MinPrice and MaxPrice bound acceptable listing prices in AED.
	MinPrice = 1
	MaxPrice = 1_000_000_000

	// sqftToSqm converts square feet to square meters.
	sqftToSqm = 0.092903
)

// currencyTokens are stripped from price strings before parsing.
// Matching is case-insensitive: input is upper-cased first.
var currencyTokens = []string{"AED", "USD", "EUR", "GBP", "$", "€", "£"}

// ParsePrice parses a loosely formatted price string into a whole amount.
// Currency tokens, thousands separators, and whitespace are stripped; the
// remainder is parsed as a float and rounded half away from zero. Returns
// false for non-numeric input or amounts outside [MinPrice, MaxPrice].
func ParsePrice(text string) (int64, bool) {
	s := strings.ToUpper(strings.TrimSpace(text))
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")

	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	rounded := math.Round(v)
	if rounded < MinPrice || rounded > MaxPrice {
		return 0, false
	}
	return int64(rounded), true
}

// ParseCount parses a bedroom or bathroom count. Trailing "+ extra"
// qualifiers like "4 + Maid" are dropped, and the literal word "studio"
// means zero for bedroom-labeled fields only.
func ParseCount(text, field string, min, max int) (int, error) {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "+"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	if strings.EqualFold(s, "studio") {
		if strings.Contains(strings.ToLower(field), "bedroom") {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %q is not a number", field, text)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, text)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%s: %d is outside [%d, %d]", field, n, min, max)
	}
	return n, nil
}

var (
	reSqft   = regexp.MustCompile(`(?i)([0-9][0-9,]*(?:\.[0-9]+)?)\s*sq\.?\s*ft`)
	reSqm    = regexp.MustCompile(`(?i)([0-9][0-9,]*(?:\.[0-9]+)?)\s*sq\.?\s*m`)
	reNumber = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)
)

// ParseSize parses a size string into hundredths of a square meter.
// A number followed by a sqft unit is converted; a number followed by a
// sqm unit is taken as-is; otherwise the first number found is assumed to
// already be in square meters. Returns 0 when no number is present —
// callers must treat 0 as "unknown size", not a zero-size property.
func ParseSize(text string) int64 {
	if m := reSqft.FindStringSubmatch(text); m != nil {
		if v, err := parseNumber(m[1]); err == nil {
			return int64(math.Round(v * sqftToSqm * 100))
		}
	}
	if m := reSqm.FindStringSubmatch(text); m != nil {
		if v, err := parseNumber(m[1]); err == nil {
			return int64(math.Round(v * 100))
		}
	}
	if m := reNumber.FindString(text); m != "" {
		if v, err := parseNumber(m); err == nil {
			return int64(math.Round(v * 100))
		}
	}
	return 0
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// ExtractReference canonicalizes a reference number by prepending
// ReferencePrefix unless it is already there. An empty reference is a
// hard failure, not a soft skip.
func ExtractReference(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", fmt.Errorf("reference number is empty")
	}
	if strings.HasPrefix(s, ReferencePrefix) {
		return s, nil
	}
	return ReferencePrefix + s, nil
}
