// Package normalizer converts raw statement fields into canonical values:
// dates to time.Time, amounts to non-negative decimals, and free text to a
// folded form shared by matching and fingerprinting.
package normalizer

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ISODate is the canonical date layout used throughout the import pipeline.
const ISODate = "2006-01-02"

// ParseDate parses a statement date. Accepted layouts, in order:
// DD/MM/YYYY, YYYY-MM-DD, MM/DD/YYYY. Slash dates are read day-first; the
// month-first layout only catches dates that are impossible day-first.
// The second return is false for anything unrecognized; callers drop the row.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Non-padded layout verbs accept "05/03/2024" and "5/3/2024" alike.
	if t, err := time.Parse("2/1/2006", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(ISODate, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("1/2/2006", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseAmount parses a pt-BR formatted amount ("R$ 1.234,56") into an
// absolute decimal. Sign is intentionally discarded: transaction direction
// comes from the mapped type column, never from the amount. Unparseable
// input normalizes to zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds text for comparison: lowercase, diacritics stripped via NFD
// decomposition and combining-mark removal, trimmed. Every description or
// category comparison in the pipeline must go through this function, or
// fingerprints and matches silently diverge.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}
