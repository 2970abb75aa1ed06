// Package fingerprint derives coarse content identities for transactions and
// classifies duplicates, both within an incoming batch and against the
// persisted ledger.
package fingerprint

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmacedo/extrato/internal/domain/importer/normalizer"
)

// Compute derives the identity string for a transaction. Two genuinely
// distinct transactions with the same date, amount and description collide on
// purpose: suppressing re-imports matters more than row-level identity.
func Compute(date time.Time, amount decimal.Decimal, description string) string {
	d := strings.ReplaceAll(date.Format(normalizer.ISODate), "-", "")
	a := strings.ReplaceAll(amount.StringFixed(2), ".", "")
	return d + "_" + a + "_" + normalizer.Normalize(description)
}

// MarkInternal flags every row whose fingerprint occurs more than once in the
// batch, including the first occurrence retroactively. The returned slice is
// parallel to fingerprints.
func MarkInternal(fingerprints []string) []bool {
	flagged := make([]bool, len(fingerprints))
	first := make(map[string]int, len(fingerprints))
	for i, fp := range fingerprints {
		if j, seen := first[fp]; seen {
			flagged[j] = true
			flagged[i] = true
			continue
		}
		first[fp] = i
	}
	return flagged
}

// Set is a fingerprint membership index over the persisted ledger.
type Set map[string]struct{}

// Source carries the ledger fields a fingerprint is re-derived from.
type Source struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// NewSet re-derives fingerprints from persisted ledger rows. Fingerprints are
// computed lazily here rather than read from a stored column, so the set
// always reflects the current fingerprint rules.
func NewSet(sources []Source) Set {
	s := make(Set, len(sources))
	for _, src := range sources {
		s[Compute(src.Date, src.Amount, src.Description)] = struct{}{}
	}
	return s
}

// Contains reports whether the fingerprint exists in the persisted set.
func (s Set) Contains(fp string) bool {
	_, ok := s[fp]
	return ok
}

// MarkExternal flags each fingerprint present in the persisted set. The
// returned slice is parallel to fingerprints.
func (s Set) MarkExternal(fingerprints []string) []bool {
	flagged := make([]bool, len(fingerprints))
	for i, fp := range fingerprints {
		flagged[i] = s.Contains(fp)
	}
	return flagged
}
