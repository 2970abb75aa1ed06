package fingerprint

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCompute(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		fp := Compute(day("2024-03-01"), decimal.RequireFromString("1234.56"), "Mercado Extra")
		assert.Equal(t, "20240301_123456_mercado extra", fp)
	})

	t.Run("two decimals always", func(t *testing.T) {
		fp := Compute(day("2024-01-15"), decimal.RequireFromString("50"), "Uber")
		assert.Equal(t, "20240115_5000_uber", fp)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Compute(day("2024-01-15"), decimal.RequireFromString("50"), "Uber")
		b := Compute(day("2024-01-15"), decimal.RequireFromString("50.00"), "Uber")
		assert.Equal(t, a, b)
	})

	t.Run("case and accents fold together", func(t *testing.T) {
		a := Compute(day("2024-01-15"), decimal.RequireFromString("9.90"), "CAFÉ SÃO JOÃO")
		b := Compute(day("2024-01-15"), decimal.RequireFromString("9.90"), "cafe sao joao")
		assert.Equal(t, a, b)
	})
}

func TestMarkInternal(t *testing.T) {
	t.Run("flags every member of a colliding group", func(t *testing.T) {
		flagged := MarkInternal([]string{"a", "b", "a", "c", "a"})
		assert.Equal(t, []bool{true, false, true, false, true}, flagged)
	})

	t.Run("unique fingerprints stay unflagged", func(t *testing.T) {
		flagged := MarkInternal([]string{"a", "b", "c"})
		assert.Equal(t, []bool{false, false, false}, flagged)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.Empty(t, MarkInternal(nil))
	})
}

func TestSet(t *testing.T) {
	set := NewSet([]Source{
		{Date: day("2024-01-15"), Amount: decimal.RequireFromString("50"), Description: "Uber"},
	})

	t.Run("marks persisted rows as external duplicates", func(t *testing.T) {
		fps := []string{
			Compute(day("2024-01-15"), decimal.RequireFromString("50.00"), "UBER"),
			Compute(day("2024-01-16"), decimal.RequireFromString("50.00"), "Uber"),
		}
		assert.Equal(t, []bool{true, false}, set.MarkExternal(fps))
	})

	t.Run("empty set flags nothing", func(t *testing.T) {
		flagged := Set{}.MarkExternal([]string{"x", "y"})
		assert.Equal(t, []bool{false, false}, flagged)
	})
}
