package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"day first", "01/03/2024", "2024-03-01", true},
		{"iso", "2024-03-01", "2024-03-01", true},
		{"month first fallback", "03/25/2024", "2024-03-25", true},
		{"day over twelve", "25/03/2024", "2024-03-25", true},
		{"single digit groups", "5/3/2024", "2024-03-05", true},
		{"not a date", "not-a-date", "", false},
		{"empty", "", "", false},
		{"impossible date", "31/02/2024", "", false},
		{"invalid under both orders", "13/13/2024", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format(ISODate))
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"currency prefix with thousands", "R$ 1.234,56", "1234.56"},
		{"plain decimal comma", "50,00", "50"},
		{"integer", "150", "150"},
		{"negative folds to absolute", "-25,90", "25.9"},
		{"unparseable is zero", "abc", "0"},
		{"empty is zero", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", got, tt.want)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "mercado extra", Normalize("  Mercado Extra "))
	assert.Equal(t, "cafe sao joao", Normalize("Café São João"))
	assert.Equal(t, "acougue", Normalize("AÇOUGUE"))
	assert.Equal(t, Normalize("FARMÁCIA"), Normalize("farmacia"))
}
