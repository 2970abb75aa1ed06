package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		wantCentavos int64
	}{
		{"plain value", "1234.56", 123456},
		{"rounds half up", "10.005", 1001},
		{"negative", "-45.00", -4500},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.value)
			assert.Equal(t, tt.wantCentavos, NewFromDecimal(d).Centavos())
		})
	}
}

func TestAmount_Add(t *testing.T) {
	a := New(123456)
	b := New(4500)
	assert.Equal(t, int64(127956), a.Add(b).Centavos())

	assert.Equal(t, int64(4500), Amount{}.Add(b).Centavos())
	assert.True(t, Zero().Add(Zero()).IsZero())
}

func TestAmount_Display(t *testing.T) {
	assert.Equal(t, "R$1.234,56", New(123456).Display())
	assert.Equal(t, "-R$45,00", New(-4500).Display())
	assert.Equal(t, "R$0,00", Amount{}.Display())
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "1234.56", New(123456).String())
	assert.Equal(t, "0.00", Zero().String())
}

func TestAmount_Abs(t *testing.T) {
	assert.Equal(t, int64(4500), New(-4500).Abs().Centavos())
}

func TestAmount_ToDecimal(t *testing.T) {
	d := New(123456).ToDecimal()
	assert.True(t, d.Equal(decimal.RequireFromString("1234.56")))
}
