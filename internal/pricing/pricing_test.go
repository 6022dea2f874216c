package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate(t *testing.T) {
	tests := []struct {
		subtotal string
		tax      string
		shipping string
		total    string
	}{
		{"50", "5.00", "10.00", "65.00"},
		{"150", "15.00", "0.00", "165.00"},
		{"100", "10.00", "10.00", "120.00"},
		{"100.01", "10.00", "0.00", "110.01"},
		{"0", "0.00", "10.00", "10.00"},
		{"214.97", "21.50", "0.00", "236.47"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			b := Calculate(d(tt.subtotal))
			disp := b.Display()
			assert.Equal(t, tt.tax, disp.Tax)
			assert.Equal(t, tt.shipping, disp.Shipping)
			assert.Equal(t, tt.total, disp.Total)
			assert.Equal(t, tt.shipping == "0.00", disp.FreeShipping)
		})
	}
}

func TestCalculateKeepsFullPrecision(t *testing.T) {
	b := Calculate(d("214.97"))

	assert.True(t, b.Tax.Equal(d("21.497")))
	assert.True(t, b.Total.Equal(d("236.467")))
	// Rounded once at the end, not per component.
	assert.Equal(t, "236.47", Format(b.Total))
}

type fixedTotal string

func (f fixedTotal) Total() decimal.Decimal { return d(string(f)) }

func TestFor(t *testing.T) {
	b := For(fixedTotal("150"))
	assert.True(t, b.Subtotal.Equal(d("150")))
	assert.True(t, b.FreeShipping())
}
