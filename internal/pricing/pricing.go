package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	TaxRate               = decimal.RequireFromString("0.10")
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
)

// Breakdown holds unrounded amounts. Round only when presenting.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate derives tax, shipping and total from a subtotal. Shipping is free
// only when the subtotal is strictly greater than the threshold.
func Calculate(subtotal decimal.Decimal) Breakdown {
	tax := subtotal.Mul(TaxRate)
	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// Totaler is anything with a running subtotal, e.g. a cart.
type Totaler interface {
	Total() decimal.Decimal
}

func For(t Totaler) Breakdown {
	return Calculate(t.Total())
}

// FreeShipping reports whether no shipping fee applies.
func (b Breakdown) FreeShipping() bool {
	return b.Shipping.IsZero()
}

// Display is the breakdown rounded to cents for presentation.
type Display struct {
	Subtotal     string `json:"subtotal"`
	Tax          string `json:"tax"`
	Shipping     string `json:"shipping"`
	Total        string `json:"total"`
	FreeShipping bool   `json:"free_shipping"`
}

func (b Breakdown) Display() Display {
	return Display{
		Subtotal:     Format(b.Subtotal),
		Tax:          Format(b.Tax),
		Shipping:     Format(b.Shipping),
		Total:        Format(b.Total),
		FreeShipping: b.FreeShipping(),
	}
}

// Format rounds half away from zero to two places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
