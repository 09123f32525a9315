// Package coupon resolves checkout promo codes to percentage discounts.
//
// The built-in code ZANE10 is always available. Further codes can be loaded
// from gzipped text files on local disk or S3, one code per line, optionally
// followed by ":PERCENT".
package coupon

import (
	"context"
	"math"
)

// Promotion is a recognised promo code and its discount rate.
type Promotion struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
}

// Discount returns the amount taken off subtotal, rounded to cents.
func (p Promotion) Discount(subtotal float64) float64 {
	if subtotal <= 0 || p.Percent <= 0 {
		return 0
	}
	return math.Round(subtotal*float64(p.Percent)) / 100
}

// Catalog resolves promo codes.
type Catalog interface {
	// Lookup returns the promotion for code or model.ErrInvalidPromoCode.
	Lookup(ctx context.Context, code string) (Promotion, error)

	// Size returns the number of known codes.
	Size() int
}

// CodeSet is a loaded set of promo codes with their percentages.
type CodeSet interface {
	// Percent returns the discount percentage for code.
	Percent(code string) (int, bool)

	// Size returns the number of codes in the set.
	Size() int

	// Codes calls fn for every code in the set.
	Codes(fn func(code string, percent int))
}

// Loader reads a promo code file into a CodeSet.
type Loader interface {
	Load(ctx context.Context, path string) (CodeSet, error)
}
