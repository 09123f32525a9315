package checkout

import (
	"math"

	"storefront/internal/model"
)

// Shipping fees by method.
const (
	StandardShippingFee = 100.0
	ExpressShippingFee  = 150.0
)

// ShippingFee returns the fee for m.
func ShippingFee(m model.ShippingMethod) (float64, error) {
	switch m {
	case model.ShippingStandard:
		return StandardShippingFee, nil
	case model.ShippingExpress:
		return ExpressShippingFee, nil
	default:
		return 0, model.ErrUnknownShippingMethod
	}
}

// Total is subtotal minus discount plus the shipping fee. The discount never
// takes the pre-shipping amount below zero.
func Total(subtotal, discount, shippingFee float64) float64 {
	goods := subtotal - discount
	if goods < 0 {
		goods = 0
	}
	return roundCents(goods + shippingFee)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
