// Package pricing derives order totals from cart contents and the shipping
// selection. Everything here is pure computation in whole baht; callers must
// re-run Summarize after any cart mutation instead of caching the result.
package pricing

import "github.com/fjod/go_storefront/internal/domain"

const (
	standardFee int64 = 50
	expressFee  int64 = 150
)

// ShippingFee returns the flat fee for the method. Unknown methods price as
// standard so a stale draft can never produce a zero-fee order.
func ShippingFee(method domain.ShippingMethod) int64 {
	if method == domain.ShippingExpress {
		return expressFee
	}
	return standardFee
}

// Summarize computes subtotal, shipping fee and grand total for the given
// line items. Referentially transparent: same inputs, same output.
func Summarize(items []domain.CartLineItem, method domain.ShippingMethod) domain.PriceSummary {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	fee := ShippingFee(method)
	return domain.PriceSummary{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal + fee,
	}
}
