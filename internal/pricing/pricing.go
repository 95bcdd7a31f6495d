// Package pricing derives the order summary from a set of cart lines.
// Every function here is pure; identical inputs always produce identical
// outputs, so the same figures appear on the cart page and the checkout page.
package pricing

import (
	"math"

	"github.com/pharmakart/cart-service/internal/domain"
)

const (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = 50.00

	// FlatShippingFee is charged below the free-shipping threshold. It is an
	// estimate shown before submission; the seller settles the final charge
	// after the order is placed.
	FlatShippingFee = 25.00
)

// Summary is the presentation-level price breakdown of a cart.
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// Subtotal sums unit price times quantity over all lines.
func Subtotal(lines []domain.CartLine) float64 {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.Subtotal()
	}
	return subtotal
}

// ShippingFee applies the threshold policy to a subtotal.
func ShippingFee(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Tax is fixed at zero. It stays an explicit line item so a tax policy can
// slot in later without changing the summary shape.
func Tax(subtotal float64) float64 {
	return 0
}

// Summarize computes the full breakdown for a cart.
func Summarize(lines []domain.CartLine) Summary {
	subtotal := Subtotal(lines)
	shipping := ShippingFee(subtotal)
	tax := Tax(subtotal)
	return Summary{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       subtotal + shipping + tax,
	}
}

// DiscountPercent returns the rounded percentage saved against the list
// price, or 0 when the discounted price is absent, zero, or not actually
// lower. Never negative.
func DiscountPercent(listPrice, discountedPrice float64) int {
	if listPrice <= 0 || discountedPrice <= 0 || discountedPrice >= listPrice {
		return 0
	}
	return int(math.Round(100 * (listPrice - discountedPrice) / listPrice))
}
