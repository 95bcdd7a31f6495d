// Package stock vets cart quantities against locally-known stock hints.
//
// The checks here are advisory: hints are snapshots taken when the product
// was last fetched from the catalog, and the Order Service re-validates
// stock authoritatively at submission. A passing check does not guarantee
// the order will be accepted.
package stock

import "errors"

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrStockLimitReached = errors.New("requested quantity exceeds available stock")
)

// CheckPurchasable gates the add-to-cart and buy-now entry points: a product
// whose known stock is zero (or below) never creates or increments a line.
func CheckPurchasable(stock int) error {
	if stock <= 0 {
		return ErrOutOfStock
	}
	return nil
}

// ClampIncrement applies delta to the current quantity under the known stock
// ceiling. A proposed quantity below 1 signals removal. When the proposal
// exceeds a known ceiling the ceiling is returned together with
// ErrStockLimitReached so the caller can surface the clamp. knownStock <= 0
// means the ceiling is unknown and no clamp applies.
func ClampIncrement(current, delta, knownStock int) (quantity int, remove bool, err error) {
	proposed := current + delta
	if proposed < 1 {
		return 0, true, nil
	}
	if knownStock > 0 && proposed > knownStock {
		return knownStock, false, ErrStockLimitReached
	}
	return proposed, false, nil
}
