package checkout

import "errors"

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrTermsNotAccepted = errors.New("terms and conditions must be accepted")
	ErrIdentityRequired = errors.New("buyer identity is required for checkout")
	ErrCheckoutInFlight = errors.New("a checkout for this cart is already in progress")
)
