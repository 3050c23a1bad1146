package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	IllegalTransitionError = errors.New("illegal transition of checkout stage")

	// ErrNoAddress blocks Shipping → Payment until an address is selected.
	ErrNoAddress = errors.New("no shipping address selected")

	// ErrNoPaymentMethod blocks Payment → Confirmation until a method is set.
	ErrNoPaymentMethod = errors.New("no payment method selected")

	// ErrIntentRequired blocks Payment → Confirmation while qr-push is the
	// method and no payment intent has been obtained yet.
	ErrIntentRequired = errors.New("payment intent required before advancing")
)
