package domain

// CheckoutStage is one step of the checkout wizard.
type CheckoutStage string

const (
	StageShipping     CheckoutStage = "SHIPPING"
	StagePayment      CheckoutStage = "PAYMENT"
	StageConfirmation CheckoutStage = "CONFIRMATION"
)

var stageOrder = map[CheckoutStage]int{
	StageShipping:     0,
	StagePayment:      1,
	StageConfirmation: 2,
}

// Next returns the following stage, or the stage itself when terminal.
func (s CheckoutStage) Next() CheckoutStage {
	switch s {
	case StageShipping:
		return StagePayment
	case StagePayment:
		return StageConfirmation
	default:
		return s
	}
}

// Prev returns the preceding stage, or the stage itself when initial.
func (s CheckoutStage) Prev() CheckoutStage {
	switch s {
	case StageConfirmation:
		return StagePayment
	case StagePayment:
		return StageShipping
	default:
		return s
	}
}

func (s CheckoutStage) IsTerminal() bool {
	return s == StageConfirmation
}

// CanTransitionTo reports whether moving from s to target is a legal wizard
// move: one step forward, or any number of steps backward.
func CanTransitionTo(s, target CheckoutStage) bool {
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[target]
	if !ok {
		return false
	}
	return to == from+1 || to < from
}

func (s CheckoutStage) String() string {
	return string(s)
}

// ShippingMethod selects the delivery tier. Fees are whole baht.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func (m ShippingMethod) Valid() bool {
	return m == ShippingStandard || m == ShippingExpress
}

// PaymentMethod is how the buyer pays. QRPush is a PromptPay-style push
// payment that needs a server-issued intent payload before checkout can
// advance past the payment stage.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentQRPush PaymentMethod = "qr-push"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentQRPush
}

// CheckoutDraft is the ephemeral order-in-progress. Created when checkout
// starts, consumed on confirmation, discarded on abandon.
type CheckoutDraft struct {
	SelectedAddressID  int64          `json:"selected_address_id"`
	ShippingMethod     ShippingMethod `json:"shipping_method"`
	PaymentMethod      PaymentMethod  `json:"payment_method"`
	PaymentIntentToken string         `json:"payment_intent_token,omitempty"`
}

// PriceSummary is derived from the cart and shipping selection. It is
// recomputed on every read, never cached across cart mutations.
type PriceSummary struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Total       int64 `json:"total"`
}

// Order is the backend-owned result of a confirmed checkout.
type Order struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	Items         []CartLineItem `json:"items"`
	AddressID     int64          `json:"address_id"`
	Shipping      ShippingMethod `json:"shipping_method"`
	Payment       PaymentMethod  `json:"payment_method"`
	Summary       PriceSummary   `json:"summary"`
	PaymentIntent string         `json:"payment_intent,omitempty"`
}
