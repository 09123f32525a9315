package model

// ShippingAddress holds the delivery details captured in the first checkout step.
// Every field is mandatory for order submission.
type ShippingAddress struct {
	FullName    string `json:"full_name" validate:"required"`
	Phone       string `json:"phone_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	AddressLine string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	Province    string `json:"province" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
}

// ShippingMethod selects the delivery speed and therefore the shipping fee.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// PaymentMethod enumerates the payment options offered at checkout.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentGCash          PaymentMethod = "gcash"
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentPayPal         PaymentMethod = "paypal"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{
	PaymentCashOnDelivery,
	PaymentBankTransfer,
	PaymentGCash,
	PaymentCreditCard,
	PaymentPayPal,
}

// RequiredDetails returns the detail keys that must be present for m.
func (m PaymentMethod) RequiredDetails() []string {
	switch m {
	case PaymentCreditCard:
		return []string{"cardNumber", "expiryDate", "cvv", "cardName"}
	case PaymentGCash:
		return []string{"gcashNumber"}
	case PaymentPayPal:
		return []string{"paypalEmail"}
	default:
		return nil
	}
}

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentSelection is the payment step's captured data.
type PaymentSelection struct {
	Method  PaymentMethod     `json:"method"`
	Details map[string]string `json:"details,omitempty"`
}

// OrderDraft accumulates checkout data until submission.
type OrderDraft struct {
	Shipping       ShippingAddress  `json:"shipping"`
	ShippingMethod ShippingMethod   `json:"shipping_method"`
	Payment        PaymentSelection `json:"payment"`
	Items          []CartItem       `json:"items"`
	Subtotal       float64          `json:"subtotal"`
	ShippingFee    float64          `json:"shipping_fee"`
	PromoCode      string           `json:"promo_code,omitempty"`
	Discount       float64          `json:"discount"`
	Total          float64          `json:"total"`
}

// CheckoutRequest is the order-creation payload sent to the backend.
type CheckoutRequest struct {
	ShippingAddress CheckoutAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
}

// CheckoutAddress is the backend's shape of a shipping address.
type CheckoutAddress struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
}

// ShippingMethodRequest selects a shipping method.
type ShippingMethodRequest struct {
	Method ShippingMethod `json:"method"`
}

// PromoRequest carries a promo code to apply.
type PromoRequest struct {
	Code string `json:"code"`
}
