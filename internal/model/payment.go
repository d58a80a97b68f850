package model

// PaymentOrder is the backend's answer to an order-creation request. Amount
// is in the currency's minor unit (paise), as the vendor expects it.
type PaymentOrder struct {
	OrderID       string `json:"orderId"`
	VendorOrderID string `json:"razorpayOrderId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	KeyID         string `json:"keyId"`
	Status        string `json:"status"` // "created" on success
}

const OrderStatusCreated = "created"

type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type ActivationOrderRequest struct {
	Receipt string `json:"receipt"`
}

// VerifyPaymentRequest carries the vendor checkout result back to the server
// for signature verification. Field names follow the vendor's callback shape.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type PaymentVerification struct {
	PaymentID string `json:"paymentId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	Status    string `json:"status,omitempty"`
}
