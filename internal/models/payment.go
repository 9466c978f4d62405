package models

// GatewayOrder is the payment gateway's order object, created before the
// client opens the checkout widget. Amount is in minor units.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// VerifyPaymentRequest is the checkout handler's callback payload: the
// gateway order id, the payment id and the HMAC signature binding the two.
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

type VerifyPaymentResponse struct {
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Tickets       []Ticket      `json:"tickets,omitempty"`
}
