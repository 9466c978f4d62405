package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID       string `bun:"id,pk" json:"id"`
	UserID   string `bun:"user_id,notnull" json:"user_id"`
	EventID  string `bun:"event_id,notnull" json:"event_id"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`

	// All amounts are minor currency units (paise).
	TotalAmountMinor int64 `bun:"total_amount_minor,notnull" json:"total_amount_minor"`
	DiscountPercent  int64 `bun:"discount_percent" json:"discount_percent"`
	FinalAmountMinor int64 `bun:"final_amount_minor,notnull" json:"final_amount_minor"`

	PaymentStatus PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`

	GatewayOrderID   string `bun:"gateway_order_id,nullzero,unique" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `bun:"gateway_payment_id,nullzero" json:"gateway_payment_id,omitempty"`
	GatewaySignature string `bun:"gateway_signature,nullzero" json:"-"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type OrderRequest struct {
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
}

type OrderWithTickets struct {
	Order   Order    `json:"order"`
	Tickets []Ticket `json:"tickets"`
}
