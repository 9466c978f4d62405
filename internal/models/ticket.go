package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID string `bun:"ticket_id,pk" json:"ticket_id"`
	OrderID  string `bun:"order_id,notnull,unique:order_seq" json:"order_id"`
	// Seq is the ticket's position within its order batch. The (order_id, seq)
	// unique constraint is what makes issuance safe against a racing re-issue.
	Seq     int    `bun:"seq,notnull,unique:order_seq" json:"seq"`
	UserID  string `bun:"user_id,notnull" json:"user_id"`
	EventID string `bun:"event_id,notnull" json:"event_id"`

	PricePaidMinor int64  `bun:"price_paid_minor,notnull" json:"price_paid_minor"`
	QRCode         []byte `bun:"qr_code" json:"qr_code,omitempty"`

	IsUsed      bool      `bun:"is_used" json:"is_used"`
	ValidatedAt time.Time `bun:"validated_at,nullzero" json:"validated_at,omitempty"`
	IssuedAt    time.Time `bun:"issued_at,notnull" json:"issued_at"`
}
