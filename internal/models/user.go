package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User rows are upserted from identity-provider webhooks; the ID is the
// provider's subject claim.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,unique,notnull" json:"email"`
	FirstName string    `bun:"first_name" json:"first_name"`
	LastName  string    `bun:"last_name" json:"last_name"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// Role grants a user one capability, e.g. "admin" or "ticket:validate".
type Role struct {
	bun.BaseModel `bun:"table:roles"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	UserID     string `bun:"user_id,notnull,unique:user_capability" json:"user_id"`
	Capability string `bun:"capability,notnull,unique:user_capability" json:"capability"`
}
