package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	DateTime    time.Time `bun:"date_time,notnull" json:"date_time"`
	Location    string    `bun:"location" json:"location"`
	Latitude    float64   `bun:"latitude" json:"latitude"`
	Longitude   float64   `bun:"longitude" json:"longitude"`

	// Base ticket price in minor currency units (paise).
	BasePriceMinor int64 `bun:"base_price_minor,notnull" json:"base_price_minor"`
	IsPublished    bool  `bun:"is_published" json:"is_published"`

	DiscountTier1Quantity int   `bun:"discount_tier1_quantity" json:"discount_tier1_quantity"`
	DiscountTier1Percent  int64 `bun:"discount_tier1_percent" json:"discount_tier1_percent"`
	DiscountTier2Quantity int   `bun:"discount_tier2_quantity" json:"discount_tier2_quantity"`
	DiscountTier2Percent  int64 `bun:"discount_tier2_percent" json:"discount_tier2_percent"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Images []*EventImage `bun:"rel:has-many,join:id=event_id" json:"images,omitempty"`
}

type EventImage struct {
	bun.BaseModel `bun:"table:event_images"`

	ID        string    `bun:"id,pk" json:"id"`
	EventID   string    `bun:"event_id,notnull" json:"event_id"`
	URL       string    `bun:"url,notnull" json:"url"`
	ObjectKey string    `bun:"object_key,notnull" json:"object_key"`
	AltText   string    `bun:"alt_text" json:"alt_text,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
