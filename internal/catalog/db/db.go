package db

import (
	"context"
	"database/sql"
	"time"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- EVENTS ----------------

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Images").
		Where("event.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents(ctx context.Context, includeUnpublished, upcomingOnly bool) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().
		Model(&events).
		Relation("Images").
		Order("date_time ASC")

	if !includeUnpublished {
		q = q.Where("is_published = ?", true)
	}
	if upcomingOnly {
		q = q.Where("date_time >= ?", time.Now())
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "description", "date_time", "location", "latitude", "longitude",
			"base_price_minor", "is_published",
			"discount_tier1_quantity", "discount_tier1_percent",
			"discount_tier2_quantity", "discount_tier2_percent",
			"updated_at").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

func (d *DB) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("is_published = ?", published).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteEvent removes the event and its image rows in one transaction. The
// caller is responsible for the stored objects.
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.EventImage)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

func (d *DB) OrdersExistForEvent(ctx context.Context, eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("event_id = ?", eventID).
		Exists(ctx)
}

// ---------------- IMAGES ----------------

func (d *DB) AddImage(ctx context.Context, image *models.EventImage) error {
	_, err := d.Bun.NewInsert().Model(image).Exec(ctx)
	return err
}

func (d *DB) GetImageByID(ctx context.Context, id string) (*models.EventImage, error) {
	var image models.EventImage
	err := d.Bun.NewSelect().
		Model(&image).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (d *DB) GetImagesByEvent(ctx context.Context, eventID string) ([]models.EventImage, error) {
	var images []models.EventImage
	err := d.Bun.NewSelect().
		Model(&images).
		Where("event_id = ?", eventID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (d *DB) DeleteImage(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.EventImage)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
