package db

import (
	"context"
	"time"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetTicketByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_id = ?", ticketID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) GetTicketsByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id = ?", orderID).
		Order("seq").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) GetTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("event_id = ?", eventID).
		Order("issued_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// InsertTickets writes a whole order batch in one transaction. The
// (order_id, seq) unique constraint aborts the batch if another issuer got
// there first, so callers can retry with a fresh read instead of double
// issuing.
func (d *DB) InsertTickets(ctx context.Context, tickets []models.Ticket) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i := range tickets {
			if _, err := tx.NewInsert().Model(&tickets[i]).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkUsed flips is_used once. RowsAffected 0 means the ticket was already
// scanned (or does not exist).
func (d *DB) MarkUsed(ctx context.Context, ticketID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("is_used = ?", true).
		Set("validated_at = ?", time.Now()).
		Where("ticket_id = ? AND is_used = ?", ticketID, false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
