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

// ---------------- ORDERS ----------------

func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(ctx)
	return err
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("gateway_order_id = ?", gatewayOrderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) GetOrdersByEvent(ctx context.Context, eventID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SetGatewayOrderID binds a gateway order to a local order exactly once.
// Returns the number of rows updated; 0 means a gateway order was already
// attached.
func (d *DB) SetGatewayOrderID(ctx context.Context, orderID, gatewayOrderID string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("gateway_order_id = ?", gatewayOrderID).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND gateway_order_id IS NULL", orderID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FinalizeOrder transitions PENDING to the given terminal status. The WHERE
// clause is the state machine: once an order leaves PENDING no second
// transition can match, so RowsAffected 0 signals an already-finalized order.
func (d *DB) FinalizeOrder(ctx context.Context, orderID string, status models.PaymentStatus, paymentID, signature string) (int64, error) {
	q := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("payment_status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND payment_status = ?", orderID, models.PaymentPending)

	if paymentID != "" {
		q = q.Set("gateway_payment_id = ?", paymentID)
	}
	if signature != "" {
		q = q.Set("gateway_signature = ?", signature)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------- RELATION QUERIES ----------------

// GetOrdersWithTicketsByUser returns a user's orders newest-first, each with
// its issued tickets.
func (d *DB) GetOrdersWithTicketsByUser(ctx context.Context, userID string) ([]models.OrderWithTickets, error) {
	orders, err := d.GetOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.OrderWithTickets{}, nil
	}

	orderIDs := make([]string, len(orders))
	for i, order := range orders {
		orderIDs[i] = order.ID
	}

	var tickets []models.Ticket
	err = d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Order("order_id", "seq").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	ticketsByOrder := make(map[string][]models.Ticket)
	for _, ticket := range tickets {
		ticketsByOrder[ticket.OrderID] = append(ticketsByOrder[ticket.OrderID], ticket)
	}

	result := make([]models.OrderWithTickets, len(orders))
	for i, order := range orders {
		result[i] = models.OrderWithTickets{
			Order:   order,
			Tickets: ticketsByOrder[order.ID],
		}
		if result[i].Tickets == nil {
			result[i].Tickets = []models.Ticket{}
		}
	}

	return result, nil
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
