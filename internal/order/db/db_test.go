package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-booking/internal/models"
	"ms-booking/internal/order/db"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []interface{}{(*models.Order)(nil), (*models.Ticket)(nil), (*models.Event)(nil)} {
		if err := bunDB.ResetModel(ctx, model); err != nil {
			t.Fatalf("Failed to reset model: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}
}

func pendingOrder(id string) *models.Order {
	return &models.Order{
		ID:               id,
		UserID:           "user1",
		EventID:          "event1",
		Quantity:         2,
		TotalAmountMinor: 40000,
		FinalAmountMinor: 40000,
		PaymentStatus:    models.PaymentPending,
		CreatedAt:        time.Now().Round(time.Second),
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	order := pendingOrder("order1")
	if err := database.CreateOrder(ctx, order); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	retrieved, err := database.GetOrderByID(ctx, "order1")
	if err != nil {
		t.Fatalf("Failed to retrieve order: %v", err)
	}

	if retrieved.UserID != order.UserID {
		t.Errorf("Expected user %s, got %s", order.UserID, retrieved.UserID)
	}
	if retrieved.FinalAmountMinor != 40000 {
		t.Errorf("Expected final amount 40000, got %d", retrieved.FinalAmountMinor)
	}
	if retrieved.PaymentStatus != models.PaymentPending {
		t.Errorf("Expected PENDING, got %s", retrieved.PaymentStatus)
	}
}

func TestSetGatewayOrderIDIsWriteOnce(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	if err := database.CreateOrder(ctx, pendingOrder("order1")); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	rows, err := database.SetGatewayOrderID(ctx, "order1", "gw_1")
	if err != nil {
		t.Fatalf("First SetGatewayOrderID failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("Expected 1 row updated, got %d", rows)
	}

	rows, err = database.SetGatewayOrderID(ctx, "order1", "gw_2")
	if err != nil {
		t.Fatalf("Second SetGatewayOrderID errored: %v", err)
	}
	if rows != 0 {
		t.Errorf("Expected 0 rows on second attach, got %d", rows)
	}

	retrieved, err := database.GetOrderByGatewayOrderID(ctx, "gw_1")
	if err != nil {
		t.Fatalf("Failed to look up by gateway order id: %v", err)
	}
	if retrieved.ID != "order1" {
		t.Errorf("Expected order1, got %s", retrieved.ID)
	}
}

func TestFinalizeOrderTransitionsExactlyOnce(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	if err := database.CreateOrder(ctx, pendingOrder("order1")); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	rows, err := database.FinalizeOrder(ctx, "order1", models.PaymentSuccess, "pay_1", "sig_1")
	if err != nil {
		t.Fatalf("FinalizeOrder failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("Expected 1 row on first transition, got %d", rows)
	}

	// SUCCESS is terminal: neither a repeat nor a FAILED flip may land.
	rows, err = database.FinalizeOrder(ctx, "order1", models.PaymentSuccess, "pay_1", "sig_1")
	if err != nil || rows != 0 {
		t.Errorf("Expected 0 rows on replay, got rows=%d err=%v", rows, err)
	}
	rows, err = database.FinalizeOrder(ctx, "order1", models.PaymentFailed, "pay_2", "sig_2")
	if err != nil || rows != 0 {
		t.Errorf("Expected 0 rows flipping SUCCESS to FAILED, got rows=%d err=%v", rows, err)
	}

	retrieved, err := database.GetOrderByID(ctx, "order1")
	if err != nil {
		t.Fatalf("Failed to retrieve order: %v", err)
	}
	if retrieved.PaymentStatus != models.PaymentSuccess {
		t.Errorf("Expected SUCCESS, got %s", retrieved.PaymentStatus)
	}
	if retrieved.GatewayPaymentID != "pay_1" {
		t.Errorf("Expected payment id pay_1, got %s", retrieved.GatewayPaymentID)
	}
}

func TestGetOrdersWithTicketsByUserGroupsBatches(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	first := pendingOrder("order1")
	first.PaymentStatus = models.PaymentSuccess
	first.CreatedAt = time.Now().Add(-time.Hour).Round(time.Second)
	second := pendingOrder("order2")

	for _, o := range []*models.Order{first, second} {
		if err := database.CreateOrder(ctx, o); err != nil {
			t.Fatalf("Failed to create order %s: %v", o.ID, err)
		}
	}

	tickets := []models.Ticket{
		{TicketID: "t1", OrderID: "order1", Seq: 1, UserID: "user1", EventID: "event1", PricePaidMinor: 20000, IssuedAt: time.Now()},
		{TicketID: "t2", OrderID: "order1", Seq: 2, UserID: "user1", EventID: "event1", PricePaidMinor: 20000, IssuedAt: time.Now()},
	}
	for i := range tickets {
		if _, err := database.Bun.NewInsert().Model(&tickets[i]).Exec(ctx); err != nil {
			t.Fatalf("Failed to insert ticket: %v", err)
		}
	}

	result, err := database.GetOrdersWithTicketsByUser(ctx, "user1")
	if err != nil {
		t.Fatalf("Failed to list orders with tickets: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(result))
	}
	// newest first
	if result[0].Order.ID != "order2" {
		t.Errorf("Expected order2 first, got %s", result[0].Order.ID)
	}
	if len(result[0].Tickets) != 0 {
		t.Errorf("Expected no tickets on order2, got %d", len(result[0].Tickets))
	}
	if len(result[1].Tickets) != 2 {
		t.Errorf("Expected 2 tickets on order1, got %d", len(result[1].Tickets))
	}
	if len(result[1].Tickets) == 2 && result[1].Tickets[0].Seq != 1 {
		t.Errorf("Expected tickets ordered by seq, got seq %d first", result[1].Tickets[0].Seq)
	}
}
