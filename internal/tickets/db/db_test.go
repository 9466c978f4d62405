package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-booking/internal/models"
	"ms-booking/internal/tickets/db"

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
	if err := bunDB.ResetModel(context.Background(), (*models.Ticket)(nil)); err != nil {
		t.Fatalf("Failed to reset model: %v", err)
	}

	return &db.DB{Bun: bunDB}
}

func batchFor(orderID string, n int) []models.Ticket {
	tickets := make([]models.Ticket, n)
	for i := range tickets {
		tickets[i] = models.Ticket{
			TicketID:       orderID + "-tkt-" + string(rune('a'+i)),
			OrderID:        orderID,
			Seq:            i + 1,
			UserID:         "user1",
			EventID:        "event1",
			PricePaidMinor: 10000,
			IssuedAt:       time.Now().Round(time.Second),
		}
	}
	return tickets
}

func TestInsertTicketsAndGetByOrder(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	if err := database.InsertTickets(ctx, batchFor("order1", 3)); err != nil {
		t.Fatalf("Failed to insert tickets: %v", err)
	}

	tickets, err := database.GetTicketsByOrder(ctx, "order1")
	if err != nil {
		t.Fatalf("Failed to list tickets: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("Expected 3 tickets, got %d", len(tickets))
	}
	for i, ticket := range tickets {
		if ticket.Seq != i+1 {
			t.Errorf("Expected seq %d at position %d, got %d", i+1, i, ticket.Seq)
		}
		if ticket.IsUsed {
			t.Errorf("Ticket %s should start unused", ticket.TicketID)
		}
	}
}

func TestInsertTicketsRejectsDuplicateBatch(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	if err := database.InsertTickets(ctx, batchFor("order1", 2)); err != nil {
		t.Fatalf("Failed to insert first batch: %v", err)
	}

	// Different ticket ids, same (order_id, seq) pairs: the unique
	// constraint must abort the whole second batch.
	second := batchFor("order1", 2)
	for i := range second {
		second[i].TicketID = second[i].TicketID + "-dup"
	}
	if err := database.InsertTickets(ctx, second); err == nil {
		t.Fatal("Expected unique constraint violation, got nil")
	}

	tickets, err := database.GetTicketsByOrder(ctx, "order1")
	if err != nil {
		t.Fatalf("Failed to list tickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Errorf("Expected 2 tickets after failed re-issue, got %d", len(tickets))
	}
}

func TestMarkUsedIsOneShot(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	batch := batchFor("order1", 1)
	if err := database.InsertTickets(ctx, batch); err != nil {
		t.Fatalf("Failed to insert ticket: %v", err)
	}
	ticketID := batch[0].TicketID

	rows, err := database.MarkUsed(ctx, ticketID)
	if err != nil {
		t.Fatalf("MarkUsed failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("Expected 1 row on first validation, got %d", rows)
	}

	rows, err = database.MarkUsed(ctx, ticketID)
	if err != nil {
		t.Fatalf("Second MarkUsed errored: %v", err)
	}
	if rows != 0 {
		t.Errorf("Expected 0 rows on second validation, got %d", rows)
	}

	ticket, err := database.GetTicketByID(ctx, ticketID)
	if err != nil {
		t.Fatalf("Failed to retrieve ticket: %v", err)
	}
	if !ticket.IsUsed {
		t.Error("Ticket should be marked used")
	}
	if ticket.ValidatedAt.IsZero() {
		t.Error("ValidatedAt should be set")
	}
}

func TestMarkUsedMissingTicket(t *testing.T) {
	database := setupTestDB(t)

	rows, err := database.MarkUsed(context.Background(), "nope")
	if err != nil {
		t.Fatalf("MarkUsed errored: %v", err)
	}
	if rows != 0 {
		t.Errorf("Expected 0 rows for missing ticket, got %d", rows)
	}
}
