package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/auth"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/models"
)

// Dev helper: applies migrations, optionally wipes and reseeds the database
// with sample data and role grants.
func main() {
	reset := flag.Bool("reset", false, "drop all tables before migrating")
	seed := flag.Bool("seed", false, "insert sample data after migrating")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(db, migrations.DefaultOptions())
	defer runner.Close()

	if *reset {
		log.Println("Rolling back all migrations...")
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("Failed to roll back: %v", err)
		}
	}

	log.Println("Applying migrations...")
	if err := runner.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	if *seed {
		log.Println("Seeding sample data...")
		if err := seedData(ctx, db); err != nil {
			log.Fatalf("Failed to seed: %v", err)
		}
	}

	log.Println("Done.")
}

func seedData(ctx context.Context, db *bun.DB) error {
	users := []models.User{
		{ID: "user_admin", Email: "admin@dejavu.live", FirstName: "Asha", LastName: "Perera", CreatedAt: time.Now()},
		{ID: "user_door", Email: "door@dejavu.live", FirstName: "Dev", LastName: "Fernando", CreatedAt: time.Now()},
		{ID: "user_alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Silva", CreatedAt: time.Now()},
	}
	if _, err := db.NewInsert().Model(&users).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	roles := []models.Role{
		{UserID: "user_admin", Capability: auth.CapabilityAdmin},
		{UserID: "user_admin", Capability: auth.CapabilityValidateTickets},
		{UserID: "user_door", Capability: auth.CapabilityValidateTickets},
	}
	if _, err := db.NewInsert().Model(&roles).On("CONFLICT (user_id, capability) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	events := []models.Event{
		{
			ID:                    "event_sunburn",
			Title:                 "Sunburn Beach Edition",
			Description:           "Open-air EDM night by the water.",
			DateTime:              time.Now().AddDate(0, 1, 0),
			Location:              "Mount Lavinia Beach",
			Latitude:              6.8390,
			Longitude:             79.8630,
			BasePriceMinor:        500000, // Rs. 5000.00
			IsPublished:           true,
			DiscountTier1Quantity: 3,
			DiscountTier1Percent:  10,
			DiscountTier2Quantity: 5,
			DiscountTier2Percent:  20,
			CreatedAt:             time.Now(),
		},
		{
			ID:             "event_unplugged",
			Title:          "Unplugged: Acoustic Sessions",
			Description:    "Intimate acoustic evening, draft lineup.",
			DateTime:       time.Now().AddDate(0, 2, 0),
			Location:       "Barefoot Garden Cafe",
			BasePriceMinor: 250000,
			IsPublished:    false,
			CreatedAt:      time.Now(),
		},
	}
	if _, err := db.NewInsert().Model(&events).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	return nil
}
