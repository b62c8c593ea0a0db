package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ticket-availability/config"
	"ticket-availability/internal/database"
	"ticket-availability/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testDB is the pool shared by all repository tests. It connects to the
// dedicated test database, never the development one.
var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	if err := testDB.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping test database: %v", err)
	}

	code := m.Run()
	testDB.Close()

	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, "TRUNCATE reservations, ticket_types, occurrences, events RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// beginTestTx starts a transaction that is rolled back when the test ends,
// for exercising the transaction-scoped repository methods.
func beginTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.Begin(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	t.Cleanup(func() {
		_ = tx.Rollback(ctx)
	})
	return tx
}

func createTestEvent(t *testing.T, name string) int {
	t.Helper()
	ctx := context.Background()

	var id int
	err := testDB.QueryRow(ctx, `
		INSERT INTO events (event_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, uuid.New(), name).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return id
}

func createTestOccurrence(t *testing.T, eventID int, startTime time.Time) int {
	t.Helper()
	ctx := context.Background()

	var id int
	err := testDB.QueryRow(ctx, `
		INSERT INTO occurrences (occurrence_id, event_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`, uuid.New(), eventID, startTime).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test occurrence: %v", err)
	}
	return id
}

func createTestTicketType(t *testing.T, eventID int, capacity int) int {
	t.Helper()
	ctx := context.Background()

	var id int
	err := testDB.QueryRow(ctx, `
		INSERT INTO ticket_types (
			ticket_type_id, event_id, name, kind, price,
			sale_start_kind, sale_start_days,
			sale_end_kind,
			min_per_order, max_per_order, total_capacity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, uuid.New(), eventID, "General Admission", model.TicketKindPriced, 50.0,
		model.BoundRelative, 7,
		model.BoundRelative,
		1, 10, capacity,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test ticket type: %v", err)
	}
	return id
}

func createTestReservation(t *testing.T, ticketTypeID, occurrenceID, quantity int, status model.ReservationStatus) int {
	t.Helper()
	ctx := context.Background()

	var id int
	err := testDB.QueryRow(ctx, `
		INSERT INTO reservations (reservation_id, ticket_type_id, occurrence_id, quantity, total_price, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, uuid.New(), ticketTypeID, occurrenceID, quantity, 50.0*float64(quantity), status, time.Now().UTC().Add(15*time.Minute)).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test reservation: %v", err)
	}
	return id
}

func softDeleteReservation(t *testing.T, id int) {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, `UPDATE reservations SET deleted_at = now() WHERE id = $1`, id)
	if err != nil {
		t.Fatalf("Failed to soft delete reservation: %v", err)
	}
}
