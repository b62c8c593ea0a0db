package service_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ticket-availability/config"
	"ticket-availability/internal/database"
	"ticket-availability/internal/lock"
	"ticket-availability/internal/model"
	"ticket-availability/internal/queue"
	"ticket-availability/internal/repository"
	"ticket-availability/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var (
	testDB  *pgxpool.Pool
	testRdb *redis.Client
)

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	testRdb, err = database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize test redis: %v", err)
	}

	code := m.Run()
	testDB.Close()
	_ = testRdb.Close()

	os.Exit(code)
}

func setupTest(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, "TRUNCATE reservations, ticket_types, occurrences, events RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	if err := testRdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test redis: %v", err)
	}
}

// newBookingService wires a booking service against the test database and
// redis, with an in-memory queue standing in for the stream.
func newBookingService(t *testing.T, holdDuration time.Duration) service.BookingService {
	t.Helper()
	return service.NewBookingService(
		testDB,
		repository.NewReservationRepository(testDB),
		repository.NewTicketTypeRepository(testDB),
		repository.NewOccurrenceRepository(testDB),
		lock.NewRedisBookingMutex(testRdb, 5*time.Second),
		queue.NewReservationQueue(100),
		holdDuration,
	)
}

type saleFixture struct {
	eventID      int
	ticketTypeID uuid.UUID
	occurrenceID uuid.UUID
}

// newSaleFixture provisions an event, an occurrence and a ticket type whose
// sale window is open at the given occurrence start.
func newSaleFixture(t *testing.T, occurrenceStart time.Time, capacity int) saleFixture {
	t.Helper()
	ctx := context.Background()

	var eventID int
	err := testDB.QueryRow(ctx, `
		INSERT INTO events (event_id, name) VALUES ($1, $2) RETURNING id
	`, uuid.New(), "Summer Festival").Scan(&eventID)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	occurrenceID := uuid.New()
	_, err = testDB.Exec(ctx, `
		INSERT INTO occurrences (occurrence_id, event_id, start_time) VALUES ($1, $2, $3)
	`, occurrenceID, eventID, occurrenceStart)
	if err != nil {
		t.Fatalf("Failed to create test occurrence: %v", err)
	}

	ticketTypeID := uuid.New()
	_, err = testDB.Exec(ctx, `
		INSERT INTO ticket_types (
			ticket_type_id, event_id, name, kind, price,
			sale_start_kind, sale_start_days,
			sale_end_kind,
			min_per_order, max_per_order, total_capacity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, ticketTypeID, eventID, "General Admission", model.TicketKindPriced, 50.0,
		model.BoundRelative, 30,
		model.BoundRelative,
		1, 10, capacity,
	)
	if err != nil {
		t.Fatalf("Failed to create test ticket type: %v", err)
	}

	return saleFixture{eventID: eventID, ticketTypeID: ticketTypeID, occurrenceID: occurrenceID}
}
