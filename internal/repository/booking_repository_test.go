package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/rafaeldutra/agenda-api/internal/database"
	"github.com/rafaeldutra/agenda-api/internal/model"
	"github.com/rafaeldutra/agenda-api/internal/repository"
	"github.com/rafaeldutra/agenda-api/internal/schedule"
)

// setup connects to the test database named by the TEST_DB_* variables
// and skips when they are absent, so the suite runs only where MySQL is
// reachable.  Each test works on its own service and far-future dates to
// stay independent of existing rows.
func setup(t *testing.T) (*repository.BookingRepo, *repository.ServiceRepo) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	host := os.Getenv("TEST_DB_HOST")
	name := os.Getenv("TEST_DB_NAME")
	if host == "" || name == "" {
		t.Skip("TEST_DB_HOST or TEST_DB_NAME not set")
	}
	db, err := database.Open(
		os.Getenv("TEST_DB_USER"), os.Getenv("TEST_DB_PASS"),
		host, os.Getenv("TEST_DB_PORT"), name,
	)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repository.NewBookingRepo(db), repository.NewServiceRepo(db)
}

func createService(t *testing.T, services *repository.ServiceRepo) *model.Service {
	t.Helper()
	svc := &model.Service{
		Name:            fmt.Sprintf("test-%d", time.Now().UnixNano()),
		PriceCents:      5000,
		DurationMinutes: 60,
		Active:          true,
	}
	if err := services.Create(context.Background(), svc); err != nil {
		t.Fatalf("create service: %v", err)
	}
	t.Cleanup(func() { _ = services.Delete(context.Background(), svc.ID) })
	return svc
}

func testDay(t *testing.T) time.Time {
	t.Helper()
	// Far enough in the future to never collide with real data and to
	// survive the retention cleanup.
	return time.Now().UTC().AddDate(2, 0, 0).Truncate(24 * time.Hour)
}

func newBooking(svc *model.Service, day time.Time, start schedule.TimeOfDay) *model.Booking {
	return &model.Booking{
		ServiceID:     svc.ID,
		CustomerName:  "Maria Silva",
		CustomerPhone: "24998190280",
		Date:          day,
		StartTime:     start,
		EndTime:       start.Add(svc.DurationMinutes),
		Status:        model.StatusPending,
	}
}

func TestCreateActiveAndTakenTimes(t *testing.T) {
	bookings, services := setup(t)
	svc := createService(t, services)
	day := testDay(t)
	ctx := context.Background()

	start, _ := schedule.ParseClock("09:00")
	b := newBooking(svc, day, start)
	if err := bookings.CreateActive(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("id not populated")
	}
	if b.CreatedAt.IsZero() {
		t.Fatal("created_at not populated")
	}
	t.Cleanup(func() { _, _ = bookings.DB().Exec(`DELETE FROM bookings WHERE id = ?`, b.ID) })

	taken, err := bookings.TakenTimes(ctx, day, svc.ID)
	if err != nil {
		t.Fatalf("taken times: %v", err)
	}
	found := false
	for _, v := range taken {
		if v == start {
			found = true
		}
	}
	if !found {
		t.Fatalf("09:00 missing from taken times: %v", taken)
	}
}

func TestCreateActiveConflict(t *testing.T) {
	bookings, services := setup(t)
	svc := createService(t, services)
	day := testDay(t)
	ctx := context.Background()

	start, _ := schedule.ParseClock("10:00")
	first := newBooking(svc, day, start)
	if err := bookings.CreateActive(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	t.Cleanup(func() { _, _ = bookings.DB().Exec(`DELETE FROM bookings WHERE id = ?`, first.ID) })

	second := newBooking(svc, day, start)
	second.CustomerName = "João Souza"
	if err := bookings.CreateActive(ctx, second); !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCreateActiveConcurrent(t *testing.T) {
	bookings, services := setup(t)
	svc := createService(t, services)
	day := testDay(t)

	start, _ := schedule.ParseClock("11:00")
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := newBooking(svc, day, start)
			errs[i] = bookings.CreateActive(context.Background(), b)
			ids[i] = b.ID
		}(i)
	}
	wg.Wait()
	t.Cleanup(func() {
		for _, id := range ids {
			if id != 0 {
				_, _ = bookings.DB().Exec(`DELETE FROM bookings WHERE id = ?`, id)
			}
		}
	})

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrSlotTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestReschedule(t *testing.T) {
	bookings, services := setup(t)
	svc := createService(t, services)
	day := testDay(t)
	ctx := context.Background()

	start, _ := schedule.ParseClock("14:00")
	b := newBooking(svc, day, start)
	if err := bookings.CreateActive(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _, _ = bookings.DB().Exec(`DELETE FROM bookings WHERE id = ?`, b.ID) })

	newStart, _ := schedule.ParseClock("15:00")
	moved, err := bookings.Reschedule(ctx, b.ID, day, newStart, model.StatusConfirmed)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.StartTime != newStart {
		t.Errorf("start = %s, want %s", moved.StartTime, newStart)
	}
	if moved.EndTime != newStart.Add(svc.DurationMinutes) {
		t.Errorf("end = %s, want %s", moved.EndTime, newStart.Add(svc.DurationMinutes))
	}
	if moved.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want CONFIRMED", moved.Status)
	}

	// Moving onto an occupied slot is refused.
	other := newBooking(svc, day, start)
	other.CustomerName = "João Souza"
	if err := bookings.CreateActive(ctx, other); err != nil {
		t.Fatalf("second create: %v", err)
	}
	t.Cleanup(func() { _, _ = bookings.DB().Exec(`DELETE FROM bookings WHERE id = ?`, other.ID) })
	if _, err := bookings.Reschedule(ctx, other.ID, day, newStart, ""); !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	if _, err := bookings.Reschedule(ctx, 0, day, newStart, ""); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	bookings, _ := setup(t)
	if err := bookings.UpdateStatus(context.Background(), 0, model.StatusCancelled); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}
