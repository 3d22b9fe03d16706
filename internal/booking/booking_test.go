package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rafaeldutra/agenda-api/internal/booking"
	"github.com/rafaeldutra/agenda-api/internal/model"
	"github.com/rafaeldutra/agenda-api/internal/repository"
	"github.com/rafaeldutra/agenda-api/internal/schedule"
)

// slotKey identifies one bookable slot, mirroring the unique key on the
// bookings table.
type slotKey struct {
	serviceID uint64
	date      string
	start     schedule.TimeOfDay
}

// fakeStore keeps bookings in memory and enforces the same slot
// uniqueness the MySQL repository enforces inside its transaction: the
// check and the insert happen under one lock, so concurrent callers for
// the same slot see exactly one winner.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Booking
	slots  map[slotKey]uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[uint64]*model.Booking{}, slots: map[slotKey]uint64{}}
}

func (s *fakeStore) key(b *model.Booking) slotKey {
	return slotKey{serviceID: b.ServiceID, date: b.Date.Format("2006-01-02"), start: b.StartTime}
}

func (s *fakeStore) CreateActive(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(b)
	if id, ok := s.slots[k]; ok {
		if held := s.byID[id]; held.Status != model.StatusCancelled {
			return repository.ErrSlotTaken
		}
	}
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now().UTC()
	cp := *b
	s.byID[b.ID] = &cp
	s.slots[k] = b.ID
	return nil
}

func (s *fakeStore) TakenTimes(ctx context.Context, day time.Time, serviceID uint64) ([]schedule.TimeOfDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	date := day.Format("2006-01-02")
	var out []schedule.TimeOfDay
	for _, b := range s.byID {
		if b.Date.Format("2006-01-02") != date || b.Status == model.StatusCancelled {
			continue
		}
		if serviceID != 0 && b.ServiceID != serviceID {
			continue
		}
		out = append(out, b.StartTime)
	}
	return out, nil
}

func (s *fakeStore) cancel(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.byID[id]; ok {
		b.Status = model.StatusCancelled
	}
}

// fakeCatalog serves services from a map; unknown IDs return the
// repository sentinel just as ServiceRepo does.
type fakeCatalog map[uint64]*model.Service

func (c fakeCatalog) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	svc, ok := c[id]
	if !ok {
		return nil, repository.ErrServiceNotFound
	}
	return svc, nil
}

func newPlanner(t *testing.T) (*booking.Planner, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	catalog := fakeCatalog{
		1: {ID: 1, Name: "Corte", PriceCents: 5000, DurationMinutes: 60, Active: true},
		2: {ID: 2, Name: "Barba", PriceCents: 3000, DurationMinutes: 45, Active: true},
	}
	return booking.New(store, catalog, schedule.MustParseTemplate(schedule.DefaultTimes)), store
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func clock(t *testing.T, s string) schedule.TimeOfDay {
	t.Helper()
	v, err := schedule.ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return v
}

func input(t *testing.T, serviceID uint64, day, start string) booking.CreateInput {
	t.Helper()
	return booking.CreateInput{
		ServiceID:     serviceID,
		Date:          date(t, day),
		Start:         clock(t, start),
		HasStart:      true,
		CustomerName:  "Maria Silva",
		CustomerPhone: "(24) 99819-0280",
	}
}

// ----- availability -----

func TestFreeSlotsEmptyDay(t *testing.T) {
	p, _ := newPlanner(t)
	free, err := p.FreeSlots(context.Background(), date(t, "2024-06-10"), 0)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 6 {
		t.Fatalf("expected full template, got %v", free)
	}
	for i := 1; i < len(free); i++ {
		if free[i-1] >= free[i] {
			t.Fatalf("slots out of order: %v", free)
		}
	}
}

func TestFreeSlotsExcludesBooked(t *testing.T) {
	p, _ := newPlanner(t)
	ctx := context.Background()

	if _, err := p.Create(ctx, input(t, 1, "2024-06-10", "10:00")); err != nil {
		t.Fatalf("create: %v", err)
	}

	free, err := p.FreeSlots(ctx, date(t, "2024-06-10"), 0)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	for _, v := range free {
		if v == clock(t, "10:00") {
			t.Fatalf("booked slot still listed as free: %v", free)
		}
	}
	if len(free) != 5 {
		t.Fatalf("expected 5 free slots, got %v", free)
	}

	// Another date is unaffected.
	free, err = p.FreeSlots(ctx, date(t, "2024-06-11"), 0)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 6 {
		t.Fatalf("other dates must stay fully free, got %v", free)
	}
}

func TestFreeSlotsPerService(t *testing.T) {
	p, _ := newPlanner(t)
	ctx := context.Background()
	day := date(t, "2024-06-10")

	if _, err := p.Create(ctx, input(t, 1, "2024-06-10", "09:00")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Service 1 no longer offers 09:00.
	free, err := p.FreeSlots(ctx, day, 1)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	for _, v := range free {
		if v == clock(t, "09:00") {
			t.Fatalf("booked slot listed for its own service: %v", free)
		}
	}

	// Service 2 still does: the slot key includes the service.
	free, err = p.FreeSlots(ctx, day, 2)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 6 {
		t.Fatalf("other services must be unaffected, got %v", free)
	}

	// The global view counts any active booking.
	free, err = p.FreeSlots(ctx, day, 0)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 5 {
		t.Fatalf("global view must exclude the booked slot, got %v", free)
	}
}

func TestFreeSlotsUnknownService(t *testing.T) {
	p, _ := newPlanner(t)
	if _, err := p.FreeSlots(context.Background(), date(t, "2024-06-10"), 99); !errors.Is(err, repository.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestFreeSlotsAfterCancellation(t *testing.T) {
	p, store := newPlanner(t)
	ctx := context.Background()

	b, err := p.Create(ctx, input(t, 1, "2024-06-10", "14:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.cancel(b.ID)

	free, err := p.FreeSlots(ctx, date(t, "2024-06-10"), 0)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 6 {
		t.Fatalf("cancelled booking must free its slot, got %v", free)
	}
}

// ----- creation -----

func TestCreateBooking(t *testing.T) {
	p, _ := newPlanner(t)

	b, err := p.Create(context.Background(), input(t, 2, "2024-06-10", "09:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == 0 {
		t.Error("booking was not assigned an id")
	}
	if b.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", b.Status, model.StatusPending)
	}
	if b.CustomerPhone != "24998190280" {
		t.Errorf("phone not normalized: %q", b.CustomerPhone)
	}
	// End time derives from the 45-minute service duration.
	if b.EndTime.String() != "09:45" {
		t.Errorf("end time = %s, want 09:45", b.EndTime)
	}
}

func TestCreateValidation(t *testing.T) {
	p, _ := newPlanner(t)
	base := input(t, 1, "2024-06-10", "09:00")

	tests := []struct {
		name   string
		mutate func(*booking.CreateInput)
		field  string
	}{
		{"empty name", func(in *booking.CreateInput) { in.CustomerName = "  " }, "name"},
		{"empty phone", func(in *booking.CreateInput) { in.CustomerPhone = "" }, "phone"},
		{"short phone", func(in *booking.CreateInput) { in.CustomerPhone = "998190" }, "phone"},
		{"letters only phone", func(in *booking.CreateInput) { in.CustomerPhone = "no-digits" }, "phone"},
		{"missing service", func(in *booking.CreateInput) { in.ServiceID = 0 }, "service_id"},
		{"missing date", func(in *booking.CreateInput) { in.Date = time.Time{} }, "date"},
		{"missing time", func(in *booking.CreateInput) { in.HasStart = false }, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := p.Create(context.Background(), in)
			var ve *booking.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestCreateUnknownService(t *testing.T) {
	p, _ := newPlanner(t)
	if _, err := p.Create(context.Background(), input(t, 99, "2024-06-10", "09:00")); !errors.Is(err, repository.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestCreateConflict(t *testing.T) {
	p, _ := newPlanner(t)
	ctx := context.Background()

	if _, err := p.Create(ctx, input(t, 1, "2024-06-10", "10:00")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	in := input(t, 1, "2024-06-10", "10:00")
	in.CustomerName = "João Souza"
	in.CustomerPhone = "21912345678"
	if _, err := p.Create(ctx, in); !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// A different service can still take the same time.
	if _, err := p.Create(ctx, input(t, 2, "2024-06-10", "10:00")); err != nil {
		t.Fatalf("other service same time: %v", err)
	}
}

func TestCreateConcurrentSameSlot(t *testing.T) {
	p, _ := newPlanner(t)
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Create(context.Background(), input(t, 1, "2024-06-10", "11:00"))
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrSlotTaken):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != n-1 {
		t.Fatalf("expected exactly one winner, got %d winners and %d losses", wins, losses)
	}
}

// ----- phone normalization -----

func TestNormalizePhone(t *testing.T) {
	tests := []struct{ in, want string }{
		{"(24) 99819-0280", "24998190280"},
		{"+55 24 99819-0280", "5524998190280"},
		{"24998190280", "24998190280"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := booking.NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
