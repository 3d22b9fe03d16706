// Package booking holds the availability and reservation core: computing
// which slots of a date are free, and creating a booking without ever
// letting two customers hold the same slot.  Everything else in the
// application (handlers, exports, dashboards) is glue around these two
// operations.
package booking

import (
    "context"
    "strings"
    "time"
    "unicode"

    "github.com/rafaeldutra/agenda-api/internal/model"
    "github.com/rafaeldutra/agenda-api/internal/schedule"
)

// minPhoneDigits is the minimum length of a customer phone after
// normalization to digits.
const minPhoneDigits = 10

// Store is the booking persistence needed by the core.  The production
// implementation is repository.BookingRepo; the contract it must honor
// is that CreateActive performs the availability re-check and the insert
// as one indivisible unit and returns repository.ErrSlotTaken when the
// slot key is already held by a non-cancelled booking.
type Store interface {
    // TakenTimes returns start times of PENDING/CONFIRMED bookings on a
    // date; serviceID 0 means any service.
    TakenTimes(ctx context.Context, day time.Time, serviceID uint64) ([]schedule.TimeOfDay, error)
    // CreateActive atomically re-checks the slot and inserts the booking.
    CreateActive(ctx context.Context, b *model.Booking) error
}

// Catalog resolves service references.  The production implementation is
// repository.ServiceRepo, which returns repository.ErrServiceNotFound
// for unknown IDs.
type Catalog interface {
    GetByID(ctx context.Context, id uint64) (*model.Service, error)
}

// Planner is the availability calculator and booking writer over one
// store and one fixed daily slot template.  It is safe for concurrent
// use; the template is never mutated after construction.
type Planner struct {
    store    Store
    catalog  Catalog
    template schedule.Template
}

// New builds a Planner.  The template should come from configuration
// (SLOT_TIMES) and is shared by every date.
func New(store Store, catalog Catalog, template schedule.Template) *Planner {
    return &Planner{store: store, catalog: catalog, template: template}
}

// Template returns the configured daily slot template.
func (p *Planner) Template() schedule.Template { return p.template }

// FreeSlots returns the bookable time-of-day slots of a date, ascending
// and duplicate-free.  With serviceID 0 the global view applies: a slot
// is excluded when any service is booked there.  With a nonzero
// serviceID only bookings of that service block slots; the service must
// exist, otherwise repository.ErrServiceNotFound is returned.  Past
// dates are not rejected.  The call is read-only.
func (p *Planner) FreeSlots(ctx context.Context, day time.Time, serviceID uint64) ([]schedule.TimeOfDay, error) {
    if serviceID != 0 {
        if _, err := p.catalog.GetByID(ctx, serviceID); err != nil {
            return nil, err
        }
    }
    taken, err := p.store.TakenTimes(ctx, day, serviceID)
    if err != nil {
        return nil, err
    }
    return p.template.Free(taken), nil
}

// CreateInput carries the raw form values for a new booking.  Date and
// Start must already be parsed by the caller; name and phone arrive as
// typed by the customer and are normalized here.
type CreateInput struct {
    ServiceID     uint64
    Date          time.Time
    Start         schedule.TimeOfDay
    HasStart      bool // distinguishes an absent time from midnight
    CustomerName  string
    CustomerPhone string
}

// Create validates the input and persists a new PENDING booking with the
// end time derived from the service duration.  Between the moment the
// customer saw the slot as free and this call, another request may have
// taken it; the store re-checks availability and inserts in a single
// indivisible unit, so at most one non-cancelled booking ever exists per
// (service, date, start time).
//
// Error contract: *ValidationError for malformed input (nothing
// written), repository.ErrSlotTaken when the slot race was lost (the
// caller should refresh availability and prompt for another time),
// repository.ErrServiceNotFound for an unknown service, and any other
// error is a storage failure with the transaction rolled back.
func (p *Planner) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
    name := strings.TrimSpace(in.CustomerName)
    if name == "" {
        return nil, invalid("name", "required")
    }
    phone := NormalizePhone(in.CustomerPhone)
    if phone == "" {
        return nil, invalid("phone", "required")
    }
    if len(phone) < minPhoneDigits {
        return nil, invalid("phone", "must have at least 10 digits")
    }
    if in.ServiceID == 0 {
        return nil, invalid("service_id", "required")
    }
    if in.Date.IsZero() {
        return nil, invalid("date", "required")
    }
    if !in.HasStart {
        return nil, invalid("time", "required")
    }

    svc, err := p.catalog.GetByID(ctx, in.ServiceID)
    if err != nil {
        return nil, err
    }

    b := &model.Booking{
        ServiceID:     svc.ID,
        CustomerName:  name,
        CustomerPhone: phone,
        Date:          in.Date,
        StartTime:     in.Start,
        EndTime:       in.Start.Add(svc.DurationMinutes),
        Status:        model.StatusPending,
    }
    if err := p.store.CreateActive(ctx, b); err != nil {
        return nil, err
    }
    return b, nil
}

// NormalizePhone strips everything but digits from a phone number, so
// "(24) 99819-0280" and "24998190280" compare equal everywhere phones
// are stored or looked up.
func NormalizePhone(raw string) string {
    var sb strings.Builder
    for _, r := range raw {
        if unicode.IsDigit(r) {
            sb.WriteRune(r)
        }
    }
    return sb.String()
}
