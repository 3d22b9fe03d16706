package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/rafaeldutra/agenda-api/internal/model"
    "github.com/rafaeldutra/agenda-api/internal/schedule"
)

// dateFmt is how DATE parameters are passed to MySQL.  DATE columns scan
// back as time.Time because the DSN sets parseTime=true with loc=UTC.
const dateFmt = "2006-01-02"

// activeStatuses is the status filter that defines a "taken" slot.  A
// CANCELLED booking never blocks a slot.
const activeStatuses = `('PENDING','CONFIRMED')`

// BookingRepo provides persistence for customer bookings.  The bookings
// table carries UNIQUE KEY uq_booking_slot (service_id, date, start_time);
// that constraint is the final arbiter of the no-double-booking invariant
// and every duplicate-key error from it is surfaced as ErrSlotTaken.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingDetail is a booking joined with its service, as returned by the
// listing queries for display to customers and staff.
type BookingDetail struct {
    ID              uint64             `json:"id"`
    ServiceID       uint64             `json:"service_id"`
    ServiceName     string             `json:"service_name"`
    PriceCents      uint32             `json:"price_cents"`
    DurationMinutes int                `json:"duration_minutes"`
    CustomerName    string             `json:"customer_name"`
    CustomerPhone   string             `json:"customer_phone"`
    Date            string             `json:"date"`
    StartTime       schedule.TimeOfDay `json:"start_time"`
    EndTime         schedule.TimeOfDay `json:"end_time"`
    Status          string             `json:"status"`
    CreatedAt       time.Time          `json:"created_at"`
}

// CreateActive inserts a new booking after re-checking, inside one
// transaction, that no PENDING or CONFIRMED booking already holds the
// same (service, date, start_time) key.  The SELECT takes a row lock
// (FOR UPDATE) so two concurrent requests for the same key serialize
// here; if the lock is ever bypassed, the unique key rejects the second
// INSERT and the 1062 error is translated to ErrSlotTaken.  On success
// the generated ID and creation timestamp are populated on b and the
// transaction is committed; on any error nothing is persisted.
func (r *BookingRepo) CreateActive(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const check = `SELECT COUNT(*) FROM bookings
                   WHERE service_id = ? AND date = ? AND start_time = ? AND status IN ` + activeStatuses + `
                   FOR UPDATE`
    var n int
    if err := tx.QueryRowContext(ctx, check, b.ServiceID, b.Date.Format(dateFmt), b.StartTime.SQL()).Scan(&n); err != nil {
        return err
    }
    if n > 0 {
        return ErrSlotTaken
    }

    const ins = `INSERT INTO bookings (service_id, customer_name, customer_phone, date, start_time, end_time, status)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, ins,
        b.ServiceID, b.CustomerName, b.CustomerPhone,
        b.Date.Format(dateFmt), b.StartTime.SQL(), b.EndTime.SQL(), b.Status,
    )
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") { // unique key backstop
            return ErrSlotTaken
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // Query back the row to populate the DB-assigned creation timestamp.
    if err := tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// TakenTimes returns the start times held by PENDING or CONFIRMED
// bookings on the given date.  A zero serviceID means any service (the
// global availability view); otherwise only bookings of that service
// count.  The result is unordered; the slot template owns ordering.
func (r *BookingRepo) TakenTimes(ctx context.Context, day time.Time, serviceID uint64) ([]schedule.TimeOfDay, error) {
    q := `SELECT start_time FROM bookings WHERE date = ? AND status IN ` + activeStatuses
    args := []interface{}{day.Format(dateFmt)}
    if serviceID != 0 {
        q += ` AND service_id = ?`
        args = append(args, serviceID)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []schedule.TimeOfDay
    for rows.Next() {
        var raw string
        if err := rows.Scan(&raw); err != nil {
            return nil, err
        }
        t, err := schedule.ParseClock(raw)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// GetByID loads a single booking.  ErrBookingNotFound is returned when
// no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT id, service_id, customer_name, customer_phone, date, start_time, end_time, status, created_at
               FROM bookings WHERE id = ?`
    var (
        b          model.Booking
        start, end string
    )
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &b.ID, &b.ServiceID, &b.CustomerName, &b.CustomerPhone,
        &b.Date, &start, &end, &b.Status, &b.CreatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    if b.StartTime, err = schedule.ParseClock(start); err != nil {
        return nil, err
    }
    if b.EndTime, err = schedule.ParseClock(end); err != nil {
        return nil, err
    }
    return &b, nil
}

// GetDetail loads a single booking joined with its service.
// ErrBookingNotFound is returned when no row matches.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*BookingDetail, error) {
    const q = detailSelect + ` WHERE b.id = ?`
    rows, err := r.db.QueryContext(ctx, q, id)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    if !rows.Next() {
        if err := rows.Err(); err != nil {
            return nil, err
        }
        return nil, ErrBookingNotFound
    }
    d, err := scanDetail(rows)
    if err != nil {
        return nil, err
    }
    return d, rows.Err()
}

// detailSelect is the shared projection for BookingDetail queries.
const detailSelect = `SELECT b.id, b.service_id, s.name, s.price_cents, s.duration_minutes,
                             b.customer_name, b.customer_phone, b.date, b.start_time, b.end_time,
                             b.status, b.created_at
                      FROM bookings b
                      JOIN services s ON s.id = b.service_id`

func scanDetail(rows *sql.Rows) (*BookingDetail, error) {
    var (
        d          BookingDetail
        day        time.Time
        start, end string
    )
    if err := rows.Scan(
        &d.ID, &d.ServiceID, &d.ServiceName, &d.PriceCents, &d.DurationMinutes,
        &d.CustomerName, &d.CustomerPhone, &day, &start, &end,
        &d.Status, &d.CreatedAt,
    ); err != nil {
        return nil, err
    }
    d.Date = day.Format(dateFmt)
    var err error
    if d.StartTime, err = schedule.ParseClock(start); err != nil {
        return nil, err
    }
    if d.EndTime, err = schedule.ParseClock(end); err != nil {
        return nil, err
    }
    return &d, nil
}

func (r *BookingRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]BookingDetail, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]BookingDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *d)
    }
    return out, rows.Err()
}

// ListByDate returns all non-cancelled bookings of a date ordered by
// start time, as shown on the staff day agenda.
func (r *BookingRepo) ListByDate(ctx context.Context, day time.Time) ([]BookingDetail, error) {
    const q = detailSelect + ` WHERE b.date = ? AND b.status IN ` + activeStatuses + ` ORDER BY b.start_time`
    return r.queryDetails(ctx, q, day.Format(dateFmt))
}

// ListActiveByPhone returns the PENDING and CONFIRMED bookings of a
// customer identified by normalized phone digits, ordered by date then
// start time.  Customers use this to look up their own appointments.
func (r *BookingRepo) ListActiveByPhone(ctx context.Context, phone string) ([]BookingDetail, error) {
    const q = detailSelect + ` WHERE b.customer_phone = ? AND b.status IN ` + activeStatuses + ` ORDER BY b.date, b.start_time`
    return r.queryDetails(ctx, q, phone)
}

// ListRecentActive returns the most recently created non-cancelled
// bookings (newest first), capped at limit, for the staff dashboard.
func (r *BookingRepo) ListRecentActive(ctx context.Context, limit int) ([]BookingDetail, error) {
    const q = detailSelect + ` WHERE b.status IN ` + activeStatuses + ` ORDER BY b.created_at DESC LIMIT ?`
    return r.queryDetails(ctx, q, limit)
}

// ListRange returns every booking (any status) with a date inside the
// inclusive [from, to] range, ordered by date then start time.  The CSV
// export and the JSON backup are built from this.
func (r *BookingRepo) ListRange(ctx context.Context, from, to time.Time) ([]BookingDetail, error) {
    const q = detailSelect + ` WHERE b.date BETWEEN ? AND ? ORDER BY b.date, b.start_time`
    return r.queryDetails(ctx, q, from.Format(dateFmt), to.Format(dateFmt))
}

// ListAll returns every booking in the store ordered by date then start
// time, used only by the backup download.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
    const q = detailSelect + ` ORDER BY b.date, b.start_time`
    return r.queryDetails(ctx, q)
}

// UpdateStatus sets the status of a booking.  Transitions are
// deliberately unconstrained: staff may move a booking between any of
// the three statuses at any time, including reopening a CANCELLED one.
// The caller must validate the status string first.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
    res, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists uint64
        if err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ?`, id).Scan(&exists); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return ErrBookingNotFound
            }
            return err
        }
    }
    return nil
}

// Reschedule moves a booking to a new date and start time (and
// optionally a new status) under the same atomic contract as
// CreateActive: a transaction re-checks that no other non-cancelled
// booking of the same service holds the target slot, excluding the
// booking being moved, and the unique key backs the check up.  The end
// time is re-derived from the service duration inside the transaction.
func (r *BookingRepo) Reschedule(ctx context.Context, id uint64, day time.Time, start schedule.TimeOfDay, status string) (*model.Booking, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the booking row and fetch the service duration in one go.
    const cur = `SELECT b.service_id, b.status, s.duration_minutes
                 FROM bookings b JOIN services s ON s.id = b.service_id
                 WHERE b.id = ? FOR UPDATE`
    var (
        serviceID uint64
        curStatus string
        duration  int
    )
    if err := tx.QueryRowContext(ctx, cur, id).Scan(&serviceID, &curStatus, &duration); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if status == "" {
        status = curStatus
    }

    const check = `SELECT COUNT(*) FROM bookings
                   WHERE service_id = ? AND date = ? AND start_time = ? AND status IN ` + activeStatuses + `
                   AND id <> ? FOR UPDATE`
    var n int
    if err := tx.QueryRowContext(ctx, check, serviceID, day.Format(dateFmt), start.SQL(), id).Scan(&n); err != nil {
        return nil, err
    }
    if n > 0 {
        return nil, ErrSlotTaken
    }

    end := start.Add(duration)
    const upd = `UPDATE bookings SET date = ?, start_time = ?, end_time = ?, status = ? WHERE id = ?`
    if _, err := tx.ExecContext(ctx, upd, day.Format(dateFmt), start.SQL(), end.SQL(), status, id); err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return nil, ErrSlotTaken
        }
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true

    return r.GetByID(ctx, id)
}

// CountActiveByDate counts PENDING and CONFIRMED bookings on a date.
func (r *BookingRepo) CountActiveByDate(ctx context.Context, day time.Time) (int, error) {
    const q = `SELECT COUNT(*) FROM bookings WHERE date = ? AND status IN ` + activeStatuses
    var n int
    err := r.db.QueryRowContext(ctx, q, day.Format(dateFmt)).Scan(&n)
    return n, err
}

// CountActiveBetween counts PENDING and CONFIRMED bookings with a date
// in the inclusive [from, to] range.
func (r *BookingRepo) CountActiveBetween(ctx context.Context, from, to time.Time) (int, error) {
    const q = `SELECT COUNT(*) FROM bookings WHERE date BETWEEN ? AND ? AND status IN ` + activeStatuses
    var n int
    err := r.db.QueryRowContext(ctx, q, from.Format(dateFmt), to.Format(dateFmt)).Scan(&n)
    return n, err
}

// ConfirmedRevenueCentsBetween sums the service price of CONFIRMED
// bookings with a date in the inclusive [from, to] range.  Revenue is
// reported in cents; formatting is left to the caller.
func (r *BookingRepo) ConfirmedRevenueCentsBetween(ctx context.Context, from, to time.Time) (int64, error) {
    const q = `SELECT COALESCE(SUM(s.price_cents), 0)
               FROM bookings b JOIN services s ON s.id = b.service_id
               WHERE b.date BETWEEN ? AND ? AND b.status = 'CONFIRMED'`
    var cents int64
    err := r.db.QueryRowContext(ctx, q, from.Format(dateFmt), to.Format(dateFmt)).Scan(&cents)
    return cents, err
}

// DeleteDatedBefore removes every booking with a date strictly before
// the cutoff, regardless of status.  It returns the number of rows
// removed.  This is the retention cleanup; it is the only path that
// deletes bookings.
func (r *BookingRepo) DeleteDatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE date < ?`, cutoff.Format(dateFmt))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
