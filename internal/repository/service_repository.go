package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/rafaeldutra/agenda-api/internal/model"
)

// ServiceRepo provides CRUD operations for the bookable services.  All
// timestamp fields are assumed to be stored in UTC.
type ServiceRepo struct {
    db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span multiple repositories.
func (r *ServiceRepo) DB() *sql.DB { return r.db }

// Create inserts a new service and populates the generated ID and
// timestamps on the provided struct.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
    const q = `INSERT INTO services (name, price_cents, duration_minutes, is_active) VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.Name, s.PriceCents, s.DurationMinutes, s.Active)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults.
    return r.scanByID(ctx, s.ID, s)
}

// GetByID loads a single service.  ErrServiceNotFound is returned when no
// row matches.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
    var s model.Service
    if err := r.scanByID(ctx, id, &s); err != nil {
        return nil, err
    }
    return &s, nil
}

func (r *ServiceRepo) scanByID(ctx context.Context, id uint64, s *model.Service) error {
    const q = `SELECT id, name, price_cents, duration_minutes, is_active, created_at, updated_at
               FROM services WHERE id = ?`
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.Name, &s.PriceCents, &s.DurationMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return ErrServiceNotFound
    }
    return err
}

// List returns services ordered by name.  When activeOnly is true,
// inactive services are excluded; the public catalog uses that view while
// staff see everything.
func (r *ServiceRepo) List(ctx context.Context, activeOnly bool) ([]model.Service, error) {
    q := `SELECT id, name, price_cents, duration_minutes, is_active, created_at, updated_at FROM services`
    if activeOnly {
        q += ` WHERE is_active = 1`
    }
    q += ` ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Service, 0)
    for rows.Next() {
        var s model.Service
        if err := rows.Scan(&s.ID, &s.Name, &s.PriceCents, &s.DurationMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// Update overwrites the editable fields of a service.  Duration edits do
// not rewrite end times of existing bookings; end time is derived at
// booking-creation time only.  ErrServiceNotFound is returned when the ID
// matches no row.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
    const q = `UPDATE services SET name = ?, price_cents = ?, duration_minutes = ?, is_active = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, s.Name, s.PriceCents, s.DurationMinutes, s.Active, s.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // RowsAffected is also 0 when the values are unchanged; confirm
        // existence before reporting not-found.
        var exists uint64
        if err := r.db.QueryRowContext(ctx, `SELECT id FROM services WHERE id = ?`, s.ID).Scan(&exists); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return ErrServiceNotFound
            }
            return err
        }
    }
    return r.scanByID(ctx, s.ID, s)
}

// Delete removes a service.  The bookings table references services with
// a restricting foreign key, so a service with bookings cannot be
// deleted; MySQL error 1451 is translated into ErrConflict.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
    if err != nil {
        if strings.Contains(err.Error(), "1451") { // row is referenced by bookings
            return ErrConflict
        }
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrServiceNotFound
    }
    return nil
}
