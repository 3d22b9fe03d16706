package model

import (
    "time"

    "github.com/rafaeldutra/agenda-api/internal/schedule"
)

// Booking statuses.  A booking is created PENDING by the public flow and
// moved between statuses by staff; transitions are deliberately
// unconstrained so a booking can always be reopened.
const (
    StatusPending   = "PENDING"
    StatusConfirmed = "CONFIRMED"
    StatusCancelled = "CANCELLED"
)

// ValidStatus reports whether s is one of the three booking statuses.
func ValidStatus(s string) bool {
    return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// Booking is a customer appointment as stored in the `bookings` table.
// The table carries a UNIQUE KEY over (service_id, date, start_time); the
// application never allows two PENDING/CONFIRMED rows to share that key.
// EndTime is always derived from StartTime plus the service duration and
// is never set independently.
//
// Fields:
//  ID            – primary key identifier.
//  ServiceID     – service being booked.
//  CustomerName  – customer display name (trimmed).
//  CustomerPhone – customer phone, digits only.
//  Date          – calendar date of the appointment (DATE column, UTC).
//  StartTime     – slot start, a time-of-day value.
//  EndTime       – derived end, StartTime + service duration.
//  Status        – PENDING, CONFIRMED or CANCELLED.
//  CreatedAt     – creation timestamp.
type Booking struct {
    ID            uint64              // bookings.id
    ServiceID     uint64              // bookings.service_id
    CustomerName  string              // bookings.customer_name
    CustomerPhone string              // bookings.customer_phone
    Date          time.Time           // bookings.date
    StartTime     schedule.TimeOfDay  // bookings.start_time
    EndTime       schedule.TimeOfDay  // bookings.end_time
    Status        string              // bookings.status
    CreatedAt     time.Time           // bookings.created_at
}
