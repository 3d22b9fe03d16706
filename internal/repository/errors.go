// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking core and handlers to distinguish between failure scenarios:
// ErrSlotTaken signals that the slot key is already held by a
// non-cancelled booking, while ErrConflict covers other state conflicts
// such as deleting a service that still has bookings.
package repository

import "errors"

// ErrSlotTaken is returned when a booking cannot be created or moved
// because a PENDING or CONFIRMED booking already holds the same
// (service, date, start_time) key. Handlers should translate this into
// an HTTP 409 response and prompt the caller to pick another slot.
var ErrSlotTaken = errors.New("slot already booked")

// ErrServiceNotFound is returned when a referenced service does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrServiceNotFound = errors.New("service not found")

// ErrBookingNotFound is returned when a booking lookup by ID matches no
// row. Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a service that still
// has bookings. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
