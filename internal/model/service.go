package model

import "time"

// Service is one of the bookable offerings as stored in the `services`
// table.  Prices are integer cents; the duration drives the derived end
// time of every booking that references the service.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name shown to customers.
//  PriceCents      – price in minor currency units (cents).
//  DurationMinutes – how long an appointment for this service lasts.
//  Active          – whether the service is offered to new customers.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Service struct {
    ID              uint64    `json:"id"`               // services.id
    Name            string    `json:"name"`             // services.name
    PriceCents      uint32    `json:"price_cents"`      // services.price_cents
    DurationMinutes int       `json:"duration_minutes"` // services.duration_minutes
    Active          bool      `json:"active"`           // services.is_active
    CreatedAt       time.Time `json:"created_at"`       // services.created_at
    UpdatedAt       time.Time `json:"updated_at"`       // services.updated_at
}
