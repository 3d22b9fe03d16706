// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a customer booking is persisted.
// It contains enough information for downstream consumers to log or
// notify without querying the primary database.
type BookingCreatedEvent struct {
    BookingID     uint64 `json:"booking_id"`
    ServiceID     uint64 `json:"service_id"`
    ServiceName   string `json:"service_name"`
    CustomerName  string `json:"customer_name"`
    CustomerPhone string `json:"customer_phone"`
    Date          string `json:"date"`       // YYYY-MM-DD
    StartTime     string `json:"start_time"` // HH:MM
    EndTime       string `json:"end_time"`   // HH:MM
    PriceCents    uint32 `json:"price_cents"`
    Status        string `json:"status"`
    CreatedAt     string `json:"created_at"` // RFC3339
}
