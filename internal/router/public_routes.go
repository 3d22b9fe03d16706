package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rafaeldutra/agenda-api/internal/handler"
)

// RegisterPublic registers the unauthenticated customer endpoints on the
// provided Echo instance.  These routes carry no JWT or role middleware:
// customers browse services, check free slots and book by name and phone
// alone.  The optional rateLimit middleware guards the booking POST
// against bursts, and the optional cache middleware serves repeated
// availability reads from Redis; either may be nil when Redis is
// disabled.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rateLimit, cache echo.MiddlewareFunc) {
	get := []echo.MiddlewareFunc{}
	if cache != nil {
		get = append(get, cache)
	}
	post := []echo.MiddlewareFunc{}
	if rateLimit != nil {
		post = append(post, rateLimit)
	}

	// Active services customers can choose from.
	e.GET("/v1/services", p.ListServices, get...)
	// Free slots for a date, globally or for one service
	// (?date=YYYY-MM-DD&service_id=N; date defaults to today).
	e.GET("/v1/availability", p.Availability, get...)
	// Create a booking.  Conflicts return 409 so the customer can pick
	// another time.
	e.POST("/v1/bookings", p.CreateBooking, post...)
	// A customer's own upcoming bookings, looked up by phone digits.
	e.GET("/v1/my-bookings", p.MyBookings)
	// Redirect to the wa.me link with the booking's prefilled
	// confirmation message.
	e.GET("/v1/bookings/:id/whatsapp", p.WhatsAppRedirect)
}
