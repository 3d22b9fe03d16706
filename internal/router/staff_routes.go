package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rafaeldutra/agenda-api/internal/handler"
	"github.com/rafaeldutra/agenda-api/internal/middleware"
	"github.com/rafaeldutra/agenda-api/internal/model"
)

// RegisterStaff registers the professional's panel endpoints under
// /v1/staff.  All routes require a valid JWT with the STAFF role.  Staff
// can see the dashboard and daily agenda, manage booking statuses,
// reschedule, maintain the service catalog and run exports, backups and
// retention cleanup.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)

	// Panel overview: today's and this week's counts, confirmed revenue,
	// remaining slots and the latest bookings.
	g.GET("/dashboard", h.Dashboard)
	// One day's bookings plus the free slots around them (?date=).
	g.GET("/agenda", h.Agenda)

	// Booking management.  Status changes are unrestricted so the
	// professional can always fix a mistake.
	g.GET("/bookings/:id", h.GetBooking)
	g.PATCH("/bookings/:id/status", h.UpdateStatus)
	g.PATCH("/bookings/:id/reschedule", h.Reschedule)

	// Service catalog, including inactive entries hidden from customers.
	g.GET("/services", h.ListAllServices)
	g.POST("/services", h.CreateService)
	g.PATCH("/services/:id", h.UpdateService)
	g.DELETE("/services/:id", h.DeleteService)

	// Data maintenance.
	g.GET("/export/csv", h.ExportCSV)
	g.POST("/backup", h.Backup)
	g.POST("/cleanup", h.Cleanup)
}
