package handler

import (
    "context"  // detached context for best-effort event publishing
    "errors"   // errors.Is comparisons against repository sentinels
    "net/http" // HTTP status codes
    "time"     // RFC3339 timestamps in events

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/rafaeldutra/agenda-api/internal/booking"
    "github.com/rafaeldutra/agenda-api/internal/queue"
    "github.com/rafaeldutra/agenda-api/internal/repository"
    queue_publisher "github.com/rafaeldutra/agenda-api/internal/service"
    "github.com/rafaeldutra/agenda-api/internal/whatsapp"
)

// PublicHandler serves the unauthenticated customer flow: browsing
// services, checking free slots, creating a booking and following the
// WhatsApp confirmation link.  No JWT middleware applies to these
// routes.
type PublicHandler struct {
    Services       *repository.ServiceRepo
    Bookings       *repository.BookingRepo
    Planner        *booking.Planner
    WhatsAppNumber string
}

// NewPublicHandler constructs a PublicHandler.  All dependencies must be
// non-nil.
func NewPublicHandler(services *repository.ServiceRepo, bookings *repository.BookingRepo, planner *booking.Planner, whatsAppNumber string) *PublicHandler {
    if services == nil || bookings == nil || planner == nil {
        panic("nil dependency passed to NewPublicHandler")
    }
    return &PublicHandler{Services: services, Bookings: bookings, Planner: planner, WhatsAppNumber: whatsAppNumber}
}

// ListServices handles GET /v1/services.  It returns the active services
// customers can book, ordered by name.
func (h *PublicHandler) ListServices(c echo.Context) error {
    items, err := h.Services.List(c.Request().Context(), true)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load services"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Availability handles GET /v1/availability?date=YYYY-MM-DD&service_id=N.
// Without service_id the global view applies: a slot is excluded when any
// service is booked there.  With service_id only that service's bookings
// block slots.  An omitted date defaults to today.  Past dates are not
// rejected; an empty template simply yields an empty list.
func (h *PublicHandler) Availability(c echo.Context) error {
    day, err := parseDate(c.QueryParam("date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, use YYYY-MM-DD"})
    }
    var serviceID uint64
    if raw := c.QueryParam("service_id"); raw != "" {
        id, ok := parseIDString(raw)
        if !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service_id"})
        }
        serviceID = id
    }
    free, err := h.Planner.FreeSlots(c.Request().Context(), day, serviceID)
    if err != nil {
        if errors.Is(err, repository.ErrServiceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute availability"})
    }
    resp := echo.Map{
        "date": day.Format(dateLayout),
        "free": free,
    }
    if serviceID != 0 {
        resp["service_id"] = serviceID
    }
    return c.JSON(http.StatusOK, resp)
}

// CreateBooking handles POST /v1/bookings.  The body carries the raw
// form values; name and phone are normalized by the core.  On success
// the booking is created PENDING and the response includes the wa.me
// link the customer should follow to confirm.  A lost slot race returns
// 409 so the client can refresh availability and offer another time;
// validation failures return 422 with the offending field.
func (h *PublicHandler) CreateBooking(c echo.Context) error {
    var body struct {
        ServiceID uint64 `json:"service_id"`
        Date      string `json:"date"`
        Time      string `json:"time"`
        Name      string `json:"name"`
        Phone     string `json:"phone"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    var day time.Time
    if body.Date != "" {
        // An absent date stays zero so the core reports it as missing.
        var err error
        day, err = parseDate(body.Date)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, use YYYY-MM-DD"})
        }
    }
    start, hasStart, err := parseClock(body.Time)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, use HH:MM"})
    }

    ctx := c.Request().Context()
    b, err := h.Planner.Create(ctx, booking.CreateInput{
        ServiceID:     body.ServiceID,
        Date:          day,
        Start:         start,
        HasStart:      hasStart,
        CustomerName:  body.Name,
        CustomerPhone: body.Phone,
    })
    if err != nil {
        var ve *booking.ValidationError
        switch {
        case errors.As(err, &ve):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ve.Reason, "field": ve.Field})
        case errors.Is(err, repository.ErrServiceNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        case errors.Is(err, repository.ErrSlotTaken):
            return c.JSON(http.StatusConflict, echo.Map{"error": "this slot was just taken, please choose another time"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
        }
    }

    svc, err := h.Services.GetByID(ctx, b.ServiceID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load service"})
    }

    // Best-effort event; a broker outage never fails a committed booking.
    go func(ev queue.BookingCreatedEvent) {
        pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingCreated(pubCtx, ev)
    }(queue.BookingCreatedEvent{
        BookingID:     b.ID,
        ServiceID:     svc.ID,
        ServiceName:   svc.Name,
        CustomerName:  b.CustomerName,
        CustomerPhone: b.CustomerPhone,
        Date:          b.Date.Format(dateLayout),
        StartTime:     b.StartTime.String(),
        EndTime:       b.EndTime.String(),
        PriceCents:    svc.PriceCents,
        Status:        b.Status,
        CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "booking": echo.Map{
            "id":             b.ID,
            "service_id":     b.ServiceID,
            "service_name":   svc.Name,
            "customer_name":  b.CustomerName,
            "customer_phone": b.CustomerPhone,
            "date":           b.Date.Format(dateLayout),
            "start_time":     b.StartTime,
            "end_time":       b.EndTime,
            "status":         b.Status,
            "created_at":     b.CreatedAt.UTC().Format(time.RFC3339),
        },
        "whatsapp_url": whatsapp.LinkFromBooking(h.WhatsAppNumber, b, svc),
    })
}

// MyBookings handles GET /v1/my-bookings?phone=...  It returns the
// customer's PENDING and CONFIRMED bookings, matched on normalized phone
// digits and ordered by date then start time.
func (h *PublicHandler) MyBookings(c echo.Context) error {
    phone := booking.NormalizePhone(c.QueryParam("phone"))
    if phone == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone is required"})
    }
    items, err := h.Bookings.ListActiveByPhone(c.Request().Context(), phone)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// WhatsAppRedirect handles GET /v1/bookings/:id/whatsapp.  It responds
// with a 302 redirect to the wa.me link carrying the booking's prefilled
// confirmation message.
func (h *PublicHandler) WhatsAppRedirect(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx := c.Request().Context()
    b, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
    }
    svc, err := h.Services.GetByID(ctx, b.ServiceID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load service"})
    }
    return c.Redirect(http.StatusFound, whatsapp.LinkFromBooking(h.WhatsAppNumber, b, svc))
}
