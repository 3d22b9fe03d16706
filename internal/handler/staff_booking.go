package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "net/http" // HTTP status codes
    "time"     // week-range arithmetic for dashboard metrics

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/rafaeldutra/agenda-api/internal/booking"
    "github.com/rafaeldutra/agenda-api/internal/model"
    "github.com/rafaeldutra/agenda-api/internal/repository"
    "github.com/rafaeldutra/agenda-api/internal/whatsapp"
)

// StaffHandler groups the endpoints behind the professional's panel:
// dashboard metrics, the day agenda, booking management and service
// CRUD.  All methods assume JWT authentication and the STAFF role have
// been enforced by middleware.
type StaffHandler struct {
    Bookings       *repository.BookingRepo
    Services       *repository.ServiceRepo
    Planner        *booking.Planner
    WhatsAppNumber string
    RetentionDays  int
}

// NewStaffHandler constructs a StaffHandler.  All repository
// dependencies must be non-nil.
func NewStaffHandler(bookings *repository.BookingRepo, services *repository.ServiceRepo, planner *booking.Planner, whatsAppNumber string, retentionDays int) *StaffHandler {
    if bookings == nil || services == nil || planner == nil {
        panic("nil dependency passed to NewStaffHandler")
    }
    return &StaffHandler{
        Bookings:       bookings,
        Services:       services,
        Planner:        planner,
        WhatsAppNumber: whatsAppNumber,
        RetentionDays:  retentionDays,
    }
}

// weekRange returns the Monday..Sunday range containing day.
func weekRange(day time.Time) (time.Time, time.Time) {
    wd := int(day.Weekday())
    if wd == 0 { // Sunday
        wd = 7
    }
    start := day.AddDate(0, 0, -(wd - 1))
    return start, start.AddDate(0, 0, 6)
}

// Dashboard handles GET /v1/staff/dashboard.  It returns today's and
// this week's active booking counts, the week's confirmed revenue in
// cents, the number of free slots remaining today (global view) and the
// most recently created bookings with their WhatsApp follow-up links.
func (h *StaffHandler) Dashboard(c echo.Context) error {
    ctx := c.Request().Context()
    today, _ := parseDate("")
    weekStart, weekEnd := weekRange(today)

    todayCount, err := h.Bookings.CountActiveByDate(ctx, today)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load metrics"})
    }
    weekCount, err := h.Bookings.CountActiveBetween(ctx, weekStart, weekEnd)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load metrics"})
    }
    weekRevenue, err := h.Bookings.ConfirmedRevenueCentsBetween(ctx, weekStart, weekEnd)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load metrics"})
    }
    freeToday, err := h.Planner.FreeSlots(ctx, today, 0)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load metrics"})
    }
    recent, err := h.Bookings.ListRecentActive(ctx, 5)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load metrics"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "today":              today.Format(dateLayout),
        "bookings_today":     todayCount,
        "bookings_week":      weekCount,
        "revenue_week_cents": weekRevenue,
        "free_slots_today":   len(freeToday),
        "recent":             h.withLinks(recent),
    })
}

// Agenda handles GET /v1/staff/agenda?date=YYYY-MM-DD.  It returns the
// date's non-cancelled bookings ordered by start time, the free slots of
// the date (global view) and the day's booked revenue in cents.  An
// omitted date defaults to today.
func (h *StaffHandler) Agenda(c echo.Context) error {
    day, err := parseDate(c.QueryParam("date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, use YYYY-MM-DD"})
    }
    ctx := c.Request().Context()
    items, err := h.Bookings.ListByDate(ctx, day)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agenda"})
    }
    free, err := h.Planner.FreeSlots(ctx, day, 0)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute availability"})
    }
    var revenue int64
    for _, it := range items {
        revenue += int64(it.PriceCents)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":          day.Format(dateLayout),
        "items":         h.withLinks(items),
        "free":          free,
        "revenue_cents": revenue,
    })
}

// GetBooking handles GET /v1/staff/bookings/:id.  It returns a single
// booking joined with its service, plus the WhatsApp link for contacting
// the customer about it.
func (h *StaffHandler) GetBooking(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    d, err := h.Bookings.GetDetail(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "item":         d,
        "whatsapp_url": h.detailLink(d),
    })
}

// UpdateStatus handles PATCH /v1/staff/bookings/:id/status.  Any of the
// three statuses may be set at any time; marking a booking CANCELLED
// frees its slot for both availability views.
func (h *StaffHandler) UpdateStatus(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body struct {
        Status string `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if !model.ValidStatus(body.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be PENDING, CONFIRMED or CANCELLED"})
    }
    if err := h.Bookings.UpdateStatus(c.Request().Context(), id, body.Status); err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "status": body.Status})
}

// Reschedule handles PATCH /v1/staff/bookings/:id/reschedule.  It moves
// a booking
// to a new date and time (optionally changing its status in the same
// call) under the same atomic slot check as booking creation, excluding
// the booking itself from the conflict test.  A taken target slot
// returns 409.
func (h *StaffHandler) Reschedule(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var body struct {
        Date   string `json:"date"`
        Time   string `json:"time"`
        Status string `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Date == "" || body.Time == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
    }
    day, err := parseDate(body.Date)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, use YYYY-MM-DD"})
    }
    start, _, err := parseClock(body.Time)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, use HH:MM"})
    }
    if body.Status != "" && !model.ValidStatus(body.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be PENDING, CONFIRMED or CANCELLED"})
    }

    b, err := h.Bookings.Reschedule(c.Request().Context(), id, day, start, body.Status)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrBookingNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case errors.Is(err, repository.ErrSlotTaken):
            return c.JSON(http.StatusConflict, echo.Map{"error": "slot not available, choose another time"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reschedule booking"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":         b.ID,
        "date":       b.Date.Format(dateLayout),
        "start_time": b.StartTime,
        "end_time":   b.EndTime,
        "status":     b.Status,
    })
}

// bookingWithLink decorates a listing row with its WhatsApp link.
type bookingWithLink struct {
    repository.BookingDetail
    WhatsAppURL string `json:"whatsapp_url"`
}

func (h *StaffHandler) withLinks(items []repository.BookingDetail) []bookingWithLink {
    out := make([]bookingWithLink, len(items))
    for i, it := range items {
        out[i] = bookingWithLink{BookingDetail: it, WhatsAppURL: h.detailLink(&items[i])}
    }
    return out
}

func (h *StaffHandler) detailLink(d *repository.BookingDetail) string {
    day, err := time.Parse(dateLayout, d.Date)
    if err != nil {
        return ""
    }
    b := &model.Booking{
        CustomerName:  d.CustomerName,
        CustomerPhone: d.CustomerPhone,
        Date:          day,
        StartTime:     d.StartTime,
    }
    svc := &model.Service{Name: d.ServiceName}
    return whatsapp.LinkFromBooking(h.WhatsAppNumber, b, svc)
}
