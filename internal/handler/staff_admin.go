package handler

import (
    "encoding/csv" // CSV writer for the export download
    "fmt"          // money and filename formatting
    "net/http"     // HTTP status codes and header names
    "time"         // date-range defaults and timestamps

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/rafaeldutra/agenda-api/internal/model"
)

// statusDisplay maps a booking status to the label shown in exports.
// The panel's audience is the Brazilian professional, so these are
// product copy, same as the WhatsApp message.
var statusDisplay = map[string]string{
    model.StatusPending:   "Pendente",
    model.StatusConfirmed: "Confirmado",
    model.StatusCancelled: "Cancelado",
}

// exportRange resolves the start_date/end_date query parameters,
// defaulting to the last 30 days when absent or malformed.
func exportRange(c echo.Context) (time.Time, time.Time) {
    to, err1 := parseDate(c.QueryParam("end_date"))
    from, err2 := time.Parse(dateLayout, c.QueryParam("start_date"))
    if err1 != nil || err2 != nil || c.QueryParam("start_date") == "" || c.QueryParam("end_date") == "" {
        to, _ = parseDate("")
        from = to.AddDate(0, 0, -30)
    }
    return from, to
}

// ExportCSV handles GET /v1/staff/export/csv?start_date=&end_date=.  It
// streams every booking of the range (any status) as a CSV download.
// The file starts with a UTF-8 BOM so Excel renders accents correctly.
func (h *StaffHandler) ExportCSV(c echo.Context) error {
    from, to := exportRange(c)
    items, err := h.Bookings.ListRange(c.Request().Context(), from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
    }

    res := c.Response()
    res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
    res.Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf(`attachment; filename="agendamentos_%s_%s.csv"`, from.Format(dateLayout), to.Format(dateLayout)))
    res.WriteHeader(http.StatusOK)

    if _, err := res.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
        return err
    }
    w := csv.NewWriter(res)
    if err := w.Write([]string{"Data", "Horário", "Cliente", "Telefone", "Serviço", "Preço", "Status", "Data Agendamento"}); err != nil {
        return err
    }
    for _, it := range items {
        day, _ := time.Parse(dateLayout, it.Date)
        rec := []string{
            day.Format("02/01/2006"),
            it.StartTime.String(),
            it.CustomerName,
            it.CustomerPhone,
            it.ServiceName,
            fmt.Sprintf("R$ %.2f", float64(it.PriceCents)/100),
            statusDisplay[it.Status],
            it.CreatedAt.UTC().Format("02/01/2006 15:04"),
        }
        if err := w.Write(rec); err != nil {
            return err
        }
    }
    w.Flush()
    return w.Error()
}

// Backup handles POST /v1/staff/backup.  It returns every booking and
// service as a JSON download so the professional can keep an offline
// copy of the data.
func (h *StaffHandler) Backup(c echo.Context) error {
    ctx := c.Request().Context()
    bookings, err := h.Bookings.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
    }
    services, err := h.Services.List(ctx, false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load services"})
    }
    now := time.Now().UTC()
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf(`attachment; filename="backup_%s.json"`, now.Format("20060102_150405")))
    return c.JSON(http.StatusOK, echo.Map{
        "version":  "1.0",
        "taken_at": now.Format(time.RFC3339),
        "bookings": bookings,
        "services": services,
    })
}

// Cleanup handles POST /v1/staff/cleanup.  It deletes bookings dated
// before the retention cutoff (RETENTION_DAYS in the past, default 180)
// regardless of status, and reports how many rows were removed.  This is
// the only operation that deletes bookings.
func (h *StaffHandler) Cleanup(c echo.Context) error {
    today, _ := parseDate("")
    cutoff := today.AddDate(0, 0, -h.RetentionDays)
    removed, err := h.Bookings.DeleteDatedBefore(c.Request().Context(), cutoff)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to clean up old bookings"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "removed": removed,
        "cutoff":  cutoff.Format(dateLayout),
    })
}
