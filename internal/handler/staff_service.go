package handler

import (
    "errors"   // errors.Is comparisons against repository sentinels
    "net/http" // HTTP status codes
    "strings"  // name trimming

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/rafaeldutra/agenda-api/internal/model"
    "github.com/rafaeldutra/agenda-api/internal/repository"
)

// serviceReq is the request body for creating or updating a service.
// Active is a pointer so an omitted value can default to true on create
// and mean "unchanged semantics decided by the handler" on update.
type serviceReq struct {
    Name            string `json:"name"`
    PriceCents      uint32 `json:"price_cents"`
    DurationMinutes int    `json:"duration_minutes"`
    Active          *bool  `json:"active"`
}

func (r *serviceReq) validate() (string, bool) {
    r.Name = strings.TrimSpace(r.Name)
    if r.Name == "" {
        return "name is required", false
    }
    if r.DurationMinutes <= 0 {
        return "duration_minutes must be positive", false
    }
    return "", true
}

// ListAllServices handles GET /v1/staff/services.  Unlike the public
// catalog it includes inactive services.
func (h *StaffHandler) ListAllServices(c echo.Context) error {
    items, err := h.Services.List(c.Request().Context(), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load services"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateService handles POST /v1/staff/services.
func (h *StaffHandler) CreateService(c echo.Context) error {
    var body serviceReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if msg, ok := body.validate(); !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    active := true
    if body.Active != nil {
        active = *body.Active
    }
    svc := &model.Service{
        Name:            body.Name,
        PriceCents:      body.PriceCents,
        DurationMinutes: body.DurationMinutes,
        Active:          active,
    }
    if err := h.Services.Create(c.Request().Context(), svc); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create service"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": svc})
}

// UpdateService handles PATCH /v1/staff/services/:id.  Editing the
// duration affects only future bookings; end times of existing bookings
// stay as derived at creation time.
func (h *StaffHandler) UpdateService(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
    }
    var body serviceReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if msg, ok := body.validate(); !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    ctx := c.Request().Context()
    svc, err := h.Services.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrServiceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load service"})
    }
    svc.Name = body.Name
    svc.PriceCents = body.PriceCents
    svc.DurationMinutes = body.DurationMinutes
    if body.Active != nil {
        svc.Active = *body.Active
    }
    if err := h.Services.Update(ctx, svc); err != nil {
        if errors.Is(err, repository.ErrServiceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update service"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": svc})
}

// DeleteService handles DELETE /v1/staff/services/:id.  A service still
// referenced by bookings cannot be deleted (409); deactivate it instead
// to hide it from customers.
func (h *StaffHandler) DeleteService(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
    }
    if err := h.Services.Delete(c.Request().Context(), id); err != nil {
        switch {
        case errors.Is(err, repository.ErrServiceNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "service has bookings; deactivate it instead"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete service"})
        }
    }
    return c.NoContent(http.StatusNoContent)
}
