package handler

import (
    "strconv" // parsing identifiers from path parameters
    "time"    // date parsing for query and form values

    "github.com/labstack/echo/v4" // echo context carries path and query values

    "github.com/rafaeldutra/agenda-api/internal/schedule"
)

// dateLayout is the wire format of calendar dates in this API
// (query parameters, JSON payloads and responses alike).
const dateLayout = "2006-01-02"

// parseID parses a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// parseIDString parses a positive uint64 from a query value.
func parseIDString(s string) (uint64, bool) {
    id, err := strconv.ParseUint(s, 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// parseDate parses a YYYY-MM-DD value in UTC.  An empty string falls
// back to today's date, matching the original booking page behavior.
func parseDate(s string) (time.Time, error) {
    if s == "" {
        now := time.Now().UTC()
        return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
    }
    return time.Parse(dateLayout, s)
}

// parseClock parses an "HH:MM" value, reporting presence separately so
// handlers can distinguish a missing time from midnight.
func parseClock(s string) (schedule.TimeOfDay, bool, error) {
    if s == "" {
        return 0, false, nil
    }
    t, err := schedule.ParseClock(s)
    if err != nil {
        return 0, false, err
    }
    return t, true, nil
}
