// Package schedule implements the daily slot template used by the booking
// flow.  Slots are plain time-of-day values; the template is process-wide
// configuration and is identical for every calendar date.
package schedule

import (
    "fmt"
    "strconv"
    "strings"
)

// minutesPerDay bounds a TimeOfDay value.  End times wrap past midnight
// the same way the DB TIME column does.
const minutesPerDay = 24 * 60

// TimeOfDay is a clock value (minutes since midnight) with no date or
// timezone attached.  It is the unit of the slot template and of booking
// start/end times.  The zero value is midnight.
type TimeOfDay int

// ParseClock parses "HH:MM" or "HH:MM:SS" into a TimeOfDay.  The seconds
// component, when present, is ignored; MySQL TIME columns scan back as
// "HH:MM:SS" strings.
func ParseClock(s string) (TimeOfDay, error) {
    parts := strings.Split(strings.TrimSpace(s), ":")
    if len(parts) != 2 && len(parts) != 3 {
        return 0, fmt.Errorf("invalid clock value %q", s)
    }
    hh, err := strconv.Atoi(parts[0])
    if err != nil || hh < 0 || hh > 23 {
        return 0, fmt.Errorf("invalid hour in %q", s)
    }
    mm, err := strconv.Atoi(parts[1])
    if err != nil || mm < 0 || mm > 59 {
        return 0, fmt.Errorf("invalid minute in %q", s)
    }
    return TimeOfDay(hh*60 + mm), nil
}

// String renders the value as "HH:MM", the representation used in JSON
// responses and in the slot template configuration.
func (t TimeOfDay) String() string {
    return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// SQL renders the value as "HH:MM:SS" for use as a TIME column parameter.
func (t TimeOfDay) SQL() string {
    return fmt.Sprintf("%02d:%02d:00", int(t)/60, int(t)%60)
}

// Add returns the clock value the given number of minutes later, wrapping
// at midnight.  Booking end times are derived with this: start plus the
// service duration.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
    v := (int(t) + minutes) % minutesPerDay
    if v < 0 {
        v += minutesPerDay
    }
    return TimeOfDay(v)
}

// MarshalJSON encodes the value as a quoted "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
    return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted "HH:MM" or "HH:MM:SS" string.
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
    s := strings.Trim(string(b), `"`)
    v, err := ParseClock(s)
    if err != nil {
        return err
    }
    *t = v
    return nil
}
