package schedule

import (
    "fmt"
    "sort"
)

// DefaultTimes is the fallback daily template used when SLOT_TIMES is not
// configured.  Values are "HH:MM" clock strings.
var DefaultTimes = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

// Template is the ordered set of bookable time-of-day slots for any date.
// It is parsed once at startup and treated as immutable afterwards.
type Template []TimeOfDay

// ParseTemplate converts a list of "HH:MM" strings into a Template.  The
// result is sorted ascending and duplicate values are dropped, so the
// free-slot computation never has to dedupe.  An empty input yields an
// empty (but valid) template.
func ParseTemplate(specs []string) (Template, error) {
    seen := make(map[TimeOfDay]bool, len(specs))
    out := make(Template, 0, len(specs))
    for _, s := range specs {
        t, err := ParseClock(s)
        if err != nil {
            return nil, fmt.Errorf("slot template: %w", err)
        }
        if seen[t] {
            continue
        }
        seen[t] = true
        out = append(out, t)
    }
    sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
    return out, nil
}

// MustParseTemplate is ParseTemplate for static inputs such as
// DefaultTimes; it panics on malformed values.
func MustParseTemplate(specs []string) Template {
    t, err := ParseTemplate(specs)
    if err != nil {
        panic(err)
    }
    return t
}

// Free subtracts the taken start times from the template and returns the
// remainder in ascending order.  Taken values outside the template are
// ignored.  The receiver is never modified and the result is always a
// fresh slice, possibly empty.
func (t Template) Free(taken []TimeOfDay) []TimeOfDay {
    busy := make(map[TimeOfDay]bool, len(taken))
    for _, v := range taken {
        busy[v] = true
    }
    out := make([]TimeOfDay, 0, len(t))
    for _, v := range t {
        if !busy[v] {
            out = append(out, v)
        }
    }
    return out
}

// Strings renders the template as "HH:MM" values, mainly for responses
// and logs.
func (t Template) Strings() []string {
    out := make([]string, len(t))
    for i, v := range t {
        out[i] = v.String()
    }
    return out
}
