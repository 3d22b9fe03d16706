package booking

import "fmt"

// ValidationError reports malformed or missing input to Create.  It is
// returned before anything touches the store, so the caller can safely
// redisplay the form with the offending field indicated.
type ValidationError struct {
    Field  string // input field that failed validation
    Reason string // human-readable reason
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
    return &ValidationError{Field: field, Reason: reason}
}
