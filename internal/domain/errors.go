package domain

import "fmt"

// LookupError is returned when an upstream geocoding, routing or weather
// call fails. Callers may retry.
type LookupError struct {
	Service string
	Query   string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%s lookup failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s lookup failed for %q: %v", e.Service, e.Query, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
