// Package validate holds the input structs accepted by every mutating
// operation together with their schema checks.
package validate

import (
	"fmt"
	"strings"

	"github.com/appetiteclub/pos/pkg/apperr"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []ValidationError

func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// Err returns an InvalidInput error carrying the first violation, or nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.New(apperr.InvalidInput, "InvalidInput", e.First())
}

func (e *Errors) add(field, format string, args ...interface{}) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *Errors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.add(field, "%s is required", field)
	}
}

func (e *Errors) maxLen(field, value string, max int) {
	if len(value) > max {
		e.add(field, "%s must be at most %d characters", field, max)
	}
}

func (e *Errors) nonNegative(field string, value int64) {
	if value < 0 {
		e.add(field, "%s cannot be negative", field)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
