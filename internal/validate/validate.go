package validate

import (
	pkgerrors "github.com/munakata1001/mitumorisyo/internal/errors"
)

// Violation is one failed check.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects every violation found by a validator.
type Result struct {
	Violations []Violation `json:"errors"`
}

// Valid reports whether no violation was collected.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Messages returns the violation messages in collection order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Err converts an invalid result into a validation error carrying every
// violation as details. A valid result yields nil.
func (r Result) Err(message string) error {
	if r.Valid() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(r.Violations)
}

func (r *Result) add(field, message string) {
	r.Violations = append(r.Violations, Violation{Field: field, Message: message})
}

func (r *Result) merge(other Result) {
	r.Violations = append(r.Violations, other.Violations...)
}
