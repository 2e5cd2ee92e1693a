// Package verify holds the violation aggregate and the graph checks shared by
// the module verifier.
package verify

import (
	"fmt"
	"strings"
)

// Violation is one immutable detected rule breach
type Violation struct {
	Message string `json:"message"`
	cause   error
}

// NewViolation creates a Violation from a message
func NewViolation(message string) Violation {
	return Violation{Message: message}
}

// NewViolationf creates a Violation from a formatted message
func NewViolationf(format string, args ...interface{}) Violation {
	return Violation{Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying error to the violation
func (v Violation) WithCause(err error) Violation {
	v.cause = err
	return v
}

// Cause returns the underlying error, if any
func (v Violation) Cause() error {
	return v.cause
}

// Violations is an ordered, appendable collection of violations. The zero
// value is empty and usable; all operations return new values.
type Violations struct {
	entries []Violation
}

// None returns an empty Violations collection
func None() Violations {
	return Violations{}
}

// Of creates a Violations collection from the given violations
func Of(violations ...Violation) Violations {
	return Violations{entries: violations}
}

// And appends a violation, returning the extended collection
func (v Violations) And(violation Violation) Violations {
	entries := make([]Violation, 0, len(v.entries)+1)
	entries = append(entries, v.entries...)
	entries = append(entries, violation)
	return Violations{entries: entries}
}

// Combine concatenates two collections, preserving order
func Combine(a, b Violations) Violations {
	if len(a.entries) == 0 {
		return b
	}
	if len(b.entries) == 0 {
		return a
	}
	entries := make([]Violation, 0, len(a.entries)+len(b.entries))
	entries = append(entries, a.entries...)
	entries = append(entries, b.entries...)
	return Violations{entries: entries}
}

// HasViolations reports whether the collection is non-empty
func (v Violations) HasViolations() bool {
	return len(v.entries) > 0
}

// Len returns the number of violations
func (v Violations) Len() int {
	return len(v.entries)
}

// All returns the violations in order
func (v Violations) All() []Violation {
	out := make([]Violation, len(v.entries))
	copy(out, v.entries)
	return out
}

// Messages returns every violation message in order
func (v Violations) Messages() []string {
	out := make([]string, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.Message
	}
	return out
}

// Err converts the collection into a single aggregate error, or nil when the
// collection is empty
func (v Violations) Err() error {
	if !v.HasViolations() {
		return nil
	}
	return &AggregateError{violations: v}
}

// AggregateError is the single failure raised for a non-empty collection
type AggregateError struct {
	violations Violations
}

// Error implements the error interface with one line per violation
func (e *AggregateError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d architecture violation(s):", e.violations.Len())
	for _, msg := range e.violations.Messages() {
		sb.WriteString("\n- ")
		sb.WriteString(msg)
	}
	return sb.String()
}

// Violations returns the aggregated collection
func (e *AggregateError) Violations() Violations {
	return e.violations
}
