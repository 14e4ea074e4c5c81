package model

import "fmt"

// ValidationError describes a single user-correctable rule violation.
// It blocks only the current submission; the caller decides UI treatment.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// GuardBlocked means a state transition was refused. No state mutation has
// occurred and the same call is safe to re-invoke.
type GuardBlocked struct {
	Reason string
}

func (e *GuardBlocked) Error() string { return e.Reason }

// IntegrityWarning records a derived-value fault (non-numeric amount, empty
// source collection) that was resolved by safe zero-substitution. It is
// surfaced, not raised.
type IntegrityWarning struct {
	Context string
	Detail  string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Context, w.Detail)
}
