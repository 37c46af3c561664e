package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when caller-supplied data violates a documented precondition.
var ErrInvalidInput = errors.New("invalid input")

// ErrIntegrityViolation is returned when a derived value breaks a structural invariant.
// It signals a defect in the derivation, never bad input.
var ErrIntegrityViolation = errors.New("integrity violation")

// ErrCacheFence is returned when a cache path resolves outside the cache root.
var ErrCacheFence = errors.New("path escapes cache fence")

// ErrArtifactNotFound is returned when an artifact name cannot be found in the store.
var ErrArtifactNotFound = errors.New("artifact not found")

// InputError describes a single rejected input.
type InputError struct {
	Field  string // Input name (e.g. "bits", "L")
	Reason string // Human-readable reason for failure
	Value  any    // The offending content, if any
}

func (e *InputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Reason, fmt.Sprint(e.Value))
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// InvariantError describes a broken invariant on a derived value.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q violated: %s", e.Invariant, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrIntegrityViolation
}
