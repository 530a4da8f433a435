/*
errors.go - Centralized error types for the refund engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The evaluator converts every one of these into an indeterminate
  decision; infrastructure layers wrap them with additional context.

ERROR CATEGORIES:
  1. Input errors - Unknown zone label, unparsable date, unknown channel
  2. Policy errors - Malformed or missing policy definitions
  3. Store errors - Missing audit records

USAGE:
  if errors.Is(err, generic.ErrDateParse) {
      var pe *generic.ParseError
      errors.As(err, &pe)
      ...
  }

SEE ALSO:
  - refund/evaluator.go: Maps these errors to Indeterminate
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownZoneLabel is returned when a zone label is absent from the zone table.
	ErrUnknownZoneLabel = errors.New("unknown zone label")

	// ErrDateParse is returned when a date or time string does not match the
	// convention's grammar or names an impossible calendar date.
	ErrDateParse = errors.New("date parse failure")

	// ErrUnrecognizedSource is returned for a source channel outside the enumeration.
	ErrUnrecognizedSource = errors.New("unrecognized source channel")

	// ErrInvalidPolicy is returned when a policy definition fails validation.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrPolicyNotFound is returned when a referenced policy doesn't exist.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrRunNotFound is returned when a referenced evaluation run doesn't exist.
	ErrRunNotFound = errors.New("evaluation run not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownZoneError names the label that could not be resolved.
type UnknownZoneError struct {
	Label string
}

func (e *UnknownZoneError) Error() string {
	return fmt.Sprintf("unknown zone label %q", e.Label)
}

func (e *UnknownZoneError) Unwrap() error {
	return ErrUnknownZoneLabel
}

// ParseError describes a date/time string rejected under a convention.
type ParseError struct {
	Input      string
	Convention Convention
	Err        error // underlying time.Parse error, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q as %s: %v", e.Input, e.Convention, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s", e.Input, e.Convention)
}

func (e *ParseError) Unwrap() error {
	return ErrDateParse
}

// SourceError names the rejected source channel.
type SourceError struct {
	Source string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("unrecognized source channel %q", e.Source)
}

func (e *SourceError) Unwrap() error {
	return ErrUnrecognizedSource
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// ReasonCode returns a stable machine-readable code for an evaluation failure,
// or "" for nil.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownZoneLabel):
		return "unknown_zone_label"
	case errors.Is(err, ErrDateParse):
		return "date_parse_failure"
	case errors.Is(err, ErrUnrecognizedSource):
		return "unrecognized_source_channel"
	default:
		return "internal"
	}
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrUnrecognizedSource) ||
		errors.Is(err, ErrDateParse) ||
		errors.Is(err, ErrUnknownZoneLabel)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrRunNotFound)
}
