package tools

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies the outcome of a tool call,
// so the agent can react uniformly to failures.
type Kind string

const (
	KindOK                  Kind = "OK"
	KindInvalidInput        Kind = "InvalidInput"
	KindNotFound            Kind = "NotFound"
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindAuthRequired        Kind = "AuthRequired"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrAuthRequired        = errors.New("authorization required")

	// ErrFailedUnmarshalInput is returned when the tool arguments do not match the schema.
	ErrFailedUnmarshalInput = errors.Mark(
		errors.New("failed to unmarshal input: check the schema and try again"),
		ErrInvalidInput)
)

// InvalidInput returns an error of KindInvalidInput
func InvalidInput(format string, args ...any) error {
	return errors.Mark(errors.Errorf(format, args...), ErrInvalidInput)
}

// NotFound returns an error of KindNotFound
func NotFound(format string, args ...any) error {
	return errors.Mark(errors.Errorf(format, args...), ErrNotFound)
}

// Upstream wraps err as KindUpstreamUnavailable
func Upstream(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Errorf(format, args...), ErrUpstreamUnavailable)
	}
	return errors.Mark(errors.WithMessagef(err, format, args...), ErrUpstreamUnavailable)
}

// AuthRequired wraps err as KindAuthRequired
func AuthRequired(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Errorf(format, args...), ErrAuthRequired)
	}
	return errors.Mark(errors.WithMessagef(err, format, args...), ErrAuthRequired)
}

// KindOf returns the Kind of the error.
// Errors without a mark are treated as UpstreamUnavailable.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	default:
		return KindUpstreamUnavailable
	}
}

// ErrorText returns the text reported to the agent for a failed call,
// in the form "<Kind>: <message>".
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", KindOf(err), err.Error())
}
