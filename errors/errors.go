// Package errors provides error handling for aw-analyzer.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "is the ActivityWatch server running?")
//
//	// Check errors
//	if errors.IsConnectionError(err) {
//	    // activity source unreachable
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Join         = crdb.Join
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
	Safe        = crdb.Safe
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions for impossible states
var AssertionFailedf = crdb.AssertionFailedf

// Failure-kind sentinel errors. Every error leaving a subsystem is or wraps
// exactly one of these, so callers can branch on the class of failure
// without inspecting messages. Use errors.Is() or the IsXError helpers;
// wrapping with errors.Wrap() preserves the kind.
var (
	// ErrConnection indicates the activity source could not be reached
	ErrConnection = New("connection error")

	// ErrQuery indicates the activity source answered with a non-OK status
	ErrQuery = New("query error")

	// ErrParse indicates a response decoded as transport but not as the expected shape
	ErrParse = New("parse error")

	// ErrConfig indicates required configuration is absent or invalid
	ErrConfig = New("config error")

	// ErrAPI indicates the chat service returned a documented error payload
	ErrAPI = New("api error")

	// ErrHTTP indicates a transport-level non-2xx from the chat service
	ErrHTTP = New("http error")

	// ErrNotifier indicates the OS notification subprocess failed
	ErrNotifier = New("notifier error")

	// ErrState indicates the state file could not be written
	ErrState = New("state error")
)

// IsConnectionError checks if an error is or wraps ErrConnection
func IsConnectionError(err error) bool {
	return err != nil && Is(err, ErrConnection)
}

// IsQueryError checks if an error is or wraps ErrQuery
func IsQueryError(err error) bool {
	return err != nil && Is(err, ErrQuery)
}

// IsParseError checks if an error is or wraps ErrParse
func IsParseError(err error) bool {
	return err != nil && Is(err, ErrParse)
}

// IsConfigError checks if an error is or wraps ErrConfig
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrConfig)
}

// IsAPIError checks if an error is or wraps ErrAPI
func IsAPIError(err error) bool {
	return err != nil && Is(err, ErrAPI)
}

// IsHTTPError checks if an error is or wraps ErrHTTP
func IsHTTPError(err error) bool {
	return err != nil && Is(err, ErrHTTP)
}

// IsNotifierError checks if an error is or wraps ErrNotifier
func IsNotifierError(err error) bool {
	return err != nil && Is(err, ErrNotifier)
}

// IsStateError checks if an error is or wraps ErrState
func IsStateError(err error) bool {
	return err != nil && Is(err, ErrState)
}

// WrapConnection wraps an error as a connection error with context
func WrapConnection(err error, context string) error {
	return Wrap(Wrap(ErrConnection, err.Error()), context)
}

// WrapQuery wraps an error as a query error with context
func WrapQuery(err error, context string) error {
	return Wrap(Wrap(ErrQuery, err.Error()), context)
}

// WrapParse wraps an error as a parse error with context
func WrapParse(err error, context string) error {
	return Wrap(Wrap(ErrParse, err.Error()), context)
}

// WrapConfig wraps an error as a config error with context
func WrapConfig(err error, context string) error {
	return Wrap(Wrap(ErrConfig, err.Error()), context)
}

// WrapAPI wraps an error as an api error with context
func WrapAPI(err error, context string) error {
	return Wrap(Wrap(ErrAPI, err.Error()), context)
}

// WrapHTTP wraps an error as an http error with context
func WrapHTTP(err error, context string) error {
	return Wrap(Wrap(ErrHTTP, err.Error()), context)
}

// WrapState wraps an error as a state error with context
func WrapState(err error, context string) error {
	return Wrap(Wrap(ErrState, err.Error()), context)
}

// WrapNotifier wraps an error as a notifier error with context
func WrapNotifier(err error, context string) error {
	return Wrap(Wrap(ErrNotifier, err.Error()), context)
}

// NewConnectionError creates a connection error with a formatted message
func NewConnectionError(format string, args ...interface{}) error {
	return Wrap(ErrConnection, Newf(format, args...).Error())
}

// NewQueryError creates a query error with a formatted message
func NewQueryError(format string, args ...interface{}) error {
	return Wrap(ErrQuery, Newf(format, args...).Error())
}

// NewParseError creates a parse error with a formatted message
func NewParseError(format string, args ...interface{}) error {
	return Wrap(ErrParse, Newf(format, args...).Error())
}

// NewConfigError creates a config error with a formatted message
func NewConfigError(format string, args ...interface{}) error {
	return Wrap(ErrConfig, Newf(format, args...).Error())
}

// NewAPIError creates an api error with a formatted message
func NewAPIError(format string, args ...interface{}) error {
	return Wrap(ErrAPI, Newf(format, args...).Error())
}

// NewHTTPError creates an http error with a formatted message
func NewHTTPError(format string, args ...interface{}) error {
	return Wrap(ErrHTTP, Newf(format, args...).Error())
}

// NewNotifierError creates a notifier error with a formatted message
func NewNotifierError(format string, args ...interface{}) error {
	return Wrap(ErrNotifier, Newf(format, args...).Error())
}

// NewStateError creates a state error with a formatted message
func NewStateError(format string, args ...interface{}) error {
	return Wrap(ErrState, Newf(format, args...).Error())
}
