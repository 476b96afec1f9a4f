// Package errors provides error handling for folio.
//
// This package re-exports github.com/cockroachdb/errors so every package in the
// module gets stack traces, wrapping and hints from one import:
//
//	if err := g.AddNode(n); err != nil {
//	    return errors.Wrapf(err, "node %s", n.ID)
//	}
//
// Geometry code never returns errors for degenerate input. It reports ok=false
// and the caller skips the operation.
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
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors. Wrap these with errors.Wrap() to add context while keeping
// errors.Is() working.
var (
	// ErrNotFound indicates the requested node, axis or instance does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates a malformed client or CLI request
	ErrInvalidRequest = New("invalid request")

	// ErrInvalidNode indicates a node, hub or edge failed its required-field check
	ErrInvalidNode = New("invalid node")

	// ErrUnknownAxis indicates a filter axis key that was never registered
	ErrUnknownAxis = New("unknown filter axis")

	// ErrUnknownCategory indicates a category outside an axis' allowed set
	ErrUnknownCategory = New("unknown category")

	// ErrNotReady indicates the data source has not delivered records yet
	ErrNotReady = New("data not ready")

	// ErrClosed indicates an operation on a closed visualization instance
	ErrClosed = New("instance closed")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewInvalidNodeError creates an invalid-node error with a formatted message
func NewInvalidNodeError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidNode, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
