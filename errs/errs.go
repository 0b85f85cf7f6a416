// Package errs defines the typed error-kind vocabulary used across the
// solver. Every fallible operation in the engine returns (or wraps) one
// of these kinds rather than an ad-hoc error string, so callers can
// distinguish "fall back to a default" from "this run is unrecoverable".
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the original simulator's error codes
// do: a small closed set of causes, not a free-form message.
type Kind int32

const (
	Ok Kind = iota
	UseDefault
	Continue
	Stream
	File
	FileMode
	Database
	BufferOverflow
	MemAllocation
	DataConsistency
	HashProtection
	LibraryLoading
	FunctionImport
	CmdArgument
	Validation
	NotImplemented
	Nullpointer
	Argument
	DebugAssert
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "Ok"
	case UseDefault:
		return "UseDefault"
	case Continue:
		return "Continue"
	case Stream:
		return "Stream"
	case File:
		return "File"
	case FileMode:
		return "FileMode"
	case Database:
		return "Database"
	case BufferOverflow:
		return "BufferOverflow"
	case MemAllocation:
		return "MemAllocation"
	case DataConsistency:
		return "DataConsistency"
	case HashProtection:
		return "HashProtection"
	case LibraryLoading:
		return "LibraryLoading"
	case FunctionImport:
		return "FunctionImport"
	case CmdArgument:
		return "CmdArgument"
	case Validation:
		return "Validation"
	case NotImplemented:
		return "NotImplemented"
	case Nullpointer:
		return "Nullpointer"
	case Argument:
		return "Argument"
	case DebugAssert:
		return "DebugAssert"
	case Unknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// Error is a Kind plus context: the function it occurred in and a
// human-readable message. It satisfies the standard error interface so
// it composes with errors.Is/As and %w wrapping.
type Error struct {
	Kind Kind
	Func string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Func, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Func, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, funcName, msg string) *Error {
	return &Error{Kind: kind, Func: funcName, Msg: msg}
}

// Wrap attaches a Kind and calling function to an existing error.
func Wrap(kind Kind, funcName string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Func: funcName, Msg: err.Error(), Err: err}
}

// IsRecoverable reports whether this kind is meant to be handled locally
// (plugin load failure, missing optional CLI argument, missing checkpoint
// file) rather than surfaced as fatal.
func (k Kind) IsRecoverable() bool {
	switch k {
	case UseDefault, Continue:
		return true
	default:
		return false
	}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, otherwise returns Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
