// Package btstatus implements the small error taxonomy every subsystem of
// geo-backtracer reports against: callers branch on Kind, not on concrete
// error types.
package btstatus

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error into one of the contractual buckets callers are
// expected to handle differently.
type Kind int

const (
	// Unknown is never returned deliberately; seeing it means a caller
	// forgot to classify an error before it escaped.
	Unknown Kind = iota
	// InvalidConfig marks configuration that is malformed or internally
	// inconsistent.
	InvalidConfig
	// Internal marks engine, iterator or serialization failures that
	// aren't the caller's fault.
	Internal
	// Serialization marks a key or value codec failure.
	Serialization
	// NotYetImplemented marks a placeholder path.
	NotYetImplemented
	// Unavailable marks a down RPC peer, recoverable at caller discretion.
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidConfig:
		return "invalid_config"
	case Internal:
		return "internal"
	case Serialization:
		return "serialization"
	case NotYetImplemented:
		return "not_yet_implemented"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

type statusError struct {
	kind Kind
	err  error
}

func (s *statusError) Error() string {
	return fmt.Sprintf("%s: %s", s.kind, s.err)
}

func (s *statusError) Unwrap() error {
	return s.err
}

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &statusError{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap attaches kind to an existing error, preserving its chain for
// errors.Is/As and keeping a stack trace via github.com/pkg/errors.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &statusError{kind: kind, err: errors.Wrap(err, msg)}
}

// KindOf returns the Kind attached to err by New/Wrap, or Unknown if none
// of the error chain carries one.
func KindOf(err error) Kind {
	var s *statusError
	for err != nil {
		if se, ok := err.(*statusError); ok {
			s = se
			break
		}
		err = errors.Unwrap(err)
	}
	if s == nil {
		return Unknown
	}
	return s.kind
}

// Is reports whether err (or any error in its chain) carries kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
