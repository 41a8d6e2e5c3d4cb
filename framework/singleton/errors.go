package singleton

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an *Error.
type ErrorKind int

const (
	// KindConstructionFailed: a constructor returned an error or panicked.
	KindConstructionFailed ErrorKind = iota + 1
	// KindIOFailure: an append to a backing file failed.
	KindIOFailure
	// KindInvalidKey: the key (or the value it is derived from) was rejected.
	KindInvalidKey
)

func (k ErrorKind) String() string {
	switch k {
	case KindConstructionFailed:
		return "construction failed"
	case KindIOFailure:
		return "i/o failure"
	case KindInvalidKey:
		return "invalid key"
	default:
		return "unknown"
	}
}

var (
	ErrConstructionFailed = errors.New("singleton: construction failed")
	ErrIOFailure          = errors.New("singleton: i/o failure")
	ErrInvalidKey         = errors.New("singleton: invalid key")

	ErrNotDeclared  = errors.New("singleton: key not declared")
	ErrSealed       = errors.New("singleton: eager declarations are sealed")
	ErrTypeMismatch = errors.New("singleton: instance type mismatch")
	ErrNilInstance  = errors.New("singleton: constructor returned nil")
)

// Error is returned by registry and audit operations. It matches the
// ErrConstructionFailed / ErrIOFailure / ErrInvalidKey sentinels through
// errors.Is, and unwraps to the underlying cause.
type Error struct {
	Kind ErrorKind
	Key  Key
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("singleton: %s: %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("singleton: %s: %s: %v", e.Kind, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindConstructionFailed:
		return target == ErrConstructionFailed
	case KindIOFailure:
		return target == ErrIOFailure
	case KindInvalidKey:
		return target == ErrInvalidKey
	}
	return false
}

// ConstructionFailed wraps a constructor failure for key.
func ConstructionFailed(key Key, err error) *Error {
	return &Error{Kind: KindConstructionFailed, Key: key, Err: err}
}

// IOFailure wraps a failed write to the resource identified by key.
func IOFailure(key Key, err error) *Error {
	return &Error{Kind: KindIOFailure, Key: key, Err: err}
}

// InvalidKey reports why key was rejected.
func InvalidKey(key Key, reason string) *Error {
	return &Error{Kind: KindInvalidKey, Key: key, Err: errors.New(reason)}
}

// KindOf returns the ErrorKind carried by err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
