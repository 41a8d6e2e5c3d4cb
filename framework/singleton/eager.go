package singleton

import (
	"fmt"
	"sync/atomic"
)

// Eager constructs instances at declaration time.
//
// Declarations must complete during single-threaded startup (package init or
// main before any goroutine that reads them is started). Callers that want
// this enforced call Seal once startup is over; later declarations fail with
// ErrSealed. After declaration, Get is a lookup that never constructs.
type Eager struct {
	registry *Registry
	sealed   atomic.Bool
}

// NewEager returns an eager strategy over r.
func NewEager(r *Registry) *Eager {
	return &Eager{registry: r}
}

// Declare constructs the instance for key now and stores it as Ready.
// Declaring a key that is already Ready keeps the existing instance and does
// not call ctor.
func (e *Eager) Declare(key Key, ctor Constructor) error {
	if e.sealed.Load() {
		return fmt.Errorf("%w: %s", ErrSealed, key)
	}
	_, err := e.registry.GetOrCreate(key, ctor)
	return err
}

// MustDeclare is Declare for package-level declarations; it panics on error.
func (e *Eager) MustDeclare(key Key, ctor Constructor) {
	if err := e.Declare(key, ctor); err != nil {
		panic(err)
	}
}

// Seal rejects further declarations.
func (e *Eager) Seal() { e.sealed.Store(true) }

// Sealed reports whether Seal has been called.
func (e *Eager) Sealed() bool { return e.sealed.Load() }

// Get returns the declared instance for key.
func (e *Eager) Get(key Key) (any, error) {
	if v, ok := e.registry.Lookup(key); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotDeclared, key)
}

// Registry returns the backing registry.
func (e *Eager) Registry() *Registry { return e.registry }

// Declared is the typed form of Eager.Get.
func Declared[T any](e *Eager, key Key) (T, error) {
	var zero T
	v, err := e.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T, want %T", ErrTypeMismatch, key, v, zero)
	}
	return typed, nil
}
