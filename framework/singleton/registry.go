package singleton

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Constructor builds the instance for one key. It is called at most once per
// successful construction and never for a key that is already Ready.
type Constructor func() (any, error)

// entry is one singleton slot. mu is the construction lock for this key only;
// state is read without it on the fast path.
type entry struct {
	mu       sync.Mutex
	state    atomic.Int32
	instance any
}

func (e *entry) load() State { return State(e.state.Load()) }

// Registry maps each Key to at most one constructed instance.
//
// The registry's own lock only guards the key → entry map and is never held
// while a constructor runs. Construction happens under the entry's lock, so
// first requests for unrelated keys proceed in parallel while concurrent
// first requests for the same key wait for the single winner.
//
// Instances are never evicted or replaced. A constructor must not request its
// own key (directly or through a cycle of keys); doing so deadlocks.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]*entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Key]*entry)}
}

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// GetOrCreate returns the instance bound to key, calling ctor to build it if
// the key is not Ready yet.
//
// Ready keys are served from an atomic state check without taking any lock.
// Otherwise the caller takes the key's construction lock and re-checks the
// state, since another goroutine may have finished while this one waited.
// Only if the key is still not Ready is ctor invoked.
//
// If ctor returns an error, returns a nil value (including a typed nil such
// as (*T)(nil)), or panics, the entry goes back to
// Uninitialized and the caller gets a ConstructionFailed error. Goroutines
// that were waiting on the same key then run their own constructors in turn.
func (r *Registry) GetOrCreate(key Key, ctor Constructor) (any, error) {
	if key.IsZero() {
		return nil, InvalidKey(key, "kind and name must be non-empty")
	}

	e := r.entry(key)
	if e.load() == Ready {
		return e.instance, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.load() == Ready {
		return e.instance, nil
	}
	if ctor == nil {
		return nil, ConstructionFailed(key, fmt.Errorf("nil constructor"))
	}

	e.state.Store(int32(InProgress))
	instance, err := construct(ctor)
	if err != nil {
		e.state.Store(int32(Uninitialized))
		return nil, ConstructionFailed(key, err)
	}

	e.instance = instance
	e.state.Store(int32(Ready))
	return instance, nil
}

// Lookup returns the instance for key if it is Ready. It never constructs
// and never waits on a construction in progress.
func (r *Registry) Lookup(key Key) (any, bool) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok || e.load() != Ready {
		return nil, false
	}
	return e.instance, true
}

// Contains reports whether key is Ready. The answer is a snapshot: a
// concurrent construction may complete right after it returns false.
func (r *Registry) Contains(key Key) bool {
	_, ok := r.Lookup(key)
	return ok
}

// State returns the current state of key; unknown keys are Uninitialized.
func (r *Registry) State(key Key) State {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return Uninitialized
	}
	return e.load()
}

// Keys returns the Ready keys sorted by their string form.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	out := make([]Key, 0, len(r.entries))
	for k, e := range r.entries {
		if e.load() == Ready {
			out = append(out, k)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Len returns the number of Ready keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.load() == Ready {
			n++
		}
	}
	return n
}

// entry returns the slot for key, creating an Uninitialized one if needed.
func (r *Registry) entry(key Key) *entry {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another goroutine may have inserted it between the two locks
	if e, ok = r.entries[key]; !ok {
		e = &entry{}
		r.entries[key] = e
	}
	return e
}

func construct(ctor Constructor) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			instance, err = nil, fmt.Errorf("constructor panicked: %v", rec)
		}
	}()

	instance, err = ctor()
	if err == nil && isNil(instance) {
		instance, err = nil, ErrNilInstance
	}
	return instance, err
}

// isNil reports whether v is nil or a typed nil boxed in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// Get is the typed form of GetOrCreate.
//
//	logger, err := singleton.Get(reg, singleton.TypeKey((*zap.Logger)(nil)), newLogger)
func Get[T any](r *Registry, key Key, ctor func() (T, error)) (T, error) {
	var zero T
	var build Constructor
	if ctor != nil {
		build = func() (any, error) {
			v, err := ctor()
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	v, err := r.GetOrCreate(key, build)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T, want %T", ErrTypeMismatch, key, v, zero)
	}
	return typed, nil
}
