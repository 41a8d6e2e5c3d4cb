package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/km-arc/go-singleton/framework/singleton"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered factory and whether it is a singleton.
// deferred marks the stand-in a deferred provider leaves until it registers.
type binding struct {
	factory   Factory
	singleton bool
	deferred  bool
}

// keyKind is the singleton.Key kind used for container abstracts.
const keyKind = "container"

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Get / Resolve (generic)
//
// Singleton bindings are resolved lazily through a singleton.Registry, so
// concurrent first Make calls run the factory once and share its result.
// Instance bindings are declared eagerly. Once resolved, a singleton is never
// replaced.
type Container struct {
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// alias → abstract (canonical key)
	aliases map[string]string

	lazy  *singleton.LazyFactory
	eager *singleton.Eager
}

// New creates an empty container backed by its own registry.
func New() *Container {
	return NewWithRegistry(singleton.New())
}

// NewWithRegistry creates a container whose singletons live in r.
func NewWithRegistry(r *singleton.Registry) *Container {
	c := &Container{
		bindings: make(map[string]*binding),
		aliases:  make(map[string]string),
		lazy:     singleton.NewLazyFactory(r),
		eager:    singleton.NewEager(r),
	}
	// Bind the container to itself
	c.Instance("container", c)
	return c
}

// Registry returns the registry singletons are stored in.
func (c *Container) Registry() *singleton.Registry { return c.lazy.Registry() }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	c.Bind("clock", func(c *container.Container) any { return time.Now })
func (c *Container) Bind(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is built on first resolution
// and shared afterwards.
//
//	c.Singleton("audit", func(c *container.Container) any {
//	    return audit.NewFactory(c.Registry())
//	})
//
// Registering over an abstract that has already been resolved panics: the
// resolved instance is permanent.
func (c *Container) Singleton(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, true)
}

// Instance registers a pre-built value as a singleton, immediately.
// It panics once the container is sealed.
//
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	if c.eager.Sealed() {
		panic(fmt.Sprintf("container: cannot declare [%s]: %v", abstract, singleton.ErrSealed))
	}
	c.mu.Lock()
	key := c.key(abstract)
	delete(c.bindings, key.Name)
	c.mu.Unlock()

	if existing, ok := c.Registry().Lookup(key); ok && !sameInstance(existing, instance) {
		panic(fmt.Sprintf("container: [%s] is already resolved", abstract))
	}
	c.eager.MustDeclare(key, func() (any, error) { return instance, nil })
}

// sameInstance reports whether a and b are the same comparable value.
// Maps, slices and funcs are never considered the same.
func sameInstance(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// bindDeferred registers the stand-in for a deferred provider's abstract.
func (c *Container) bindDeferred(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, false)
	c.bindings[c.key(abstract).Name].deferred = true
}

// deferredPending reports whether abstract is still bound to a deferred
// provider's stand-in.
func (c *Container) deferredPending(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[c.key(abstract).Name]
	return ok && b.deferred
}

// Seal ends the startup phase: later Instance calls panic. Singleton and
// Bind registrations are unaffected.
func (c *Container) Seal() { c.eager.Seal() }

// Sealed reports whether Seal has been called.
func (c *Container) Sealed() bool { return c.eager.Sealed() }

// bind is the internal registration helper (must hold mu.Lock).
func (c *Container) bind(abstract string, factory Factory, singleton bool) {
	key := c.key(abstract)
	if c.Registry().Contains(key) {
		panic(fmt.Sprintf("container: [%s] is already resolved", abstract))
	}
	c.bindings[key.Name] = &binding{factory: factory, singleton: singleton}
}

// Alias registers an alternative name for an abstract.
//
//	c.Alias("config", "configuration")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonical(abstract)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container. It panics if the abstract
// is unbound or its factory fails; use Get to receive the error instead.
//
//	repo := c.Make("audit")
func (c *Container) Make(abstract string) any {
	instance, err := c.Get(abstract)
	if err != nil {
		panic(fmt.Sprintf("container: %v", err))
	}
	return instance
}

// Get resolves an abstract, returning an error instead of panicking.
// A factory that panics surfaces as singleton.ErrConstructionFailed for
// singleton bindings.
func (c *Container) Get(abstract string) (any, error) {
	c.mu.RLock()
	key := c.key(abstract)
	b, ok := c.bindings[key.Name]
	c.mu.RUnlock()

	// Check singleton instance cache
	if inst, ok := c.Registry().Lookup(key); ok {
		return inst, nil
	}

	if !ok {
		return nil, fmt.Errorf("no binding registered for [%s]", abstract)
	}

	if !b.singleton {
		return b.factory(c), nil
	}
	return c.lazy.Get(key, func() (any, error) { return b.factory(c), nil })
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	key := c.key(abstract)
	_, hasBinding := c.bindings[key.Name]
	c.mu.RUnlock()
	return hasBinding || c.Registry().Contains(key)
}

// Resolved returns true if the abstract has been resolved as a singleton.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	key := c.key(abstract)
	c.mu.RUnlock()
	return c.Registry().Contains(key)
}

// Bindings returns all registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		out = append(out, k)
	}
	c.mu.RUnlock()

	for _, k := range c.Registry().Keys() {
		if k.Kind != keyKind {
			continue
		}
		c.mu.RLock()
		_, already := c.bindings[k.Name]
		c.mu.RUnlock()
		if !already {
			out = append(out, k.Name)
		}
	}
	return out
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// key returns the registry key for abstract (must hold mu).
func (c *Container) key(abstract string) singleton.Key {
	return singleton.NewKey(keyKind, c.canonical(abstract))
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	// Instead of: cfg := c.Make("config").(*config.Config)
//	// Write:      cfg := container.Resolve[*config.Config](c, "config")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// MustResolve is like Resolve but returns (T, bool) without panicking.
func MustResolve[T any](c *Container, abstract string) (T, bool) {
	instance, err := c.Get(abstract)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
