package singleton

// LazyFactory constructs instances on first request. It adds nothing to
// the registry's contract; it exists so callers can depend on the strategy
// rather than on the registry.
type LazyFactory struct {
	registry *Registry
}

// NewLazyFactory returns a lazy strategy over r.
func NewLazyFactory(r *Registry) *LazyFactory {
	return &LazyFactory{registry: r}
}

// Get returns the instance for key, constructing it with ctor if needed.
func (f *LazyFactory) Get(key Key, ctor Constructor) (any, error) {
	return f.registry.GetOrCreate(key, ctor)
}

// Registry returns the backing registry.
func (f *LazyFactory) Registry() *Registry { return f.registry }

// Lazy is a typed singleton bound to a fixed key and constructor, suited
// to package-level declarations:
//
//	var clock = singleton.NewLazy(singleton.Default(), singleton.TypeKey((*Clock)(nil)), newClock)
//
//	c, err := clock.Get()
type Lazy[T any] struct {
	registry *Registry
	key      Key
	ctor     func() (T, error)
}

// NewLazy binds key and ctor to r. Nothing is constructed until Get.
func NewLazy[T any](r *Registry, key Key, ctor func() (T, error)) *Lazy[T] {
	return &Lazy[T]{registry: r, key: key, ctor: ctor}
}

// Get returns the instance, constructing it on first call.
func (l *Lazy[T]) Get() (T, error) { return Get(l.registry, l.key, l.ctor) }

// Key returns the bound key.
func (l *Lazy[T]) Key() Key { return l.key }

// Initialized reports whether the instance has been constructed.
func (l *Lazy[T]) Initialized() bool { return l.registry.Contains(l.key) }
