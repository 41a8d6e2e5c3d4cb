// Package singleton keeps exactly one instance per Key for the life of the
// process.
//
// # Registry
//
// A Registry maps keys to instances. GetOrCreate is the only way an instance
// gets built; the first caller for a key runs the constructor while concurrent
// callers for the same key wait, then every caller receives the identical
// value.
//
//	reg := singleton.New()
//	v, err := reg.GetOrCreate(singleton.NewKey("audit", "audit.log"), func() (any, error) {
//	    return openAudit("audit.log")
//	})
//
// Keys for class-wide singletons come from TypeKey:
//
//	key := singleton.TypeKey((*Cache)(nil))
//	cache, err := singleton.Get(reg, key, newCache)
//
// # Strategies
//
// LazyFactory and Lazy construct on first use. Eager constructs at
// declaration time:
//
//	var boot = singleton.NewEager(singleton.Default())
//
//	func init() {
//	    boot.MustDeclare(singleton.TypeKey((*Clock)(nil)), func() (any, error) { return newClock(), nil })
//	}
//
// Both strategies share one contract once an instance exists: the same key
// yields the same instance forever.
//
// # Errors
//
// A failed constructor leaves the key Uninitialized and returns an *Error
// matching ErrConstructionFailed. Nothing is logged; errors go to the caller.
package singleton
