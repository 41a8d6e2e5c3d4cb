// Package container provides an IoC (Inversion of Control) container and
// Service Provider system built on the singleton registry.
//
// # Overview
//
// The container manages the instantiation and lifecycle of the application's
// dependencies. It supports transient bindings, singletons, pre-built
// instances and aliases. Go has no runtime constructor reflection, so
// auto-wiring is replaced by explicit factory functions.
//
// Singleton bindings are stored in a singleton.Registry: a singleton's
// factory runs at most once even when many goroutines Make it at the same
// time, and its instance is never replaced afterwards.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        : safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("clock", func(c *container.Container) any { return time.Now })
//
//	// Singleton: created once, on first Make(), reused
//	c.Singleton("audit", func(c *container.Container) any {
//	    return audit.NewFactory(c.Registry())
//	})
//
//	// Pre-built value: constructed now
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("config", "configuration")
//
// # Resolving
//
//	// Untyped
//	raw := c.Make("audit")
//
//	// Generic (preferred, no type assertion required)
//	f := container.Resolve[*audit.Factory](c, "audit")
//
//	// Error-returning
//	v, err := c.Get("audit")
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool     { return true }
//	func (p *HeavyProvider) Provides() []string   { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
//
// A deferred provider's Register must bind every abstract it Provides;
// otherwise Make of the missing abstract panics.
package container
