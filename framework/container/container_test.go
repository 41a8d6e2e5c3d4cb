package container_test

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-singleton/framework/container"
	"github.com/km-arc/go-singleton/framework/singleton"
)

type service struct{ name string }

// ── Bind / Singleton / Instance ───────────────────────────────────────────────

func TestBind_TransientBuildsEveryTime(t *testing.T) {
	c := container.New()
	c.Bind("svc", func(c *container.Container) any { return &service{name: "t"} })

	a := c.Make("svc").(*service)
	b := c.Make("svc").(*service)
	assert.NotSame(t, a, b)
	assert.False(t, c.Resolved("svc"))
}

func TestSingleton_ConcurrentMakeBuildsOnce(t *testing.T) {
	c := container.New()
	var builds atomic.Int32
	c.Singleton("svc", func(c *container.Container) any {
		builds.Add(1)
		return &service{name: "s"}
	})

	const n = 50
	got := make([]*service, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = container.Resolve[*service](c, "svc")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.True(t, c.Resolved("svc"))
}

func TestSingleton_RebindAfterResolvePanics(t *testing.T) {
	c := container.New()
	c.Singleton("svc", func(c *container.Container) any { return &service{} })
	_ = c.Make("svc")

	assert.Panics(t, func() {
		c.Singleton("svc", func(c *container.Container) any { return &service{} })
	})
}

func TestSingleton_FactoryPanicIsRetryable(t *testing.T) {
	c := container.New()
	fail := true
	c.Singleton("svc", func(c *container.Container) any {
		if fail {
			panic(errors.New("not ready"))
		}
		return &service{name: "ok"}
	})

	_, err := c.Get("svc")
	assert.ErrorIs(t, err, singleton.ErrConstructionFailed)
	assert.False(t, c.Resolved("svc"))

	fail = false
	v, err := c.Get("svc")
	require.NoError(t, err)
	assert.Equal(t, "ok", v.(*service).name)
}

func TestSingleton_FactoryMayResolveOtherSingletons(t *testing.T) {
	c := container.New()
	c.Singleton("inner", func(c *container.Container) any { return &service{name: "inner"} })
	c.Singleton("outer", func(c *container.Container) any {
		return &service{name: "outer+" + container.Resolve[*service](c, "inner").name}
	})

	assert.Equal(t, "outer+inner", container.Resolve[*service](c, "outer").name)
}

func TestInstance_IsResolvedImmediately(t *testing.T) {
	c := container.New()
	s := &service{name: "pre-built"}
	c.Instance("svc", s)

	assert.True(t, c.Resolved("svc"))
	assert.Same(t, s, c.Make("svc"))

	assert.NotPanics(t, func() { c.Instance("svc", s) })
	assert.Panics(t, func() { c.Instance("svc", &service{}) })
}

func TestInstance_UncomparableValues(t *testing.T) {
	c := container.New()
	c.Instance("limits", map[string]int{"files": 64})
	c.Instance("hooks", []func(){})

	assert.PanicsWithValue(t, "container: [limits] is already resolved", func() {
		c.Instance("limits", map[string]int{"files": 1})
	})
	assert.PanicsWithValue(t, "container: [hooks] is already resolved", func() {
		c.Instance("hooks", []func(){})
	})
	assert.Equal(t, 64, container.Resolve[map[string]int](c, "limits")["files"])
}

func TestSeal_RejectsInstance(t *testing.T) {
	c := container.New()
	c.Instance("before", &service{name: "before"})
	c.Seal()
	require.True(t, c.Sealed())

	assert.Panics(t, func() { c.Instance("after", &service{}) })
	assert.False(t, c.Bound("after"))

	c.Singleton("lazy", func(*container.Container) any { return &service{name: "lazy"} })
	assert.Equal(t, "lazy", container.Resolve[*service](c, "lazy").name)
	assert.Equal(t, "before", container.Resolve[*service](c, "before").name)
}

func TestNew_BindsItself(t *testing.T) {
	c := container.New()
	assert.Same(t, c, container.Resolve[*container.Container](c, "container"))
}

// ── Alias ─────────────────────────────────────────────────────────────────────

func TestAlias(t *testing.T) {
	c := container.New()
	c.Singleton("config", func(c *container.Container) any { return &service{name: "cfg"} })
	c.Alias("config", "configuration")

	assert.Same(t, c.Make("config"), c.Make("configuration"))
	assert.True(t, c.Bound("configuration"))
	assert.Panics(t, func() { c.Alias("x", "x") })
}

// ── Errors / helpers ──────────────────────────────────────────────────────────

func TestMake_UnboundPanics(t *testing.T) {
	c := container.New()
	assert.Panics(t, func() { c.Make("missing") })

	_, err := c.Get("missing")
	assert.Error(t, err)
}

func TestResolve_WrongTypePanics(t *testing.T) {
	c := container.New()
	c.Instance("n", 1)
	assert.Panics(t, func() { container.Resolve[string](c, "n") })

	_, ok := container.MustResolve[string](c, "n")
	assert.False(t, ok)
	n, ok := container.MustResolve[int](c, "n")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestBindings(t *testing.T) {
	c := container.New()
	c.Bind("b", func(c *container.Container) any { return 1 })
	c.Singleton("s", func(c *container.Container) any { return 2 })
	_ = c.Make("s")

	got := c.Bindings()
	sort.Strings(got)
	assert.Equal(t, []string{"b", "container", "s"}, got)
}

func TestNewWithRegistry_SharesRegistry(t *testing.T) {
	reg := singleton.New()
	c := container.NewWithRegistry(reg)
	c.Singleton("svc", func(c *container.Container) any { return &service{} })
	_ = c.Make("svc")

	assert.Same(t, reg, c.Registry())
	assert.True(t, reg.Contains(singleton.NewKey("container", "svc")))
}
