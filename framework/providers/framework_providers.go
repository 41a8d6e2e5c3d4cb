package providers

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/go-singleton/framework/audit"
	"github.com/km-arc/go-singleton/framework/config"
	"github.com/km-arc/go-singleton/framework/container"
	"github.com/km-arc/go-singleton/framework/logging"
	"github.com/km-arc/go-singleton/framework/metrics"
	"github.com/km-arc/go-singleton/framework/routing"
	"github.com/km-arc/go-singleton/framework/scheduler"
	auditdhttp "github.com/km-arc/go-singleton/http"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the configuration from .env and declares it
// eagerly, so it exists before anything else is resolved.
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	app.Instance("config", config.Load(p.EnvFiles...))
	app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the process logger. The logger itself is
// held under its type key in the registry, so every container sharing the
// registry gets the same *zap.Logger.
//
// Bound abstracts:
//   - "logger"  → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton("logger", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		logger, err := logging.Shared(c.Registry(), cfg.Log)
		if err != nil {
			panic(fmt.Errorf("logger: %w", err))
		}
		return logger
	})
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers the prometheus registry and collectors.
//
// Bound abstracts:
//   - "metrics.registry"  → *prometheus.Registry (declared eagerly)
//   - "metrics"           → *metrics.Collectors
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Instance("metrics.registry", reg)

	app.Singleton("metrics", func(c *container.Container) any {
		return metrics.New(container.Resolve[*prometheus.Registry](c, "metrics.registry"))
	})
}

// ── AuditServiceProvider ──────────────────────────────────────────────────────

// AuditServiceProvider is deferred: nothing is built until "audit" is first
// resolved.
//
// Bound abstracts:
//   - "audit"  → *audit.Factory
//
// Configuration keys read from "config":
//   - AUDIT_DIR (default: "storage/audit", created if missing; "" lifts the confinement)
//   - AUDIT_MAX_FILES (default: 64)
type AuditServiceProvider struct {
	container.BaseProvider
}

func (p *AuditServiceProvider) IsDeferred() bool   { return true }
func (p *AuditServiceProvider) Provides() []string { return []string{"audit"} }

func (p *AuditServiceProvider) Register(app *container.Container) {
	app.Singleton("audit", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		if cfg.Audit.Dir != "" {
			if err := os.MkdirAll(cfg.Audit.Dir, 0o755); err != nil {
				panic(fmt.Errorf("audit dir: %w", err))
			}
		}
		return audit.NewFactory(c.Registry(),
			audit.WithDir(cfg.Audit.Dir),
			audit.WithMaxFiles(cfg.Audit.MaxFiles),
			audit.WithLogger(container.Resolve[*zap.Logger](c, "logger")),
			audit.WithMetrics(container.Resolve[*metrics.Collectors](c, "metrics")),
		)
	})
}

// ── SchedulerServiceProvider ──────────────────────────────────────────────────

// SchedulerServiceProvider registers the cron scheduler and, when
// AUDIT_HEARTBEAT is set, a heartbeat entry on the default audit file.
//
// Bound abstracts:
//   - "scheduler"  → *scheduler.Cron
type SchedulerServiceProvider struct {
	container.BaseProvider
}

func (p *SchedulerServiceProvider) Register(app *container.Container) {
	app.Singleton("scheduler", func(c *container.Container) any {
		return scheduler.NewCron(nil, container.Resolve[*zap.Logger](c, "logger"))
	})
}

func (p *SchedulerServiceProvider) Boot(app *container.Container) {
	cfg := container.Resolve[*config.Config](app, "config")
	if cfg.Audit.Heartbeat == "" {
		return
	}
	m, err := container.Resolve[*audit.Factory](app, "audit").GetInstance(cfg.Audit.File)
	if err != nil {
		panic(fmt.Errorf("heartbeat: %w", err))
	}
	cron := container.Resolve[*scheduler.Cron](app, "scheduler")
	if _, err := cron.AddAudit(cfg.Audit.Heartbeat, m, "heartbeat"); err != nil {
		panic(fmt.Errorf("heartbeat: %w", err))
	}
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and, at boot, the audit
// routes and the /metrics endpoint.
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) any {
		return routing.New(container.Resolve[*zap.Logger](c, "logger"))
	})
}

func (p *RoutingServiceProvider) Boot(app *container.Container) {
	router := container.Resolve[*routing.Router](app, "router")

	controller := &auditdhttp.AuditController{
		Audit:    container.Resolve[*audit.Factory](app, "audit"),
		Registry: app.Registry(),
		Logger:   container.Resolve[*zap.Logger](app, "logger"),
	}
	controller.Routes(router)

	reg := container.Resolve[*prometheus.Registry](app, "metrics.registry")
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
