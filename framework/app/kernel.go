package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-singleton/framework/audit"
	"github.com/km-arc/go-singleton/framework/config"
	"github.com/km-arc/go-singleton/framework/container"
	"github.com/km-arc/go-singleton/framework/providers"
	"github.com/km-arc/go-singleton/framework/routing"
	"github.com/km-arc/go-singleton/framework/scheduler"
	"github.com/km-arc/go-singleton/framework/singleton"
)

const shutdownTimeout = 10 * time.Second

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application over the process-wide singleton registry.
func New(envFiles ...string) *Application {
	return NewWithRegistry(singleton.Default(), envFiles...)
}

// NewWithRegistry creates the application over r. Tests use a fresh
// registry per application.
func NewWithRegistry(r *singleton.Registry, envFiles ...string) *Application {
	c := container.NewWithRegistry(r)
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Register framework core providers (order matters: config first)
	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LoggingServiceProvider{})
	registry.Register(&providers.MetricsServiceProvider{})
	registry.Register(&providers.AuditServiceProvider{})
	registry.Register(&providers.SchedulerServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers, then seals the container so
// no Instance can be declared once the application may run concurrently.
func (a *Application) Boot() {
	a.Providers.Boot()
	a.Container.Seal()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves the process logger.
func (a *Application) Logger() *zap.Logger {
	return container.Resolve[*zap.Logger](a.Container, "logger")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Audit resolves the audit manager factory.
func (a *Application) Audit() *audit.Factory {
	return container.Resolve[*audit.Factory](a.Container, "audit")
}

// Scheduler resolves the cron scheduler.
func (a *Application) Scheduler() *scheduler.Cron {
	return container.Resolve[*scheduler.Cron](a.Container, "scheduler")
}

// Run boots the application (if needed), starts the scheduler and serves
// HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	logger := a.Logger()

	cron := a.Scheduler()
	cron.Start()
	defer cron.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("app", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("audit_dir", cfg.Audit.Dir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
