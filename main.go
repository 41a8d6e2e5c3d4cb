package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-singleton/framework/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New() // loads .env automatically
	application.Boot()

	logger := application.Logger()
	defer func() { _ = logger.Sync() }()

	m, err := application.Audit().GetInstance(application.Config().Audit.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auditd: %v\n", err)
		os.Exit(1)
	}
	if err := m.Log("auditd started"); err != nil {
		logger.Error("startup audit entry failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	_ = m.Log("auditd stopped")
}
