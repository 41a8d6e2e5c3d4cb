package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Logger is the audit sink a scheduled entry writes to.
type Logger interface {
	Log(message string) error
}

// Cron runs periodic audit entries such as heartbeats.
type Cron struct {
	c      *cron.Cron
	logger *zap.Logger
}

// NewCron returns a stopped scheduler. A nil loc means time.Local.
func NewCron(loc *time.Location, logger *zap.Logger) *Cron {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Cron{c: c, logger: logger}
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { ctx := cr.c.Stop(); <-ctx.Done() }

// AddAudit schedules message to be written to sink on expr. Write failures
// are reported through the scheduler's logger; the schedule keeps running.
func (cr *Cron) AddAudit(expr string, sink Logger, message string) (cron.EntryID, error) {
	return cr.c.AddFunc(expr, func() {
		if err := sink.Log(message); err != nil {
			cr.logger.Warn("scheduled audit entry failed", zap.String("message", message), zap.Error(err))
		}
	})
}

func (cr *Cron) Entries() []cron.Entry { return cr.c.Entries() }
