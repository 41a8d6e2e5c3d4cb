package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds the prometheus series exported by auditd.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	constructionsTotal *prometheus.CounterVec
	appendsTotal       *prometheus.CounterVec
	appendDuration     *prometheus.HistogramVec
	managersActive     prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		constructionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "singleton_constructions_total",
				Help: "Singleton construction attempts by key kind and result",
			},
			[]string{"kind", "result"},
		),
		appendsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audit_appends_total",
				Help: "Audit line appends by file and result",
			},
			[]string{"file", "result"},
		),
		appendDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "audit_append_duration_seconds",
				Help:    "Time spent holding an audit file's write lock",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"file"},
		),
		managersActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "audit_managers",
				Help: "Number of audit managers constructed in this process",
			},
		),
	}
}

// ObserveConstruction records one construction attempt for a key kind.
func (c *Collectors) ObserveConstruction(kind string, err error) {
	if c == nil {
		return
	}
	c.constructionsTotal.WithLabelValues(kind, result(err)).Inc()
}

// ManagerCreated bumps the audit manager gauge.
func (c *Collectors) ManagerCreated() {
	if c == nil {
		return
	}
	c.managersActive.Inc()
}

// ObserveAppend records one audit append and how long it held the lock.
func (c *Collectors) ObserveAppend(file string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.appendsTotal.WithLabelValues(file, result(err)).Inc()
	c.appendDuration.WithLabelValues(file).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
