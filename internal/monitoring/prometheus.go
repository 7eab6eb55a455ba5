package monitoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "colkern"

// Call statuses recorded in the status label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Instruments holds the Prometheus collectors for kernel calls.
type Instruments struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewInstruments creates the kernel collectors and registers them on reg.
// Collectors already registered by another kernel on the same registry are
// reused.
func NewInstruments(reg prometheus.Registerer) (*Instruments, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kernel",
		Name:      "calls_total",
		Help:      "Total number of kernel calls by operation and status.",
	}, []string{"op", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "kernel",
		Name:      "duration_seconds",
		Help:      "Kernel call latency in seconds.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
	}, []string{"op"})

	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kernel",
		Name:      "rows_total",
		Help:      "Total number of input rows processed by operation.",
	}, []string{"op"})

	var err error
	inst := &Instruments{}
	if inst.calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if inst.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if inst.rows, err = register(reg, rows); err != nil {
		return nil, err
	}
	return inst, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("registering kernel metrics: %w", err)
	}
	return c, nil
}

// Observe records one kernel call.
func (in *Instruments) Observe(op string, rows int, elapsed time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	in.calls.WithLabelValues(op, status).Inc()
	in.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	in.rows.WithLabelValues(op).Add(float64(rows))
}
