package runtime

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpclog/rpclog/internal/runtime/config"
	"github.com/rpclog/rpclog/internal/runtime/logging"
	"github.com/rpclog/rpclog/pipeline"
)

// MemorySnapshot captures heap state at one point of a monitored call.
type MemorySnapshot struct {
	Alloc      uint64
	TotalAlloc uint64
	Sys        uint64
	NumGC      uint32
}

func readMemory() *MemorySnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return &MemorySnapshot{
		Alloc:      ms.Alloc,
		TotalAlloc: ms.TotalAlloc,
		Sys:        ms.Sys,
		NumGC:      ms.NumGC,
	}
}

// Metrics tracks one monitored invocation from Start to End. Instances are
// single-use; calling End twice on the same instance is undefined (the
// second call recomputes from the original start time, nothing guards it).
type Metrics struct {
	Procedure string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Input     any
	Output    any
	Memory    *MemorySnapshot
	Err       error

	disabled bool
}

// Monitor times procedure executions and reports through a logger handle:
// failures at error, slow completions at warn, the rest at debug. With
// MetricsEnabled it additionally feeds Prometheus collectors.
type Monitor struct {
	cfg    config.PerformanceConfig
	logger *logging.Handle
	now    func() time.Time

	durations *prometheus.HistogramVec
	slowCalls *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewMonitor builds a monitor over the given config. The logger may be nil;
// a nil handle drops all monitor output.
func NewMonitor(cfg config.PerformanceConfig, logger *logging.Handle) *Monitor {
	cfg = cfg.WithDefaults()
	m := &Monitor{cfg: cfg, logger: logger, now: time.Now}
	if cfg.Enabled && cfg.MetricsEnabled {
		m.durations = registerOrExisting(cfg.Registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rpclog",
			Name:      "procedure_duration_seconds",
			Help:      "Duration of monitored procedure executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}))
		m.slowCalls = registerOrExisting(cfg.Registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rpclog",
			Name:      "procedure_slow_total",
			Help:      "Monitored executions slower than the configured threshold.",
		}, []string{"procedure"}))
		m.failures = registerOrExisting(cfg.Registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rpclog",
			Name:      "procedure_failures_total",
			Help:      "Monitored executions that returned an error.",
		}, []string{"procedure"}))
	}
	return m
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// WithLogger returns a monitor reporting through a different handle while
// sharing config and collectors. Used per request by the performance
// middleware.
func (m *Monitor) WithLogger(logger *logging.Handle) *Monitor {
	clone := *m
	clone.logger = logger
	return &clone
}

// Enabled reports whether the monitor records anything at all.
func (m *Monitor) Enabled() bool {
	return m.cfg.Enabled
}

// Start opens a metrics session for the named procedure. On a disabled
// monitor it returns a degenerate instance carrying only the name, and End
// on that instance is a matching no-op.
func (m *Monitor) Start(name string, input any) *Metrics {
	if !m.cfg.Enabled {
		return &Metrics{Procedure: name, disabled: true}
	}
	metrics := &Metrics{
		Procedure: name,
		StartTime: m.now(),
	}
	if m.cfg.LogInputOutput {
		metrics.Input = input
	}
	if m.cfg.LogMemoryUsage {
		metrics.Memory = readMemory()
	}
	return metrics
}

// End completes the session: error beats slow-query classification, slow
// completions log at warn, everything else at debug.
func (m *Monitor) End(metrics *Metrics, output any, callErr error) {
	if metrics == nil || metrics.disabled || !m.cfg.Enabled {
		return
	}

	metrics.EndTime = m.now()
	metrics.Duration = metrics.EndTime.Sub(metrics.StartTime)
	metrics.Err = callErr
	if m.cfg.LogInputOutput {
		metrics.Output = output
	}

	if m.durations != nil {
		m.durations.WithLabelValues(metrics.Procedure).Observe(metrics.Duration.Seconds())
	}

	fields := pipeline.Fields{
		"procedure":   metrics.Procedure,
		"duration_ms": metrics.Duration.Milliseconds(),
	}
	if m.cfg.LogInputOutput {
		fields["input"] = metrics.Input
		fields["output"] = metrics.Output
	}
	if m.cfg.LogMemoryUsage && metrics.Memory != nil {
		end := readMemory()
		fields["heap_alloc_bytes"] = end.Alloc
		fields["heap_alloc_delta_bytes"] = int64(end.Alloc) - int64(metrics.Memory.Alloc)
		fields["gc_runs"] = end.NumGC - metrics.Memory.NumGC
	}

	if callErr != nil {
		if m.failures != nil {
			m.failures.WithLabelValues(metrics.Procedure).Inc()
		}
		fields["error"] = callErr.Error()
		delete(fields, "output")
		m.logger.Error("procedure failed", fields)
		return
	}

	if m.cfg.LogSlowQueries && metrics.Duration > m.cfg.SlowQueryThreshold {
		if m.slowCalls != nil {
			m.slowCalls.WithLabelValues(metrics.Procedure).Inc()
		}
		fields["threshold_ms"] = m.cfg.SlowQueryThreshold.Milliseconds()
		m.logger.Warn("slow procedure", fields)
		return
	}

	m.logger.Debug("procedure completed", fields)
}

// Wrap times fn under the given name, ending the session with its result.
func (m *Monitor) Wrap(ctx context.Context, name string, input any, fn func(ctx context.Context) (any, error)) (any, error) {
	metrics := m.Start(name, input)
	out, err := fn(ctx)
	m.End(metrics, out, err)
	return out, err
}
