package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry, compiler, lifecycle and session counters exposed on /metrics.

var (
	// Registry
	RegistryTemplates = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recipes",
		Subsystem: "registry",
		Name:      "templates",
		Help:      "Templates in the current snapshot by lifecycle status",
	}, []string{"status"})

	RegistryReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "registry",
		Name:      "reloads_total",
		Help:      "Dataset reload attempts by result (applied, rejected)",
	}, []string{"result"})

	RegistrySnapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "recipes",
		Subsystem: "registry",
		Name:      "snapshot_version",
		Help:      "Number of snapshots swapped in since start",
	})

	// Compiler
	CompilationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "compiler",
		Name:      "compilations_total",
		Help:      "Compile calls by result (compiled, not_executable)",
	}, []string{"result"})

	// Lifecycle
	ReplacementLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "lifecycle",
		Name:      "replacement_lookups_total",
		Help:      "Replacement lookups by result (resolved, none, dangling)",
	}, []string{"result"})

	// Telemetry
	TelemetryEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "telemetry",
		Name:      "events_total",
		Help:      "Telemetry events tracked by event name",
	}, []string{"event"})

	TelemetrySinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "telemetry",
		Name:      "sink_errors_total",
		Help:      "Telemetry sink failures by sink name",
	}, []string{"sink"})

	// Sessions
	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "session",
		Name:      "transitions_total",
		Help:      "Session step transitions by target step",
	}, []string{"step"})

	ExecutionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipes",
		Subsystem: "session",
		Name:      "execution_failures_total",
		Help:      "Execution failures by failure code",
	}, []string{"code"})
)
