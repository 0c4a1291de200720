package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal cuenta resoluciones por método ganador y resultado.
	// Labels: method (exact, local_fuzzy, ai_correction, none), outcome (resolved, unresolved, rejected)
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fuel",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Resoluciones de identificadores por método y resultado",
	}, []string{"method", "outcome"})

	// stageSeconds mide la duración de cada etapa del pipeline.
	stageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fuel",
		Subsystem: "resolver",
		Name:      "stage_seconds",
		Help:      "Duración de cada etapa de resolución",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
	}, []string{"stage"})

	// correctionCallsTotal cuenta llamadas al servicio de corrección.
	// Labels: outcome (accepted, rejected, no_match, cache_hit, unavailable)
	correctionCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fuel",
		Subsystem: "correction",
		Name:      "calls_total",
		Help:      "Llamadas al servicio de corrección por resultado",
	}, []string{"outcome"})

	// ledgerOpsTotal cuenta commits y reversas del libro de agotamiento.
	// Labels: op (commit, reverse), outcome (ok, stale, insufficient, noop, error)
	ledgerOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fuel",
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Operaciones de agotamiento FIFO por tipo y resultado",
	}, []string{"op", "outcome"})
)

// RecordResolution registra el resultado final de una resolución.
func RecordResolution(method, outcome string) {
	resolutionsTotal.WithLabelValues(method, outcome).Inc()
}

// ObserveStage registra la duración (segundos) de una etapa.
func ObserveStage(stage string, seconds float64) {
	stageSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordCorrection registra el resultado de una consulta de corrección.
func RecordCorrection(outcome string) {
	correctionCallsTotal.WithLabelValues(outcome).Inc()
}

// RecordLedger registra una operación del libro.
func RecordLedger(op, outcome string) {
	ledgerOpsTotal.WithLabelValues(op, outcome).Inc()
}
