package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the verification pipeline.
type Metrics struct {
	// Capture verification
	CapturesProcessed    prometheus.Counter
	CapturesRejected     *prometheus.CounterVec
	SuspicionLevels      *prometheus.CounterVec
	ExtractionConfidence prometheus.Histogram
	FraudScore           prometheus.Histogram
	VerifyDuration       prometheus.Histogram

	// Reconciliation
	ReconciliationRuns   prometheus.Counter
	ReconciliationErrors prometheus.Counter
	MatchRate            prometheus.Gauge
	DiscrepanciesFound   *prometheus.CounterVec

	// Database
	DBErrors *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CapturesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_captures_processed_total",
			Help: "Total number of receipt captures verified",
		}),
		CapturesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_captures_rejected_total",
			Help: "Captures rejected before verification, by reason",
		}, []string{"reason"}),
		SuspicionLevels: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_suspicion_levels_total",
			Help: "Forensics suspicion level per processed capture",
		}, []string{"level"}),
		ExtractionConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veripay_extraction_confidence",
			Help:    "Field extraction confidence distribution",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		FraudScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veripay_fraud_score",
			Help:    "Forensics fraud score distribution",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veripay_verify_duration_seconds",
			Help:    "Wall-clock duration of capture verification",
			Buckets: prometheus.DefBuckets,
		}),
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_reconciliation_runs_total",
			Help: "Total reconciliation runs",
		}),
		ReconciliationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_reconciliation_errors_total",
			Help: "Reconciliation runs that failed",
		}),
		MatchRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "veripay_reconciliation_match_rate",
			Help: "Match rate of the most recent reconciliation run",
		}),
		DiscrepanciesFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_discrepancies_total",
			Help: "Discrepancies found on matched pairs, by type",
		}, []string{"type"}),
		DBErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_db_errors_total",
			Help: "Database errors by operation",
		}, []string{"operation"}),
	}
}
