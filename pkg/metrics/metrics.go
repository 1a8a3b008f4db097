package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Executions counts paid skill executions by outcome
	// (success|not_found|offline|timeout|error).
	Executions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbazaar_executions_total",
			Help: "Total number of skill executions",
		},
		[]string{"skill", "outcome"},
	)

	// PaymentMicroUnits accumulates the payment ceilings authorised for
	// successful executions, in USDC micro-units.
	PaymentMicroUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbazaar_payment_micro_units_total",
			Help: "Payment ceilings authorised for successful executions (micro-USDC)",
		},
		[]string{"skill"},
	)

	// CacheLookups counts read-through cache hits and misses per logical key.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbazaar_cache_lookups_total",
			Help: "Read-through cache lookups by key and result (hit|miss)",
		},
		[]string{"key", "result"},
	)

	// SkillsOnline tracks the last health sweep's view of reachable skills.
	SkillsOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skillbazaar_skills_online",
			Help: "Number of registered skills that answered the last health sweep",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillbazaar_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
