// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ContractCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fernet_contract_calls_total",
			Help: "Read-only contract calls by entrypoint and outcome",
		},
		[]string{"network", "entrypoint", "outcome"},
	)

	ContractCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fernet_contract_call_duration_seconds",
			Help:    "Latency of starknet_call requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"network", "entrypoint"},
	)

	ContractWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fernet_contract_writes_total",
			Help: "Write submissions by entrypoint, encoding strategy and outcome",
		},
		[]string{"entrypoint", "strategy", "outcome"},
	)

	DecodeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fernet_decode_fallbacks_total",
			Help: "Contract values replaced by a default because they could not be decoded",
		},
		[]string{"entrypoint", "field"},
	)

	SkippedEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fernet_batch_entries_skipped_total",
			Help: "Malformed entries dropped from batch reads",
		},
		[]string{"entrypoint"},
	)

	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fernet_geocode_lookups_total",
			Help: "Geocoding lookups by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fernet_session_events_total",
			Help: "Session lifecycle events",
		},
		[]string{"event"},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeMiss  = "miss"
	OutcomeHit   = "hit"
)
