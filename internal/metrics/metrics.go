// Package metrics exposes internal instrumentation via
// prometheus/client_golang — already a dependency of the teacher's
// go.mod (indirect, via the Sarama/gRPC chain), wired here directly.
// This is instrumentation, not the out-of-scope "statistics printing"
// CLI tool spec §1 excludes: nothing here writes to stdout.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles the pipeline's counters. cmd/matchcored increments
// UpdatesProcessed, TradesExecuted, MirrorCASRetries and
// EngineCASRetries, and the UDP receiver increments PacketsDropped.
// RingFullRetries and RingEmptyWaits are registered but nothing in
// this module increments them, so they always read zero.
type Registry struct {
	UpdatesProcessed prometheus.Counter
	TradesExecuted   prometheus.Counter
	RingFullRetries  prometheus.Counter
	RingEmptyWaits   prometheus.Counter
	MirrorCASRetries prometheus.Counter
	EngineCASRetries prometheus.Counter
	PacketsDropped   *prometheus.CounterVec
}

// NewRegistry constructs and registers every metric against reg.
// Pass prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		UpdatesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_updates_processed_total",
			Help: "Updates drained from a ring buffer and applied to a book or engine.",
		}),
		TradesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_trades_executed_total",
			Help: "Trades emitted by the matching engine.",
		}),
		RingFullRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_ring_full_retries_total",
			Help: "Times a producer observed a ring buffer full and yielded.",
		}),
		RingEmptyWaits: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_ring_empty_waits_total",
			Help: "Times a consumer observed a ring buffer empty and yielded.",
		}),
		MirrorCASRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_mirror_cas_retries_total",
			Help: "Lost CAS races retried by the order-book mirror.",
		}),
		EngineCASRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_engine_cas_retries_total",
			Help: "Lost CAS races retried by the matching engine.",
		}),
		PacketsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcore_packets_dropped_total",
			Help: "Datagrams dropped by the wire receiver, by reason.",
		}, []string{"reason"}),
	}
}
