package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry's Prometheus metrics.
type Metrics struct {
	TokensMinted      *prometheus.CounterVec
	BaseLocatorMoves  prometheus.Counter
	TotalsCacheHits   prometheus.Counter
	TotalsCacheMisses prometheus.Counter
}

// New creates and registers the registry metrics.
func New() *Metrics {
	return &Metrics{
		TokensMinted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "givechain_registry_tokens_minted_total",
			Help: "Tokens minted, labelled by kind (donation or invoice)",
		}, []string{"kind"}),
		BaseLocatorMoves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "givechain_registry_base_locator_moves_total",
			Help: "Administrative base locator updates",
		}),
		TotalsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "givechain_registry_totals_cache_hits_total",
			Help: "Cumulative-total reads served from the cache",
		}),
		TotalsCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "givechain_registry_totals_cache_misses_total",
			Help: "Cumulative-total reads that fell through to the store",
		}),
	}
}

func (m *Metrics) RecordMint(kind string) {
	if m == nil {
		return
	}
	m.TokensMinted.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordBaseLocatorMove() {
	if m == nil {
		return
	}
	m.BaseLocatorMoves.Inc()
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.TotalsCacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.TotalsCacheMisses.Inc()
}
