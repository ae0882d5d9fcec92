package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "poh"

// Metrics tracks tick production and verification.
type Metrics struct {
	TicksGenerated      prometheus.Counter
	TicksVerified       prometheus.Counter
	InvalidLinks        prometheus.Counter
	BlocksProduced      prometheus.Counter
	BlocksVerified      prometheus.Counter
	BlockProductionTime prometheus.Histogram
	BlockVerifyTime     prometheus.Histogram
	VerifierLag         prometheus.Gauge
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New registers the tick metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	buckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	return &Metrics{
		TicksGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_generated_total",
			Help:      "Total number of ticks produced by the generator",
		}),
		TicksVerified: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_verified_total",
			Help:      "Total number of ticks that passed verification",
		}),
		InvalidLinks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_links_total",
			Help:      "Total number of blocks rejected because of an invalid link",
		}),
		BlocksProduced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_produced_total",
			Help:      "Total number of tick blocks handed to the verifier",
		}),
		BlocksVerified: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_verified_total",
			Help:      "Total number of tick blocks verified",
		}),
		BlockProductionTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_production_seconds",
			Help:      "Time taken to produce a block of ticks",
			Buckets:   buckets,
		}),
		BlockVerifyTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_verify_seconds",
			Help:      "Time taken to verify a block of ticks",
			Buckets:   buckets,
		}),
		VerifierLag: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "verifier_lag_blocks",
			Help:      "Blocks produced but not yet verified",
		}),
	}
}

// Handler serves the metrics gathered by reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
