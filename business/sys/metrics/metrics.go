// Package metrics constructs the metrics the application will track.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "protochain"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of handled requests.",
	}, []string{"method", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of handled requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	errorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "Count of requests that failed.",
	})
	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Count of requests that panicked.",
	})
)

// ObserveRequest records a handled request.
func ObserveRequest(method string, statusCode int, started time.Time) {
	requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// AddError records a failed request.
func AddError() {
	errorsTotal.Inc()
}

// AddPanic records a request that panicked.
func AddPanic() {
	panicsTotal.Inc()
}

// =============================================================================

// Chain represents the chain values exposed as gauges.
type Chain interface {
	QueryBlocksLength() int
	QueryMempoolLength() int
	Difficulty() int
}

// RegisterChain registers gauges reporting the size and difficulty of the
// chain with the specified registerer.
func RegisterChain(reg prometheus.Registerer, chain Chain) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "blocks",
			Help:      "Number of blocks in the chain.",
		}, func() float64 { return float64(chain.QueryBlocksLength()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "mempool",
			Help:      "Number of transactions waiting to be mined.",
		}, func() float64 { return float64(chain.QueryMempoolLength()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "difficulty",
			Help:      "Difficulty the next block must be mined to.",
		}, func() float64 { return float64(chain.Difficulty()) }),
	}

	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}

	return nil
}
