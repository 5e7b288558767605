package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	flightSearches  prometheus.Counter
	bookingsCreated prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	storeLatency    prometheus.Histogram
	errorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		flightSearches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_searches_total",
			Help:      "The total number of flight search requests",
		}),
		bookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_hits_total",
			Help:      "Lookup cache hits by cache name",
		}, []string{"cache"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_misses_total",
			Help:      "Lookup cache misses by cache name",
		}, []string{"cache"}),
		storeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Time spent in data store operations",
			Buckets:   prometheus.DefBuckets,
		}),
		errorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// FlightSearch records one flight search request
func (m *Metrics) FlightSearch() {
	if m == nil {
		return
	}
	m.flightSearches.Inc()
}

// BookingCreated records one created booking
func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// CacheHit records a hit on the named lookup cache
func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss records a miss on the named lookup cache
func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// ObserveStoreLatency records the duration of one store operation in seconds
func (m *Metrics) ObserveStoreLatency(seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.Observe(seconds)
}

// Error records an error for the given operation
func (m *Metrics) Error(operation string) {
	if m == nil {
		return
	}
	m.errorsCount.WithLabelValues(operation).Inc()
}
