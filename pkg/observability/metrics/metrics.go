// Package metrics exposes matcher and profile-builder counters on a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trialmatch"

var (
	registry = prometheus.NewRegistry()

	matchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "requests_total",
		Help:      "Match requests by outcome (ok, invalid, error).",
	}, []string{"outcome"})

	matchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "duration_seconds",
		Help:      "Time spent filtering, scoring and ranking one request.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	matchFiltered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "trials_filtered_total",
		Help:      "Trials removed from results, by filter stage.",
	}, []string{"stage"})

	matchSurfaced = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "match",
		Name:      "trials_surfaced",
		Help:      "Trials surfaced per match request.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	profilesBuilt = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "profiles",
		Name:      "catalog_size",
		Help:      "Trial eligibility profiles in the active catalog.",
	})

	profileRebuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "profiles",
		Name:      "rebuilds_total",
		Help:      "Full profile rebuilds by outcome.",
	}, []string{"outcome"})

	profileRebuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "profiles",
		Name:      "rebuild_duration_seconds",
		Help:      "Wall time of a full profile rebuild.",
		Buckets:   prometheus.DefBuckets,
	})

	profileCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "profiles",
		Name:      "cache_lookups_total",
		Help:      "Profile cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status class.",
	}, []string{"method", "status"})

	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-process rate limiter.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		matchRequests, matchDuration, matchFiltered, matchSurfaced,
		profilesBuilt, profileRebuilds, profileRebuildDuration, profileCache,
		httpRequests, rateLimited,
	)
}

func ObserveMatch(outcome string, elapsed time.Duration) {
	matchRequests.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		matchDuration.Observe(elapsed.Seconds())
	}
}

// ObserveFilterCounts records how many trials each filter stage removed and
// how many were surfaced.
func ObserveFilterCounts(stages map[string]int, surfaced int) {
	for stage, n := range stages {
		if n > 0 {
			matchFiltered.WithLabelValues(stage).Add(float64(n))
		}
	}
	matchSurfaced.Observe(float64(surfaced))
}

func ObserveRebuild(outcome string, size int, elapsed time.Duration) {
	profileRebuilds.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		profilesBuilt.Set(float64(size))
		profileRebuildDuration.Observe(elapsed.Seconds())
	}
}

func ObserveCatalogSize(size int) {
	profilesBuilt.Set(float64(size))
}

func ObserveCacheLookup(result string) {
	profileCache.WithLabelValues(result).Inc()
}

// ObserveHTTP counts one served request, bucketing the status as 2xx, 4xx, ...
func ObserveHTTP(method string, status int) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status/100)+"xx").Inc()
}

func ObserveRateLimited() {
	rateLimited.Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
