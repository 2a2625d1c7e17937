package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeaturesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_features_loaded",
		Help: "Number of raw features in the current snapshot",
	})
	FeaturesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_features_tracked",
		Help: "Number of features classified into at least one category",
	})
	FeaturesSkipped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_features_skipped",
		Help: "Number of classified features without a resolvable coordinate",
	})
	FeatureLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_feature_loads_total",
		Help: "Feature snapshot loads by outcome",
	}, []string{"status"})
	AggregationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_aggregation_duration_ms",
		Help:    "Facility aggregation duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 200},
	})
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_analyses_total",
		Help: "Analysis requests by source and outcome",
	}, []string{"source", "status"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_upstream_requests_total",
		Help: "External provider calls by provider and outcome",
	}, []string{"provider", "status"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scout_upstream_duration_ms",
		Help:    "External provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000},
	}, []string{"provider"})
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_cache_lookups_total",
		Help: "Redis cache lookups by kind and result",
	}, []string{"kind", "result"})
	StaleResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_stale_results_total",
		Help: "Fetch results discarded because the selection changed",
	}, []string{"kind"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_active_sessions",
		Help: "Number of live scouting sessions",
	})
)

func init() {
	prometheus.MustRegister(FeaturesLoaded)
	prometheus.MustRegister(FeaturesTracked)
	prometheus.MustRegister(FeaturesSkipped)
	prometheus.MustRegister(FeatureLoadsTotal)
	prometheus.MustRegister(AggregationDurationMs)
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamDurationMs)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(StaleResultsTotal)
	prometheus.MustRegister(ActiveSessions)
}

// ObserveUpstream записывает результат и длительность вызова внешнего провайдера
func ObserveUpstream(provider string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(provider, status).Inc()
	UpstreamDurationMs.WithLabelValues(provider).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// Since возвращает прошедшее время в миллисекундах
func Since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// Handler возвращает обработчик /metrics для монтирования через fiber adaptor
func Handler() http.Handler { return promhttp.Handler() }
