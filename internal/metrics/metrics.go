package metrics

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    analysesTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "mediagent",
            Name:      "analyses_total",
            Help:      "Total analysis requests by result (success, acquisition_error, inference_error, compose_error, busy)",
        },
        []string{"result"},
    )

    providerReqs = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "mediagent",
            Name:      "provider_requests_total",
            Help:      "Total provider requests by provider, model and result",
        },
        []string{"provider", "model", "result"},
    )

    providerLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "mediagent",
            Name:      "provider_request_duration_seconds",
            Help:      "Duration of provider requests by provider and model",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"provider", "model"},
    )

    composeDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "mediagent",
            Name:      "compose_duration_seconds",
            Help:      "Duration of report composition",
            Buckets:   prometheus.DefBuckets,
        },
    )

    reportBytes = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "mediagent",
            Name:      "report_size_bytes",
            Help:      "Size of composed report documents",
            Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
        },
    )
)

// Init registers collectors.
func Init() {
    prometheus.MustRegister(analysesTotal, providerReqs, providerLatency, composeDuration, reportBytes)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncAnalysis(result string) { analysesTotal.WithLabelValues(result).Inc() }

func ObserveProvider(provider, model, result string, dur time.Duration) {
    providerReqs.WithLabelValues(provider, model, result).Inc()
    providerLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func ObserveCompose(dur time.Duration, size int) {
    composeDuration.Observe(dur.Seconds())
    reportBytes.Observe(float64(size))
}
