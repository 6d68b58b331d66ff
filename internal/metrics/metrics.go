// Package metrics exposes Prometheus instrumentation for the verification
// pipeline. Registration happens on the default registry; embedding
// applications decide whether and where to serve it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_verifications_total",
		Help: "Total verifications by outcome",
	}, []string{"outcome"})

	SMTPProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_smtp_probes_total",
		Help: "Total SMTP probes by resulting status",
	}, []string{"status"})

	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mailprobe_probe_duration_seconds",
		Help:    "Wall time of a single SMTP probe",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	DNSLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_dns_lookups_total",
		Help: "Total DNS resolutions by result",
	}, []string{"result"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_cache_hits_total",
		Help: "Cache hits by cache name",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailprobe_cache_misses_total",
		Help: "Cache misses by cache name",
	}, []string{"cache"})

	ThrottleRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailprobe_throttle_rejections_total",
		Help: "Probes skipped because the MX host was throttled or in backoff",
	})

	ThrottleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailprobe_throttle_failures_total",
		Help: "Probe failures recorded against MX hosts",
	})
)
