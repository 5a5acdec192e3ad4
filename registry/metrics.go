package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hilite",
		Subsystem: "registry",
		Name:      "scans_total",
		Help:      "Total number of scans performed",
	}, []string{"grammar"})
	metricTruncatedScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hilite",
		Subsystem: "registry",
		Name:      "truncated_scans_total",
		Help:      "Total number of scans stopped by scan budget",
	}, []string{"grammar"})
	metricScannedChars = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hilite",
		Subsystem: "registry",
		Name:      "scanned_chars_total",
		Help:      "Total number of characters scanned",
	}, []string{"grammar"})
	metricCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hilite",
		Subsystem: "registry",
		Name:      "scan_cache_hits_total",
		Help:      "Total number of scans served from result cache",
	}, []string{"grammar"})

	metricCompileSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hilite",
		Subsystem: "registry",
		Name:      "compile_seconds",
		Help:      "Time spent compiling grammar",
	}, []string{"grammar"})
)

func registerGrammarMetrics(name string) {
	// Register metrics for this grammar, so that counters are present even
	// when zero.
	metricScans.WithLabelValues(name)
	metricTruncatedScans.WithLabelValues(name)
	metricScannedChars.WithLabelValues(name)
	metricCacheHits.WithLabelValues(name)
}
