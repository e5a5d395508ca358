package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the connector.
	Registry = prometheus.NewRegistry()

	// MarketplaceCalls counts outbound marketplace API calls by path and outcome.
	MarketplaceCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "marketplace_api_calls_total", Help: "Outbound marketplace API calls by path and outcome."},
		[]string{"path", "outcome"},
	)
	// MarketplaceCallDuration records outbound call durations in seconds.
	MarketplaceCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "marketplace_api_call_duration_seconds", Help: "Outbound marketplace API call duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"path"},
	)
	// SyncedRecords counts normalized records returned by sync passes.
	SyncedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sync_records_total", Help: "Normalized records returned by sync passes, by entity kind."},
		[]string{"entity"},
	)
)

var regOnce sync.Once

// Register registers all collectors on the package registry.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(MarketplaceCalls)
		Registry.MustRegister(MarketplaceCallDuration)
		Registry.MustRegister(SyncedRecords)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
