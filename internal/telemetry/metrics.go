package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Crawl metrics. CrawlerRequests replaces the old file-based request
// counter log: every outbound portal request is counted per endpoint.
var (
	CrawlerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_crawler_requests_total",
		Help: "Outbound requests to the operator portal, by endpoint.",
	}, []string{"endpoint"})

	DevicesMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_devices_merged_total",
		Help: "Device records merged into the catalog.",
	})

	MergeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_merge_failures_total",
		Help: "Device records skipped because of data-quality or storage errors.",
	})

	PriceChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_price_changes_total",
		Help: "Offers whose observed price differed from the stored one.",
	})

	SKUsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_skus_discovered_total",
		Help: "Sibling SKUs created by the discovery pass.",
	})
)
