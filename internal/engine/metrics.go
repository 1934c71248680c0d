package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LinkedInSearches      atomic.Int64
	IndeedSearches        atomic.Int64
	ZipRecruiterSearches  atomic.Int64
	SearchFailures        atomic.Int64
	DetailFetches         atomic.Int64
	DetailFetchErrors     atomic.Int64
	ApplicationsAttempted atomic.Int64
	ApplicationsSucceeded atomic.Int64
	ApplicationsFailed    atomic.Int64
	BatchesStarted        atomic.Int64
	BatchesCompleted      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"linkedin_searches":      metrics.LinkedInSearches.Load(),
		"indeed_searches":        metrics.IndeedSearches.Load(),
		"ziprecruiter_searches":  metrics.ZipRecruiterSearches.Load(),
		"search_failures":        metrics.SearchFailures.Load(),
		"detail_fetches":         metrics.DetailFetches.Load(),
		"detail_fetch_errors":    metrics.DetailFetchErrors.Load(),
		"applications_attempted": metrics.ApplicationsAttempted.Load(),
		"applications_succeeded": metrics.ApplicationsSucceeded.Load(),
		"applications_failed":    metrics.ApplicationsFailed.Load(),
		"batches_started":        metrics.BatchesStarted.Load(),
		"batches_completed":      metrics.BatchesCompleted.Load(),
		"cache_hits":             hits,
		"cache_misses":           misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"linkedin_searches", "indeed_searches", "ziprecruiter_searches",
		"search_failures",
		"detail_fetches", "detail_fetch_errors",
		"applications_attempted", "applications_succeeded", "applications_failed",
		"batches_started", "batches_completed",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrLinkedInSearches()     { metrics.LinkedInSearches.Add(1) }
func IncrIndeedSearches()       { metrics.IndeedSearches.Add(1) }
func IncrZipRecruiterSearches() { metrics.ZipRecruiterSearches.Add(1) }
func IncrSearchFailures()       { metrics.SearchFailures.Add(1) }
func IncrDetailFetches()        { metrics.DetailFetches.Add(1) }
func IncrDetailFetchErrors()    { metrics.DetailFetchErrors.Add(1) }

// Incrementors for batch/ sub-package.
func IncrApplicationAttempted(success bool) {
	metrics.ApplicationsAttempted.Add(1)
	if success {
		metrics.ApplicationsSucceeded.Add(1)
	} else {
		metrics.ApplicationsFailed.Add(1)
	}
}
func IncrBatchStarted()   { metrics.BatchesStarted.Add(1) }
func IncrBatchCompleted() { metrics.BatchesCompleted.Add(1) }
