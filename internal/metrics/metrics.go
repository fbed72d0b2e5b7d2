package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters exposed by the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FetchErrors        int64
	CacheHits          int64
	CacheMisses        int64
	ArticlesNormalized int64
	DuplicatesDropped  int64
	ImagesEnriched     int64

	// Timings
	LastAggregationTime    time.Duration
	AverageAggregationTime time.Duration
	TotalAggregationTime   time.Duration
	AggregationCount       int64

	// Status
	LastRunTime time.Time
	IsHealthy   bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFetchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) AddArticlesNormalized(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesNormalized += int64(n)
}

func (m *Metrics) AddDuplicatesDropped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesDropped += int64(n)
}

func (m *Metrics) IncrementImagesEnriched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesEnriched++
}

func (m *Metrics) RecordAggregationTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastAggregationTime = duration
	m.TotalAggregationTime += duration
	m.AggregationCount++

	if m.AggregationCount > 0 {
		m.AverageAggregationTime = m.TotalAggregationTime / time.Duration(m.AggregationCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":               m.FeedsFetched,
		"fetch_errors":                m.FetchErrors,
		"cache_hits":                  m.CacheHits,
		"cache_misses":                m.CacheMisses,
		"articles_normalized":         m.ArticlesNormalized,
		"duplicates_dropped":          m.DuplicatesDropped,
		"images_enriched":             m.ImagesEnriched,
		"last_aggregation_time_ms":    m.LastAggregationTime.Milliseconds(),
		"average_aggregation_time_ms": m.AverageAggregationTime.Milliseconds(),
		"last_run_time":               m.LastRunTime.Format(time.RFC3339),
		"is_healthy":                  m.IsHealthy,
	}
}
