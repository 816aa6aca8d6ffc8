package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched   int64
	DigestsGenerated  int64
	TranslatedDigests int64
	FallbackDigests   int64
	APIFailures       int64
	EmailsSent        int64

	// Timings
	LastProcessingTime    time.Duration
	TotalProcessingTime   time.Duration
	AverageProcessingTime time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) IncrementDigestsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestsGenerated++
}

func (m *Metrics) IncrementTranslatedDigests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslatedDigests++
}

func (m *Metrics) IncrementFallbackDigests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackDigests++
}

func (m *Metrics) IncrementAPIFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APIFailures++
}

func (m *Metrics) IncrementEmailsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmailsSent++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":           m.ArticlesFetched,
		"digests_generated":          m.DigestsGenerated,
		"translated_digests":         m.TranslatedDigests,
		"fallback_digests":           m.FallbackDigests,
		"api_failures":               m.APIFailures,
		"emails_sent":                m.EmailsSent,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
