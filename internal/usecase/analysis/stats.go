package analysis

import (
	"sync"
	"time"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

// statsCounter keeps process-lifetime analyzer counters
type statsCounter struct {
	mu        sync.Mutex
	analyses  int64
	failures  int64
	cacheHits int64
	total     time.Duration
}

func (c *statsCounter) record(elapsed time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyses++
	if failed {
		c.failures++
	}
	c.total += elapsed
}

func (c *statsCounter) hit() {
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

func (c *statsCounter) snapshot() entities.ProcessingStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := entities.ProcessingStats{
		AnalysisCount:       c.analyses,
		FailedCount:         c.failures,
		CacheHits:           c.cacheHits,
		TotalProcessingTime: c.total.Seconds(),
	}
	if c.analyses > 0 {
		stats.AverageProcessingTime = stats.TotalProcessingTime / float64(c.analyses)
	}
	return stats
}
