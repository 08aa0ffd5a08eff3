package stats

import (
	"sync"
	"time"
)

// Counters keeps in-memory post counters for the owner stats command.
// Nothing is persisted.
type Counters struct {
	mu        sync.RWMutex
	startTime time.Time

	outcomes   map[string]int64
	pools      map[string]int64
	bytesSent  int64
	transcoded int64
	lastPost   time.Time
}

func NewCounters() *Counters {
	return &Counters{
		startTime: time.Now(),
		outcomes:  make(map[string]int64),
		pools:     make(map[string]int64),
	}
}

// RecordPost counts one pipeline run. bytes is the uploaded size, zero for
// previews and failures.
func (c *Counters) RecordPost(pool, outcome string, bytes int64, transcoded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outcomes[outcome]++
	c.pools[pool]++
	c.bytesSent += bytes
	if transcoded {
		c.transcoded++
	}
	c.lastPost = time.Now()
}

type Snapshot struct {
	Uptime     time.Duration
	Total      int64
	Outcomes   map[string]int64
	Pools      map[string]int64
	BytesSent  int64
	Transcoded int64
	LastPost   time.Time
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:     time.Since(c.startTime),
		Outcomes:   make(map[string]int64, len(c.outcomes)),
		Pools:      make(map[string]int64, len(c.pools)),
		BytesSent:  c.bytesSent,
		Transcoded: c.transcoded,
		LastPost:   c.lastPost,
	}
	for k, v := range c.outcomes {
		s.Outcomes[k] = v
		s.Total += v
	}
	for k, v := range c.pools {
		s.Pools[k] = v
	}
	return s
}
