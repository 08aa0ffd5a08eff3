package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.RecordPost("normal", "delivered_direct", 1000, false)
	c.RecordPost("spicy", "delivered_transcoded", 500, true)
	c.RecordPost("normal", "no_media", 0, false)

	s := c.Snapshot()
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, int64(2), s.Pools["normal"])
	assert.Equal(t, int64(1), s.Outcomes["no_media"])
	assert.Equal(t, int64(1500), s.BytesSent)
	assert.Equal(t, int64(1), s.Transcoded)
	assert.False(t, s.LastPost.IsZero())

	// snapshot is a copy
	s.Pools["normal"] = 99
	assert.Equal(t, int64(2), c.Snapshot().Pools["normal"])
}

func TestCountersConcurrent(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordPost("normal", "delivered_preview", 0, false)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Snapshot().Total)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "8.00 MB", FormatBytes(8<<20))
	assert.Equal(t, "1.50 GB", FormatBytes(3<<29))
}

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo(t.TempDir())
	assert.Positive(t, info.CPUCores)
	assert.Positive(t, info.ProcessPID)
	assert.NotEmpty(t, info.GoVersion)
}
