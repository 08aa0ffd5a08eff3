package worker

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(4)
	var done atomic.Int32
	for i := 0; i < 20; i++ {
		assert.True(t, p.Submit(func() error {
			done.Add(1)
			return nil
		}))
	}
	p.Stop()
	assert.Equal(t, int32(20), done.Load())
}

func TestPoolFailedJobDoesNotStopWorker(t *testing.T) {
	p := NewPool(1)
	var done atomic.Int32
	p.Submit(func() error { return errors.New("nope") })
	p.Submit(func() error { done.Add(1); return nil })
	p.Stop()
	assert.Equal(t, int32(1), done.Load())
}

func TestPoolStopped(t *testing.T) {
	p := NewPool(1)
	p.Stop()
	assert.False(t, p.Submit(func() error { return nil }))
	assert.False(t, p.TrySubmit(func() error { return nil }))
	p.Stop()
}

func TestTrySubmitFull(t *testing.T) {
	p := NewPool(1)
	block := make(chan struct{})
	started := make(chan struct{})

	assert.True(t, p.TrySubmit(func() error { close(started); <-block; return nil }))
	<-started
	// queue holds maxWorkers*2 jobs
	assert.True(t, p.TrySubmit(func() error { return nil }))
	assert.True(t, p.TrySubmit(func() error { return nil }))
	assert.False(t, p.TrySubmit(func() error { return nil }))

	close(block)
	p.Stop()
}
