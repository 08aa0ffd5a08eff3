package worker

import (
	"sync"

	"github.com/pavelc4/lukey-bot/pkg/logger"
)

type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	stopped    bool
	mu         sync.Mutex
}

func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	p := &Pool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, maxWorkers*2),
	}
	p.start()
	return p
}

func (p *Pool) start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := job(); err != nil {
			logger.Warn("Worker job failed", "worker", id, "error", err)
		}
	}
}

// Submit queues job, blocking while the queue is full. It returns false
// once the pool is stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}

	p.jobs <- job
	return true
}

// TrySubmit queues job only if there is room.
func (p *Pool) TrySubmit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop rejects new jobs and waits for queued ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		close(p.jobs)
		p.stopped = true
	}
	p.mu.Unlock()

	p.wg.Wait()
}
