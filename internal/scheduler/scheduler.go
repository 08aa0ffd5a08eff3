package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pavelc4/lukey-bot/internal/metrics"
)

type TaskFunc func(ctx context.Context) error

// Task runs Run every Interval. A zero Interval disables the task.
type Task struct {
	Name     string
	Interval time.Duration
	Run      TaskFunc
}

// Scheduler runs recurring tasks on a cron. Tasks are registered up front
// and only start ticking after Start, which the app calls once the chat
// connection is ready.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	tasks   map[string]Task
	jobs    map[string]cron.EntryID
	started bool
	ctx     context.Context
}

func New(log *slog.Logger) *Scheduler {
	cl := cronLogger{log: log.With(slog.String("service", "scheduler"))}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: log.With(slog.String("service", "scheduler")),
		tasks:  map[string]Task{},
		jobs:   map[string]cron.EntryID{},
	}
}

func (s *Scheduler) Register(t Task) error {
	if t.Name == "" || t.Run == nil {
		return fmt.Errorf("task needs a name and a func")
	}
	if t.Interval < 0 {
		return fmt.Errorf("task %s: negative interval", t.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.Name]; ok {
		return fmt.Errorf("task %s already registered", t.Name)
	}
	s.tasks[t.Name] = t

	if t.Interval == 0 {
		s.logger.Info("Task disabled", slog.String("task", t.Name))
		return nil
	}
	if s.started {
		s.scheduleLocked(t)
	}
	return nil
}

// Start begins ticking. Jobs use ctx as their parent context. Calling Start
// again is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.ctx = ctx

	for _, t := range s.tasks {
		if t.Interval > 0 {
			s.scheduleLocked(t)
		}
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", slog.Int("jobs", len(s.jobs)))
}

// Stop halts ticking and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
	}
}

// Trigger runs a registered task synchronously, ignoring its interval.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("task %s not found", name)
	}
	return s.run(ctx, t)
}

// Active lists the names of tasks with a cron entry.
func (s *Scheduler) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) scheduleLocked(t Task) {
	job := cron.FuncJob(func() {
		// failures are logged, the next tick is the retry
		_ = s.run(s.ctx, t)
	})
	s.jobs[t.Name] = s.cron.Schedule(cron.Every(t.Interval), job)
	s.logger.Info("Task scheduled", slog.String("task", t.Name), slog.Duration("interval", t.Interval))
}

func (s *Scheduler) run(ctx context.Context, t Task) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Task panicked", slog.String("task", t.Name), slog.Any("error", r), slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
		status := "ok"
		if err != nil {
			status = "error"
			s.logger.Warn("Task failed", slog.String("task", t.Name), slog.Any("error", err))
		}
		metrics.ScheduledRunsTotal.WithLabelValues(t.Name, status).Inc()
		s.logger.Debug("Task finished", slog.String("task", t.Name), slog.Duration("duration", time.Since(start)))
	}()
	return t.Run(ctx)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
