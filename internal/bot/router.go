package bot

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/messaging"
	"github.com/pavelc4/lukey-bot/internal/metrics"
	"github.com/pavelc4/lukey-bot/internal/middleware"
	"github.com/pavelc4/lukey-bot/internal/report"
	"github.com/pavelc4/lukey-bot/pkg/logger"
	"github.com/pavelc4/lukey-bot/pkg/worker"
)

const DefaultCommandTimeout = 5 * time.Minute

type HandlerFunc func(ctx context.Context, cmd chat.Command) error

type RouterOptions struct {
	// Rate and Burst limit commands per channel. Rate <= 0 disables limiting.
	Rate           float64
	Burst          int
	CommandTimeout time.Duration
}

// Router maps command names to handlers and runs them on the worker pool.
type Router struct {
	sender   chat.Sender
	pool     *worker.Pool
	reporter *report.Reporter
	opts     RouterOptions

	handlers map[string]HandlerFunc
	limiters *limiters
}

func NewRouter(sender chat.Sender, pool *worker.Pool, reporter *report.Reporter, opts RouterOptions) *Router {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	return &Router{
		sender:   sender,
		pool:     pool,
		reporter: reporter,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
		limiters: newLimiters(opts.Rate, opts.Burst),
	}
}

func (r *Router) Handle(name string, h HandlerFunc) {
	r.handlers[name] = h
}

func (r *Router) Commands() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch routes cmd to its handler. Unknown commands are ignored. It does
// not wait for the handler to finish.
func (r *Router) Dispatch(ctx context.Context, cmd chat.Command) {
	h, ok := r.handlers[cmd.Name]
	if !ok {
		return
	}

	log := logger.FromContext(ctx).With("command", cmd.Name, "channel", cmd.ChannelID, "user", cmd.UserID)
	ctx = logger.WithContext(ctx, log)

	if !r.limiters.allow(cmd.ChannelID) {
		metrics.CommandsTotal.WithLabelValues(cmd.Name, "rate_limited").Inc()
		log.Info("Command rate limited")
		r.reply(ctx, cmd.ChannelID, messaging.TextSlowDown)
		return
	}

	run := middleware.Chain(func(ctx context.Context) {
		if err := h(ctx, cmd); err != nil {
			r.reporter.Error(ctx, "Command failed", err, "command", cmd.Name)
			r.reply(ctx, cmd.ChannelID, messaging.TextGenericError)
		}
	},
		middleware.Recover(func(ctx context.Context, recovered any, stack []byte) {
			r.reporter.Panic(ctx, recovered, stack, "command", cmd.Name)
			r.reply(ctx, cmd.ChannelID, messaging.TextGenericError)
		}),
		middleware.Logger(cmd.Name),
		middleware.Timeout(r.opts.CommandTimeout),
	)

	if !r.pool.TrySubmit(func() error { run(ctx); return nil }) {
		metrics.CommandsTotal.WithLabelValues(cmd.Name, "busy").Inc()
		log.Warn("Command queue full")
		r.reply(ctx, cmd.ChannelID, messaging.TextSlowDown)
		return
	}
	metrics.CommandsTotal.WithLabelValues(cmd.Name, "accepted").Inc()
}

func (r *Router) reply(ctx context.Context, channelID, text string) {
	if _, err := r.sender.Send(ctx, channelID, chat.Message{Text: text}); err != nil {
		logger.FromContext(ctx).Warn("Failed to reply", "error", err)
	}
}

type limiters struct {
	rate  rate.Limit
	burst int

	mu sync.Mutex
	m  map[string]*rate.Limiter
}

func newLimiters(r float64, burst int) *limiters {
	if burst <= 0 {
		burst = 1
	}
	return &limiters{rate: rate.Limit(r), burst: burst, m: make(map[string]*rate.Limiter)}
}

func (l *limiters) allow(channelID string) bool {
	if l.rate <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.m[channelID]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.m[channelID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
