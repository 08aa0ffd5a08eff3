package selector

import (
	"context"
	"math/rand/v2"

	"github.com/pavelc4/lukey-bot/internal/media"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

// MaxAttempts bounds the random draws per selection. Draws are independent
// and with replacement, so a qualifying entry can be missed.
const MaxAttempts = 10

type Prober interface {
	Probe(ctx context.Context, e media.Entry) media.SizeEstimate
}

type Selector struct {
	prober   Prober
	intn     func(n int) int
	attempts int
}

type Option func(*Selector)

// WithRand replaces the random source, mainly for tests.
func WithRand(intn func(n int) int) Option {
	return func(s *Selector) {
		s.intn = intn
	}
}

func New(prober Prober, opts ...Option) *Selector {
	s := &Selector{
		prober:   prober,
		intn:     rand.IntN,
		attempts: MaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select draws random entries until one qualifies. Static images always
// qualify. Animated images qualify when their size is unknown or within
// ceiling. The second result is false when no draw qualified.
func (s *Selector) Select(ctx context.Context, entries []media.Entry, ceiling int64) (media.Entry, bool) {
	if len(entries) == 0 {
		return media.Entry{}, false
	}

	log := logger.FromContext(ctx)
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if ctx.Err() != nil {
			return media.Entry{}, false
		}

		e := entries[s.intn(len(entries))]
		if !e.Animated() {
			return e, true
		}

		est := s.prober.Probe(ctx, e)
		if !est.Exceeds(ceiling) {
			return e, true
		}
		log.Debug("Candidate over ceiling", "attempt", attempt, "file_id", e.ID, "size", est.Bytes, "ceiling", ceiling)
	}

	log.Info("No suitable candidate", "attempts", s.attempts, "entries", len(entries))
	return media.Entry{}, false
}
