package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/pavelc4/lukey-bot/internal/tempfiles"
	"github.com/pavelc4/lukey-bot/internal/transcode"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

// Budget holds the platform attachment ceiling (Hard) and the largest size
// worth re-encoding (Soft).
type Budget struct {
	Hard int64
	Soft int64
}

func (b Budget) Validate() error {
	if b.Hard <= 0 || b.Soft <= 0 {
		return fmt.Errorf("delivery budget must be positive (hard=%d soft=%d)", b.Hard, b.Soft)
	}
	if b.Hard > b.Soft {
		return fmt.Errorf("hard cap %d exceeds soft cap %d", b.Hard, b.Soft)
	}
	return nil
}

type Action int

const (
	DirectSend Action = iota
	NeedsTranscode
	Rejected
)

func (a Action) String() string {
	switch a {
	case DirectSend:
		return "direct_send"
	case NeedsTranscode:
		return "needs_transcode"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type Reason string

const (
	ReasonNone                    Reason = ""
	ReasonOverSoftCap             Reason = "over soft cap"
	ReasonToolUnavailable         Reason = "tool unavailable"
	ReasonCompressionInsufficient Reason = "compression insufficient"
)

type Verdict struct {
	Action Action
	Reason Reason
}

// Decide classifies a file of the given size against the budget.
func Decide(size int64, b Budget) Verdict {
	switch {
	case size <= b.Hard:
		return Verdict{Action: DirectSend}
	case size <= b.Soft:
		return Verdict{Action: NeedsTranscode}
	default:
		return Verdict{Action: Rejected, Reason: ReasonOverSoftCap}
	}
}

type Shrinker interface {
	Available() bool
	Shrink(ctx context.Context, input string, target int64) (transcode.Result, error)
}

// Result is a terminal decision. Action is DirectSend or Rejected.
type Result struct {
	Action     Action
	Reason     Reason
	Path       string
	Size       int64
	Transcoded bool
	Attempts   int
	Err        error

	owned *tempfiles.File
}

// Release removes the re-encoded output, if any. Safe on every Result.
func (r Result) Release() {
	if r.owned != nil {
		r.owned.Release()
	}
}

type Deliverer struct {
	budget   Budget
	shrinker Shrinker
}

func NewDeliverer(budget Budget, shrinker Shrinker) (*Deliverer, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	return &Deliverer{budget: budget, shrinker: shrinker}, nil
}

func (d *Deliverer) Budget() Budget {
	return d.budget
}

// Resolve walks a downloaded file at path through the delivery decision,
// re-encoding when it sits between the two caps.
func (d *Deliverer) Resolve(ctx context.Context, path string, size int64) Result {
	log := logger.FromContext(ctx)

	v := Decide(size, d.budget)
	switch v.Action {
	case DirectSend:
		return Result{Action: DirectSend, Path: path, Size: size}
	case Rejected:
		log.Info("Media over soft cap", "size", size, "soft_cap", d.budget.Soft)
		return Result{Action: Rejected, Reason: v.Reason, Size: size}
	}

	if !d.shrinker.Available() {
		log.Warn("Re-encode needed but tool unavailable", "size", size)
		return Result{Action: Rejected, Reason: ReasonToolUnavailable, Size: size, Err: transcode.ErrToolUnavailable}
	}

	res, err := d.shrinker.Shrink(ctx, path, d.budget.Hard)
	if err != nil {
		reason := ReasonCompressionInsufficient
		if errors.Is(err, transcode.ErrToolUnavailable) {
			reason = ReasonToolUnavailable
		}
		log.Info("Re-encode did not fit", "size", size, "attempts", len(res.Attempts), "error", err)
		return Result{Action: Rejected, Reason: reason, Size: size, Attempts: len(res.Attempts), Err: err}
	}

	log.Info("Re-encoded media", "from", size, "to", res.Size, "attempts", len(res.Attempts))
	return Result{
		Action:     DirectSend,
		Path:       res.File.Path(),
		Size:       res.Size,
		Transcoded: true,
		Attempts:   len(res.Attempts),
		owned:      res.File,
	}
}
