package transcode

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pavelc4/lukey-bot/internal/tempfiles"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

var (
	ErrToolUnavailable         = errors.New("re-encode tool unavailable")
	ErrCompressionInsufficient = errors.New("compression insufficient")
)

type Options struct {
	FFmpegPath    string
	Timeout       time.Duration
	InitialFPS    int
	MaxConcurrent int
}

// Transcoder shrinks GIFs with a two pass palette re-encode.
type Transcoder struct {
	reg      *tempfiles.Registry
	path     string
	timeout  time.Duration
	fps      int
	runner   Runner
	lookPath func(string) (string, error)
	sem      *semaphore.Weighted
}

type Option func(*Transcoder)

func WithRunner(r Runner) Option {
	return func(t *Transcoder) {
		t.runner = r
	}
}

func WithLookPath(fn func(string) (string, error)) Option {
	return func(t *Transcoder) {
		t.lookPath = fn
	}
}

func New(reg *tempfiles.Registry, opts Options, extra ...Option) *Transcoder {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}

	t := &Transcoder{
		reg:      reg,
		path:     opts.FFmpegPath,
		timeout:  opts.Timeout,
		fps:      opts.InitialFPS,
		runner:   execRunner{},
		lookPath: exec.LookPath,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
	for _, opt := range extra {
		opt(t)
	}
	return t
}

// Available reports whether the ffmpeg binary can be resolved.
func (t *Transcoder) Available() bool {
	_, err := t.lookPath(t.path)
	return err == nil
}

// Result holds the winning output, if any, and every attempt made.
type Result struct {
	File     *tempfiles.File
	Size     int64
	Attempts []Attempt
}

// Shrink re-encodes input until the output is at most target bytes. On
// success the caller owns Result.File and must Release it. Palettes and
// losing outputs are removed before Shrink returns.
func (t *Transcoder) Shrink(ctx context.Context, input string, target int64) (Result, error) {
	var res Result
	if !t.Available() {
		return res, ErrToolUnavailable
	}

	if err := t.sem.Acquire(ctx, 1); err != nil {
		return res, err
	}
	defer t.sem.Release(1)

	log := logger.FromContext(ctx)
	for i, a := range Plan(t.fps) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := time.Now()
		out, err := t.attempt(ctx, input, &a)
		res.Attempts = append(res.Attempts, a)

		if err != nil {
			log.Warn("Re-encode attempt failed", "attempt", i+1, "scale", a.Scale, "fps", a.FPS, "error", err)
			continue
		}
		log.Debug("Re-encode attempt done", "attempt", i+1, "scale", a.Scale, "fps", a.FPS,
			"size", a.OutputSize, "target", target, "duration", time.Since(start).Round(time.Millisecond))

		if a.OutputSize <= target {
			res.File = out
			res.Size = a.OutputSize
			return res, nil
		}
		out.Release()
	}

	return res, fmt.Errorf("%w: %d attempts", ErrCompressionInsufficient, len(res.Attempts))
}

// attempt runs both passes. The returned file is non-nil only when err is nil.
func (t *Transcoder) attempt(ctx context.Context, input string, a *Attempt) (*tempfiles.File, error) {
	palette, err := t.reg.Reserve(tempfiles.PatternPalette)
	if err != nil {
		a.Err = err
		return nil, err
	}
	defer palette.Release()

	out, err := t.reg.Reserve(tempfiles.PatternEncode)
	if err != nil {
		a.Err = err
		return nil, err
	}

	filters := fmt.Sprintf("fps=%d,scale=iw*%.4f:-1:flags=lanczos", a.FPS, a.Scale)

	err = t.run(ctx, "-y", "-v", "error",
		"-i", input,
		"-vf", filters+",palettegen=stats_mode=diff",
		palette.Path(),
	)
	if err == nil {
		err = t.run(ctx, "-y", "-v", "error",
			"-i", input,
			"-i", palette.Path(),
			"-lavfi", filters+" [x]; [x][1:v] paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
			"-f", "gif",
			out.Path(),
		)
	}
	if err == nil {
		a.OutputSize, err = out.Size()
		if err == nil && a.OutputSize == 0 {
			err = errors.New("empty output")
		}
	}
	if err != nil {
		a.Err = err
		out.Release()
		return nil, err
	}
	return out, nil
}

func (t *Transcoder) run(ctx context.Context, args ...string) error {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.runner.Run(callCtx, t.path, args...)
}
