package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/delivery"
	"github.com/pavelc4/lukey-bot/internal/drive"
	"github.com/pavelc4/lukey-bot/internal/media"
	"github.com/pavelc4/lukey-bot/internal/messaging"
	"github.com/pavelc4/lukey-bot/internal/metrics"
	"github.com/pavelc4/lukey-bot/internal/report"
	"github.com/pavelc4/lukey-bot/internal/stats"
	"github.com/pavelc4/lukey-bot/internal/tempfiles"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

type Lister interface {
	List(ctx context.Context) ([]media.Entry, error)
}

type Selector interface {
	Select(ctx context.Context, entries []media.Entry, ceiling int64) (media.Entry, bool)
}

type Fetcher interface {
	Fetch(ctx context.Context, e media.Entry, dst io.Writer, limit int64) (int64, error)
}

type Resolver interface {
	Budget() delivery.Budget
	Resolve(ctx context.Context, path string, size int64) delivery.Result
}

type Options struct {
	// Debug posts the folder size before each post.
	Debug bool
	// FallbackPreview posts a rejected GIF as a preview embed instead of
	// the "too large" text.
	FallbackPreview bool
}

type Deps struct {
	Lister     Lister
	Selector   Selector
	Fetcher    Fetcher
	Resolver   Resolver
	Sender     chat.Sender
	Registry   *tempfiles.Registry
	PreviewURL func(id string) string
	Picker     *messaging.Picker
	Reporter   *report.Reporter
	Counters   *stats.Counters
}

// Pipeline lists, selects, fetches and posts one media item per Run.
type Pipeline struct {
	Deps
	opts Options
}

func New(deps Deps, opts Options) *Pipeline {
	if deps.Picker == nil {
		deps.Picker = messaging.DefaultPicker()
	}
	if deps.Counters == nil {
		deps.Counters = stats.NewCounters()
	}
	return &Pipeline{Deps: deps, opts: opts}
}

type Request struct {
	ChannelID string
	Pool      messaging.Pool
}

// Run performs one post. It never panics and every temporary file it
// created is gone when it returns.
func (p *Pipeline) Run(ctx context.Context, req Request) (out Outcome) {
	id := uuid.NewString()
	log := logger.FromContext(ctx).With("invocation_id", id, "pool", req.Pool.Name, "channel", req.ChannelID)
	ctx = logger.WithContext(ctx, log)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.Reporter.Panic(ctx, r, debug.Stack(), "invocation_id", id)
			p.notify(ctx, req.ChannelID, messaging.TextGenericError)
			out = Outcome{Kind: Failed, Err: fmt.Errorf("panic: %v", r)}
		}
		out.InvocationID = id
		p.record(req, out, start)
		log.Info("Post finished", "outcome", out.Label(), "duration", time.Since(start).Round(time.Millisecond))
	}()

	return p.run(ctx, req)
}

func (p *Pipeline) run(ctx context.Context, req Request) Outcome {
	log := logger.FromContext(ctx)

	entries, err := p.Lister.List(ctx)
	if err != nil {
		log.Warn("Folder listing failed, treating as empty", "error", err)
		entries = nil
	}

	if p.opts.Debug {
		p.notify(ctx, req.ChannelID, messaging.DebugCount(len(entries)))
	}
	if len(entries) == 0 {
		p.notify(ctx, req.ChannelID, req.Pool.EmptyText)
		return Outcome{Kind: NoMedia}
	}

	budget := p.Resolver.Budget()
	entry, ok := p.Selector.Select(ctx, entries, budget.Soft)
	if !ok {
		p.notify(ctx, req.ChannelID, messaging.TextNoSuitable)
		return Outcome{Kind: NoSuitableMedia}
	}
	log = log.With("file_id", entry.ID, "mime", entry.MimeType)
	ctx = logger.WithContext(ctx, log)

	quote := p.Picker.Quote(req.Pool)
	if !entry.Animated() {
		return p.sendPreview(ctx, req, entry, quote, delivery.ReasonNone)
	}

	file, err := p.Registry.Create(tempfiles.PatternFetch)
	if err != nil {
		return p.fail(ctx, req, entry, fmt.Errorf("create download file: %w", err))
	}
	defer file.Release()

	// an unknown size was accepted at selection, so the download itself
	// enforces the soft cap
	n, err := p.Fetcher.Fetch(ctx, entry, file, budget.Soft)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: close: %v", drive.ErrDownload, closeErr)
	}
	if errors.Is(err, drive.ErrTooLarge) {
		log.Info("Download stopped at soft cap", "bytes", n)
		err = nil
	}
	if err != nil {
		if !errors.Is(err, drive.ErrDownload) {
			return p.fail(ctx, req, entry, err)
		}
		log.Warn("Download failed", "error", err)
		p.notify(ctx, req.ChannelID, messaging.TextDownloadFailed)
		return Outcome{Kind: DownloadFailed, Entry: entry, Err: err}
	}
	metrics.DownloadBytes.Observe(float64(n))

	res := p.Resolver.Resolve(ctx, file.Path(), n)
	defer res.Release()
	observeTranscode(res)

	if res.Action == delivery.Rejected {
		if p.opts.FallbackPreview {
			log.Info("GIF rejected, posting preview instead", "reason", res.Reason, "size", n)
			return p.sendPreview(ctx, req, entry, quote, res.Reason)
		}
		p.notify(ctx, req.ChannelID, messaging.TooLarge(res.Reason, n))
		return Outcome{Kind: Rejected, Reason: res.Reason, Entry: entry, Err: res.Err}
	}

	msgID, err := p.Sender.Send(ctx, req.ChannelID, chat.Message{
		Text: messaging.Caption(req.Pool, quote),
		File: &chat.Attachment{
			Path:     res.Path,
			Name:     entry.FileName(),
			Size:     res.Size,
			MimeType: string(media.MimeGIF),
			SourceID: entry.ID,
		},
	})
	if err != nil {
		return p.fail(ctx, req, entry, fmt.Errorf("send attachment: %w", err))
	}

	via := ViaDirect
	if res.Transcoded {
		via = ViaTranscoded
	}
	return Outcome{Kind: Delivered, Via: via, Entry: entry, Size: res.Size, MessageID: msgID}
}

func (p *Pipeline) sendPreview(ctx context.Context, req Request, entry media.Entry, quote string, reason delivery.Reason) Outcome {
	msgID, err := p.Sender.Send(ctx, req.ChannelID, chat.Message{
		Embed: &chat.Embed{
			Title:       quote,
			Description: req.Pool.Description,
			ImageURL:    p.PreviewURL(entry.ID),
			Color:       p.Picker.Color(req.Pool),
		},
	})
	if err != nil {
		return p.fail(ctx, req, entry, fmt.Errorf("send preview: %w", err))
	}
	return Outcome{Kind: Delivered, Via: ViaPreview, Reason: reason, Entry: entry, MessageID: msgID}
}

// fail reports err to the operator and shows the user only a generic text.
func (p *Pipeline) fail(ctx context.Context, req Request, entry media.Entry, err error) Outcome {
	p.Reporter.Error(ctx, "Post failed", err, "file_id", entry.ID)
	p.notify(ctx, req.ChannelID, messaging.TextGenericError)
	return Outcome{Kind: Failed, Entry: entry, Err: err}
}

func (p *Pipeline) notify(ctx context.Context, channelID, text string) {
	if text == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("Panic while sending notice", "error", r)
		}
	}()
	if _, err := p.Sender.Send(ctx, channelID, chat.Message{Text: text}); err != nil {
		logger.FromContext(ctx).Warn("Failed to send notice", "error", err)
	}
}

func (p *Pipeline) record(req Request, out Outcome, start time.Time) {
	label := out.Label()
	metrics.PostsTotal.WithLabelValues(req.Pool.Name, label).Inc()
	metrics.PostDuration.WithLabelValues(req.Pool.Name).Observe(time.Since(start).Seconds())
	p.Counters.RecordPost(req.Pool.Name, label, out.Size, out.Via == ViaTranscoded)
}

func observeTranscode(res delivery.Result) {
	switch {
	case res.Reason == delivery.ReasonToolUnavailable:
		metrics.TranscodesTotal.WithLabelValues("unavailable").Inc()
	case res.Attempts == 0:
		return
	case res.Transcoded:
		metrics.TranscodesTotal.WithLabelValues("success").Inc()
	default:
		metrics.TranscodesTotal.WithLabelValues("insufficient").Inc()
	}
	if res.Attempts > 0 {
		metrics.TranscodeAttempts.Observe(float64(res.Attempts))
	}
}
