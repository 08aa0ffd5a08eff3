package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pavelc4/lukey-bot/config"
	"github.com/pavelc4/lukey-bot/internal/bot"
	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/delivery"
	"github.com/pavelc4/lukey-bot/internal/discord"
	"github.com/pavelc4/lukey-bot/internal/drive"
	"github.com/pavelc4/lukey-bot/internal/handler"
	"github.com/pavelc4/lukey-bot/internal/messaging"
	"github.com/pavelc4/lukey-bot/internal/metrics"
	"github.com/pavelc4/lukey-bot/internal/pipeline"
	"github.com/pavelc4/lukey-bot/internal/report"
	"github.com/pavelc4/lukey-bot/internal/scheduler"
	"github.com/pavelc4/lukey-bot/internal/selector"
	"github.com/pavelc4/lukey-bot/internal/stats"
	"github.com/pavelc4/lukey-bot/internal/telegram"
	"github.com/pavelc4/lukey-bot/internal/tempfiles"
	"github.com/pavelc4/lukey-bot/internal/transcode"
	"github.com/pavelc4/lukey-bot/pkg/client"
	"github.com/pavelc4/lukey-bot/pkg/logger"
	"github.com/pavelc4/lukey-bot/pkg/worker"
)

const (
	TaskAutoPost      = "autopost"
	TaskSpicyAutoPost = "spicy-autopost"

	shutdownTimeout = 30 * time.Second
)

type App struct {
	Cfg *config.Config

	registry  *tempfiles.Registry
	platform  chat.Platform
	bot       *bot.Bot
	pool      *worker.Pool
	scheduler *scheduler.Scheduler
	metrics   *metrics.Server
}

// New validates cfg and wires every component. Nothing connects until Start.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	platform, prefix, err := newPlatform(cfg)
	if err != nil {
		return nil, err
	}

	registry := tempfiles.NewRegistry(cfg.TempDir)
	if n := registry.SweepStale(ctx); n > 0 {
		logger.Info("Removed stale temp files", "count", n)
	}

	svc, err := drive.NewService(ctx, cfg.Drive)
	if err != nil {
		return nil, err
	}
	urls := drive.URLsFromConfig(cfg.Drive)
	httpClient := client.GetDownloadClient()

	tc := transcode.New(registry, transcode.Options{
		FFmpegPath:    cfg.Delivery.FFmpegPath,
		Timeout:       cfg.Delivery.TranscodeTimeout.Duration,
		InitialFPS:    cfg.Delivery.TranscodeFPS,
		MaxConcurrent: cfg.Delivery.MaxTranscodes,
	})
	if !tc.Available() {
		logger.Warn("ffmpeg not found, oversized GIFs will be rejected", "path", cfg.Delivery.FFmpegPath)
	}

	deliverer, err := delivery.NewDeliverer(budget(cfg.Delivery, platform.AttachmentLimit()), tc)
	if err != nil {
		return nil, err
	}

	reporter := report.New(platform, cfg.OperatorChannelID)
	counters := stats.NewCounters()

	pipe := pipeline.New(pipeline.Deps{
		Lister:     drive.NewLister(svc, cfg.Drive.FolderID),
		Selector:   selector.New(drive.NewProber(httpClient, urls)),
		Fetcher:    drive.NewFetcher(httpClient, urls),
		Resolver:   deliverer,
		Sender:     platform,
		Registry:   registry,
		PreviewURL: urls.Preview,
		Reporter:   reporter,
		Counters:   counters,
	}, pipeline.Options{
		Debug:           cfg.Log.Debug,
		FallbackPreview: cfg.Delivery.GIFFallbackPreview,
	})

	pool := worker.NewPool(cfg.MaxConcurrentCommands)
	router := bot.NewRouter(platform, pool, reporter, bot.RouterOptions{
		Rate:  cfg.CommandRate,
		Burst: cfg.CommandBurst,
	})

	posts := handler.NewPostHandler(pipe)
	router.Handle("luke", posts.HandleLuke)
	router.Handle("spicyluke", posts.HandleSpicyLuke)
	router.Handle("lukeyhelp", handler.NewHelpHandler(platform, prefix).HandleHelp)
	router.Handle("lukeystats", handler.NewAdminHandler(platform, counters, cfg.OwnerID, registry.Dir()).HandleStats)

	sched := scheduler.New(logger.Log)
	tasks := []scheduler.Task{
		{Name: TaskAutoPost, Interval: cfg.AutoPost.Interval.Duration, Run: handler.AutoPost(pipe, platform, cfg.AutoPost.ChannelID, messaging.Normal)},
		{Name: TaskSpicyAutoPost, Interval: cfg.AutoPost.SpicyInterval.Duration, Run: handler.AutoPost(pipe, platform, cfg.AutoPost.SpicyChannelID, messaging.Spicy)},
	}
	for _, t := range tasks {
		if err := sched.Register(t); err != nil {
			return nil, err
		}
	}

	a := &App{
		Cfg:       cfg,
		registry:  registry,
		platform:  platform,
		bot:       bot.New(platform, router, cfg.Presence),
		pool:      pool,
		scheduler: sched,
	}
	if cfg.MetricsAddr != "" {
		a.metrics = metrics.NewServer(cfg.MetricsAddr)
	}

	a.bot.OnReady(func(ctx context.Context) {
		sched.Start(ctx)
		if a.metrics != nil {
			a.metrics.SetReady(true)
		}
	})

	logger.Info("Application initialized successfully",
		"platform", platform.Name(),
		"hard_cap", deliverer.Budget().Hard,
		"soft_cap", deliverer.Budget().Soft,
		"autopost_interval", cfg.AutoPost.Interval.Duration,
		"spicy_autopost_interval", cfg.AutoPost.SpicyInterval.Duration,
	)
	return a, nil
}

// Start runs the bot until ctx is cancelled, then stops background work and
// removes every temporary file still registered.
func (a *App) Start(ctx context.Context) error {
	defer a.shutdown()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.bot.Run(ctx)
	})
	if a.metrics != nil {
		g.Go(func() error {
			return a.metrics.Run(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.scheduler.Stop(ctx)
	a.pool.Stop()
	if n := a.registry.CleanupAll(); n > 0 {
		logger.Info("Removed temp files on shutdown", "count", n)
	}
	logger.Info("Shutdown complete")
}

func newPlatform(cfg *config.Config) (chat.Platform, string, error) {
	switch cfg.Platform {
	case config.PlatformTelegram:
		p, err := telegram.New(cfg.Telegram)
		if err != nil {
			return nil, "", err
		}
		p.Preload(cfg.AutoPost.ChannelID, cfg.AutoPost.SpicyChannelID, cfg.OperatorChannelID)
		return p, telegram.CommandPrefix, nil
	default:
		p, err := discord.New(cfg.Discord.Token)
		return p, discord.CommandPrefix, err
	}
}

// budget caps the configured hard limit at what the platform accepts.
func budget(cfg config.DeliveryConfig, platformLimit int64) delivery.Budget {
	hard := cfg.HardCapBytes
	if platformLimit > 0 && platformLimit < hard {
		hard = platformLimit
	}
	return delivery.Budget{Hard: hard, Soft: cfg.SoftCapBytes}
}
