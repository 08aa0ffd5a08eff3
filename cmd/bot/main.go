package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pavelc4/lukey-bot/config"
	"github.com/pavelc4/lukey-bot/internal/app"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "lukey-bot",
		Short:         "Posts random Luke media from a Google Drive folder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Path to the TOML config file.")

	run := &cobra.Command{
		Use:   "run",
		Short: "Connect to the chat platform and serve commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), configPath)
		},
	}
	root.RunE = run.RunE
	root.AddCommand(run, newCheckDriveCmd(&configPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel(), cfg.Log.Format)
	return cfg, nil
}

func runBot(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize app", "error", err)
		return err
	}

	logger.Info("Starting bot...")
	if err := a.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", "error", err)
		return err
	}
	return nil
}
