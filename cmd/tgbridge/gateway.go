package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/tgbridge/internal/config"
	"github.com/smykla-skalski/tgbridge/internal/injector"
	"github.com/smykla-skalski/tgbridge/internal/notices"
	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/internal/router"
	"github.com/smykla-skalski/tgbridge/internal/sweep"
	"github.com/smykla-skalski/tgbridge/internal/telegram"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the long-lived Telegram gateway",
	Long: `The gateway receives button callbacks and plain messages from Telegram,
applies them to pending requests in the state directory, and periodically
reclaims orphaned records.`,
	RunE: runGateway,
}

func runGateway(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewFileLogger(cfg.Log.File, logger.LevelFromFlags(cfg.Log.Debug, cfg.Log.Trace))
	if err != nil {
		return err
	}

	stores, err := request.OpenStores(cfg.State.Dir)
	if err != nil {
		return err
	}

	bot, err := telegram.NewBot(cfg.Telegram.Token)
	if err != nil {
		return err
	}

	client := telegram.NewClient(bot)

	rtr := router.NewRouter(stores, client, log,
		router.WithAllowedChat(cfg.Telegram.ChatID),
	)

	sweeper := sweep.NewSweeper(stores, client, log, cfg.Sweep.MaxAge.Std())

	opts := []telegram.GatewayOption{
		telegram.WithAllowedChat(cfg.Telegram.ChatID),
	}

	if cfg.Tmux.Target != "" {
		opts = append(opts, telegram.WithInjector(injector.NewTmux(cfg.Tmux.Target)))
	}

	noticeStore, err := notices.NewStore(cfg.State.Dir)
	if err != nil {
		return err
	}

	opts = append(opts, telegram.WithNotices(noticeStore))

	gateway := telegram.NewGateway(bot, rtr, sweeper, cfg.Sweep.Interval.Std(), log, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return gateway.Run(ctx)
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = config.NewLoaderWithPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	cfg.Log.Debug = cfg.Log.Debug || debugMode
	cfg.Log.Trace = cfg.Log.Trace || traceMode

	return cfg, nil
}
