package main

import (
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/tgbridge/internal/request"
	"github.com/smykla-skalski/tgbridge/internal/sweep"
	"github.com/smykla-skalski/tgbridge/internal/telegram"
	"github.com/smykla-skalski/tgbridge/pkg/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reclaim orphaned request records once and exit",
	Long: `Scans the state directory for records older than the configured maximum
age, marks the chat messages of unresolved ones as timed out, and deletes
the files. The gateway runs the same pass periodically; this command is for
running it out of band, for example from cron.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, _ []string) error {
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

	sweeper := sweep.NewSweeper(stores, telegram.NewClient(bot), log, cfg.Sweep.MaxAge.Std())

	reclaimed := sweeper.Run(cmd.Context())
	log.Info("sweep finished", "reclaimed", reclaimed)

	return nil
}
