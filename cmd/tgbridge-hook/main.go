// Package main provides the hook binary Claude Code invokes for approvals.
//
// The process reads the hook event from stdin, mirrors it to Telegram, and
// blocks until a human responds or the wait times out. The decision JSON goes
// to stdout; the exit code tells Claude Code how to proceed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/tgbridge/internal/config"
	"github.com/smykla-skalski/tgbridge/pkg/hook"
)

var (
	configPath string
	debugMode  bool
	traceMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "tgbridge-hook",
	Short: "Claude Code permission hook bridging approvals to Telegram",
	Long: `tgbridge-hook reads a Claude Code hook event from stdin, posts it to a
Telegram chat with inline approve/deny (or answer) buttons, and blocks until
a human responds or the wait times out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path (defaults to XDG location)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&traceMode, "trace", false, "Enable trace logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(hook.ExitError)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader()
	if configPath != "" {
		loader = config.NewLoaderWithPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	cfg.Log.Debug = cfg.Log.Debug || debugMode
	cfg.Log.Trace = cfg.Log.Trace || traceMode

	code, err := runHook(cmd.Context(), cfg, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if code != hook.ExitApproved {
		os.Exit(code)
	}

	return nil
}
