// Package main provides the tgbridge CLI: the long-running Telegram gateway
// and maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	debugMode  bool
	traceMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "tgbridge",
	Short: "Telegram bridge for Claude Code approvals",
	Long: `tgbridge relays Claude Code permission requests and questions to a Telegram
chat and routes the answers back through a shared state directory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (defaults to XDG location)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceMode, "trace", false, "Enable trace logging")

	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tgbridge version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(Version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
