package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twsnap",
	Short: "An incremental Twitter social-graph snapshot crawler",
	Long: `twsnap crawls a set of Twitter accounts and records timestamped
snapshots of their social graph.

Each run produces a snapshot directory containing:
  - Tweet details and retweets for the configured tweets
  - Follower and followee deltas against the previous snapshot
  - New timeline tweets since the last recorded tweet

Features:
  - Secure credential storage using the system keychain
  - Multiple API key sets crawling in parallel
  - Per-credential rate limiting for the 15-minute API windows
  - Idempotent runs: restarting skips everything already on disk
  - High-follower accounts are ignored automatically`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.twsnap.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`twsnap {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
