package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"twsnap/pkg/auth"
	"twsnap/pkg/config"
	"twsnap/pkg/crawler"
	"twsnap/pkg/logger"
	"twsnap/pkg/twitter"
)

var (
	// Run command flags
	runUsers        string
	runTweets       string
	rootDir         string
	runTimestamp    string
	accountLabel    string
	requestsPerWin  int
	ignoreThreshold int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl the configured accounts and record a snapshot",
	Long: `Crawl a set of Twitter users and tweets and record a timestamped
snapshot under the storage root.

Credentials must be configured either through:
  - Stored credentials (use 'twsnap auth login' to store)
  - Environment variables (TWSNAP_CONSUMER_KEY, TWSNAP_CONSUMER_SECRET,
    TWSNAP_ACCESS_TOKEN, TWSNAP_ACCESS_TOKEN_SECRET)
  - Configuration file

Each additional stored key set adds a parallel worker with its own
rate-limit budget.`,
	Example: `  # Crawl two users
  twsnap run --users 12345,67890

  # Crawl users and seed tweets
  twsnap run --users 12345 --tweets 998877,776655

  # Write snapshots under a custom root
  twsnap run --users 12345 --root /srv/twsnap/data

  # Use a specific stored key set only
  twsnap run --users 12345 --account research`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCrawl(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Local flags for run command
	runCmd.Flags().StringVar(&runUsers, "users", "", "comma-separated user ids to crawl")
	runCmd.Flags().StringVar(&runTweets, "tweets", "", "comma-separated tweet ids to crawl")
	runCmd.Flags().StringVarP(&rootDir, "root", "o", "", "snapshot root directory (default: ./data)")
	runCmd.Flags().StringVar(&runTimestamp, "timestamp", "", "snapshot timestamp (default: current UTC time)")
	runCmd.Flags().StringVarP(&accountLabel, "account", "a", "", "use a specific stored key set")
	runCmd.Flags().IntVar(&requestsPerWin, "requests-per-window", 15, "requests per 15-minute window per credential")
	runCmd.Flags().IntVar(&ignoreThreshold, "ignore-threshold", 20000, "follower/followee count above which accounts are ignored")
}

func runCrawl(cmd *cobra.Command, args []string) {
	userIDs := splitIDs(runUsers)
	tweetIDs := splitIDs(runTweets)

	if len(userIDs) == 0 && len(tweetIDs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to crawl, provide --users and/or --tweets")
		os.Exit(1)
	}

	// Build flags map from command line
	flags := make(map[string]interface{})
	if rootDir != "" {
		flags["root"] = rootDir
	}
	if requestsPerWin != 15 {
		flags["requests-per-window"] = requestsPerWin
	}
	if ignoreThreshold != 20000 {
		flags["ignore-threshold"] = ignoreThreshold
	}
	// Pass log level to config
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to load configuration:", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("twsnap starting")

	// Collect credentials from the config file and the credential stores
	creds := collectCredentials(cfg)
	if len(creds) == 0 {
		logger.Error("No credentials found")
		fmt.Fprintln(os.Stderr, "Error: no Twitter credentials found")
		fmt.Println("\nTo store credentials securely, run:")
		fmt.Println("  twsnap auth login")
		fmt.Println("\nYou can also set environment variables:")
		fmt.Println("  export TWSNAP_CONSUMER_KEY=...")
		fmt.Println("  export TWSNAP_CONSUMER_SECRET=...")
		fmt.Println("  export TWSNAP_ACCESS_TOKEN=...")
		fmt.Println("  export TWSNAP_ACCESS_TOKEN_SECRET=...")
		os.Exit(1)
	}

	// Build the API client pool, one client per key set
	clients := twitter.NewClients(creds, cfg.RateLimit, cfg.Crawl.RequestTimeout, logger.GetLogger())
	if len(clients) == 0 {
		logger.Error("No usable API clients")
		fmt.Fprintln(os.Stderr, "Error: no usable API clients, check stored credentials")
		os.Exit(1)
	}

	timestamp := runTimestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format("20060102150405")
	}

	apiClients := make([]crawler.APIClient, len(clients))
	for i, c := range clients {
		apiClients[i] = c
	}

	c, err := crawler.New(cfg, apiClients, timestamp)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize crawler")
		fmt.Fprintln(os.Stderr, "Error: failed to initialize crawler:", err)
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"users":     len(userIDs),
		"tweets":    len(tweetIDs),
		"timestamp": timestamp,
	}).Info("Starting snapshot run")

	if err := c.Run(userIDs, tweetIDs); err != nil {
		logger.WithError(err).Error("Snapshot run failed")
		fmt.Fprintln(os.Stderr, "Error: snapshot run failed:", err)
		os.Exit(1)
	}

	logger.WithField("timestamp", timestamp).Info("Snapshot run completed")
	fmt.Println("Snapshot recorded:", timestamp)
}

// collectCredentials merges config file credentials with stored key sets.
// The --account flag restricts the pool to a single stored key set.
func collectCredentials(cfg *config.Config) []config.CredentialConfig {
	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Warn("Credential manager unavailable")
		return cfg.Credentials
	}

	if accountLabel != "" {
		account, err := manager.Retrieve(accountLabel)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: stored key set not found:", accountLabel)
			fmt.Println("Use 'twsnap auth list' to see stored key sets")
			os.Exit(1)
		}
		logger.WithField("account", account.Label).Info("Using stored key set")
		return []config.CredentialConfig{account.CredentialConfig()}
	}

	creds := cfg.Credentials
	seen := make(map[string]struct{}, len(creds))
	for _, cred := range creds {
		seen[cred.ConsumerKey+":"+cred.AccessToken] = struct{}{}
	}

	accounts, err := manager.List()
	if err != nil {
		return creds
	}
	for _, account := range accounts {
		cred := account.CredentialConfig()
		key := cred.ConsumerKey + ":" + cred.AccessToken
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		creds = append(creds, cred)
	}
	return creds
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
