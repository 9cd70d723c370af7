package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"twsnap/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage twsnap configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'twsnap.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like API keys will be masked for security.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "twsnap.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintln(os.Stderr, "Error: configuration file already exists:", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# twsnap Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with TWSNAP_
# For example: TWSNAP_CONSUMER_KEY, TWSNAP_ROOT_DIRECTORY

# Twitter API key sets
# Each entry adds a parallel worker with its own rate-limit budget.
# Key sets stored with 'twsnap auth login' are picked up automatically
# and do not need to be listed here.
credentials:
  - label: "primary"
    consumer_key: "YOUR_CONSUMER_KEY"
    consumer_secret: "YOUR_CONSUMER_SECRET"
    access_token: "YOUR_ACCESS_TOKEN"
    access_token_secret: "YOUR_ACCESS_TOKEN_SECRET"

# Rate limiting configuration (applied per key set)
rate_limit:
  # Requests allowed per window
  # Twitter v1.1 cursor endpoints allow 15 per window
  requests_per_window: 15

  # Window duration
  window: 15m

# Storage configuration
storage:
  # Root directory for snapshot runs
  # Each run creates {root}/{timestamp}/twitter/
  root_directory: "./data"

# Crawl behavior
crawl:
  # Accounts whose follower or followee count exceeds this
  # are added to the ignore list and skipped
  ignore_threshold: 20000

  # Maximum retweets fetched per tweet
  retweet_limit: 200

  # Timeout for individual API requests
  request_timeout: 30s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to create configuration file:", err)
		os.Exit(1)
	}

	fmt.Println("Configuration file created:", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your API keys, or run 'twsnap auth login'")
	fmt.Println("2. Run 'twsnap config validate' to check the configuration")
	fmt.Println("3. Start a snapshot run with 'twsnap run --users <user_id>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to load configuration:", err)
		os.Exit(1)
	}

	// Create a sanitized copy for display
	displayCfg := *cfg
	displayCfg.Credentials = make([]config.CredentialConfig, len(cfg.Credentials))
	for i, cred := range cfg.Credentials {
		cred.ConsumerSecret = maskValue(cred.ConsumerSecret)
		cred.AccessToken = maskValue(cred.AccessToken)
		cred.AccessTokenSecret = maskValue(cred.AccessTokenSecret)
		displayCfg.Credentials[i] = cred
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to format configuration:", err)
		os.Exit(1)
	}

	fmt.Println("Current configuration:")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TWSNAP_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			"twsnap.yaml",
			"twsnap.yml",
			".twsnap.yaml",
			".twsnap.yml",
			filepath.Join(os.Getenv("HOME"), ".twsnap.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "twsnap", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			fmt.Fprintln(os.Stderr, "Error: no configuration file found, specify one with --config")
			os.Exit(1)
		}
	}

	fmt.Println("Validating configuration:", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: configuration validation failed:", err)
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if len(cfg.Credentials) == 0 {
		warnings = append(warnings, "no API key sets configured (stored key sets are still picked up at run time)")
	}
	for _, cred := range cfg.Credentials {
		if cred.ConsumerKey == "" || cred.ConsumerKey == "YOUR_CONSUMER_KEY" {
			warnings = append(warnings, fmt.Sprintf("key set %q has no consumer key", cred.Label))
		}
	}

	if cfg.Storage.RootDirectory != "" {
		if err := os.MkdirAll(cfg.Storage.RootDirectory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create storage root: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if cfg.RateLimit.RequestsPerWindow < 1 {
		errors = append(errors, "requests_per_window must be at least 1")
	}
	if cfg.Crawl.IgnoreThreshold < 0 {
		errors = append(errors, "ignore_threshold must not be negative")
	}
	if cfg.Crawl.RetweetLimit < 1 {
		errors = append(errors, "retweet_limit must be at least 1")
	}

	if len(errors) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration has errors:")
		for _, err := range errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		fmt.Println("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	fmt.Println("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Key sets: %d\n", len(cfg.Credentials))
	fmt.Printf("  Storage root: %s\n", cfg.Storage.RootDirectory)
	fmt.Printf("  Rate limit: %d requests per %s\n", cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	fmt.Printf("  Ignore threshold: %d\n", cfg.Crawl.IgnoreThreshold)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

func maskValue(s string) string {
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	if s != "" {
		return "***"
	}
	return s
}
