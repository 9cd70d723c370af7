package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Twitter snapshot crawler
type Config struct {
	// API credentials, one entry per rate-limited identity
	Credentials []CredentialConfig `yaml:"credentials" json:"credentials"`

	// Rate limiting configuration (applied per credential)
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Storage settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Crawl behavior settings
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CredentialConfig holds one Twitter API key set
type CredentialConfig struct {
	Label             string `yaml:"label" json:"label"`
	ConsumerKey       string `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret" json:"consumer_secret"`
	AccessToken       string `yaml:"access_token" json:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret" json:"access_token_secret"`
}

// RateLimitConfig holds per-credential rate limiting configuration.
// Twitter v1.1 endpoints are limited per 15-minute window.
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
}

// StorageConfig holds the snapshot root directory configuration
type StorageConfig struct {
	RootDirectory string `yaml:"root_directory" json:"root_directory"`
}

// CrawlConfig holds crawl-specific configuration
type CrawlConfig struct {
	// Accounts whose follower or followee count exceeds this are
	// added to the ignore list and skipped.
	IgnoreThreshold int `yaml:"ignore_threshold" json:"ignore_threshold"`

	// Maximum number of retweets fetched per tweet.
	RetweetLimit int `yaml:"retweet_limit" json:"retweet_limit"`

	// Timeout for individual API requests.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 15,
			Window:            15 * time.Minute,
		},
		Storage: StorageConfig{
			RootDirectory: "./data",
		},
		Crawl: CrawlConfig{
			IgnoreThreshold: 20000,
			RetweetLimit:    200,
			RequestTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Single credential set via environment, appended to any configured list
	if key := os.Getenv("TWSNAP_CONSUMER_KEY"); key != "" {
		cred := CredentialConfig{
			Label:             "env",
			ConsumerKey:       key,
			ConsumerSecret:    os.Getenv("TWSNAP_CONSUMER_SECRET"),
			AccessToken:       os.Getenv("TWSNAP_ACCESS_TOKEN"),
			AccessTokenSecret: os.Getenv("TWSNAP_ACCESS_TOKEN_SECRET"),
		}
		c.Credentials = append(c.Credentials, cred)
	}

	if root := os.Getenv("TWSNAP_ROOT_DIR"); root != "" {
		c.Storage.RootDirectory = root
	}

	if rpw := os.Getenv("TWSNAP_REQUESTS_PER_WINDOW"); rpw != "" {
		var val int
		fmt.Sscanf(rpw, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerWindow = val
		}
	}

	if threshold := os.Getenv("TWSNAP_IGNORE_THRESHOLD"); threshold != "" {
		var val int
		fmt.Sscanf(threshold, "%d", &val)
		if val > 0 {
			c.Crawl.IgnoreThreshold = val
		}
	}

	if logLevel := os.Getenv("TWSNAP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".twsnap.yaml",
		".twsnap.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "twsnap", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "twsnap", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".twsnap.yaml"),
		filepath.Join(os.Getenv("HOME"), ".twsnap.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	for i, cred := range c.Credentials {
		if cred.ConsumerKey == "" || cred.ConsumerSecret == "" {
			errs = append(errs, fmt.Errorf("credential %d: consumer key and secret are required", i))
		}
		if cred.AccessToken == "" || cred.AccessTokenSecret == "" {
			errs = append(errs, fmt.Errorf("credential %d: access token and secret are required", i))
		}
	}

	if c.RateLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	if c.Storage.RootDirectory == "" {
		errs = append(errs, errors.New("root directory is required"))
	}

	if c.Crawl.IgnoreThreshold <= 0 {
		errs = append(errs, errors.New("ignore threshold must be positive"))
	}
	if c.Crawl.RetweetLimit <= 0 {
		errs = append(errs, errors.New("retweet limit must be positive"))
	}
	if c.Crawl.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if root, ok := flags["root"].(string); ok && root != "" {
		c.Storage.RootDirectory = root
	}
	if rpw, ok := flags["requests-per-window"].(int); ok && rpw > 0 {
		c.RateLimit.RequestsPerWindow = rpw
	}
	if threshold, ok := flags["ignore-threshold"].(int); ok && threshold > 0 {
		c.Crawl.IgnoreThreshold = threshold
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twsnap.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
