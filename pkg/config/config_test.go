package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 15, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "./data", cfg.Storage.RootDirectory)
	assert.Equal(t, 20000, cfg.Crawl.IgnoreThreshold)
	assert.Equal(t, 200, cfg.Crawl.RetweetLimit)
	assert.Equal(t, 30*time.Second, cfg.Crawl.RequestTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Credentials)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	content := `
credentials:
  - label: "first"
    consumer_key: "ck1"
    consumer_secret: "cs1"
    access_token: "at1"
    access_token_secret: "ats1"
  - label: "second"
    consumer_key: "ck2"
    consumer_secret: "cs2"
    access_token: "at2"
    access_token_secret: "ats2"
rate_limit:
  requests_per_window: 30
  window: 10m
storage:
  root_directory: "/tmp/snapshots"
crawl:
  ignore_threshold: 5000
  retweet_limit: 100
  request_timeout: 15s
logging:
  level: "debug"
`
	path := filepath.Join(t.TempDir(), "twsnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	require.Len(t, cfg.Credentials, 2)
	assert.Equal(t, "first", cfg.Credentials[0].Label)
	assert.Equal(t, "ck2", cfg.Credentials[1].ConsumerKey)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "/tmp/snapshots", cfg.Storage.RootDirectory)
	assert.Equal(t, 5000, cfg.Crawl.IgnoreThreshold)
	assert.Equal(t, 100, cfg.Crawl.RetweetLimit)
	assert.Equal(t, 15*time.Second, cfg.Crawl.RequestTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twsnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("credentials: [unclosed"), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWSNAP_CONSUMER_KEY", "env_ck")
	t.Setenv("TWSNAP_CONSUMER_SECRET", "env_cs")
	t.Setenv("TWSNAP_ACCESS_TOKEN", "env_at")
	t.Setenv("TWSNAP_ACCESS_TOKEN_SECRET", "env_ats")
	t.Setenv("TWSNAP_ROOT_DIR", "/srv/data")
	t.Setenv("TWSNAP_REQUESTS_PER_WINDOW", "60")
	t.Setenv("TWSNAP_IGNORE_THRESHOLD", "1000")
	t.Setenv("TWSNAP_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	require.Len(t, cfg.Credentials, 1)
	assert.Equal(t, "env", cfg.Credentials[0].Label)
	assert.Equal(t, "env_ck", cfg.Credentials[0].ConsumerKey)
	assert.Equal(t, "env_ats", cfg.Credentials[0].AccessTokenSecret)
	assert.Equal(t, "/srv/data", cfg.Storage.RootDirectory)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 1000, cfg.Crawl.IgnoreThreshold)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"root":                "/flag/root",
		"requests-per-window": 45,
		"ignore-threshold":    9000,
		"log-level":           "error",
	})

	assert.Equal(t, "/flag/root", cfg.Storage.RootDirectory)
	assert.Equal(t, 45, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 9000, cfg.Crawl.IgnoreThreshold)
	assert.Equal(t, "error", cfg.Logging.Level)

	// Empty and zero values leave the config untouched
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"root":                "",
		"requests-per-window": 0,
	})
	assert.Equal(t, "/flag/root", cfg.Storage.RootDirectory)
	assert.Equal(t, 45, cfg.RateLimit.RequestsPerWindow)
}

func TestValidate(t *testing.T) {
	t.Run("incomplete credential", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Credentials = []CredentialConfig{{Label: "broken", ConsumerKey: "ck"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad rate limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RateLimit.RequestsPerWindow = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing root directory", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Storage.RootDirectory = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "loud"
		assert.Error(t, cfg.Validate())
	})

	t.Run("complete credential", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Credentials = []CredentialConfig{{
			Label:             "ok",
			ConsumerKey:       "ck",
			ConsumerSecret:    "cs",
			AccessToken:       "at",
			AccessTokenSecret: "ats",
		}}
		assert.NoError(t, cfg.Validate())
	})
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "twsnap.yaml")

	cfg := DefaultConfig()
	cfg.Crawl.IgnoreThreshold = 12345
	require.NoError(t, cfg.Save(path))

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, 12345, reloaded.Crawl.IgnoreThreshold)
}

func TestLoadPrecedence(t *testing.T) {
	content := `
storage:
  root_directory: "/from/file"
crawl:
  ignore_threshold: 111
`
	path := filepath.Join(t.TempDir(), "twsnap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("TWSNAP_IGNORE_THRESHOLD", "222")

	cfg, err := Load(path, map[string]interface{}{"root": "/from/flag"})
	require.NoError(t, err)

	// Flags beat env, env beats file, file beats defaults
	assert.Equal(t, "/from/flag", cfg.Storage.RootDirectory)
	assert.Equal(t, 222, cfg.Crawl.IgnoreThreshold)
	assert.Equal(t, 200, cfg.Crawl.RetweetLimit)
}
