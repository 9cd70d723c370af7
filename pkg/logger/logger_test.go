package logger

import (
	"path/filepath"
	"testing"

	"twsnap/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "twsnap.log")

	logger, err := New(&config.LoggingConfig{Level: "info", File: logFile})
	if err != nil {
		t.Fatalf("New() with file output failed: %v", err)
	}
	logger.Info("test message")
}

func TestWithFieldsChaining(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	child := logger.WithField("run_id", "abc").WithFields(map[string]interface{}{
		"kind":    "followers",
		"pending": 3,
	})
	if child == nil {
		t.Fatal("Expected chained logger")
	}

	// The parent is unaffected by child fields, both must log cleanly
	logger.Info("parent message")
	child.Info("child message")
}

func TestGetLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetLogger() == nil {
		t.Error("Expected GetLogger to build a default logger")
	}
}
