package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFiles_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "device", cfg.Namespace)
	assert.Equal(t, 256, cfg.Dispatch.QueueSize)
	assert.Equal(t, "abtrack.events", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "https://api.mixpanel.com/track", cfg.Analytics.MixpanelEndpoint)
	assert.Equal(t, "abtrack.db", filepath.Base(cfg.Database.Path))
	assert.False(t, cfg.OTEL.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTEL.Endpoint)
	assert.True(t, cfg.OTEL.Insecure)
	assert.Equal(t, 15*time.Second, cfg.OTEL.ExportInterval)
}

func TestLoadFiles_Environment(t *testing.T) {
	t.Setenv("ABTRACK_PORT", "9090")
	t.Setenv("ABTRACK_DB_PATH", "/tmp/ab.db")
	t.Setenv("ABTRACK_ANALYTICS_MIXPANEL_TOKEN", "mp")
	t.Setenv("ABTRACK_NATS_URL", "nats://localhost:4222")
	t.Setenv("ABTRACK_OTEL_ENABLED", "true")
	t.Setenv("ABTRACK_OTEL_ENDPOINT", "collector:4317")
	t.Setenv("ABTRACK_OTEL_EXPORT_INTERVAL", "1m")
	t.Setenv("ABTRACK_DISPATCH_SEND_TIMEOUT", "2s")

	cfg, err := LoadFiles()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/ab.db", cfg.Database.Path)
	assert.Equal(t, "mp", cfg.Analytics.MixpanelToken)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.True(t, cfg.OTEL.Enabled)
	assert.Equal(t, "collector:4317", cfg.OTEL.Endpoint)
	assert.Equal(t, time.Minute, cfg.OTEL.ExportInterval)
	assert.Equal(t, 2*time.Second, cfg.Dispatch.SendTimeout)
}

func TestLoadFiles_DotEnv(t *testing.T) {
	t.Setenv("ABTRACK_DB_PATH", "/tmp/ab.db")
	t.Setenv("ABTRACK_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ABTRACK_REGISTRY_PATH=experiments.yaml\nABTRACK_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ABTRACK_REGISTRY_PATH") })

	cfg, err := LoadFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "experiments.yaml", cfg.RegistryPath)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over .env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: 8080, Namespace: "device"}, false},
		{"bad port", Config{Port: 70000, Namespace: "device"}, true},
		{"replica without token", Config{Port: 1, Namespace: "device", Database: Database{URL: "libsql://x"}}, true},
		{"empty namespace", Config{Port: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "json")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}
