package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal valid config gets defaults",
			yaml: `
backend:
  base_url: http://backend.local/api
`,
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "biobridge", cfg.Service.Name)
				assert.Equal(t, "info", cfg.Service.LogLevel)
				assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
				assert.Equal(t, 0, cfg.Backend.DurableRetry.MaxAttempts)
				assert.Equal(t, time.Second, cfg.Backend.DurableRetry.Delay)
				assert.Equal(t, 1.0, cfg.Backend.DurableRetry.Multiplier)
				assert.Equal(t, "zk_105", cfg.Realtime.Room)
				assert.Equal(t, "zk_joinRoom", cfg.Realtime.JoinEvent)
				assert.Equal(t, "zk_message", cfg.Realtime.MessageEvent)
				assert.Equal(t, "start_fetch", cfg.Realtime.WakeMessage)
				assert.Equal(t, "simulator", cfg.Device.Driver)
				assert.Equal(t, "15m", cfg.Schedule.Fetch.Every)
				assert.False(t, cfg.API.Enabled)
				assert.Equal(t, "127.0.0.1:8090", cfg.API.Listen)
			},
		},
		{
			name: "env interpolation",
			yaml: `
backend:
  base_url: ${TEST_BACKEND_URL}
  token: ${TEST_BACKEND_TOKEN}
`,
			env: map[string]string{
				"TEST_BACKEND_URL":   "https://backend.example.com",
				"TEST_BACKEND_TOKEN": "sekret",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://backend.example.com", cfg.Backend.BaseURL)
				assert.Equal(t, "sekret", cfg.Backend.Token)
			},
		},
		{
			name: "base url env override wins",
			yaml: `
backend:
  base_url: http://from-file
`,
			env: map[string]string{BaseURLEnv: "http://from-env:8000"},
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://from-env:8000", cfg.Backend.BaseURL)
			},
		},
		{
			name:    "missing base url",
			yaml:    "service:\n  name: x\n",
			wantErr: "backend.base_url is required",
		},
		{
			name: "unresolved env var",
			yaml: `
backend:
  base_url: ${DOES_NOT_EXIST_BIOBRIDGE}
`,
			wantErr: "backend.base_url",
		},
		{
			name: "bad log level",
			yaml: `
service:
  log_level: chatty
backend:
  base_url: http://b
`,
			wantErr: "service.log_level",
		},
		{
			name: "realtime must be websocket",
			yaml: `
backend:
  base_url: http://b
realtime:
  url: http://socket
`,
			wantErr: "realtime.url",
		},
		{
			name: "api enabled without key",
			yaml: `
backend:
  base_url: http://b
api:
  enabled: true
`,
			wantErr: "api.auth.api_key is required",
		},
		{
			name: "bad fetch interval",
			yaml: `
backend:
  base_url: http://b
schedule:
  fetch:
    every: sometimes
`,
			wantErr: "schedule.fetch.every",
		},
		{
			name: "unknown device driver",
			yaml: `
backend:
  base_url: http://b
device:
  driver: zkemkeeper
`,
			wantErr: "device.driver",
		},
		{
			name: "multiplier below one",
			yaml: `
backend:
  base_url: http://b
  durable_retry:
    multiplier: 0.5
`,
			wantErr: "multiplier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(BaseURLEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), tt.yaml)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, path, cfg.SourcePath)
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	dir := t.TempDir()
	writeConfig(t, dir, "backend:\n  base_url: http://b\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://b", cfg.Backend.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"5m", 5 * time.Minute, false},
		{"hourly", time.Hour, false},
		{"daily", 24 * time.Hour, false},
		{"weekly", 7 * 24 * time.Hour, false},
		{"3d", 72 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"0s", 0, true},
		{"-5m", 0, true},
		{"xd", 0, true},
		{"foo", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterval(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
