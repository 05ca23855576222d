package config

import "time"

// Config represents the complete biobridge configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	State    StateConfig    `yaml:"state"`
	Backend  BackendConfig  `yaml:"backend"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Device   DeviceConfig   `yaml:"device"`
	Schedule ScheduleConfig `yaml:"schedule"`
	API      APIConfig      `yaml:"api,omitempty"`

	// SourcePath is the absolute path the config was loaded from.
	SourcePath string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
	// LogFile enables a rotating JSON log file in addition to stdout.
	LogFile string `yaml:"log_file,omitempty"`
}

// StateConfig defines local state storage settings.
type StateConfig struct {
	Path string `yaml:"path"`
}

// BackendConfig defines how the backend REST service is reached.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DurableRetry   RetryConfig   `yaml:"durable_retry"`
}

// RetryConfig is the retry policy for durable backend writes.
// MaxAttempts of zero retries until the context ends.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	Multiplier  float64       `yaml:"multiplier"`
	MaxDelay    time.Duration `yaml:"max_delay,omitempty"`
}

// RealtimeConfig defines the wake-signal channel. An empty URL disables it.
type RealtimeConfig struct {
	URL           string        `yaml:"url"`
	Room          string        `yaml:"room"`
	JoinEvent     string        `yaml:"join_event"`
	MessageEvent  string        `yaml:"message_event"`
	WakeMessage   string        `yaml:"wake_message"`
	PingInterval  time.Duration `yaml:"ping_interval"`
	ReconnectBase time.Duration `yaml:"reconnect_base"`
	ReconnectMax  time.Duration `yaml:"reconnect_max"`
}

// DeviceConfig selects the device driver.
type DeviceConfig struct {
	Driver string `yaml:"driver"`
	// Reachable restricts the simulator to these ip:port addresses.
	// Empty means every address answers.
	Reachable []string `yaml:"reachable,omitempty"`
}

// ScheduleConfig defines recurring in-process jobs.
type ScheduleConfig struct {
	Fetch            JobSchedule   `yaml:"fetch"`
	JournalRetention time.Duration `yaml:"journal_retention"`
}

// JobSchedule defines when a job fires.
type JobSchedule struct {
	Every  string        `yaml:"every"` // e.g., "15m", "hourly", "daily"
	Jitter time.Duration `yaml:"jitter,omitempty"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// Defaults returns a Config with the stock settings.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "biobridge",
			LogLevel: "info",
		},
		State: StateConfig{
			Path: "./data/biobridge.db",
		},
		Backend: BackendConfig{
			RequestTimeout: 30 * time.Second,
			DurableRetry: RetryConfig{
				MaxAttempts: 0,
				Delay:       time.Second,
				Multiplier:  1,
			},
		},
		Realtime: RealtimeConfig{
			Room:          "zk_105",
			JoinEvent:     "zk_joinRoom",
			MessageEvent:  "zk_message",
			WakeMessage:   "start_fetch",
			PingInterval:  30 * time.Second,
			ReconnectBase: time.Second,
			ReconnectMax:  30 * time.Second,
		},
		Device: DeviceConfig{
			Driver: "simulator",
		},
		Schedule: ScheduleConfig{
			Fetch: JobSchedule{
				Every: "15m",
			},
			JournalRetention: 30 * 24 * time.Hour,
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8090",
		},
	}
}
