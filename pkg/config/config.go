package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Input struct {
		Address         string        `yaml:"address"`
		PingInterval    time.Duration `yaml:"ping_interval"`
		PongTimeout     time.Duration `yaml:"pong_timeout"`
		FlushInterval   time.Duration `yaml:"flush_interval"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"input"`

	Layout struct {
		MaxSlots        int     `yaml:"max_slots"`
		PaneSpacing     float64 `yaml:"pane_spacing"`
		MinPaneWidth    float64 `yaml:"min_pane_width"`
		MinPaneHeight   float64 `yaml:"min_pane_height"`
		PiPBubbleWidth  float64 `yaml:"pip_bubble_width"`
		PiPBubbleHeight float64 `yaml:"pip_bubble_height"`
		DefaultWidth    float64 `yaml:"default_width"`
		DefaultHeight   float64 `yaml:"default_height"`
	} `yaml:"layout"`

	Gestures struct {
		TapSlop           float64       `yaml:"tap_slop"`
		DoubleTapWindow   time.Duration `yaml:"double_tap_window"`
		LongPressDuration time.Duration `yaml:"long_press_duration"`
		DragCommitTimeout time.Duration `yaml:"drag_commit_timeout"`
		MinPinchScale     float64       `yaml:"min_pinch_scale"`
		MaxPinchScale     float64       `yaml:"max_pinch_scale"`
	} `yaml:"gestures"`

	Monitoring struct {
		PrometheusEnabled bool          `yaml:"prometheus_enabled"`
		MetricsInterval   time.Duration `yaml:"metrics_interval"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret      string        `yaml:"jwt_secret"`
		SessionTTL     time.Duration `yaml:"session_ttl"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"auth"`

	Backup struct {
		Enabled       bool          `yaml:"enabled"`
		Directory     string        `yaml:"directory"`
		Interval      time.Duration `yaml:"interval"`
		RetentionDays int           `yaml:"retention_days"`
	} `yaml:"backup"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`

		WebSocket struct {
			EventsPerSecond     float64 `yaml:"events_per_second"`
			Burst               int     `yaml:"burst"`
			MaxConcurrent       int     `yaml:"max_concurrent_connections"`
			MaxMessageSizeBytes int64   `yaml:"max_message_size_bytes"`
		} `yaml:"websocket"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Input gateway
	if c.Input.Address == "" {
		return fmt.Errorf("input.address must not be empty")
	}
	if c.Input.PingInterval <= 0 {
		return fmt.Errorf("input.ping_interval must be > 0")
	}
	if c.Input.PongTimeout <= 0 {
		return fmt.Errorf("input.pong_timeout must be > 0")
	}
	if c.Input.FlushInterval <= 0 {
		return fmt.Errorf("input.flush_interval must be > 0")
	}

	// Layout
	if c.Layout.MaxSlots <= 0 {
		return fmt.Errorf("layout.max_slots must be > 0")
	}
	if c.Layout.PaneSpacing < 0 {
		return fmt.Errorf("layout.pane_spacing must be >= 0")
	}
	if c.Layout.MinPaneWidth <= 0 || c.Layout.MinPaneHeight <= 0 {
		return fmt.Errorf("layout.min_pane_width and min_pane_height must be > 0")
	}
	if c.Layout.PiPBubbleWidth <= 0 || c.Layout.PiPBubbleHeight <= 0 {
		return fmt.Errorf("layout.pip_bubble_width and pip_bubble_height must be > 0")
	}
	if c.Layout.DefaultWidth <= 0 || c.Layout.DefaultHeight <= 0 {
		return fmt.Errorf("layout.default_width and default_height must be > 0")
	}

	// Gestures
	if c.Gestures.TapSlop < 0 {
		return fmt.Errorf("gestures.tap_slop must be >= 0")
	}
	if c.Gestures.DoubleTapWindow <= 0 {
		return fmt.Errorf("gestures.double_tap_window must be > 0")
	}
	if c.Gestures.LongPressDuration <= 0 {
		return fmt.Errorf("gestures.long_press_duration must be > 0")
	}
	if c.Gestures.DragCommitTimeout <= 0 {
		return fmt.Errorf("gestures.drag_commit_timeout must be > 0")
	}
	if c.Gestures.MinPinchScale <= 0 || c.Gestures.MaxPinchScale <= c.Gestures.MinPinchScale {
		return fmt.Errorf("gestures.min_pinch_scale must be > 0 and < max_pinch_scale")
	}

	// Monitoring
	if c.Monitoring.MetricsInterval <= 0 {
		return fmt.Errorf("monitoring.metrics_interval must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be > 0")
	}

	// Backup
	if c.Backup.Enabled {
		if c.Backup.Directory == "" {
			return fmt.Errorf("backup.directory must not be empty when backup.enabled=true")
		}
		if c.Backup.Interval <= 0 {
			return fmt.Errorf("backup.interval must be > 0 when backup.enabled=true")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.EventsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.websocket.events_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.Burst <= 0 {
			return fmt.Errorf("rate_limiting.websocket.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.websocket.max_concurrent_connections must be >= 0 when rate limiting is enabled")
		}
		if c.RateLimiting.WebSocket.MaxMessageSizeBytes < 0 {
			return fmt.Errorf("rate_limiting.websocket.max_message_size_bytes must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Input.Address = ":8081"
	cfg.Input.PingInterval = 30 * time.Second
	cfg.Input.PongTimeout = 60 * time.Second
	cfg.Input.FlushInterval = 100 * time.Millisecond
	cfg.Input.ShutdownTimeout = 30 * time.Second

	cfg.Layout.MaxSlots = 16
	cfg.Layout.PaneSpacing = 8
	cfg.Layout.MinPaneWidth = 120
	cfg.Layout.MinPaneHeight = 68
	cfg.Layout.PiPBubbleWidth = 96
	cfg.Layout.PiPBubbleHeight = 54
	cfg.Layout.DefaultWidth = 1280
	cfg.Layout.DefaultHeight = 720

	cfg.Gestures.TapSlop = 10
	cfg.Gestures.DoubleTapWindow = 300 * time.Millisecond
	cfg.Gestures.LongPressDuration = 500 * time.Millisecond
	cfg.Gestures.DragCommitTimeout = 2 * time.Second
	cfg.Gestures.MinPinchScale = 0.5
	cfg.Gestures.MaxPinchScale = 2.0

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.MetricsInterval = 30 * time.Second

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.SessionTTL = 12 * time.Hour
	cfg.Auth.AllowedOrigins = []string{"*"}

	cfg.Backup.Enabled = false
	cfg.Backup.Directory = "backups"
	cfg.Backup.Interval = 6 * time.Hour
	cfg.Backup.RetentionDays = 14

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0
	cfg.RateLimiting.WebSocket.EventsPerSecond = 120
	cfg.RateLimiting.WebSocket.Burst = 240
	cfg.RateLimiting.WebSocket.MaxConcurrent = 0
	cfg.RateLimiting.WebSocket.MaxMessageSizeBytes = 16 * 1024

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("STREAMGRID_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if addr := os.Getenv("STREAMGRID_INPUT_ADDRESS"); addr != "" {
		c.Input.Address = addr
	}
	if level := os.Getenv("STREAMGRID_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("STREAMGRID_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if addr := os.Getenv("STREAMGRID_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
}
