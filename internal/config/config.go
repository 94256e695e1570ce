package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment variable read by Load.
const envPrefix = "STOCKSIM"

// Config represents the complete application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Simulation SimulationConfig `yaml:"simulation" envconfig:"SIMULATION"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths. Relative entries are resolved
// against the working directory at load time.
type PathsConfig struct {
	HistoryDir string `yaml:"history_dir" envconfig:"HISTORY_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// SimulationConfig carries the orchestrator's operational limits.
type SimulationConfig struct {
	MaxPaths         int    `yaml:"max_paths" envconfig:"MAX_PATHS"`
	MaxSteps         int    `yaml:"max_steps" envconfig:"MAX_STEPS"`
	BatchConcurrency int    `yaml:"batch_concurrency" envconfig:"BATCH_CONCURRENCY"`
	DefaultLookback  string `yaml:"default_lookback" envconfig:"DEFAULT_LOOKBACK"`
	AdvancedStats    bool   `yaml:"advanced_stats" envconfig:"ADVANCED_STATS"`
	ExportFormat     string `yaml:"export_format" envconfig:"EXPORT_FORMAT"`
}

// RateLimitConfig contains API rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// WebSocketConfig contains WebSocket hub configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Default returns the documented baseline configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/stocksim.log",
		},
		Paths: PathsConfig{
			HistoryDir: "history",
			DataDir:    "data",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
		Simulation: SimulationConfig{
			MaxPaths:         100000,
			MaxSteps:         2520,
			BatchConcurrency: 4,
			DefaultLookback:  "2y",
			AdvancedStats:    true,
			ExportFormat:     "xlsx",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     50,
			Burst:   25,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}

// Load builds the configuration with precedence environment > YAML file >
// defaults, then resolves paths and validates the result.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = defaultConfigFile()
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
			}
		}
	}

	// Fields without a matching environment variable are left untouched, so
	// file and default values survive.
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaultConfigFile() string {
	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		return path
	}
	return "stocksim.yaml"
}

func (c *Config) resolvePaths() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	for _, dir := range []*string{
		&c.Paths.HistoryDir,
		&c.Paths.DataDir,
		&c.Paths.ReportsDir,
		&c.Paths.LogsDir,
	} {
		if !filepath.IsAbs(*dir) {
			*dir = filepath.Join(wd, *dir)
		}
	}
	if !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(wd, c.Logging.FilePath)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Simulation.MaxPaths < 1 {
		return fmt.Errorf("simulation.max_paths must be positive, got %d", c.Simulation.MaxPaths)
	}
	if c.Simulation.MaxSteps < 1 {
		return fmt.Errorf("simulation.max_steps must be positive, got %d", c.Simulation.MaxSteps)
	}
	if c.Simulation.BatchConcurrency < 1 {
		return fmt.Errorf("simulation.batch_concurrency must be positive, got %d", c.Simulation.BatchConcurrency)
	}
	switch strings.ToLower(c.Simulation.ExportFormat) {
	case "xlsx", "csv", "none":
	default:
		return fmt.Errorf("unsupported export format: %s", c.Simulation.ExportFormat)
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive when enabled, got %v", c.RateLimit.RPS)
	}
	return nil
}

// EnsureDirectories creates the data, reports and logs directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
