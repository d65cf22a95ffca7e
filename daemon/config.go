package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sysmond.sh/internal/config"
)

type Config struct {
	ConfigDir          string  `json:"config_dir"`
	CollectionInterval string  `json:"collection_interval"`
	CacheDuration      string  `json:"cache_duration"`
	HistorySize        int     `json:"history_size"`
	HistoryDuration    string  `json:"history_duration"`
	AnomalyThreshold   float64 `json:"anomaly_threshold"`
	BatchSize          int     `json:"batch_size"`
	MetricsAddr        string  `json:"metrics_addr"`
	LogLevel           string  `json:"log_level"`

	mu sync.RWMutex
}

const (
	defaultConfigFile = "sysmond_config.json"
	defaultConfigDir  = "/etc/sysmond"

	defaultCollectionInterval = 5 * time.Second
	defaultCacheDuration      = time.Second
	defaultHistorySize        = 1000
	defaultHistoryDuration    = time.Hour
	defaultAnomalyThreshold   = 2.0
	defaultBatchSize          = 10
)

// Load reads the config file from the config directory, falling back to
// defaults when the file is absent. Environment variables override the
// file's values.
func Load() (*Config, error) {
	configDir := config.GetStringFromEnv("SYSMOND_CONFIG_DIR", defaultConfigDir)
	configPath := filepath.Join(configDir, defaultConfigFile)

	cfg := &Config{
		ConfigDir: configDir,
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if d := config.GetDurationFromEnv("SYSMOND_COLLECTION_INTERVAL", 0); d > 0 {
		c.CollectionInterval = d.String()
	}
	if d := config.GetDurationFromEnv("SYSMOND_CACHE_DURATION", 0); d > 0 {
		c.CacheDuration = d.String()
	}
	if d := config.GetDurationFromEnv("SYSMOND_HISTORY_DURATION", 0); d > 0 {
		c.HistoryDuration = d.String()
	}
	c.HistorySize = config.GetIntFromEnv("SYSMOND_HISTORY_SIZE", c.HistorySize)
	c.AnomalyThreshold = config.GetFloatFromEnv("SYSMOND_ANOMALY_THRESHOLD", c.AnomalyThreshold)
	c.BatchSize = config.GetIntFromEnv("SYSMOND_BATCH_SIZE", c.BatchSize)
	c.MetricsAddr = config.GetStringFromEnv("SYSMOND_METRICS_ADDR", c.MetricsAddr)
	c.LogLevel = config.GetStringFromEnv("SYSMOND_LOG_LEVEL", c.LogLevel)
}

// Save writes the config back to the config directory, creating it if
// needed.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.ConfigDir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	configPath := filepath.Join(c.ConfigDir, defaultConfigFile)
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}

// parseDuration falls back to def on empty or malformed values.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (c *Config) GetCollectionInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.CollectionInterval, defaultCollectionInterval)
}

func (c *Config) GetCacheDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.CacheDuration, defaultCacheDuration)
}

func (c *Config) GetHistorySize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.HistorySize <= 0 {
		return defaultHistorySize
	}
	return c.HistorySize
}

func (c *Config) GetHistoryDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.HistoryDuration, defaultHistoryDuration)
}

func (c *Config) GetAnomalyThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.AnomalyThreshold <= 0 {
		return defaultAnomalyThreshold
	}
	return c.AnomalyThreshold
}

func (c *Config) GetBatchSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.BatchSize <= 0 {
		return defaultBatchSize
	}
	return c.BatchSize
}

func (c *Config) GetMetricsAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MetricsAddr
}

func (c *Config) GetLogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

func (c *Config) SetCollectionInterval(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CollectionInterval = interval.String()
}

func (c *Config) SetMetricsAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MetricsAddr = addr
}
