package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Universe struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"universe"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Market struct {
		Close  string `yaml:"close"`
		Suffix string `yaml:"suffix"`
	} `yaml:"market"`
	Provider struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Proxy   string        `yaml:"proxy"`
	} `yaml:"provider"`
	Schedule struct {
		WarmCron string `yaml:"warm_cron"`
	} `yaml:"schedule"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		MaxAge int    `yaml:"max_age"`
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then defaults. A missing file is not an error: everything
// has a usable default.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("NSEWATCH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("UNIVERSE_CSV"); v != "" {
		cfg.Universe.CSVPath = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Provider.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5001
	}
	if cfg.Universe.CSVPath == "" {
		cfg.Universe.CSVPath = "UI/EQUITY_L.csv"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "history_store"
	}
	if cfg.Market.Close == "" {
		cfg.Market.Close = "15:30"
	}
	if cfg.Market.Suffix == "" {
		cfg.Market.Suffix = ".NS"
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 7
	}

	return cfg, nil
}

// Validate checks that all required fields are coherent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if _, _, err := c.MarketClose(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Market.Suffix, ".") {
		return fmt.Errorf("market.suffix must start with '.'")
	}
	return nil
}

// MarketClose parses market.close ("HH:MM") into hour and minute.
func (c *Config) MarketClose() (hour, minute int, err error) {
	parts := strings.SplitN(c.Market.Close, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("market.close must be HH:MM, got %q", c.Market.Close)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("market.close has invalid hour %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("market.close has invalid minute %q", parts[1])
	}
	return hour, minute, nil
}
