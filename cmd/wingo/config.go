package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tinytelemetry/wingo-live/internal/model"
	"github.com/tinytelemetry/wingo-live/internal/tui"
)

const (
	defaultHistoryRetention = 30 // days
)

// appConfig holds the dashboard configuration.
type appConfig struct {
	Endpoint         string        `mapstructure:"endpoint"`
	PollInterval     time.Duration `mapstructure:"poll-interval"`
	RequestTimeout   time.Duration `mapstructure:"request-timeout"`
	UseModel         bool          `mapstructure:"use-model"`
	CommitPolicy     string        `mapstructure:"commit-policy"`
	Take             int           `mapstructure:"take"`
	HistoryEnabled   bool          `mapstructure:"history-enabled"`
	HistoryDB        string        `mapstructure:"history-db"`
	HistoryRetention int           `mapstructure:"history-retention"`
	MetricsAddr      string        `mapstructure:"metrics-addr"`
	LogFile          string        `mapstructure:"log-file"`

	ConfigPath string           `mapstructure:"-"`
	Policy     tui.CommitPolicy `mapstructure:"-"`
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("WINGO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("endpoint", model.DefaultEndpoint)
	v.SetDefault("poll-interval", model.DefaultPollInterval)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("use-model", false)
	v.SetDefault("commit-policy", "completion")
	v.SetDefault("take", model.DefaultTake)
	v.SetDefault("history-enabled", true)
	v.SetDefault("history-db", filepath.Join(home, ".local", "share", "wingo", "history.duckdb"))
	v.SetDefault("history-retention", defaultHistoryRetention)
	v.SetDefault("metrics-addr", "")
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "wingo", "wingo.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "wingo", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.Endpoint == "" {
		return cfg, errors.New("endpoint must not be empty")
	}
	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("invalid poll-interval: %s", cfg.PollInterval)
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, fmt.Errorf("invalid request-timeout: %s", cfg.RequestTimeout)
	}
	if cfg.Take <= 0 {
		return cfg, fmt.Errorf("invalid take: %d", cfg.Take)
	}
	cfg.Policy, err = tui.ParseCommitPolicy(cfg.CommitPolicy)
	if err != nil {
		return cfg, err
	}

	cfg.HistoryDB = expandHome(cfg.HistoryDB, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
