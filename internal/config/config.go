// Package config loads taskflow configuration from file and environment.
//
// Resolution order (highest wins): environment variables (TASKFLOW_*,
// plus GITHUB_TOKEN for the token), the config file, built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Store     StoreConfig     `mapstructure:"store"`
	Interview InterviewConfig `mapstructure:"interview"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

// StoreConfig selects the interview state backend.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`    // "sqlite", "file", "redis"
	RedisAddr string `mapstructure:"redis_addr"` // host:port, only for the redis backend
}

// InterviewConfig holds interview engine settings.
type InterviewConfig struct {
	Retention       time.Duration `mapstructure:"retention"`        // completed interviews older than this are removed; 0 disables
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // how often serve applies retention
	TitlePrefillMax int           `mapstructure:"title_prefill_max"`
}

// GitHubConfig holds Issue Backend settings.
type GitHubConfig struct {
	Owner             string   `mapstructure:"owner"`
	Token             string   `mapstructure:"token"`    // GITHUB_TOKEN env var takes precedence
	BaseURL           string   `mapstructure:"base_url"` // GitHub Enterprise API URL; empty means github.com
	Repositories      []string `mapstructure:"repositories"`
	DefaultRepository string   `mapstructure:"default_repository"`
}

// AnalyzerConfig holds heuristic analyzer settings.
type AnalyzerConfig struct {
	RulesFile        string `mapstructure:"rules_file"` // optional YAML overriding the embedded rules
	FetchParallelism int    `mapstructure:"fetch_parallelism"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// HTTPConfig holds the HTTP gateway settings.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// ValidBackends lists the supported interview store backends.
var ValidBackends = []string{"sqlite", "file", "redis"}

// Load reads configuration. An empty cfgFile means the default location
// ($XDG_CONFIG_HOME/taskflow/config.yaml or ~/.config/taskflow/config.yaml);
// a missing default file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(defaultConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !tferrors.As(err, &notFound) {
			return nil, tferrors.Wrap(err, "failed to read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, tferrors.Wrap(err, "failed to unmarshal config")
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}

	var err error
	if cfg.DataDir, err = expandPath(cfg.DataDir); err != nil {
		return nil, tferrors.Wrap(err, "failed to expand data_dir")
	}
	if cfg.Log.File, err = expandPath(cfg.Log.File); err != nil {
		return nil, tferrors.Wrap(err, "failed to expand log.file")
	}
	if cfg.Analyzer.RulesFile, err = expandPath(cfg.Analyzer.RulesFile); err != nil {
		return nil, tferrors.Wrap(err, "failed to expand analyzer.rules_file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, tferrors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	valid := false
	for _, b := range ValidBackends {
		if c.Store.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return tferrors.Newf("store.backend %q: must be one of: %s", c.Store.Backend, strings.Join(ValidBackends, ", "))
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		return tferrors.New("store.redis_addr is required for the redis backend")
	}
	if c.Interview.Retention < 0 {
		return tferrors.Newf("interview.retention must not be negative (got %s)", c.Interview.Retention)
	}
	if c.Interview.TitlePrefillMax < 0 {
		return tferrors.New("interview.title_prefill_max must not be negative")
	}
	return nil
}

// Owner returns the GitHub owner, or "" when the backend is unconfigured.
func (c *Config) Owner() string {
	return c.GitHub.Owner
}

// DefaultRepository returns the repository new issues go to when the
// interview did not name one.
func (c *Config) DefaultRepository() string {
	if c.GitHub.DefaultRepository != "" {
		return c.GitHub.DefaultRepository
	}
	if len(c.GitHub.Repositories) > 0 {
		return c.GitHub.Repositories[0]
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", filepath.Join(homeDir(), ".taskflow"))

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.redis_addr", "")

	v.SetDefault("interview.retention", 30*24*time.Hour)
	v.SetDefault("interview.cleanup_interval", time.Hour)
	v.SetDefault("interview.title_prefill_max", 80)

	v.SetDefault("github.owner", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.repositories", []string{})
	v.SetDefault("github.default_repository", "")

	v.SetDefault("analyzer.rules_file", "")
	v.SetDefault("analyzer.fetch_parallelism", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("http.addr", "127.0.0.1:8765")
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskflow")
	}
	return filepath.Join(homeDir(), ".config", "taskflow")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
