package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Answers AnswersConfig `yaml:"answers" mapstructure:"answers"`
	Apply   ApplyConfig   `yaml:"apply" mapstructure:"apply"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnswersConfig points at the answers file holding the Tier-1 bank and the
// Tier-2 user assertions.
type AnswersConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ApplyConfig holds the mode flags and per-job limits consumed by the
// orchestrator.
type ApplyConfig struct {
	ResumePath       string `yaml:"resume_path" mapstructure:"resume_path"`
	MaxFormSteps     int    `yaml:"max_form_steps" mapstructure:"max_form_steps"`
	ModalTimeoutSecs int    `yaml:"modal_timeout_secs" mapstructure:"modal_timeout_secs"`
	NavTimeoutSecs   int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	Interactive      bool   `yaml:"interactive" mapstructure:"interactive"`
	TestMode         bool   `yaml:"test_mode" mapstructure:"test_mode"`
	DebugUnresolved  bool   `yaml:"debug_unresolved" mapstructure:"debug_unresolved"`
	Offline          bool   `yaml:"offline" mapstructure:"offline"`
	FixturePath      string `yaml:"fixture_path" mapstructure:"fixture_path"`
}

// BatchConfig configures the serial batch loop.
type BatchConfig struct {
	JobsPerMinute float64 `yaml:"jobs_per_minute" mapstructure:"jobs_per_minute"`
	Limit         int     `yaml:"limit" mapstructure:"limit"`
}

// BrowserConfig configures the Chromium session.
type BrowserConfig struct {
	Headless    bool   `yaml:"headless" mapstructure:"headless"`
	UserDataDir string `yaml:"user_data_dir" mapstructure:"user_data_dir"`
	Bin         string `yaml:"bin" mapstructure:"bin"`
}

// ServerConfig configures the read-only history server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EASYAPPLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "easyapply.db")
	v.SetDefault("answers.path", "answers.yaml")
	v.SetDefault("apply.max_form_steps", 10)
	v.SetDefault("apply.modal_timeout_secs", 10)
	v.SetDefault("apply.nav_timeout_secs", 30)
	v.SetDefault("batch.jobs_per_minute", 2.0)
	v.SetDefault("browser.headless", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces cross-field constraints.
func (c *Config) Validate() error {
	if c.Apply.Interactive && c.Apply.TestMode {
		return eris.New("config: interactive and test_mode are mutually exclusive")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
