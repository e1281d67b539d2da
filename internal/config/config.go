package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
	Port    int    `mapstructure:"port" yaml:"port"`
	Mode    string `mapstructure:"mode" yaml:"mode"`
}

// LedgerConfig locates ledger workbooks and the session pointer file.
type LedgerConfig struct {
	Dir         string `mapstructure:"dir" yaml:"dir"`
	PointerFile string `mapstructure:"pointer_file" yaml:"pointer_file"`
	Sheet       string `mapstructure:"sheet" yaml:"sheet"`
}

type AuditConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	LogMode       bool   `mapstructure:"log_mode" yaml:"log_mode"`
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key,omitempty"`
}

type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// EventsConfig enables the kafka publisher when Brokers is non-empty.
type EventsConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Ledger LedgerConfig `mapstructure:"ledger" yaml:"ledger"`
	Audit  AuditConfig  `mapstructure:"audit" yaml:"audit"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Events EventsConfig `mapstructure:"events" yaml:"events"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty it looks for config.yaml in the working directory; a
// missing file is fine, defaults and CRED_* environment variables still apply.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = read(path)
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

func read(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. CRED_SERVER_PORT=9000
	v.SetEnvPrefix("CRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("ledger.dir", ".")
	v.SetDefault("ledger.pointer_file", "session_state.json")
	v.SetDefault("ledger.sheet", "Entries")

	v.SetDefault("audit.path", "data/audit.db")
	v.SetDefault("audit.log_mode", false)
	v.SetDefault("audit.encryption_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "credit_entries")
}
