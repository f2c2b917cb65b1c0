package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "AMM"

// Snapshot sources for the quote commands.
const (
	SourceConfig   = "config"
	SourcePostgres = "postgres"
)

// Config holds configuration for the quote commands.
type Config struct {
	LogLevel       string
	Out            string
	PGDSN          string
	SnapshotSource string
	Pool           PoolSettings
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := newViper()

	v.SetDefault("log-level", "info")
	v.SetDefault("snapshot-source", SourceConfig)
	v.SetDefault("pool.type", "constant_product")
	v.SetDefault("pool.commission-rate", "0.003")
	v.SetDefault("pool.total-share", "0")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
		if f := flags.Lookup("timestamp"); f != nil {
			if err := v.BindPFlag("pool.timestamp", f); err != nil {
				return Config{}, fmt.Errorf("bind timestamp flag: %w", err)
			}
		}
	}

	if err := readConfig(v, cfgFile); err != nil {
		return Config{}, err
	}

	pool, err := loadPoolSettings(v)
	if err != nil {
		return Config{}, err
	}

	source := strings.ToLower(v.GetString("snapshot-source"))
	if source != SourceConfig && source != SourcePostgres {
		return Config{}, fmt.Errorf("unknown snapshot source %q", source)
	}

	cfg := Config{
		LogLevel:       v.GetString("log-level"),
		Out:            v.GetString("out"),
		PGDSN:          v.GetString("pg-dsn"),
		SnapshotSource: source,
		Pool:           pool,
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}
	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
