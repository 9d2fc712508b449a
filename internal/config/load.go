package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "BAIKE"

// ConfigPathEnv names an explicit configuration file to read.
const ConfigPathEnv = EnvPrefix + "_CONFIG"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(ConfigPathEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setDefaults registers a default for every key so env overrides are seen
// by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.user_agent", "curl/7.79.1")
	v.SetDefault("fetch.accept", "*/*")
	v.SetDefault("fetch.max_redirects", 10)
	v.SetDefault("fetch.allowed_prefixes", []string{"https://baike.baidu.com/item/"})

	v.SetDefault("extract.title_classes", []string{"lemmaTitle_pDdQb", "lemmaTitle_DVaY1"})
	v.SetDefault("extract.tag_attr", "data-tag")
	v.SetDefault("extract.level_attr", "data-level")
	v.SetDefault("extract.ref_tag", "ref")
	v.SetDefault("extract.trailing_marker", "播报编辑")

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.article_prompt_path", "")
	v.SetDefault("llm.definition_prompt_path", "")

	v.SetDefault("task.max_concurrent", 0)
	v.SetDefault("task.retention_minutes", 0)
	v.SetDefault("task.sweep_interval_minutes", 5)

	v.SetDefault("cache.driver", "")
	v.SetDefault("cache.dsn", "")
	v.SetDefault("cache.max_age_minutes", 1440)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
}
