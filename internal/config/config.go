package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Fetch   FetchConfig   `mapstructure:"fetch"   validate:"required"`
	Extract ExtractConfig `mapstructure:"extract" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm"     validate:"required"`
	Task    TaskConfig    `mapstructure:"task"    validate:"required"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// FetchConfig controls how source documents are retrieved.
type FetchConfig struct {
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"  validate:"gt=0"`
	UserAgent       string   `mapstructure:"user_agent"       validate:"required"`
	Accept          string   `mapstructure:"accept"           validate:"required"`
	MaxRedirects    int      `mapstructure:"max_redirects"    validate:"gte=0"`
	AllowedPrefixes []string `mapstructure:"allowed_prefixes" validate:"required,min=1,dive,url"`
}

// Timeout returns the per-request bound as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExtractConfig describes the markup conventions of the source site.
type ExtractConfig struct {
	// TitleClasses are tried in order; the site has used more than one.
	TitleClasses   []string `mapstructure:"title_classes"   validate:"required,min=1,dive,required"`
	TagAttr        string   `mapstructure:"tag_attr"        validate:"required"`
	LevelAttr      string   `mapstructure:"level_attr"      validate:"required"`
	RefTag         string   `mapstructure:"ref_tag"         validate:"required"`
	TrailingMarker string   `mapstructure:"trailing_marker"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai ollama"`
	// APIKey may be empty; enrichment then fails per task instead of at startup.
	APIKey               string  `mapstructure:"api_key"`
	BaseURL              string  `mapstructure:"base_url"               validate:"omitempty,url"`
	ModelName            string  `mapstructure:"model_name"             validate:"required"`
	TimeoutSeconds       int     `mapstructure:"timeout_seconds"        validate:"gt=0"`
	Temperature          float32 `mapstructure:"temperature"            validate:"gte=0,lte=2"`
	ArticlePromptPath    string  `mapstructure:"article_prompt_path"    validate:"omitempty,file"`
	DefinitionPromptPath string  `mapstructure:"definition_prompt_path" validate:"omitempty,file"`
}

// Timeout returns the per-call bound as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TaskConfig controls background execution of enrichment tasks.
type TaskConfig struct {
	// MaxConcurrent of zero means unbounded.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`
	// RetentionMinutes of zero keeps terminal tasks for the process lifetime.
	RetentionMinutes     int `mapstructure:"retention_minutes"      validate:"gte=0"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gt=0"`
}

// CacheConfig selects the optional page cache. An empty driver disables it.
type CacheConfig struct {
	Driver        string `mapstructure:"driver"          validate:"omitempty,oneof=sqlite postgres"`
	DSN           string `mapstructure:"dsn"             validate:"required_with=Driver"`
	MaxAgeMinutes int    `mapstructure:"max_age_minutes" validate:"gte=0"`
}

// AuthConfig contains authentication settings. An empty secret disables
// authentication on the API.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// Enabled reports whether API requests must carry a bearer token.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}
