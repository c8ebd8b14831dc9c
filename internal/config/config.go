// Package config loads server settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/olgasafonova/trello-mcp-server/internal/credentials"
	apierrors "github.com/olgasafonova/trello-mcp-server/internal/errors"
)

// Credential sources.
const (
	SourceEnv     = credentials.SourceEnv
	SourceKeyring = credentials.SourceKeyring
	SourceAuto    = credentials.SourceAuto
)

// ConfigFileEnv names the optional config file (yaml, toml or json).
const ConfigFileEnv = "TRELLO_MCP_CONFIG"

// Config holds every server setting. The env tag names the variable (and the
// lower-cased config file key) each field comes from.
type Config struct {
	BaseURL          string        `env:"TRELLO_BASE_URL" validate:"required,url"`
	APIKey           string        `env:"TRELLO_API_KEY"`
	APIToken         string        `env:"TRELLO_API_TOKEN" validate:"required_with=APIKey"`
	CredentialSource string        `env:"TRELLO_CREDENTIAL_SOURCE" validate:"oneof=env keyring auto"`
	KeyringAccount   string        `env:"TRELLO_KEYRING_ACCOUNT" validate:"required"`
	Timeout          time.Duration `env:"TRELLO_TIMEOUT" validate:"gt=0"`
	MaxConcurrent    int           `env:"TRELLO_MAX_CONCURRENT" validate:"min=1,max=100"`
	UserAgent        string        `env:"TRELLO_USER_AGENT" validate:"required"`
	OpenAPISpec      string        `env:"TRELLO_OPENAPI_SPEC" validate:"omitempty,file"`
	ReadOnly         bool          `env:"TRELLO_READ_ONLY"`
	Categories       []string      `env:"TRELLO_CATEGORIES"`
	VerifyOnStart    bool          `env:"TRELLO_VERIFY_ON_START"`

	HTTPAddr    string `env:"MCP_HTTP_ADDR" validate:"omitempty,hostname_port"`
	AuthToken   string `env:"MCP_AUTH_TOKEN"`
	RateLimit   int    `env:"MCP_RATE_LIMIT" validate:"min=0"`
	MaxBodySize int64  `env:"MCP_MAX_BODY_SIZE" validate:"gt=0"`

	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// HTTPMode reports whether the server should listen on HTTP instead of stdio.
func (c *Config) HTTPMode() bool {
	return c.HTTPAddr != ""
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		BaseURL:          "https://api.trello.com/1",
		CredentialSource: SourceAuto,
		KeyringAccount:   "default",
		Timeout:          30 * time.Second,
		MaxConcurrent:    5,
		UserAgent:        "trello-mcp-server/1.0",
		RateLimit:        60,
		MaxBodySize:      1 << 20,
		LogLevel:         "info",
	}
}

// Options control where Load looks.
type Options struct {
	// EnvFile is loaded before reading the environment; "" means ".env".
	// A missing file is ignored.
	EnvFile string

	// ConfigFile overrides TRELLO_MCP_CONFIG.
	ConfigFile string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load resolves the configuration. Precedence: environment, then config
// file, then defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	def := Defaults()
	v.SetDefault("trello_base_url", def.BaseURL)
	v.SetDefault("trello_api_key", "")
	v.SetDefault("trello_api_token", "")
	v.SetDefault("trello_credential_source", def.CredentialSource)
	v.SetDefault("trello_keyring_account", def.KeyringAccount)
	v.SetDefault("trello_timeout", def.Timeout)
	v.SetDefault("trello_max_concurrent", def.MaxConcurrent)
	v.SetDefault("trello_user_agent", def.UserAgent)
	v.SetDefault("trello_openapi_spec", "")
	v.SetDefault("trello_read_only", false)
	v.SetDefault("trello_categories", "")
	v.SetDefault("trello_verify_on_start", false)
	v.SetDefault("mcp_http_addr", "")
	v.SetDefault("mcp_auth_token", "")
	v.SetDefault("mcp_rate_limit", def.RateLimit)
	v.SetDefault("mcp_max_body_size", def.MaxBodySize)
	v.SetDefault("log_level", def.LogLevel)
	v.AutomaticEnv()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = v.GetString(strings.ToLower(ConfigFileEnv))
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		BaseURL:          strings.TrimSuffix(v.GetString("trello_base_url"), "/"),
		APIKey:           v.GetString("trello_api_key"),
		APIToken:         v.GetString("trello_api_token"),
		CredentialSource: strings.ToLower(v.GetString("trello_credential_source")),
		KeyringAccount:   v.GetString("trello_keyring_account"),
		Timeout:          v.GetDuration("trello_timeout"),
		MaxConcurrent:    v.GetInt("trello_max_concurrent"),
		UserAgent:        v.GetString("trello_user_agent"),
		OpenAPISpec:      v.GetString("trello_openapi_spec"),
		ReadOnly:         v.GetBool("trello_read_only"),
		Categories:       stringList(v.Get("trello_categories")),
		VerifyOnStart:    v.GetBool("trello_verify_on_start"),
		HTTPAddr:         v.GetString("mcp_http_addr"),
		AuthToken:        v.GetString("mcp_auth_token"),
		RateLimit:        v.GetInt("mcp_rate_limit"),
		MaxBodySize:      v.GetInt64("mcp_max_body_size"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and returns a *errors.ValidationError
// describing the first failure.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) || len(valErrs) == 0 {
		return fmt.Errorf("validating config: %w", err)
	}

	messages := make([]string, 0, len(valErrs))
	for _, fe := range valErrs {
		messages = append(messages, fe.Field()+" "+formatFieldError(fe))
	}
	first := valErrs[0]
	return apierrors.NewValidationError(first.Field(), safeValue(first), strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + fe.Param() + " is set"
	case "url":
		return "must be a valid URL"
	case "file":
		return "must name an existing file"
	case "hostname_port":
		return "must be host:port"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// safeValue returns the offending value unless the field holds a secret.
func safeValue(fe validator.FieldError) string {
	switch fe.Field() {
	case "TRELLO_API_KEY", "TRELLO_API_TOKEN", "MCP_AUTH_TOKEN":
		return ""
	}
	return fmt.Sprint(fe.Value())
}

// stringList accepts a comma-separated string or a config-file list.
func stringList(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
