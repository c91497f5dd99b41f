package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	configFileEnvVar = "IMVESTOR_CONFIG"

	defaultBaseURL     = "http://localhost:3000/api"
	defaultRefreshPath = "/auth/refresh"
)

// EnvVars holds every tunable. Values are layered: defaults, then the optional
// YAML file named by IMVESTOR_CONFIG, then the environment.
type EnvVars struct {
	AppName      string        `yaml:"app_name" env:"IMVESTOR_APP_NAME"`
	Env          string        `yaml:"env" env:"IMVESTOR_ENV"`
	LogLevel     string        `yaml:"log_level" env:"IMVESTOR_LOG_LEVEL"`
	OtelEndpoint string        `yaml:"otel_endpoint" env:"IMVESTOR_OTEL_ENDPOINT"`
	BaseURL      string        `yaml:"base_url" env:"IMVESTOR_BASE_URL"`
	Timeout      time.Duration `yaml:"timeout" env:"IMVESTOR_TIMEOUT"`
	LoginURL     string        `yaml:"login_url" env:"IMVESTOR_LOGIN_URL"`

	FakeAPIPort        string        `yaml:"fakeapi_port" env:"IMVESTOR_FAKEAPI_PORT"`
	FakeAPISecret      string        `yaml:"fakeapi_secret" env:"IMVESTOR_FAKEAPI_SECRET"`
	FakeAPIAccessTTL   time.Duration `yaml:"fakeapi_access_ttl" env:"IMVESTOR_FAKEAPI_ACCESS_TTL"`
	RefreshTokenLength int           `yaml:"refresh_token_length" env:"IMVESTOR_REFRESH_TOKEN_LENGTH"`
}

var _ EnvConfig = (*EnvVars)(nil)
var _ APIConfig = (*EnvVars)(nil)
var _ FakeAPIConfig = (*EnvVars)(nil)

func DefaultEnvVars() *EnvVars {
	return &EnvVars{
		AppName:            "Imvestor",
		Env:                "DEV",
		LogLevel:           "info",
		BaseURL:            defaultBaseURL,
		Timeout:            30 * time.Second,
		LoginURL:           "/login",
		FakeAPIPort:        "3000",
		FakeAPISecret:      "imvestor-dev-secret",
		FakeAPIAccessTTL:   15 * time.Minute,
		RefreshTokenLength: 32, // 32 bytes = 256 bits
	}
}

// Load builds the configuration from defaults, the optional YAML file and the
// environment, in that order.
func Load() (Config, error) {
	vars := DefaultEnvVars()

	if path := os.Getenv(configFileEnvVar); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, vars); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(vars); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return mainConfig{EnvVars: vars}, nil
}

func (e *EnvVars) GetAppName() string {
	return e.AppName
}

func (e *EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e *EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e *EnvVars) GetOtelEndpoint() string {
	return e.OtelEndpoint
}

// GetBaseURL returns the API root without a trailing slash (e.g. "https://api.imvestor.com/api")
func (e *EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.BaseURL, "/")
}

func (e *EnvVars) GetTimeout() time.Duration {
	return e.Timeout
}

func (e *EnvVars) GetLoginURL() string {
	return e.LoginURL
}

// GetRefreshPath is fixed by the remote API.
func (e *EnvVars) GetRefreshPath() string {
	return defaultRefreshPath
}

func (e *EnvVars) GetPort() string {
	port := e.FakeAPIPort
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e *EnvVars) GetTokenSecret() string {
	return e.FakeAPISecret
}

func (e *EnvVars) GetAccessTokenTTL() time.Duration {
	return e.FakeAPIAccessTTL
}

func (e *EnvVars) GetRefreshTokenLength() int {
	return e.RefreshTokenLength
}
