package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	FakeAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetOtelEndpoint() string
}

// APIConfig describes how the client reaches the remote Imvestor API.
type APIConfig interface {
	GetBaseURL() string
	GetTimeout() time.Duration
	GetLoginURL() string
	GetRefreshPath() string
}

// FakeAPIConfig configures the in-memory development backend.
type FakeAPIConfig interface {
	GetPort() string
	GetTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenLength() int
}

type mainConfig struct {
	*EnvVars
}

// New returns the built-in defaults without consulting the environment.
func New() Config {
	return mainConfig{EnvVars: DefaultEnvVars()}
}
