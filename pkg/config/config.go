package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "teahouse"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv     = "TEAHOUSE_APP_ENV"
	EnvAPIBaseURL = "TEAHOUSE_API_BASE_URL"
	EnvStatePath  = "TEAHOUSE_STATE_PATH"
)

type Config struct {
	App   AppConfig
	API   APIConfig
	State StateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TEAHOUSE_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"TEAHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TEAHOUSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL  string        `envconfig:"TEAHOUSE_API_BASE_URL" default:"http://localhost:3000/api"`
	Timeout  time.Duration `envconfig:"TEAHOUSE_API_TIMEOUT" default:"30s"`
	LoginURL string        `envconfig:"TEAHOUSE_LOGIN_URL" default:"/auth/login"`
}

func (a APIConfig) validate() error {
	if strings.TrimSpace(a.BaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	return nil
}

type StateConfig struct {
	// Path points at the sqlite file holding the credential and
	// profile slots between runs.
	Path string `envconfig:"TEAHOUSE_STATE_PATH" default:"teahouse.db"`
}
