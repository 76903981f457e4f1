package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable the engine reads.
const EnvPrefix = "storefront"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Platform PlatformConfig
	Widget   WidgetConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.App.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Platform.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

// validate rejects a set-but-blank app env, which envconfig's required tag
// lets through.
func (a AppConfig) validate() error {
	if strings.TrimSpace(a.Env) == "" {
		return fmt.Errorf("app env must not be empty")
	}
	return nil
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PlatformConfig points the engine at the hosted commerce platform's cart API.
type PlatformConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_PLATFORM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_PLATFORM_TIMEOUT" default:"10s"`
}

func (p PlatformConfig) validate() error {
	parsed, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid platform base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("platform base url must be absolute, got %q", p.BaseURL)
	}
	return nil
}

// WidgetConfig carries the tunables for the rendered widget set.
type WidgetConfig struct {
	ProductHandle     string        `envconfig:"STOREFRONT_PRODUCT_HANDLE" default:"product"`
	VariantsPath      string        `envconfig:"STOREFRONT_VARIANTS_PATH"`
	RowImageWidth     int           `envconfig:"STOREFRONT_ROW_IMAGE_WIDTH" default:"100"`
	ProductImageWidth int           `envconfig:"STOREFRONT_PRODUCT_IMAGE_WIDTH" default:"400"`
	CurrencySymbol    string        `envconfig:"STOREFRONT_CURRENCY_SYMBOL" default:"$"`
	OptimisticTTL     time.Duration `envconfig:"STOREFRONT_OPTIMISTIC_TTL" default:"30s"`
	SessionTTL        time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"30m"`
}
