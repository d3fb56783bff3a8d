package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig prefix shared by every variable below.
const EnvPrefix = "doublet"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names referenced by tests and bootstrap warnings.
const (
	EnvAppEnv      = "DOUBLET_APP_ENV"
	EnvAPIBaseURL  = "DOUBLET_API_BASE_URL"
	EnvStoragePath = "DOUBLET_STORAGE_PATH"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Payments PaymentsConfig
	Email    EmailConfig
	Storage  StorageConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DOUBLET_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"DOUBLET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DOUBLET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the storefront backend.
type APIConfig struct {
	BaseURL string        `envconfig:"DOUBLET_API_BASE_URL" default:"http://localhost:4000"`
	Timeout time.Duration `envconfig:"DOUBLET_API_TIMEOUT" default:"30s"`
}

// PaymentsConfig carries the gateway public keys. A missing key disables the
// matching gateway rather than failing startup.
type PaymentsConfig struct {
	Gateway              string `envconfig:"DOUBLET_PAYMENT_GATEWAY" default:"flutterwave"`
	FlutterwavePublicKey string `envconfig:"DOUBLET_FLUTTERWAVE_PUBLIC_KEY"`
	PaystackPublicKey    string `envconfig:"DOUBLET_PAYSTACK_PUBLIC_KEY"`
}

// GatewayEnabled reports whether the configured gateway has a public key.
func (p PaymentsConfig) GatewayEnabled() bool {
	switch strings.TrimSpace(strings.ToLower(p.Gateway)) {
	case "flutterwave":
		return strings.TrimSpace(p.FlutterwavePublicKey) != ""
	case "paystack":
		return strings.TrimSpace(p.PaystackPublicKey) != ""
	default:
		return false
	}
}

// EmailConfig identifies the transactional email service and its templates.
// Missing identifiers disable sends, never startup.
type EmailConfig struct {
	BaseURL           string `envconfig:"DOUBLET_EMAIL_BASE_URL" default:"https://api.emailjs.com"`
	ServiceID         string `envconfig:"DOUBLET_EMAIL_SERVICE_ID"`
	PublicKey         string `envconfig:"DOUBLET_EMAIL_PUBLIC_KEY"`
	TemplateWelcomeID string `envconfig:"DOUBLET_EMAIL_TEMPLATE_WELCOME_ID"`
	TemplateReleaseID string `envconfig:"DOUBLET_EMAIL_TEMPLATE_RELEASE_ID"`
	TemplatePartialID string `envconfig:"DOUBLET_EMAIL_TEMPLATE_PARTIAL_ID"`
	TemplateResetID   string `envconfig:"DOUBLET_EMAIL_TEMPLATE_RESET_ID"`
}

// Configured reports whether the service credentials are present at all.
func (e EmailConfig) Configured() bool {
	return strings.TrimSpace(e.ServiceID) != "" && strings.TrimSpace(e.PublicKey) != ""
}

// StorageConfig locates the persisted state snapshot.
type StorageConfig struct {
	Path string `envconfig:"DOUBLET_STORAGE_PATH" default:"doublet-storage.json"`
}
