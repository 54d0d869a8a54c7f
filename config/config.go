package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileEnv names an explicit config file for the server.
const ConfigFileEnv = "AGENDATE_CONFIG"

// Credential backends.
const (
	BackendMongo = "mongodb"
	BackendRedis = "redis"
)

// HTTP engines.
const (
	EngineGin  = "gin"
	EngineEcho = "echo"
)

// ServerConfig holds all configuration for the server and the CLI.
// Tags use mapstructure for Viper unmarshalling; keys double as env var names.
type ServerConfig struct {
	HTTPPort   string `mapstructure:"HTTP_PORT"`
	HTTPEngine string `mapstructure:"HTTP_ENGINE"`

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogPretty       bool   `mapstructure:"LOG_PRETTY"`
	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`

	// Token store
	CredentialBackend  string        `mapstructure:"CREDENTIAL_BACKEND"`
	CredentialCacheTTL time.Duration `mapstructure:"CREDENTIAL_CACHE_TTL"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	RedisPrefix        string        `mapstructure:"REDIS_PREFIX"`

	// Mercado Pago application
	MPBaseURL             string        `mapstructure:"MP_BASE_URL"`
	MPAuthURL             string        `mapstructure:"MP_AUTH_URL"`
	MPClientID            string        `mapstructure:"MP_CLIENT_ID"`
	MPClientSecret        string        `mapstructure:"MP_CLIENT_SECRET"`
	MPRedirectURL         string        `mapstructure:"MP_REDIRECT_URL"`
	MPPlatformAccessToken string        `mapstructure:"MP_PLATFORM_ACCESS_TOKEN"`
	MPWebhookSecret       string        `mapstructure:"MP_WEBHOOK_SECRET"`
	MPNotificationURL     string        `mapstructure:"MP_NOTIFICATION_URL"`
	MPCurrencyID          string        `mapstructure:"MP_CURRENCY_ID"`
	MPDefaultMethodID     string        `mapstructure:"MP_DEFAULT_PAYMENT_METHOD"`
	MPTimeout             time.Duration `mapstructure:"MP_TIMEOUT"`

	// Checkout Pro return URLs
	BackURLSuccess string `mapstructure:"BACK_URL_SUCCESS"`
	BackURLPending string `mapstructure:"BACK_URL_PENDING"`
	BackURLFailure string `mapstructure:"BACK_URL_FAILURE"`

	// Origin allowed to receive the OAuth popup's postMessage.
	FrontendOrigin string `mapstructure:"FRONTEND_ORIGIN"`
}

var keys = []string{
	"HTTP_PORT", "HTTP_ENGINE", "MONGO_URI", "MONGO_DB_NAME", "LOG_LEVEL", "LOG_PRETTY",
	"OTEL_SERVICE_NAME", "TRACING_ENABLED", "CREDENTIAL_BACKEND", "CREDENTIAL_CACHE_TTL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX", "MP_BASE_URL", "MP_AUTH_URL",
	"MP_CLIENT_ID", "MP_CLIENT_SECRET", "MP_REDIRECT_URL", "MP_PLATFORM_ACCESS_TOKEN",
	"MP_WEBHOOK_SECRET", "MP_NOTIFICATION_URL", "MP_CURRENCY_ID", "MP_DEFAULT_PAYMENT_METHOD",
	"MP_TIMEOUT", "BACK_URL_SUCCESS", "BACK_URL_PENDING", "BACK_URL_FAILURE", "FRONTEND_ORIGIN",
}

// LoadConfig reads configuration from file, environment variables, and defaults.
// configFile, when set, replaces the search path.
func LoadConfig(configFile string) (*ServerConfig, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/agendate/")
		v.AddConfigPath("$HOME/.agendate")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Unmarshal only sees env vars for keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("HTTP_ENGINE", EngineGin)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "agendate")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("OTEL_SERVICE_NAME", "agendate-payments")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("CREDENTIAL_BACKEND", BackendMongo)
	v.SetDefault("CREDENTIAL_CACHE_TTL", 0)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "agendate")
	v.SetDefault("MP_BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("MP_AUTH_URL", "https://auth.mercadopago.com/authorization")
	v.SetDefault("MP_CURRENCY_ID", "ARS")
	v.SetDefault("MP_TIMEOUT", 15*time.Second)
	v.SetDefault("FRONTEND_ORIGIN", "*")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *ServerConfig) Validate() error {
	switch c.CredentialBackend {
	case BackendMongo, BackendRedis:
	default:
		return fmt.Errorf("unknown CREDENTIAL_BACKEND %q", c.CredentialBackend)
	}
	switch c.HTTPEngine {
	case EngineGin, EngineEcho:
	default:
		return fmt.Errorf("unknown HTTP_ENGINE %q", c.HTTPEngine)
	}
	if c.CredentialCacheTTL < 0 {
		return errors.New("CREDENTIAL_CACHE_TTL must not be negative")
	}
	return nil
}
