package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Modes of operation.
const (
	// ModeOnline talks to the kitchen API for menu, auth and orders.
	ModeOnline = "online"
	// ModeOffline serves the built-in menu and records orders locally.
	ModeOffline = "offline"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

const defaultAddr = "0.0.0.0:8080"

// Config is the storefront configuration, loaded from a .env file,
// STOREFRONT_-prefixed environment variables, flags and YAML files.
type Config struct {
	Addr        string        `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	APIURL      string        `default:"http://localhost:5000/api/v1" usage:"Kitchen API base URL" flag:"api-url"`
	Mode        string        `default:"online" usage:"online or offline"`
	DeliveryFee string        `default:"30" usage:"Delivery fee added to every order" flag:"delivery-fee"`
	HTTPTimeout time.Duration `default:"15s" usage:"Kitchen API request timeout" flag:"http-timeout"`
	AuthPoll    time.Duration `default:"1s" usage:"How often the session is re-read" flag:"auth-poll"`
	Store       StoreConfig
	LoginLimit  RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StoreConfig selects where cart, favorites, menu and session state live.
type StoreConfig struct {
	Driver      string `default:"file" usage:"memory, file or postgres"`
	Path        string `default:"storefront.json" usage:"Snapshot path for the file driver; .gz compresses"`
	DatabaseURL string `usage:"PostgreSQL URL for the postgres driver (or DATABASE_URL)" flag:"database-url"`
	Scope       string `default:"default" usage:"Key scope for the postgres driver"`
}

// RateLimitConfig throttles login attempts per client.
type RateLimitConfig struct {
	Max    int           `default:"10" usage:"Login attempts allowed per window"`
	Window time.Duration `default:"1m" usage:"Login rate limit window"`
	// TrustProxy keys the limit by X-Forwarded-For; enable only behind a
	// proxy that overwrites the header.
	TrustProxy bool `default:"false" usage:"Key the login limit by forwarding headers" flag:"trust-proxy"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s" usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads the configuration and checks it.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults honours the PORT and DATABASE_URL variables that
// hosting platforms set.
func (c *Config) applyPlatformDefaults() {
	if c.Store.DatabaseURL == "" {
		c.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// Online reports whether the kitchen API is used.
func (c *Config) Online() bool { return c.Mode == ModeOnline }

// Validate checks option combinations.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeOnline:
		if c.APIURL == "" {
			return errors.New("api url is required in online mode")
		}
	case ModeOffline:
	default:
		return errors.Errorf("unknown mode %q: want %s or %s", c.Mode, ModeOnline, ModeOffline)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Path == "" {
			return errors.New("store path is required for the file driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("database URL is required: set STOREFRONT_STORE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if _, err := c.Fee(); err != nil {
		return err
	}
	return nil
}

// Fee parses DeliveryFee.
func (c *Config) Fee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.DeliveryFee)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse delivery fee %q", c.DeliveryFee)
	}
	if fee.IsNegative() {
		return decimal.Zero, errors.Errorf("negative delivery fee %s", fee)
	}
	return fee, nil
}
