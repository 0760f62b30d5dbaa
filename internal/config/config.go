package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment (and an
// optional .env file in the working directory).
type Config struct {
	Port            string        `mapstructure:"APP_PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	LogMode string `mapstructure:"LOG_MODE"` // production | development
	LogFile string `mapstructure:"LOG_FILE"` // empty disables the rotating file

	RedisAddr string `mapstructure:"REDIS_ADDR"` // empty disables the geocode cache

	GeocoderURL       string        `mapstructure:"GEOCODER_URL"`
	GeocoderUserAgent string        `mapstructure:"GEOCODER_USER_AGENT"`
	GeocoderTimeout   time.Duration `mapstructure:"GEOCODER_TIMEOUT"`
	FallbackLat       float64       `mapstructure:"GEOCODER_FALLBACK_LAT"`
	FallbackLon       float64       `mapstructure:"GEOCODER_FALLBACK_LON"`

	// CartAbandonAfter of zero keeps abandoned carts forever.
	CartAbandonAfter   time.Duration `mapstructure:"CART_ABANDON_AFTER"`
	CartReaperSchedule string        `mapstructure:"CART_REAPER_SCHEDULE"`
}

var defaults = map[string]interface{}{
	"APP_PORT":              "8080",
	"DATABASE_URL":          "",
	"SHUTDOWN_TIMEOUT":      "15s",
	"JWT_SECRET":            "",
	"JWT_TTL":               "24h",
	"LOG_MODE":              "development",
	"LOG_FILE":              "",
	"REDIS_ADDR":            "",
	"GEOCODER_URL":          "https://nominatim.openstreetmap.org",
	"GEOCODER_USER_AGENT":   "predobro/1.0",
	"GEOCODER_TIMEOUT":      "3s",
	"GEOCODER_FALLBACK_LAT": 42.6977,
	"GEOCODER_FALLBACK_LON": 23.3219,
	"CART_ABANDON_AFTER":    "0s",
	"CART_REAPER_SCHEDULE":  "@every 15m",
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// Every key needs a default so AutomaticEnv picks it up on Unmarshal.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.CartAbandonAfter < 0 {
		errs = append(errs, errors.New("CART_ABANDON_AFTER must not be negative"))
	}
	return errors.Join(errs...)
}
