package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	minBcryptCost = 10
	maxBcryptCost = 12
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
	ErrNegativeTTL      = errors.New("SESSION_TTL must not be negative")
	ErrWildcardCORS     = errors.New("CORS_ORIGINS must list explicit origins, \"*\" is not allowed with credentials")
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string   `env:"DATABASE_URL,required"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	JWTSecret           string        `env:"JWT_SECRET,required"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"blogitAuthToken"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	BcryptCost       int `env:"BCRYPT_COST" envDefault:"12"`
	PasswordMinScore int `env:"PASSWORD_MIN_SCORE" envDefault:"3"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`
	LoginRateMax    int           `env:"LOGIN_RATE_MAX" envDefault:"10"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"2097152"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normaliza valores fuera de rango y rechaza los que no tienen arreglo.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.SessionTTL < 0 {
		return ErrNegativeTTL
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return ErrWildcardCORS
		}
		if o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
	if c.BcryptCost < minBcryptCost {
		c.BcryptCost = minBcryptCost
	}
	if c.BcryptCost > maxBcryptCost {
		c.BcryptCost = maxBcryptCost
	}
	if c.PasswordMinScore < 0 || c.PasswordMinScore > 4 {
		c.PasswordMinScore = 3
	}
	if c.LoginRateMax <= 0 {
		c.LoginRateMax = 10
	}
	if c.UploadMaxBytes <= 0 {
		c.UploadMaxBytes = 2 << 20
	}
	return nil
}
