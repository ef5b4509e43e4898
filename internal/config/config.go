package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int    `env:"DB_MIN_CONNS" envDefault:"1"`
	AppBaseURL  string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	EmailProvider  string `env:"EMAIL_PROVIDER" envDefault:"smtp"`
	EmailFrom      string `env:"EMAIL_FROM"`
	EmailFromName  string `env:"EMAIL_FROM_NAME" envDefault:"ImmoApp"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPass       string `env:"SMTP_PASS"`
	SMTPUseTLS     bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	OAuthCallbackSecret  string `env:"OAUTH_CALLBACK_SECRET"`

	BcryptCost           int           `env:"BCRYPT_COST" envDefault:"12"` // minimo 10
	PasswordMinLength    int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResendLimitWindow    time.Duration `env:"RESEND_LIMIT_WINDOW" envDefault:"10m"`
	ResendLimitMax       int           `env:"RESEND_LIMIT_MAX" envDefault:"3"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
