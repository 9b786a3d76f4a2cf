package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains gateway configuration parameters.
type Config struct {
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP     `envPrefix:"HTTP_"`
	Site     Site     `envPrefix:"SITE_"`
	Identity Identity `envPrefix:"IDENTITY_"`
	Database Database `envPrefix:"DATABASE_"`
	Captcha  Captcha  `envPrefix:"CAPTCHA_"`
	Session  Session  `envPrefix:"SESSION_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Site contains the public URLs redirects are validated against.
type Site struct {
	// BaseURL is the gateway's own origin; redirect_to targets must stay on
	// this site.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	// AdminURL is the host platform's admin area, offered to admins after
	// login when the admin-redirect setting is on.
	AdminURL string `env:"ADMIN_URL" envDefault:"/admin"`
}

// Identity contains host platform identity API parameters.
type Identity struct {
	// Mode selects the backend: "remote" talks to the host platform's API,
	// "dev" runs the in-process development backend.
	Mode     string `env:"MODE" envDefault:"remote"`
	Endpoint string `env:"ENDPOINT" envDefault:"http://localhost:9100"`
	// TimeoutSeconds bounds every identity API call.
	TimeoutSeconds int `env:"TIMEOUT_SECONDS" envDefault:"10"`
	// DevSecret signs session tokens in dev mode.
	DevSecret string `env:"DEV_SECRET" envDefault:"devsecret"`
}

// Database contains settings-store connection parameters. An empty DSN
// selects the env-backed static settings store.
type Database struct {
	DSN string `env:"DSN" envDefault:""`

	// Static settings used when no DSN is configured.
	AdminRedirect    bool   `env:"ADMIN_REDIRECT" envDefault:"true"`
	RegistrationOpen bool   `env:"REGISTRATION_OPEN" envDefault:"true"`
	DefaultRole      string `env:"DEFAULT_ROLE" envDefault:"standard"`
}

// Captcha contains CAPTCHA verification parameters.
type Captcha struct {
	VerifyURL      string `env:"VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"5"`

	// Keys used by the env-backed static settings store. With a database
	// configured the stored keys win.
	SiteKey   string `env:"SITE_KEY" envDefault:""`
	SecretKey string `env:"SECRET_KEY" envDefault:""`
}

// Session contains member session cookie parameters.
type Session struct {
	CookieName string `env:"COOKIE_NAME" envDefault:"member_session"`
	Secure     bool   `env:"SECURE" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
