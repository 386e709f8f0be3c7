package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	OIDC      OIDCConfig      `yaml:"oidc"`
	JWT       JWTConfig       `yaml:"jwt"`
	Billing   BillingConfig   `yaml:"billing"`
	AI        AIConfig        `yaml:"ai"`
	Media     MediaConfig     `yaml:"media"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	// AppURL is the web client origin used for post-login and billing redirects.
	AppURL string `yaml:"app_url"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
}

// SessionConfig holds login session settings
type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	TTL           time.Duration `yaml:"ttl"`
	PasswordLogin bool          `yaml:"password_login"`
}

// OIDCConfig holds the identity provider settings
type OIDCConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"userinfo_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

// JWTConfig holds the key used to sign OIDC flow state
type JWTConfig struct {
	PrivateKeyPath string `yaml:"private_key_path"`
	PublicKeyPath  string `yaml:"public_key_path"`
	ExpirationMins int    `yaml:"expiration_mins"`
	Issuer         string `yaml:"issuer"`
}

// BillingConfig holds Stripe settings
type BillingConfig struct {
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	MonthlyPriceID string `yaml:"monthly_price_id"`
	YearlyPriceID  string `yaml:"yearly_price_id"`
}

// AIConfig holds the text generation settings
type AIConfig struct {
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	MaxOutputTokens   int    `yaml:"max_output_tokens"`
	RequireMembership bool   `yaml:"require_membership"`
}

// MediaConfig holds photo storage settings
type MediaConfig struct {
	Dir         string `yaml:"dir"`
	BaseURL     string `yaml:"base_url"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
			AppURL:          "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "weve",
			Database:  "main",
			User:      "root",
			Password:  "root",
		},
		Session: SessionConfig{
			CookieName:    "weve_session",
			TTL:           30 * 24 * time.Hour,
			PasswordLogin: true,
		},
		OIDC: OIDCConfig{
			Scopes: []string{"openid", "email", "profile"},
		},
		JWT: JWTConfig{
			ExpirationMins: 10,
			Issuer:         "api.weve.app",
		},
		AI: AIConfig{
			Model:             "gemini-2.5-flash",
			MaxOutputTokens:   1024,
			RequireMembership: true,
		},
		Media: MediaConfig{
			Dir:         "./data/media",
			BaseURL:     "/media",
			MaxUploadMB: 10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             30,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// WEVE_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("WEVE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	s := &c.Server
	s.Port = getEnv("SERVER_PORT", s.Port)
	s.Env = getEnv("SERVER_ENV", s.Env)
	s.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", s.WriteTimeout)
	s.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	s.AllowedOrigins = getSliceEnv("CORS_ALLOWED_ORIGINS", s.AllowedOrigins)
	s.AppURL = getEnv("APP_URL", s.AppURL)

	d := &c.Database
	d.Host = getEnv("DB_HOST", d.Host)
	d.Port = getEnv("DB_PORT", d.Port)
	d.Namespace = getEnv("DB_NAMESPACE", d.Namespace)
	d.Database = getEnv("DB_DATABASE", d.Database)
	d.User = getEnv("DB_USER", d.User)
	d.Password = getEnv("DB_PASSWORD", d.Password)

	c.Session.CookieName = getEnv("SESSION_COOKIE_NAME", c.Session.CookieName)
	c.Session.TTL = getDurationEnv("SESSION_TTL", c.Session.TTL)
	c.Session.PasswordLogin = getBoolEnv("PASSWORD_LOGIN_ENABLED", c.Session.PasswordLogin)

	o := &c.OIDC
	o.ClientID = getEnv("OIDC_CLIENT_ID", o.ClientID)
	o.ClientSecret = getEnv("OIDC_CLIENT_SECRET", o.ClientSecret)
	o.AuthURL = getEnv("OIDC_AUTH_URL", o.AuthURL)
	o.TokenURL = getEnv("OIDC_TOKEN_URL", o.TokenURL)
	o.UserInfoURL = getEnv("OIDC_USERINFO_URL", o.UserInfoURL)
	o.RedirectURL = getEnv("OIDC_REDIRECT_URL", o.RedirectURL)
	o.Scopes = getSliceEnv("OIDC_SCOPES", o.Scopes)

	j := &c.JWT
	j.PrivateKeyPath = getEnv("JWT_PRIVATE_KEY_PATH", j.PrivateKeyPath)
	j.PublicKeyPath = getEnv("JWT_PUBLIC_KEY_PATH", j.PublicKeyPath)
	j.ExpirationMins = getIntEnv("JWT_EXPIRATION_MINS", j.ExpirationMins)
	j.Issuer = getEnv("JWT_ISSUER", j.Issuer)

	b := &c.Billing
	b.SecretKey = getEnv("STRIPE_SECRET_KEY", b.SecretKey)
	b.WebhookSecret = getEnv("STRIPE_WEBHOOK_SECRET", b.WebhookSecret)
	b.MonthlyPriceID = getEnv("STRIPE_PRICE_MONTHLY", b.MonthlyPriceID)
	b.YearlyPriceID = getEnv("STRIPE_PRICE_YEARLY", b.YearlyPriceID)

	a := &c.AI
	a.APIKey = getEnv("GEMINI_API_KEY", a.APIKey)
	a.Model = getEnv("AI_MODEL", a.Model)
	a.MaxOutputTokens = getIntEnv("AI_MAX_OUTPUT_TOKENS", a.MaxOutputTokens)
	a.RequireMembership = getBoolEnv("AI_REQUIRE_MEMBERSHIP", a.RequireMembership)

	m := &c.Media
	m.Dir = getEnv("MEDIA_DIR", m.Dir)
	m.BaseURL = getEnv("MEDIA_BASE_URL", m.BaseURL)
	m.MaxUploadMB = getIntEnv("MEDIA_MAX_UPLOAD_MB", m.MaxUploadMB)

	r := &c.RateLimit
	r.Enabled = getBoolEnv("RATE_LIMIT_ENABLED", r.Enabled)
	r.RequestsPerSecond = getFloatEnv("RATE_LIMIT_RPS", r.RequestsPerSecond)
	r.Burst = getIntEnv("RATE_LIMIT_BURST", r.Burst)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS cannot contain '*' because session cookies are sent"))
		}
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}
	if c.Session.TTL < time.Hour {
		errs = append(errs, errors.New("SESSION_TTL must be at least 1h"))
	}

	if c.OIDC.IsConfigured() {
		if err := c.OIDC.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("OIDC: %w", err))
		}
		if c.IsProduction() && c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production when OIDC is configured"))
		}
	}
	if !c.OIDC.IsConfigured() && !c.Session.PasswordLogin {
		errs = append(errs, errors.New("at least one login method must be enabled"))
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	if c.Billing.IsConfigured() {
		if err := c.Billing.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("billing: %w", err))
		}
	}

	if c.AI.APIKey != "" && c.AI.Model == "" {
		errs = append(errs, errors.New("AI_MODEL is required when GEMINI_API_KEY is set"))
	}

	if c.Media.Dir == "" {
		errs = append(errs, errors.New("MEDIA_DIR is required"))
	}
	if c.Media.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_UPLOAD_MB must be positive"))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsConfigured returns true if any OIDC client field is set
func (o OIDCConfig) IsConfigured() bool {
	return o.ClientID != "" || o.ClientSecret != "" || o.AuthURL != "" || o.TokenURL != ""
}

// Validate checks that all required OIDC fields are present
func (o OIDCConfig) Validate() error {
	var missing []string
	if o.ClientID == "" {
		missing = append(missing, "OIDC_CLIENT_ID")
	}
	if o.AuthURL == "" {
		missing = append(missing, "OIDC_AUTH_URL")
	}
	if o.TokenURL == "" {
		missing = append(missing, "OIDC_TOKEN_URL")
	}
	if o.RedirectURL == "" {
		missing = append(missing, "OIDC_REDIRECT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsConfigured returns true if a Stripe secret key is set
func (b BillingConfig) IsConfigured() bool {
	return b.SecretKey != ""
}

// Validate checks that all required billing fields are present
func (b BillingConfig) Validate() error {
	var missing []string
	if b.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if b.MonthlyPriceID == "" && b.YearlyPriceID == "" {
		missing = append(missing, "STRIPE_PRICE_MONTHLY or STRIPE_PRICE_YEARLY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
