package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Email    EmailConfig    `toml:"email"`
	Log      LogConfig      `toml:"log"`
	Limits   LimitsConfig   `toml:"limits"`
	Jobs     JobsConfig     `toml:"jobs"`
}

type ServerConfig struct {
	Port            int      `toml:"port"`
	SiteURL         string   `toml:"site_url"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	SecureCookies   bool     `toml:"secure_cookies"`
}

type DatabaseConfig struct {
	URL     string `toml:"url"`
	Migrate bool   `toml:"migrate"`
}

type AuthConfig struct {
	JWTSecret      string   `toml:"jwt_secret"`
	JWKSURL        string   `toml:"jwks_url"`
	JWKSIssuer     string   `toml:"jwks_issuer"`
	JWKSAudience   string   `toml:"jwks_audience"`
	AccessTokenTTL Duration `toml:"access_token_ttl"`
	SessionTTL     Duration `toml:"session_ttl"`
	InviteTTL      Duration `toml:"invite_ttl"`
	LoginAttempts  int      `toml:"login_attempts"`
	LoginWindow    Duration `toml:"login_window"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

type EmailConfig struct {
	APIURL string `toml:"api_url"`
	APIKey string `toml:"api_key"`
	From   string `toml:"from"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LimitsConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
	ReportRecordCap int `toml:"report_record_cap"`
	ReportFanOut    int `toml:"report_fan_out"`
}

type JobsConfig struct {
	Concurrency         int      `toml:"concurrency"`
	InviteExpiryEvery   Duration `toml:"invite_expiry_every"`
	SessionCleanupEvery Duration `toml:"session_cleanup_every"`
	DashboardWarmEvery  Duration `toml:"dashboard_warm_every"`
}

// Duration decodes TOML strings such as "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			SiteURL:         "http://localhost:3000",
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Database: DatabaseConfig{Migrate: true},
		Auth: AuthConfig{
			AccessTokenTTL: Duration{15 * time.Minute},
			SessionTTL:     Duration{7 * 24 * time.Hour},
			InviteTTL:      Duration{7 * 24 * time.Hour},
			LoginAttempts:  10,
			LoginWindow:    Duration{15 * time.Minute},
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "rescuetrack-reports",
		},
		Email: EmailConfig{
			APIURL: "https://api.resend.com/emails",
			From:   "RescueTrack <noreply@rescuetrack.app>",
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Limits: LimitsConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			ReportRecordCap: 1000,
			ReportFanOut:    8,
		},
		Jobs: JobsConfig{
			Concurrency:         5,
			InviteExpiryEvery:   Duration{15 * time.Minute},
			SessionCleanupEvery: Duration{time.Hour},
			DashboardWarmEvery:  Duration{10 * time.Minute},
		},
	}
}

// PathEnv names the environment variable consulted when no -config flag is given.
const PathEnv = "RESCUETRACK_CONFIG"

// ResolvePath returns the -config flag value, falling back to RESCUETRACK_CONFIG.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(PathEnv)
}

// Load reads the optional TOML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	flag := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	str("SITE_URL", &c.Server.SiteURL)
	flag("SECURE_COOKIES", &c.Server.SecureCookies)
	str("DATABASE_URL", &c.Database.URL)
	flag("DATABASE_MIGRATE", &c.Database.Migrate)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWKS_URL", &c.Auth.JWKSURL)
	str("JWKS_ISSUER", &c.Auth.JWKSIssuer)
	str("JWKS_AUDIENCE", &c.Auth.JWKSAudience)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	if err := num("REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	flag("MINIO_USE_SSL", &c.Minio.UseSSL)
	str("MINIO_BUCKET", &c.Minio.Bucket)
	str("EMAIL_API_URL", &c.Email.APIURL)
	str("EMAIL_API_KEY", &c.Email.APIKey)
	str("EMAIL_FROM", &c.Email.From)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database url is required (DATABASE_URL)"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	for name, d := range map[string]time.Duration{
		"access_token_ttl": c.Auth.AccessTokenTTL.Duration,
		"session_ttl":      c.Auth.SessionTTL.Duration,
		"invite_ttl":       c.Auth.InviteTTL.Duration,
		"login_window":     c.Auth.LoginWindow.Duration,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("auth.%s must be positive", name))
		}
	}
	if c.Auth.JWKSURL != "" && c.Auth.JWKSAudience == "" {
		errs = append(errs, errors.New("auth.jwks_audience is required when jwks_url is set (JWKS_AUDIENCE)"))
	}
	if c.Limits.MaxPageSize <= 0 || c.Limits.DefaultPageSize <= 0 || c.Limits.DefaultPageSize > c.Limits.MaxPageSize {
		errs = append(errs, errors.New("limits: page sizes must be positive and default <= max"))
	}
	if c.Limits.ReportRecordCap <= 0 || c.Limits.ReportFanOut <= 0 {
		errs = append(errs, errors.New("limits: report cap and fan-out must be positive"))
	}
	return errors.Join(errs...)
}
