// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the response ledger backend, notification providers, edge
// protection, and observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// EmailProvider selects the email channel implementation at startup.
type EmailProvider string

// SMSProvider selects the SMS channel implementation at startup.
type SMSProvider string

// LedgerDriver selects the response ledger backend.
type LedgerDriver string

const (
	EmailBrevo EmailProvider = "brevo"
	EmailSMTP  EmailProvider = "smtp"
	EmailNone  EmailProvider = "none"

	SMSBrevo  SMSProvider = "brevo"
	SMSTwilio SMSProvider = "twilio"
	SMSNone   SMSProvider = "none"

	LedgerSQLite   LedgerDriver = "sqlite"
	LedgerPostgres LedgerDriver = "postgres"
	LedgerRedis    LedgerDriver = "redis"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LogConfig controls the global zerolog logger and its optional file sink.
type LogConfig struct {
	Level      string // debug|info|warn|error|fatal|panic
	Pretty     bool   // console writer instead of JSON
	File       string // rotated by lumberjack when set
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LedgerConfig selects and parameterizes the response ledger backend.
type LedgerConfig struct {
	Driver      LedgerDriver
	DBPath      string // sqlite
	DatabaseURL string // postgres DSN
	RedisURL    string // redis://...
	RedisPrefix string
	Timeout     time.Duration // per ledger call
}

// BrevoConfig holds credentials and sender identity for the Brevo APIs.
type BrevoConfig struct {
	APIKey    string
	BaseURL   string
	SMSSender string
}

// SMTPConfig holds SMTP relay settings. Port 465 means implicit TLS.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// TwilioConfig holds Twilio REST credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// NotifyConfig groups everything the notification channels need.
type NotifyConfig struct {
	EmailProvider    EmailProvider
	SMSProvider      SMSProvider
	Timeout          time.Duration // per channel call
	SenderEmail      string
	SenderName       string
	ReplyTo          string
	Locale           string // template language, e.g. "fr" or "en"
	OrganizationName string // optional signature line

	Brevo  BrevoConfig
	SMTP   SMTPConfig
	Twilio TwilioConfig
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must exceed the channel timeout
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	Log            LogConfig
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Auth
	SecretKey string

	// Persistence
	Ledger            LedgerConfig
	ResponsesMaxLimit int

	// Channels
	Notify NotifyConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		Log: LogConfig{
			Level:      strings.ToLower(getenv("LOG_LEVEL", "info")),
			Pretty:     getbool("LOG_PRETTY", false),
			File:       getenv("LOG_FILE", ""),
			MaxSizeMB:  getint("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getint("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getint("LOG_MAX_AGE_DAYS", 28),
		},
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		SecretKey: strings.TrimSpace(getenv("SECRET_KEY", "")),

		Ledger: LedgerConfig{
			Driver:      LedgerDriver(strings.ToLower(getenv("LEDGER_DRIVER", string(LedgerSQLite)))),
			DBPath:      getenv("DB_PATH", "autoresponder.db"),
			DatabaseURL: getenv("DATABASE_URL", ""),
			RedisURL:    getenv("REDIS_URL", ""),
			RedisPrefix: getenv("REDIS_PREFIX", "autoresponder:"),
			Timeout:     getdur("LEDGER_TIMEOUT", 10*time.Second),
		},
		ResponsesMaxLimit: getint("RESPONSES_MAX_LIMIT", 500),

		Notify: NotifyConfig{
			EmailProvider:    EmailProvider(strings.ToLower(getenv("EMAIL_PROVIDER", string(EmailBrevo)))),
			SMSProvider:      SMSProvider(strings.ToLower(getenv("SMS_PROVIDER", string(SMSBrevo)))),
			Timeout:          getdur("CHANNEL_TIMEOUT", 10*time.Second),
			SenderEmail:      getenv("SENDER_EMAIL", ""),
			SenderName:       getenv("SENDER_NAME", "Formulaire"),
			ReplyTo:          getenv("REPLY_TO_EMAIL", ""),
			Locale:           strings.ToLower(getenv("MESSAGE_LOCALE", "fr")),
			OrganizationName: getenv("ORGANIZATION_NAME", ""),
			Brevo: BrevoConfig{
				APIKey:    getenv("BREVO_API_KEY", ""),
				BaseURL:   strings.TrimRight(getenv("BREVO_BASE_URL", "https://api.brevo.com/v3"), "/"),
				SMSSender: getenv("SMS_SENDER", "Info"),
			},
			SMTP: SMTPConfig{
				Host:     getenv("SMTP_HOST", ""),
				Port:     getint("SMTP_PORT", 587),
				Username: getenv("SMTP_USERNAME", ""),
				Password: getenv("SMTP_PASSWORD", ""),
			},
			Twilio: TwilioConfig{
				AccountSID: getenv("TWILIO_ACCOUNT_SID", ""),
				AuthToken:  getenv("TWILIO_AUTH_TOKEN", ""),
				FromNumber: getenv("TWILIO_FROM_NUMBER", ""),
			},
		},

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 20),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "form-autoresponder"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.Log.Level == "warning" {
		cfg.Log.Level = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Ledger.Driver == "postgresql" {
		cfg.Ledger.Driver = LedgerPostgres
	}

	return cfg, cfg.Validate()
}

// Validate checks invariants that Load cannot express as defaults. It is
// exported so tests and alternative loaders can reuse the same rules.
func (cfg Config) Validate() error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}

	switch cfg.Ledger.Driver {
	case LedgerSQLite:
		if strings.TrimSpace(cfg.Ledger.DBPath) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case LedgerPostgres:
		if strings.TrimSpace(cfg.Ledger.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when LEDGER_DRIVER=postgres")
		}
	case LedgerRedis:
		if strings.TrimSpace(cfg.Ledger.RedisURL) == "" {
			return errors.New("REDIS_URL is required when LEDGER_DRIVER=redis")
		}
	default:
		return errors.New("LEDGER_DRIVER must be one of: sqlite, postgres, redis")
	}
	if cfg.Ledger.Timeout <= 0 {
		return errors.New("LEDGER_TIMEOUT must be > 0")
	}
	if cfg.ResponsesMaxLimit < 1 {
		return errors.New("RESPONSES_MAX_LIMIT must be >= 1")
	}

	switch cfg.Notify.EmailProvider {
	case EmailBrevo, EmailSMTP, EmailNone:
	default:
		return errors.New("EMAIL_PROVIDER must be one of: brevo, smtp, none")
	}
	switch cfg.Notify.SMSProvider {
	case SMSBrevo, SMSTwilio, SMSNone:
	default:
		return errors.New("SMS_PROVIDER must be one of: brevo, twilio, none")
	}
	if cfg.Notify.Timeout <= 0 {
		return errors.New("CHANNEL_TIMEOUT must be > 0")
	}
	if cfg.Notify.SMTP.Port <= 0 || cfg.Notify.SMTP.Port > 65535 {
		return errors.New("SMTP_PORT must be a valid TCP port")
	}

	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
