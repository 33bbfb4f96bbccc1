package configs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
// It's populated once by LoadConfig.
var AppConfig Configuration
var once sync.Once

// Configuration defines the structure for application settings.
type Configuration struct {
	Env        string
	ServerPort string
	LogLevel   string
	LogPretty  bool

	JWTSecret string
	JWTTTL    time.Duration

	DBDriver    string
	SQLitePath  string
	DatabaseURL string

	TimeZone string
	Location *time.Location

	OTPExpiry     time.Duration
	OTPCooldown   time.Duration
	OTPMaxPerHour int

	MailBackend      string
	DefaultFromEmail string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SendGridAPIKey   string

	UploadDir string
	MediaURL  string

	// OfficeStart is the HH:MM after which a check-in counts as late.
	OfficeStart string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	// LiveOrigins are the websocket origin patterns allowed besides same-origin.
	LiveOrigins   []string
	EnableSwagger bool
}

const (
	defaultJWTSecret = "attendance-dev-secret"
	envJWTSecretKey  = "JWT_SECRET_KEY"
	defaultTimeZone  = "Asia/Kolkata"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault(envJWTSecretKey, "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("SQLITE_DB_PATH", "data/attendance.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_TIME_ZONE", defaultTimeZone)
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_RESEND_COOLDOWN_SECONDS", 60)
	v.SetDefault("OTP_MAX_SEND_PER_HOUR", 5)
	v.SetDefault("MAIL_BACKEND", "console")
	v.SetDefault("DEFAULT_FROM_EMAIL", "no-reply@attendance.local")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("UPLOAD_DIR", "media")
	v.SetDefault("MEDIA_URL", "/media")
	v.SetDefault("REPORT_OFFICE_START", "10:00")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
	v.SetDefault("LIVE_ORIGIN_PATTERNS", "")
	v.SetDefault("ENABLE_SWAGGER", true)
}

// LoadConfig loads configuration from an optional .env file, environment
// variables and defaults. It should be called once at application startup.
func LoadConfig() {
	once.Do(func() {
		AppConfig = Load(".env")
		log.Info().Str("env", AppConfig.Env).Str("db_driver", AppConfig.DBDriver).Msg("configuration loaded")
	})
}

// Load builds a Configuration without touching AppConfig. A missing dotEnvPath is ignored.
func Load(dotEnvPath string) Configuration {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Warn().Err(err).Str("path", dotEnvPath).Msg("could not load .env file")
			}
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Configuration{
		Env:              strings.ToLower(v.GetString("ENV")),
		ServerPort:       v.GetString("SERVER_PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogPretty:        v.GetBool("LOG_PRETTY"),
		JWTSecret:        v.GetString(envJWTSecretKey),
		JWTTTL:           v.GetDuration("JWT_TTL"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath:       v.GetString("SQLITE_DB_PATH"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		TimeZone:         v.GetString("APP_TIME_ZONE"),
		OTPExpiry:        time.Duration(v.GetInt("OTP_EXPIRY_MINUTES")) * time.Minute,
		OTPCooldown:      time.Duration(v.GetInt("OTP_RESEND_COOLDOWN_SECONDS")) * time.Second,
		OTPMaxPerHour:    v.GetInt("OTP_MAX_SEND_PER_HOUR"),
		MailBackend:      strings.ToLower(v.GetString("MAIL_BACKEND")),
		DefaultFromEmail: v.GetString("DEFAULT_FROM_EMAIL"),
		SMTPHost:         v.GetString("SMTP_HOST"),
		SMTPPort:         v.GetInt("SMTP_PORT"),
		SMTPUsername:     v.GetString("SMTP_USERNAME"),
		SMTPPassword:     v.GetString("SMTP_PASSWORD"),
		SendGridAPIKey:   v.GetString("SENDGRID_API_KEY"),
		UploadDir:        filepath.Clean(v.GetString("UPLOAD_DIR")),
		MediaURL:         strings.TrimRight(v.GetString("MEDIA_URL"), "/"),
		OfficeStart:      v.GetString("REPORT_OFFICE_START"),
		LoginRateLimit:   v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow:  v.GetDuration("LOGIN_RATE_WINDOW"),
		LiveOrigins:      splitList(v.GetString("LIVE_ORIGIN_PATTERNS")),
		EnableSwagger:    v.GetBool("ENABLE_SWAGGER"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
		log.Warn().Msgf("%s is not set, falling back to the development secret. Set it in production.", envJWTSecretKey)
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Warn().Err(err).Str("tz", cfg.TimeZone).Msg("unknown time zone, using UTC")
		loc = time.UTC
		cfg.TimeZone = "UTC"
	}
	cfg.Location = loc

	if cfg.MediaURL == "" {
		cfg.MediaURL = "/media"
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
