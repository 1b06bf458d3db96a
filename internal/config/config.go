package config

import (
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds application configuration values.
type Config struct {
	Secret         string   `mapstructure:"SECRET"`
	HTTPPort       string   `mapstructure:"HTTP_PORT"`
	DatabaseDriver string   `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN    string   `mapstructure:"DATABASE_DSN"`
	TokenTTLHours  int      `mapstructure:"TOKEN_TTL_HOURS"`
	BcryptCost     int      `mapstructure:"BCRYPT_COST"`
	LogLevel       string   `mapstructure:"LOG_LEVEL"`
	LogPretty      bool     `mapstructure:"LOG_PRETTY"`
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	MedicineCSV    string `mapstructure:"MEDICINE_CSV"`
	MedicineBundle string `mapstructure:"MEDICINE_BUNDLE"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	BackupDir        string `mapstructure:"BACKUP_DIR"`
	BackupS3Bucket   string `mapstructure:"BACKUP_S3_BUCKET"`
	BackupS3Region   string `mapstructure:"BACKUP_S3_REGION"`
	BackupS3Endpoint string `mapstructure:"BACKUP_S3_ENDPOINT"`
	BackupS3Key      string `mapstructure:"BACKUP_S3_ACCESS_KEY"`
	BackupS3Secret   string `mapstructure:"BACKUP_S3_SECRET_KEY"`
}

var keys = []string{
	"SECRET", "HTTP_PORT", "DATABASE_DRIVER", "DATABASE_DSN", "TOKEN_TTL_HOURS", "BCRYPT_COST",
	"LOG_LEVEL", "LOG_PRETTY", "ALLOWED_ORIGINS", "MEDICINE_CSV", "MEDICINE_BUNDLE",
	"ADMIN_USERNAME", "ADMIN_PASSWORD", "BACKUP_DIR", "BACKUP_S3_BUCKET", "BACKUP_S3_REGION",
	"BACKUP_S3_ENDPOINT", "BACKUP_S3_ACCESS_KEY", "BACKUP_S3_SECRET_KEY",
}

// Load reads configuration from .env and environment variables with reasonable defaults.
func Load() Config {
	// .env is optional on installed desktops
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("SECRET", "dev_secret")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:medbill.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	v.SetDefault("TOKEN_TTL_HOURS", 12)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("BACKUP_S3_REGION", "auto")
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatal().Err(err).Msg("config unmarshal failed")
	}
	cfg.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Warn().Str("value", cfg.HTTPPort).Msg("invalid HTTP_PORT, defaulting to 8080")
		cfg.HTTPPort = "8080"
	}
	if cfg.TokenTTLHours < 1 {
		cfg.TokenTTLHours = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		cfg.BcryptCost = 10
	}

	return cfg
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return ":" + c.HTTPPort
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
