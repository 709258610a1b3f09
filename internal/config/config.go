package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"PORT"`
	GinMode       string        `mapstructure:"GIN_MODE"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	EnableDB      bool          `mapstructure:"ENABLE_DB"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	LogFormat     string        `mapstructure:"LOG_FORMAT"`
	CORSOrigins   []string      `mapstructure:"-"`
	MaxBodyBytes  int64         `mapstructure:"MAX_BODY_BYTES"`
	OCREnabled    bool          `mapstructure:"OCR_ENABLED"`
	TesseractPath string        `mapstructure:"TESSERACT_PATH"`
	OCRTimeout    time.Duration `mapstructure:"OCR_TIMEOUT"`

	DBMaxConns int32 `mapstructure:"DB_MAX_CONNS"`
	DBMinConns int32 `mapstructure:"DB_MIN_CONNS"`

	ChatMaxSessions int           `mapstructure:"CHAT_MAX_SESSIONS"`
	ChatSessionTTL  time.Duration `mapstructure:"CHAT_SESSION_TTL"`
}

var keys = []string{
	"PORT",
	"GIN_MODE",
	"DATABASE_URL",
	"ENABLE_DB",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"CORS_ORIGINS",
	"MAX_BODY_BYTES",
	"OCR_ENABLED",
	"TESSERACT_PATH",
	"OCR_TIMEOUT",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"CHAT_MAX_SESSIONS",
	"CHAT_SESSION_TTL",
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"port":      "PORT",
	"log-level": "LOG_LEVEL",
}

// Load reads .env (if present), then the environment, then any flags from
// flags that were set explicitly. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ENABLE_DB", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("OCR_ENABLED", false)
	v.SetDefault("TESSERACT_PATH", "tesseract")
	v.SetDefault("OCR_TIMEOUT", "30s")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 0)
	v.SetDefault("CHAT_MAX_SESSIONS", 1000)
	v.SetDefault("CHAT_SESSION_TTL", "30m")

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.EnableDB && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("GIN_MODE must be one of debug, release, test; got %q", c.GinMode)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.OCRTimeout < 0 {
		return fmt.Errorf("OCR_TIMEOUT must not be negative")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool size: DB_MIN_CONNS=%d DB_MAX_CONNS=%d", c.DBMinConns, c.DBMaxConns)
	}
	if c.ChatMaxSessions <= 0 {
		return fmt.Errorf("CHAT_MAX_SESSIONS must be positive, got %d", c.ChatMaxSessions)
	}
	if c.ChatSessionTTL <= 0 {
		return fmt.Errorf("CHAT_SESSION_TTL must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
