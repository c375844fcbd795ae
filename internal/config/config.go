package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development" validate:"oneof=development production"`
	Port     string `envconfig:"APP_PORT" default:"8080" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// SummarizerURL is the upload endpoint of the external summarization service.
	SummarizerURL            string `envconfig:"SUMMARIZER_URL" default:"http://localhost:8000/api/upload/" validate:"required,url"`
	SummarizerTimeoutSeconds int    `envconfig:"SUMMARIZER_TIMEOUT_SECONDS" default:"0" validate:"gte=0"`

	UploadMaxMB              int64 `envconfig:"UPLOAD_MAX_MB" default:"32" validate:"gt=0"`
	UploadRateLimitPerMinute int   `envconfig:"UPLOAD_RATE_LIMIT_PER_MINUTE" default:"10" validate:"gt=0"`
	ResultTTLMinutes         int   `envconfig:"RESULT_TTL_MINUTES" default:"30" validate:"gt=0"`
	ShutdownTimeoutSeconds   int   `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10" validate:"gte=0"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*" validate:"min=1"`
	ReportFontPaths    []string `envconfig:"REPORT_FONT_PATHS" default:"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf,/usr/share/fonts/dejavu/DejaVuSans.ttf,/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf" validate:"min=1"`
}

var validate = validator.New()

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// SummarizerTimeout returns zero when the upstream call should not time out.
func (c *Config) SummarizerTimeout() time.Duration {
	return time.Duration(c.SummarizerTimeoutSeconds) * time.Second
}

func (c *Config) UploadMaxBytes() int64 {
	return c.UploadMaxMB << 20
}

func (c *Config) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLMinutes) * time.Minute
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
