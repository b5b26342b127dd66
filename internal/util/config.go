package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime settings for the gateway and the client.
type Config struct {
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"5000"`

	// Client side
	GatewayURL     string        `envconfig:"GATEWAY_URL" default:"http://localhost:5000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	SceneFile      string        `envconfig:"SCENE_FILE"`
	Theme          string        `envconfig:"THEME" default:"catppuccin"`

	// Gateway side
	DSN                string `envconfig:"DATABASE_URL"`
	MigrationsDir      string `envconfig:"MIGRATIONS_DIR" default:"db/migrations"`
	DemoTokenSecret    string `envconfig:"DEMO_TOKEN_SECRET" default:"jwtviz-demo-secret"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogFile     string `envconfig:"LOG_FILE"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if !strings.HasPrefix(c.GatewayURL, "http://") && !strings.HasPrefix(c.GatewayURL, "https://") {
		return fmt.Errorf("GATEWAY_URL must be an http(s) URL, got %q", c.GatewayURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas. Empty means any origin.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Addr() string { return ":" + c.Port }
