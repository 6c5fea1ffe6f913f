package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// MockAPIPrefix namespaces stub backend variables, e.g. MOCKAPI_PORT.
const MockAPIPrefix = "MOCKAPI"

// MockAPIConfig configures the stub backend binary.
type MockAPIConfig struct {
	Port           int     `envconfig:"PORT" default:"5000"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	RateLimit      float64 `envconfig:"RATE_LIMIT" default:"50"`
	RateBurst      int     `envconfig:"RATE_BURST" default:"100"`
	Seed           bool    `envconfig:"SEED" default:"true"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

func LoadMockAPI() (*MockAPIConfig, error) {
	var cfg MockAPIConfig
	if err := envconfig.Process(MockAPIPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load mockapi config: %w", err)
	}
	return &cfg, nil
}

func (c *MockAPIConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Origins splits AllowedOrigins on commas.
func (c *MockAPIConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
