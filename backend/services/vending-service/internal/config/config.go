package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "smartcashpower/backend/libs/config"
)

// Config defines vending service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"VENDING_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"VENDING_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"VENDING_REDIS_ADDR"`
		Password string `yaml:"password" env:"VENDING_REDIS_PASSWORD"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	} `yaml:"auth"`
	Gateways struct {
		MoMoBaseURL string        `yaml:"momo_base_url" env:"MOMO_BASE_URL"`
		REGBaseURL  string        `yaml:"reg_base_url" env:"REG_BASE_URL"`
		Timeout     time.Duration `yaml:"timeout" env:"GATEWAY_TIMEOUT"`
	} `yaml:"gateways"`
	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`
}

// Load configuration from file/env.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8082"
	cfg.Gateways.Timeout = 10 * time.Second

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(cfg.Gateways.MoMoBaseURL) == "" {
		return nil, errors.New("config: momo base url required")
	}
	if strings.TrimSpace(cfg.Gateways.REGBaseURL) == "" {
		return nil, errors.New("config: reg base url required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8082"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	raw := strings.TrimSpace(c.CORS.AllowedOrigins)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}
