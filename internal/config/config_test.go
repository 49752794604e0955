package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		APIBaseURL:  "http://localhost:7777",
		HTTPTimeout: 10 * time.Second,
		ToastTTL:    5 * time.Second,
		Port:        "7777",
		JWTSecret:   "secure-secret-at-least-32-chars-long",
		DBDriver:    "sqlite",
		DBPassword:  "secure-password",
		RedisURL:    "localhost:6379",
		Env:         "test",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development config", func(c *Config) {}, false},
		{"Missing base URL", func(c *Config) { c.APIBaseURL = "" }, true},
		{"Relative base URL", func(c *Config) { c.APIBaseURL = "/api" }, true},
		{"Zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Unknown DB driver", func(c *Config) { c.DBDriver = "oracle" }, true},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"Production postgres with weak password", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "postgres"
			c.DBPassword = "password"
		}, true},
		{"Production with strong settings", func(c *Config) {
			c.Env = "production"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
