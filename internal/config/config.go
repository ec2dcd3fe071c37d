// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

// IssuerConfig configures the card-management/authorization service.
type IssuerConfig struct {
	Server        ServerConfig        `koanf:"server"`
	Logger        LoggerConfig        `koanf:"logger"`
	Storage       StorageConfig       `koanf:"storage"`
	Database      DatabaseConfig      `koanf:"database"`
	Authorization AuthorizationConfig `koanf:"authorization"`
	Risk          RiskConfig          `koanf:"risk"`
	Issuing       IssuingConfig       `koanf:"issuing"`
}

// GatewayConfig configures the front-end transaction gateway.
type GatewayConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Logger   LoggerConfig   `koanf:"logger"`
	Upstream UpstreamConfig `koanf:"upstream"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory postgres"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type AuthorizationConfig struct {
	VelocityWindow time.Duration `koanf:"velocity_window" validate:"required"`
	MaxPerWindow   int           `koanf:"max_per_window" validate:"required"`
	MaxCVVAttempts int           `koanf:"max_cvv_attempts" validate:"required"`
	MaxFailed      int           `koanf:"max_failed" validate:"required"`
	PreflagFraud   bool          `koanf:"preflag_fraud"`
}

type RiskConfig struct {
	Threshold         int      `koanf:"threshold" validate:"required"`
	HighRiskCountries []string `koanf:"high_risk_countries"`
}

type IssuingConfig struct {
	InitialStatus string `koanf:"initial_status" validate:"required,oneof=Live Active"`
	ExpiryYears   int    `koanf:"expiry_years" validate:"required"`
}

type UpstreamConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"required"`
}

func issuerDefaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":                    "5000",
		"server.read_timeout":            "15s",
		"server.write_timeout":           "15s",
		"server.idle_timeout":            "60s",
		"logger.level":                   "info",
		"storage.driver":                 "memory",
		"database.port":                  5432,
		"database.ssl_mode":              "disable",
		"database.max_open_conns":        10,
		"database.max_idle_conns":        5,
		"database.conn_max_lifetime":     "1h",
		"database.conn_max_idle_time":    "30m",
		"authorization.velocity_window":  "1s",
		"authorization.max_per_window":   3,
		"authorization.max_cvv_attempts": 3,
		"authorization.max_failed":       3,
		"authorization.preflag_fraud":    false,
		"risk.threshold":                 10,
		"risk.high_risk_countries":       []string{"Israel", "Russia"},
		"issuing.initial_status":         "Live",
		"issuing.expiry_years":           7,
	}
}

func gatewayDefaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":          "5002",
		"server.read_timeout":  "15s",
		"server.write_timeout": "15s",
		"server.idle_timeout":  "60s",
		"logger.level":         "info",
		"upstream.base_url":    "http://localhost:5000",
		"upstream.timeout":     "5s",
	}
}

// LoadIssuerConfig reads issuer configuration from ISSUER_* environment
// variables on top of the defaults.
func LoadIssuerConfig() (*IssuerConfig, error) {
	cfg := &IssuerConfig{}
	if err := load("ISSUER_", issuerDefaults(), cfg); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == "postgres" {
		if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Name == "" {
			return nil, fmt.Errorf("postgres storage requires database host, user, and name")
		}
	}
	return cfg, nil
}

// LoadGatewayConfig reads gateway configuration from GATEWAY_* environment
// variables on top of the defaults.
func LoadGatewayConfig() (*GatewayConfig, error) {
	cfg := &GatewayConfig{}
	if err := load("GATEWAY_", gatewayDefaults(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(prefix string, defaults map[string]interface{}, out interface{}) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}

	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, prefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		return fmt.Errorf("load environment variables: %w", err)
	}

	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(out); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
