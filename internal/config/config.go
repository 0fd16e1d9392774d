package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT" validate:"required,numeric"`
	} `yaml:"server"`

	Ops struct {
		// Addr is the listen address of the HTTP ops endpoint
		// (/healthz, /metrics). Empty disables it.
		Addr string `yaml:"addr" env:"OPS_ADDR"`
	} `yaml:"ops"`

	Storage struct {
		DataDir string `yaml:"data_dir" env:"STORAGE_DATA_DIR" validate:"required"`
	} `yaml:"storage"`

	Bootstrap struct {
		AdminUsername string `yaml:"admin_username" env:"BOOTSTRAP_ADMIN_USERNAME" validate:"required"`
		AdminPassword string `yaml:"admin_password" env:"BOOTSTRAP_ADMIN_PASSWORD" validate:"required"`
	} `yaml:"bootstrap"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"required,oneof=text json"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from an optional .env file, an optional
// YAML file and environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults fills in sane defaults so the server runs without any config
// file at all.
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Ops.Addr = ":9090"
	config.Storage.DataDir = "data"
	config.Bootstrap.AdminUsername = "admin"
	config.Bootstrap.AdminPassword = "admin123"
	config.Logging.Level = "info"
	config.Logging.Format = "text"
}
