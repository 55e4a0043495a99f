package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT"`
		Mode           string `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		MaxUploadMB    int    `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Storage struct {
		Path               string `yaml:"path" env:"STORAGE_PATH"`
		DefaultContentType string `yaml:"default_content_type" env:"STORAGE_DEFAULT_CONTENT_TYPE"`
	} `yaml:"storage"`

	Tasks struct {
		FanoutBatchSize int `yaml:"fanout_batch_size" env:"TASKS_FANOUT_BATCH_SIZE"`
	} `yaml:"tasks"`

	// Import holds the cohort assigned to bulk-imported students whose rows
	// do not carry their own semester/year/division/academic year columns.
	Import struct {
		Semester     int    `yaml:"semester" env:"IMPORT_SEMESTER"`
		Year         string `yaml:"year" env:"IMPORT_YEAR"`
		Division     string `yaml:"division" env:"IMPORT_DIVISION"`
		AcademicYear string `yaml:"academic_year" env:"IMPORT_ACADEMIC_YEAR"`
	} `yaml:"import"`

	Auth struct {
		NormalizeLoginEmail bool `yaml:"normalize_login_email" env:"AUTH_NORMALIZE_LOGIN_EMAIL"`
		BcryptCost          int  `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
	} `yaml:"auth"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Sentry struct {
		DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
		Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT"`
	} `yaml:"sentry"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables still win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

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

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = "http://localhost:3000"
	config.Server.MaxUploadMB = 20

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "taskgrade"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Storage.Path = "./data/objects"
	config.Storage.DefaultContentType = "application/pdf"

	config.Tasks.FanoutBatchSize = 20

	config.Import.Semester = 6
	config.Import.Year = "TE"
	config.Import.Division = "B"
	config.Import.AcademicYear = "2024-2025"

	config.Auth.NormalizeLoginEmail = false
	config.Auth.BcryptCost = 10

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Sentry.Environment = "development"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if config.Tasks.FanoutBatchSize <= 0 {
		return fmt.Errorf("tasks fanout batch size must be positive, got %d", config.Tasks.FanoutBatchSize)
	}

	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server max upload size must be positive, got %d", config.Server.MaxUploadMB)
	}

	if config.Import.Semester < 1 || config.Import.Semester > 8 {
		return fmt.Errorf("import semester must be between 1 and 8, got %d", config.Import.Semester)
	}

	if config.Auth.BcryptCost < 4 || config.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth bcrypt cost must be between 4 and 31, got %d", config.Auth.BcryptCost)
	}

	switch config.Import.Year {
	case "FE", "SE", "TE", "BE":
	default:
		return fmt.Errorf("import year must be one of FE, SE, TE, BE, got %q", config.Import.Year)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AllowedOrigins splits the comma separated CORS origin list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// MaxUploadBytes returns the multipart size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
