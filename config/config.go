package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from
// environment variables or a .env file.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	MOSES_URL=https://moses.internal/apis/v2/fql/extrapolation
//	MOSES_TIMEOUT_SECONDS=30
//	FETCH_PARALLEL=5
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Moses    MosesConfig    // Analytics query service settings
	Postgres PostgresConfig // PostgreSQL connection settings (target store)
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// MosesConfig defines how the analytics query service is reached.
//
// Fields:
//   - URL: the single fixed query endpoint.
//   - Timeout: per-query time budget; a query past it counts as failed.
//   - Parallel: per-day query fan-out cap for date-range reports.
type MosesConfig struct {
	URL      string
	Timeout  time.Duration
	Parallel int
}

// PostgresConfig defines connection details for the target store.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string // computed DSN used by database/sql
}

// AppConfig is the globally accessible configuration instance,
// populated once via LoadConfig().
var AppConfig Config

// LoadConfig initializes the global AppConfig.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// MOSES_URL has no safe default and must be provided; validateConfig
// terminates the app when it is missing.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("MOSES_URL", "")
	viper.SetDefault("MOSES_TIMEOUT_SECONDS", 30)
	viper.SetDefault("FETCH_PARALLEL", 5)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "fql")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Moses: MosesConfig{
			URL:      viper.GetString("MOSES_URL"),
			Timeout:  time.Duration(viper.GetInt("MOSES_TIMEOUT_SECONDS")) * time.Second,
			Parallel: viper.GetInt("FETCH_PARALLEL"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Moses.URL == "" {
		missing = append(missing, "MOSES_URL")
	}
	if AppConfig.Moses.Timeout <= 0 {
		missing = append(missing, "MOSES_TIMEOUT_SECONDS")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
