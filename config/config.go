/*
Package config loads runtime settings from the environment.

SOURCES (later wins):
  1. Defaults from struct tags
  2. .env, then .env.local, when present in the working directory
  3. Process environment
  4. Command-line flags (applied by cmd/angkakredit)

VARIABLES:
  PORT           HTTP port (8080)
  DB_PATH        SQLite file, ":memory:" for a throwaway store (angka_kredit.db)
  LOG_LEVEL      debug | info | warn | error (info)
  LOG_FORMAT     text | json (text)
  TABLES_FILE    JSON lookup-table override, empty for the built-in tables
  TEMPLATE_FILE  legacy akumulasi template, empty for the built-in one
  CORS_ORIGINS   comma-separated allowed origins (*)
  REPORT_CITY    place printed when a document has none
*/
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultEnvFiles are loaded by Load when they exist.
var DefaultEnvFiles = []string{".env", ".env.local"}

type Config struct {
	Port         int      `env:"PORT" envDefault:"8080"`
	DBPath       string   `env:"DB_PATH" envDefault:"angka_kredit.db"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string   `env:"LOG_FORMAT" envDefault:"text"`
	TablesFile   string   `env:"TABLES_FILE"`
	TemplateFile string   `env:"TEMPLATE_FILE"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	ReportCity   string   `env:"REPORT_CITY"`
}

// Load reads the default env files, then the environment.
func Load() (*Config, error) {
	return LoadFiles(DefaultEnvFiles...)
}

// LoadFiles reads the given env files that exist, then the environment.
// Variables already set in the process are not overridden by the files.
func LoadFiles(files ...string) (*Config, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// LogrusLevel maps LOG_LEVEL to a logrus level. Unknown values give info.
func (c *Config) LogrusLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger builds the application logger.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogrusLevel())
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
