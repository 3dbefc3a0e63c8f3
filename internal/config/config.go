package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"hustleledger/internal/core"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string

	// AMQP. An empty URL disables the broker.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Recurring sweep
	RecurringInterval time.Duration

	// Budgets
	Timezone              string
	BudgetThresholds      []float64
	DefaultCadence        core.Cadence
	RecordMutedThresholds bool

	// Settings
	PreferenceCacheTTL time.Duration

	LogLevel   string
	ConfigFile string

	fileErr error
}

// Load builds the configuration from defaults, then the optional TOML file
// named by LEDGER_CONFIG_FILE, then environment variables. Errors reading the
// file are reported by Validate.
func Load() *Config {
	cfg := &Config{
		DataBackend:           "memory",
		SQLiteDBPath:          "./data/hustleledger.db",
		AMQPExchange:          "hustleledger",
		AMQPQueue:             "notifications",
		RecurringInterval:     time.Hour,
		Timezone:              "Local",
		BudgetThresholds:      append([]float64(nil), core.DefaultThresholds...),
		DefaultCadence:        core.CadenceMonthly,
		RecordMutedThresholds: true,
		PreferenceCacheTTL:    30 * time.Second,
		LogLevel:              "info",
		ConfigFile:            os.Getenv("LEDGER_CONFIG_FILE"),
	}

	if cfg.ConfigFile != "" {
		cfg.fileErr = cfg.applyFile(cfg.ConfigFile)
	}

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.RecurringInterval = getEnvDuration("RECURRING_INTERVAL", cfg.RecurringInterval)
	cfg.Timezone = getEnv("LEDGER_TIMEZONE", cfg.Timezone)
	cfg.BudgetThresholds = getEnvFloats("BUDGET_THRESHOLDS", cfg.BudgetThresholds)
	cfg.RecordMutedThresholds = getEnvBool("RECORD_MUTED_THRESHOLDS", cfg.RecordMutedThresholds)
	cfg.PreferenceCacheTTL = getEnvDuration("PREFERENCE_CACHE_TTL", cfg.PreferenceCacheTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// AMQPEnabled reports whether a broker URL is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.fileErr != nil {
		errors = append(errors, fmt.Sprintf("config file '%s': %v", c.ConfigFile, c.fileErr))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RecurringInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at least 1 second", c.RecurringInterval))
	} else if c.RecurringInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at most 24 hours", c.RecurringInterval))
	}

	if c.Timezone != "" && !strings.EqualFold(c.Timezone, "local") {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
		}
	}

	if len(c.BudgetThresholds) == 0 {
		errors = append(errors, "budget thresholds cannot be empty")
	}
	for _, t := range c.BudgetThresholds {
		if t < 0 || t > 100 {
			errors = append(errors, fmt.Sprintf("invalid budget threshold %v: must be between 0 and 100", t))
		}
	}

	if !c.DefaultCadence.IsValid() {
		errors = append(errors, fmt.Sprintf("invalid default cadence '%s': must be daily, weekly or monthly", c.DefaultCadence))
	}

	if c.PreferenceCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid preference cache TTL %v: must not be negative", c.PreferenceCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvFloats parses a comma separated list. Any malformed element makes
// the whole value fall back to the default.
func getEnvFloats(key string, defaultValue []float64) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []float64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return defaultValue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
