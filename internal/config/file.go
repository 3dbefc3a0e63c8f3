package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"hustleledger/internal/core"
)

// fileConfig is the TOML overlay. Every field is optional.
type fileConfig struct {
	DataBackend  string        `toml:"data_backend"`
	SQLiteDBPath string        `toml:"sqlite_db_path"`
	Timezone     string        `toml:"timezone"`
	LogLevel     string        `toml:"log_level"`
	Budget       budgetFile    `toml:"budget"`
	Recurring    recurringFile `toml:"recurring"`
	AMQP         amqpFile      `toml:"amqp"`
}

type budgetFile struct {
	Thresholds            []float64 `toml:"thresholds"`
	Cadence               string    `toml:"cadence"`
	RecordMutedThresholds *bool     `toml:"record_muted_thresholds"`
}

type recurringFile struct {
	Interval string `toml:"interval"`
}

type amqpFile struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	var f fileConfig
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	setString(&c.DataBackend, f.DataBackend)
	setString(&c.SQLiteDBPath, f.SQLiteDBPath)
	setString(&c.Timezone, f.Timezone)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.AMQPURL, f.AMQP.URL)
	setString(&c.AMQPExchange, f.AMQP.Exchange)
	setString(&c.AMQPQueue, f.AMQP.Queue)

	if len(f.Budget.Thresholds) > 0 {
		c.BudgetThresholds = f.Budget.Thresholds
	}
	if f.Budget.Cadence != "" {
		c.DefaultCadence = core.Cadence(f.Budget.Cadence)
	}
	if f.Budget.RecordMutedThresholds != nil {
		c.RecordMutedThresholds = *f.Budget.RecordMutedThresholds
	}
	if f.Recurring.Interval != "" {
		d, err := time.ParseDuration(f.Recurring.Interval)
		if err != nil {
			return fmt.Errorf("recurring.interval: %w", err)
		}
		c.RecurringInterval = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
