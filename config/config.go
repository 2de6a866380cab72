// Package config loads the pfa configuration: a YAML file, optionally
// overridden by PFA_* environment variables (a .env file in the working
// directory is loaded first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/allocation"
	"github.com/etnz/rfportfolio/performance"
	"github.com/etnz/rfportfolio/tax"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the pfa configuration.
type Config struct {
	// Ledger is the JSONL transaction file.
	Ledger string `yaml:"ledger"`
	// Instruments is the JSONL instrument file.
	Instruments string `yaml:"instruments"`
	// Snapshots is a JSON file of portfolio valuations, SnapshotsPath the
	// JSONPath expression selecting them.
	Snapshots     string `yaml:"snapshots"`
	SnapshotsPath string `yaml:"snapshots_path"`
	// Benchmark is an optional JSON file of benchmark values, read with
	// SnapshotsPath too.
	Benchmark string `yaml:"benchmark"`
	// Prices is an optional JSON file of current prices by instrument, in
	// the instrument currency, selected by PricesPath.
	Prices     string `yaml:"prices"`
	PricesPath string `yaml:"prices_path"`

	NonResident  bool              `yaml:"non_resident"`
	RiskFreeRate portfolio.Percent `yaml:"risk_free_rate"`
	TradingDays  int               `yaml:"trading_days"`
	LogLevel     string            `yaml:"log_level"`

	Portfolios []tax.Portfolio `yaml:"portfolios"`
	// PriorLosses are losses in roubles declared before the ledger starts,
	// by year.
	PriorLosses map[int]string `yaml:"prior_losses"`

	// Targets are the target weights by asset class.
	Targets        map[string]portfolio.Percent `yaml:"targets"`
	DriftThreshold portfolio.Percent            `yaml:"drift_threshold"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ledger:         "ledger.jsonl",
		Instruments:    "instruments.jsonl",
		SnapshotsPath:  "$",
		PricesPath:     "$",
		RiskFreeRate:   performance.DefaultRiskFreeRate,
		TradingDays:    performance.DefaultTradingDays,
		LogLevel:       "info",
		DriftThreshold: allocation.DefaultThreshold,
	}
}

// Load reads the configuration file at path, or only the defaults when path
// is empty, then applies the environment overrides.
func Load(path string) (*Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %q: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []string
	var err error

	c.Ledger = getEnv("PFA_LEDGER", c.Ledger)
	c.Instruments = getEnv("PFA_INSTRUMENTS", c.Instruments)
	c.Snapshots = getEnv("PFA_SNAPSHOTS", c.Snapshots)
	c.SnapshotsPath = getEnv("PFA_SNAPSHOTS_PATH", c.SnapshotsPath)
	c.Benchmark = getEnv("PFA_BENCHMARK", c.Benchmark)
	c.Prices = getEnv("PFA_PRICES", c.Prices)
	c.PricesPath = getEnv("PFA_PRICES_PATH", c.PricesPath)
	c.LogLevel = getEnv("PFA_LOG_LEVEL", c.LogLevel)

	if c.NonResident, err = getEnvAsBool("PFA_NON_RESIDENT", c.NonResident); err != nil {
		errs = append(errs, err.Error())
	}
	if c.TradingDays, err = getEnvAsInt("PFA_TRADING_DAYS", c.TradingDays); err != nil {
		errs = append(errs, err.Error())
	}
	rf, err := getEnvAsFloat("PFA_RISK_FREE_RATE", float64(c.RiskFreeRate))
	if err != nil {
		errs = append(errs, err.Error())
	}
	c.RiskFreeRate = portfolio.Percent(rf)
	threshold, err := getEnvAsFloat("PFA_DRIFT_THRESHOLD", float64(c.DriftThreshold))
	if err != nil {
		errs = append(errs, err.Error())
	}
	c.DriftThreshold = portfolio.Percent(threshold)

	if len(errs) > 0 {
		return fmt.Errorf("environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Ledger == "" {
		errs = append(errs, errors.New("ledger must be set"))
	}
	if c.TradingDays <= 0 {
		errs = append(errs, fmt.Errorf("trading_days must be positive, got %d", c.TradingDays))
	}
	if c.DriftThreshold < 0 {
		errs = append(errs, fmt.Errorf("drift_threshold cannot be negative, got %v", c.DriftThreshold))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	var sum portfolio.Percent
	for class, w := range c.Targets {
		if w < 0 || w > 100 {
			errs = append(errs, fmt.Errorf("target %q must be within [0, 100], got %v", class, w))
		}
		sum += w
	}
	if sum > 100 && !sum.Equal(100) {
		errs = append(errs, fmt.Errorf("targets add up to %v", sum))
	}

	ids := make(map[string]bool)
	owner := make(map[string]string)
	for i, p := range c.Portfolios {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("portfolio #%d has no id", i+1))
		} else if ids[p.ID] {
			errs = append(errs, fmt.Errorf("portfolio %q is declared twice", p.ID))
		}
		ids[p.ID] = true
		switch p.Regime {
		case tax.Regular, tax.IISA, tax.IISB:
		default:
			errs = append(errs, fmt.Errorf("portfolio %q: unknown regime %q", p.ID, p.Regime))
		}
		for _, acc := range p.Accounts {
			if o, ok := owner[acc]; ok && o != p.ID {
				errs = append(errs, fmt.Errorf("account %q belongs to %q and %q", acc, o, p.ID))
			}
			owner[acc] = p.ID
		}
	}
	if _, err := c.Losses(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Losses parses the declared prior losses.
func (c *Config) Losses() (map[int]decimal.Decimal, error) {
	res := make(map[int]decimal.Decimal, len(c.PriorLosses))
	for year, s := range c.PriorLosses {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("prior loss of %d: %w", year, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("prior loss of %d must be positive, got %s", year, s)
		}
		res[year] = d
	}
	return res, nil
}

// Performance returns the options of performance.Calculate.
func (c *Config) Performance() performance.Options {
	return performance.Options{RiskFreeRate: c.RiskFreeRate, TradingDays: c.TradingDays}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer value %q for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid float value %q for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid boolean value %q for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
