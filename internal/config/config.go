package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file in the working directory.
const FileName = "fundcast.yaml"

// Environment variables that override file settings.
const (
	EnvBudget  = "FUNDCAST_BUDGET"
	EnvLowCash = "FUNDCAST_LOW_CASH"
)

// Config represents the top-level fundcast.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Budget       BudgetConfig       `yaml:"budget"`
	Currency     CurrencyConfig     `yaml:"currency"`
	Thresholds   ThresholdsConfig   `yaml:"thresholds"`
	Sensitivity  SensitivityConfig  `yaml:"sensitivity"`
	Git          GitConfig          `yaml:"git"`
}

// OrganizationConfig identifies who the budget belongs to.
type OrganizationConfig struct {
	Name       string `yaml:"name"`
	FiscalYear int    `yaml:"fiscal_year"`
}

// BudgetConfig locates the budget file, relative to the project directory.
type BudgetConfig struct {
	Path string `yaml:"path"` // .yaml, .yml or .toml
}

// CurrencyConfig names the reporting and local currencies.
type CurrencyConfig struct {
	Base  string `yaml:"base"`
	Local string `yaml:"local"`
}

// ThresholdsConfig controls cash warnings.
type ThresholdsConfig struct {
	LowCash float64 `yaml:"low_cash"`
}

// SensitivityConfig holds the defaults for what-if analyses.
type SensitivityConfig struct {
	RangePct          []float64       `yaml:"range_pct"`
	BreakEven         BreakEvenConfig `yaml:"break_even"`
	ExchangeRateSteps []float64       `yaml:"exchange_rate_steps"`
}

// BreakEvenConfig bounds the break-even search.
type BreakEvenConfig struct {
	Method       string  `yaml:"method"` // closed_form or bisection
	MinPct       float64 `yaml:"min_pct"`
	MaxPct       float64 `yaml:"max_pct"`
	TolerancePct float64 `yaml:"tolerance_pct"`
}

// GitConfig controls versioning of budget changes.
type GitConfig struct {
	Commit      bool   `yaml:"commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a fundcast.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(orgName string, fiscalYear int) *Config {
	return &Config{
		Organization: OrganizationConfig{
			Name:       orgName,
			FiscalYear: fiscalYear,
		},
		Budget: BudgetConfig{
			Path: "budget.yaml",
		},
		Currency: CurrencyConfig{
			Base:  "USD",
			Local: "PKR",
		},
		Thresholds: ThresholdsConfig{
			LowCash: 500000,
		},
		Sensitivity: SensitivityConfig{
			RangePct: []float64{-30, -20, -10, 0, 10, 20, 30},
			BreakEven: BreakEvenConfig{
				Method:       "closed_form",
				MinPct:       -50,
				MaxPct:       50,
				TolerancePct: 0.1,
			},
			ExchangeRateSteps: []float64{0.8, 0.9, 1.0, 1.1, 1.2},
		},
		Git: GitConfig{
			AuthorName:  "fundcast",
			AuthorEmail: "fundcast@localhost",
		},
	}
}

// LoadEnv reads dir/.env into the process environment. Variables already set
// win. A missing file is not an error.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from FUNDCAST_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvBudget); v != "" {
		cfg.Budget.Path = v
	}
	if v := os.Getenv(EnvLowCash); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLowCash, err)
		}
		cfg.Thresholds.LowCash = f
	}
	return nil
}

// LowCash returns the low-cash threshold as a decimal.
func (c *Config) LowCash() decimal.Decimal {
	return decimal.NewFromFloat(c.Thresholds.LowCash)
}

// Decimals converts a list of configured numbers.
func Decimals(vs []float64) []decimal.Decimal {
	if vs == nil {
		return nil
	}
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
