package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/pricer/pricing"
	"github.com/rustyeddy/pricer/risk"
)

// Config is the complete engine configuration
type Config struct {
	Models     ModelsConfig     `json:"models" yaml:"models"`
	ImpliedVol pricing.IVConfig `json:"implied_vol" yaml:"implied_vol"`
	Credit     Credit           `json:"credit" yaml:"credit"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// ModelsConfig holds the defaults applied when a request leaves a knob at zero
type ModelsConfig struct {
	Default    string           `json:"default" yaml:"default"` // black-scholes, binomial or monte-carlo
	Timeout    string           `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Binomial   BinomialConfig   `json:"binomial" yaml:"binomial"`
	MonteCarlo MonteCarloConfig `json:"monte_carlo" yaml:"monte_carlo"`
	Greeks     GreeksConfig     `json:"greeks" yaml:"greeks"`
}

type BinomialConfig struct {
	Steps int `json:"steps" yaml:"steps"`
}

type MonteCarloConfig struct {
	Paths         int     `json:"paths" yaml:"paths"`
	Antithetic    bool    `json:"antithetic" yaml:"antithetic"`
	Seed          *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Workers       int     `json:"workers" yaml:"workers"` // 0 = GOMAXPROCS
	ExerciseDates int     `json:"exercise_dates" yaml:"exercise_dates"`
	Confidence    float64 `json:"confidence" yaml:"confidence"`
}

type GreeksConfig struct {
	BumpSize float64 `json:"bump_size" yaml:"bump_size"`
}

// Credit configures the RAROC engine and its capital policy
type Credit struct {
	Policy        string  `json:"policy" yaml:"policy"` // fixed-rate, unexpected-loss or basel-irb
	CapitalRate   float64 `json:"capital_rate,omitempty" yaml:"capital_rate,omitempty"`
	Multiplier    float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	Correlation   float64 `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	Confidence    float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	TaxRate       float64 `json:"tax_rate" yaml:"tax_rate"`
	CapitalReturn float64 `json:"capital_return" yaml:"capital_return"`

	Limits    risk.Limits        `json:"limits" yaml:"limits"`
	Ratings   risk.RatingTable   `json:"ratings,omitempty" yaml:"ratings,omitempty"`
	Countries map[string]Country `json:"countries,omitempty" yaml:"countries,omitempty"`
}

// Country ties a country to the rating used for its transfer risk
type Country struct {
	Rating       string  `json:"rating" yaml:"rating"`
	TransferRate float64 `json:"transfer_rate" yaml:"transfer_rate"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	OptionsFile string `json:"options_file,omitempty" yaml:"options_file,omitempty"`
	LoansFile   string `json:"loans_file,omitempty" yaml:"loans_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// ParseTimeout converts the timeout string to a time.Duration. Empty means
// no timeout.
func (m ModelsConfig) ParseTimeout() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(m.Timeout)
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Models.validate(); err != nil {
		return err
	}
	if err := c.validateImpliedVol(); err != nil {
		return err
	}
	if err := c.Credit.validate(); err != nil {
		return err
	}
	if err := c.Journal.validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

func (m ModelsConfig) validate() error {
	if _, err := pricing.ParseKind(m.Default); err != nil {
		return fmt.Errorf("models.default: %w", err)
	}
	if d, err := m.ParseTimeout(); err != nil || d < 0 {
		return fmt.Errorf("models.timeout must be a non-negative duration such as 30s")
	}
	if m.Binomial.Steps <= 0 {
		return fmt.Errorf("models.binomial.steps must be positive")
	}
	mc := m.MonteCarlo
	if mc.Paths < 2 {
		return fmt.Errorf("models.monte_carlo.paths must be at least 2")
	}
	if mc.Workers < 0 {
		return fmt.Errorf("models.monte_carlo.workers must be non-negative")
	}
	if mc.ExerciseDates <= 0 {
		return fmt.Errorf("models.monte_carlo.exercise_dates must be positive")
	}
	if mc.Confidence <= 0 || mc.Confidence >= 1 {
		return fmt.Errorf("models.monte_carlo.confidence must be between 0 and 1")
	}
	if m.Greeks.BumpSize <= 0 || m.Greeks.BumpSize >= 0.5 {
		return fmt.Errorf("models.greeks.bump_size must be between 0 and 0.5")
	}
	return nil
}

func (c *Config) validateImpliedVol() error {
	iv := c.ImpliedVol
	if iv.Lower <= 0 || iv.Upper <= iv.Lower {
		return fmt.Errorf("implied_vol bounds must satisfy 0 < lower < upper")
	}
	if iv.Tolerance <= 0 {
		return fmt.Errorf("implied_vol.tolerance must be positive")
	}
	if iv.MaxIter <= 0 {
		return fmt.Errorf("implied_vol.max_iter must be positive")
	}
	return nil
}

func (cr Credit) validate() error {
	switch cr.Policy {
	case "fixed-rate":
		if cr.CapitalRate <= 0 || cr.CapitalRate > 1 {
			return fmt.Errorf("credit.capital_rate must be in (0, 1] for the fixed-rate policy")
		}
	case "unexpected-loss":
		if cr.Multiplier <= 0 {
			return fmt.Errorf("credit.multiplier must be positive for the unexpected-loss policy")
		}
		if cr.Correlation <= 0 || cr.Correlation > 1 {
			return fmt.Errorf("credit.correlation must be in (0, 1] for the unexpected-loss policy")
		}
	case "basel-irb":
		if cr.Correlation < 0 || cr.Correlation >= 1 {
			return fmt.Errorf("credit.correlation must be in [0, 1) for the basel-irb policy")
		}
		if cr.Confidence != 0 && (cr.Confidence <= 0.5 || cr.Confidence >= 1) {
			return fmt.Errorf("credit.confidence must be in (0.5, 1) for the basel-irb policy")
		}
	default:
		return fmt.Errorf("credit.policy must be 'fixed-rate', 'unexpected-loss' or 'basel-irb'")
	}

	if cr.TaxRate < 0 || cr.TaxRate >= 1 {
		return fmt.Errorf("credit.tax_rate must be in [0, 1)")
	}
	if cr.CapitalReturn < 0 {
		return fmt.Errorf("credit.capital_return must be non-negative")
	}

	for rating, terms := range cr.Ratings {
		for years, pd := range terms {
			if years <= 0 {
				return fmt.Errorf("credit.ratings.%s: term %d must be positive", rating, years)
			}
			if pd < 0 || pd > 1 {
				return fmt.Errorf("credit.ratings.%s: pd %g must be in [0, 1]", rating, pd)
			}
		}
	}
	for name, c := range cr.Countries {
		if _, ok := cr.Ratings[c.Rating]; !ok {
			return fmt.Errorf("credit.countries.%s: unknown rating %q", name, c.Rating)
		}
		if c.TransferRate < 0 || c.TransferRate > 1 {
			return fmt.Errorf("credit.countries.%s: transfer_rate must be in [0, 1]", name)
		}
	}
	return nil
}

func (j JournalConfig) validate() error {
	switch j.Type {
	case "none", "":
	case "csv":
		if j.OptionsFile == "" || j.LoansFile == "" {
			return fmt.Errorf("journal options_file and loans_file required for CSV type")
		}
	case "sqlite":
		if j.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Models: ModelsConfig{
			Default:  string(pricing.ClosedForm),
			Timeout:  "1m",
			Binomial: BinomialConfig{Steps: pricing.DefaultSteps},
			MonteCarlo: MonteCarloConfig{
				Paths:         pricing.DefaultPaths,
				Antithetic:    true,
				ExerciseDates: pricing.DefaultExerciseDates,
				Confidence:    pricing.DefaultConfidence,
			},
			Greeks: GreeksConfig{BumpSize: 0.01},
		},
		ImpliedVol: pricing.DefaultIVConfig(),
		Credit: Credit{
			Policy:      "fixed-rate",
			CapitalRate: 0.08,
			Ratings:     DefaultRatings(),
			Countries: map[string]Country{
				"France":        {Rating: "Ba1", TransferRate: 0.35},
				"United States": {Rating: "Baa1", TransferRate: 0.20},
				"Other":         {Rating: "B1", TransferRate: 0.50},
			},
		},
		Journal: JournalConfig{Type: "none"},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultRatings is a cumulative default table in the style of the agency
// studies, by 1, 3 and 5 year terms.
func DefaultRatings() risk.RatingTable {
	return risk.RatingTable{
		"Aaa":  {1: 0.0001, 3: 0.0004, 5: 0.0009},
		"Aa2":  {1: 0.0002, 3: 0.0008, 5: 0.0018},
		"A2":   {1: 0.0006, 3: 0.0022, 5: 0.0045},
		"Baa1": {1: 0.0012, 3: 0.0048, 5: 0.0095},
		"Baa2": {1: 0.0017, 3: 0.0070, 5: 0.0135},
		"Baa3": {1: 0.0027, 3: 0.0110, 5: 0.0210},
		"Ba1":  {1: 0.0050, 3: 0.0200, 5: 0.0380},
		"Ba2":  {1: 0.0080, 3: 0.0310, 5: 0.0560},
		"Ba3":  {1: 0.0140, 3: 0.0500, 5: 0.0880},
		"B1":   {1: 0.0220, 3: 0.0750, 5: 0.1250},
		"B2":   {1: 0.0330, 3: 0.1050, 5: 0.1650},
		"B3":   {1: 0.0500, 3: 0.1450, 5: 0.2200},
		"Caa1": {1: 0.0850, 3: 0.2200, 5: 0.3100},
	}
}
