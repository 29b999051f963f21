package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "black-scholes", cfg.Models.Default)
	assert.Equal(t, 500, cfg.Models.Binomial.Steps)
	assert.Equal(t, 100000, cfg.Models.MonteCarlo.Paths)
	assert.Equal(t, 0.08, cfg.Credit.CapitalRate)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			edit:    func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unknown model",
			edit:    func(c *Config) { c.Models.Default = "heston" },
			wantErr: true,
			errMsg:  "models.default",
		},
		{
			name:    "bad timeout",
			edit:    func(c *Config) { c.Models.Timeout = "soon" },
			wantErr: true,
			errMsg:  "models.timeout",
		},
		{
			name:    "zero steps",
			edit:    func(c *Config) { c.Models.Binomial.Steps = 0 },
			wantErr: true,
			errMsg:  "models.binomial.steps must be positive",
		},
		{
			name:    "one path",
			edit:    func(c *Config) { c.Models.MonteCarlo.Paths = 1 },
			wantErr: true,
			errMsg:  "models.monte_carlo.paths must be at least 2",
		},
		{
			name:    "confidence of one",
			edit:    func(c *Config) { c.Models.MonteCarlo.Confidence = 1 },
			wantErr: true,
			errMsg:  "models.monte_carlo.confidence",
		},
		{
			name:    "bump too large",
			edit:    func(c *Config) { c.Models.Greeks.BumpSize = 0.5 },
			wantErr: true,
			errMsg:  "models.greeks.bump_size",
		},
		{
			name:    "inverted iv bounds",
			edit:    func(c *Config) { c.ImpliedVol.Lower = 6 },
			wantErr: true,
			errMsg:  "implied_vol bounds",
		},
		{
			name:    "zero capital rate",
			edit:    func(c *Config) { c.Credit.CapitalRate = 0 },
			wantErr: true,
			errMsg:  "credit.capital_rate must be in (0, 1]",
		},
		{
			name:    "unknown policy",
			edit:    func(c *Config) { c.Credit.Policy = "vibes" },
			wantErr: true,
			errMsg:  "credit.policy",
		},
		{
			name: "unexpected loss without multiplier",
			edit: func(c *Config) {
				c.Credit.Policy = "unexpected-loss"
				c.Credit.Correlation = 0.5
			},
			wantErr: true,
			errMsg:  "credit.multiplier must be positive",
		},
		{
			name:    "basel defaults",
			edit:    func(c *Config) { c.Credit.Policy = "basel-irb" },
			wantErr: false,
		},
		{
			name:    "tax rate of one",
			edit:    func(c *Config) { c.Credit.TaxRate = 1 },
			wantErr: true,
			errMsg:  "credit.tax_rate",
		},
		{
			name:    "rating pd above one",
			edit:    func(c *Config) { c.Credit.Ratings["Aaa"][1] = 1.5 },
			wantErr: true,
			errMsg:  "credit.ratings.Aaa",
		},
		{
			name:    "country with unknown rating",
			edit:    func(c *Config) { c.Credit.Countries["Atlantis"] = Country{Rating: "Zz", TransferRate: 0.1} },
			wantErr: true,
			errMsg:  "credit.countries.Atlantis",
		},
		{
			name:    "csv journal without files",
			edit:    func(c *Config) { c.Journal = JournalConfig{Type: "csv"} },
			wantErr: true,
			errMsg:  "journal options_file and loans_file required for CSV type",
		},
		{
			name:    "sqlite journal without path",
			edit:    func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} },
			wantErr: true,
			errMsg:  "journal db_path required for SQLite type",
		},
		{
			name:    "unknown journal",
			edit:    func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type",
		},
		{
			name:    "bad log level",
			edit:    func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			seed := uint64(42)
			cfg.Models.MonteCarlo.Seed = &seed
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Models, loaded.Models)
			assert.Equal(t, cfg.ImpliedVol, loaded.ImpliedVol)
			assert.Equal(t, cfg.Credit.Ratings, loaded.Credit.Ratings)
			assert.Equal(t, cfg.Credit.Countries, loaded.Credit.Countries)
			assert.Equal(t, cfg.Credit.CapitalRate, loaded.Credit.CapitalRate)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricer.yaml")
	doc := `
models:
  default: mc
  binomial: {steps: 800}
  monte_carlo: {paths: 5000, antithetic: false, seed: 7, exercise_dates: 20, confidence: 0.99}
  greeks: {bump_size: 0.005}
implied_vol: {lower: 0.001, upper: 3, tolerance: 1.0e-10, max_iter: 50}
credit:
  policy: basel-irb
  tax_rate: 0.3
  ratings:
    Ba2: {1: 0.008, 5: 0.056}
  limits: {hurdle_rate: 0.12}
journal: {type: sqlite, db_path: ./runs.db}
log: {level: debug}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Models.Binomial.Steps)
	require.NotNil(t, cfg.Models.MonteCarlo.Seed)
	assert.Equal(t, uint64(7), *cfg.Models.MonteCarlo.Seed)
	assert.Equal(t, 0.056, cfg.Credit.Ratings["Ba2"][5])
	assert.Equal(t, 0.12, cfg.Credit.Limits.HurdleRate)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		timeout  string
		expected string
		wantErr  bool
	}{
		{"1m", "1m0s", false},
		{"30s", "30s", false},
		{"", "0s", false},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			m := ModelsConfig{Timeout: tt.timeout}
			d, err := m.ParseTimeout()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, d.String())
			}
		})
	}
}
