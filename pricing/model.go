// Package pricing values vanilla options under three interchangeable
// models: closed-form Black-Scholes, a Cox-Ross-Rubinstein lattice and
// Monte Carlo simulation.
package pricing

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

// Kind identifies one of the fixed set of models.
type Kind string

const (
	ClosedForm Kind = "black-scholes"
	Lattice    Kind = "binomial"
	Simulation Kind = "monte-carlo"
)

const (
	DefaultSteps         = 500
	DefaultPaths         = 100_000
	DefaultExerciseDates = 50
	DefaultConfidence    = 0.95
)

// Model prices one option against one market snapshot.
type Model interface {
	Kind() Kind
	Price(ctx context.Context, mkt market.Context, opt instrument.Option) (Result, error)
}

type Result struct {
	Price  float64 `json:"price"`
	StdErr float64 `json:"std_err,omitempty"` // Monte Carlo only
	Model  Kind    `json:"model"`
	Meta   Meta    `json:"meta"`
}

// Meta records how a price was produced.
type Meta struct {
	Steps      int     `json:"steps,omitempty"`
	Paths      int     `json:"paths,omitempty"`
	Antithetic bool    `json:"antithetic,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
	Workers    int     `json:"workers,omitempty"`
	Exercise   string  `json:"exercise"`
	Confidence float64 `json:"confidence,omitempty"`
	Lower      float64 `json:"lower,omitempty"`
	Upper      float64 `json:"upper,omitempty"`
}

// Config carries the per-model knobs. Zero values mean "use the default".
type Config struct {
	Steps         int
	Paths         int
	Antithetic    bool
	Seed          *uint64
	Workers       int
	ExerciseDates int
	Confidence    float64
}

// ParseKind maps user input, including common aliases, to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "black-scholes", "blackscholes", "bs", "closed-form":
		return ClosedForm, nil
	case "binomial", "crr", "lattice", "tree":
		return Lattice, nil
	case "monte-carlo", "montecarlo", "mc", "simulation":
		return Simulation, nil
	default:
		return "", fmt.Errorf("unknown model %q (supported: black-scholes, binomial, monte-carlo)", name)
	}
}

// New builds the model for kind.
func New(kind Kind, cfg Config) (Model, error) {
	switch kind {
	case ClosedForm:
		return BlackScholes{}, nil

	case Lattice:
		steps := cfg.Steps
		if steps == 0 {
			steps = DefaultSteps
		}
		return Binomial{Steps: steps}, nil

	case Simulation:
		mc := &MonteCarlo{
			Paths:         cfg.Paths,
			Antithetic:    cfg.Antithetic,
			Workers:       cfg.Workers,
			ExerciseDates: cfg.ExerciseDates,
			Confidence:    cfg.Confidence,
		}
		if cfg.Seed != nil {
			seed := *cfg.Seed
			mc.Seed = &seed
		}
		if mc.Paths == 0 {
			mc.Paths = DefaultPaths
		}
		return mc, nil

	default:
		return nil, fmt.Errorf("unknown model %q", kind)
	}
}

// Pin returns a model that reproduces the same random numbers on every
// call. Deterministic models are returned unchanged.
func Pin(m Model) Model {
	mc, ok := m.(*MonteCarlo)
	if !ok || mc.Seed != nil {
		return m
	}
	pinned := *mc
	seed := rand.Uint64()
	pinned.Seed = &seed
	return &pinned
}

func validate(mkt market.Context, opt instrument.Option) error {
	if err := mkt.Validate(); err != nil {
		return err
	}
	return opt.Validate()
}

func europeanOnly(k Kind, opt instrument.Option) error {
	if opt.Style != instrument.European {
		return errs.Invalid("style", math.NaN(), "%s supports european exercise only, got %s", k, opt.Style)
	}
	return nil
}
