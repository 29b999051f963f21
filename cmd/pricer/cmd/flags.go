package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/pricer/engine"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
	"github.com/rustyeddy/pricer/pricing"
)

// optionFlags are the market, contract and model flags shared by the
// option commands.
type optionFlags struct {
	spot, rate, dividend, vol float64
	strike, maturity          float64
	optType, style            string

	model         string
	steps, paths  int
	antithetic    bool
	seed          uint64
	workers       int
	exerciseDates int
	confidence    float64
	bump          float64
}

type optionInput struct {
	mkt   market.Context
	opt   instrument.Option
	kind  pricing.Kind
	model engine.ModelConfig
}

func (f *optionFlags) register(cmd *cobra.Command, withModel bool) {
	fl := cmd.Flags()
	fl.Float64VarP(&f.spot, "spot", "s", 100, "spot price")
	fl.Float64VarP(&f.strike, "strike", "k", 100, "strike price")
	fl.Float64VarP(&f.maturity, "maturity", "t", 1, "time to maturity in years")
	fl.Float64VarP(&f.rate, "rate", "r", 0.05, "continuously compounded risk-free rate")
	fl.Float64VarP(&f.dividend, "dividend", "q", 0, "continuous dividend yield")
	fl.Float64Var(&f.vol, "vol", 0.2, "annualized volatility")
	fl.StringVar(&f.optType, "type", "call", "option type (call, put)")
	fl.StringVar(&f.style, "style", "european", "exercise style (european, american)")

	if !withModel {
		return
	}
	fl.StringVarP(&f.model, "model", "m", "", "model (black-scholes, binomial, monte-carlo); default from config")
	fl.IntVar(&f.steps, "steps", 0, "binomial: lattice steps")
	fl.IntVar(&f.paths, "paths", 0, "monte-carlo: number of paths")
	fl.BoolVar(&f.antithetic, "antithetic", true, "monte-carlo: antithetic variates")
	fl.Uint64Var(&f.seed, "seed", 0, "monte-carlo: seed for reproducible runs")
	fl.IntVar(&f.workers, "workers", 0, "monte-carlo: worker goroutines (0 = GOMAXPROCS)")
	fl.IntVar(&f.exerciseDates, "exercise-dates", 0, "monte-carlo: exercise dates for american options")
	fl.Float64Var(&f.confidence, "confidence", 0, "monte-carlo: confidence level of the reported interval")
	fl.Float64Var(&f.bump, "bump", 0, "greeks: relative bump size for finite differences")
}

func (f *optionFlags) parse(cmd *cobra.Command) (optionInput, error) {
	mkt, err := market.New(f.spot, f.rate, f.dividend, f.vol)
	if err != nil {
		return optionInput{}, err
	}
	typ, err := instrument.ParseType(f.optType)
	if err != nil {
		return optionInput{}, err
	}
	style, err := instrument.ParseStyle(f.style)
	if err != nil {
		return optionInput{}, err
	}

	in := optionInput{
		mkt: mkt,
		opt: instrument.Option{Strike: f.strike, Maturity: f.maturity, Type: typ, Style: style},
		model: engine.ModelConfig{
			Steps:         f.steps,
			Paths:         f.paths,
			BumpSize:      f.bump,
			Workers:       f.workers,
			ExerciseDates: f.exerciseDates,
			Confidence:    f.confidence,
		},
	}
	if f.model != "" {
		if in.kind, err = pricing.ParseKind(f.model); err != nil {
			return optionInput{}, err
		}
	}

	// only flags the user set override the config
	if cmd.Flags().Changed("antithetic") {
		a := f.antithetic
		in.model.Antithetic = &a
	}
	if cmd.Flags().Changed("seed") {
		s := f.seed
		in.model.Seed = &s
	}
	return in, nil
}
