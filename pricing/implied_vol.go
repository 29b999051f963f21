package pricing

import (
	"errors"
	"math"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
	"github.com/rustyeddy/pricer/numeric"
)

// IVConfig bounds the implied volatility search.
type IVConfig struct {
	Lower     float64 `json:"lower" yaml:"lower"`
	Upper     float64 `json:"upper" yaml:"upper"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	MaxIter   int     `json:"max_iter" yaml:"max_iter"`
}

func DefaultIVConfig() IVConfig {
	return IVConfig{Lower: 1e-4, Upper: 5, Tolerance: 1e-8, MaxIter: 100}
}

// ImpliedVol finds the Black-Scholes volatility that reproduces observed.
// mkt.Vol is ignored.
func ImpliedVol(mkt market.Context, opt instrument.Option, observed float64, cfg IVConfig) (float64, error) {
	if !(observed > 0) || math.IsInf(observed, 0) {
		return 0, errs.Invalid("price", observed, "observed price must be positive and finite")
	}
	mkt.Vol = cfg.Lower
	if err := validate(mkt, opt); err != nil {
		return 0, err
	}
	if err := europeanOnly(ClosedForm, opt); err != nil {
		return 0, err
	}

	f := func(vol float64) float64 {
		return bsPrice(mkt.WithVol(vol), opt) - observed
	}
	df := func(vol float64) float64 {
		return bsVega(mkt.WithVol(vol), opt)
	}

	// Brenner-Subrahmanyam starting point
	x0 := math.Sqrt(2*math.Pi/opt.Maturity) * observed / mkt.Spot
	x0 = math.Min(math.Max(x0, cfg.Lower), cfg.Upper)

	root, err := numeric.SafeNewton(f, df, cfg.Lower, cfg.Upper, x0, cfg.Tolerance, cfg.MaxIter)
	if err != nil {
		if errors.Is(err, errs.ErrConvergence) {
			return 0, errs.NotConverged("vol", observed, "no implied volatility in [%g, %g]: %v", cfg.Lower, cfg.Upper, err)
		}
		return 0, err
	}
	return root.X, nil
}
