// Package engine is the entry point used by the CLI: it resolves model
// choices against the configuration, applies the run timeout and logs each
// computation.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/pricer/config"
	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/greeks"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
	"github.com/rustyeddy/pricer/pricing"
	"github.com/rustyeddy/pricer/risk"
)

// ModelConfig overrides the configured model settings for one request.
// Zero fields, and a nil Antithetic, keep the configured value.
type ModelConfig struct {
	Steps         int
	Paths         int
	Antithetic    *bool
	Seed          *uint64
	BumpSize      float64
	Workers       int
	ExerciseDates int
	Confidence    float64
}

type Engine struct {
	cfg *config.Config
	log *zap.Logger
}

// New returns an engine over cfg. A nil logger discards output and a nil
// cfg uses config.Default().
func New(log *zap.Logger, cfg *config.Config) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{cfg: cfg, log: log}
}

func (e *Engine) Config() *config.Config { return e.cfg }

// Model builds the pricing model for kind; an empty kind selects the
// configured default.
func (e *Engine) Model(kind pricing.Kind, mc ModelConfig) (pricing.Model, error) {
	if kind == "" {
		k, err := pricing.ParseKind(e.cfg.Models.Default)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	def := e.cfg.Models
	pc := pricing.Config{
		Steps:         pick(mc.Steps, def.Binomial.Steps),
		Paths:         pick(mc.Paths, def.MonteCarlo.Paths),
		Antithetic:    def.MonteCarlo.Antithetic,
		Seed:          def.MonteCarlo.Seed,
		Workers:       pick(mc.Workers, def.MonteCarlo.Workers),
		ExerciseDates: pick(mc.ExerciseDates, def.MonteCarlo.ExerciseDates),
		Confidence:    pick(mc.Confidence, def.MonteCarlo.Confidence),
	}
	if mc.Antithetic != nil {
		pc.Antithetic = *mc.Antithetic
	}
	if mc.Seed != nil {
		pc.Seed = mc.Seed
	}
	return pricing.New(kind, pc)
}

func (e *Engine) PriceOption(ctx context.Context, mkt market.Context, opt instrument.Option, kind pricing.Kind, mc ModelConfig) (pricing.Result, error) {
	model, err := e.Model(kind, mc)
	if err != nil {
		return pricing.Result{}, err
	}

	ctx, cancel, err := e.withTimeout(ctx)
	if err != nil {
		return pricing.Result{}, err
	}
	defer cancel()

	start := time.Now()
	res, err := model.Price(ctx, mkt, opt)
	if err != nil {
		e.log.Debug("price failed", zap.String("model", string(model.Kind())), zap.Error(err))
		return pricing.Result{}, err
	}

	e.log.Debug("priced option",
		zap.String("model", string(res.Model)),
		zap.String("type", string(opt.Type)),
		zap.String("style", string(opt.Style)),
		zap.Float64("strike", opt.Strike),
		zap.Float64("maturity", opt.Maturity),
		zap.Float64("price", res.Price),
		zap.Float64("std_err", res.StdErr),
		zap.Int("paths", res.Meta.Paths),
		zap.Int("steps", res.Meta.Steps),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (e *Engine) ComputeGreeks(ctx context.Context, mkt market.Context, opt instrument.Option, kind pricing.Kind, mc ModelConfig) (greeks.Result, error) {
	model, err := e.Model(kind, mc)
	if err != nil {
		return greeks.Result{}, err
	}

	ctx, cancel, err := e.withTimeout(ctx)
	if err != nil {
		return greeks.Result{}, err
	}
	defer cancel()

	g := greeks.Engine{BumpSize: pick(mc.BumpSize, e.cfg.Models.Greeks.BumpSize)}
	start := time.Now()
	res, err := g.Compute(ctx, mkt, opt, model)
	if err != nil {
		e.log.Debug("greeks failed", zap.String("model", string(model.Kind())), zap.Error(err))
		return greeks.Result{}, err
	}

	e.log.Debug("computed greeks",
		zap.String("model", string(res.Model)),
		zap.String("method", string(res.Method)),
		zap.Float64("delta", res.Delta),
		zap.Float64("gamma", res.Gamma),
		zap.Float64("vega", res.Vega),
		zap.Float64("theta", res.Theta),
		zap.Float64("rho", res.Rho),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Trace runs a Monte Carlo pricing and returns its running estimates.
func (e *Engine) Trace(ctx context.Context, mkt market.Context, opt instrument.Option, mc ModelConfig) ([]pricing.TracePoint, uint64, error) {
	model, err := e.Model(pricing.Simulation, mc)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel, err := e.withTimeout(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()

	pts, seed, err := model.(*pricing.MonteCarlo).Trace(ctx, mkt, opt)
	if err != nil {
		return nil, 0, err
	}
	e.log.Debug("traced simulation", zap.Int("points", len(pts)), zap.Uint64("seed", seed))
	return pts, seed, nil
}

func (e *Engine) ImpliedVolatility(mkt market.Context, opt instrument.Option, observed float64) (float64, error) {
	vol, err := pricing.ImpliedVol(mkt, opt, observed, e.cfg.ImpliedVol)
	if err != nil {
		e.log.Debug("implied vol failed", zap.Float64("observed", observed), zap.Error(err))
		return 0, err
	}
	e.log.Debug("implied vol", zap.Float64("observed", observed), zap.Float64("vol", vol))
	return vol, nil
}

// ComputeRaroc prices loan under policy with the configured tax rate and
// capital return. A nil policy uses the configured one.
func (e *Engine) ComputeRaroc(loan instrument.Loan, policy risk.CapitalPolicy) (risk.Result, error) {
	if policy == nil {
		p, err := Policy(e.cfg.Credit)
		if err != nil {
			return risk.Result{}, err
		}
		policy = p
	}

	re := risk.Engine{TaxRate: e.cfg.Credit.TaxRate, CapitalReturn: e.cfg.Credit.CapitalReturn}
	res, err := re.Compute(loan, policy)
	if err != nil {
		e.log.Debug("raroc failed", zap.String("policy", policy.Name()), zap.Error(err))
		return risk.Result{}, err
	}

	e.log.Debug("computed raroc",
		zap.String("policy", res.Policy),
		zap.Float64("exposure", res.Exposure),
		zap.Float64("effective_pd", res.EffectivePD),
		zap.Float64("expected_loss", res.ExpectedLoss),
		zap.Float64("economic_capital", res.EconomicCapital),
		zap.Float64("net_income", res.NetIncome),
		zap.Float64("raroc", res.RAROC),
	)
	return res, nil
}

// Screen checks res against the configured limits.
func (e *Engine) Screen(res risk.Result) risk.Decision {
	d := risk.Screen(res, e.cfg.Credit.Limits)
	if !d.Accepted {
		e.log.Info("loan rejected", zap.Int("violations", len(d.Violations)), zap.String("first", d.Violations[0].Code))
	}
	return d
}

// ResolveLoan fills in what the configuration knows about a loan. A
// non-nil pd is used as given, zero included. With pd nil a rated loan
// takes the PD for its rating and term; an unrated one keeps loan.PD.
// country, when set, adds the transfer risk of that country.
func (e *Engine) ResolveLoan(loan instrument.Loan, pd *float64, country string) (instrument.Loan, error) {
	cr := e.cfg.Credit

	switch {
	case pd != nil:
		loan.PD = *pd
	case loan.Rating != "":
		p, err := cr.Ratings.PD(loan.Rating, loan.Maturity)
		if err != nil {
			return instrument.Loan{}, err
		}
		loan.PD = p
	}

	if country != "" {
		c, ok := cr.Countries[country]
		if !ok {
			return instrument.Loan{}, errs.Invalid("country", math.NaN(), "unknown country %q", country)
		}
		pd, err := cr.Ratings.PD(c.Rating, loan.Maturity)
		if err != nil {
			return instrument.Loan{}, fmt.Errorf("country %s: %w", country, err)
		}
		loan.Country = &instrument.CountryRisk{Name: country, PD: pd, TransferRate: c.TransferRate}
	}
	return loan, nil
}

// Policy builds the capital policy named in cr.
func Policy(cr config.Credit) (risk.CapitalPolicy, error) {
	switch cr.Policy {
	case "fixed-rate", "":
		return risk.FixedRate{Rate: cr.CapitalRate}, nil
	case "unexpected-loss":
		return risk.UnexpectedLoss{Multiplier: cr.Multiplier, Correlation: cr.Correlation}, nil
	case "basel-irb":
		return risk.BaselIRB{Correlation: cr.Correlation, Confidence: cr.Confidence}, nil
	default:
		return nil, fmt.Errorf("unknown capital policy %q", cr.Policy)
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc, error) {
	d, err := e.cfg.Models.ParseTimeout()
	if err != nil {
		return nil, nil, fmt.Errorf("models.timeout: %w", err)
	}
	if d <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, cancel, nil
}

func pick[T int | float64](v, def T) T {
	if v != 0 {
		return v
	}
	return def
}
