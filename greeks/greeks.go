// Package greeks computes first and second order sensitivities of an
// option price. Closed-form models get exact formulas; every other model
// is bumped and repriced.
package greeks

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
	"github.com/rustyeddy/pricer/pricing"
)

type Method string

const (
	Analytic         Method = "analytic"
	FiniteDifference Method = "finite-difference"
)

const (
	DefaultBumpSize = 0.01

	// floor for the rate bump so that r = 0 still moves
	minRateBump = 1e-4
)

// Result holds the Greeks in model units: Vega per 1.00 of vol, Rho per
// 1.00 of rate and Theta per year of calendar time.
type Result struct {
	Price  float64      `json:"price"`
	Delta  float64      `json:"delta"`
	Gamma  float64      `json:"gamma"`
	Vega   float64      `json:"vega"`
	Theta  float64      `json:"theta"`
	Rho    float64      `json:"rho"`
	Method Method       `json:"method"`
	Model  pricing.Kind `json:"model"`
	Bump   float64      `json:"bump,omitempty"`

	// Base is the pricing run the Greeks were taken from.
	Base pricing.Result `json:"base"`
}

// spotLadder is implemented by models that can value spot bumps of an
// American option under one exercise policy.
type spotLadder interface {
	SpotLadder(ctx context.Context, mkt market.Context, opt instrument.Option, h float64) (pricing.Ladder, error)
}

// Engine computes Greeks. BumpSize is the relative bump for finite
// differences; zero selects DefaultBumpSize.
type Engine struct {
	BumpSize float64
}

func (e Engine) Compute(ctx context.Context, mkt market.Context, opt instrument.Option, model pricing.Model) (Result, error) {
	b := e.BumpSize
	if b == 0 {
		b = DefaultBumpSize
	}
	if !(b > 0 && b < 0.5) {
		return Result{}, errs.Invalid("bump_size", e.BumpSize, "must be in (0, 0.5)")
	}

	model = pricing.Pin(model)
	base, err := model.Price(ctx, mkt, opt)
	if err != nil {
		return Result{}, err
	}

	if model.Kind() == pricing.ClosedForm {
		r := analytic(mkt, opt)
		r.Price = base.Price
		r.Base = base
		return r, nil
	}
	return bumped(ctx, mkt, opt, model, base, b)
}

func analytic(mkt market.Context, opt instrument.Option) Result {
	d1, d2 := pricing.D1D2(mkt, opt)
	n := distuv.UnitNormal
	sqrtT := math.Sqrt(opt.Maturity)
	carry := mkt.Carry(opt.Maturity)
	disc := mkt.Discount(opt.Maturity)
	pdf := n.Prob(d1)

	r := Result{
		Gamma:  carry * pdf / (mkt.Spot * mkt.Vol * sqrtT),
		Vega:   mkt.Spot * carry * pdf * sqrtT,
		Method: Analytic,
		Model:  pricing.ClosedForm,
	}
	decay := -mkt.Spot * carry * pdf * mkt.Vol / (2 * sqrtT)

	if opt.Type == instrument.Call {
		r.Delta = carry * n.CDF(d1)
		r.Theta = decay - mkt.Rate*opt.Strike*disc*n.CDF(d2) + mkt.Dividend*mkt.Spot*carry*n.CDF(d1)
		r.Rho = opt.Strike * opt.Maturity * disc * n.CDF(d2)
	} else {
		r.Delta = carry * (n.CDF(d1) - 1)
		r.Theta = decay + mkt.Rate*opt.Strike*disc*n.CDF(-d2) - mkt.Dividend*mkt.Spot*carry*n.CDF(-d1)
		r.Rho = -opt.Strike * opt.Maturity * disc * n.CDF(-d2)
	}
	return r
}

// bumped uses centred differences with relative bumps. model must be
// pinned so every reprice sees the same random numbers.
func bumped(ctx context.Context, mkt market.Context, opt instrument.Option, model pricing.Model, base pricing.Result, b float64) (Result, error) {
	reprice := func(param string, value float64, m market.Context, o instrument.Option) (float64, error) {
		res, err := model.Price(ctx, m, o)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, errs.Unstable(param, value, "repricing with bumped %s failed: %v", param, err)
		}
		return res.Price, nil
	}
	pair := func(param string, x, h float64, with func(float64) (market.Context, instrument.Option)) (float64, float64, error) {
		mu, ou := with(x + h)
		vu, err := reprice(param, x+h, mu, ou)
		if err != nil {
			return 0, 0, err
		}
		md, od := with(x - h)
		vd, err := reprice(param, x-h, md, od)
		if err != nil {
			return 0, 0, err
		}
		return vu, vd, nil
	}

	withSpot := func(s float64) (market.Context, instrument.Option) { return mkt.WithSpot(s), opt }
	withVol := func(v float64) (market.Context, instrument.Option) { return mkt.WithVol(v), opt }
	withRate := func(r float64) (market.Context, instrument.Option) { return mkt.WithRate(r), opt }
	withT := func(t float64) (market.Context, instrument.Option) { return mkt, opt.WithMaturity(t) }

	out := Result{Price: base.Price, Method: FiniteDifference, Model: model.Kind(), Bump: b, Base: base}

	hS := b * mkt.Spot
	mid := base.Price
	var up, down float64
	var err error
	if l, ok := model.(spotLadder); ok && opt.Style == instrument.American {
		// refitting the exercise boundary per bump swamps the second difference
		lad, lerr := l.SpotLadder(ctx, mkt, opt, hS)
		if lerr != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return Result{}, errs.Unstable("spot", mkt.Spot, "spot ladder failed: %v", lerr)
		}
		up, mid, down = lad.Up, lad.Mid, lad.Down
	} else if up, down, err = pair("spot", mkt.Spot, hS, withSpot); err != nil {
		return Result{}, err
	}
	out.Delta = (up - down) / (2 * hS)
	out.Gamma = (up - 2*mid + down) / (hS * hS)

	hV := b * mkt.Vol
	if up, down, err = pair("vol", mkt.Vol, hV, withVol); err != nil {
		return Result{}, err
	}
	out.Vega = (up - down) / (2 * hV)

	hT := b * opt.Maturity
	if up, down, err = pair("maturity", opt.Maturity, hT, withT); err != nil {
		return Result{}, err
	}
	out.Theta = -(up - down) / (2 * hT)

	hR := math.Max(b*math.Abs(mkt.Rate), minRateBump)
	if up, down, err = pair("rate", mkt.Rate, hR, withRate); err != nil {
		return Result{}, err
	}
	out.Rho = (up - down) / (2 * hR)

	return out, nil
}
