package pricing

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

// BlackScholes is the closed-form European model with a continuous
// dividend yield.
type BlackScholes struct{}

func (BlackScholes) Kind() Kind { return ClosedForm }

func (BlackScholes) Price(_ context.Context, mkt market.Context, opt instrument.Option) (Result, error) {
	if err := validate(mkt, opt); err != nil {
		return Result{}, err
	}
	if err := europeanOnly(ClosedForm, opt); err != nil {
		return Result{}, err
	}

	return Result{
		Price: bsPrice(mkt, opt),
		Model: ClosedForm,
		Meta:  Meta{Exercise: string(instrument.European)},
	}, nil
}

// D1D2 returns the Black-Scholes d1 and d2 terms.
func D1D2(mkt market.Context, opt instrument.Option) (float64, float64) {
	volT := mkt.Vol * math.Sqrt(opt.Maturity)
	d1 := (math.Log(mkt.Spot/opt.Strike) + (mkt.Rate-mkt.Dividend+0.5*mkt.Vol*mkt.Vol)*opt.Maturity) / volT
	return d1, d1 - volT
}

// bsPrice assumes validated inputs.
func bsPrice(mkt market.Context, opt instrument.Option) float64 {
	d1, d2 := D1D2(mkt, opt)
	fwdSpot := mkt.Spot * mkt.Carry(opt.Maturity)
	pvStrike := opt.Strike * mkt.Discount(opt.Maturity)

	call := fwdSpot*distuv.UnitNormal.CDF(d1) - pvStrike*distuv.UnitNormal.CDF(d2)
	if opt.Type == instrument.Call {
		return call
	}
	// parity can dip a hair below zero for deep out-of-the-money puts
	return math.Max(call-fwdSpot+pvStrike, 0)
}

// bsVega is dPrice/dSigma, shared by calls and puts.
func bsVega(mkt market.Context, opt instrument.Option) float64 {
	d1, _ := D1D2(mkt, opt)
	return mkt.Spot * mkt.Carry(opt.Maturity) * distuv.UnitNormal.Prob(d1) * math.Sqrt(opt.Maturity)
}
