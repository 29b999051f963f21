package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

// Binomial is a Cox-Ross-Rubinstein recombining lattice. Steps bounds the
// work done: one backward pass of Steps layers.
type Binomial struct {
	Steps int
}

func (Binomial) Kind() Kind { return Lattice }

func (b Binomial) Price(ctx context.Context, mkt market.Context, opt instrument.Option) (Result, error) {
	if err := validate(mkt, opt); err != nil {
		return Result{}, err
	}
	if b.Steps < 1 {
		return Result{}, errs.Invalid("steps", float64(b.Steps), "must be at least 1")
	}

	n := b.Steps
	dt := opt.Maturity / float64(n)
	u := math.Exp(mkt.Vol * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp((mkt.Rate-mkt.Dividend)*dt) - d) / (u - d)
	if !(p >= 0 && p <= 1) {
		return Result{}, errs.Unstable("probability", p,
			"risk-neutral probability outside [0, 1] (dt=%g vol=%g rate=%g dividend=%g); increase steps",
			dt, mkt.Vol, mkt.Rate, mkt.Dividend)
	}

	disc := math.Exp(-mkt.Rate * dt)
	pu, pd := disc*p, disc*(1-p)
	uu := u * u
	american := opt.Style == instrument.American

	// terminal layer: node j sits at S*u^(2j-n)
	values := make([]float64, n+1)
	s := mkt.Spot * math.Pow(d, float64(n))
	for j := 0; j <= n; j++ {
		values[j] = opt.Payoff(s)
		s *= uu
	}

	for i := n - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		s = mkt.Spot * math.Pow(d, float64(i))
		for j := 0; j <= i; j++ {
			v := pu*values[j+1] + pd*values[j]
			if american {
				v = math.Max(v, opt.Payoff(s))
			}
			values[j] = v
			s *= uu
		}
	}

	if math.IsNaN(values[0]) || math.IsInf(values[0], 0) {
		return Result{}, errs.Unstable("price", values[0], "lattice produced a non-finite value")
	}

	exercise := string(instrument.European)
	if american {
		exercise = fmt.Sprintf("early exercise at each of %d steps", n)
	}
	return Result{
		Price: values[0],
		Model: Lattice,
		Meta:  Meta{Steps: n, Exercise: exercise},
	}, nil
}
