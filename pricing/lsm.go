package pricing

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

// basisSize is the number of regressors: 1, x and x^2 of moneyness S/K.
const basisSize = 3

// exercisePolicy holds the fitted continuation coefficients per exercise
// date. A nil entry means the option is never exercised on that date.
type exercisePolicy [][]float64

// continuation is the fitted continuation value at date t and spot s.
func (p exercisePolicy) continuation(t int, s, strike float64) float64 {
	b := p[t]
	m := s / strike
	return b[0] + b[1]*m + b[2]*m*m
}

// exercises reports whether the policy exercises at date t and spot s.
func (p exercisePolicy) exercises(t int, s float64, opt instrument.Option) bool {
	if p[t] == nil {
		return false
	}
	ex := opt.Payoff(s)
	return ex > 0 && ex > p.continuation(t, s, opt.Strike)
}

// longstaffSchwartz values an American option on simulated paths. The
// continuation value at each exercise date is the least-squares fit of the
// realised discounted cash flow on in-the-money paths.
func longstaffSchwartz(ctx context.Context, mkt market.Context, opt instrument.Option, st mcSettings) (simulation, error) {
	spots, err := simulatePaths(ctx, mkt, opt, st)
	if err != nil {
		return simulation{}, err
	}
	v, _, err := fitExercise(ctx, spots, mkt, opt, st.dates)
	if err != nil {
		return simulation{}, err
	}

	unitVals := v
	if st.perUnit == 2 {
		unitVals = make([]float64, st.units)
		for u := range unitVals {
			unitVals[u] = 0.5 * (v[2*u] + v[2*u+1])
		}
	}

	blocks := make([]blockStat, 0, numBlocks(st.units))
	for lo := 0; lo < st.units; lo += blockSize {
		blocks = append(blocks, summarize(unitVals[lo:min(lo+blockSize, st.units)]))
	}

	return simulation{
		blocks:   blocks,
		floor:    opt.Payoff(mkt.Spot),
		exercise: fmt.Sprintf("longstaff-schwartz, quadratic basis, %d exercise dates", st.dates),
	}, nil
}

// simulatePaths returns spots[i*dates+t], path i at time (t+1)*dt.
// Antithetic paths sit next to their partner.
func simulatePaths(ctx context.Context, mkt market.Context, opt instrument.Option, st mcSettings) ([]float64, error) {
	dates := st.dates
	dt := opt.Maturity / float64(dates)
	drift := (mkt.Rate - mkt.Dividend - 0.5*mkt.Vol*mkt.Vol) * dt
	vol := mkt.Vol * math.Sqrt(dt)
	k := st.perUnit

	spots := make([]float64, st.units*k*dates)
	err := forEachBlock(ctx, st.workers, st.units, func(b, lo, hi int) {
		rng := blockRand(st.seed, b)
		for u := lo; u < hi; u++ {
			up := spots[u*k*dates : (u*k+1)*dates]
			s := mkt.Spot
			if k == 1 {
				for t := range up {
					s *= math.Exp(drift + vol*rng.NormFloat64())
					up[t] = s
				}
				continue
			}
			down := spots[(u*k+1)*dates : (u*k+2)*dates]
			sd := mkt.Spot
			for t := range up {
				z := rng.NormFloat64()
				s *= math.Exp(drift + vol*z)
				sd *= math.Exp(drift - vol*z)
				up[t], down[t] = s, sd
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return spots, nil
}

// fitExercise runs the backward induction over spots. It returns each
// path's cash flow discounted to time zero and the fitted policy.
func fitExercise(ctx context.Context, spots []float64, mkt market.Context, opt instrument.Option, dates int) ([]float64, exercisePolicy, error) {
	paths := len(spots) / dates
	dt := opt.Maturity / float64(dates)

	v := make([]float64, paths)
	for i := range v {
		v[i] = opt.Payoff(spots[i*dates+dates-1])
	}

	policy := make(exercisePolicy, dates)
	disc := math.Exp(-mkt.Rate * dt)
	for t := dates - 2; t >= 0; t-- {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		floats.Scale(disc, v)
		beta, err := regress(spots, v, t, dates, opt)
		if err != nil {
			return nil, nil, err
		}
		policy[t] = beta
		if beta == nil {
			continue
		}
		for i := range v {
			if s := spots[i*dates+t]; policy.exercises(t, s, opt) {
				v[i] = opt.Payoff(s)
			}
		}
	}
	floats.Scale(disc, v)
	return v, policy, nil
}

// regress fits the discounted cash flow v on the basis over paths that are
// in the money at date t. It returns nil when too few paths qualify.
func regress(spots, v []float64, t, dates int, opt instrument.Option) ([]float64, error) {
	itm := make([]int, 0, len(v)/2)
	for i := range v {
		if opt.Payoff(spots[i*dates+t]) > 0 {
			itm = append(itm, i)
		}
	}
	if len(itm) < basisSize {
		return nil, nil
	}

	x := mat.NewDense(len(itm), basisSize, nil)
	y := mat.NewVecDense(len(itm), nil)
	for r, i := range itm {
		m := spots[i*dates+t] / opt.Strike
		x.Set(r, 0, 1)
		x.Set(r, 1, m)
		x.Set(r, 2, m*m)
		y.SetVec(r, v[i])
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, errs.Unstable("regression", float64(t+1), "least-squares fit failed at exercise date %d: %v", t+1, err)
	}
	return []float64{beta.AtVec(0), beta.AtVec(1), beta.AtVec(2)}, nil
}

// Ladder is an option value at three spots, Spot-h, Spot and Spot+h.
type Ladder struct {
	Down float64 `json:"down"`
	Mid  float64 `json:"mid"`
	Up   float64 `json:"up"`
}

// SpotLadder values an American option at Spot-h, Spot and Spot+h on one
// set of paths under the exercise policy fitted at Spot. Bumped paths are
// the base paths rescaled, so no leg refits the regression.
//
// On a path where the legs disagree about exercise, every leg still
// holding the option takes the fitted continuation value at the first
// date of disagreement. The path value is then continuous in the spot
// across the exercise boundary, which keeps the second difference free of
// the cash flow noise behind the boundary.
func (m *MonteCarlo) SpotLadder(ctx context.Context, mkt market.Context, opt instrument.Option, h float64) (Ladder, error) {
	if err := validate(mkt, opt); err != nil {
		return Ladder{}, err
	}
	if opt.Style != instrument.American {
		return Ladder{}, errs.Invalid("style", math.NaN(), "spot ladder needs american exercise, got %s", opt.Style)
	}
	if !(h > 0 && h < mkt.Spot) {
		return Ladder{}, errs.Invalid("bump", h, "spot bump must be in (0, spot)")
	}
	st, err := m.settings()
	if err != nil {
		return Ladder{}, err
	}

	spots, err := simulatePaths(ctx, mkt, opt, st)
	if err != nil {
		return Ladder{}, err
	}
	_, policy, err := fitExercise(ctx, spots, mkt, opt, st.dates)
	if err != nil {
		return Ladder{}, err
	}

	dates := st.dates
	paths := len(spots) / dates
	disc := math.Exp(-mkt.Rate * opt.Maturity / float64(dates))
	legs := [3]float64{(mkt.Spot - h) / mkt.Spot, 1, (mkt.Spot + h) / mkt.Spot}

	var sum [3]float64
	var stop [3]int
	for i := range paths {
		path := spots[i*dates : (i+1)*dates]
		first := dates - 1
		for k, c := range legs {
			stop[k] = dates - 1
			for t := 0; t < dates-1; t++ {
				if policy.exercises(t, c*path[t], opt) {
					stop[k] = t
					break
				}
			}
			first = min(first, stop[k])
		}

		for k, c := range legs {
			s := c * path[first]
			var v float64
			switch {
			case stop[k] == first:
				v = opt.Payoff(s)
			case opt.Payoff(s) > 0:
				v = policy.continuation(first, s, opt.Strike)
			default:
				v = opt.Payoff(c*path[stop[k]]) * math.Pow(disc, float64(stop[k]-first))
			}
			sum[k] += v * math.Pow(disc, float64(first+1))
		}
	}

	var vals [3]float64
	for k, c := range legs {
		vals[k] = math.Max(sum[k]/float64(paths), opt.Payoff(c*mkt.Spot))
	}
	return Ladder{Down: vals[0], Mid: vals[1], Up: vals[2]}, nil
}
