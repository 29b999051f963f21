package pricing

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

// blockSize is the number of sample units drawn from one generator. It is
// fixed so that the block a sample lands in never depends on Workers.
const blockSize = 4096

// MonteCarlo prices by simulation. European options draw terminal prices
// directly; American options are valued with Longstaff-Schwartz regression
// over ExerciseDates equally spaced dates.
//
// With Antithetic set, paths are drawn in (Z, -Z) pairs and the pair
// average is the unit sample, so StdErr reflects the variance reduction.
type MonteCarlo struct {
	Paths         int
	Antithetic    bool
	Seed          *uint64 // nil draws a fresh seed, reported in Meta.Seed
	Workers       int     // 0 means GOMAXPROCS
	ExerciseDates int
	Confidence    float64
}

// TracePoint is the running estimate after Samples unit samples.
type TracePoint struct {
	Samples int     `json:"samples"`
	Price   float64 `json:"price"`
	StdErr  float64 `json:"std_err"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
}

type mcSettings struct {
	units   int
	perUnit int
	seed    uint64
	workers int
	dates   int
	z       float64
	conf    float64
}

type simulation struct {
	blocks   []blockStat
	floor    float64
	exercise string
}

func (*MonteCarlo) Kind() Kind { return Simulation }

func (m *MonteCarlo) Price(ctx context.Context, mkt market.Context, opt instrument.Option) (Result, error) {
	st, sim, err := m.run(ctx, mkt, opt)
	if err != nil {
		return Result{}, err
	}

	acc := reduce(sim.blocks)
	pt, err := st.point(acc, sim.floor)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Price:  pt.Price,
		StdErr: pt.StdErr,
		Model:  Simulation,
		Meta: Meta{
			Paths:      st.units * st.perUnit,
			Antithetic: m.Antithetic,
			Seed:       st.seed,
			Workers:    st.workers,
			Exercise:   sim.exercise,
			Confidence: st.conf,
			Lower:      pt.Lower,
			Upper:      pt.Upper,
		},
	}, nil
}

// Trace reruns the simulation and reports the running estimate at every
// block boundary. The last point equals the Price result for the same seed.
func (m *MonteCarlo) Trace(ctx context.Context, mkt market.Context, opt instrument.Option) ([]TracePoint, uint64, error) {
	st, sim, err := m.run(ctx, mkt, opt)
	if err != nil {
		return nil, 0, err
	}

	out := make([]TracePoint, 0, len(sim.blocks))
	var acc blockStat
	for _, b := range sim.blocks {
		acc = acc.merge(b)
		pt, err := st.point(acc, sim.floor)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pt)
	}
	return out, st.seed, nil
}

func (m *MonteCarlo) run(ctx context.Context, mkt market.Context, opt instrument.Option) (mcSettings, simulation, error) {
	if err := validate(mkt, opt); err != nil {
		return mcSettings{}, simulation{}, err
	}
	st, err := m.settings()
	if err != nil {
		return mcSettings{}, simulation{}, err
	}

	if opt.Style == instrument.American {
		sim, err := longstaffSchwartz(ctx, mkt, opt, st)
		return st, sim, err
	}

	blocks := make([]blockStat, numBlocks(st.units))
	err = forEachBlock(ctx, st.workers, st.units, func(b, lo, hi int) {
		blocks[b] = europeanBlock(blockRand(st.seed, b), hi-lo, mkt, opt, st.perUnit == 2)
	})
	if err != nil {
		return mcSettings{}, simulation{}, err
	}
	return st, simulation{blocks: blocks, exercise: string(instrument.European)}, nil
}

func (m *MonteCarlo) settings() (mcSettings, error) {
	st := mcSettings{units: m.Paths, perUnit: 1, workers: m.Workers, dates: m.ExerciseDates, conf: m.Confidence}

	if m.Antithetic {
		st.perUnit = 2
		st.units = (m.Paths + 1) / 2
	}
	if st.units < 2 {
		return st, errs.Invalid("paths", float64(m.Paths), "need at least two independent samples")
	}
	if st.workers < 0 {
		return st, errs.Invalid("workers", float64(m.Workers), "must be non-negative")
	}
	if st.workers == 0 {
		st.workers = runtime.GOMAXPROCS(0)
	}
	if st.dates == 0 {
		st.dates = DefaultExerciseDates
	}
	if st.dates < 1 {
		return st, errs.Invalid("exercise_dates", float64(m.ExerciseDates), "must be at least 1")
	}
	if st.conf == 0 {
		st.conf = DefaultConfidence
	}
	if !(st.conf > 0 && st.conf < 1) {
		return st, errs.Invalid("confidence", m.Confidence, "must be in (0, 1)")
	}
	st.z = distuv.UnitNormal.Quantile(0.5 + st.conf/2)

	if m.Seed != nil {
		st.seed = *m.Seed
	} else {
		st.seed = rand.Uint64()
	}
	return st, nil
}

// point turns accumulated statistics into a price estimate. floor is the
// immediate exercise value for American options, zero otherwise.
func (st mcSettings) point(acc blockStat, floor float64) (TracePoint, error) {
	price, se := acc.mean, acc.stdErr()
	if math.IsNaN(se) || math.IsInf(se, 0) || math.IsNaN(price) || math.IsInf(price, 0) {
		return TracePoint{}, errs.Unstable("variance", se, "sample variance is not finite after %d samples", acc.n)
	}
	if floor > price {
		price, se = floor, 0
	}
	return TracePoint{
		Samples: acc.n,
		Price:   price,
		StdErr:  se,
		Lower:   price - st.z*se,
		Upper:   price + st.z*se,
	}, nil
}

func europeanBlock(rng *rand.Rand, n int, mkt market.Context, opt instrument.Option, antithetic bool) blockStat {
	t := opt.Maturity
	drift := (mkt.Rate - mkt.Dividend - 0.5*mkt.Vol*mkt.Vol) * t
	volT := mkt.Vol * math.Sqrt(t)
	disc := mkt.Discount(t)

	vals := make([]float64, n)
	for i := range vals {
		z := rng.NormFloat64()
		v := opt.Payoff(mkt.Spot * math.Exp(drift+volT*z))
		if antithetic {
			v = 0.5 * (v + opt.Payoff(mkt.Spot*math.Exp(drift-volT*z)))
		}
		vals[i] = disc * v
	}
	return summarize(vals)
}

// blockRand gives block b its own PCG stream derived from seed.
func blockRand(seed uint64, b int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, splitmix64(uint64(b))))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func numBlocks(units int) int {
	return (units + blockSize - 1) / blockSize
}

// forEachBlock calls fn for each block of units on at most workers
// goroutines. fn must only write state owned by its block.
func forEachBlock(ctx context.Context, workers, units int, fn func(b, lo, hi int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for b := range numBlocks(units) {
		lo := b * blockSize
		hi := min(lo+blockSize, units)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(b, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// blockStat is a count, mean and sum of squared deviations.
type blockStat struct {
	n    int
	mean float64
	m2   float64
}

func summarize(vals []float64) blockStat {
	if len(vals) == 1 {
		return blockStat{n: 1, mean: vals[0]}
	}
	mean, variance := stat.MeanVariance(vals, nil)
	return blockStat{n: len(vals), mean: mean, m2: variance * float64(len(vals)-1)}
}

// merge combines two summaries (Chan et al.). Merging in a fixed order
// keeps the result independent of scheduling.
func (a blockStat) merge(b blockStat) blockStat {
	if a.n == 0 {
		return b
	}
	if b.n == 0 {
		return a
	}
	n := a.n + b.n
	delta := b.mean - a.mean
	return blockStat{
		n:    n,
		mean: a.mean + delta*float64(b.n)/float64(n),
		m2:   a.m2 + b.m2 + delta*delta*float64(a.n)*float64(b.n)/float64(n),
	}
}

func (a blockStat) stdErr() float64 {
	if a.n < 2 {
		return math.NaN()
	}
	return math.Sqrt(a.m2 / float64(a.n-1) / float64(a.n))
}

func reduce(blocks []blockStat) blockStat {
	var acc blockStat
	for _, b := range blocks {
		acc = acc.merge(b)
	}
	return acc
}
