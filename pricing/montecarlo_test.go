package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

func TestMonteCarloSeedReproducible(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Put)
	mc := &MonteCarlo{Paths: 20_000, Seed: seed(99)}

	a, err := mc.Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	b, err := mc.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, uint64(99), a.Meta.Seed)
}

func TestMonteCarloWorkerIndependence(t *testing.T) {
	t.Parallel()

	for _, style := range []instrument.ExerciseStyle{instrument.European, instrument.American} {
		t.Run(string(style), func(t *testing.T) {
			t.Parallel()
			mkt, opt := atm(instrument.Put)
			opt.Style = style

			one := &MonteCarlo{Paths: 30_000, Antithetic: true, Seed: seed(5), Workers: 1, ExerciseDates: 10}
			many := *one
			many.Workers = 8

			a, err := one.Price(context.Background(), mkt, opt)
			require.NoError(t, err)
			b, err := many.Price(context.Background(), mkt, opt)
			require.NoError(t, err)

			assert.Equal(t, a.Price, b.Price)
			assert.Equal(t, a.StdErr, b.StdErr)
			assert.Equal(t, 1, a.Meta.Workers)
			assert.Equal(t, 8, b.Meta.Workers)
		})
	}
}

func TestMonteCarloStdErrScaling(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	small, err := (&MonteCarlo{Paths: 25_000, Seed: seed(11)}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	large, err := (&MonteCarlo{Paths: 100_000, Seed: seed(11)}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	ratio := large.StdErr / small.StdErr
	assert.InDelta(t, 0.5, ratio, 0.1)
}

func TestMonteCarloAntitheticReducesError(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	plain, err := (&MonteCarlo{Paths: 50_000, Seed: seed(3)}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	anti, err := (&MonteCarlo{Paths: 50_000, Seed: seed(3), Antithetic: true}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	assert.Less(t, anti.StdErr, plain.StdErr)
	assert.True(t, anti.Meta.Antithetic)
	assert.Equal(t, 50_000, anti.Meta.Paths)
}

func TestMonteCarloConfidenceInterval(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	res, err := (&MonteCarlo{Paths: 40_000, Seed: seed(8)}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfidence, res.Meta.Confidence)
	assert.InDelta(t, 1.959964*res.StdErr, res.Meta.Upper-res.Price, 1e-6)
	assert.InDelta(t, res.Price-res.Meta.Lower, res.Meta.Upper-res.Price, 1e-9)

	res99, err := (&MonteCarlo{Paths: 40_000, Seed: seed(8), Confidence: 0.99}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.Greater(t, res99.Meta.Upper-res99.Meta.Lower, res.Meta.Upper-res.Meta.Lower)
}

func TestMonteCarloRandomSeedReported(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	res, err := (&MonteCarlo{Paths: 5000}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	again, err := (&MonteCarlo{Paths: 5000, Seed: seed(res.Meta.Seed)}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.Equal(t, res.Price, again.Price)
}

func TestMonteCarloVanishingVol(t *testing.T) {
	t.Parallel()

	mkt := market.Context{Spot: 110, Vol: 1e-9}
	opt := instrument.Option{Strike: 100, Maturity: 1, Type: instrument.Call, Style: instrument.European}
	res, err := (&MonteCarlo{Paths: 1000, Seed: seed(1)}).Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Price, 1e-6)
}

func TestMonteCarloLongstaffSchwartz(t *testing.T) {
	t.Parallel()

	mkt := market.Context{Spot: 36, Rate: 0.06, Vol: 0.2}
	opt := instrument.Option{Strike: 40, Maturity: 1, Type: instrument.Put, Style: instrument.American}

	lattice, err := Binomial{Steps: 500}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	mc := &MonteCarlo{Paths: 50_000, Antithetic: true, Seed: seed(7), ExerciseDates: 50}
	res, err := mc.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	assert.InDelta(t, lattice.Price, res.Price, 0.1)
	assert.Greater(t, res.Price, 3.8443) // european value
	assert.Contains(t, res.Meta.Exercise, "50 exercise dates")
}

func TestMonteCarloTrace(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	mc := &MonteCarlo{Paths: 20_000, Seed: seed(21)}

	trace, s, err := mc.Trace(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), s)
	require.Len(t, trace, 5)

	for i := 1; i < len(trace); i++ {
		assert.Greater(t, trace[i].Samples, trace[i-1].Samples)
	}

	res, err := mc.Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	last := trace[len(trace)-1]
	assert.Equal(t, 20_000, last.Samples)
	assert.Equal(t, res.Price, last.Price)
	assert.Equal(t, res.StdErr, last.StdErr)
}

func TestMonteCarloInvalid(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	tests := []struct {
		name  string
		mc    MonteCarlo
		param string
	}{
		{"one path", MonteCarlo{Paths: 1}, "paths"},
		{"one antithetic pair", MonteCarlo{Paths: 2, Antithetic: true}, "paths"},
		{"negative workers", MonteCarlo{Paths: 100, Workers: -1}, "workers"},
		{"confidence", MonteCarlo{Paths: 100, Confidence: 1.5}, "confidence"},
		{"exercise dates", MonteCarlo{Paths: 100, ExerciseDates: -3}, "exercise_dates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.mc.Price(context.Background(), mkt, opt)
			require.ErrorIs(t, err, errs.ErrInvalidParameter)
			p, _ := errs.Param(err)
			assert.Equal(t, tt.param, p)
		})
	}
}

func TestMonteCarloCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mkt, opt := atm(instrument.Call)
	_, err := (&MonteCarlo{Paths: 50_000, Seed: seed(1)}).Price(ctx, mkt, opt)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlockStatMerge(t *testing.T) {
	t.Parallel()

	all := summarize([]float64{1, 2, 3, 4, 5, 6, 7})
	parts := reduce([]blockStat{
		summarize([]float64{1, 2, 3}),
		summarize([]float64{4}),
		summarize([]float64{5, 6, 7}),
	})

	assert.Equal(t, all.n, parts.n)
	assert.InDelta(t, all.mean, parts.mean, 1e-12)
	assert.InDelta(t, all.m2, parts.m2, 1e-12)
	assert.InDelta(t, 28.0, all.m2, 1e-12)
}

func TestSpotLadder(t *testing.T) {
	t.Parallel()

	mkt := market.Context{Spot: 36, Rate: 0.06, Vol: 0.2}
	opt := instrument.Option{Strike: 40, Maturity: 1, Type: instrument.Put, Style: instrument.American}
	mc := &MonteCarlo{Paths: 20_000, Antithetic: true, Seed: seed(4), ExerciseDates: 50}

	res, err := mc.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	l, err := mc.SpotLadder(context.Background(), mkt, opt, 0.36)
	require.NoError(t, err)

	assert.InDelta(t, res.Price, l.Mid, 0.05)
	assert.Greater(t, l.Down, l.Mid)
	assert.Greater(t, l.Mid, l.Up)
	assert.Greater(t, l.Down-2*l.Mid+l.Up, 0.0)

	again, err := mc.SpotLadder(context.Background(), mkt, opt, 0.36)
	require.NoError(t, err)
	assert.Equal(t, l, again)
}

func TestSpotLadderInvalid(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Put)
	mc := &MonteCarlo{Paths: 1000, Seed: seed(1)}

	_, err := mc.SpotLadder(context.Background(), mkt, opt, 1)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	p, _ := errs.Param(err)
	assert.Equal(t, "style", p)

	opt.Style = instrument.American
	_, err = mc.SpotLadder(context.Background(), mkt, opt, 0)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	p, _ = errs.Param(err)
	assert.Equal(t, "bump", p)
}
