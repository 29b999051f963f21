package pricing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
)

func TestBinomialConvergesToBlackScholes(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Call)
	want := 10.450583572185565

	errAt := func(steps int) float64 {
		res, err := Binomial{Steps: steps}.Price(context.Background(), mkt, opt)
		require.NoError(t, err)
		assert.Equal(t, steps, res.Meta.Steps)
		return math.Abs(res.Price - want)
	}

	e50, e500, e2000 := errAt(50), errAt(500), errAt(2000)
	assert.Less(t, e2000, e50)
	assert.Less(t, e500, 0.005)
	assert.Less(t, e2000, 0.0015)
}

func TestBinomialAmericanPut(t *testing.T) {
	t.Parallel()

	mkt := market.Context{Spot: 36, Rate: 0.06, Vol: 0.2}
	opt := instrument.Option{Strike: 40, Maturity: 1, Type: instrument.Put, Style: instrument.European}

	eu, err := Binomial{Steps: 500}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	opt.Style = instrument.American
	am, err := Binomial{Steps: 500}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	assert.InDelta(t, 3.8436, eu.Price, 1e-3)
	assert.InDelta(t, 4.4864, am.Price, 1e-3)
	assert.Greater(t, am.Price, eu.Price)
	assert.GreaterOrEqual(t, am.Price, opt.Payoff(36))
	assert.Contains(t, am.Meta.Exercise, "early exercise")
}

func TestBinomialAmericanCallNoDividend(t *testing.T) {
	t.Parallel()

	// without dividends early exercise of a call is never optimal
	mkt, opt := atm(instrument.Call)
	eu, err := Binomial{Steps: 300}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)

	opt.Style = instrument.American
	am, err := Binomial{Steps: 300}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.InDelta(t, eu.Price, am.Price, 1e-9)
}

func TestBinomialUnstableProbability(t *testing.T) {
	t.Parallel()

	mkt := market.Context{Spot: 100, Rate: 0.1, Vol: 0.0099}
	opt := instrument.Option{Strike: 100, Maturity: 1, Type: instrument.Call, Style: instrument.European}

	_, err := Binomial{Steps: 100}.Price(context.Background(), mkt, opt)
	require.ErrorIs(t, err, errs.ErrNumericalInstability)
	p, _ := errs.Param(err)
	assert.Equal(t, "probability", p)
}

func TestBinomialVanishingVol(t *testing.T) {
	t.Parallel()

	mkt := market.Context{Spot: 110, Vol: 1e-8}
	opt := instrument.Option{Strike: 100, Maturity: 1, Type: instrument.Call, Style: instrument.American}

	res, err := Binomial{Steps: 200}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Price, 1e-6)
}

func TestBinomialSteps(t *testing.T) {
	t.Parallel()

	mkt, opt := atm(instrument.Put)
	_, err := Binomial{}.Price(context.Background(), mkt, opt)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)

	res, err := Binomial{Steps: 1}.Price(context.Background(), mkt, opt)
	require.NoError(t, err)
	assert.Greater(t, res.Price, 0.0)
}

func TestBinomialCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mkt, opt := atm(instrument.Put)
	_, err := Binomial{Steps: 100}.Price(ctx, mkt, opt)
	assert.ErrorIs(t, err, context.Canceled)
}
