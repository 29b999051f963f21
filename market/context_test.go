package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/pricer/errs"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spot  float64
		rate  float64
		div   float64
		vol   float64
		param string
	}{
		{"valid", 100, 0.05, 0.01, 0.2, ""},
		{"negative rate", 100, -0.005, 0, 0.2, ""},
		{"zero spot", 0, 0.05, 0, 0.2, "spot"},
		{"negative spot", -1, 0.05, 0, 0.2, "spot"},
		{"nan rate", 100, math.NaN(), 0, 0.2, "rate"},
		{"negative dividend", 100, 0.05, -0.01, 0.2, "dividend"},
		{"zero vol", 100, 0.05, 0, 0, "vol"},
		{"infinite vol", 100, 0.05, 0, math.Inf(1), "vol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(tt.spot, tt.rate, tt.div, tt.vol)
			if tt.param == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.spot, c.Spot)
				return
			}
			require.ErrorIs(t, err, errs.ErrInvalidParameter)
			p, _ := errs.Param(err)
			assert.Equal(t, tt.param, p)
		})
	}
}

func TestWithLeavesOriginal(t *testing.T) {
	t.Parallel()

	base := Context{Spot: 100, Rate: 0.05, Vol: 0.2}
	bumped := base.WithSpot(101).WithVol(0.21).WithRate(0.06)

	assert.Equal(t, 100.0, base.Spot)
	assert.Equal(t, 0.2, base.Vol)
	assert.Equal(t, 0.05, base.Rate)
	assert.Equal(t, 101.0, bumped.Spot)
	assert.Equal(t, 0.21, bumped.Vol)
	assert.Equal(t, 0.06, bumped.Rate)
}

func TestFactors(t *testing.T) {
	t.Parallel()

	c := Context{Spot: 100, Rate: 0.05, Dividend: 0.02, Vol: 0.2}
	assert.InDelta(t, math.Exp(-0.05), c.Discount(1), 1e-15)
	assert.InDelta(t, math.Exp(-0.02), c.Carry(1), 1e-15)
	assert.InDelta(t, 100*math.Exp(0.03), c.Forward(1), 1e-12)
}
