package market

import (
	"math"

	"github.com/rustyeddy/pricer/errs"
)

// Context is a snapshot of the market inputs every pricing model reads.
// It is a value: build a new one per request, or derive one with the With
// helpers.
type Context struct {
	Spot     float64 `json:"spot" yaml:"spot"`         // S > 0
	Rate     float64 `json:"rate" yaml:"rate"`         // continuously compounded, may be negative
	Dividend float64 `json:"dividend" yaml:"dividend"` // continuous yield q >= 0
	Vol      float64 `json:"vol" yaml:"vol"`           // annualized sigma > 0
}

// New returns a validated Context.
func New(spot, rate, dividend, vol float64) (Context, error) {
	c := Context{Spot: spot, Rate: rate, Dividend: dividend, Vol: vol}
	if err := c.Validate(); err != nil {
		return Context{}, err
	}
	return c, nil
}

// Validate reports the first out-of-domain field.
func (c Context) Validate() error {
	if !(c.Spot > 0) || math.IsInf(c.Spot, 0) {
		return errs.Invalid("spot", c.Spot, "must be positive and finite")
	}
	if math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) {
		return errs.Invalid("rate", c.Rate, "must be finite")
	}
	if !(c.Dividend >= 0) || math.IsInf(c.Dividend, 0) {
		return errs.Invalid("dividend", c.Dividend, "must be non-negative and finite")
	}
	if !(c.Vol > 0) || math.IsInf(c.Vol, 0) {
		return errs.Invalid("vol", c.Vol, "must be positive and finite")
	}
	return nil
}

func (c Context) WithSpot(s float64) Context {
	c.Spot = s
	return c
}

func (c Context) WithRate(r float64) Context {
	c.Rate = r
	return c
}

func (c Context) WithVol(v float64) Context {
	c.Vol = v
	return c
}

// Discount is e^(-rT).
func (c Context) Discount(t float64) float64 {
	return math.Exp(-c.Rate * t)
}

// Carry is e^(-qT), the dividend discount on the spot.
func (c Context) Carry(t float64) float64 {
	return math.Exp(-c.Dividend * t)
}

// Forward is the risk-neutral forward S*e^((r-q)T).
func (c Context) Forward(t float64) float64 {
	return c.Spot * math.Exp((c.Rate-c.Dividend)*t)
}
