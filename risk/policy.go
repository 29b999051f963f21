package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/pricer/errs"
)

// CapitalInput is what a capital policy sees of a loan.
type CapitalInput struct {
	Principal float64
	Exposure  float64 // principal net of collateral
	PD        float64 // effective PD
	LGD       float64
	Maturity  float64
}

// CapitalPolicy allocates economic capital to a loan.
type CapitalPolicy interface {
	Name() string
	Capital(in CapitalInput) (float64, error)
}

// CapitalFunc adapts a plain function to CapitalPolicy.
type CapitalFunc func(in CapitalInput) (float64, error)

func (f CapitalFunc) Name() string { return "custom" }

func (f CapitalFunc) Capital(in CapitalInput) (float64, error) { return f(in) }

// FixedRate holds a flat share of exposure as capital.
type FixedRate struct {
	Rate float64 `json:"rate" yaml:"rate"`
}

func (p FixedRate) Name() string { return fmt.Sprintf("fixed-rate %.4g", p.Rate) }

func (p FixedRate) Capital(in CapitalInput) (float64, error) {
	if !(p.Rate > 0 && p.Rate <= 1) {
		return 0, errs.Invalid("capital_rate", p.Rate, "must be in (0, 1]")
	}
	return p.Rate * in.Exposure, nil
}

// UnexpectedLoss sizes capital as a multiple of the loss volatility of a
// single obligor with asset correlation Correlation.
type UnexpectedLoss struct {
	Multiplier  float64 `json:"multiplier" yaml:"multiplier"`
	Correlation float64 `json:"correlation" yaml:"correlation"`
}

func (p UnexpectedLoss) Name() string {
	return fmt.Sprintf("unexpected-loss f=%.4g rho=%.4g", p.Multiplier, p.Correlation)
}

func (p UnexpectedLoss) Capital(in CapitalInput) (float64, error) {
	if !(p.Multiplier > 0) || math.IsInf(p.Multiplier, 0) {
		return 0, errs.Invalid("multiplier", p.Multiplier, "must be positive and finite")
	}
	if !(p.Correlation > 0 && p.Correlation <= 1) {
		return 0, errs.Invalid("correlation", p.Correlation, "must be in (0, 1]")
	}
	return p.Multiplier * math.Sqrt(p.Correlation*in.PD*(1-in.PD)) * in.LGD * in.Exposure, nil
}

// BaselIRB is the asymptotic single risk factor capital charge with the
// corporate maturity adjustment. A zero Correlation uses the corporate
// correlation curve; a zero Confidence uses 99.9%.
type BaselIRB struct {
	Correlation float64 `json:"correlation" yaml:"correlation"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

const (
	irbConfidence = 0.999
	irbPDFloor    = 0.0003
)

func (p BaselIRB) Name() string { return "basel-irb" }

func (p BaselIRB) Capital(in CapitalInput) (float64, error) {
	conf := p.Confidence
	if conf == 0 {
		conf = irbConfidence
	}
	if !(conf > 0.5 && conf < 1) {
		return 0, errs.Invalid("confidence", p.Confidence, "must be in (0.5, 1)")
	}

	pd := math.Max(in.PD, irbPDFloor)
	rho := p.Correlation
	if rho == 0 {
		rho = corporateCorrelation(pd)
	}
	if !(rho > 0 && rho < 1) {
		return 0, errs.Invalid("correlation", p.Correlation, "must be in (0, 1)")
	}

	n := distuv.UnitNormal
	stressed := n.CDF((n.Quantile(pd) + math.Sqrt(rho)*n.Quantile(conf)) / math.Sqrt(1-rho))
	k := in.LGD * (stressed - pd) * maturityAdjustment(pd, in.Maturity)
	return k * in.Exposure, nil
}
