// Package risk computes the risk-adjusted return on capital of a loan.
// Economic capital is delegated to a CapitalPolicy so alternative capital
// models plug in without touching the RAROC arithmetic.
package risk

import (
	"math"

	"github.com/rustyeddy/pricer/errs"
	"github.com/rustyeddy/pricer/instrument"
)

// Engine holds the bank-level parameters. With both at zero NetIncome is
// Revenue - EL - OperatingCost.
type Engine struct {
	TaxRate       float64 `json:"tax_rate" yaml:"tax_rate"`
	CapitalReturn float64 `json:"capital_return" yaml:"capital_return"` // return earned on the capital held
}

type Result struct {
	Principal       float64 `json:"principal"`
	Exposure        float64 `json:"exposure"`
	EffectivePD     float64 `json:"effective_pd"`
	LGD             float64 `json:"lgd"`
	ExpectedLoss    float64 `json:"expected_loss"`
	EconomicCapital float64 `json:"economic_capital"`
	Revenue         float64 `json:"revenue"`
	OperatingCost   float64 `json:"operating_cost"`
	CapitalIncome   float64 `json:"capital_income"`
	Taxes           float64 `json:"taxes"`
	NetIncome       float64 `json:"net_income"`
	RAROC           float64 `json:"raroc"`
	Policy          string  `json:"policy"`
}

func (e Engine) Validate() error {
	if !(e.TaxRate >= 0 && e.TaxRate < 1) {
		return errs.Invalid("tax_rate", e.TaxRate, "must be in [0, 1)")
	}
	if !(e.CapitalReturn >= 0) || math.IsInf(e.CapitalReturn, 0) {
		return errs.Invalid("capital_return", e.CapitalReturn, "must be non-negative and finite")
	}
	return nil
}

// Compute returns the RAROC of loan with capital from policy.
func (e Engine) Compute(loan instrument.Loan, policy CapitalPolicy) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}
	if err := loan.Validate(); err != nil {
		return Result{}, err
	}
	if policy == nil {
		return Result{}, errs.Invalid("policy", math.NaN(), "capital policy is required")
	}

	r := Result{
		Principal:     loan.Principal,
		Exposure:      loan.Exposure(),
		EffectivePD:   loan.EffectivePD(),
		LGD:           loan.LGD,
		Revenue:       loan.Revenue(),
		OperatingCost: loan.OperatingCost(),
		Policy:        policy.Name(),
	}
	r.ExpectedLoss = ExpectedLoss(r.EffectivePD, r.LGD, r.Exposure)

	ec, err := policy.Capital(CapitalInput{
		Principal: loan.Principal,
		Exposure:  r.Exposure,
		PD:        r.EffectivePD,
		LGD:       r.LGD,
		Maturity:  loan.Maturity,
	})
	if err != nil {
		return Result{}, err
	}
	if !(ec > 0) || math.IsInf(ec, 0) {
		return Result{}, errs.Invalid("economic_capital", ec, "must be positive and finite under policy %s", r.Policy)
	}
	r.EconomicCapital = ec

	riskAdjusted := r.Revenue - r.ExpectedLoss - r.OperatingCost
	r.CapitalIncome = e.CapitalReturn * ec
	// a loss yields a negative tax, i.e. a credit
	r.Taxes = e.TaxRate * (riskAdjusted + r.CapitalIncome)
	r.NetIncome = riskAdjusted + r.CapitalIncome - r.Taxes
	r.RAROC = r.NetIncome / ec

	return r, nil
}
