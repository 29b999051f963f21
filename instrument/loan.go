package instrument

import (
	"math"

	"github.com/rustyeddy/pricer/errs"
)

// Loan is a single-period credit facility.
type Loan struct {
	Principal         float64 `json:"principal" yaml:"principal"`
	PD                float64 `json:"pd" yaml:"pd"`   // probability of default
	LGD               float64 `json:"lgd" yaml:"lgd"` // loss given default
	Maturity          float64 `json:"maturity" yaml:"maturity"`
	RevenueRate       float64 `json:"revenue_rate" yaml:"revenue_rate"`               // spread + fees over principal
	OperatingCostRate float64 `json:"operating_cost_rate" yaml:"operating_cost_rate"` // cost to serve over principal
	Rating            string  `json:"rating,omitempty" yaml:"rating,omitempty"`

	Collateral *Collateral  `json:"collateral,omitempty" yaml:"collateral,omitempty"`
	Country    *CountryRisk `json:"country,omitempty" yaml:"country,omitempty"`
}

// CountryRisk carries the transfer risk of the obligor's country.
type CountryRisk struct {
	Name         string  `json:"name" yaml:"name"`
	PD           float64 `json:"pd" yaml:"pd"`
	TransferRate float64 `json:"transfer_rate" yaml:"transfer_rate"`
}

func (l Loan) Validate() error {
	if !(l.Principal > 0) || math.IsInf(l.Principal, 0) {
		return errs.Invalid("principal", l.Principal, "must be positive and finite")
	}
	if err := unit("pd", l.PD); err != nil {
		return err
	}
	if err := unit("lgd", l.LGD); err != nil {
		return err
	}
	if !(l.Maturity > 0) || math.IsInf(l.Maturity, 0) {
		return errs.Invalid("maturity", l.Maturity, "must be positive and finite")
	}
	if !(l.RevenueRate >= 0) || math.IsInf(l.RevenueRate, 0) {
		return errs.Invalid("revenue_rate", l.RevenueRate, "must be non-negative and finite")
	}
	if !(l.OperatingCostRate >= 0) || math.IsInf(l.OperatingCostRate, 0) {
		return errs.Invalid("operating_cost_rate", l.OperatingCostRate, "must be non-negative and finite")
	}
	if l.Collateral != nil {
		if err := l.Collateral.Validate(); err != nil {
			return err
		}
	}
	if l.Country != nil {
		if err := unit("country.pd", l.Country.PD); err != nil {
			return err
		}
		if err := unit("country.transfer_rate", l.Country.TransferRate); err != nil {
			return err
		}
	}
	return nil
}

func (l Loan) Revenue() float64 {
	return l.RevenueRate * l.Principal
}

func (l Loan) OperatingCost() float64 {
	return l.OperatingCostRate * l.Principal
}

// Exposure is the principal net of haircut collateral, floored at zero.
func (l Loan) Exposure() float64 {
	if l.Collateral == nil {
		return l.Principal
	}
	return math.Max(l.Principal-l.Collateral.Value(), 0)
}

// EffectivePD blends in the country PD when it is worse than the obligor's.
func (l Loan) EffectivePD() float64 {
	if l.Country == nil || l.Country.PD <= l.PD {
		return l.PD
	}
	t := l.Country.TransferRate
	return l.PD*(1-t) + l.Country.PD*t
}

func unit(param string, x float64) error {
	if !(x >= 0 && x <= 1) {
		return errs.Invalid(param, x, "must be in [0, 1]")
	}
	return nil
}
