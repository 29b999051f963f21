// Package report turns engine results into stable presentation records.
// Money is carried as decimals rounded to cents; prices, ratios and Greeks
// keep full float precision.
package report

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/pricer/greeks"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/market"
	"github.com/rustyeddy/pricer/pricing"
	"github.com/rustyeddy/pricer/risk"
)

type OptionReport struct {
	Model  pricing.Kind      `json:"model"`
	Market market.Context    `json:"market"`
	Option instrument.Option `json:"option"`
	Price  decimal.Decimal   `json:"price"`
	StdErr decimal.Decimal   `json:"std_err"`
	Lower  decimal.Decimal   `json:"lower"`
	Upper  decimal.Decimal   `json:"upper"`
	Meta   pricing.Meta      `json:"meta"`
	Greeks *GreeksFigures    `json:"greeks,omitempty"`
}

type GreeksFigures struct {
	Delta  decimal.Decimal `json:"delta"`
	Gamma  decimal.Decimal `json:"gamma"`
	Vega   decimal.Decimal `json:"vega"`
	Theta  decimal.Decimal `json:"theta"`
	Rho    decimal.Decimal `json:"rho"`
	Method greeks.Method   `json:"method"`
}

type LoanReport struct {
	Loan            instrument.Loan `json:"loan"`
	Policy          string          `json:"policy"`
	Exposure        decimal.Decimal `json:"exposure"`
	EffectivePD     decimal.Decimal `json:"effective_pd"`
	ExpectedLoss    decimal.Decimal `json:"expected_loss"`
	EconomicCapital decimal.Decimal `json:"economic_capital"`
	Revenue         decimal.Decimal `json:"revenue"`
	OperatingCost   decimal.Decimal `json:"operating_cost"`
	CapitalIncome   decimal.Decimal `json:"capital_income"`
	Taxes           decimal.Decimal `json:"taxes"`
	NetIncome       decimal.Decimal `json:"net_income"`
	RAROC           decimal.Decimal `json:"raroc"`
	Decision        *risk.Decision  `json:"decision,omitempty"`
}

// NewOptionReport packages a price and, when g is non-nil, its Greeks.
func NewOptionReport(mkt market.Context, opt instrument.Option, res pricing.Result, g *greeks.Result) OptionReport {
	r := OptionReport{
		Model:  res.Model,
		Market: mkt,
		Option: opt,
		Price:  exact(res.Price),
		StdErr: exact(res.StdErr),
		Lower:  exact(res.Meta.Lower),
		Upper:  exact(res.Meta.Upper),
		Meta:   res.Meta,
	}
	if res.Model != pricing.Simulation {
		r.Lower, r.Upper = r.Price, r.Price
	}
	if g != nil {
		r.Greeks = &GreeksFigures{
			Delta:  exact(g.Delta),
			Gamma:  exact(g.Gamma),
			Vega:   exact(g.Vega),
			Theta:  exact(g.Theta),
			Rho:    exact(g.Rho),
			Method: g.Method,
		}
	}
	return r
}

// NewLoanReport packages a RAROC result and an optional screening decision.
func NewLoanReport(loan instrument.Loan, res risk.Result, d *risk.Decision) LoanReport {
	return LoanReport{
		Loan:            loan,
		Policy:          res.Policy,
		Exposure:        money(res.Exposure),
		EffectivePD:     exact(res.EffectivePD),
		ExpectedLoss:    money(res.ExpectedLoss),
		EconomicCapital: money(res.EconomicCapital),
		Revenue:         money(res.Revenue),
		OperatingCost:   money(res.OperatingCost),
		CapitalIncome:   money(res.CapitalIncome),
		Taxes:           money(res.Taxes),
		NetIncome:       money(res.NetIncome),
		RAROC:           exact(res.RAROC),
		Decision:        d,
	}
}

func exact(x float64) decimal.Decimal {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x)
}

func money(x float64) decimal.Decimal {
	return exact(x).Round(2)
}
