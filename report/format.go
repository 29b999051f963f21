package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatOptionOrg renders an option report as an Org-mode block with the
// figures in a PROPERTIES drawer. id may be empty.
func FormatOptionOrg(id string, r OptionReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("** Option: %s %s K=%g T=%g (%s)", r.Option.Style, r.Option.Type, r.Option.Strike, r.Option.Maturity, r.Model))
	if id != "" {
		b.WriteString(fmt.Sprintf(" [%s]", shortID(id)))
	}
	b.WriteString("\n:PROPERTIES:\n")
	if id != "" {
		b.WriteString(fmt.Sprintf(":ID: %s\n", id))
	}
	b.WriteString(fmt.Sprintf(":MODEL: %s\n", r.Model))
	b.WriteString(fmt.Sprintf(":SPOT: %g\n", r.Market.Spot))
	b.WriteString(fmt.Sprintf(":RATE: %g\n", r.Market.Rate))
	b.WriteString(fmt.Sprintf(":DIVIDEND: %g\n", r.Market.Dividend))
	b.WriteString(fmt.Sprintf(":VOL: %g\n", r.Market.Vol))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", r.Price))
	if r.Meta.Paths > 0 {
		b.WriteString(fmt.Sprintf(":STD_ERR: %s\n", r.StdErr))
		b.WriteString(fmt.Sprintf(":CI_%g: [%s, %s]\n", 100*r.Meta.Confidence, r.Lower, r.Upper))
		b.WriteString(fmt.Sprintf(":PATHS: %d\n", r.Meta.Paths))
		b.WriteString(fmt.Sprintf(":SEED: %d\n", r.Meta.Seed))
	}
	if r.Meta.Steps > 0 {
		b.WriteString(fmt.Sprintf(":STEPS: %d\n", r.Meta.Steps))
	}
	b.WriteString(fmt.Sprintf(":EXERCISE: %s\n", r.Meta.Exercise))
	if g := r.Greeks; g != nil {
		b.WriteString(fmt.Sprintf(":GREEKS: %s\n", g.Method))
		b.WriteString(fmt.Sprintf(":DELTA: %s\n", g.Delta))
		b.WriteString(fmt.Sprintf(":GAMMA: %s\n", g.Gamma))
		b.WriteString(fmt.Sprintf(":VEGA: %s\n", g.Vega))
		b.WriteString(fmt.Sprintf(":THETA: %s\n", g.Theta))
		b.WriteString(fmt.Sprintf(":RHO: %s\n", g.Rho))
	}
	b.WriteString(":END:\n")
	return b.String()
}

// FormatLoanOrg renders a loan report as an Org-mode block.
func FormatLoanOrg(id string, r LoanReport) string {
	var b strings.Builder
	name := r.Loan.Rating
	if name == "" {
		name = "unrated"
	}
	b.WriteString(fmt.Sprintf("** Loan: %.2f %s (%s)", r.Loan.Principal, name, r.Policy))
	if id != "" {
		b.WriteString(fmt.Sprintf(" [%s]", shortID(id)))
	}
	b.WriteString("\n:PROPERTIES:\n")
	if id != "" {
		b.WriteString(fmt.Sprintf(":ID: %s\n", id))
	}
	b.WriteString(fmt.Sprintf(":POLICY: %s\n", r.Policy))
	b.WriteString(fmt.Sprintf(":PD: %g\n", r.Loan.PD))
	b.WriteString(fmt.Sprintf(":EFFECTIVE_PD: %s\n", r.EffectivePD))
	b.WriteString(fmt.Sprintf(":LGD: %g\n", r.Loan.LGD))
	b.WriteString(fmt.Sprintf(":MATURITY: %g\n", r.Loan.Maturity))
	b.WriteString(fmt.Sprintf(":EXPOSURE: %s\n", r.Exposure.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":EXPECTED_LOSS: %s\n", r.ExpectedLoss.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":ECONOMIC_CAPITAL: %s\n", r.EconomicCapital.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":REVENUE: %s\n", r.Revenue.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":OPERATING_COST: %s\n", r.OperatingCost.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":NET_INCOME: %s\n", r.NetIncome.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":RAROC: %s\n", r.RAROC))
	if d := r.Decision; d != nil {
		b.WriteString(fmt.Sprintf(":ACCEPTED: %t\n", d.Accepted))
	}
	b.WriteString(":END:\n")
	if d := r.Decision; d != nil && len(d.Violations) > 0 {
		b.WriteString("\n*** Violations\n")
		for _, v := range d.Violations {
			b.WriteString(fmt.Sprintf("- %s: %s\n", v.Code, v.Msg))
		}
	}
	return b.String()
}

// FormatOptionText is the plain console rendering.
func FormatOptionText(r OptionReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s K=%g T=%g  S=%g r=%g q=%g vol=%g\n",
		r.Option.Style, r.Option.Type, r.Option.Strike, r.Option.Maturity,
		r.Market.Spot, r.Market.Rate, r.Market.Dividend, r.Market.Vol))
	b.WriteString(fmt.Sprintf("  model:    %s (%s)\n", r.Model, r.Meta.Exercise))
	b.WriteString(fmt.Sprintf("  price:    %s\n", r.Price.StringFixed(6)))
	if r.Meta.Paths > 0 {
		b.WriteString(fmt.Sprintf("  std err:  %s\n", r.StdErr.StringFixed(6)))
		b.WriteString(fmt.Sprintf("  %g%% CI:   [%s, %s]\n", 100*r.Meta.Confidence, r.Lower.StringFixed(6), r.Upper.StringFixed(6)))
		b.WriteString(fmt.Sprintf("  paths:    %d  seed: %d  workers: %d\n", r.Meta.Paths, r.Meta.Seed, r.Meta.Workers))
	}
	if r.Meta.Steps > 0 {
		b.WriteString(fmt.Sprintf("  steps:    %d\n", r.Meta.Steps))
	}
	if g := r.Greeks; g != nil {
		b.WriteString(fmt.Sprintf("  greeks (%s):\n", g.Method))
		b.WriteString(fmt.Sprintf("    delta  %s\n", g.Delta.StringFixed(6)))
		b.WriteString(fmt.Sprintf("    gamma  %s\n", g.Gamma.StringFixed(6)))
		b.WriteString(fmt.Sprintf("    vega   %s\n", g.Vega.StringFixed(6)))
		b.WriteString(fmt.Sprintf("    theta  %s\n", g.Theta.StringFixed(6)))
		b.WriteString(fmt.Sprintf("    rho    %s\n", g.Rho.StringFixed(6)))
	}
	return b.String()
}

// FormatLoanText is the plain console rendering.
func FormatLoanText(r LoanReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("loan %.2f  PD=%g LGD=%g T=%g  policy: %s\n",
		r.Loan.Principal, r.Loan.PD, r.Loan.LGD, r.Loan.Maturity, r.Policy))
	b.WriteString(fmt.Sprintf("  exposure:          %s\n", r.Exposure.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  effective PD:      %s\n", r.EffectivePD))
	b.WriteString(fmt.Sprintf("  expected loss:     %s\n", r.ExpectedLoss.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  economic capital:  %s\n", r.EconomicCapital.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  revenue:           %s\n", r.Revenue.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  operating cost:    %s\n", r.OperatingCost.StringFixed(2)))
	if !r.CapitalIncome.IsZero() || !r.Taxes.IsZero() {
		b.WriteString(fmt.Sprintf("  capital income:    %s\n", r.CapitalIncome.StringFixed(2)))
		b.WriteString(fmt.Sprintf("  taxes:             %s\n", r.Taxes.StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf("  net income:        %s\n", r.NetIncome.StringFixed(2)))
	b.WriteString(fmt.Sprintf("  RAROC:             %s%%\n", r.RAROC.Mul(decimal.NewFromInt(100)).StringFixed(2)))
	if d := r.Decision; d != nil {
		if d.Accepted {
			b.WriteString("  ✓ accepted\n")
		}
		for _, v := range d.Violations {
			b.WriteString(fmt.Sprintf("  ✗ %s: %s\n", v.Code, v.Msg))
		}
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
