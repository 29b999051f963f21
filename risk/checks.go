package risk

import "fmt"

// Limits are the acceptance rules a priced loan is screened against.
// Zero disables a rule.
type Limits struct {
	HurdleRate    float64 `json:"hurdle_rate" yaml:"hurdle_rate"`       // minimum RAROC
	MaxPD         float64 `json:"max_pd" yaml:"max_pd"`                 // maximum effective PD
	MaxCapital    float64 `json:"max_capital" yaml:"max_capital"`       // capital budget per loan
	MaxLossRate   float64 `json:"max_loss_rate" yaml:"max_loss_rate"`   // EL / exposure
	RequireIncome bool    `json:"require_income" yaml:"require_income"` // net income must be positive
}

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type Decision struct {
	Accepted   bool        `json:"accepted"`
	Violations []Violation `json:"violations,omitempty"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Accepted = false
}

// Screen checks a RAROC result against limits. Every failing rule is
// reported, not just the first.
func Screen(r Result, l Limits) Decision {
	d := Decision{Accepted: true}

	if l.HurdleRate > 0 && r.RAROC < l.HurdleRate {
		d.add("RAROC_BELOW_HURDLE",
			fmt.Sprintf("RAROC %.2f%% below hurdle %.2f%%", 100*r.RAROC, 100*l.HurdleRate))
	}
	if l.MaxPD > 0 && r.EffectivePD > l.MaxPD {
		d.add("PD_TOO_HIGH",
			fmt.Sprintf("effective PD %.2f%% exceeds max %.2f%%", 100*r.EffectivePD, 100*l.MaxPD))
	}
	if l.MaxCapital > 0 && r.EconomicCapital > l.MaxCapital {
		d.add("CAPITAL_OVER_BUDGET",
			fmt.Sprintf("economic capital %.2f exceeds budget %.2f", r.EconomicCapital, l.MaxCapital))
	}
	if l.MaxLossRate > 0 && r.Exposure > 0 && r.ExpectedLoss/r.Exposure > l.MaxLossRate {
		d.add("LOSS_RATE_TOO_HIGH",
			fmt.Sprintf("expected loss %.2f%% of exposure exceeds max %.2f%%",
				100*r.ExpectedLoss/r.Exposure, 100*l.MaxLossRate))
	}
	if l.RequireIncome && r.NetIncome <= 0 {
		d.add("NO_NET_INCOME", fmt.Sprintf("net income %.2f is not positive", r.NetIncome))
	}

	return d
}
