package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(d Decision) []string {
	out := make([]string, 0, len(d.Violations))
	for _, v := range d.Violations {
		out = append(out, v.Code)
	}
	return out
}

func TestScreen(t *testing.T) {
	t.Parallel()

	r, err := Engine{}.Compute(workedLoan(), FixedRate{Rate: 0.08})
	require.NoError(t, err)

	tests := []struct {
		name   string
		limits Limits
		want   []string
	}{
		{"no limits", Limits{}, []string{}},
		{"clears hurdle", Limits{HurdleRate: 0.15, MaxPD: 0.05, RequireIncome: true}, []string{}},
		{"below hurdle", Limits{HurdleRate: 0.5}, []string{"RAROC_BELOW_HURDLE"}},
		{"pd and capital", Limits{MaxPD: 0.01, MaxCapital: 50_000}, []string{"PD_TOO_HIGH", "CAPITAL_OVER_BUDGET"}},
		{"loss rate", Limits{MaxLossRate: 0.005}, []string{"LOSS_RATE_TOO_HIGH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Screen(r, tt.limits)
			assert.Equal(t, tt.want, codes(d))
			assert.Equal(t, len(tt.want) == 0, d.Accepted)
		})
	}
}

func TestScreenLossMaking(t *testing.T) {
	t.Parallel()

	l := workedLoan()
	l.RevenueRate = 0.005
	r, err := Engine{}.Compute(l, FixedRate{Rate: 0.08})
	require.NoError(t, err)
	require.Less(t, r.NetIncome, 0.0)

	d := Screen(r, Limits{RequireIncome: true, HurdleRate: 0.1})
	assert.False(t, d.Accepted)
	assert.Equal(t, []string{"RAROC_BELOW_HURDLE", "NO_NET_INCOME"}, codes(d))
}
