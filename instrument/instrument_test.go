package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/pricer/errs"
)

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    OptionType
		wantErr bool
	}{
		{"call", Call, false},
		{"CALL", Call, false},
		{" c ", Call, false},
		{"Put", Put, false},
		{"p", Put, false},
		{"straddle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	s, err := ParseStyle("American")
	require.NoError(t, err)
	assert.Equal(t, American, s)

	s, err = ParseStyle("eu")
	require.NoError(t, err)
	assert.Equal(t, European, s)

	_, err = ParseStyle("bermudan")
	assert.Error(t, err)
}

func TestOptionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opt   Option
		param string
	}{
		{"valid", Option{Strike: 100, Maturity: 1, Type: Call, Style: European}, ""},
		{"zero strike", Option{Strike: 0, Maturity: 1, Type: Call, Style: European}, "strike"},
		{"negative maturity", Option{Strike: 100, Maturity: -1, Type: Put, Style: European}, "maturity"},
		{"missing type", Option{Strike: 100, Maturity: 1, Style: European}, "type"},
		{"missing style", Option{Strike: 100, Maturity: 1, Type: Put}, "style"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opt.Validate()
			if tt.param == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrInvalidParameter)
			p, _ := errs.Param(err)
			assert.Equal(t, tt.param, p)
		})
	}
}

func TestPayoff(t *testing.T) {
	t.Parallel()

	call := Option{Strike: 100, Type: Call}
	put := Option{Strike: 100, Type: Put}

	assert.Equal(t, 10.0, call.Payoff(110))
	assert.Equal(t, 0.0, call.Payoff(90))
	assert.Equal(t, 10.0, put.Payoff(90))
	assert.Equal(t, 0.0, put.Payoff(110))
	assert.Equal(t, 1.0, call.Sign())
	assert.Equal(t, -1.0, put.Sign())
}

func TestLoanValidate(t *testing.T) {
	t.Parallel()

	base := Loan{Principal: 1_000_000, PD: 0.02, LGD: 0.45, Maturity: 1, RevenueRate: 0.05, OperatingCostRate: 0.01}

	tests := []struct {
		name  string
		edit  func(l *Loan)
		param string
	}{
		{"valid", func(l *Loan) {}, ""},
		{"zero principal", func(l *Loan) { l.Principal = 0 }, "principal"},
		{"pd above one", func(l *Loan) { l.PD = 1.2 }, "pd"},
		{"negative lgd", func(l *Loan) { l.LGD = -0.1 }, "lgd"},
		{"zero maturity", func(l *Loan) { l.Maturity = 0 }, "maturity"},
		{"negative revenue", func(l *Loan) { l.RevenueRate = -0.01 }, "revenue_rate"},
		{"unknown collateral", func(l *Loan) { l.Collateral = &Collateral{Kind: "art", Amount: 10} }, "collateral.kind"},
		{"bad transfer rate", func(l *Loan) { l.Country = &CountryRisk{PD: 0.1, TransferRate: 2} }, "country.transfer_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := base
			tt.edit(&l)
			err := l.Validate()
			if tt.param == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrInvalidParameter)
			p, _ := errs.Param(err)
			assert.Equal(t, tt.param, p)
		})
	}
}

func TestLoanAmounts(t *testing.T) {
	t.Parallel()

	l := Loan{Principal: 1_000_000, PD: 0.02, LGD: 0.45, Maturity: 1, RevenueRate: 0.05, OperatingCostRate: 0.01}
	assert.InDelta(t, 50_000.0, l.Revenue(), 1e-9)
	assert.InDelta(t, 10_000.0, l.OperatingCost(), 1e-9)
	assert.Equal(t, 1_000_000.0, l.Exposure())
	assert.Equal(t, 0.02, l.EffectivePD())
}

func TestLoanExposureCollateral(t *testing.T) {
	t.Parallel()

	l := Loan{Principal: 200_000, Collateral: &Collateral{Kind: RealEstate, Amount: 100_000}}
	assert.InDelta(t, 120_000.0, l.Exposure(), 1e-9)

	l.Collateral = &Collateral{Kind: Other, Amount: 1_000_000}
	assert.Equal(t, 0.0, l.Exposure())
}

func TestLoanEffectivePD(t *testing.T) {
	t.Parallel()

	l := Loan{PD: 0.01, Country: &CountryRisk{Name: "X", PD: 0.05, TransferRate: 0.35}}
	assert.InDelta(t, 0.01*0.65+0.05*0.35, l.EffectivePD(), 1e-15)

	// a safer country never improves the obligor
	l.Country.PD = 0.005
	assert.Equal(t, 0.01, l.EffectivePD())
}

func TestParseCollateralKind(t *testing.T) {
	t.Parallel()

	k, err := ParseCollateralKind("Securities")
	require.NoError(t, err)
	assert.Equal(t, Securities, k)

	_, err = ParseCollateralKind("gold")
	assert.ErrorContains(t, err, "real-estate")
}
