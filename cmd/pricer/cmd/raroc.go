package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/pricer/engine"
	"github.com/rustyeddy/pricer/instrument"
	"github.com/rustyeddy/pricer/report"
)

var rarocCmd = &cobra.Command{
	Use:   "raroc",
	Short: "Compute the risk-adjusted return on capital of a loan",
	Long: `Compute expected loss, economic capital, net income and RAROC for a
single-period loan, then screen it against the configured limits.

PD may be given directly or looked up from --rating in the config's rating
table. --country blends in the transfer risk of that country, and
--collateral reduces exposure after the haircut for its kind.

Examples:
  pricer raroc --principal 1000000 --pd 0.02 --lgd 0.45 --revenue-rate 0.05 --cost-rate 0.01
  pricer raroc --rating Ba2 --maturity 3 --country France --collateral 250000 --collateral-kind real-estate
  pricer raroc --pd 0.02 --policy basel-irb`,
	Args: cobra.NoArgs,
	RunE: runRaroc,
}

var (
	rcLoan           instrument.Loan
	rcCountry        string
	rcCollateral     float64
	rcCollateralKind string
	rcPolicy         string
	rcCapitalRate    float64
	rcHurdle         float64
)

func init() {
	rootCmd.AddCommand(rarocCmd)

	fl := rarocCmd.Flags()
	fl.Float64VarP(&rcLoan.Principal, "principal", "P", 1_000_000, "loan principal")
	fl.Float64Var(&rcLoan.PD, "pd", 0, "probability of default (unset: look up --rating)")
	fl.Float64Var(&rcLoan.LGD, "lgd", 0.45, "loss given default")
	fl.Float64VarP(&rcLoan.Maturity, "maturity", "t", 1, "maturity in years")
	fl.Float64Var(&rcLoan.RevenueRate, "revenue-rate", 0.05, "spread and fees as a share of principal")
	fl.Float64Var(&rcLoan.OperatingCostRate, "cost-rate", 0.01, "operating cost as a share of principal")
	fl.StringVar(&rcLoan.Rating, "rating", "", "facility rating, e.g. Baa2")
	fl.StringVar(&rcCountry, "country", "", "obligor country from the config's country table")
	fl.Float64Var(&rcCollateral, "collateral", 0, "collateral amount before haircut")
	fl.StringVar(&rcCollateralKind, "collateral-kind", "other", "collateral kind (real-estate, securities, vehicle, other)")
	fl.StringVar(&rcPolicy, "policy", "", "capital policy override (fixed-rate, unexpected-loss, basel-irb)")
	fl.Float64Var(&rcCapitalRate, "capital-rate", 0, "fixed-rate: capital as a share of exposure")
	fl.Float64Var(&rcHurdle, "hurdle", 0, "minimum acceptable RAROC (overrides config)")
}

func runRaroc(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	loan := rcLoan
	if rcCollateral > 0 {
		kind, err := instrument.ParseCollateralKind(rcCollateralKind)
		if err != nil {
			return err
		}
		loan.Collateral = &instrument.Collateral{Kind: kind, Amount: rcCollateral}
	}
	var pd *float64
	if cmd.Flags().Changed("pd") {
		pd = &loan.PD
	}
	loan, err = s.eng.ResolveLoan(loan, pd, rcCountry)
	if err != nil {
		return fmt.Errorf("resolve loan: %w", err)
	}

	credit := s.cfg.Credit
	if rcPolicy != "" {
		credit.Policy = rcPolicy
	}
	if rcCapitalRate != 0 {
		credit.CapitalRate = rcCapitalRate
	}
	policy, err := engine.Policy(credit)
	if err != nil {
		return err
	}

	res, err := s.eng.ComputeRaroc(loan, policy)
	if err != nil {
		return fmt.Errorf("raroc: %w", err)
	}

	if cmd.Flags().Changed("hurdle") {
		s.cfg.Credit.Limits.HurdleRate = rcHurdle
	}
	d := s.eng.Screen(res)
	return s.emitLoan(cmd, report.NewLoanReport(loan, res, &d))
}
