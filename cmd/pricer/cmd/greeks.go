package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/pricer/report"
)

var greeksCmd = &cobra.Command{
	Use:   "greeks",
	Short: "Price an option and compute its Greeks",
	Long: `Compute Delta, Gamma, Vega, Theta and Rho.

Black-Scholes uses the closed-form Greeks. Other models bump each input
by --bump (relative) and reprice with common random numbers.

Vega and Rho are per 1.00 change in vol and rate; Theta is per year.

Example:
  pricer greeks -m binomial --steps 800 --style american --type put`,
	Args: cobra.NoArgs,
	RunE: runGreeks,
}

var greeksFlags optionFlags

func init() {
	rootCmd.AddCommand(greeksCmd)
	greeksFlags.register(greeksCmd, true)
}

func runGreeks(cmd *cobra.Command, args []string) error {
	in, err := greeksFlags.parse(cmd)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.eng.ComputeGreeks(cmd.Context(), in.mkt, in.opt, in.kind, in.model)
	if err != nil {
		return fmt.Errorf("greeks: %w", err)
	}
	return s.emitOption(cmd, report.NewOptionReport(in.mkt, in.opt, g.Base, &g))
}
