package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ivCmd = &cobra.Command{
	Use:   "iv",
	Short: "Solve for Black-Scholes implied volatility",
	Long: `Find the volatility at which Black-Scholes reproduces an observed
European option price. The search interval and tolerance come from the
implied_vol section of the config.

Example:
  pricer iv --price 10.45 --strike 100 --maturity 1`,
	Args: cobra.NoArgs,
	RunE: runIV,
}

var (
	ivFlags    optionFlags
	ivObserved float64
)

func init() {
	rootCmd.AddCommand(ivCmd)
	ivFlags.register(ivCmd, false)
	ivCmd.Flags().Float64VarP(&ivObserved, "price", "p", 0, "observed option price (required)")
	ivCmd.MarkFlagRequired("price")
}

func runIV(cmd *cobra.Command, args []string) error {
	in, err := ivFlags.parse(cmd)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	vol, err := s.eng.ImpliedVolatility(in.mkt, in.opt, ivObserved)
	if err != nil {
		return fmt.Errorf("implied vol: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "implied vol: %.6f (%.2f%%)\n", vol, 100*vol)
	return nil
}
