package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/pricer/report"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price an option",
	Long: `Price a European or American option with the chosen model.

Black-Scholes handles European exercise only. The binomial lattice and
Monte Carlo (Longstaff-Schwartz) also price American options.

Examples:
  pricer price --spot 100 --strike 95 --vol 0.25 --type put
  pricer price -m binomial --steps 1000 --style american --type put
  pricer price -m mc --paths 200000 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

var priceFlags optionFlags

func init() {
	rootCmd.AddCommand(priceCmd)
	priceFlags.register(priceCmd, true)
}

func runPrice(cmd *cobra.Command, args []string) error {
	in, err := priceFlags.parse(cmd)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.eng.PriceOption(cmd.Context(), in.mkt, in.opt, in.kind, in.model)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	return s.emitOption(cmd, report.NewOptionReport(in.mkt, in.opt, res, nil))
}
