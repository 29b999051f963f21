package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var mcTraceCmd = &cobra.Command{
	Use:   "mc-trace",
	Short: "Show how a Monte Carlo estimate converges",
	Long: `Run a Monte Carlo pricing and print the running estimate, standard
error and confidence interval after every block of samples.

Example:
  pricer mc-trace --paths 100000 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runMCTrace,
}

var traceFlags optionFlags

func init() {
	rootCmd.AddCommand(mcTraceCmd)
	traceFlags.register(mcTraceCmd, true)
}

func runMCTrace(cmd *cobra.Command, args []string) error {
	in, err := traceFlags.parse(cmd)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	pts, seed, err := s.eng.Trace(cmd.Context(), in.mkt, in.opt, in.model)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  seed %d\n\n", in.opt, seed)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "samples\tprice\tstd err\tlower\tupper\t")
	for _, p := range pts {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.6f\t\n", p.Samples, p.Price, p.StdErr, p.Lower, p.Upper)
	}
	return w.Flush()
}
