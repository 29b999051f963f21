package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/pricer/config"
	"github.com/rustyeddy/pricer/engine"
	"github.com/rustyeddy/pricer/internal/logging"
	"github.com/rustyeddy/pricer/journal"
	"github.com/rustyeddy/pricer/report"
)

var rootCmd = &cobra.Command{
	Use:   "pricer",
	Short: "Option pricing, Greeks and loan RAROC from the command line",
	Long: `Pricer values vanilla options and scores loans.

It provides tools for:
  - Pricing European and American options (Black-Scholes, binomial, Monte Carlo)
  - Greeks, analytic or by bump-and-reprice
  - Implied volatility from an observed price
  - Monte Carlo convergence traces
  - Loan RAROC under fixed-rate, unexpected-loss or Basel IRB capital
  - Journaling results to CSV or SQLite

Complete documentation is available at https://github.com/rustyeddy/pricer`,
	SilenceUsage: true,
}

var (
	cfgFile     string
	logLevel    string
	journalType string
	orgOutput   bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&journalType, "journal", "", "override journal type (none, csv, sqlite)")
	rootCmd.PersistentFlags().BoolVar(&orgOutput, "org", false, "print results as Org-mode blocks")
}

// session is what a computing command needs: the loaded config, a logger,
// the engine and the journal results are recorded to.
type session struct {
	cfg *config.Config
	log *zap.Logger
	eng *engine.Engine
	jnl journal.Journal
}

func openSession() (*session, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if journalType != "" {
		cfg.Journal.Type = journalType
		if cfg.Journal.OptionsFile == "" {
			cfg.Journal.OptionsFile = "options.csv"
		}
		if cfg.Journal.LoansFile == "" {
			cfg.Journal.LoansFile = "loans.csv"
		}
		if cfg.Journal.DBPath == "" {
			cfg.Journal.DBPath = "./pricer.sqlite"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}

	return &session{cfg: cfg, log: log, eng: engine.New(log, cfg), jnl: j}, nil
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.jnl.Close()
}

func (s *session) emitOption(cmd *cobra.Command, r report.OptionReport) error {
	run := journal.NewOptionRun(r)
	if err := s.jnl.RecordOption(run); err != nil {
		return fmt.Errorf("record option: %w", err)
	}

	out := cmd.OutOrStdout()
	if orgOutput {
		fmt.Fprint(out, report.FormatOptionOrg(run.ID, r))
		return nil
	}
	fmt.Fprint(out, report.FormatOptionText(r))
	return nil
}

func (s *session) emitLoan(cmd *cobra.Command, r report.LoanReport) error {
	run := journal.NewLoanRun(r)
	if err := s.jnl.RecordLoan(run); err != nil {
		return fmt.Errorf("record loan: %w", err)
	}

	out := cmd.OutOrStdout()
	if orgOutput {
		fmt.Fprint(out, report.FormatLoanOrg(run.ID, r))
		return nil
	}
	fmt.Fprint(out, report.FormatLoanText(r))
	return nil
}
