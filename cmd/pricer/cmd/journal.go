package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/pricer/config"
	"github.com/rustyeddy/pricer/journal"
	"github.com/rustyeddy/pricer/report"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the result journal",
	Long: `Query and display priced options and loans from the SQLite journal.

Subcommands:
  show   - Show a single run by ID
  today  - List runs recorded today
  day    - List runs recorded on a specific day

Examples:
  pricer journal show <run-id>
  pricer journal today
  pricer journal day 2026-01-15`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a single option or loan run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List runs recorded today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List runs recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./pricer.sqlite", "path to SQLite journal DB (default: journal.db_path from --config)")
}

// openJournalDB opens --db when given, else the configured journal.db_path.
func openJournalDB(cmd *cobra.Command) (*journal.SQLiteJournal, error) {
	path := journalDBPath
	if !cmd.Flags().Changed("db") && cfgFile != "" {
		cfg, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if cfg.Journal.DBPath != "" {
			path = cfg.Journal.DBPath
		}
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	out, err := j.ExportOrg(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd, args[0])
}

func listDay(cmd *cobra.Command, day string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	opts, err := j.ListOptionsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query options: %w", err)
	}
	loans, err := j.ListLoansBetween(start, end)
	if err != nil {
		return fmt.Errorf("query loans: %w", err)
	}

	writeRuns(cmd.OutOrStdout(), day, opts, loans)
	return nil
}

func writeRuns(out io.Writer, day string, opts []journal.OptionRun, loans []journal.LoanRun) {
	fmt.Fprintf(out, "* Runs %s\n", day)
	if len(opts) == 0 && len(loans) == 0 {
		fmt.Fprintln(out, "(none)")
		return
	}
	for _, r := range opts {
		fmt.Fprint(out, report.FormatOptionOrg(r.ID, r.Report))
	}
	for _, r := range loans {
		fmt.Fprint(out, report.FormatLoanOrg(r.ID, r.Report))
	}
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
