package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	optionsPath := filepath.Join(dir, "options.csv")
	loansPath := filepath.Join(dir, "loans.csv")

	j, err := NewCSV(optionsPath, loansPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Equal(t, [][]string{optionHeader}, readCSV(t, optionsPath))
	assert.Equal(t, [][]string{loanHeader}, readCSV(t, loansPath))
}

func TestCSVJournalAppendsAcrossOpens(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	optionsPath := filepath.Join(dir, "options.csv")
	loansPath := filepath.Join(dir, "loans.csv")

	first := NewOptionRun(optionReport(false))
	second := NewOptionRun(optionReport(true))
	loan := NewLoanRun(loanReport(t, 0))

	j, err := NewCSV(optionsPath, loansPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordOption(first))
	require.NoError(t, j.RecordLoan(loan))
	require.NoError(t, j.Close())

	j, err = NewCSV(optionsPath, loansPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordOption(second))
	require.NoError(t, j.Close())

	opts := readCSV(t, optionsPath)
	require.Len(t, opts, 3)
	assert.Equal(t, optionHeader, opts[0])
	assert.Equal(t, first.ID, opts[1][0])
	assert.Equal(t, second.ID, opts[2][0])

	loans := readCSV(t, loansPath)
	require.Len(t, loans, 2)
	assert.Equal(t, loanHeader, loans[0])
	assert.Equal(t, loan.ID, loans[1][0])
}

func TestCSVJournalRecordOption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	optionsPath := filepath.Join(dir, "options.csv")

	j, err := NewCSV(optionsPath, filepath.Join(dir, "loans.csv"))
	require.NoError(t, err)

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, j.RecordOption(OptionRun{ID: "O1", Time: at, Report: optionReport(true)}))
	require.NoError(t, j.RecordOption(OptionRun{ID: "O2", Time: at, Report: optionReport(false)}))
	require.NoError(t, j.Close())

	rows := readCSV(t, optionsPath)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"O1", "2026-02-03T04:05:06Z", "monte-carlo", "call", "european", "100", "1", "100", "0.05", "0", "0.2", "10.45", "0.02", "0.64", "0.019", "37.5", "-6.4", "53.2"}, rows[1])
	assert.Equal(t, "", rows[2][13])
	assert.Len(t, rows[2], len(optionHeader))
}

func TestCSVJournalRecordLoan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	loansPath := filepath.Join(dir, "loans.csv")

	j, err := NewCSV(filepath.Join(dir, "options.csv"), loansPath)
	require.NoError(t, err)

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, j.RecordLoan(LoanRun{ID: "L1", Time: at, Report: loanReport(t, 0.1)}))
	require.NoError(t, j.Close())

	rows := readCSV(t, loansPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"L1", "2026-02-03T04:05:06Z", "Ba2", "1e+06", "0.02", "0.45", "1", "fixed-rate 0.08", "1000000.00", "9000.00", "80000.00", "31000.00", "0.3875", "true"}, rows[1])
}

func TestNewCSVBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV("/nonexistent/dir/options.csv", "/nonexistent/dir/loans.csv")
	assert.Error(t, err)
}
