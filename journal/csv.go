package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var (
	optionHeader = []string{"id", "time", "model", "type", "style", "strike", "maturity", "spot", "rate", "dividend", "vol", "price", "std_err", "delta", "gamma", "vega", "theta", "rho"}
	loanHeader   = []string{"id", "time", "rating", "principal", "pd", "lgd", "maturity", "policy", "exposure", "expected_loss", "economic_capital", "net_income", "raroc", "accepted"}
)

type CSVJournal struct {
	options *csv.Writer
	loans   *csv.Writer
	of, lf  *os.File
}

// NewCSV opens both files for append, creating them as needed. A header
// is written only to a file that is still empty.
func NewCSV(optionsPath, loansPath string) (*CSVJournal, error) {
	of, newOptions, err := openAppend(optionsPath)
	if err != nil {
		return nil, err
	}
	lf, newLoans, err := openAppend(loansPath)
	if err != nil {
		_ = of.Close()
		return nil, err
	}

	j := &CSVJournal{options: csv.NewWriter(of), loans: csv.NewWriter(lf), of: of, lf: lf}
	if newOptions {
		if err := j.write(j.options, optionHeader); err != nil {
			_ = j.Close()
			return nil, err
		}
	}
	if newLoans {
		if err := j.write(j.loans, loanHeader); err != nil {
			_ = j.Close()
			return nil, err
		}
	}
	return j, nil
}

func openAppend(path string) (*os.File, bool, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, false, err
	}
	return fh, info.Size() == 0, nil
}

func (j *CSVJournal) RecordOption(run OptionRun) error {
	r := run.Report
	row := []string{
		run.ID,
		run.Time.UTC().Format(time.RFC3339Nano),
		string(r.Model),
		string(r.Option.Type),
		string(r.Option.Style),
		f(r.Option.Strike),
		f(r.Option.Maturity),
		f(r.Market.Spot),
		f(r.Market.Rate),
		f(r.Market.Dividend),
		f(r.Market.Vol),
		r.Price.String(),
		r.StdErr.String(),
	}
	if g := r.Greeks; g != nil {
		row = append(row, g.Delta.String(), g.Gamma.String(), g.Vega.String(), g.Theta.String(), g.Rho.String())
	} else {
		row = append(row, "", "", "", "", "")
	}
	return j.write(j.options, row)
}

func (j *CSVJournal) RecordLoan(run LoanRun) error {
	r := run.Report
	accepted := ""
	if r.Decision != nil {
		accepted = strconv.FormatBool(r.Decision.Accepted)
	}
	return j.write(j.loans, []string{
		run.ID,
		run.Time.UTC().Format(time.RFC3339Nano),
		r.Loan.Rating,
		f(r.Loan.Principal),
		f(r.Loan.PD),
		f(r.Loan.LGD),
		f(r.Loan.Maturity),
		r.Policy,
		cents(r.Exposure),
		cents(r.ExpectedLoss),
		cents(r.EconomicCapital),
		cents(r.NetIncome),
		r.RAROC.String(),
		accepted,
	})
}

func (j *CSVJournal) Close() error {
	j.options.Flush()
	if err := j.options.Error(); err != nil {
		return err
	}
	j.loans.Flush()
	if err := j.loans.Error(); err != nil {
		return err
	}

	if err := j.of.Close(); err != nil {
		return err
	}
	return j.lf.Close()
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func cents(d decimal.Decimal) string {
	return d.StringFixed(2)
}
