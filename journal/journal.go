// Package journal records priced options and loans so runs can be listed
// and replayed later.
package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/pricer/config"
	"github.com/rustyeddy/pricer/pkg/id"
	"github.com/rustyeddy/pricer/report"
)

type OptionRun struct {
	ID     string
	Time   time.Time
	Report report.OptionReport
}

type LoanRun struct {
	ID     string
	Time   time.Time
	Report report.LoanReport
}

type Journal interface {
	RecordOption(OptionRun) error
	RecordLoan(LoanRun) error
	Close() error
}

// NewOptionRun stamps a report with a fresh id and the current time.
func NewOptionRun(r report.OptionReport) OptionRun {
	now := time.Now().UTC()
	return OptionRun{ID: id.NewAt(now), Time: now, Report: r}
}

// NewLoanRun stamps a report with a fresh id and the current time.
func NewLoanRun(r report.LoanReport) LoanRun {
	now := time.Now().UTC()
	return LoanRun{ID: id.NewAt(now), Time: now, Report: r}
}

// Open builds the journal described by cfg.
func Open(cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "", "none":
		return Discard{}, nil
	case "csv":
		j, err := NewCSV(cfg.OptionsFile, cfg.LoansFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "sqlite":
		j, err := NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordOption(OptionRun) error { return nil }
func (Discard) RecordLoan(LoanRun) error     { return nil }
func (Discard) Close() error                 { return nil }
