package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// runRow is the part of a stored run needed to rebuild it.
type runRow struct {
	ID     string    `db:"id"`
	Time   time.Time `db:"time"`
	Detail string    `db:"detail"`
}

// GetOption returns a single option run by ID.
func (j *SQLiteJournal) GetOption(id string) (OptionRun, error) {
	var row runRow
	if err := j.db.Get(&row, `SELECT id, time, detail FROM option_runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OptionRun{}, fmt.Errorf("option %q: %w", id, ErrNotFound)
		}
		return OptionRun{}, err
	}
	return row.option()
}

// GetLoan returns a single loan run by ID.
func (j *SQLiteJournal) GetLoan(id string) (LoanRun, error) {
	var row runRow
	if err := j.db.Get(&row, `SELECT id, time, detail FROM loan_runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoanRun{}, fmt.Errorf("loan %q: %w", id, ErrNotFound)
		}
		return LoanRun{}, err
	}
	return row.loan()
}

// ListOptionsBetween returns option runs recorded within [start, end).
func (j *SQLiteJournal) ListOptionsBetween(start, end time.Time) ([]OptionRun, error) {
	var rows []runRow
	err := j.db.Select(&rows, `
		SELECT id, time, detail
		FROM option_runs
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	out := make([]OptionRun, 0, len(rows))
	for _, row := range rows {
		run, err := row.option()
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

// ListLoansBetween returns loan runs recorded within [start, end).
func (j *SQLiteJournal) ListLoansBetween(start, end time.Time) ([]LoanRun, error) {
	var rows []runRow
	err := j.db.Select(&rows, `
		SELECT id, time, detail
		FROM loan_runs
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	out := make([]LoanRun, 0, len(rows))
	for _, row := range rows {
		run, err := row.loan()
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (r runRow) option() (OptionRun, error) {
	run := OptionRun{ID: r.ID, Time: r.Time}
	if err := json.Unmarshal([]byte(r.Detail), &run.Report); err != nil {
		return OptionRun{}, fmt.Errorf("decode option %q: %w", r.ID, err)
	}
	return run, nil
}

func (r runRow) loan() (LoanRun, error) {
	run := LoanRun{ID: r.ID, Time: r.Time}
	if err := json.Unmarshal([]byte(r.Detail), &run.Report); err != nil {
		return LoanRun{}, fmt.Errorf("decode loan %q: %w", r.ID, err)
	}
	return run, nil
}
