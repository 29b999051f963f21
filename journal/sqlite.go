package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/pricer/report"
)

type SQLiteJournal struct {
	db *sqlx.DB
}

type optionRow struct {
	ID       string          `db:"id"`
	Time     time.Time       `db:"time"`
	Model    string          `db:"model"`
	Type     string          `db:"option_type"`
	Style    string          `db:"style"`
	Strike   float64         `db:"strike"`
	Maturity float64         `db:"maturity"`
	Spot     float64         `db:"spot"`
	Vol      float64         `db:"vol"`
	Price    decimal.Decimal `db:"price"`
	StdErr   decimal.Decimal `db:"std_err"`
	Detail   string          `db:"detail"`
}

type loanRow struct {
	ID              string          `db:"id"`
	Time            time.Time       `db:"time"`
	Rating          string          `db:"rating"`
	Principal       float64         `db:"principal"`
	Policy          string          `db:"policy"`
	ExpectedLoss    decimal.Decimal `db:"expected_loss"`
	EconomicCapital decimal.Decimal `db:"economic_capital"`
	NetIncome       decimal.Decimal `db:"net_income"`
	RAROC           decimal.Decimal `db:"raroc"`
	Accepted        sql.NullBool    `db:"accepted"`
	Detail          string          `db:"detail"`
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOption(run OptionRun) error {
	detail, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode option report: %w", err)
	}

	r := run.Report
	_, err = j.db.NamedExec(`
		INSERT INTO option_runs
		(id, time, model, option_type, style, strike, maturity, spot, vol, price, std_err, detail)
		VALUES (:id, :time, :model, :option_type, :style, :strike, :maturity, :spot, :vol, :price, :std_err, :detail)`,
		optionRow{
			ID:       run.ID,
			Time:     run.Time.UTC(),
			Model:    string(r.Model),
			Type:     string(r.Option.Type),
			Style:    string(r.Option.Style),
			Strike:   r.Option.Strike,
			Maturity: r.Option.Maturity,
			Spot:     r.Market.Spot,
			Vol:      r.Market.Vol,
			Price:    r.Price,
			StdErr:   r.StdErr,
			Detail:   string(detail),
		})
	return err
}

func (j *SQLiteJournal) RecordLoan(run LoanRun) error {
	detail, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode loan report: %w", err)
	}

	r := run.Report
	row := loanRow{
		ID:              run.ID,
		Time:            run.Time.UTC(),
		Rating:          r.Loan.Rating,
		Principal:       r.Loan.Principal,
		Policy:          r.Policy,
		ExpectedLoss:    r.ExpectedLoss,
		EconomicCapital: r.EconomicCapital,
		NetIncome:       r.NetIncome,
		RAROC:           r.RAROC,
		Detail:          string(detail),
	}
	if r.Decision != nil {
		row.Accepted = sql.NullBool{Bool: r.Decision.Accepted, Valid: true}
	}

	_, err = j.db.NamedExec(`
		INSERT INTO loan_runs
		(id, time, rating, principal, policy, expected_loss, economic_capital, net_income, raroc, accepted, detail)
		VALUES (:id, :time, :rating, :principal, :policy, :expected_loss, :economic_capital, :net_income, :raroc, :accepted, :detail)`,
		row)
	return err
}

// ExportOrg renders the run with the given id, option or loan, as Org.
func (j *SQLiteJournal) ExportOrg(id string) (string, error) {
	if run, err := j.GetOption(id); err == nil {
		return report.FormatOptionOrg(run.ID, run.Report), nil
	} else if !isNotFound(err) {
		return "", err
	}

	run, err := j.GetLoan(id)
	if err != nil {
		return "", err
	}
	return report.FormatLoanOrg(run.ID, run.Report), nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
