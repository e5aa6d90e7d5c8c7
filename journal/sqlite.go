package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordFill(f FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, cl_ord_id, broker_id, symbol, side, quantity, price, commission, strategy_tag, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FillID, f.ClOrdID, f.BrokerID, f.Symbol, f.Side,
		f.Quantity, f.Price, f.Commission, f.StrategyTag, f.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, equity, cash, positions_value, drawdown)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Equity, e.Cash, e.PositionsValue, e.Drawdown,
	)
	return err
}

// ListFills returns recorded fills for a symbol in time order.
func (j *SQLiteJournal) ListFills(symbol string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT fill_id, cl_ord_id, broker_id, symbol, side, quantity, price, commission, strategy_tag, time
		FROM fills WHERE symbol = ? ORDER BY time`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var f FillRecord
		var ts time.Time
		if err := rows.Scan(&f.FillID, &f.ClOrdID, &f.BrokerID, &f.Symbol, &f.Side,
			&f.Quantity, &f.Price, &f.Commission, &f.StrategyTag, &ts); err != nil {
			return nil, err
		}
		f.Time = ts
		out = append(out, f)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
