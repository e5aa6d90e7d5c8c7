package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

func NewCSV(fillsPath, equityPath string) (*CSVJournal, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"fill_id", "cl_ord_id", "broker_id", "symbol", "side", "quantity", "price", "commission", "strategy_tag", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "equity", "cash", "positions_value", "drawdown"}); err != nil {
		return nil, err
	}
	fw.Flush()
	ew.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{fills: fw, equity: ew, ff: ff, ef: ef}, nil
}

func (j *CSVJournal) RecordFill(f FillRecord) error {
	err := j.fills.Write([]string{
		f.FillID,
		f.ClOrdID,
		f.BrokerID,
		f.Symbol,
		f.Side,
		fmtFloat(f.Quantity),
		fmtFloat(f.Price),
		fmtFloat(f.Commission),
		f.StrategyTag,
		f.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		fmtFloat(e.Equity),
		fmtFloat(e.Cash),
		fmtFloat(e.PositionsValue),
		fmtFloat(e.Drawdown),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.fills.Flush()
	j.equity.Flush()
	if err := j.ff.Close(); err != nil {
		j.ef.Close()
		return err
	}
	return j.ef.Close()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
