// Package engine orchestrates a run: bars flow from the feed through the
// broker's market context into the strategy, fills flow back into the
// portfolio, and every step is marked to market into the performance
// tracker. Execution is single-threaded and deterministic; the only
// non-blocking operation is the broker poll.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/feed"
	"github.com/rustyeddy/quantsim/journal"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/perf"
	"github.com/rustyeddy/quantsim/portfolio"
	"github.com/rustyeddy/quantsim/strategy"
	"go.uber.org/zap"
)

type State int

const (
	StateInit State = iota
	StateRunning
	StateComplete
)

// DefaultPollTimeout bounds each per-bar broker poll. The engine never
// waits longer than this for a remote fill; late fills are observed on a
// later bar.
const DefaultPollTimeout = 100 * time.Millisecond

type Config struct {
	Feed        feed.DataFeed
	Strategy    strategy.Strategy
	Broker      broker.Broker
	Portfolio   *portfolio.Portfolio
	Instruments []market.Instrument
	Start, End  time.Time

	// PeriodsPerYear annualizes Sharpe/Sortino; defaults to 252.
	PeriodsPerYear float64

	// PollTimeout bounds each broker poll; defaults to DefaultPollTimeout.
	PollTimeout time.Duration

	// Journal persists fills and equity; defaults to journal.Nop.
	Journal journal.Journal

	Logger *zap.Logger
}

type Engine struct {
	feed        feed.DataFeed
	strat       strategy.Strategy
	brk         broker.Broker
	pf          *portfolio.Portfolio
	tracker     *perf.Tracker
	jrnl        journal.Journal
	instruments []market.Instrument
	start, end  time.Time
	pollTimeout time.Duration
	log         *zap.Logger

	state     State
	lastClose map[string]float64
}

// New validates the config and wires the fill path: on every fill the
// portfolio is updated first, then the fill is journaled, then the
// strategy's OnFill runs last, so strategies always observe post-fill state.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Feed == nil:
		return nil, errors.New("engine: feed is required")
	case cfg.Strategy == nil:
		return nil, errors.New("engine: strategy is required")
	case cfg.Broker == nil:
		return nil, errors.New("engine: broker is required")
	case cfg.Portfolio == nil:
		return nil, errors.New("engine: portfolio is required")
	case len(cfg.Instruments) == 0:
		return nil, errors.New("engine: at least one instrument is required")
	}

	if cfg.PeriodsPerYear == 0 {
		cfg.PeriodsPerYear = 252
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	e := &Engine{
		feed:        cfg.Feed,
		strat:       cfg.Strategy,
		brk:         cfg.Broker,
		pf:          cfg.Portfolio,
		tracker:     perf.New(cfg.Portfolio.InitialCash, cfg.PeriodsPerYear),
		jrnl:        cfg.Journal,
		instruments: cfg.Instruments,
		start:       cfg.Start,
		end:         cfg.End,
		pollTimeout: cfg.PollTimeout,
		log:         cfg.Logger,
		lastClose:   make(map[string]float64),
	}

	e.brk.OnFill(e.onFill)
	return e, nil
}

// Performance exposes the tracker the engine owns.
func (e *Engine) Performance() *perf.Tracker { return e.tracker }

func (e *Engine) State() State { return e.state }

// Run executes one pass over the configured time range and returns the
// final portfolio. The run is atomic: no pause, no resume, no early exit;
// it ends when the bar source is exhausted.
func (e *Engine) Run() (*portfolio.Portfolio, error) {
	if e.state != StateInit {
		return nil, errors.New("engine: already run")
	}
	e.state = StateRunning

	e.log.Info("run starting",
		zap.String("strategy", e.strat.Name()),
		zap.Int("instruments", len(e.instruments)),
		zap.Time("start", e.start),
		zap.Time("end", e.end),
	)

	e.strat.OnInit()

	var err error
	if e.strat.Mode() == strategy.MultiInstrument {
		err = e.runSynchronized()
	} else {
		err = e.runSequential()
	}
	if err != nil {
		return nil, err
	}

	e.state = StateComplete
	e.log.Info("run complete",
		zap.Float64("final_equity", e.pf.TotalEquity()),
		zap.Int("points", len(e.tracker.Curve())),
	)
	return e.pf, nil
}

// runSequential iterates instruments one at a time, each bar pushed into
// the broker context before the strategy sees it.
func (e *Engine) runSequential() error {
	for _, instr := range e.instruments {
		bars, err := feed.IterBars(e.feed, instr, e.start, e.end)
		if err != nil {
			return fmt.Errorf("engine: fetch %s: %w", instr.Symbol, err)
		}
		for {
			bar, ok := bars.Next()
			if !ok {
				break
			}
			if err := e.step(bar.Time, bar); err != nil {
				return err
			}
		}
	}
	return nil
}

// runSynchronized merges all instrument sequences and delivers one grouped
// event per distinct timestamp.
func (e *Engine) runSynchronized() error {
	seqs := make([]*feed.Bars, 0, len(e.instruments))
	for _, instr := range e.instruments {
		bars, err := feed.IterBars(e.feed, instr, e.start, e.end)
		if err != nil {
			return fmt.Errorf("engine: fetch %s: %w", instr.Symbol, err)
		}
		seqs = append(seqs, bars)
	}

	events := feed.NewSynchronizer(seqs...)
	for {
		event, ok := events.Next()
		if !ok {
			return nil
		}

		var ts time.Time
		for _, bar := range event {
			ts = bar.Time
			e.brk.SetMarketContext(bar)
			e.lastClose[bar.Symbol] = bar.Close
		}

		e.strat.OnBars(event)

		if err := e.brk.Poll(e.pollTimeout); err != nil {
			return fmt.Errorf("engine: broker poll: %w", err)
		}
		if err := e.record(ts); err != nil {
			return err
		}
	}
}

func (e *Engine) step(ts time.Time, bar market.Bar) error {
	e.brk.SetMarketContext(bar)
	e.lastClose[bar.Symbol] = bar.Close

	e.strat.OnBar(bar)

	if err := e.brk.Poll(e.pollTimeout); err != nil {
		return fmt.Errorf("engine: broker poll: %w", err)
	}
	return e.record(ts)
}

// record appends one equity point, valuing positions at the last seen
// close per symbol; symbols never seen fall back to average cost.
func (e *Engine) record(ts time.Time) error {
	equity := e.pf.MarkToMarket(e.lastClose)
	cash := e.pf.Cash
	e.tracker.Record(ts, equity, cash, equity-cash)

	if err := e.jrnl.RecordEquity(journal.EquityRecord{
		Time:           ts,
		Equity:         equity,
		Cash:           cash,
		PositionsValue: equity - cash,
		Drawdown:       e.tracker.Curve()[len(e.tracker.Curve())-1].Drawdown,
	}); err != nil {
		return fmt.Errorf("engine: journal equity: %w", err)
	}
	return nil
}

// onFill is the engine's fill subscriber. Ordering here is the engine's
// core guarantee: ledger first, then journal, then the strategy callback.
func (e *Engine) onFill(o *order.Order, f order.Fill) {
	e.pf.UpdatePosition(o.Symbol, o.Side, f.Quantity, f.Price, f.Commission)

	if err := e.jrnl.RecordFill(journal.FillRecord{
		FillID:      f.FillID,
		ClOrdID:     f.ClOrdID,
		BrokerID:    f.BrokerID,
		Symbol:      o.Symbol,
		Side:        string(o.Side),
		Quantity:    f.Quantity,
		Price:       f.Price,
		Commission:  f.Commission,
		StrategyTag: o.StrategyTag,
		Time:        f.Time,
	}); err != nil {
		e.log.Warn("journal fill failed", zap.String("fill_id", f.FillID), zap.Error(err))
	}

	e.strat.OnFill(o, f)
}
