// Package perf records the equity curve of a run and derives the standard
// risk-adjusted performance measures from it.
package perf

import (
	"math"
	"time"
)

// EquityPoint is one mark-to-market snapshot. Drawdown is relative to the
// running peak at the time the point was recorded and is never revised.
type EquityPoint struct {
	Time           time.Time
	Equity         float64
	Cash           float64
	PositionsValue float64
	Drawdown       float64
}

// Summary is the fixed set of headline metrics for a run.
type Summary struct {
	TotalReturn  float64
	MaxDrawdown  float64
	SharpeRatio  float64
	SortinoRatio float64
	WinRate      float64
	NumPoints    int
}

type Tracker struct {
	initialCash    float64
	periodsPerYear float64
	riskFreeRate   float64

	curve      []EquityPoint
	returns    []float64
	peak       float64
	prevEquity float64
}

// New builds a tracker. periodsPerYear annualizes Sharpe and Sortino; use
// 252 for daily bars.
func New(initialCash, periodsPerYear float64) *Tracker {
	return &Tracker{
		initialCash:    initialCash,
		periodsPerYear: periodsPerYear,
		peak:           initialCash,
		prevEquity:     initialCash,
	}
}

// SetRiskFreeRate sets the annual risk-free rate used for excess returns.
func (t *Tracker) SetRiskFreeRate(rate float64) { t.riskFreeRate = rate }

// Record appends one equity point, updating the running peak and the
// per-step return series.
func (t *Tracker) Record(ts time.Time, equity, cash, positionsValue float64) {
	if equity > t.peak {
		t.peak = equity
	}

	drawdown := 0.0
	if t.peak > 0 {
		drawdown = (t.peak - equity) / t.peak
	}

	t.curve = append(t.curve, EquityPoint{
		Time:           ts,
		Equity:         equity,
		Cash:           cash,
		PositionsValue: positionsValue,
		Drawdown:       drawdown,
	})

	if t.prevEquity > 0 {
		t.returns = append(t.returns, (equity-t.prevEquity)/t.prevEquity)
	}
	t.prevEquity = equity
}

// Curve returns the recorded equity points in order.
func (t *Tracker) Curve() []EquityPoint { return t.curve }

func (t *Tracker) TotalReturn() float64 {
	if len(t.curve) == 0 {
		return 0
	}
	final := t.curve[len(t.curve)-1].Equity
	return (final - t.initialCash) / t.initialCash
}

func (t *Tracker) MaxDrawdown() float64 {
	max := 0.0
	for _, p := range t.curve {
		if p.Drawdown > max {
			max = p.Drawdown
		}
	}
	return max
}

// SharpeRatio annualizes mean excess return over the sample standard
// deviation of per-step returns. Zero with fewer than two returns or zero
// deviation.
func (t *Tracker) SharpeRatio() float64 {
	if len(t.returns) < 2 {
		return 0
	}
	mean := t.meanReturn()
	excess := mean - t.riskFreeRate/t.periodsPerYear

	variance := 0.0
	for _, r := range t.returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(t.returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return excess / std * math.Sqrt(t.periodsPerYear)
}

// SortinoRatio uses only downside returns in the denominator (their RMS).
// With no negative returns it is +Inf for positive excess return, else 0.
func (t *Tracker) SortinoRatio() float64 {
	if len(t.returns) < 2 {
		return 0
	}
	excess := t.meanReturn() - t.riskFreeRate/t.periodsPerYear

	sumSq := 0.0
	n := 0
	for _, r := range t.returns {
		if r < 0 {
			sumSq += r * r
			n++
		}
	}
	if n == 0 {
		if excess > 0 {
			return math.Inf(1)
		}
		return 0
	}
	downside := math.Sqrt(sumSq / float64(n))
	if downside == 0 {
		return 0
	}
	return excess / downside * math.Sqrt(t.periodsPerYear)
}

// WinRate is the fraction of per-step returns that are strictly positive.
func (t *Tracker) WinRate() float64 {
	if len(t.returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range t.returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(t.returns))
}

func (t *Tracker) Summarize() Summary {
	return Summary{
		TotalReturn:  t.TotalReturn(),
		MaxDrawdown:  t.MaxDrawdown(),
		SharpeRatio:  t.SharpeRatio(),
		SortinoRatio: t.SortinoRatio(),
		WinRate:      t.WinRate(),
		NumPoints:    len(t.curve),
	}
}

func (t *Tracker) meanReturn() float64 {
	sum := 0.0
	for _, r := range t.returns {
		sum += r
	}
	return sum / float64(len(t.returns))
}
