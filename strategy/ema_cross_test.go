package strategy

import (
	"testing"

	"github.com/rustyeddy/quantsim/broker/sim"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMACrossEntersOnlyOnCross(t *testing.T) {
	t.Parallel()

	brk := sim.New(0, 0)
	pf := portfolio.New(100_000)

	var sides []order.Side
	brk.OnFill(func(o *order.Order, _ order.Fill) { sides = append(sides, o.Side) })

	s := NewEMACross(brk, pf, 2, 3, 10)

	// Uptrend from the start: the fast EMA is above the slow from the first
	// ready bar, so there is never a cross and never an entry.
	for i, c := range []float64{100, 102, 104, 106, 108, 110} {
		pushBar(s, brk, "SPY", c, i+1)
	}
	assert.Empty(t, sides)
}

func TestEMACrossReverses(t *testing.T) {
	t.Parallel()

	brk := sim.New(0, 0)
	pf := portfolio.New(100_000)

	var sides []order.Side
	brk.OnFill(func(o *order.Order, _ order.Fill) { sides = append(sides, o.Side) })

	s := NewEMACross(brk, pf, 2, 3, 10)

	// Downtrend to warm up with the fast EMA below, then a rally for a bull
	// cross, then a collapse for a bear cross.
	day := 1
	feed := func(closes ...float64) {
		for _, c := range closes {
			pushBar(s, brk, "SPY", c, day)
			day++
		}
	}

	feed(110, 108, 106, 104, 102)
	require.Empty(t, sides)

	feed(115, 125, 135)
	require.NotEmpty(t, sides)
	assert.Equal(t, order.Buy, sides[0])
	longFills := len(sides)

	feed(90, 80, 70)
	// The reversal closes the long and opens a short: two sell fills.
	require.Len(t, sides, longFills+2)
	assert.Equal(t, order.Sell, sides[longFills])
	assert.Equal(t, order.Sell, sides[longFills+1])

	pos := pf.Positions["SPY"]
	require.NotNil(t, pos)
	assert.InDelta(t, -10.0, pos.Quantity, 1e-9)
}
