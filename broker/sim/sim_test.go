package sim

import (
	"testing"
	"time"

	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func bar(symbol string, close float64) market.Bar {
	return market.Bar{
		Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 1000,
		Symbol: symbol,
	}
}

func TestMarketOrderFillsAtClose(t *testing.T) {
	t.Parallel()

	b := New(0.001, 0)

	var fills []order.Fill
	b.OnFill(func(o *order.Order, f order.Fill) { fills = append(fills, f) })

	b.SetMarketContext(bar("SPY", 150.0))

	o := order.New("SPY", order.Buy, 100, order.Market, 0)
	require.NoError(t, b.SubmitOrder(o))

	require.Len(t, fills, 1)
	assert.InDelta(t, 150.0, fills[0].Price, tol)
	assert.InDelta(t, 100.0, fills[0].Quantity, tol)
	assert.InDelta(t, 15.0, fills[0].Commission, tol) // 150 * 100 * 0.001
	assert.InDelta(t, 0.0, fills[0].Remaining, tol)
	assert.Equal(t, order.Filled, o.Status)
	assert.NotEmpty(t, o.BrokerID)
}

func TestMarketOrderQueuesWithoutContext(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	filled := 0
	b.OnFill(func(*order.Order, order.Fill) { filled++ })

	o := order.New("SPY", order.Buy, 100, order.Market, 0)
	require.NoError(t, b.SubmitOrder(o))
	assert.Equal(t, order.Accepted, o.Status)
	assert.Zero(t, filled)
	assert.Len(t, b.OpenOrders(), 1)

	// Context for a different symbol leaves it queued.
	b.SetMarketContext(bar("QQQ", 400.0))
	assert.Zero(t, filled)

	b.SetMarketContext(bar("SPY", 151.0))
	assert.Equal(t, 1, filled)
	assert.Equal(t, order.Filled, o.Status)
	assert.Empty(t, b.OpenOrders())
}

func TestSlippage(t *testing.T) {
	t.Parallel()

	b := New(0, 10) // 10 bps

	var prices []float64
	b.OnFill(func(_ *order.Order, f order.Fill) { prices = append(prices, f.Price) })

	b.SetMarketContext(bar("SPY", 100.0))
	require.NoError(t, b.SubmitOrder(order.New("SPY", order.Buy, 10, order.Market, 0)))
	require.NoError(t, b.SubmitOrder(order.New("SPY", order.Sell, 10, order.Market, 0)))

	require.Len(t, prices, 2)
	assert.InDelta(t, 100.10, prices[0], tol)
	assert.InDelta(t, 99.90, prices[1], tol)
}

func TestLimitBuyFillsWhenTouched(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	var fills []order.Fill
	b.OnFill(func(_ *order.Order, f order.Fill) { fills = append(fills, f) })

	o := order.New("SPY", order.Buy, 100, order.Limit, 100.0)
	require.NoError(t, b.SubmitOrder(o))

	// Lows above the limit never fill.
	for _, low := range []float64{101, 102, 103} {
		c := bar("SPY", low+1)
		c.Low = low
		b.SetMarketContext(c)
		assert.Empty(t, fills)
		assert.Equal(t, order.Accepted, o.Status)
	}

	c := bar("SPY", 100.5)
	c.Low = 99.5
	b.SetMarketContext(c)

	require.Len(t, fills, 1)
	assert.InDelta(t, 100.0, fills[0].Price, tol) // fills at the limit, not the low
	assert.Equal(t, order.Filled, o.Status)
}

func TestLimitSellFillsWhenTouched(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	var fills []order.Fill
	b.OnFill(func(_ *order.Order, f order.Fill) { fills = append(fills, f) })

	o := order.New("SPY", order.Sell, 100, order.Limit, 110.0)
	require.NoError(t, b.SubmitOrder(o))

	c := bar("SPY", 105)
	c.High = 108
	b.SetMarketContext(c)
	assert.Empty(t, fills)

	c = bar("SPY", 109)
	c.High = 111
	b.SetMarketContext(c)
	require.Len(t, fills, 1)
	assert.InDelta(t, 110.0, fills[0].Price, tol)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	o := order.New("SPY", order.Buy, 100, order.Limit, 90.0)
	require.NoError(t, b.SubmitOrder(o))

	assert.True(t, b.CancelOrder(o.ClOrdID))
	assert.Equal(t, order.Cancelled, o.Status)
	assert.Empty(t, b.OpenOrders())

	// Idempotent no-op on repeat and on unknown ids.
	assert.False(t, b.CancelOrder(o.ClOrdID))
	assert.False(t, b.CancelOrder("no-such-order"))

	// A cancelled order never fills.
	filled := 0
	b.OnFill(func(*order.Order, order.Fill) { filled++ })
	c := bar("SPY", 85)
	c.Low = 85
	b.SetMarketContext(c)
	assert.Zero(t, filled)
}

func TestFillFanOutInRegistrationOrder(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	var got []string
	b.OnFill(func(*order.Order, order.Fill) { got = append(got, "first") })
	b.OnFill(func(*order.Order, order.Fill) { got = append(got, "second") })
	b.OnFill(func(*order.Order, order.Fill) { got = append(got, "third") })

	b.SetMarketContext(bar("SPY", 100))
	require.NoError(t, b.SubmitOrder(order.New("SPY", order.Buy, 1, order.Market, 0)))

	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestSubmitRejectsBadOrders(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	assert.Error(t, b.SubmitOrder(order.New("SPY", order.Buy, 0, order.Market, 0)))
	assert.Error(t, b.SubmitOrder(order.New("SPY", order.Buy, -5, order.Market, 0)))
	assert.Error(t, b.SubmitOrder(order.New("SPY", order.Buy, 10, order.Limit, 0)))
}

func TestCommissionNeverNegative(t *testing.T) {
	t.Parallel()

	b := New(-0.001, 0)

	var fills []order.Fill
	b.OnFill(func(_ *order.Order, f order.Fill) { fills = append(fills, f) })

	b.SetMarketContext(bar("SPY", 100))
	require.NoError(t, b.SubmitOrder(order.New("SPY", order.Buy, 10, order.Market, 0)))

	require.Len(t, fills, 1)
	assert.GreaterOrEqual(t, fills[0].Commission, 0.0)
}

func TestSubmitFromFillCallback(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	var limit *order.Order
	var fills []order.Fill
	b.OnFill(func(_ *order.Order, f order.Fill) {
		fills = append(fills, f)
		if limit == nil {
			limit = order.New("SPY", order.Buy, 50, order.Limit, 90.0)
			require.NoError(t, b.SubmitOrder(limit))
		}
	})

	// Queue a market order, then deliver the bar that fills it. The fill
	// callback submits a limit order mid-rescan; it must survive on the book.
	mkt := order.New("SPY", order.Buy, 100, order.Market, 0)
	require.NoError(t, b.SubmitOrder(mkt))
	b.SetMarketContext(bar("SPY", 100.0))

	require.Len(t, fills, 1)
	require.NotNil(t, limit)
	assert.Equal(t, order.Accepted, limit.Status)
	require.Len(t, b.OpenOrders(), 1)
	assert.Equal(t, limit.ClOrdID, b.OpenOrders()[0].ClOrdID)

	c := bar("SPY", 91.0)
	c.Low = 89.0
	b.SetMarketContext(c)

	assert.Equal(t, order.Filled, limit.Status)
	require.Len(t, fills, 2)
	assert.InDelta(t, 90.0, fills[1].Price, tol)
	assert.Empty(t, b.OpenOrders())
}

func TestCancelFromFillCallback(t *testing.T) {
	t.Parallel()

	b := New(0, 0)

	limit := order.New("SPY", order.Sell, 10, order.Limit, 120.0)
	b.OnFill(func(o *order.Order, _ order.Fill) {
		if o.ClOrdID != limit.ClOrdID {
			b.CancelOrder(limit.ClOrdID)
		}
	})

	require.NoError(t, b.SubmitOrder(limit))
	mkt := order.New("SPY", order.Buy, 10, order.Market, 0)
	require.NoError(t, b.SubmitOrder(mkt))

	b.SetMarketContext(bar("SPY", 100.0))

	assert.Equal(t, order.Filled, mkt.Status)
	assert.Equal(t, order.Cancelled, limit.Status)
	assert.Empty(t, b.OpenOrders())

	// The cancelled order never fills, even when touched later.
	c := bar("SPY", 121.0)
	c.High = 125.0
	b.SetMarketContext(c)
	assert.Equal(t, order.Cancelled, limit.Status)
}

func TestPollIsNoOp(t *testing.T) {
	t.Parallel()

	b := New(0, 0)
	assert.NoError(t, b.Poll(50*time.Millisecond))
}
