package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"pending_to_accepted", Pending, Accepted, true},
		{"pending_to_rejected", Pending, Rejected, true},
		{"pending_to_filled", Pending, Filled, false},
		{"pending_to_cancelled", Pending, Cancelled, false},
		{"accepted_to_filled", Accepted, Filled, true},
		{"accepted_to_partial", Accepted, PartiallyFilled, true},
		{"accepted_to_cancelled", Accepted, Cancelled, true},
		{"accepted_to_rejected", Accepted, Rejected, true},
		{"partial_to_filled", PartiallyFilled, Filled, true},
		{"partial_to_cancelled", PartiallyFilled, Cancelled, false},
		{"filled_is_terminal", Filled, Cancelled, false},
		{"cancelled_is_terminal", Cancelled, Filled, false},
		{"rejected_is_terminal", Rejected, Accepted, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTransitionRejectsIllegalEdge(t *testing.T) {
	t.Parallel()

	o := New("SPY", Buy, 100, Market, 0)
	require.Equal(t, Pending, o.Status)

	// A fill on a cancelled order must not stick.
	require.NoError(t, o.Transition(Accepted))
	require.NoError(t, o.Transition(Cancelled))

	err := o.Transition(Filled)
	require.ErrorIs(t, err, ErrBadTransition)
	assert.Equal(t, Cancelled, o.Status)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, Pending.Terminal())
	assert.False(t, Accepted.Terminal())
	assert.False(t, PartiallyFilled.Terminal())
	assert.True(t, Filled.Terminal())
	assert.True(t, Rejected.Terminal())
	assert.True(t, Cancelled.Terminal())
}

func TestNewOrderDefaults(t *testing.T) {
	t.Parallel()

	o := New("AAPL", Sell, 50, Limit, 180.5)
	assert.NotEmpty(t, o.ClOrdID)
	assert.Equal(t, Pending, o.Status)
	assert.Equal(t, Day, o.TimeInForce)
	assert.Equal(t, 180.5, o.LimitPrice)
	assert.Empty(t, o.BrokerID)

	o2 := New("AAPL", Sell, 50, Limit, 180.5)
	assert.NotEqual(t, o.ClOrdID, o2.ClOrdID)
}
