package order

import (
	"errors"
	"fmt"
)

// Status is the order lifecycle state.
type Status string

const (
	Pending         Status = "pending"
	Accepted        Status = "accepted"
	Filled          Status = "filled"
	PartiallyFilled Status = "partially_filled"
	Rejected        Status = "rejected"
	Cancelled       Status = "cancelled"
)

var ErrBadTransition = errors.New("illegal order status transition")

// transitions is the exhaustive set of legal status edges. Anything not
// listed here is rejected by Transition.
var transitions = map[Status][]Status{
	Pending:         {Accepted, Rejected},
	Accepted:        {Filled, PartiallyFilled, Rejected, Cancelled},
	PartiallyFilled: {Filled},
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether the edge s -> next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Transition moves the order to next, or returns ErrBadTransition if the
// edge is not in the lifecycle table (e.g. a fill on a cancelled order).
func (o *Order) Transition(next Status) error {
	if !o.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s (order %s)", ErrBadTransition, o.Status, next, o.ClOrdID)
	}
	o.Status = next
	return nil
}
