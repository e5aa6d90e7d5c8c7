package feed

import (
	"container/heap"

	"github.com/rustyeddy/quantsim/market"
)

// Synchronizer merges independent per-instrument bar sequences into one
// chronological stream of grouped events. Each event holds every symbol
// that has a bar at that exact timestamp; symbols with no bar there are
// simply absent from the event; there is no forward-fill and no waiting.
//
// The merge is a k-way heap merge: the queue is seeded with the head bar
// of every sequence, and each emitted bar pulls its sequence's next bar
// back into the queue.
type Synchronizer struct {
	h entryHeap
}

type entry struct {
	bar market.Bar
	src *Bars
}

func NewSynchronizer(seqs ...*Bars) *Synchronizer {
	s := &Synchronizer{h: make(entryHeap, 0, len(seqs))}
	for _, seq := range seqs {
		if bar, ok := seq.Next(); ok {
			s.h = append(s.h, entry{bar: bar, src: seq})
		}
	}
	heap.Init(&s.h)
	return s
}

// Next returns the event at the earliest remaining timestamp, or false
// when every sequence is exhausted. Output timestamps strictly increase.
func (s *Synchronizer) Next() (map[string]market.Bar, bool) {
	if s.h.Len() == 0 {
		return nil, false
	}

	ts := s.h[0].bar.Time
	event := make(map[string]market.Bar)
	for s.h.Len() > 0 && s.h[0].bar.Time.Equal(ts) {
		e := heap.Pop(&s.h).(entry)
		event[e.bar.Symbol] = e.bar
		if next, ok := e.src.Next(); ok {
			heap.Push(&s.h, entry{bar: next, src: e.src})
		}
	}
	return event, true
}

// entryHeap orders by (timestamp, symbol). The symbol tie-break only makes
// the heap deterministic; grouping makes it unobservable downstream.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if !h[i].bar.Time.Equal(h[j].bar.Time) {
		return h[i].bar.Time.Before(h[j].bar.Time)
	}
	return h[i].bar.Symbol < h[j].bar.Symbol
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
