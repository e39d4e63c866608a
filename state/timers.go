package state

import "container/heap"

type timerItem struct {
	name  string
	dueMs int64
	index int
}

type timerHeap []*timerItem

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].dueMs < h[j].dueMs }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x any)         { it := x.(*timerItem); it.index = len(*h); *h = append(*h, it) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	it.index = -1
	*h = old[:n-1]
	return it
}
func (h timerHeap) Top() *timerItem {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// timerSet is the min-heap auto-deactivate timer scheduler, one entry
// per currently-armed pattern. It is the single-threaded analogue of a
// poller: the owning Manager computes the next wakeup and fires due
// entries from the main loop's own turn, rather than running its own
// goroutine, matching the cooperative scheduling model the rest of the
// core follows.
type timerSet struct {
	h     timerHeap
	index map[string]*timerItem
}

func newTimerSet() *timerSet {
	return &timerSet{index: map[string]*timerItem{}}
}

func (s *timerSet) arm(name string, dueMs int64) {
	if it, ok := s.index[name]; ok {
		it.dueMs = dueMs
		heap.Fix(&s.h, it.index)
		return
	}
	it := &timerItem{name: name, dueMs: dueMs, index: -1}
	s.index[name] = it
	heap.Push(&s.h, it)
}

func (s *timerSet) cancel(name string) {
	it, ok := s.index[name]
	if !ok {
		return
	}
	heap.Remove(&s.h, it.index)
	delete(s.index, name)
}

func (s *timerSet) nextDueMs() (int64, bool) {
	top := s.h.Top()
	if top == nil {
		return 0, false
	}
	return top.dueMs, true
}

// popDue removes and returns the names of every timer due at or before
// now, in due-time order.
func (s *timerSet) popDue(now int64) []string {
	var fired []string
	for {
		top := s.h.Top()
		if top == nil || top.dueMs > now {
			break
		}
		it := heap.Pop(&s.h).(*timerItem)
		delete(s.index, it.name)
		fired = append(fired, it.name)
	}
	return fired
}
