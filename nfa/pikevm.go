package nfa

import (
	"github.com/coregx/recap/internal/conv"
	"github.com/coregx/recap/internal/sparse"
)

// PikeVM executes the NFA by lockstep simulation: a queue of threads per
// input position, each carrying its own capture slot vector. Worst case
// is O(states * len(haystack)) regardless of the pattern, which is what
// makes it the fallback when the backtracker's memory budget is exceeded.
//
// The PikeVM itself is immutable and safe for concurrent use; every
// search allocates its own queues and slot vectors.
type PikeVM struct {
	nfa *NFA
}

// NewPikeVM creates a PikeVM for the given program.
func NewPikeVM(nfa *NFA) *PikeVM {
	return &PikeVM{nfa: nfa}
}

// pikeThread is one simulation thread. Threads produced by the same
// epsilon closure share a slot vector until one of them writes to it.
type pikeThread struct {
	state StateID
	slots []int
}

// threadQueue holds the threads for one input position in priority
// order. The sparse set deduplicates states within the position, which
// doubles as the zero-width loop guard: a repetition that consumes
// nothing cannot re-enter a state at the same position.
type threadQueue struct {
	visited *sparse.Set
	threads []pikeThread
}

func newThreadQueue(states uint32) *threadQueue {
	return &threadQueue{
		visited: sparse.NewSet(states),
		threads: make([]pikeThread, 0, 16),
	}
}

func (q *threadQueue) clear() {
	q.visited.Clear()
	q.threads = q.threads[:0]
}

// Search runs an unanchored search starting at start. On success it
// returns the capture slot vector (length SlotCount, -1 for slots whose
// group did not participate) and true.
func (p *PikeVM) Search(haystack []byte, start int) ([]int, bool) {
	return p.search(haystack, start, false)
}

// SearchAt runs an anchored search: the match must begin exactly at
// start.
func (p *PikeVM) SearchAt(haystack []byte, start int) ([]int, bool) {
	return p.search(haystack, start, true)
}

// IsMatch reports whether the pattern matches anywhere at or after
// start, without tracking captures.
func (p *PikeVM) IsMatch(haystack []byte, start int) bool {
	_, ok := p.search(haystack, start, false)
	return ok
}

func (p *PikeVM) search(haystack []byte, start int, anchored bool) ([]int, bool) {
	if start < 0 || start > len(haystack) {
		return nil, false
	}
	states := conv.IntToUint32(p.nfa.States())
	clist := newThreadQueue(states)
	nlist := newThreadQueue(states)
	slotCount := p.nfa.SlotCount()

	var matched []int
	for pos := start; ; pos++ {
		// Spawn a fresh attempt at this position. Appending after the
		// surviving threads keeps earlier start offsets at higher
		// priority, which is what makes the search leftmost. Once a
		// match is recorded, later attempts cannot beat it.
		if matched == nil && pos <= len(haystack) && (!anchored || pos == start) {
			p.addThread(clist, p.nfa.Start(), haystack, pos, newSlots(slotCount))
		}
		if len(clist.threads) == 0 && (matched != nil || pos > len(haystack) || (anchored && pos > start)) {
			break
		}

		for i := 0; i < len(clist.threads); i++ {
			t := clist.threads[i]
			s := p.nfa.State(t.state)
			switch s.Kind() {
			case StateMatch:
				// Leftmost-first: this thread outranks everything left
				// in the queue, so the rest is discarded. Higher
				// priority threads already stepped into nlist and may
				// still improve the match.
				matched = cloneSlots(t.slots)
				i = len(clist.threads)

			case StateByteRange:
				if pos < len(haystack) {
					lo, hi, next := s.ByteRange()
					if b := haystack[pos]; b >= lo && b <= hi {
						p.addThread(nlist, next, haystack, pos+1, t.slots)
					}
				}

			case StateSparse:
				if pos < len(haystack) {
					b := haystack[pos]
					for _, tr := range s.Transitions() {
						if b >= tr.Lo && b <= tr.Hi {
							p.addThread(nlist, tr.Next, haystack, pos+1, t.slots)
							break
						}
					}
				}
			}
		}

		clist, nlist = nlist, clist
		nlist.clear()
	}
	return matched, matched != nil
}

// addThread adds a state to the queue, expanding epsilon transitions
// eagerly so the queue only ever holds consuming states and Match.
// Branch order encodes priority: split left before split right.
func (p *PikeVM) addThread(q *threadQueue, id StateID, haystack []byte, pos int, slots []int) {
	if q.visited.Contains(uint32(id)) {
		return
	}
	q.visited.Insert(uint32(id))

	s := p.nfa.State(id)
	if s == nil {
		return
	}
	switch s.Kind() {
	case StateSplit:
		left, right := s.Split()
		p.addThread(q, left, haystack, pos, slots)
		p.addThread(q, right, haystack, pos, slots)

	case StateEpsilon:
		p.addThread(q, s.Epsilon(), haystack, pos, slots)

	case StateCapture:
		slot, next := s.Capture()
		if int(slot) < len(slots) && slots[slot] != pos {
			// The vector may be shared with sibling branches of an
			// enclosing split; copy before writing.
			slots = cloneSlots(slots)
			slots[slot] = pos
		}
		p.addThread(q, next, haystack, pos, slots)

	case StateLook:
		look, next := s.Look()
		if CheckLook(look, haystack, pos) {
			p.addThread(q, next, haystack, pos, slots)
		}

	case StateFail:
		// Dead end.

	default:
		// Match, ByteRange, Sparse: consuming states wait for the step.
		q.threads = append(q.threads, pikeThread{state: id, slots: slots})
	}
}

// newSlots allocates a slot vector with every entry unset.
func newSlots(n int) []int {
	if n == 0 {
		return nil
	}
	slots := make([]int, n)
	for i := range slots {
		slots[i] = -1
	}
	return slots
}

func cloneSlots(slots []int) []int {
	if slots == nil {
		return nil
	}
	dst := make([]int, len(slots))
	copy(dst, slots)
	return dst
}
