package nfa

// BoundedBacktracker is a depth-first matcher with a bit vector over
// (state, position) pairs. Each pair is explored at most once, so the
// worst case is O(states * len(haystack)) rather than exponential, and
// the same memoization terminates zero-width repetition loops.
//
// It is only usable when the bit vector fits the memory budget; the meta
// engine checks CanHandle and falls back to the PikeVM otherwise. For
// small inputs it beats the PikeVM by a wide margin because threads and
// slot copies never materialize.
//
// A BoundedBacktracker holds per-search state and must not be shared
// between concurrent searches; create one per goroutine.
type BoundedBacktracker struct {
	nfa *NFA

	// visited bits, laid out state-major: bit (state*(inputLen+1) + pos).
	visited  []uint64
	inputLen int

	numStates int

	// maxVisitedBits bounds visited memory. Default 256KB worth of bits.
	maxVisitedBits int

	slots    []int
	haystack []byte
}

// NewBoundedBacktracker creates a backtracker for the given program.
func NewBoundedBacktracker(nfa *NFA) *BoundedBacktracker {
	return &BoundedBacktracker{
		nfa:            nfa,
		numStates:      nfa.States(),
		maxVisitedBits: 256 * 1024 * 8,
	}
}

// CanHandle reports whether a haystack of the given length fits the
// visited-bit budget.
func (b *BoundedBacktracker) CanHandle(haystackLen int) bool {
	return b.numStates*(haystackLen+1) <= b.maxVisitedBits
}

// Search runs an unanchored search starting at start. On success it
// returns the capture slot vector and true.
func (b *BoundedBacktracker) Search(haystack []byte, start int) ([]int, bool) {
	return b.search(haystack, start, false)
}

// SearchAt runs an anchored search at exactly start.
func (b *BoundedBacktracker) SearchAt(haystack []byte, start int) ([]int, bool) {
	return b.search(haystack, start, true)
}

func (b *BoundedBacktracker) search(haystack []byte, start int, anchored bool) ([]int, bool) {
	if start < 0 || start > len(haystack) || !b.CanHandle(len(haystack)) {
		return nil, false
	}
	b.haystack = haystack
	b.slots = newSlots(b.nfa.SlotCount())

	for sp := start; sp <= len(haystack); sp++ {
		// Fresh memoization per start offset: a (state, pos) pair that
		// failed from one start can still succeed from another because
		// the accepting path may differ in what it already consumed.
		b.reset(len(haystack))
		for i := range b.slots {
			b.slots[i] = -1
		}
		if b.backtrack(sp, b.nfa.Start()) {
			return cloneSlots(b.slots), true
		}
		if anchored {
			break
		}
	}
	return nil, false
}

// reset sizes and clears the visited bit vector.
func (b *BoundedBacktracker) reset(haystackLen int) {
	b.inputLen = haystackLen
	words := (b.numStates*(haystackLen+1) + 63) / 64
	if cap(b.visited) >= words {
		b.visited = b.visited[:words]
		for i := range b.visited {
			b.visited[i] = 0
		}
	} else {
		b.visited = make([]uint64, words)
	}
}

// shouldVisit marks (state, pos) and reports whether it was unvisited.
func (b *BoundedBacktracker) shouldVisit(state StateID, pos int) bool {
	idx := int(state)*(b.inputLen+1) + pos
	word, bit := idx/64, uint64(1)<<(idx%64)
	if b.visited[word]&bit != 0 {
		return false
	}
	b.visited[word] |= bit
	return true
}

// backtrack explores from (pos, state) depth-first. Capture slots are
// written on entry and restored when a branch fails, so only the
// accepting path's captures survive.
func (b *BoundedBacktracker) backtrack(pos int, state StateID) bool {
	if state == InvalidState || int(state) >= b.numStates {
		return false
	}
	if !b.shouldVisit(state, pos) {
		return false
	}
	s := b.nfa.State(state)

	switch s.Kind() {
	case StateMatch:
		return true

	case StateByteRange:
		lo, hi, next := s.ByteRange()
		if pos < len(b.haystack) {
			if c := b.haystack[pos]; c >= lo && c <= hi {
				return b.backtrack(pos+1, next)
			}
		}
		return false

	case StateSparse:
		if pos >= len(b.haystack) {
			return false
		}
		c := b.haystack[pos]
		for _, tr := range s.Transitions() {
			if c >= tr.Lo && c <= tr.Hi {
				return b.backtrack(pos+1, tr.Next)
			}
		}
		return false

	case StateSplit:
		left, right := s.Split()
		return b.backtrack(pos, left) || b.backtrack(pos, right)

	case StateEpsilon:
		return b.backtrack(pos, s.Epsilon())

	case StateCapture:
		slot, next := s.Capture()
		if int(slot) >= len(b.slots) {
			return b.backtrack(pos, next)
		}
		old := b.slots[slot]
		b.slots[slot] = pos
		if b.backtrack(pos, next) {
			return true
		}
		b.slots[slot] = old
		return false

	case StateLook:
		look, next := s.Look()
		if CheckLook(look, b.haystack, pos) {
			return b.backtrack(pos, next)
		}
		return false

	case StateFail:
		return false
	}
	return false
}
