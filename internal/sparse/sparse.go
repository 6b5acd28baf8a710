// Package sparse provides a sparse set over small uint32 universes.
//
// A sparse set supports O(1) insertion and membership testing and O(1)
// clearing, while keeping a dense list of members for ordered iteration.
// The matcher uses it to track which automaton states were already added
// during one input position, which is also what keeps zero-width loops
// from spinning: a state enters the set once per position.
package sparse

// Set is a set of uint32 values drawn from a fixed universe [0, capacity).
// The sparse array maps a value to its index in the dense array; a value
// is a member iff that index is in range and the dense entry points back.
type Set struct {
	sparse []uint32
	dense  []uint32
	size   uint32
}

// NewSet creates a set able to hold values in [0, capacity).
func NewSet(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value to the set. Inserting an existing member is a no-op.
// Value must be below the capacity the set was created with.
func (s *Set) Insert(value uint32) {
	if s.Contains(value) {
		return
	}
	s.dense = append(s.dense, value)
	s.sparse[value] = s.size
	s.size++
}

// Contains reports whether value is a member.
func (s *Set) Contains(value uint32) bool {
	if value >= uint32(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return idx < s.size && s.dense[idx] == value
}

// Clear removes all members in O(1). The sparse array is left stale;
// membership tests validate through the dense array, so stale entries
// are harmless.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
	s.size = 0
}

// Len returns the number of members.
func (s *Set) Len() int {
	return int(s.size)
}

// Dense returns the members in insertion order. The slice is only valid
// until the next Insert or Clear.
func (s *Set) Dense() []uint32 {
	return s.dense
}

// Resize grows the universe to [0, capacity) if needed, clearing the set.
func (s *Set) Resize(capacity uint32) {
	if capacity > uint32(len(s.sparse)) {
		s.sparse = make([]uint32, capacity)
		s.dense = make([]uint32, 0, capacity)
	}
	s.Clear()
}
