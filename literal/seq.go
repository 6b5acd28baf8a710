// Package literal extracts literal byte sequences from parsed patterns.
//
// Prefilters are built from these literals: if every match of a pattern
// must begin with one of a small set of byte strings, the search can skip
// straight to candidate positions instead of running the automaton at
// every offset.
package literal

import "bytes"

// Literal is one byte sequence a match can begin with. Complete means
// the literal is an entire match on its own, not just a prefix.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// Seq is a set of alternative literals. A nil or empty Seq means no
// useful literals could be extracted.
type Seq struct {
	lits []Literal
}

// NewSeq creates an empty sequence.
func NewSeq() *Seq {
	return &Seq{}
}

// Append adds a literal, dropping duplicates.
func (s *Seq) Append(lit Literal) {
	for _, have := range s.lits {
		if bytes.Equal(have.Bytes, lit.Bytes) {
			return
		}
	}
	s.lits = append(s.lits, lit)
}

// Len returns the number of literals.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lits)
}

// IsEmpty reports whether the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s.Len() == 0
}

// Get returns the i-th literal.
func (s *Seq) Get(i int) Literal {
	return s.lits[i]
}

// AllComplete reports whether every literal is a complete match, in
// which case a prefilter hit needs no verification.
func (s *Seq) AllComplete() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.lits {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// MinLen returns the length of the shortest literal.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	min := len(s.lits[0].Bytes)
	for _, lit := range s.lits[1:] {
		if len(lit.Bytes) < min {
			min = len(lit.Bytes)
		}
	}
	return min
}

// markInexact clears the Complete flag on every literal.
func (s *Seq) markInexact() {
	for i := range s.lits {
		s.lits[i].Complete = false
	}
}
