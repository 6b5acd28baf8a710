// Package prefilter provides fast candidate scanning ahead of the NFA
// engines. A prefilter finds positions where a match could begin; the
// meta engine then verifies each candidate with an anchored search.
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/recap/literal"
)

// Prefilter locates candidate match starts in a haystack.
//
// Implementations are immutable after construction and safe for
// concurrent use.
type Prefilter interface {
	// Find returns the offset of the next candidate at or after start,
	// or -1 when no candidate remains.
	Find(haystack []byte, start int) int

	// IsComplete reports whether a candidate is a guaranteed match, so
	// existence checks need no verification step.
	IsComplete() bool
}

// FromLiterals builds the best available prefilter for the extracted
// prefix set, or nil when the set gives no scanning advantage.
func FromLiterals(seq *literal.Seq) Prefilter {
	if seq == nil || seq.IsEmpty() || seq.MinLen() == 0 {
		return nil
	}
	complete := seq.AllComplete()

	if seq.Len() == 1 {
		lit := seq.Get(0)
		if len(lit.Bytes) == 1 {
			return &Memchr{b: lit.Bytes[0], complete: complete}
		}
		return &Memmem{needle: lit.Bytes, complete: complete}
	}

	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		builder.AddPattern(seq.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &MultiLiteral{auto: auto, complete: complete}
}

// Memchr scans for a single byte.
type Memchr struct {
	b        byte
	complete bool
}

func (m *Memchr) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	i := bytes.IndexByte(haystack[start:], m.b)
	if i < 0 {
		return -1
	}
	return start + i
}

func (m *Memchr) IsComplete() bool { return m.complete }

// Memmem scans for a single multi-byte needle.
type Memmem struct {
	needle   []byte
	complete bool
}

func (m *Memmem) Find(haystack []byte, start int) int {
	if start > len(haystack) {
		return -1
	}
	i := bytes.Index(haystack[start:], m.needle)
	if i < 0 {
		return -1
	}
	return start + i
}

func (m *Memmem) IsComplete() bool { return m.complete }

// MultiLiteral scans for any of several needles with an Aho-Corasick
// automaton, one pass regardless of how many alternatives there are.
type MultiLiteral struct {
	auto     *ahocorasick.Automaton
	complete bool
}

func (m *MultiLiteral) Find(haystack []byte, start int) int {
	if start > len(haystack) {
		return -1
	}
	match := m.auto.Find(haystack, start)
	if match == nil {
		return -1
	}
	return match.Start
}

func (m *MultiLiteral) IsComplete() bool { return m.complete }
