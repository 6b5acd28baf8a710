package literal

import (
	"unicode/utf8"

	"github.com/coregx/recap/syntax"
)

const (
	// maxLiterals caps the number of alternative prefixes; beyond it the
	// cross product explodes and a prefilter stops paying for itself.
	maxLiterals = 64

	// maxLiteralLen caps individual prefix length. Longer prefixes add
	// little: the verifier runs from the candidate anyway.
	maxLiteralLen = 32
)

// ExtractPrefixes walks the parsed pattern and returns the byte strings
// every match must begin with, or an empty Seq when no bounded set
// exists (e.g. the pattern starts with a class or an unbounded
// repetition). utf selects the encoding of literal runes.
func ExtractPrefixes(re *syntax.Regexp, utf bool) *Seq {
	e := &extractor{utf: utf}
	seq := e.extract(re)
	if seq == nil {
		return NewSeq()
	}
	return seq
}

type extractor struct {
	utf bool
}

// extract returns the prefix set for re, or nil when extraction failed
// entirely. An inexact Seq (no Complete literal) still prefilters; nil
// means not even a first byte is known.
func (e *extractor) extract(re *syntax.Regexp) *Seq {
	switch re.Op {
	case syntax.OpEmpty:
		seq := NewSeq()
		seq.Append(Literal{Bytes: nil, Complete: true})
		return seq

	case syntax.OpLiteral:
		seq := NewSeq()
		seq.Append(Literal{Bytes: e.encode(re.Rune), Complete: true})
		return seq

	case syntax.OpCapture:
		if len(re.Sub) == 1 {
			return e.extract(re.Sub[0])
		}
		return nil

	case syntax.OpConcat:
		return e.extractConcat(re.Sub)

	case syntax.OpAlternate:
		return e.extractAlternate(re.Sub)

	case syntax.OpRepeat:
		if re.Min >= 1 && len(re.Sub) == 1 {
			// At least one occurrence is mandatory; its prefix is ours,
			// but the tail is unknown.
			seq := e.extract(re.Sub[0])
			if seq != nil {
				seq.markInexact()
			}
			return seq
		}
		return nil
	}
	// Classes, anchors at the end, anything else: no usable prefix.
	return nil
}

// extractConcat chains sub-expression prefixes left to right, extending
// every literal while the set stays complete and within bounds.
func (e *extractor) extractConcat(subs []*syntax.Regexp) *Seq {
	seq := NewSeq()
	seq.Append(Literal{Bytes: nil, Complete: true})

	// A leading anchor does not cut extraction, but candidates then need
	// verification: the literal alone is never a whole match.
	anchored := false

	for _, sub := range subs {
		if sub.Op == syntax.OpBeginText {
			anchored = true
			continue
		}
		next := e.extract(sub)
		if next == nil {
			seq.markInexact()
			break
		}
		crossed, ok := cross(seq, next)
		if !ok {
			seq.markInexact()
			break
		}
		seq = crossed
		if !seq.AllComplete() {
			break
		}
	}
	if anchored {
		seq.markInexact()
	}
	if seq.Len() == 1 && len(seq.Get(0).Bytes) == 0 && !seq.Get(0).Complete {
		return nil
	}
	return seq
}

func (e *extractor) extractAlternate(subs []*syntax.Regexp) *Seq {
	union := NewSeq()
	for _, sub := range subs {
		seq := e.extract(sub)
		if seq == nil || seq.IsEmpty() {
			return nil
		}
		for i := 0; i < seq.Len(); i++ {
			union.Append(seq.Get(i))
			if union.Len() > maxLiterals {
				return nil
			}
		}
	}
	return union
}

// cross concatenates every literal in a with every literal in b.
// Incomplete literals in a cannot be extended; they keep the set inexact.
func cross(a, b *Seq) (*Seq, bool) {
	if a.Len()*b.Len() > maxLiterals {
		return nil, false
	}
	out := NewSeq()
	for i := 0; i < a.Len(); i++ {
		la := a.Get(i)
		if !la.Complete {
			out.Append(la)
			continue
		}
		for j := 0; j < b.Len(); j++ {
			lb := b.Get(j)
			joined := make([]byte, 0, len(la.Bytes)+len(lb.Bytes))
			joined = append(joined, la.Bytes...)
			joined = append(joined, lb.Bytes...)
			complete := lb.Complete
			if len(joined) > maxLiteralLen {
				joined = joined[:maxLiteralLen]
				complete = false
			}
			out.Append(Literal{Bytes: joined, Complete: complete})
		}
	}
	return out, true
}

// encode renders literal runes as haystack bytes for the active mode.
func (e *extractor) encode(runes []rune) []byte {
	if !e.utf {
		out := make([]byte, len(runes))
		for i, r := range runes {
			out[i] = byte(r)
		}
		return out
	}
	out := make([]byte, 0, len(runes))
	var buf [4]byte
	for _, r := range runes {
		n := utf8.EncodeRune(buf[:], r)
		out = append(out, buf[:n]...)
	}
	return out
}
