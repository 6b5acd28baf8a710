package nfa

import (
	"testing"
	"unicode/utf8"
)

// seqsMatch reports whether the encoded bytes of r are accepted by any
// of the sequences.
func seqsMatch(seqs []byteSeq, r rune) bool {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	for _, seq := range seqs {
		if len(seq) != n {
			continue
		}
		ok := true
		for i, br := range seq {
			if buf[i] < br.lo || buf[i] > br.hi {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestAppendRuneRanges(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  rune
		inside  []rune
		outside []rune
	}{
		{
			name: "ascii", lo: 'a', hi: 'z',
			inside:  []rune{'a', 'm', 'z'},
			outside: []rune{'A', '`', '{', 0x80},
		},
		{
			name: "crosses one byte boundary", lo: 'x', hi: 0x100,
			inside:  []rune{'x', 0x7F, 0x80, 0xFF, 0x100},
			outside: []rune{'w', 0x101},
		},
		{
			name: "two byte range", lo: 0x3B1, hi: 0x3C9, // α-ω
			inside:  []rune{0x3B1, 0x3B4, 0x3C9},
			outside: []rune{0x3B0, 0x3CA, 'a'},
		},
		{
			name: "crosses surrogate gap", lo: 0xD000, hi: 0xE5FF,
			inside:  []rune{0xD000, 0xD7FF, 0xE000, 0xE5FF},
			outside: []rune{0xCFFF, 0xE600},
		},
		{
			name: "four byte", lo: 0x1F600, hi: 0x1F64F,
			inside:  []rune{0x1F600, 0x1F620, 0x1F64F},
			outside: []rune{0x1F5FF, 0x1F650, 'a'},
		},
		{
			name: "full range", lo: 0, hi: utf8.MaxRune,
			inside:  []rune{0, 'a', 0x7FF, 0x800, 0xFFFF, 0x10000, utf8.MaxRune},
			outside: nil,
		},
		{
			name: "single rune", lo: 'é', hi: 'é',
			inside:  []rune{'é'},
			outside: []rune{'è', 'ê'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seqs := appendRuneRanges(nil, tt.lo, tt.hi)
			if len(seqs) == 0 {
				t.Fatal("no sequences produced")
			}
			for _, r := range tt.inside {
				if !seqsMatch(seqs, r) {
					t.Errorf("rune %U not matched, want match", r)
				}
			}
			for _, r := range tt.outside {
				if seqsMatch(seqs, r) {
					t.Errorf("rune %U matched, want no match", r)
				}
			}
		})
	}
}

func TestAppendRuneRanges_SurrogatesExcluded(t *testing.T) {
	seqs := appendRuneRanges(nil, 0, utf8.MaxRune)
	// The UTF-8 encoding of a surrogate (ED A0..BF 80..BF) must not be
	// admitted by any sequence.
	surrogate := []byte{0xED, 0xA0, 0x80}
	for _, seq := range seqs {
		if len(seq) != 3 {
			continue
		}
		ok := true
		for i, br := range seq {
			if surrogate[i] < br.lo || surrogate[i] > br.hi {
				ok = false
				break
			}
		}
		if ok {
			t.Fatalf("sequence %v admits a surrogate encoding", seq)
		}
	}
}

func TestAppendRuneRanges_EmptyRange(t *testing.T) {
	if seqs := appendRuneRanges(nil, 'z', 'a'); len(seqs) != 0 {
		t.Errorf("inverted range produced %d sequences, want 0", len(seqs))
	}
}

func TestAppendRuneRanges_ContinuationBounds(t *testing.T) {
	// Continuation ranges must stay within 0x80..0xBF; anything wider
	// would accept malformed UTF-8.
	seqs := appendRuneRanges(nil, 0x80, utf8.MaxRune)
	for _, seq := range seqs {
		for i, br := range seq {
			if i == 0 {
				continue
			}
			if br.lo < 0x80 || br.hi > 0xBF {
				t.Fatalf("sequence %v has continuation range outside 80..BF", seq)
			}
		}
	}
}
