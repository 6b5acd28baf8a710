package nfa

import "unicode/utf8"

// byteRange is an inclusive range of byte values.
type byteRange struct {
	lo, hi byte
}

// byteSeq is a sequence of byte ranges; a string matches the sequence if
// its i-th byte falls in the i-th range. UTF-8 encodings of a rune range
// decompose into a small set of such sequences, which is what lets the
// matchers stay byte-lockstep: every transition consumes exactly one byte.
type byteSeq []byteRange

// appendRuneRanges appends the byte sequences covering the UTF-8
// encodings of all scalar values in [lo, hi]. The surrogate gap is
// excluded, and sequences never admit overlong encodings because splits
// happen on encoded-length boundaries before byte decomposition.
func appendRuneRanges(seqs []byteSeq, lo, hi rune) []byteSeq {
	if lo > hi {
		return seqs
	}

	// Carve out the surrogate gap.
	if lo < 0xE000 && hi > 0xD7FF {
		if lo <= 0xD7FF {
			seqs = appendRuneRanges(seqs, lo, 0xD7FF)
		}
		if hi >= 0xE000 {
			seqs = appendRuneRanges(seqs, 0xE000, hi)
		}
		return seqs
	}

	// Split on encoded-length boundaries.
	for _, boundary := range [...]rune{0x7F, 0x7FF, 0xFFFF} {
		if lo <= boundary && boundary < hi {
			seqs = appendRuneRanges(seqs, lo, boundary)
			return appendRuneRanges(seqs, boundary+1, hi)
		}
	}

	// lo and hi now encode to the same length.
	var s, e [4]byte
	n := utf8.EncodeRune(s[:], lo)
	utf8.EncodeRune(e[:], hi)
	return appendByteSeqs(seqs, s[:n], e[:n], nil)
}

// appendByteSeqs appends the sequences covering all n-byte encodings
// between s and e (same length, s <= e lexicographically). prefix holds
// ranges already fixed by enclosing recursion levels.
func appendByteSeqs(seqs []byteSeq, s, e []byte, prefix byteSeq) []byteSeq {
	n := len(s)
	if n == 1 {
		return append(seqs, appendSeq(prefix, byteRange{s[0], e[0]}))
	}

	if s[0] == e[0] {
		return appendByteSeqs(seqs, s[1:], e[1:], appendSeq(prefix, byteRange{s[0], s[0]}))
	}

	// s[0] < e[0]: up to three slices.
	loLead, hiLead := s[0], e[0]
	if !allBytes(s[1:], 0x80) {
		// Partial first lead: s up to [s0 BF ... BF].
		maxTail := make([]byte, n-1)
		for i := range maxTail {
			maxTail[i] = 0xBF
		}
		seqs = appendByteSeqs(seqs, s[1:], maxTail, appendSeq(prefix, byteRange{s[0], s[0]}))
		loLead = s[0] + 1
	}
	if !allBytes(e[1:], 0xBF) {
		// Partial last lead: [e0 80 ... 80] up to e.
		minTail := make([]byte, n-1)
		for i := range minTail {
			minTail[i] = 0x80
		}
		seqs = appendByteSeqs(seqs, minTail, e[1:], appendSeq(prefix, byteRange{e[0], e[0]}))
		hiLead = e[0] - 1
	}
	if loLead <= hiLead {
		// Full middle leads with unconstrained continuations.
		seq := appendSeq(prefix, byteRange{loLead, hiLead})
		for i := 0; i < n-1; i++ {
			seq = append(seq, byteRange{0x80, 0xBF})
		}
		seqs = append(seqs, seq)
	}
	return seqs
}

// appendSeq copies prefix and appends r; recursion levels share prefixes,
// so appending in place would alias.
func appendSeq(prefix byteSeq, r byteRange) byteSeq {
	seq := make(byteSeq, len(prefix), len(prefix)+4)
	copy(seq, prefix)
	return append(seq, r)
}

func allBytes(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}
