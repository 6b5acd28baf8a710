// Package syntax parses regular expression patterns into an abstract
// syntax tree.
//
// The grammar covers literals, '.', alternation '|', grouping '(...)',
// non-capturing groups '(?:...)', named capturing groups '(?P<name>...)',
// character classes '[...]', the usual escapes, anchors '^' and '$', and
// the repetition operators '*', '+', '?' and '{m,n}' with an optional '?'
// suffix for lazy matching.
//
// Patterns are byte strings. With the UTF flag set, the pattern is decoded
// as UTF-8 and atoms operate over codepoints; without it, atoms operate
// over raw bytes with no decoding. Parsing is a pure function: it either
// produces a tree or a positional *Error, and never touches shared state.
package syntax

// Flags controls pattern interpretation.
type Flags uint32

const (
	// UTF enables codepoint-aware matching: the pattern (and later the
	// subject) is treated as a UTF-8 encoded scalar sequence. Without it,
	// literals, '.' and classes operate over raw bytes.
	UTF Flags = 1 << iota
)

// Op identifies the kind of a Regexp tree node.
type Op uint8

const (
	// OpEmpty matches the empty string.
	OpEmpty Op = iota

	// OpLiteral matches a fixed run of code units (Rune).
	// In byte mode each entry is a byte value 0-255.
	OpLiteral

	// OpCharClass matches one code unit inside the ranges in Rune,
	// stored as inclusive [lo, hi] pairs, sorted and non-overlapping.
	// Negation is resolved at parse time, so ranges are always positive.
	OpCharClass

	// OpAnyCharNotNL matches any code unit except '\n' ('.').
	OpAnyCharNotNL

	// OpBeginText matches the empty string at the start of the subject.
	OpBeginText

	// OpEndText matches the empty string at the end of the subject.
	OpEndText

	// OpCapture is a capturing group: Sub[0] with slot index Cap and,
	// for named groups, Name.
	OpCapture

	// OpConcat matches the concatenation of Sub.
	OpConcat

	// OpAlternate matches any one of Sub, preferring earlier entries.
	OpAlternate

	// OpRepeat matches Sub[0] between Min and Max times (Max -1 means
	// unbounded). Greedy repetition prefers more iterations.
	OpRepeat
)

// String returns a human-readable name for the op.
func (op Op) String() string {
	switch op {
	case OpEmpty:
		return "Empty"
	case OpLiteral:
		return "Literal"
	case OpCharClass:
		return "CharClass"
	case OpAnyCharNotNL:
		return "AnyCharNotNL"
	case OpBeginText:
		return "BeginText"
	case OpEndText:
		return "EndText"
	case OpCapture:
		return "Capture"
	case OpConcat:
		return "Concat"
	case OpAlternate:
		return "Alternate"
	case OpRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// Regexp is a node in the parsed pattern tree. Which fields are meaningful
// depends on Op. A node exclusively owns its children; the tree is
// discarded once the pattern has been compiled.
type Regexp struct {
	Op       Op
	Sub      []*Regexp // OpConcat, OpAlternate, OpCapture, OpRepeat
	Rune     []rune    // OpLiteral text; OpCharClass [lo, hi] pairs
	Min, Max int       // OpRepeat bounds; Max == -1 means unbounded
	Greedy   bool      // OpRepeat
	Cap      int       // OpCapture slot index (1-based)
	Name     string    // OpCapture name, "" for unnamed groups

	// Flags records the mode the pattern was parsed under, so the
	// compiler knows how to interpret Rune values. Only set on the
	// root node returned by Parse.
	Flags Flags
}

// MaxCap returns the highest capture slot index in the tree, 0 when the
// pattern has no capturing groups.
func (re *Regexp) MaxCap() int {
	m := 0
	if re.Op == OpCapture && re.Cap > m {
		m = re.Cap
	}
	for _, sub := range re.Sub {
		if n := sub.MaxCap(); n > m {
			m = n
		}
	}
	return m
}

// CapNames returns the group table as a slice indexed by slot: entry 0 is
// always "" (the whole match), named groups carry their name and unnamed
// groups "". Slot indices follow the left-to-right order of '(' in the
// pattern, so nested groups number outermost-first.
func (re *Regexp) CapNames() []string {
	names := make([]string, re.MaxCap()+1)
	re.capNames(names)
	return names
}

func (re *Regexp) capNames(names []string) {
	if re.Op == OpCapture {
		names[re.Cap] = re.Name
	}
	for _, sub := range re.Sub {
		sub.capNames(names)
	}
}
