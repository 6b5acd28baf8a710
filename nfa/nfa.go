package nfa

import "fmt"

// StateID uniquely identifies an NFA state.
type StateID uint32

// InvalidState represents an invalid/unpatched state reference.
const InvalidState StateID = 0xFFFFFFFF

// StateKind identifies the type of an NFA state and determines which
// transitions are valid.
type StateKind uint8

const (
	// StateMatch is the accepting state.
	StateMatch StateKind = iota

	// StateByteRange consumes one byte in [lo, hi].
	StateByteRange

	// StateSparse consumes one byte matching any of several ranges
	// (character classes).
	StateSparse

	// StateSplit forks execution into two epsilon transitions. The left
	// branch has priority: it is the greedy/declared-first alternative.
	StateSplit

	// StateEpsilon transitions to one state without consuming input.
	StateEpsilon

	// StateCapture records the current input offset into a capture slot
	// and continues without consuming input.
	StateCapture

	// StateLook is a zero-width assertion (text begin/end).
	StateLook

	// StateFail is a dead state with no transitions.
	StateFail
)

// String returns a human-readable name for the state kind.
func (k StateKind) String() string {
	switch k {
	case StateMatch:
		return "Match"
	case StateByteRange:
		return "ByteRange"
	case StateSparse:
		return "Sparse"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	case StateCapture:
		return "Capture"
	case StateLook:
		return "Look"
	case StateFail:
		return "Fail"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Look identifies a zero-width assertion.
type Look uint8

const (
	// LookBeginText asserts the start of the subject ('^').
	LookBeginText Look = iota

	// LookEndText asserts the end of the subject ('$').
	LookEndText
)

// CheckLook reports whether the assertion holds at pos in haystack.
func CheckLook(look Look, haystack []byte, pos int) bool {
	switch look {
	case LookBeginText:
		return pos == 0
	case LookEndText:
		return pos == len(haystack)
	default:
		return false
	}
}

// Transition is one byte range and target for sparse states.
type Transition struct {
	Lo   byte
	Hi   byte
	Next StateID
}

// State is a single NFA state. The kind determines which fields are valid.
type State struct {
	id   StateID
	kind StateKind

	// ByteRange bounds; also reused by Sparse via transitions.
	lo, hi byte
	next   StateID // ByteRange/Epsilon/Capture/Look target

	transitions []Transition // Sparse

	left, right StateID // Split

	slot uint32 // Capture: slot index into the capture vector
	look Look   // Look
}

// ID returns the state's identifier.
func (s *State) ID() StateID { return s.id }

// Kind returns the state's kind.
func (s *State) Kind() StateKind { return s.kind }

// IsMatch reports whether this is the accepting state.
func (s *State) IsMatch() bool { return s.kind == StateMatch }

// ByteRange returns the byte bounds and target for ByteRange states.
func (s *State) ByteRange() (lo, hi byte, next StateID) {
	if s.kind == StateByteRange {
		return s.lo, s.hi, s.next
	}
	return 0, 0, InvalidState
}

// Transitions returns the range list for Sparse states, nil otherwise.
func (s *State) Transitions() []Transition {
	if s.kind == StateSparse {
		return s.transitions
	}
	return nil
}

// Split returns the two targets for Split states.
func (s *State) Split() (left, right StateID) {
	if s.kind == StateSplit {
		return s.left, s.right
	}
	return InvalidState, InvalidState
}

// Epsilon returns the target for Epsilon states.
func (s *State) Epsilon() StateID {
	if s.kind == StateEpsilon {
		return s.next
	}
	return InvalidState
}

// Capture returns the capture slot index and target for Capture states.
// Slot 2k is the start offset of group k and slot 2k+1 its end offset.
func (s *State) Capture() (slot uint32, next StateID) {
	if s.kind == StateCapture {
		return s.slot, s.next
	}
	return 0, InvalidState
}

// Look returns the assertion and target for Look states.
func (s *State) Look() (Look, StateID) {
	if s.kind == StateLook {
		return s.look, s.next
	}
	return 0, InvalidState
}

// String returns a human-readable representation of the state.
func (s *State) String() string {
	switch s.kind {
	case StateMatch:
		return fmt.Sprintf("State(%d, Match)", s.id)
	case StateByteRange:
		if s.lo == s.hi {
			return fmt.Sprintf("State(%d, ByteRange 0x%02X -> %d)", s.id, s.lo, s.next)
		}
		return fmt.Sprintf("State(%d, ByteRange [0x%02X-0x%02X] -> %d)", s.id, s.lo, s.hi, s.next)
	case StateSparse:
		return fmt.Sprintf("State(%d, Sparse %d ranges)", s.id, len(s.transitions))
	case StateSplit:
		return fmt.Sprintf("State(%d, Split -> [%d, %d])", s.id, s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("State(%d, Epsilon -> %d)", s.id, s.next)
	case StateCapture:
		return fmt.Sprintf("State(%d, Capture slot %d -> %d)", s.id, s.slot, s.next)
	case StateLook:
		return fmt.Sprintf("State(%d, Look %d -> %d)", s.id, s.look, s.next)
	case StateFail:
		return fmt.Sprintf("State(%d, Fail)", s.id)
	default:
		return fmt.Sprintf("State(%d, Unknown)", s.id)
	}
}

// NFA is a compiled Thompson NFA together with its group table. It is
// immutable once built and safe for concurrent use by any number of
// searches; all mutable search state lives in the matchers.
type NFA struct {
	states []State
	start  StateID

	// utf records whether the program was compiled in codepoint mode.
	// Matchers use it to decide whether the subject requires UTF-8
	// validation before a search.
	utf bool

	// captureCount is the number of capture groups including the
	// implicit whole-match group 0.
	captureCount int

	// captureNames maps slot index to group name. Index 0 is always "",
	// unnamed groups are "".
	captureNames []string

	// nameToIndex resolves a group name to its slot index.
	nameToIndex map[string]int
}

// Start returns the start state of the program.
func (n *NFA) Start() StateID { return n.start }

// State returns the state with the given ID, or nil if invalid.
func (n *NFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// States returns the number of states in the program.
func (n *NFA) States() int { return len(n.states) }

// IsUTF reports whether the program was compiled in codepoint mode.
func (n *NFA) IsUTF() bool { return n.utf }

// CaptureCount returns the number of capture groups including the
// implicit group 0, so the capture slot vector has CaptureCount()*2
// entries.
func (n *NFA) CaptureCount() int { return n.captureCount }

// SlotCount returns the length of a capture slot vector for this program.
func (n *NFA) SlotCount() int { return n.captureCount * 2 }

// SubexpNames returns a copy of the group table indexed by slot. Index 0
// is always "" (the whole match); unnamed groups are "".
func (n *NFA) SubexpNames() []string {
	names := make([]string, len(n.captureNames))
	copy(names, n.captureNames)
	return names
}

// SubexpIndex returns the slot index of the named group, or -1 when the
// pattern declares no group with that name.
func (n *NFA) SubexpIndex(name string) int {
	if idx, ok := n.nameToIndex[name]; ok {
		return idx
	}
	return -1
}

// String returns a short description of the NFA.
func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d, groups: %d, utf: %v}",
		len(n.states), n.start, n.captureCount, n.utf)
}
