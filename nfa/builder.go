package nfa

// Builder constructs NFAs incrementally. States are appended with
// InvalidState placeholders for forward references and patched once the
// target is known; the compiler drives it fragment by fragment.
type Builder struct {
	states []State
	start  StateID
}

// NewBuilder creates a builder with a small default capacity.
func NewBuilder() *Builder {
	return NewBuilderWithCapacity(16)
}

// NewBuilderWithCapacity creates a builder with the given initial capacity.
func NewBuilderWithCapacity(capacity int) *Builder {
	return &Builder{
		states: make([]State, 0, capacity),
		start:  InvalidState,
	}
}

// Len returns the number of states added so far.
func (b *Builder) Len() int {
	return len(b.states)
}

// AddMatch adds the accepting state and returns its ID.
func (b *Builder) AddMatch() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateMatch})
	return id
}

// AddByteRange adds a state consuming one byte in [lo, hi]. For a single
// byte, lo == hi.
func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{
		id:   id,
		kind: StateByteRange,
		lo:   lo,
		hi:   hi,
		next: next,
	})
	return id
}

// AddSparse adds a state with multiple byte range transitions. The slice
// is copied to avoid aliasing.
func (b *Builder) AddSparse(transitions []Transition) StateID {
	id := StateID(len(b.states))
	trans := make([]Transition, len(transitions))
	copy(trans, transitions)
	b.states = append(b.states, State{
		id:          id,
		kind:        StateSparse,
		transitions: trans,
	})
	return id
}

// AddSplit adds an epsilon fork. The left branch has priority.
func (b *Builder) AddSplit(left, right StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{
		id:    id,
		kind:  StateSplit,
		left:  left,
		right: right,
	})
	return id
}

// AddEpsilon adds a state with a single non-consuming transition.
func (b *Builder) AddEpsilon(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateEpsilon, next: next})
	return id
}

// AddCapture adds a state that records the current offset into the given
// capture slot and continues to next.
func (b *Builder) AddCapture(slot uint32, next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{
		id:   id,
		kind: StateCapture,
		slot: slot,
		next: next,
	})
	return id
}

// AddLook adds a zero-width assertion state.
func (b *Builder) AddLook(look Look, next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{
		id:   id,
		kind: StateLook,
		look: look,
		next: next,
	})
	return id
}

// AddFail adds a dead state with no transitions.
func (b *Builder) AddFail() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateFail})
	return id
}

// Patch sets the single outgoing target of a state. Only valid for kinds
// with one 'next' reference.
func (b *Builder) Patch(stateID, target StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", StateID: stateID}
	}
	s := &b.states[stateID]
	switch s.kind {
	case StateByteRange, StateEpsilon, StateCapture, StateLook:
		s.next = target
		return nil
	default:
		return &BuildError{Message: "cannot patch state of kind " + s.kind.String(), StateID: stateID}
	}
}

// SetStart records the start state of the program.
func (b *Builder) SetStart(id StateID) {
	b.start = id
}

// Build finalizes the NFA. The builder must not be reused afterwards.
func (b *Builder) Build(utf bool, captureNames []string) (*NFA, error) {
	if b.start == InvalidState {
		return nil, &BuildError{Message: "start state not set", StateID: InvalidState}
	}
	for i := range b.states {
		if err := b.checkTargets(&b.states[i]); err != nil {
			return nil, err
		}
	}
	nameToIndex := make(map[string]int)
	for i, name := range captureNames {
		if name != "" {
			nameToIndex[name] = i
		}
	}
	return &NFA{
		states:       b.states,
		start:        b.start,
		utf:          utf,
		captureCount: len(captureNames),
		captureNames: captureNames,
		nameToIndex:  nameToIndex,
	}, nil
}

// checkTargets verifies that no transition dangles. A dangling target at
// build time means the compiler forgot a Patch.
func (b *Builder) checkTargets(s *State) error {
	valid := func(id StateID) bool {
		return id != InvalidState && int(id) < len(b.states)
	}
	switch s.kind {
	case StateByteRange, StateEpsilon, StateCapture, StateLook:
		if !valid(s.next) {
			return &BuildError{Message: "dangling transition", StateID: s.id}
		}
	case StateSparse:
		for _, tr := range s.transitions {
			if !valid(tr.Next) {
				return &BuildError{Message: "dangling sparse transition", StateID: s.id}
			}
		}
	case StateSplit:
		if !valid(s.left) || !valid(s.right) {
			return &BuildError{Message: "dangling split branch", StateID: s.id}
		}
	}
	return nil
}
