package nfa

import (
	"fmt"
	"unicode/utf8"

	"github.com/coregx/recap/syntax"
)

// CompilerConfig configures NFA compilation.
type CompilerConfig struct {
	// UTF selects codepoint mode: literals and classes are lowered to
	// UTF-8 byte automata and matchers validate subjects before running.
	UTF bool

	// MaxStates caps program size. Counted repeats are unrolled, so
	// nested groups with large counts could otherwise grow without bound.
	// Default: 100000.
	MaxStates int

	// MaxRecursionDepth limits compile recursion. Default: 1000.
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a configuration with sensible defaults.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxStates:         100000,
		MaxRecursionDepth: 1000,
	}
}

// Compiler lowers a syntax tree into a Thompson NFA.
type Compiler struct {
	config  CompilerConfig
	builder *Builder
	depth   int
}

// NewCompiler creates a compiler with the given configuration.
func NewCompiler(config CompilerConfig) *Compiler {
	if config.MaxStates == 0 {
		config.MaxStates = 100000
	}
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = 1000
	}
	return &Compiler{config: config}
}

// Compile lowers the parse tree into an executable program.
//
// The whole pattern is bracketed by capture slots 0 and 1, so the
// matchers treat the whole-match group like any other group. Group slot
// indices come from the parser; the compiler only places the save states.
func (c *Compiler) Compile(re *syntax.Regexp) (*NFA, error) {
	c.builder = NewBuilderWithCapacity(64)
	c.depth = 0

	capStart := c.builder.AddCapture(0, InvalidState)
	start, end, err := c.compile(re)
	if err != nil {
		return nil, err
	}
	if err := c.builder.Patch(capStart, start); err != nil {
		return nil, &CompileError{Err: err}
	}
	capEnd := c.builder.AddCapture(1, InvalidState)
	if err := c.builder.Patch(end, capEnd); err != nil {
		return nil, &CompileError{Err: err}
	}
	match := c.builder.AddMatch()
	if err := c.builder.Patch(capEnd, match); err != nil {
		return nil, &CompileError{Err: err}
	}
	c.builder.SetStart(capStart)

	nfa, err := c.builder.Build(c.config.UTF, re.CapNames())
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return nfa, nil
}

// compile recursively lowers a node. It returns the fragment's start
// state and an end state whose outgoing transition is still unpatched;
// the caller connects it to whatever follows.
func (c *Compiler) compile(re *syntax.Regexp) (start, end StateID, err error) {
	c.depth++
	if c.depth > c.config.MaxRecursionDepth {
		return InvalidState, InvalidState, &CompileError{Err: ErrTooComplex}
	}
	if c.builder.Len() > c.config.MaxStates {
		return InvalidState, InvalidState, &CompileError{Err: ErrTooComplex}
	}
	defer func() { c.depth-- }()

	switch re.Op {
	case syntax.OpEmpty:
		return c.compileEmpty()
	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune)
	case syntax.OpCharClass:
		return c.compileClass(re.Rune)
	case syntax.OpAnyCharNotNL:
		return c.compileAnyCharNotNL()
	case syntax.OpBeginText:
		id := c.builder.AddLook(LookBeginText, InvalidState)
		return id, id, nil
	case syntax.OpEndText:
		id := c.builder.AddLook(LookEndText, InvalidState)
		return id, id, nil
	case syntax.OpCapture:
		return c.compileCapture(re)
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max, re.Greedy)
	default:
		return InvalidState, InvalidState, &CompileError{
			Err: fmt.Errorf("unsupported syntax op: %v", re.Op),
		}
	}
}

func (c *Compiler) compileEmpty() (start, end StateID, err error) {
	id := c.builder.AddEpsilon(InvalidState)
	return id, id, nil
}

// compileLiteral compiles a run of code units into a byte chain. In UTF
// mode runes are expanded to their UTF-8 encoding; in byte mode each unit
// is a single byte.
func (c *Compiler) compileLiteral(runes []rune) (start, end StateID, err error) {
	if len(runes) == 0 {
		return c.compileEmpty()
	}
	first, prev := InvalidState, InvalidState
	emit := func(b byte) error {
		id := c.builder.AddByteRange(b, b, InvalidState)
		if first == InvalidState {
			first = id
		}
		if prev != InvalidState {
			if err := c.builder.Patch(prev, id); err != nil {
				return err
			}
		}
		prev = id
		return nil
	}
	var buf [4]byte
	for _, r := range runes {
		if c.config.UTF {
			n := utf8.EncodeRune(buf[:], r)
			for i := 0; i < n; i++ {
				if err := emit(buf[i]); err != nil {
					return InvalidState, InvalidState, err
				}
			}
		} else {
			if err := emit(byte(r)); err != nil {
				return InvalidState, InvalidState, err
			}
		}
	}
	return first, prev, nil
}

// compileClass compiles normalized [lo, hi] pairs. ASCII-only classes
// (and all byte-mode classes) become a single sparse state; classes with
// runes above 0x7F decompose into UTF-8 byte sequence alternatives.
func (c *Compiler) compileClass(ranges []rune) (start, end StateID, err error) {
	if len(ranges) == 0 {
		// Matches nothing, e.g. [^\x00-\xFF] in byte mode. The end state
		// is unreachable but the caller still patches it.
		fail := c.builder.AddFail()
		dead := c.builder.AddEpsilon(InvalidState)
		return fail, dead, nil
	}

	byteLevel := !c.config.UTF
	if c.config.UTF {
		byteLevel = true
		for i := 1; i < len(ranges); i += 2 {
			if ranges[i] > 0x7F {
				byteLevel = false
				break
			}
		}
	}
	if byteLevel {
		return c.compileByteClass(ranges)
	}

	var seqs []byteSeq
	for i := 0; i+1 < len(ranges); i += 2 {
		seqs = appendRuneRanges(seqs, ranges[i], ranges[i+1])
	}
	if len(seqs) == 0 {
		fail := c.builder.AddFail()
		dead := c.builder.AddEpsilon(InvalidState)
		return fail, dead, nil
	}

	join := c.builder.AddEpsilon(InvalidState)
	starts := make([]StateID, 0, len(seqs))
	for _, seq := range seqs {
		s, e := c.compileByteSeq(seq)
		if err := c.builder.Patch(e, join); err != nil {
			return InvalidState, InvalidState, err
		}
		starts = append(starts, s)
	}
	return c.buildSplitChain(starts), join, nil
}

// compileByteClass lowers byte-valued ranges to one consuming state.
func (c *Compiler) compileByteClass(ranges []rune) (start, end StateID, err error) {
	if len(ranges) == 2 {
		id := c.builder.AddByteRange(byte(ranges[0]), byte(ranges[1]), InvalidState)
		return id, id, nil
	}
	target := c.builder.AddEpsilon(InvalidState)
	transitions := make([]Transition, 0, len(ranges)/2)
	for i := 0; i+1 < len(ranges); i += 2 {
		transitions = append(transitions, Transition{
			Lo:   byte(ranges[i]),
			Hi:   byte(ranges[i+1]),
			Next: target,
		})
	}
	id := c.builder.AddSparse(transitions)
	return id, target, nil
}

// compileByteSeq chains the ranges of one UTF-8 sequence.
func (c *Compiler) compileByteSeq(seq byteSeq) (start, end StateID) {
	first, prev := InvalidState, InvalidState
	for _, r := range seq {
		id := c.builder.AddByteRange(r.lo, r.hi, InvalidState)
		if first == InvalidState {
			first = id
		}
		if prev != InvalidState {
			// Chained byte ranges are always patchable.
			_ = c.builder.Patch(prev, id)
		}
		prev = id
	}
	return first, prev
}

// compileAnyCharNotNL compiles '.': any code unit except '\n'.
func (c *Compiler) compileAnyCharNotNL() (start, end StateID, err error) {
	if c.config.UTF {
		return c.compileClass([]rune{0x00, 0x09, 0x0B, utf8.MaxRune})
	}
	return c.compileByteClass([]rune{0x00, 0x09, 0x0B, 0xFF})
}

// compileCapture brackets the group body with save states for its start
// and end slots.
func (c *Compiler) compileCapture(re *syntax.Regexp) (start, end StateID, err error) {
	slot := uint32(re.Cap * 2)
	open := c.builder.AddCapture(slot, InvalidState)
	subStart, subEnd, err := c.compile(re.Sub[0])
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.builder.Patch(open, subStart); err != nil {
		return InvalidState, InvalidState, err
	}
	closeState := c.builder.AddCapture(slot+1, InvalidState)
	if err := c.builder.Patch(subEnd, closeState); err != nil {
		return InvalidState, InvalidState, err
	}
	return open, closeState, nil
}

func (c *Compiler) compileConcat(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmpty()
	}
	start, end, err = c.compile(subs[0])
	if err != nil {
		return InvalidState, InvalidState, err
	}
	for _, sub := range subs[1:] {
		nextStart, nextEnd, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(end, nextStart); err != nil {
			return InvalidState, InvalidState, err
		}
		end = nextEnd
	}
	return start, end, nil
}

// compileAlternate compiles alternation. The split chain preserves the
// declared order: earlier alternatives occupy higher-priority branches.
func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 1 {
		return c.compile(subs[0])
	}
	join := c.builder.AddEpsilon(InvalidState)
	starts := make([]StateID, 0, len(subs))
	for _, sub := range subs {
		s, e, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(e, join); err != nil {
			return InvalidState, InvalidState, err
		}
		starts = append(starts, s)
	}
	return c.buildSplitChain(starts), join, nil
}

// buildSplitChain nests splits right-associatively so that targets[0]
// sits on the highest-priority path.
func (c *Compiler) buildSplitChain(targets []StateID) StateID {
	if len(targets) == 1 {
		return targets[0]
	}
	if len(targets) == 2 {
		return c.builder.AddSplit(targets[0], targets[1])
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.AddSplit(targets[0], right)
}

// compileRepeat dispatches on the repeat shape.
func (c *Compiler) compileRepeat(sub *syntax.Regexp, min, max int, greedy bool) (start, end StateID, err error) {
	switch {
	case min == 0 && max == -1:
		return c.compileStar(sub, greedy)
	case min == 1 && max == -1:
		return c.compilePlus(sub, greedy)
	case min == 0 && max == 1:
		return c.compileQuest(sub, greedy)
	case max == -1:
		// x{m,} = m copies then a star.
		first, last, err := c.compileCopies(sub, min)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		starStart, starEnd, err := c.compileStar(sub, greedy)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(last, starStart); err != nil {
			return InvalidState, InvalidState, err
		}
		return first, starEnd, nil
	case min == max:
		if min == 0 {
			return c.compileEmpty()
		}
		return c.compileCopies(sub, min)
	default:
		// x{m,n} = m copies then n-m optional copies.
		first, last := InvalidState, InvalidState
		if min > 0 {
			var err error
			first, last, err = c.compileCopies(sub, min)
			if err != nil {
				return InvalidState, InvalidState, err
			}
		}
		for i := 0; i < max-min; i++ {
			qs, qe, err := c.compileQuest(sub, greedy)
			if err != nil {
				return InvalidState, InvalidState, err
			}
			if last == InvalidState {
				first, last = qs, qe
				continue
			}
			if err := c.builder.Patch(last, qs); err != nil {
				return InvalidState, InvalidState, err
			}
			last = qe
		}
		return first, last, nil
	}
}

// compileCopies chains n fresh compilations of sub.
func (c *Compiler) compileCopies(sub *syntax.Regexp, n int) (start, end StateID, err error) {
	start, end, err = c.compile(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	for i := 1; i < n; i++ {
		s, e, err := c.compile(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(end, s); err != nil {
			return InvalidState, InvalidState, err
		}
		end = e
	}
	return start, end, nil
}

// compileStar compiles x*. The loop-back lands on a second split distinct
// from the entry split: a zero-width iteration then terminates at the
// entry's already-visited body instead of spinning, while its capture
// writes survive on the exiting path.
func (c *Compiler) compileStar(sub *syntax.Regexp, greedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	exit := c.builder.AddEpsilon(InvalidState)
	loop := c.addRepeatSplit(subStart, exit, greedy)
	if err := c.builder.Patch(subEnd, loop); err != nil {
		return InvalidState, InvalidState, err
	}
	entry := c.addRepeatSplit(subStart, exit, greedy)
	return entry, exit, nil
}

// compilePlus compiles x+: the body runs once, then loops like a star.
func (c *Compiler) compilePlus(sub *syntax.Regexp, greedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	exit := c.builder.AddEpsilon(InvalidState)
	loop := c.addRepeatSplit(subStart, exit, greedy)
	if err := c.builder.Patch(subEnd, loop); err != nil {
		return InvalidState, InvalidState, err
	}
	return subStart, exit, nil
}

// compileQuest compiles x?.
func (c *Compiler) compileQuest(sub *syntax.Regexp, greedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	exit := c.builder.AddEpsilon(InvalidState)
	if err := c.builder.Patch(subEnd, exit); err != nil {
		return InvalidState, InvalidState, err
	}
	entry := c.addRepeatSplit(subStart, exit, greedy)
	return entry, exit, nil
}

// addRepeatSplit orders the split so the greedy branch (enter the body)
// has priority; lazy repetition prefers the exit.
func (c *Compiler) addRepeatSplit(body, exit StateID, greedy bool) StateID {
	if greedy {
		return c.builder.AddSplit(body, exit)
	}
	return c.builder.AddSplit(exit, body)
}
