// Package meta couples the parser, compiler, literal prefilters and the
// two NFA engines into one search interface. It owns strategy: when to
// scan with a prefilter, and which engine verifies a candidate.
package meta

import (
	"errors"
	"unicode/utf8"

	"github.com/coregx/recap/literal"
	"github.com/coregx/recap/nfa"
	"github.com/coregx/recap/prefilter"
	"github.com/coregx/recap/syntax"
)

// ErrInvalidUTF8 is returned by searches in codepoint mode when the
// subject is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("meta: subject is not valid UTF-8")

// Engine is a compiled pattern ready to search. It is immutable and
// safe for concurrent use; per-search state lives on the stack of each
// call.
type Engine struct {
	nfa  *nfa.NFA
	pike *nfa.PikeVM
	pf   prefilter.Prefilter

	config Config
	utf    bool
}

// Compile parses and compiles pattern into an Engine.
func Compile(pattern []byte, flags syntax.Flags, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, err
	}
	utf := flags&syntax.UTF != 0

	compiler := nfa.NewCompiler(nfa.CompilerConfig{
		UTF:               utf,
		MaxStates:         config.MaxStates,
		MaxRecursionDepth: config.MaxRecursionDepth,
	})
	prog, err := compiler.Compile(re)
	if err != nil {
		return nil, err
	}

	var pf prefilter.Prefilter
	if !config.DisablePrefilter {
		pf = prefilter.FromLiterals(literal.ExtractPrefixes(re, utf))
	}

	return &Engine{
		nfa:    prog,
		pike:   nfa.NewPikeVM(prog),
		pf:     pf,
		config: config,
		utf:    utf,
	}, nil
}

// NFA exposes the compiled program, mainly for group-name lookups.
func (e *Engine) NFA() *nfa.NFA {
	return e.nfa
}

// Search finds the leftmost match at or after start. On success it
// returns the capture slot vector: slots 2i and 2i+1 hold the byte
// offsets of group i, -1 when the group did not participate.
func (e *Engine) Search(haystack []byte, start int) ([]int, bool, error) {
	if err := e.checkSubject(haystack); err != nil {
		return nil, false, err
	}
	if start < 0 || start > len(haystack) {
		return nil, false, nil
	}

	if e.pf != nil {
		slots := e.searchWithPrefilter(haystack, start)
		return slots, slots != nil, nil
	}
	slots, ok := e.run(haystack, start, false)
	if !ok {
		return nil, false, nil
	}
	return slots, true, nil
}

// SearchAt finds a match beginning exactly at start.
func (e *Engine) SearchAt(haystack []byte, start int) ([]int, bool, error) {
	if err := e.checkSubject(haystack); err != nil {
		return nil, false, err
	}
	if start < 0 || start > len(haystack) {
		return nil, false, nil
	}
	slots, ok := e.run(haystack, start, true)
	if !ok {
		return nil, false, nil
	}
	return slots, true, nil
}

// IsMatch reports whether the pattern matches anywhere in the subject.
func (e *Engine) IsMatch(haystack []byte) (bool, error) {
	if err := e.checkSubject(haystack); err != nil {
		return false, err
	}
	if e.pf != nil {
		pos := e.pf.Find(haystack, 0)
		if pos < 0 {
			return false, nil
		}
		// A complete prefilter's candidates are matches themselves.
		if e.pf.IsComplete() {
			return true, nil
		}
		slots := e.searchWithPrefilter(haystack, 0)
		return slots != nil, nil
	}
	_, ok := e.run(haystack, 0, false)
	return ok, nil
}

// searchWithPrefilter alternates literal scanning with anchored
// verification. Candidates are mandatory match prefixes, so a failed
// verification only rules out that one position. Returns nil slots
// when no match exists; the error path was already handled.
func (e *Engine) searchWithPrefilter(haystack []byte, start int) []int {
	pos := start
	for pos <= len(haystack) {
		candidate := e.pf.Find(haystack, pos)
		if candidate < 0 {
			return nil
		}
		if slots, ok := e.run(haystack, candidate, true); ok {
			return slots
		}
		pos = candidate + 1
	}
	return nil
}

// run picks the engine per call: the backtracker when its visited-bit
// budget covers the haystack, the PikeVM otherwise. The backtracker is
// allocated per call because it carries mutable search state.
func (e *Engine) run(haystack []byte, start int, anchored bool) ([]int, bool) {
	if !e.config.DisableBacktracker {
		bt := nfa.NewBoundedBacktracker(e.nfa)
		if bt.CanHandle(len(haystack)) {
			if anchored {
				return bt.SearchAt(haystack, start)
			}
			return bt.Search(haystack, start)
		}
	}
	if anchored {
		return e.pike.SearchAt(haystack, start)
	}
	return e.pike.Search(haystack, start)
}

// checkSubject enforces the codepoint-mode contract up front so offsets
// in results always fall on rune boundaries.
func (e *Engine) checkSubject(haystack []byte) error {
	if e.utf && !utf8.Valid(haystack) {
		return ErrInvalidUTF8
	}
	return nil
}
