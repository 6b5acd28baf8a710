// Package recap is a byte-oriented regular expression engine with
// first-class named capture groups.
//
// Patterns compile to an NFA program whose engines are bounded to
// O(states * len(subject)) in the worst case, so pathological inputs
// like (a*)* cannot blow up. Subjects and captures are byte strings
// throughout; the UTF flag switches literals and classes from raw bytes
// to Unicode codepoints, but offsets and captured values stay bytes.
//
// Basic usage:
//
//	re, err := recap.Compile([]byte(`some (?P<key>\w+)`), recap.UTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	got, err := re.CollectNamed([]byte("some word"), "key")
//	// got["key"] == []byte("word")
//
// A compiled Regexp is immutable and safe for concurrent use.
package recap

import (
	"unicode/utf8"

	"github.com/coregx/recap/meta"
	"github.com/coregx/recap/syntax"
)

// Flags selects pattern modes at compile time.
type Flags = syntax.Flags

// UTF interprets the pattern and subject as UTF-8 encoded codepoints.
// Without it every byte value stands for itself.
const UTF = syntax.UTF

// Regexp is a compiled pattern. It is immutable and safe for concurrent
// use from multiple goroutines.
type Regexp struct {
	engine  *meta.Engine
	pattern []byte
	utf     bool

	names  []string
	byName map[string]int
}

// Compile compiles a pattern with the given flags.
//
// Group syntax: (?P<name>...) captures under a name, (...) captures by
// number only, (?:...) groups without capturing. Any other introducer
// after "(?" is a syntax error with the position of the offending
// character.
func Compile(pattern []byte, flags Flags) (*Regexp, error) {
	return CompileWithConfig(pattern, flags, meta.DefaultConfig())
}

// CompileWithConfig compiles with custom engine limits.
func CompileWithConfig(pattern []byte, flags Flags, config meta.Config) (*Regexp, error) {
	engine, err := meta.Compile(pattern, flags, config)
	if err != nil {
		return nil, &RegexpError{Pattern: string(pattern), Err: err}
	}
	p := make([]byte, len(pattern))
	copy(p, pattern)
	names := engine.NFA().SubexpNames()
	byName := make(map[string]int, len(names))
	for i, name := range names {
		if name != "" {
			byName[name] = i
		}
	}
	return &Regexp{
		engine:  engine,
		pattern: p,
		utf:     flags&syntax.UTF != 0,
		names:   names,
		byName:  byName,
	}, nil
}

// MustCompile is Compile that panics on error, for patterns known valid
// at program start.
func MustCompile(pattern []byte, flags Flags) *Regexp {
	re, err := Compile(pattern, flags)
	if err != nil {
		panic("recap: Compile(`" + string(pattern) + "`): " + err.Error())
	}
	return re
}

// String returns the source pattern.
func (r *Regexp) String() string {
	return string(r.pattern)
}

// NumSubexp returns the number of capture groups, not counting group 0.
func (r *Regexp) NumSubexp() int {
	return r.engine.NFA().CaptureCount() - 1
}

// SubexpNames returns group names indexed by group number; group 0 and
// unnamed groups have an empty name. Slots are assigned in order of the
// groups' opening parentheses, so an outer group numbers before the
// groups it contains.
func (r *Regexp) SubexpNames() []string {
	return r.names
}

// SubexpIndex returns the number of the group with the given name, or
// -1 if no such group exists.
func (r *Regexp) SubexpIndex(name string) int {
	return r.engine.NFA().SubexpIndex(name)
}

// Match reports whether the pattern matches anywhere in subject.
func (r *Regexp) Match(subject []byte) (bool, error) {
	return r.engine.IsMatch(subject)
}

// Find returns the bytes of the leftmost match, or nil when there is no
// match. An empty match returns an empty, non-nil slice.
func (r *Regexp) Find(subject []byte) ([]byte, error) {
	caps, err := r.FindSubmatch(subject)
	if err != nil || caps == nil {
		return nil, err
	}
	b, _ := caps.Group(0)
	return b, nil
}

// FindIndex returns the byte span [start, end) of the leftmost match,
// or nil when there is no match.
func (r *Regexp) FindIndex(subject []byte) ([]int, error) {
	caps, err := r.FindSubmatch(subject)
	if err != nil || caps == nil {
		return nil, err
	}
	start, end, _ := caps.Span(0)
	return []int{start, end}, nil
}

// FindSubmatch returns the captures of the leftmost match, or nil when
// there is no match.
func (r *Regexp) FindSubmatch(subject []byte) (*Captures, error) {
	return r.findAt(subject, 0, false)
}

// FindSubmatchAt is FindSubmatch starting the search at the given byte
// offset.
func (r *Regexp) FindSubmatchAt(subject []byte, start int) (*Captures, error) {
	return r.findAt(subject, start, false)
}

// MatchAt reports whether a match begins exactly at the given offset.
func (r *Regexp) MatchAt(subject []byte, start int) (bool, error) {
	caps, err := r.findAt(subject, start, true)
	return caps != nil, err
}

// FindAllSubmatch returns the captures of every non-overlapping match,
// leftmost first. n limits the number of matches; n < 0 means all.
// Returns nil when there is no match.
func (r *Regexp) FindAllSubmatch(subject []byte, n int) ([]*Captures, error) {
	var out []*Captures
	pos := 0
	for n < 0 || len(out) < n {
		caps, err := r.findAt(subject, pos, false)
		if err != nil {
			return nil, err
		}
		if caps == nil {
			break
		}
		out = append(out, caps)
		start, end, _ := caps.Span(0)
		if end == start {
			// Empty match: step past it so the scan advances. In
			// codepoint mode the step is a whole rune to keep offsets on
			// boundaries.
			if r.utf && end < len(subject) {
				_, w := utf8.DecodeRune(subject[end:])
				end += w
			} else {
				end++
			}
		}
		pos = end
		if pos > len(subject) {
			break
		}
	}
	return out, nil
}

// CollectNamed matches the pattern against subject and returns a map
// holding the named group's capture.
//
// Unknown names are a hard error (ErrUnknownGroup): asking for a group
// the pattern never defines is a programming bug, not a failed match.
// A failed match, and a known group that did not participate, both
// return an empty non-nil map with no error: the group simply captured
// nothing this time.
func (r *Regexp) CollectNamed(subject []byte, name string) (map[string][]byte, error) {
	if r.SubexpIndex(name) < 0 {
		return nil, ErrUnknownGroup
	}
	caps, err := r.FindSubmatch(subject)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, 1)
	if caps == nil {
		return out, nil
	}
	b, participated, err := caps.ByName(name)
	if err != nil {
		return nil, err
	}
	if participated {
		out[name] = b
	}
	return out, nil
}

func (r *Regexp) findAt(subject []byte, start int, anchored bool) (*Captures, error) {
	var (
		slots []int
		ok    bool
		err   error
	)
	if anchored {
		slots, ok, err = r.engine.SearchAt(subject, start)
	} else {
		slots, ok, err = r.engine.Search(subject, start)
	}
	if err != nil || !ok {
		return nil, err
	}
	return &Captures{
		subject: subject,
		slots:   slots,
		names:   r.names,
		byName:  r.byName,
	}, nil
}
