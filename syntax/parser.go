package syntax

import (
	"sort"
	"unicode/utf8"
)

// maxRepeatCount bounds counted repetition, matching the usual RE2 limit.
// Counted repeats are unrolled during compilation, so an unbounded count
// would translate directly into unbounded program growth.
const maxRepeatCount = 1000

// Parse parses a pattern into a Regexp tree.
//
// With the UTF flag set the pattern must be valid UTF-8 and atoms operate
// over decoded codepoints; otherwise atoms operate over raw bytes. On
// failure the returned error is a *Error carrying the byte offset of the
// offending token.
func Parse(pattern []byte, flags Flags) (*Regexp, error) {
	p := &parser{
		pattern: pattern,
		flags:   flags,
		names:   make(map[string]int),
	}
	re, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.pattern) {
		// parseAlternate only stops early on ')'.
		return nil, p.newError(ErrUnexpectedParen, p.pos, p.pos+1)
	}
	re.Flags = flags
	return re, nil
}

type parser struct {
	pattern []byte
	flags   Flags
	pos     int

	ncap  int            // capture slots assigned so far (slot 0 is implicit)
	names map[string]int // group name -> slot, for duplicate detection
}

// eof is returned by peek when the pattern is exhausted.
const eof rune = -1

func (p *parser) utf() bool {
	return p.flags&UTF != 0
}

// peek returns the next code unit and its width in bytes without
// consuming it. Returns eof at the end of the pattern.
func (p *parser) peek() (rune, int, error) {
	if p.pos >= len(p.pattern) {
		return eof, 0, nil
	}
	if !p.utf() {
		return rune(p.pattern[p.pos]), 1, nil
	}
	r, w := utf8.DecodeRune(p.pattern[p.pos:])
	if r == utf8.RuneError && w <= 1 {
		return 0, 0, p.newError(ErrInvalidUTF8, p.pos, p.pos+1)
	}
	return r, w, nil
}

func (p *parser) newError(code ErrorCode, from, to int) error {
	if to > len(p.pattern) {
		to = len(p.pattern)
	}
	if from > to {
		from = to
	}
	return &Error{Code: code, Pos: from, Expr: string(p.pattern[from:to])}
}

// parseAlternate parses a sequence of concatenations separated by '|'.
func (p *parser) parseAlternate() (*Regexp, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	subs := []*Regexp{first}
	for {
		r, w, err := p.peek()
		if err != nil {
			return nil, err
		}
		if r != '|' {
			break
		}
		p.pos += w
		next, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		subs = append(subs, next)
	}
	if len(subs) == 1 {
		return subs[0], nil
	}
	return &Regexp{Op: OpAlternate, Sub: subs}, nil
}

// parseConcat parses a run of terms up to '|', ')' or the end of the
// pattern. Adjacent literal runs are merged into a single node.
func (p *parser) parseConcat() (*Regexp, error) {
	var subs []*Regexp
	for {
		r, _, err := p.peek()
		if err != nil {
			return nil, err
		}
		if r == eof || r == '|' || r == ')' {
			break
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if term.Op == OpLiteral && len(subs) > 0 && subs[len(subs)-1].Op == OpLiteral {
			prev := subs[len(subs)-1]
			prev.Rune = append(prev.Rune, term.Rune...)
			continue
		}
		subs = append(subs, term)
	}
	if len(subs) == 0 {
		return &Regexp{Op: OpEmpty}, nil
	}
	if len(subs) == 1 {
		return subs[0], nil
	}
	return &Regexp{Op: OpConcat, Sub: subs}, nil
}

// parseTerm parses an atom followed by any repetition suffixes.
func (p *parser) parseTerm() (*Regexp, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		r, w, err := p.peek()
		if err != nil {
			return nil, err
		}
		var min, max int
		opPos := p.pos
		switch r {
		case '*':
			min, max = 0, -1
			p.pos += w
		case '+':
			min, max = 1, -1
			p.pos += w
		case '?':
			min, max = 0, 1
			p.pos += w
		case '{':
			var ok bool
			min, max, ok, err = p.parseRepeatBounds()
			if err != nil {
				return nil, err
			}
			if !ok {
				// Not a counted repeat; '{' becomes a literal atom
				// on the next parseTerm call.
				return atom, nil
			}
		default:
			return atom, nil
		}
		if atom.Op == OpRepeat {
			return nil, p.newError(ErrInvalidRepeatOp, opPos, p.pos)
		}
		greedy := true
		if r2, w2, err := p.peek(); err != nil {
			return nil, err
		} else if r2 == '?' {
			greedy = false
			p.pos += w2
		}
		atom = &Regexp{
			Op:     OpRepeat,
			Min:    min,
			Max:    max,
			Greedy: greedy,
			Sub:    []*Regexp{atom},
		}
	}
}

// parseRepeatBounds parses "{m}", "{m,}" or "{m,n}" at the current
// position. Returns ok=false without consuming input when the brace does
// not open a counted repeat, in which case it is treated as a literal.
func (p *parser) parseRepeatBounds() (min, max int, ok bool, err error) {
	start := p.pos
	p.pos++ // '{'
	min, digits := p.parseInt()
	if digits == 0 {
		p.pos = start
		return 0, 0, false, nil
	}
	max = min
	if p.pos < len(p.pattern) && p.pattern[p.pos] == ',' {
		p.pos++
		var n int
		max, n = p.parseInt()
		if n == 0 {
			max = -1 // "{m,}"
		}
	}
	if p.pos >= len(p.pattern) || p.pattern[p.pos] != '}' {
		p.pos = start
		return 0, 0, false, nil
	}
	p.pos++ // '}'
	if min > maxRepeatCount || max > maxRepeatCount {
		return 0, 0, false, p.newError(ErrInvalidRepeatSize, start, p.pos)
	}
	if max != -1 && min > max {
		return 0, 0, false, p.newError(ErrInvalidRepeatBounds, start, p.pos)
	}
	return min, max, true, nil
}

// parseInt parses a run of ASCII digits, returning the value and the
// number of digits consumed. The value saturates above maxRepeatCount+1
// so oversized counts fail the size check instead of overflowing.
func (p *parser) parseInt() (int, int) {
	n, digits := 0, 0
	for p.pos < len(p.pattern) && p.pattern[p.pos] >= '0' && p.pattern[p.pos] <= '9' {
		if n <= maxRepeatCount {
			n = n*10 + int(p.pattern[p.pos]-'0')
		}
		p.pos++
		digits++
	}
	return n, digits
}

// parseAtom parses a single atom: a literal, '.', an anchor, an escape, a
// class or a group.
func (p *parser) parseAtom() (*Regexp, error) {
	r, w, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch r {
	case '(':
		p.pos += w
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '\\':
		return p.parseEscape()
	case '.':
		p.pos += w
		return &Regexp{Op: OpAnyCharNotNL}, nil
	case '^':
		p.pos += w
		return &Regexp{Op: OpBeginText}, nil
	case '$':
		p.pos += w
		return &Regexp{Op: OpEndText}, nil
	case '*', '+', '?':
		return nil, p.newError(ErrMissingRepeatArgument, p.pos, p.pos+w)
	}
	p.pos += w
	return &Regexp{Op: OpLiteral, Rune: []rune{r}}, nil
}

// parseGroup parses a group body after its '(' has been consumed.
func (p *parser) parseGroup() (*Regexp, error) {
	openPos := p.pos - 1
	r, w, err := p.peek()
	if err != nil {
		return nil, err
	}
	if r != '?' {
		// Plain capturing group. The slot is assigned before the body is
		// parsed so nested groups number outermost-first.
		p.ncap++
		index := p.ncap
		sub, err := p.parseGroupBody(openPos)
		if err != nil {
			return nil, err
		}
		return &Regexp{Op: OpCapture, Cap: index, Sub: []*Regexp{sub}}, nil
	}
	p.pos += w

	r, w, err = p.peek()
	if err != nil {
		return nil, err
	}
	switch r {
	case ':':
		p.pos += w
		return p.parseGroupBody(openPos)
	case 'P':
		p.pos += w
		r2, w2, err := p.peek()
		if err != nil {
			return nil, err
		}
		if r2 != '<' {
			return nil, p.newError(ErrUnknownGroupSyntax, openPos, p.pos+w2)
		}
		p.pos += w2
		name, err := p.parseGroupName()
		if err != nil {
			return nil, err
		}
		if _, dup := p.names[name]; dup {
			return nil, p.newError(ErrDuplicateGroupName, openPos, p.pos)
		}
		p.ncap++
		index := p.ncap
		p.names[name] = index
		sub, err := p.parseGroupBody(openPos)
		if err != nil {
			return nil, err
		}
		return &Regexp{Op: OpCapture, Cap: index, Name: name, Sub: []*Regexp{sub}}, nil
	case eof:
		return nil, p.newError(ErrMissingParen, openPos, p.pos)
	default:
		// Any introducer other than ':' or 'P<' after "(?".
		return nil, p.newError(ErrUnknownGroupSyntax, openPos, p.pos+w)
	}
}

// parseGroupBody parses an alternation and the closing ')'.
func (p *parser) parseGroupBody(openPos int) (*Regexp, error) {
	sub, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}
	r, w, err := p.peek()
	if err != nil {
		return nil, err
	}
	if r != ')' {
		return nil, p.newError(ErrMissingParen, openPos, openPos+1)
	}
	p.pos += w
	return sub, nil
}

// parseGroupName parses a group name up to '>'. Names match
// [A-Za-z_][A-Za-z0-9_]*.
func (p *parser) parseGroupName() (string, error) {
	start := p.pos
	for p.pos < len(p.pattern) && p.pattern[p.pos] != '>' {
		c := p.pattern[p.pos]
		ok := c == '_' ||
			(c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9' && p.pos > start)
		if !ok {
			return "", p.newError(ErrInvalidGroupName, start, p.pos+1)
		}
		p.pos++
	}
	if p.pos >= len(p.pattern) || p.pos == start {
		return "", p.newError(ErrInvalidGroupName, start, p.pos)
	}
	name := string(p.pattern[start:p.pos])
	p.pos++ // '>'
	return name, nil
}

// maxUnit returns the largest code unit in the current mode.
func (p *parser) maxUnit() rune {
	if p.utf() {
		return utf8.MaxRune
	}
	return 0xFF
}

// Perl class shorthands. \s follows PCRE and includes vertical tab.
var (
	classDigit = []rune{'0', '9'}
	classWord  = []rune{'0', '9', 'A', 'Z', '_', '_', 'a', 'z'}
	classSpace = []rune{'\t', '\r', ' ', ' '}
)

// parseEscape parses an escape sequence outside a character class.
func (p *parser) parseEscape() (*Regexp, error) {
	escPos := p.pos
	p.pos++ // '\'
	r, w, err := p.peek()
	if err != nil {
		return nil, err
	}
	if r == eof {
		return nil, p.newError(ErrTrailingBackslash, escPos, p.pos)
	}
	switch r {
	case 'd', 'D', 'w', 'W', 's', 'S':
		p.pos += w
		return &Regexp{Op: OpCharClass, Rune: p.shorthandClass(byte(r))}, nil
	case 'A':
		p.pos += w
		return &Regexp{Op: OpBeginText}, nil
	case 'z':
		p.pos += w
		return &Regexp{Op: OpEndText}, nil
	}
	lit, err := p.parseEscapeChar(escPos)
	if err != nil {
		return nil, err
	}
	return &Regexp{Op: OpLiteral, Rune: []rune{lit}}, nil
}

// parseEscapeChar parses an escape that denotes a single code unit.
// Shared between top-level escapes and class members.
func (p *parser) parseEscapeChar(escPos int) (rune, error) {
	r, w, err := p.peek()
	if err != nil {
		return 0, err
	}
	if r == eof {
		return 0, p.newError(ErrTrailingBackslash, escPos, p.pos)
	}
	p.pos += w
	switch r {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'a':
		return '\a', nil
	case '0':
		return 0, nil
	case 'x':
		return p.parseHexEscape(escPos)
	}
	// Escaped metacharacters and punctuation stand for themselves.
	// Letters and digits not handled above are reserved: silently
	// treating them as literals would hide typos like \q or an
	// unsupported backreference \1.
	if r < utf8.RuneSelf && (isalnum(byte(r)) || r == '_') {
		return 0, p.newError(ErrInvalidEscape, escPos, p.pos)
	}
	return r, nil
}

// parseHexEscape parses the two hex digits of "\xHH" ('x' consumed).
func (p *parser) parseHexEscape(escPos int) (rune, error) {
	if p.pos+2 > len(p.pattern) {
		return 0, p.newError(ErrInvalidEscape, escPos, len(p.pattern))
	}
	hi, ok1 := unhex(p.pattern[p.pos])
	lo, ok2 := unhex(p.pattern[p.pos+1])
	if !ok1 || !ok2 {
		return 0, p.newError(ErrInvalidEscape, escPos, p.pos+2)
	}
	p.pos += 2
	return rune(hi<<4 | lo), nil
}

func unhex(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func isalnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// shorthandClass returns the ranges for \d \D \w \W \s \S in the current
// mode. Uppercase shorthands complement over the mode's unit universe.
func (p *parser) shorthandClass(c byte) []rune {
	var base []rune
	negate := false
	switch c {
	case 'd':
		base = classDigit
	case 'D':
		base, negate = classDigit, true
	case 'w':
		base = classWord
	case 'W':
		base, negate = classWord, true
	case 's':
		base = classSpace
	case 'S':
		base, negate = classSpace, true
	}
	ranges := append([]rune(nil), base...)
	ranges = normalizeClass(ranges)
	if negate {
		ranges = negateClass(ranges, p.maxUnit())
	}
	return ranges
}

// parseClass parses a character class starting at '['.
func (p *parser) parseClass() (*Regexp, error) {
	startPos := p.pos
	p.pos++ // '['

	negate := false
	if r, w, err := p.peek(); err != nil {
		return nil, err
	} else if r == '^' {
		negate = true
		p.pos += w
	}

	var ranges []rune
	first := true
	for {
		r, w, err := p.peek()
		if err != nil {
			return nil, err
		}
		if r == eof {
			return nil, p.newError(ErrInvalidCharClass, startPos, p.pos)
		}
		if r == ']' && !first {
			p.pos += w
			break
		}
		first = false

		lo, shorthand, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		if shorthand != nil {
			ranges = append(ranges, shorthand...)
			continue
		}

		hi := lo
		// A '-' forms a range unless it is the last member.
		if r2, w2, err := p.peek(); err != nil {
			return nil, err
		} else if r2 == '-' {
			if r3, _, err := p.peekAt(p.pos + w2); err != nil {
				return nil, err
			} else if r3 != ']' && r3 != eof {
				p.pos += w2
				memberPos := p.pos
				hi, shorthand, err = p.parseClassMember()
				if err != nil {
					return nil, err
				}
				if shorthand != nil || hi < lo {
					return nil, p.newError(ErrInvalidCharClass, memberPos, p.pos)
				}
			}
		}
		ranges = append(ranges, lo, hi)
	}

	ranges = normalizeClass(ranges)
	if negate {
		ranges = negateClass(ranges, p.maxUnit())
	}
	return &Regexp{Op: OpCharClass, Rune: ranges}, nil
}

// peekAt decodes the code unit at an arbitrary offset.
func (p *parser) peekAt(pos int) (rune, int, error) {
	saved := p.pos
	p.pos = pos
	r, w, err := p.peek()
	p.pos = saved
	return r, w, err
}

// parseClassMember parses one class member: a plain code unit, an escaped
// one, or a shorthand class (returned as ranges).
func (p *parser) parseClassMember() (rune, []rune, error) {
	r, w, err := p.peek()
	if err != nil {
		return 0, nil, err
	}
	if r != '\\' {
		p.pos += w
		return r, nil, nil
	}
	escPos := p.pos
	p.pos += w
	r2, _, err := p.peek()
	if err != nil {
		return 0, nil, err
	}
	switch r2 {
	case 'd', 'D', 'w', 'W', 's', 'S':
		p.pos++
		return 0, p.shorthandClass(byte(r2)), nil
	}
	lit, err := p.parseEscapeChar(escPos)
	if err != nil {
		return 0, nil, err
	}
	return lit, nil, nil
}

// normalizeClass sorts [lo, hi] pairs and merges overlapping or adjacent
// ranges, so downstream consumers see a canonical class.
func normalizeClass(ranges []rune) []rune {
	if len(ranges) <= 2 {
		return ranges
	}
	type pair struct{ lo, hi rune }
	pairs := make([]pair, 0, len(ranges)/2)
	for i := 0; i+1 < len(ranges); i += 2 {
		pairs = append(pairs, pair{ranges[i], ranges[i+1]})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].lo < pairs[j].lo || (pairs[i].lo == pairs[j].lo && pairs[i].hi < pairs[j].hi)
	})
	out := ranges[:0]
	for _, pr := range pairs {
		n := len(out)
		if n > 0 && pr.lo <= out[n-1]+1 {
			if pr.hi > out[n-1] {
				out[n-1] = pr.hi
			}
			continue
		}
		out = append(out, pr.lo, pr.hi)
	}
	return out
}

// negateClass complements normalized ranges over [0, max].
func negateClass(ranges []rune, max rune) []rune {
	var out []rune
	next := rune(0)
	for i := 0; i+1 < len(ranges); i += 2 {
		if ranges[i] > next {
			out = append(out, next, ranges[i]-1)
		}
		if ranges[i+1]+1 > next {
			next = ranges[i+1] + 1
		}
	}
	if next <= max {
		out = append(out, next, max)
	}
	return out
}
