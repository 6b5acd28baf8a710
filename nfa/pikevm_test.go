package nfa

import (
	"testing"

	"github.com/coregx/recap/syntax"
)

// matchCase is shared between the PikeVM and backtracker tests; the two
// engines must agree on every one of them.
type matchCase struct {
	name      string
	pattern   string
	flags     syntax.Flags
	haystack  string
	wantFound bool
	// wantSlots holds the expected capture vector prefix; unchecked when
	// nil. Layout: [start0, end0, start1, end1, ...], -1 for a group
	// that did not participate.
	wantSlots []int
}

var matchCases = []matchCase{
	{
		name: "simple literal", pattern: "foo", flags: syntax.UTF,
		haystack: "foo bar", wantFound: true, wantSlots: []int{0, 3},
	},
	{
		name: "literal later in haystack", pattern: "bar", flags: syntax.UTF,
		haystack: "foo bar", wantFound: true, wantSlots: []int{4, 7},
	},
	{
		name: "no match", pattern: "baz", flags: syntax.UTF,
		haystack: "foo bar", wantFound: false,
	},
	{
		name: "empty pattern", pattern: "", flags: syntax.UTF,
		haystack: "abc", wantFound: true, wantSlots: []int{0, 0},
	},
	{
		name: "empty pattern empty haystack", pattern: "", flags: syntax.UTF,
		haystack: "", wantFound: true, wantSlots: []int{0, 0},
	},
	{
		name: "greedy star", pattern: "a*", flags: syntax.UTF,
		haystack: "aaab", wantFound: true, wantSlots: []int{0, 3},
	},
	{
		name: "lazy star matches empty", pattern: "a*?", flags: syntax.UTF,
		haystack: "aaa", wantFound: true, wantSlots: []int{0, 0},
	},
	{
		name: "lazy plus", pattern: "a+?", flags: syntax.UTF,
		haystack: "aaa", wantFound: true, wantSlots: []int{0, 1},
	},
	{
		name: "alternation prefers left", pattern: "a|ab", flags: syntax.UTF,
		haystack: "ab", wantFound: true, wantSlots: []int{0, 1},
	},
	{
		name: "alternation falls through", pattern: "ab|a", flags: syntax.UTF,
		haystack: "ab", wantFound: true, wantSlots: []int{0, 2},
	},
	{
		name: "leftmost beats longer", pattern: "a+", flags: syntax.UTF,
		haystack: "baaa", wantFound: true, wantSlots: []int{1, 4},
	},
	{
		name: "single capture", pattern: "a(b+)c", flags: syntax.UTF,
		haystack: "xabbbcx", wantFound: true, wantSlots: []int{1, 6, 2, 5},
	},
	{
		name: "nested captures", pattern: "((a)(b))", flags: syntax.UTF,
		haystack: "ab", wantFound: true, wantSlots: []int{0, 2, 0, 2, 0, 1, 1, 2},
	},
	{
		name: "unused alternation branch", pattern: "(a)|(b)", flags: syntax.UTF,
		haystack: "b", wantFound: true, wantSlots: []int{0, 1, -1, -1, 0, 1},
	},
	{
		name: "optional group skipped", pattern: "a(b)?c", flags: syntax.UTF,
		haystack: "ac", wantFound: true, wantSlots: []int{0, 2, -1, -1},
	},
	{
		name: "optional group taken", pattern: "a(b)?c", flags: syntax.UTF,
		haystack: "abc", wantFound: true, wantSlots: []int{0, 3, 1, 2},
	},
	{
		name: "star group keeps last iteration", pattern: "(ab)*", flags: syntax.UTF,
		haystack: "ababab", wantFound: true, wantSlots: []int{0, 6, 4, 6},
	},
	{
		name: "nested empty star terminates", pattern: "(a*)*", flags: syntax.UTF,
		haystack: "", wantFound: true, wantSlots: []int{0, 0, 0, 0},
	},
	{
		name: "nested star consumes all", pattern: "(a*)*", flags: syntax.UTF,
		haystack: "aaa", wantFound: true, wantSlots: []int{0, 3, 0, 3},
	},
	{
		name: "named group", pattern: `some (?P<key>.*)`, flags: syntax.UTF,
		haystack: "some word", wantFound: true, wantSlots: []int{0, 9, 5, 9},
	},
	{
		name: "dot excludes newline", pattern: "a.c", flags: syntax.UTF,
		haystack: "a\nc abc", wantFound: true, wantSlots: []int{4, 7},
	},
	{
		name: "counted repeat exact", pattern: "a{3}", flags: syntax.UTF,
		haystack: "aaaa", wantFound: true, wantSlots: []int{0, 3},
	},
	{
		name: "counted repeat range greedy", pattern: "a{2,3}", flags: syntax.UTF,
		haystack: "aaaa", wantFound: true, wantSlots: []int{0, 3},
	},
	{
		name: "counted repeat too few", pattern: "a{3}", flags: syntax.UTF,
		haystack: "aa", wantFound: false,
	},
	{
		name: "anchored start", pattern: "^abc", flags: syntax.UTF,
		haystack: "xabc", wantFound: false,
	},
	{
		name: "anchored both ends", pattern: "^abc$", flags: syntax.UTF,
		haystack: "abc", wantFound: true, wantSlots: []int{0, 3},
	},
	{
		name: "end anchor rejects prefix", pattern: "abc$", flags: syntax.UTF,
		haystack: "abcd", wantFound: false,
	},
	{
		name: "escape anchors", pattern: `\Aab\z`, flags: syntax.UTF,
		haystack: "ab", wantFound: true, wantSlots: []int{0, 2},
	},
	{
		name: "char class", pattern: "[b-d]+", flags: syntax.UTF,
		haystack: "abcde", wantFound: true, wantSlots: []int{1, 4},
	},
	{
		name: "negated class", pattern: "[^ab]+", flags: syntax.UTF,
		haystack: "abcd", wantFound: true, wantSlots: []int{2, 4},
	},
	{
		name: "digit shorthand", pattern: `\d+`, flags: syntax.UTF,
		haystack: "abc123def", wantFound: true, wantSlots: []int{3, 6},
	},
	{
		name: "word shorthand", pattern: `\w+`, flags: syntax.UTF,
		haystack: "  foo_1  ", wantFound: true, wantSlots: []int{2, 7},
	},
	{
		name: "space shorthand", pattern: `\s+`, flags: syntax.UTF,
		haystack: "ab\t \ncd", wantFound: true, wantSlots: []int{2, 5},
	},
	{
		name: "utf dot matches one rune", pattern: "x.y", flags: syntax.UTF,
		haystack: "xαy", wantFound: true, wantSlots: []int{0, 4},
	},
	{
		name: "utf literal rune", pattern: "é", flags: syntax.UTF,
		haystack: "café", wantFound: true, wantSlots: []int{3, 5},
	},
	{
		name: "utf rune class", pattern: "[α-ω]+", flags: syntax.UTF,
		haystack: "abδεcd", wantFound: true, wantSlots: []int{2, 6},
	},
	{
		name: "utf negated class spans rune", pattern: "a[^b]c", flags: syntax.UTF,
		haystack: "aéc", wantFound: true, wantSlots: []int{0, 4},
	},
	{
		name: "utf four byte rune", pattern: "x.y", flags: syntax.UTF,
		haystack: "x\U0001F600y", wantFound: true, wantSlots: []int{0, 6},
	},
	{
		name: "byte mode dot is one byte", pattern: "x.y", flags: 0,
		haystack: "x\xcey", wantFound: true, wantSlots: []int{0, 3},
	},
	{
		name: "byte mode high byte literal", pattern: "\xff", flags: 0,
		haystack: "a\xffb", wantFound: true, wantSlots: []int{1, 2},
	},
	{
		name: "hex escape", pattern: `\x41+`, flags: syntax.UTF,
		haystack: "bAAc", wantFound: true, wantSlots: []int{1, 3},
	},
	{
		name: "non capturing group", pattern: "(?:ab)+", flags: syntax.UTF,
		haystack: "ababx", wantFound: true, wantSlots: []int{0, 4},
	},
	{
		name: "alternation inside group", pattern: "(cat|dog)s?", flags: syntax.UTF,
		haystack: "hotdogs", wantFound: true, wantSlots: []int{3, 7, 3, 6},
	},
}

func TestPikeVM_Search(t *testing.T) {
	for _, tt := range matchCases {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewPikeVM(compileFlags(t, tt.pattern, tt.flags))
			slots, found := vm.Search([]byte(tt.haystack), 0)
			checkMatch(t, slots, found, tt)
		})
	}
}

func checkMatch(t *testing.T, slots []int, found bool, tt matchCase) {
	t.Helper()
	if found != tt.wantFound {
		t.Fatalf("Search(%q) found=%v, want %v", tt.haystack, found, tt.wantFound)
	}
	if !found || tt.wantSlots == nil {
		return
	}
	if len(slots) < len(tt.wantSlots) {
		t.Fatalf("Search(%q) returned %d slots, want at least %d", tt.haystack, len(slots), len(tt.wantSlots))
	}
	for i, want := range tt.wantSlots {
		if slots[i] != want {
			t.Errorf("Search(%q) slots = %v, want prefix %v", tt.haystack, slots, tt.wantSlots)
			return
		}
	}
}

func TestPikeVM_SearchAt(t *testing.T) {
	vm := NewPikeVM(mustCompile(t, "foo"))
	haystack := []byte("foo bar foo")

	tests := []struct {
		name      string
		at        int
		wantStart int
		wantFound bool
	}{
		{name: "at match start", at: 0, wantStart: 0, wantFound: true},
		{name: "at second match", at: 8, wantStart: 8, wantFound: true},
		{name: "between matches", at: 4, wantFound: false},
		{name: "one past match start", at: 1, wantFound: false},
		{name: "past end", at: 20, wantFound: false},
		{name: "negative", at: -1, wantFound: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, found := vm.SearchAt(haystack, tt.at)
			if found != tt.wantFound {
				t.Fatalf("SearchAt(%d) found=%v, want %v", tt.at, found, tt.wantFound)
			}
			if found && slots[0] != tt.wantStart {
				t.Errorf("SearchAt(%d) start=%d, want %d", tt.at, slots[0], tt.wantStart)
			}
		})
	}
}

func TestPikeVM_SearchFromOffset(t *testing.T) {
	vm := NewPikeVM(mustCompile(t, "a+"))
	slots, found := vm.Search([]byte("aa bb aa"), 2)
	if !found || slots[0] != 6 || slots[1] != 8 {
		t.Fatalf("Search from offset 2 = %v %v, want [6 8] true", slots, found)
	}
}

func TestPikeVM_IsMatch(t *testing.T) {
	vm := NewPikeVM(mustCompile(t, `\d+`))
	if !vm.IsMatch([]byte("abc123"), 0) {
		t.Error("IsMatch(abc123) = false, want true")
	}
	if vm.IsMatch([]byte("abcdef"), 0) {
		t.Error("IsMatch(abcdef) = true, want false")
	}
}

// The VM is stateless; concurrent searches over the same program must
// not interfere.
func TestPikeVM_ConcurrentSearches(t *testing.T) {
	vm := NewPikeVM(mustCompile(t, `(?P<word>\w+)`))
	haystack := []byte("  hello  ")

	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 100; j++ {
				slots, found := vm.Search(haystack, 0)
				if !found || slots[2] != 2 || slots[3] != 7 {
					t.Errorf("concurrent Search = %v %v, want [2 7] capture", slots, found)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
