package meta

import (
	"errors"
	"testing"

	"github.com/coregx/recap/nfa"
	"github.com/coregx/recap/syntax"
)

func mustEngine(t *testing.T, pattern string, flags syntax.Flags) *Engine {
	t.Helper()
	e, err := Compile([]byte(pattern), flags, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", pattern, err)
	}
	return e
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	bad := DefaultConfig()
	bad.MaxStates = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted MaxStates=0")
	}
	bad = DefaultConfig()
	bad.MaxRecursionDepth = -1
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted negative MaxRecursionDepth")
	}
}

func TestCompile_PropagatesErrors(t *testing.T) {
	_, err := Compile([]byte(`(?D<key>x)`), syntax.UTF, DefaultConfig())
	var perr *syntax.Error
	if !errors.As(err, &perr) || perr.Code != syntax.ErrUnknownGroupSyntax {
		t.Fatalf("Compile((?D<key>x)) = %v, want syntax error %s", err, syntax.ErrUnknownGroupSyntax)
	}

	config := DefaultConfig()
	config.MaxStates = 10
	_, err = Compile([]byte(`abcdefghijklmnop`), syntax.UTF, config)
	if !errors.Is(err, nfa.ErrTooComplex) {
		t.Fatalf("Compile with MaxStates=10 = %v, want ErrTooComplex", err)
	}

	_, err = Compile([]byte(`x`), syntax.UTF, Config{})
	if err == nil {
		t.Error("Compile with zero Config succeeded, want validation error")
	}
}

func TestEngine_Search(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		haystack  string
		wantFound bool
		wantSpan  []int
	}{
		{name: "literal prefilter path", pattern: "needle", haystack: "hay needle", wantFound: true, wantSpan: []int{4, 10}},
		{name: "prefilter miss", pattern: "needle", haystack: "haystack", wantFound: false},
		{name: "no prefilter path", pattern: `\d+`, haystack: "ab12cd", wantFound: true, wantSpan: []int{2, 4}},
		{name: "prefix literal verify fail then hit", pattern: "ab+c", haystack: "ab abbc", wantFound: true, wantSpan: []int{3, 7}},
		{name: "alternation multi literal", pattern: "cat|dog", haystack: "hotdog", wantFound: true, wantSpan: []int{3, 6}},
		{name: "empty haystack no match", pattern: "x", haystack: "", wantFound: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEngine(t, tt.pattern, syntax.UTF)
			slots, found, err := e.Search([]byte(tt.haystack), 0)
			if err != nil {
				t.Fatalf("Search error: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("Search(%q) found=%v, want %v", tt.haystack, found, tt.wantFound)
			}
			if found && (slots[0] != tt.wantSpan[0] || slots[1] != tt.wantSpan[1]) {
				t.Errorf("Search(%q) span = [%d %d], want %v", tt.haystack, slots[0], slots[1], tt.wantSpan)
			}
		})
	}
}

// Every strategy knob must produce identical results; only speed may
// differ.
func TestEngine_StrategiesAgree(t *testing.T) {
	patterns := []string{"needle", "ab+c", "cat|dog|cow", `(?P<k>\w+)=(?P<v>\w+)`, "x(y)?z"}
	haystacks := []string{"", "needle", "k=v abbc", "a cow says", "xz xyz", "no hits here"}

	for _, pattern := range patterns {
		base := mustEngine(t, pattern, syntax.UTF)

		noPf, err := Compile([]byte(pattern), syntax.UTF, Config{
			MaxStates: 100000, MaxRecursionDepth: 1000, DisablePrefilter: true,
		})
		if err != nil {
			t.Fatalf("Compile(%q) without prefilter failed: %v", pattern, err)
		}
		pikeOnly, err := Compile([]byte(pattern), syntax.UTF, Config{
			MaxStates: 100000, MaxRecursionDepth: 1000, DisableBacktracker: true,
		})
		if err != nil {
			t.Fatalf("Compile(%q) pike-only failed: %v", pattern, err)
		}

		for _, haystack := range haystacks {
			want, wantFound, err := base.Search([]byte(haystack), 0)
			if err != nil {
				t.Fatal(err)
			}
			for name, e := range map[string]*Engine{"no-prefilter": noPf, "pike-only": pikeOnly} {
				got, gotFound, err := e.Search([]byte(haystack), 0)
				if err != nil {
					t.Fatal(err)
				}
				if gotFound != wantFound {
					t.Fatalf("%s: Search(%q, %q) found=%v, want %v", name, pattern, haystack, gotFound, wantFound)
				}
				if !wantFound {
					continue
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("%s: Search(%q, %q) = %v, want %v", name, pattern, haystack, got, want)
					}
				}
			}
		}
	}
}

func TestEngine_SearchAt(t *testing.T) {
	e := mustEngine(t, "foo", syntax.UTF)
	haystack := []byte("foo foo")

	if _, found, _ := e.SearchAt(haystack, 0); !found {
		t.Error("SearchAt(0) = no match, want match")
	}
	if slots, found, _ := e.SearchAt(haystack, 4); !found || slots[0] != 4 {
		t.Errorf("SearchAt(4) = %v %v, want match at 4", slots, found)
	}
	if _, found, _ := e.SearchAt(haystack, 1); found {
		t.Error("SearchAt(1) matched, want anchored miss")
	}
	if _, found, _ := e.SearchAt(haystack, 100); found {
		t.Error("SearchAt(100) matched, want out-of-range miss")
	}
}

func TestEngine_IsMatch(t *testing.T) {
	tests := []struct {
		pattern  string
		haystack string
		want     bool
	}{
		{pattern: "needle", haystack: "a needle", want: true},  // complete prefilter shortcut
		{pattern: "needle", haystack: "nothing", want: false},
		{pattern: "ab+c", haystack: "ab abc", want: true},      // prefix prefilter with verification
		{pattern: "ab+c", haystack: "ab ab", want: false},
		{pattern: `\d`, haystack: "abc5", want: true},          // no prefilter
		{pattern: "^hello", haystack: "say hello", want: false}, // anchored: prefilter hit needs verification
		{pattern: "^hello", haystack: "hello there", want: true},
	}
	for _, tt := range tests {
		e := mustEngine(t, tt.pattern, syntax.UTF)
		got, err := e.IsMatch([]byte(tt.haystack))
		if err != nil {
			t.Fatalf("IsMatch(%q, %q) error: %v", tt.pattern, tt.haystack, err)
		}
		if got != tt.want {
			t.Errorf("IsMatch(%q, %q) = %v, want %v", tt.pattern, tt.haystack, got, tt.want)
		}
	}
}

func TestEngine_InvalidUTF8Subject(t *testing.T) {
	e := mustEngine(t, "a", syntax.UTF)
	bad := []byte{'a', 0xFF, 'b'}

	if _, _, err := e.Search(bad, 0); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Search(invalid) err = %v, want ErrInvalidUTF8", err)
	}
	if _, err := e.IsMatch(bad); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("IsMatch(invalid) err = %v, want ErrInvalidUTF8", err)
	}

	// Byte mode has no such restriction.
	raw := mustEngine(t, "\xff", 0)
	found, err := raw.IsMatch(bad)
	if err != nil || !found {
		t.Errorf("byte-mode IsMatch = %v %v, want true", found, err)
	}
}

func TestEngine_LargeHaystackFallsBackToPikeVM(t *testing.T) {
	// Big enough that the backtracker's visited budget is exceeded; the
	// engine must still answer, via the PikeVM.
	e := mustEngine(t, `(?P<tail>b+)$`, syntax.UTF)
	haystack := make([]byte, 300000)
	for i := range haystack {
		haystack[i] = 'a'
	}
	haystack[len(haystack)-1] = 'b'

	slots, found, err := e.Search(haystack, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !found || slots[0] != len(haystack)-1 || slots[1] != len(haystack) {
		t.Fatalf("Search(large) = %v %v, want match at tail", slots[:2], found)
	}
}
