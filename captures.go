package recap

// Captures holds the result of one successful match: the subject it was
// found in plus the byte spans of the whole match and every group.
//
// Group 0 is the whole match. Groups that did not participate in the
// match have no span; Group reports them with ok == false. A group that
// matched the empty string participates with an empty, non-nil slice;
// the two cases are distinct.
//
// Captured slices alias the subject; they are views, not copies.
type Captures struct {
	subject []byte
	slots   []int
	names   []string
	byName  map[string]int
}

// Len returns the number of groups including group 0.
func (c *Captures) Len() int {
	return len(c.slots) / 2
}

// Span returns the byte offsets [start, end) of group i. ok is false
// when i is out of range or the group did not participate.
func (c *Captures) Span(i int) (start, end int, ok bool) {
	if i < 0 || 2*i+1 >= len(c.slots) {
		return 0, 0, false
	}
	start, end = c.slots[2*i], c.slots[2*i+1]
	if start < 0 || end < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// Group returns the bytes captured by group i. ok is false when i is
// out of range or the group did not participate; an empty capture
// returns an empty, non-nil slice with ok == true.
func (c *Captures) Group(i int) ([]byte, bool) {
	start, end, ok := c.Span(i)
	if !ok {
		return nil, false
	}
	return c.subject[start:end:end], true
}

// ByName returns the bytes captured by the named group. Unknown names
// are an error; a known group that did not participate returns
// (nil, false, nil).
func (c *Captures) ByName(name string) ([]byte, bool, error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false, ErrUnknownGroup
	}
	b, participated := c.Group(i)
	return b, participated, nil
}

// Names returns the group names indexed by group number. Unnamed groups
// and group 0 have an empty name. The slice is shared; do not modify.
func (c *Captures) Names() []string {
	return c.names
}

// Index returns the slot vector in stdlib FindSubmatchIndex layout:
// pairs of byte offsets, -1 for non-participating groups.
func (c *Captures) Index() []int {
	out := make([]int, len(c.slots))
	copy(out, c.slots)
	return out
}
