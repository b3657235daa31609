package policy

import (
	"sort"
	"strings"
)

// AttributeSet is a set of attribute names, each possibly namespaced as
// "prefix:label", with the pipe-separated form "a|b|c" as its canonical
// textual representation.
type AttributeSet struct {
	attrs map[string]struct{}
}

// NewAttributeSet builds a set from attrs, deduplicating entries.
func NewAttributeSet(attrs ...string) AttributeSet {
	set := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if a == "" {
			continue
		}
		set[a] = struct{}{}
	}
	return AttributeSet{attrs: set}
}

// ParseAttributeSet splits s on "|" into an AttributeSet. An empty string
// parses to the empty set.
func ParseAttributeSet(s string) AttributeSet {
	if s == "" {
		return NewAttributeSet()
	}
	return NewAttributeSet(strings.Split(s, "|")...)
}

// Has reports whether attr is a member of a.
func (a AttributeSet) Has(attr string) bool {
	_, ok := a.attrs[attr]
	return ok
}

// Len returns the number of attributes in a.
func (a AttributeSet) Len() int { return len(a.attrs) }

// List returns a's members in sorted order.
func (a AttributeSet) List() []string {
	out := make([]string, 0, len(a.attrs))
	for attr := range a.attrs {
		out = append(out, attr)
	}
	sort.Strings(out)
	return out
}

// Map returns a as a plain set keyed by attribute name, the representation
// Satisfied and lsss.MSP.RowsForAttributes key their lookups by.
func (a AttributeSet) Map() map[string]struct{} {
	out := make(map[string]struct{}, len(a.attrs))
	for attr := range a.attrs {
		out[attr] = struct{}{}
	}
	return out
}

// String renders a in its canonical pipe-separated form, with members
// sorted for a deterministic encoding.
func (a AttributeSet) String() string {
	return strings.Join(a.List(), "|")
}
