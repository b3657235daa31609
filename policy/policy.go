// Package policy implements the boolean attribute-policy tree: parsing,
// canonical string form, and canonicalization (flattening associative
// gates and sorting children so that logically equivalent policies always
// produce the same tree and the same wire bytes).
package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openabe-go/oabe/abeerr"
)

// GateType identifies the kind of an internal policy node.
type GateType int

const (
	// Leaf holds a single attribute name.
	Leaf GateType = iota
	// And requires every child to be satisfied.
	And
	// Or requires at least one child to be satisfied.
	Or
	// Threshold requires at least K of its children.
	Threshold
)

// Node is one node of a policy tree.
type Node struct {
	Gate      GateType
	Prefix    string  // optional namespace, valid only when Gate == Leaf
	Attribute string  // valid only when Gate == Leaf
	K         int     // valid only when Gate == Threshold
	Children  []*Node // empty for Leaf

	duplicateCount map[string]int
}

// NewLeaf returns a leaf node naming attr, with no namespace prefix.
func NewLeaf(attr string) *Node { return &Node{Gate: Leaf, Attribute: attr} }

// NewPrefixedLeaf returns a leaf node naming attr within namespace prefix.
// Its canonical rendering and attribute-set key are "prefix:attr".
func NewPrefixedLeaf(prefix, attr string) *Node {
	return &Node{Gate: Leaf, Prefix: prefix, Attribute: attr}
}

// CanonicalLeafName is the identity a leaf is matched and sorted by: its
// namespaced "prefix:label" form when Prefix is set, else the bare label.
func (n *Node) CanonicalLeafName() string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Attribute
	}
	return n.Attribute
}

// NewAnd returns an AND node over children.
func NewAnd(children ...*Node) *Node { return &Node{Gate: And, Children: children} }

// NewOr returns an OR node over children.
func NewOr(children ...*Node) *Node { return &Node{Gate: Or, Children: children} }

// NewThreshold returns a K-of-children threshold gate.
func NewThreshold(k int, children ...*Node) *Node {
	return &Node{Gate: Threshold, K: k, Children: children}
}

// ThresholdValue returns the number of children that must be satisfied for
// n to be satisfied: len(children) for AND, 1 for OR, K for THRESHOLD.
func (n *Node) ThresholdValue() int {
	switch n.Gate {
	case And:
		return len(n.Children)
	case Or:
		return 1
	case Threshold:
		return n.K
	default:
		return 0
	}
}

// String renders the paper form of the tree: infix "(a and b)" for binary
// AND/OR, "k of (...)" for explicit thresholds.
func (n *Node) String() string {
	switch n.Gate {
	case Leaf:
		return n.CanonicalLeafName()
	case And, Or:
		op := " and "
		if n.Gate == Or {
			op = " or "
		}
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = wrapIfNeeded(c)
		}
		return "(" + strings.Join(parts, op) + ")"
	case Threshold:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = wrapIfNeeded(c)
		}
		return fmt.Sprintf("%d of (%s)", n.K, strings.Join(parts, ", "))
	default:
		return ""
	}
}

func wrapIfNeeded(n *Node) string { return n.String() }

// Canonicalize returns a new tree equal to n but with every AND/OR gate
// flattened (associative merging of same-typed children) and the children
// of every AND/OR/THRESHOLD node sorted lexicographically by their
// canonical string form. THRESHOLD gates are sorted but never flattened,
// since "k of (...)" has no associative identity to merge through.
func (n *Node) Canonicalize() *Node {
	c := canonicalizeNode(n)
	c.recomputeDuplicates()
	return c
}

func canonicalizeNode(n *Node) *Node {
	if n.Gate == Leaf {
		return &Node{Gate: Leaf, Prefix: n.Prefix, Attribute: n.Attribute}
	}
	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = canonicalizeNode(c)
	}
	out := &Node{Gate: n.Gate, K: n.K, Children: children}
	if out.Gate == And || out.Gate == Or {
		out.Children = flattenAssociative(out.Gate, out.Children)
	}
	sortChildren(out.Children)
	return out
}

// flattenAssociative merges grandchildren of the same gate type into the
// parent's child list: (a and (b and c)) becomes (a and b and c).
func flattenAssociative(gate GateType, children []*Node) []*Node {
	var out []*Node
	for _, c := range children {
		if c.Gate == gate {
			out = append(out, c.Children...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func sortChildren(children []*Node) {
	sort.Slice(children, func(i, j int) bool {
		return children[i].String() < children[j].String()
	})
}

func (n *Node) recomputeDuplicates() {
	counts := map[string]int{}
	var walk func(*Node)
	walk = func(m *Node) {
		if m.Gate == Leaf {
			counts[m.CanonicalLeafName()]++
			return
		}
		for _, c := range m.Children {
			walk(c)
		}
	}
	walk(n)
	n.duplicateCount = counts
}

// HasDuplicates reports whether any attribute appears more than once in
// the tree. Canonicalize must be called first for this to be accurate.
func (n *Node) HasDuplicates() bool {
	for _, c := range n.duplicateCount {
		if c > 1 {
			return true
		}
	}
	return false
}

// Attributes returns the sorted, de-duplicated list of leaf attribute
// names appearing in the tree.
func (n *Node) Attributes() []string {
	set := map[string]struct{}{}
	var walk func(*Node)
	walk = func(m *Node) {
		if m.Gate == Leaf {
			set[m.CanonicalLeafName()] = struct{}{}
			return
		}
		for _, c := range m.Children {
			walk(c)
		}
	}
	walk(n)
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Satisfied reports whether attrs (a set of attribute names) satisfies the
// policy tree rooted at n.
func Satisfied(n *Node, attrs map[string]struct{}) bool {
	if n.Gate == Leaf {
		_, ok := attrs[n.CanonicalLeafName()]
		return ok
	}
	need := n.ThresholdValue()
	have := 0
	for _, c := range n.Children {
		if Satisfied(c, attrs) {
			have++
		}
	}
	return have >= need
}

// Parse reads an infix boolean policy expression using "and"/"or"
// (case-insensitive), parentheses for grouping, and "k of (a, b, c)" for
// explicit thresholds, and returns its (uncanonicalized) tree. A leaf
// token containing ":" is split into a namespaced attribute, e.g.
// "role:Doctor" parses as NewPrefixedLeaf("role", "Doctor").
func Parse(expr string) (*Node, error) {
	p := &parser{toks: tokenize(expr)}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected trailing tokens in policy expression", abeerr.ErrInvalidInput)
	}
	return n, nil
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *parser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*Node{left}
	for strings.EqualFold(p.peek(), "or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Node{Gate: Or, Children: children}, nil
}

func (p *parser) parseAnd() (*Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	children := []*Node{left}
	for strings.EqualFold(p.peek(), "and") {
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Node{Gate: And, Children: children}, nil
}

func (p *parser) parseAtom() (*Node, error) {
	tok := p.peek()
	if tok == "" {
		return nil, fmt.Errorf("%w: unexpected end of policy expression", abeerr.ErrInvalidInput)
	}
	if tok == "(" {
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("%w: unbalanced parentheses in policy expression", abeerr.ErrInvalidInput)
		}
		return n, nil
	}
	if k, err := strconv.Atoi(tok); err == nil {
		p.next()
		if !strings.EqualFold(p.peek(), "of") {
			return nil, fmt.Errorf("%w: expected 'of' after threshold count", abeerr.ErrInvalidInput)
		}
		p.next()
		if p.next() != "(" {
			return nil, fmt.Errorf("%w: expected '(' after 'of'", abeerr.ErrInvalidInput)
		}
		var children []*Node
		for {
			c, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			children = append(children, c)
			if p.peek() == "," {
				p.next()
				continue
			}
			break
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("%w: unbalanced parentheses in threshold gate", abeerr.ErrInvalidInput)
		}
		return &Node{Gate: Threshold, K: k, Children: children}, nil
	}
	p.next()
	if idx := strings.IndexByte(tok, ':'); idx >= 0 {
		return &Node{Gate: Leaf, Prefix: tok[:idx], Attribute: tok[idx+1:]}, nil
	}
	return &Node{Gate: Leaf, Attribute: tok}, nil
}

func tokenize(expr string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '(' || r == ')' || r == ',':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
