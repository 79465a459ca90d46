package graph

import (
	"sort"
	"strconv"
)

// Graph is a set of triples. The zero value is not usable; call New.
// A Graph is not safe for concurrent mutation.
type Graph struct {
	triples map[Triple]struct{}
	blanks  int
}

// New returns a graph holding ts.
func New(ts ...Triple) *Graph {
	g := &Graph{triples: make(map[Triple]struct{}, len(ts))}
	for _, t := range ts {
		g.Add(t)
	}
	return g
}

// Add inserts t and reports whether it was not already present.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.triples[t]; ok {
		return false
	}
	g.triples[t] = struct{}{}
	return true
}

// Assert inserts (s, p, o).
func (g *Graph) Assert(s, p, o Term) {
	g.Add(Triple{Subject: s, Predicate: p, Object: o})
}

// Remove deletes t and reports whether it was present.
func (g *Graph) Remove(t Triple) bool {
	if _, ok := g.triples[t]; !ok {
		return false
	}
	delete(g.triples, t)
	return true
}

// Contains reports whether t is in the graph.
func (g *Graph) Contains(t Triple) bool {
	if g == nil {
		return false
	}
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of triples. A nil graph is empty.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.triples)
}

// IsEmpty reports whether the graph has no triples.
func (g *Graph) IsEmpty() bool { return g.Len() == 0 }

// NewBlankNode returns a blank node whose label is unique within g.
func (g *Graph) NewBlankNode() Term {
	for {
		g.blanks++
		label := "b" + strconv.Itoa(g.blanks)
		if !g.usesBlank(label) {
			return NewBlank(label)
		}
	}
}

func (g *Graph) usesBlank(label string) bool {
	b := NewBlank(label)
	for t := range g.triples {
		if t.Subject == b || t.Object == b {
			return true
		}
	}
	return false
}

// Triples returns all triples in N-Triples lexical order.
func (g *Graph) Triples() []Triple {
	if g == nil {
		return nil
	}
	out := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	sortTriples(out)
	return out
}

// Match returns the triples matching the pattern, where a zero Term
// matches anything.
func (g *Graph) Match(s, p, o Term) []Triple {
	if g == nil {
		return nil
	}
	var out []Triple
	for t := range g.triples {
		if (s.IsZero() || t.Subject == s) &&
			(p.IsZero() || t.Predicate == p) &&
			(o.IsZero() || t.Object == o) {
			out = append(out, t)
		}
	}
	sortTriples(out)
	return out
}

// Subjects returns the distinct subjects of triples matching (?, p, o), sorted.
func (g *Graph) Subjects(p, o Term) []Term {
	seen := make(map[Term]struct{})
	for _, t := range g.Match(Term{}, p, o) {
		seen[t.Subject] = struct{}{}
	}
	return sortedTerms(seen)
}

// Objects returns the distinct objects of triples matching (s, p, ?), sorted.
func (g *Graph) Objects(s, p Term) []Term {
	seen := make(map[Term]struct{})
	for _, t := range g.Match(s, p, Term{}) {
		seen[t.Object] = struct{}{}
	}
	return sortedTerms(seen)
}

// Object returns the first object of (s, p, ?) in sort order.
func (g *Graph) Object(s, p Term) (Term, bool) {
	objs := g.Objects(s, p)
	if len(objs) == 0 {
		return Term{}, false
	}
	return objs[0], true
}

// AllSubjects returns every distinct subject, sorted.
func (g *Graph) AllSubjects() []Term {
	seen := make(map[Term]struct{})
	if g != nil {
		for t := range g.triples {
			seen[t.Subject] = struct{}{}
		}
	}
	return sortedTerms(seen)
}

// Merge adds every triple of other to g.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for t := range other.triples {
		g.triples[t] = struct{}{}
	}
}

// Clone returns an independent copy of g.
func (g *Graph) Clone() *Graph {
	c := New()
	c.Merge(g)
	if g != nil {
		c.blanks = g.blanks
	}
	return c
}

// Minus returns the triples of g not in other.
func (g *Graph) Minus(other *Graph) *Graph {
	out := New()
	if g == nil {
		return out
	}
	for t := range g.triples {
		if !other.Contains(t) {
			out.triples[t] = struct{}{}
		}
	}
	return out
}

// Equal reports whether g and other hold the same triples.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	if g == nil {
		return true
	}
	for t := range g.triples {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}

// String returns the graph as sorted N-Triples.
func (g *Graph) String() string {
	return Marshal(g)
}

func sortTriples(ts []Triple) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].String() < ts[j].String()
	})
}

func sortedTerms(set map[Term]struct{}) []Term {
	out := make([]Term, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
