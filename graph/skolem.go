package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// GenIDPath is the well-known path segment under which owned nested nodes
// are named.
const GenIDPath = ".well-known/genid/"

// IsSkolem reports whether t names an owned nested node.
func IsSkolem(t Term) bool {
	return t.IsIRI() && strings.Contains(t.Value, "/"+GenIDPath)
}

// SkolemBase returns the genid namespace for an identity base IRI.
func SkolemBase(base string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + GenIDPath
}

// Skolemize returns a copy of g in which every blank node is replaced by an
// IRI under base. The name is a hash of the node's parent path and its
// canonical content, so rebuilding the same fragment yields the same IRIs
// and a diff against the stored fragment stays empty.
func Skolemize(g *Graph, base string) *Graph {
	sk := &skolemizer{g: g, base: base, names: make(map[Term]Term)}

	out := New()
	for t := range g.triples {
		if t.Subject.IsBlank() {
			t.Subject = sk.name(t.Subject, map[Term]bool{})
		}
		if t.Object.IsBlank() {
			t.Object = sk.name(t.Object, map[Term]bool{})
		}
		out.Add(t)
	}
	return out
}

type skolemizer struct {
	g     *Graph
	base  string
	names map[Term]Term
}

func (s *skolemizer) name(b Term, visiting map[Term]bool) Term {
	if n, ok := s.names[b]; ok {
		return n
	}
	if visiting[b] {
		return Term{Kind: KindIRI, Value: "cycle"}
	}
	visiting[b] = true
	defer delete(visiting, b)

	h := sha256.New()
	h.Write([]byte(s.parent(b, visiting)))
	h.Write([]byte{'\n'})
	h.Write([]byte(s.content(b, map[Term]bool{})))

	n := NewIRI(s.base + hex.EncodeToString(h.Sum(nil)[:16]))
	s.names[b] = n
	return n
}

// content is the sorted predicate/object listing of b, with nested blank
// objects replaced by their own content.
func (s *skolemizer) content(b Term, visiting map[Term]bool) string {
	if visiting[b] {
		return "cycle"
	}
	visiting[b] = true
	defer delete(visiting, b)

	var lines []string
	for t := range s.g.triples {
		if t.Subject != b {
			continue
		}
		obj := t.Object.String()
		if t.Object.IsBlank() {
			obj = "[" + s.content(t.Object, visiting) + "]"
		}
		lines = append(lines, t.Predicate.String()+" "+obj)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// parent identifies the first incoming edge of b: the subject's IRI (or,
// for a blank subject, its own skolem name) and the predicate.
func (s *skolemizer) parent(b Term, visiting map[Term]bool) string {
	type edge struct {
		key     string
		subject Term
		pred    Term
	}
	var edges []edge
	for t := range s.g.triples {
		if t.Object != b {
			continue
		}
		key := t.Subject.String()
		if t.Subject.IsBlank() {
			key = "[" + s.content(t.Subject, map[Term]bool{}) + "]"
		}
		edges = append(edges, edge{key: key + " " + t.Predicate.String(), subject: t.Subject, pred: t.Predicate})
	}
	if len(edges) == 0 {
		return ""
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].key < edges[j].key })

	first := edges[0]
	subj := first.subject
	if subj.IsBlank() {
		subj = s.name(subj, visiting)
	}
	return subj.String() + " " + first.pred.String()
}
