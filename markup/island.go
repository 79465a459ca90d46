// Package markup extracts the metadata island embedded in legacy catalogue
// records. Islands are expected to be RDF/XML, but many records carry an
// older catalogue container or structurally faulty markup, so loading runs a
// fixed sequence of repairs until a parseable graph results.
package markup

import (
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Island is the graph read from a record's embedded markup. Roots are the
// subjects of its top-level node elements.
type Island struct {
	Graph *graph.Graph
	Roots []graph.Term
}

// Root returns the first top-level node.
func (i *Island) Root() graph.Term {
	if i == nil || len(i.Roots) == 0 {
		return graph.Term{}
	}
	return i.Roots[0]
}

// Literal returns the first literal value of (node, predicate), trimmed.
func (i *Island) Literal(node graph.Term, predicate string) string {
	for _, o := range i.Graph.Objects(node, graph.NewIRI(predicate)) {
		if o.IsLiteral() {
			if v := strings.TrimSpace(o.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// Text returns the first literal of a TNA property.
func (i *Island) Text(node graph.Term, local string) string {
	return i.Literal(node, vocabulary.TNATerm(local))
}

// Values returns every non-empty literal of a TNA property, sorted.
func (i *Island) Values(node graph.Term, local string) []string {
	var out []string
	for _, o := range i.Graph.Objects(node, graph.NewIRI(vocabulary.TNATerm(local))) {
		if v := strings.TrimSpace(o.Value); o.IsLiteral() && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Node returns the first resource object of a TNA property.
func (i *Island) Node(node graph.Term, local string) (graph.Term, bool) {
	nodes := i.Nodes(node, local)
	if len(nodes) == 0 {
		return graph.Term{}, false
	}
	return nodes[0], true
}

// Nodes returns every resource object of a TNA property, sorted.
func (i *Island) Nodes(node graph.Term, local string) []graph.Term {
	var out []graph.Term
	for _, o := range i.Graph.Objects(node, graph.NewIRI(vocabulary.TNATerm(local))) {
		if !o.IsLiteral() {
			out = append(out, o)
		}
	}
	return out
}

// HasType reports whether node is typed with a TNA class.
func (i *Island) HasType(node graph.Term, local string) bool {
	return i.Graph.Contains(graph.NewTriple(node, graph.NewIRI(vocabulary.RDFType), graph.NewIRI(vocabulary.TNATerm(local))))
}
