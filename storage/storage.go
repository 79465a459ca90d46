// Package storage defines the staging store the ingestion engine reads from
// and writes to.
//
// The store holds the accumulated fact graph. The engine reads it through
// named construct queries, which return the triples describing one entity
// or the subjects matching a business key, and writes to it by applying a
// diff: the removed triples are deleted and the added triples inserted in
// a single request.
//
// Each Query carries both the name of a packaged SPARQL template with its
// parameters and a structural Pattern describing the same selection, so
// stores that do not speak SPARQL can answer it directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
)

// Store is the staging triple store.
//
// Implementations report transport failures as errors satisfying
// errors.IsStoreFailure; the ingestion driver aborts the current batch on
// them.
type Store interface {
	// Construct returns the triples selected by q.
	Construct(ctx context.Context, q Query) (*graph.Graph, error)

	// Update deletes diff.Removed and inserts diff.Added as one request.
	Update(ctx context.Context, diff *graph.Diff) error
}

// IRI is a query parameter bound as an IRI rather than a string literal.
type IRI string

// Template names shared by every kind.
const (
	ResolveTemplate     = "resolve.rq"
	EnumerationTemplate = "enumeration.rq"
)

// MaxNestedDepth bounds how far queries follow owned nested nodes.
const MaxNestedDepth = 2

// Query names a packaged template and its parameters.
type Query struct {
	Name    string
	Params  map[string]any
	Pattern Pattern
}

// String returns a stable description for logs.
func (q Query) String() string {
	keys := make([]string, 0, len(q.Params))
	for k := range q.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(q.Name)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, q.Params[k])
	}
	return sb.String()
}

// IntParam returns an integer parameter, or 0 when absent.
func (q Query) IntParam(name string) int {
	switch v := q.Params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

// KeyParam binds a business key as an IRI or a string literal.
func KeyParam(key graph.Term) any {
	if key.IsIRI() {
		return IRI(key.Value)
	}
	return key.Value
}

// ExistingQuery selects an entity's fragment: every triple of the subject
// carrying key under keyPredicate, with its owned nested nodes.
func ExistingQuery(kind, keyPredicate string, key graph.Term) Query {
	return Query{
		Name:    kind + "/existing.rq",
		Params:  map[string]any{"id": KeyParam(key)},
		Pattern: Pattern{KeyPredicate: keyPredicate, Key: &key, Nested: true},
	}
}

// Scoped restricts the selected subject's triples to predicates. The
// key predicate is always kept.
func (q Query) Scoped(predicates ...string) Query {
	q.Pattern.Predicates = append([]string{q.Pattern.KeyPredicate}, predicates...)
	return q
}

// ResolveQuery selects the key triples of subjects carrying key.
func ResolveQuery(keyPredicate string, key graph.Term) Query {
	return Query{
		Name:    ResolveTemplate,
		Params:  map[string]any{"predicate": IRI(keyPredicate), "id": KeyParam(key)},
		Pattern: Pattern{KeyPredicate: keyPredicate, Key: &key, Predicates: []string{keyPredicate}},
	}
}

// EnumerationQuery selects one page of the key triples of a code list.
func EnumerationQuery(keyPredicate string, limit, offset int) Query {
	return Query{
		Name: EnumerationTemplate,
		Params: map[string]any{
			"predicate": IRI(keyPredicate),
			"limit":     limit,
			"offset":    offset,
		},
		Pattern: Pattern{KeyPredicate: keyPredicate, Predicates: []string{keyPredicate}},
	}
}

// Pattern is the structural form of a query.
type Pattern struct {
	// KeyPredicate selects subjects carrying it.
	KeyPredicate string
	// Key restricts the object of KeyPredicate; nil matches any object.
	Key *graph.Term
	// Predicates restricts the subject's triples; empty keeps all.
	Predicates []string
	// Nested follows owned nested nodes up to MaxNestedDepth.
	Nested bool
}

// Evaluate applies p to g, paging over the selected subjects in sort
// order. A limit of zero or less is unbounded.
func (p Pattern) Evaluate(g *graph.Graph, limit, offset int) *graph.Graph {
	var key graph.Term
	if p.Key != nil {
		key = *p.Key
	}
	subjects := g.Subjects(graph.NewIRI(p.KeyPredicate), key)

	if offset > 0 {
		if offset >= len(subjects) {
			subjects = nil
		} else {
			subjects = subjects[offset:]
		}
	}
	if limit > 0 && limit < len(subjects) {
		subjects = subjects[:limit]
	}

	scope := make(map[string]bool, len(p.Predicates))
	for _, pred := range p.Predicates {
		scope[pred] = true
	}

	out := graph.New()
	for _, s := range subjects {
		p.collect(g, s, scope, out, 0)
	}
	return out
}

func (p Pattern) collect(g *graph.Graph, subject graph.Term, scope map[string]bool, out *graph.Graph, depth int) {
	for _, t := range g.Match(subject, graph.Term{}, graph.Term{}) {
		if depth == 0 && len(scope) > 0 && !scope[t.Predicate.Value] {
			continue
		}
		if !out.Add(t) {
			continue
		}
		if p.Nested && depth < MaxNestedDepth && graph.IsSkolem(t.Object) {
			p.collect(g, t.Object, scope, out, depth+1)
		}
	}
}
