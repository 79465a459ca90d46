package graph

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://id.example.com/schema/"

var (
	ac1      = NewIRI("http://id.example.com/ac1")
	ac2      = NewIRI("http://id.example.com/ac2")
	code     = NewIRI(ex + "accessConditionCode")
	name     = NewIRI(ex + "accessConditionName")
	coverage = NewIRI(ex + "assetHasCoveringDateRange")
	year     = NewIRI(ex + "year")
)

func TestGraph_SetSemantics(t *testing.T) {
	g := New()
	g.Assert(ac1, code, NewLiteral("A"))
	g.Assert(ac1, code, NewLiteral("A"))
	g.Assert(ac1, name, NewLiteral("Open"))

	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Contains(NewTriple(ac1, name, NewLiteral("Open"))))
	assert.True(t, g.Remove(NewTriple(ac1, name, NewLiteral("Open"))))
	assert.False(t, g.Remove(NewTriple(ac1, name, NewLiteral("Open"))))
	assert.Equal(t, 1, g.Len())
}

func TestGraph_Queries(t *testing.T) {
	g := New(
		NewTriple(ac2, code, NewLiteral("B")),
		NewTriple(ac1, code, NewLiteral("A")),
		NewTriple(ac1, name, NewLiteral("Open")),
	)

	assert.Equal(t, []Term{ac1}, g.Subjects(code, NewLiteral("A")))
	assert.Equal(t, []Term{ac1, ac2}, g.Subjects(code, Term{}))
	assert.Equal(t, []Term{ac1, ac2}, g.AllSubjects())

	obj, ok := g.Object(ac1, name)
	require.True(t, ok)
	assert.Equal(t, "Open", obj.Value)

	_, ok = g.Object(ac2, name)
	assert.False(t, ok)

	assert.Len(t, g.Match(ac1, Term{}, Term{}), 2)
	assert.Len(t, g.Match(Term{}, Term{}, Term{}), 3)
}

func TestGraph_TriplesAreOrdered(t *testing.T) {
	g := New(
		NewTriple(ac2, code, NewLiteral("B")),
		NewTriple(ac1, name, NewLiteral("Open")),
		NewTriple(ac1, code, NewLiteral("A")),
	)

	ts := g.Triples()
	require.Len(t, ts, 3)
	assert.Equal(t, ac1, ts[0].Subject)
	assert.Equal(t, code, ts[0].Predicate)
	assert.Equal(t, ac2, ts[2].Subject)
}

func TestGraph_NewBlankNodeIsUnique(t *testing.T) {
	g := New(NewTriple(ac1, coverage, NewBlank("b1")))
	b := g.NewBlankNode()
	assert.NotEqual(t, "b1", b.Value)
	assert.NotEqual(t, b, g.NewBlankNode())
}

func TestCompare(t *testing.T) {
	a := New(
		NewTriple(ac1, code, NewLiteral("ac1")),
		NewTriple(ac1, name, NewLiteral("Open")),
	)
	b := New(
		NewTriple(ac1, code, NewLiteral("ac1")),
		NewTriple(ac1, name, NewLiteral("Closed")),
	)

	d := Compare(a, b)
	assert.Equal(t, 1, d.Added.Len())
	assert.Equal(t, 1, d.Removed.Len())
	assert.True(t, d.Added.Contains(NewTriple(ac1, name, NewLiteral("Closed"))))
	assert.True(t, d.Removed.Contains(NewTriple(ac1, name, NewLiteral("Open"))))
	assert.False(t, d.IsEmpty())
}

func TestCompare_Properties(t *testing.T) {
	lit := func(s string) Term { return NewLiteral(s) }
	fragments := []*Graph{
		nil,
		New(),
		New(NewTriple(ac1, code, lit("x"))),
		New(NewTriple(ac1, code, lit("x")), NewTriple(ac1, name, lit("y"))),
		New(NewTriple(ac1, name, lit("y")), NewTriple(ac2, name, lit("z"))),
		New(NewTriple(ac2, code, NewInteger(3)), NewTriple(ac2, name, NewLangLiteral("y", "en"))),
	}

	for i, a := range fragments {
		for j, b := range fragments {
			d := Compare(a, b)

			for _, tr := range d.Added.Triples() {
				assert.True(t, b.Contains(tr), "added ⊆ B (%d,%d)", i, j)
				assert.False(t, a.Contains(tr), "added ∩ A = ∅ (%d,%d)", i, j)
			}
			for _, tr := range d.Removed.Triples() {
				assert.True(t, a.Contains(tr), "removed ⊆ A (%d,%d)", i, j)
				assert.False(t, b.Contains(tr), "removed ∩ B = ∅ (%d,%d)", i, j)
			}
			assert.True(t, d.Apply(a).Equal(b), "apply(A) = B (%d,%d)", i, j)
			assert.Equal(t, i == j || a.Equal(b), d.IsEmpty())
		}
	}
}

func TestDiff_ApplyInPlace(t *testing.T) {
	g := New(NewTriple(ac1, name, NewLiteral("Open")))
	d := &Diff{
		Added:   New(NewTriple(ac1, name, NewLiteral("Closed"))),
		Removed: New(NewTriple(ac1, name, NewLiteral("Open"))),
	}
	d.ApplyInPlace(g)
	assert.Equal(t, []Triple{NewTriple(ac1, name, NewLiteral("Closed"))}, g.Triples())
}

func TestTerm_Literals(t *testing.T) {
	assert.Equal(t, NewLiteral("a"), NewTypedLiteral("a", XSDString))
	assert.Equal(t, `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`, NewInteger(42).String())
	assert.Equal(t, `"55"^^<http://www.w3.org/2001/XMLSchema#decimal>`, NewDecimal(55).String())
	assert.Equal(t, `"5.5"^^<http://www.w3.org/2001/XMLSchema#decimal>`, NewDecimal(5.5).String())
	assert.Equal(t, `"P25Y"^^<http://www.w3.org/2001/XMLSchema#duration>`, NewDuration(25).String())
	assert.Equal(t, `"true"^^<http://www.w3.org/2001/XMLSchema#boolean>`, NewBoolean(true).String())
	assert.Equal(t, `"x"@en-gb`, NewLangLiteral("x", "en-GB").String())

	ts := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-03-01", NewDate(ts).Value)
	assert.Equal(t, "2020-03-01T10:00:00Z", NewDateTime(ts).Value)

	v, ok := NewInteger(7).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)
}

func TestNTriples_RoundTrip(t *testing.T) {
	g := New(
		NewTriple(ac1, name, NewLiteral("quote \" backslash \\ newline \n tab \t")),
		NewTriple(ac1, code, NewLangLiteral("Agored", "cy")),
		NewTriple(ac1, coverage, NewBlank("r1")),
		NewTriple(NewBlank("r1"), year, NewInteger(1916)),
		NewTriple(NewIRI("http://id.example.com/with space"), name, NewLiteral("café")),
	)

	text := Marshal(g)
	back, err := Unmarshal(text)
	require.NoError(t, err)
	assert.True(t, g.Equal(back), "round trip:\n%s", text)
}

func TestNTriples_Decode(t *testing.T) {
	doc := `
# comment
<http://a/s> <http://a/p> "x"^^<http://www.w3.org/2001/XMLSchema#string> .
<http://a/s> <http://a/p> "café" .
_:b1 <http://a/p> <http://a/o> . # trailing comment
`
	g, err := Unmarshal(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.True(t, g.Contains(NewTriple(NewIRI("http://a/s"), NewIRI("http://a/p"), NewLiteral("x"))))
	assert.True(t, g.Contains(NewTriple(NewIRI("http://a/s"), NewIRI("http://a/p"), NewLiteral("café"))))
	assert.True(t, g.Contains(NewTriple(NewBlank("b1"), NewIRI("http://a/p"), NewIRI("http://a/o"))))
}

func TestNTriples_DecodeErrors(t *testing.T) {
	bad := []string{
		`<http://a/s> <http://a/p> "x"`,
		`"lit" <http://a/p> <http://a/o> .`,
		`<http://a/s> _:p <http://a/o> .`,
		`<http://a/s> <http://a/p> "unterminated .`,
		`<http://a/s> <http://a/p> <http://a/o> . extra`,
		`<http://a/s <http://a/p> <http://a/o> .`,
	}
	for _, doc := range bad {
		_, err := Unmarshal(doc)
		assert.Error(t, err, doc)
	}
}

func TestSkolemize_Deterministic(t *testing.T) {
	build := func(label string) *Graph {
		g := New()
		r := NewBlank(label)
		first := NewBlank(label + "x")
		g.Assert(ac1, coverage, r)
		g.Assert(r, NewIRI(ex+"rangeStart"), first)
		g.Assert(first, year, NewInteger(1914))
		g.Assert(ac1, name, NewLiteral("Open"))
		return g
	}

	base := SkolemBase("http://id.example.com")
	a := Skolemize(build("b1"), base)
	b := Skolemize(build("zz"), base)

	assert.True(t, a.Equal(b))
	for _, tr := range a.Triples() {
		assert.False(t, tr.Subject.IsBlank())
		assert.False(t, tr.Object.IsBlank())
	}

	r, ok := a.Object(ac1, coverage)
	require.True(t, ok)
	assert.True(t, IsSkolem(r))
	assert.True(t, strings.HasPrefix(r.Value, "http://id.example.com/.well-known/genid/"))
}

func TestSkolemize_SeparatesOwners(t *testing.T) {
	g := New()
	b1, b2 := NewBlank("b1"), NewBlank("b2")
	g.Assert(ac1, coverage, b1)
	g.Assert(b1, year, NewInteger(1916))
	g.Assert(ac2, coverage, b2)
	g.Assert(b2, year, NewInteger(1916))

	s := Skolemize(g, SkolemBase("http://id.example.com/"))
	n1, _ := s.Object(ac1, coverage)
	n2, _ := s.Object(ac2, coverage)
	assert.NotEqual(t, n1, n2)
}

func TestSkolemize_ContentChangesName(t *testing.T) {
	mk := func(y int64) Term {
		g := New()
		b := NewBlank("b")
		g.Assert(ac1, coverage, b)
		g.Assert(b, year, NewInteger(y))
		n, _ := Skolemize(g, "http://x/.well-known/genid/").Object(ac1, coverage)
		return n
	}
	assert.NotEqual(t, mk(1914), mk(1918))
	assert.Equal(t, mk(1914), mk(1914))
}
