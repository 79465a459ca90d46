package staging

import (
	"log/slog"
	"strings"
	"time"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/pkg/textparse"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// GraphAssert asserts facts into a proposed fragment only when the value
// is present and parseable. Unparseable values are omitted with a warning;
// the rest of the record still proceeds.
type GraphAssert struct {
	g      *graph.Graph
	parser *textparse.Parser
	logger *slog.Logger
}

// NewGraphAssert asserts into g, warning to logger.
func NewGraphAssert(g *graph.Graph, logger *slog.Logger) *GraphAssert {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphAssert{g: g, parser: textparse.New(logger), logger: logger}
}

// Graph returns the fragment being built.
func (a *GraphAssert) Graph() *graph.Graph {
	return a.g
}

// Parser returns the text parser sharing this asserter's logger.
func (a *GraphAssert) Parser() *textparse.Parser {
	return a.parser
}

// Term asserts (s, p, o) unless o is the zero term.
func (a *GraphAssert) Term(s graph.Term, p string, o graph.Term) bool {
	if o.IsZero() {
		return false
	}
	a.g.Assert(s, graph.NewIRI(p), o)
	return true
}

// Text asserts a trimmed string literal unless it is empty.
func (a *GraphAssert) Text(s graph.Term, p, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return a.Term(s, p, graph.NewLiteral(value))
}

// IRI asserts an IRI object unless it is empty.
func (a *GraphAssert) IRI(s graph.Term, p, iri string) bool {
	iri = strings.TrimSpace(iri)
	if iri == "" {
		return false
	}
	return a.Term(s, p, graph.NewIRI(iri))
}

// Integer parses text and asserts an xsd:integer.
func (a *GraphAssert) Integer(s graph.Term, p, text string) bool {
	v, ok := a.parser.ParseInteger(text)
	if !ok {
		return false
	}
	return a.Term(s, p, graph.NewInteger(v))
}

// IntegerValue asserts *v as an xsd:integer when set.
func (a *GraphAssert) IntegerValue(s graph.Term, p string, v *int64) bool {
	if v == nil {
		return false
	}
	return a.Term(s, p, graph.NewInteger(*v))
}

// Years asserts *v as an xsd:duration of whole years when set.
func (a *GraphAssert) Years(s graph.Term, p string, v *int) bool {
	if v == nil {
		return false
	}
	return a.Term(s, p, graph.NewDuration(*v))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp asserts an xsd:dateTime, or an xsd:date when text carries no
// time of day.
func (a *GraphAssert) Timestamp(s graph.Term, p, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return a.Term(s, p, graph.NewDateTime(t))
		}
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return a.Term(s, p, graph.NewDate(t))
	}
	a.logger.Warn("Unparseable text", "field", "timestamp", "text", text)
	return false
}

// Date parses text as a partial date and asserts it as a nested node.
func (a *GraphAssert) Date(s graph.Term, p, text string) bool {
	d := a.parser.ParseDate(text)
	if d.IsNone() {
		return false
	}
	a.g.Assert(s, graph.NewIRI(p), a.dateNode(d))
	return true
}

// DateRange parses text, qualified by the seal face in faceText, and
// asserts it as a nested range node.
func (a *GraphAssert) DateRange(s graph.Term, p, faceText, text string) bool {
	r := a.parser.ParseDateRange(faceText, text)
	if r.IsNone() {
		return false
	}

	node := a.g.NewBlankNode()
	a.g.Assert(node, graph.NewIRI(vocabulary.DateRangeQualifier), graph.NewIRI(vocabulary.DateRangeQualifierIRI(r.Kind.String())))
	if !r.First.IsNone() {
		a.g.Assert(node, graph.NewIRI(vocabulary.RangeStart), a.dateNode(r.First))
	}
	if !r.Second.IsNone() {
		a.g.Assert(node, graph.NewIRI(vocabulary.RangeEnd), a.dateNode(r.Second))
	}
	a.g.Assert(s, graph.NewIRI(p), node)
	return true
}

// Dimension parses text in centimetres, qualified by the seal face in
// faceText, and asserts it as a nested dimension node in millimetres.
func (a *GraphAssert) Dimension(s graph.Term, p, faceText, text string) bool {
	d := a.parser.ParseCentimetre(faceText, text)
	if d.IsNone() {
		return false
	}

	node := a.g.NewBlankNode()
	a.g.Assert(node, graph.NewIRI(vocabulary.DimensionQualifierPredicate), graph.NewIRI(vocabulary.DimensionQualifierIRI(d.Kind.String())))
	if !d.FirstPair.IsZero() {
		a.g.Assert(node, graph.NewIRI(vocabulary.DimensionHasFirstPair), a.pairNode(d.FirstPair))
	}
	if !d.SecondPair.IsZero() {
		a.g.Assert(node, graph.NewIRI(vocabulary.DimensionHasSecondPair), a.pairNode(d.SecondPair))
	}
	a.g.Assert(s, graph.NewIRI(p), node)
	return true
}

// Node asserts (s, p, node) for a fresh owned node and returns it.
func (a *GraphAssert) Node(s graph.Term, p string) graph.Term {
	node := a.g.NewBlankNode()
	a.g.Assert(s, graph.NewIRI(p), node)
	return node
}

func (a *GraphAssert) dateNode(d textparse.YearMonthDay) graph.Term {
	node := a.g.NewBlankNode()
	if d.Year != 0 {
		a.g.Assert(node, graph.NewIRI(vocabulary.Year), graph.NewInteger(int64(d.Year)))
	}
	if d.Month != 0 {
		a.g.Assert(node, graph.NewIRI(vocabulary.Month), graph.NewInteger(int64(d.Month)))
	}
	if d.Day != 0 {
		a.g.Assert(node, graph.NewIRI(vocabulary.Day), graph.NewInteger(int64(d.Day)))
	}
	if d.Kind == textparse.DateApproximate {
		a.g.Assert(node, graph.NewIRI(vocabulary.IsApproximate), graph.NewBoolean(true))
	}
	return node
}

func (a *GraphAssert) pairNode(p textparse.Pair) graph.Term {
	node := a.g.NewBlankNode()
	if p.First != 0 {
		a.g.Assert(node, graph.NewIRI(vocabulary.FirstMillimetre), graph.NewDecimal(p.First))
	}
	if p.Second != 0 {
		a.g.Assert(node, graph.NewIRI(vocabulary.SecondMillimetre), graph.NewDecimal(p.Second))
	}
	return node
}
