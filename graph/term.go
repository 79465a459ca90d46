// Package graph models the fact graph: an unordered set of
// subject-predicate-object triples, the difference between two such sets,
// and their N-Triples serialization.
package graph

import (
	"strconv"
	"strings"
	"time"
)

// XSD datatype IRIs used for typed literals.
const (
	XSD         = "http://www.w3.org/2001/XMLSchema#"
	XSDString   = XSD + "string"
	XSDInteger  = XSD + "integer"
	XSDDecimal  = XSD + "decimal"
	XSDBoolean  = XSD + "boolean"
	XSDDate     = XSD + "date"
	XSDDateTime = XSD + "dateTime"
	XSDDuration = XSD + "duration"
	XSDGYear    = XSD + "gYear"

	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
	RDFXMLLiteral = "http://www.w3.org/1999/02/22-rdf-syntax-ns#XMLLiteral"
)

// TermKind distinguishes IRIs, blank nodes and literals. The zero value
// marks an unset Term, which Match treats as a wildcard.
type TermKind uint8

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

// Term is a node or literal in a triple. It is comparable, so triples can be
// used as map keys. Plain literals carry an empty Datatype, which is
// equivalent to xsd:string.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// NewIRI returns an IRI term.
func NewIRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// NewBlank returns a blank node with the given label.
func NewBlank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// NewLiteral returns a plain string literal.
func NewLiteral(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// NewTypedLiteral returns a literal with a datatype. xsd:string is
// normalized to a plain literal so both spellings compare equal.
func NewTypedLiteral(value, datatype string) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// NewLangLiteral returns a language-tagged literal.
func NewLangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: strings.ToLower(lang)}
}

// NewInteger returns an xsd:integer literal.
func NewInteger(v int64) Term {
	return NewTypedLiteral(strconv.FormatInt(v, 10), XSDInteger)
}

// NewDecimal returns an xsd:decimal literal in shortest form.
func NewDecimal(v float64) Term {
	return NewTypedLiteral(strconv.FormatFloat(v, 'f', -1, 64), XSDDecimal)
}

// NewBoolean returns an xsd:boolean literal.
func NewBoolean(v bool) Term {
	return NewTypedLiteral(strconv.FormatBool(v), XSDBoolean)
}

// NewDate returns an xsd:date literal.
func NewDate(t time.Time) Term {
	return NewTypedLiteral(t.Format("2006-01-02"), XSDDate)
}

// NewDateTime returns an xsd:dateTime literal in UTC.
func NewDateTime(t time.Time) Term {
	return NewTypedLiteral(t.UTC().Format(time.RFC3339), XSDDateTime)
}

// NewDuration returns an xsd:duration literal of whole years.
func NewDuration(years int) Term {
	return NewTypedLiteral("P"+strconv.Itoa(years)+"Y", XSDDuration)
}

// IsZero reports whether t is unset.
func (t Term) IsZero() bool { return t.Kind == 0 }

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether t is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// Int returns the integer value of a numeric literal.
func (t Term) Int() (int64, bool) {
	if !t.IsLiteral() {
		return 0, false
	}
	v, err := strconv.ParseInt(t.Value, 10, 64)
	return v, err == nil
}

// String returns the N-Triples form of the term.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + escapeIRI(t.Value) + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + escapeLiteral(t.Value) + `"`
		switch {
		case t.Lang != "":
			return s + "@" + t.Lang
		case t.Datatype != "":
			return s + "^^<" + escapeIRI(t.Datatype) + ">"
		}
		return s
	}
	return ""
}

// Triple is a single statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple builds a triple.
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String returns the N-Triples line for the triple, without the newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

func escapeLiteral(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			b.WriteString(`\u00`)
			b.WriteString(strings.ToUpper(strconv.FormatInt(int64(r), 16)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
