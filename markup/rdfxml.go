package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// SyntaxError reports RDF/XML whose structure cannot be read as a graph.
type SyntaxError struct {
	Element string
	Msg     string
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rdf/xml syntax error at <%s>: %s", e.Element, e.Msg)
}

func syntaxError(el *etree.Element, format string, args ...any) error {
	return &SyntaxError{Element: el.FullTag(), Msg: fmt.Sprintf(format, args...)}
}

// rdfReader reads the RDF/XML subset found in catalogue markup into a graph.
type rdfReader struct {
	g      *graph.Graph
	blanks map[string]graph.Term
	fresh  int
	roots  []graph.Term
}

// readRDF reads root, which is either an rdf:RDF element or a single node
// element, and returns the graph and the subjects of its top-level nodes.
func readRDF(root *etree.Element) (*graph.Graph, []graph.Term, error) {
	r := &rdfReader{g: graph.New(), blanks: make(map[string]graph.Term)}

	lang := langOf(root, "")
	nodes := []*etree.Element{root}
	if namespaceOf(root) == vocabulary.RDF && root.Tag == "RDF" {
		if err := noText(root); err != nil {
			return nil, nil, err
		}
		nodes = root.ChildElements()
	}

	for _, el := range nodes {
		subject, err := r.nodeElement(el, lang)
		if err != nil {
			return nil, nil, err
		}
		r.roots = append(r.roots, subject)
	}
	return r.g, r.roots, nil
}

func (r *rdfReader) blank(label string) graph.Term {
	if label == "" {
		r.fresh++
		return graph.NewBlank("b" + strconv.Itoa(r.fresh))
	}
	if b, ok := r.blanks[label]; ok {
		return b
	}
	b := graph.NewBlank("n" + label)
	r.blanks[label] = b
	return b
}

func (r *rdfReader) subjectOf(el *etree.Element) graph.Term {
	if about, ok := rdfAttr(el, "about"); ok {
		return graph.NewIRI(about)
	}
	if id, ok := rdfAttr(el, "ID"); ok {
		return graph.NewIRI("#" + id)
	}
	nodeID, _ := rdfAttr(el, "nodeID")
	return r.blank(nodeID)
}

func (r *rdfReader) nodeElement(el *etree.Element, lang string) (graph.Term, error) {
	ns := namespaceOf(el)
	if ns == "" {
		return graph.Term{}, syntaxError(el, "node element without namespace")
	}
	if err := noText(el); err != nil {
		return graph.Term{}, err
	}

	lang = langOf(el, lang)
	subject := r.subjectOf(el)
	if ns != vocabulary.RDF || el.Tag != "Description" {
		r.g.Assert(subject, graph.NewIRI(vocabulary.RDFType), graph.NewIRI(ns+el.Tag))
	}
	r.propertyAttributes(el, subject, lang)

	li := 0
	for _, child := range el.ChildElements() {
		if err := r.propertyElement(subject, child, lang, &li); err != nil {
			return graph.Term{}, err
		}
	}
	return subject, nil
}

func (r *rdfReader) propertyElement(subject graph.Term, el *etree.Element, lang string, li *int) error {
	ns := namespaceOf(el)
	if ns == "" {
		return syntaxError(el, "property element without namespace")
	}
	predicate := ns + el.Tag
	if ns == vocabulary.RDF && el.Tag == "li" {
		*li++
		predicate = vocabulary.RDF + "_" + strconv.Itoa(*li)
	}
	pred := graph.NewIRI(predicate)
	lang = langOf(el, lang)
	children := el.ChildElements()

	if parseType, ok := rdfAttr(el, "parseType"); ok {
		switch parseType {
		case "Resource":
			if err := noText(el); err != nil {
				return err
			}
			nodeID, _ := rdfAttr(el, "nodeID")
			object := r.blank(nodeID)
			r.g.Assert(subject, pred, object)
			inner := 0
			for _, child := range children {
				if err := r.propertyElement(object, child, lang, &inner); err != nil {
					return err
				}
			}
			return nil
		case "Literal":
			r.g.Assert(subject, pred, graph.NewTypedLiteral(innerXML(el), graph.RDFXMLLiteral))
			return nil
		default:
			return syntaxError(el, "unsupported parseType %q", parseType)
		}
	}

	if resource, ok := rdfAttr(el, "resource"); ok {
		if len(children) > 0 {
			return syntaxError(el, "rdf:resource on a property with content")
		}
		object := graph.NewIRI(resource)
		r.g.Assert(subject, pred, object)
		r.propertyAttributes(el, object, lang)
		return nil
	}

	switch {
	case len(children) > 1:
		return syntaxError(el, "several node elements inside one property")
	case len(children) == 1:
		if err := noText(el); err != nil {
			return err
		}
		object, err := r.nodeElement(children[0], lang)
		if err != nil {
			return err
		}
		r.g.Assert(subject, pred, object)
		return nil
	}

	if nodeID, ok := rdfAttr(el, "nodeID"); ok || hasPropertyAttributes(el) {
		object := r.blank(nodeID)
		r.g.Assert(subject, pred, object)
		r.propertyAttributes(el, object, lang)
		return nil
	}

	text := charData(el)
	var object graph.Term
	switch datatype, ok := rdfAttr(el, "datatype"); {
	case ok:
		object = graph.NewTypedLiteral(text, datatype)
	case lang != "":
		object = graph.NewLangLiteral(text, lang)
	default:
		object = graph.NewLiteral(text)
	}
	r.g.Assert(subject, pred, object)
	return nil
}

// syntaxAttributes are the rdf: attributes that are not property attributes.
var syntaxAttributes = map[string]bool{
	"about": true, "ID": true, "nodeID": true, "resource": true,
	"datatype": true, "parseType": true,
}

func (r *rdfReader) propertyAttributes(el *etree.Element, subject graph.Term, lang string) {
	for _, a := range el.Attr {
		ns, ok := propertyAttributeNamespace(el, a)
		if !ok {
			continue
		}
		if ns == vocabulary.RDF && a.Key == "type" {
			r.g.Assert(subject, graph.NewIRI(vocabulary.RDFType), graph.NewIRI(a.Value))
			continue
		}
		object := graph.NewLiteral(a.Value)
		if lang != "" {
			object = graph.NewLangLiteral(a.Value, lang)
		}
		r.g.Assert(subject, graph.NewIRI(ns+a.Key), object)
	}
}

func hasPropertyAttributes(el *etree.Element) bool {
	for _, a := range el.Attr {
		if _, ok := propertyAttributeNamespace(el, a); ok {
			return true
		}
	}
	return false
}

func propertyAttributeNamespace(el *etree.Element, a etree.Attr) (string, bool) {
	if isNamespaceDeclaration(a) || a.Space == "" || a.Space == "xml" {
		return "", false
	}
	ns := lookupNamespace(el, a.Space)
	if ns == "" || (ns == vocabulary.RDF && syntaxAttributes[a.Key]) {
		return "", false
	}
	return ns, true
}

func isNamespaceDeclaration(a etree.Attr) bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns")
}

// namespaceOf resolves an element's prefix against the declarations in
// scope.
func namespaceOf(el *etree.Element) string {
	return lookupNamespace(el, el.Space)
}

func lookupNamespace(el *etree.Element, prefix string) string {
	if prefix == "xml" {
		return vocabulary.XML
	}
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

func rdfAttr(el *etree.Element, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == key && a.Space != "" && lookupNamespace(el, a.Space) == vocabulary.RDF {
			return a.Value, true
		}
	}
	return "", false
}

func langOf(el *etree.Element, inherited string) string {
	for _, a := range el.Attr {
		if a.Space == "xml" && a.Key == "lang" {
			return a.Value
		}
	}
	return inherited
}

func noText(el *etree.Element) error {
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			return syntaxError(el, "unexpected text %q", strings.TrimSpace(cd.Data))
		}
	}
	return nil
}

func charData(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

func innerXML(el *etree.Element) string {
	var buf bytes.Buffer
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			_ = xml.EscapeText(&buf, []byte(t.Data))
		case *etree.Element:
			cp := t.Copy()
			declareNamespaces(cp, el)
			doc := etree.NewDocument()
			doc.SetRoot(cp)
			s, err := doc.WriteToString()
			if err == nil {
				buf.WriteString(s)
			}
		}
	}
	return buf.String()
}

// declareNamespaces adds to el the declarations it and its descendants use
// but inherit from scope, so the serialised literal keeps its bindings.
func declareNamespaces(el, scope *etree.Element) {
	used := make(map[string]bool)
	walk(el, func(e *etree.Element) bool {
		used[e.Space] = true
		for _, a := range e.Attr {
			if a.Space != "" && !isNamespaceDeclaration(a) {
				used[a.Space] = true
			}
		}
		return false
	})
	delete(used, "xml")

	prefixes := make([]string, 0, len(used))
	for prefix := range used {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		key := "xmlns"
		if prefix != "" {
			key += ":" + prefix
		}
		if el.SelectAttr(key) != nil {
			continue
		}
		if uri := lookupNamespace(scope, prefix); uri != "" {
			el.CreateAttr(key, uri)
		}
	}
}
