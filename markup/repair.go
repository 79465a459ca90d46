package markup

import (
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/vocabulary"
)

// Repair steps, reported in logs.
const (
	StepWrapper  = "wrapper"
	StepLegacy   = "legacy-container"
	StepCoverage = "coverage-wrapper"
)

var errNoMarkup = stderrors.New("no markup")

// Loader loads metadata islands.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a Loader that logs to logger, or to slog.Default when nil.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load extracts the island from document, which may be raw or base64
// encoded markup. It returns false when the document is empty or no repair
// yields a parseable graph; the latter is logged as a warning.
func (l *Loader) Load(document string) (*Island, bool) {
	island, step, err := l.load(document)
	switch {
	case stderrors.Is(err, errNoMarkup):
		return nil, false
	case err != nil:
		l.logger.Warn("Embedded markup unparseable, skipping structured fields", "error", err)
		return nil, false
	}
	l.logger.Debug("Embedded markup loaded", "step", step, "triples", island.Graph.Len())
	return island, true
}

func (l *Loader) load(document string) (*Island, string, error) {
	text := prepare(document)
	if text == "" {
		return nil, "", errNoMarkup
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, "", errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrMarkupUnparseable, err), "Loader", "Load", "read markup")
	}
	if doc.Root() == nil {
		return nil, "", errors.WrapInvalid(fmt.Errorf("%w: no root element", errors.ErrMarkupUnparseable), "Loader", "Load", "read markup")
	}

	step := StepWrapper
	root := findWrapper(doc.Root())
	if root == nil {
		container := findLegacyContainer(doc.Root())
		if container == nil {
			return nil, "", errors.WrapInvalid(fmt.Errorf("%w: no metadata island", errors.ErrMarkupUnparseable), "Loader", "Load", "locate island")
		}
		var err error
		if root, err = synthesize(container); err != nil {
			return nil, "", errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrMarkupUnparseable, err), "Loader", "Load", "repair legacy container")
		}
		step = StepLegacy
	}

	g, roots, err := readRDF(root)
	var syntax *SyntaxError
	if stderrors.As(err, &syntax) && wrapCoverage(root) {
		l.logger.Debug("Retrying markup with coverage wrapper", "error", err)
		g, roots, err = readRDF(root)
		step = StepCoverage
	}
	if err != nil {
		return nil, "", errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrMarkupUnparseable, err), "Loader", "Load", "read rdf/xml")
	}
	return &Island{Graph: g, Roots: roots}, step, nil
}

var entityPattern = regexp.MustCompile(`^&(?:amp|lt|gt|quot|apos|#[0-9]+|#x[0-9a-fA-F]+);`)

// prepare decodes base64 payloads and escapes ampersands that do not start
// an XML entity reference.
func prepare(document string) string {
	s := strings.TrimPrefix(strings.TrimSpace(document), "\ufeff")
	if s != "" && !strings.HasPrefix(s, "<") {
		if decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), "")); err == nil {
			if d := strings.TrimPrefix(strings.TrimSpace(string(decoded)), "\ufeff"); strings.HasPrefix(d, "<") {
				s = d
			}
		}
	}

	if !strings.Contains(s, "&") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && !entityPattern.MatchString(s[i:]) {
			sb.WriteString("&amp;")
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func walk(el *etree.Element, fn func(*etree.Element) bool) *etree.Element {
	if fn(el) {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := walk(child, fn); found != nil {
			return found
		}
	}
	return nil
}

func findWrapper(root *etree.Element) *etree.Element {
	return walk(root, func(el *etree.Element) bool {
		return el.Tag == "RDF" && namespaceOf(el) == vocabulary.RDF
	})
}

// findLegacyContainer returns the outermost element that declares, or is
// in, the legacy catalogue namespace.
func findLegacyContainer(root *etree.Element) *etree.Element {
	return walk(root, func(el *etree.Element) bool {
		for _, a := range el.Attr {
			if isNamespaceDeclaration(a) && a.Value == vocabulary.TNALegacy {
				return true
			}
		}
		return namespaceOf(el) == vocabulary.TNALegacy
	})
}

// repairer rebuilds a legacy container as an rdf:Description.
type repairer struct {
	root     *etree.Element
	prefixes map[string]string
	nodeIDs  map[string]int
}

// synthesize wraps the container's children in rdf:RDF/rdf:Description,
// repairing each child, then serializes and re-reads the result.
func synthesize(container *etree.Element) (*etree.Element, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("rdf:RDF")
	root.CreateAttr("xmlns:rdf", vocabulary.RDF)
	root.CreateAttr("xmlns:tna", vocabulary.TNA)
	desc := root.CreateElement("rdf:Description")

	rp := &repairer{
		root:     root,
		prefixes: map[string]string{vocabulary.RDF: "rdf", vocabulary.TNA: "tna"},
		nodeIDs:  make(map[string]int),
	}
	rp.children(container, desc)

	s, err := doc.WriteToString()
	if err != nil {
		return nil, err
	}
	reparsed := etree.NewDocument()
	if err := reparsed.ReadFromString(s); err != nil {
		return nil, err
	}
	return reparsed.Root(), nil
}

func (rp *repairer) children(src, dst *etree.Element) {
	elems := src.ChildElements()
	siblingNested := false
	for _, c := range elems {
		if len(c.ChildElements()) > 1 {
			siblingNested = true
		}
	}
	for _, c := range elems {
		n := len(c.ChildElements())
		rp.element(c, dst, n > 1 || (siblingNested && n > 0))
	}
}

func (rp *repairer) element(src, parent *etree.Element, nested bool) {
	el := parent.CreateElement(rp.prefixFor(namespaceOf(src)) + ":" + src.Tag)

	typeValue, hasType := "", false
	for _, a := range src.Attr {
		switch {
		case isNamespaceDeclaration(a):
		case a.Space == "" && a.Key == "type":
			typeValue, hasType = a.Value, true
		case a.Space == "xml":
			el.CreateAttr("xml:"+a.Key, a.Value)
		case a.Space != "" && isCatalogueNamespace(lookupNamespace(src, a.Space)):
			el.CreateAttr("tna:"+a.Key, a.Value)
		}
	}

	switch {
	case nested:
		el.CreateAttr("rdf:parseType", "Resource")
		if hasType {
			el.CreateAttr("rdf:nodeID", rp.nodeID(typeValue))
		}
	case hasType:
		el.CreateAttr("rdf:datatype", datatypeIRI(typeValue))
	}

	if len(src.ChildElements()) > 0 {
		rp.children(src, el)
		return
	}
	if text := charData(src); text != "" {
		el.SetText(text)
	}
}

func isCatalogueNamespace(ns string) bool {
	return ns == vocabulary.TNA || ns == vocabulary.TNALegacy
}

// prefixFor maps the legacy and unqualified namespaces to the current TNA
// namespace and declares any other namespace on the synthesized root.
func (rp *repairer) prefixFor(ns string) string {
	if ns == "" || ns == vocabulary.TNALegacy {
		ns = vocabulary.TNA
	}
	if p, ok := rp.prefixes[ns]; ok {
		return p
	}
	p := "ns" + strconv.Itoa(len(rp.prefixes)-1)
	rp.prefixes[ns] = p
	rp.root.CreateAttr("xmlns:"+p, ns)
	return p
}

// nodeID returns a document-unique identifier token for a type value.
func (rp *repairer) nodeID(value string) string {
	token := sanitize(value)
	n := rp.nodeIDs[token]
	rp.nodeIDs[token] = n + 1
	if n > 0 {
		return token + "_" + strconv.Itoa(n)
	}
	return token
}

func datatypeIRI(value string) string {
	v := strings.TrimSpace(value)
	for _, prefix := range []string{"xs:", "xsd:"} {
		if strings.HasPrefix(v, prefix) {
			return vocabulary.XSD + strings.TrimPrefix(v, prefix)
		}
	}
	return vocabulary.TNATerm(sanitize(v))
}

// sanitize turns a free-text type value into an XML name token.
func sanitize(value string) string {
	var sb strings.Builder
	underscore := false
	for _, r := range strings.TrimSpace(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			sb.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			sb.WriteRune('_')
			underscore = true
		}
	}
	token := strings.Trim(sb.String(), "_")
	if token == "" {
		return "node"
	}
	if r, _ := utf8.DecodeRuneInString(token); !unicode.IsLetter(r) {
		token = "_" + token
	}
	return token
}

// wrapCoverage wraps the single child of each TNA coverage element in a
// CoveringDates node and reports whether anything changed.
func wrapCoverage(root *etree.Element) bool {
	changed := false
	var visit func(*etree.Element)
	visit = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			visit(child)
		}
		if el.Tag != "coverage" || namespaceOf(el) != vocabulary.TNA {
			return
		}
		children := el.ChildElements()
		if len(children) != 1 || children[0].Tag == "CoveringDates" {
			return
		}

		tag := "CoveringDates"
		if el.Space != "" {
			tag = el.Space + ":" + tag
		}
		wrapper := etree.NewElement(tag)
		el.RemoveChild(children[0])
		wrapper.AddChild(children[0])
		el.AddChild(wrapper)
		changed = true
	}
	visit(root)
	return changed
}
