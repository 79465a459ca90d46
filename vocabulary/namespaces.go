// Package vocabulary defines the IRIs of the staging schema, the namespaces
// of the legacy embedded metadata, and the entity categories that scope
// business-key resolution.
package vocabulary

// Namespaces.
const (
	// Schema is the staging schema namespace.
	Schema = "http://id.example.com/schema/"

	// TNA is the current metadata namespace used inside embedded markup.
	TNA = "http://nationalarchives.gov.uk/metadata/tna#"

	// TNALegacy is the namespace of the older catalogue container that
	// predates the RDF wrapper.
	TNALegacy = "http://nationalarchives.gov.uk/dri/catalogue"

	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	XML     = "http://www.w3.org/XML/1998/namespace"
	DCTerms = "http://purl.org/dc/terms/"
)

// RDFType is rdf:type.
const RDFType = RDF + "type"

// TNATerm returns the IRI of a local name in the TNA markup namespace.
func TNATerm(local string) string {
	return TNA + local
}
