// Package dristage stages legacy archival catalogue records into an RDF
// triple store.
//
// Each legacy record kind (access conditions, legislation, grounds for
// retention, subsets, assets, variations, variation files, sensitivity
// reviews and changes) is read from a JSON-lines export and turned into
// an RDF fragment about one subject. The fragment already stored for that
// subject is fetched, the two are compared, and only the difference is
// written back. Running the same export twice writes nothing the second
// time.
//
// # Layout
//
//   - graph: RDF terms, graphs, isomorphism-aware diffs and N-Triples.
//   - vocabulary: the staging ontology's IRIs and entity categories.
//   - markup: repair and parsing of the embedded RDF/XML descriptions.
//   - pkg/textparse: free-text dates, ranges, dimensions and kinship.
//   - resolver: legacy key to IRI resolution, minting and code lists.
//   - storage: the Store contract, with SPARQL and in-memory backends.
//   - staging: per-kind mapping, the ingest loop and the dependency-ordered runner.
//   - natsclient: change notifications over NATS and JetStream.
//   - config, metric, health, errors: the ambient stack.
//   - cmd/dristage: the command-line entry point.
//
// Kinds run in dependency order. Code lists are staged first and then
// enumerated in full; later kinds look up the identifiers earlier kinds
// minted. A record whose dependency is missing is skipped with a warning,
// a record that cannot be mapped fails on its own, and a store failure
// aborts the run.
package dristage
