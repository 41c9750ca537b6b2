// Package schema provides the vocabulary the closure engine reasons over.
//
// The IRI constants cover the subset of RDF, RDFS, OWL and XSD that the
// closure rules, the materializer and the code emitter read or write. The
// dotted predicates are registered with the semstreams vocabulary registry
// and are used when schema descriptors are published to the knowledge graph.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/semschema/vocabulary/schema"
package schema
