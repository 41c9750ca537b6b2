package schema

import (
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
)

// Namespace is the base IRI prefix for semschema vocabulary terms.
const Namespace = "https://semschema.dev/ontology/schema/"

// EntityNamespace is the base IRI for published descriptor entities.
const EntityNamespace = "https://semschema.dev/entity/schema/"

// Standard namespaces.
const (
	RDFNamespace  = rdf.NS
	RDFSNamespace = rdfs.NS
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// RDF and RDFS IRIs, expanded from the cayley vocabularies.
var (
	RDFType     = full(rdf.Type)
	RDFProperty = full(rdf.Property)

	RDFSClass         = full(rdfs.Class)
	RDFSLabel         = full(rdfs.Label)
	RDFSComment       = full(rdfs.Comment)
	RDFSDomain        = full(rdfs.Domain)
	RDFSRange         = full(rdfs.Range)
	RDFSSubClassOf    = full(rdfs.SubClassOf)
	RDFSSubPropertyOf = full(rdfs.SubPropertyOf)
	RDFSLiteral       = full(rdfs.Literal)
	RDFSDatatype      = full(rdfs.Datatype)
)

// OWL IRIs.
const (
	OWLClass            = OWLNamespace + "Class"
	OWLThing            = OWLNamespace + "Thing"
	OWLNothing          = OWLNamespace + "Nothing"
	OWLEquivalentClass  = OWLNamespace + "equivalentClass"
	OWLDisjointWith     = OWLNamespace + "disjointWith"
	OWLComplementOf     = OWLNamespace + "complementOf"
	OWLInverseOf        = OWLNamespace + "inverseOf"
	OWLObjectProperty   = OWLNamespace + "ObjectProperty"
	OWLDatatypeProperty = OWLNamespace + "DatatypeProperty"
)

// XSD datatype IRIs the code emitter maps to Go types.
const (
	XSDString   = XSDNamespace + "string"
	XSDBoolean  = XSDNamespace + "boolean"
	XSDInteger  = XSDNamespace + "integer"
	XSDInt      = XSDNamespace + "int"
	XSDLong     = XSDNamespace + "long"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDouble   = XSDNamespace + "double"
	XSDFloat    = XSDNamespace + "float"
	XSDDate     = XSDNamespace + "date"
	XSDDateTime = XSDNamespace + "dateTime"
	XSDAnyURI   = XSDNamespace + "anyURI"
)

// ReservedNamespaces lists the vocabularies whose terms are never emitted.
var ReservedNamespaces = []string{
	RDFNamespace,
	RDFSNamespace,
	XSDNamespace,
	OWLNamespace,
}

// IsReserved reports whether iri belongs to the RDF, RDFS, XSD or OWL
// vocabulary.
func IsReserved(iri string) bool {
	for _, ns := range ReservedNamespaces {
		if strings.HasPrefix(iri, ns) {
			return true
		}
	}
	return false
}

func full(prefixed string) string {
	return string(quad.IRI(prefixed).Full())
}
