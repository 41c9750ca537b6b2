package schema

import "github.com/c360studio/semschema/rdf"

// Vocabulary terms in statement form.
var (
	TypeTerm          = rdf.IRI(RDFType)
	PropertyTerm      = rdf.IRI(RDFProperty)
	ClassTerm         = rdf.IRI(RDFSClass)
	LabelTerm         = rdf.IRI(RDFSLabel)
	CommentTerm       = rdf.IRI(RDFSComment)
	DomainTerm        = rdf.IRI(RDFSDomain)
	RangeTerm         = rdf.IRI(RDFSRange)
	SubClassOfTerm    = rdf.IRI(RDFSSubClassOf)
	SubPropertyOfTerm = rdf.IRI(RDFSSubPropertyOf)
	LiteralTerm       = rdf.IRI(RDFSLiteral)
	DatatypeTerm      = rdf.IRI(RDFSDatatype)

	OWLClassTerm         = rdf.IRI(OWLClass)
	ThingTerm            = rdf.IRI(OWLThing)
	NothingTerm          = rdf.IRI(OWLNothing)
	EquivalentClassTerm  = rdf.IRI(OWLEquivalentClass)
	DisjointWithTerm     = rdf.IRI(OWLDisjointWith)
	ComplementOfTerm     = rdf.IRI(OWLComplementOf)
	InverseOfTerm        = rdf.IRI(OWLInverseOf)
	ObjectPropertyTerm   = rdf.IRI(OWLObjectProperty)
	DatatypePropertyTerm = rdf.IRI(OWLDatatypeProperty)
)

// IsReservedTerm reports whether t is an IRI in a reserved vocabulary.
func IsReservedTerm(t rdf.Term) bool {
	return t.IsIRI() && IsReserved(t.Value)
}
