package schema

import "github.com/c360studio/semstreams/vocabulary"

// Descriptor type predicates.
const (
	// SchemaType identifies the descriptor kind.
	// Values: "class", "property"
	SchemaType = "schema.meta.type"

	// SchemaIRI is the IRI of the class or property the entity describes.
	SchemaIRI = "schema.meta.iri"

	// SchemaLabel is the rdfs:label of the described term.
	SchemaLabel = "schema.meta.label"

	// SchemaComment is the rdfs:comment of the described term.
	SchemaComment = "schema.meta.comment"
)

// Class predicates.
const (
	// ClassSubClassOf links a class to a direct super-class.
	ClassSubClassOf = "schema.class.subclass_of"

	// ClassEquivalentTo links a class to an equivalent class.
	ClassEquivalentTo = "schema.class.equivalent_to"

	// ClassDisjointWith links a class to a disjoint class.
	ClassDisjointWith = "schema.class.disjoint_with"

	// ClassLiteral marks literal classes. Values: "true", "false"
	ClassLiteral = "schema.class.literal"
)

// Property predicates.
const (
	// PropertyDomain links a property to its domain class.
	PropertyDomain = "schema.property.domain"

	// PropertyRange links a property to a range class.
	PropertyRange = "schema.property.range"

	// PropertySubPropertyOf links a property to a direct super-property.
	PropertySubPropertyOf = "schema.property.subproperty_of"

	// PropertyInverseOf links a property to its inverse.
	PropertyInverseOf = "schema.property.inverse_of"

	// PropertyDatatype marks datatype properties. Values: "true", "false"
	PropertyDatatype = "schema.property.datatype"
)

func init() {
	vocabulary.Register(SchemaType,
		vocabulary.WithDescription("Descriptor kind: class or property"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"type"))

	vocabulary.Register(SchemaIRI,
		vocabulary.WithDescription("IRI of the described class or property"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"iri"))

	vocabulary.Register(SchemaLabel,
		vocabulary.WithDescription("Human readable label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSLabel))

	vocabulary.Register(SchemaComment,
		vocabulary.WithDescription("Free text comment"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSComment))

	vocabulary.Register(ClassSubClassOf,
		vocabulary.WithDescription("Direct super-class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSSubClassOf))

	vocabulary.Register(ClassEquivalentTo,
		vocabulary.WithDescription("Equivalent class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OWLEquivalentClass))

	vocabulary.Register(ClassDisjointWith,
		vocabulary.WithDescription("Disjoint class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OWLDisjointWith))

	vocabulary.Register(ClassLiteral,
		vocabulary.WithDescription("Whether the class denotes literal values"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(Namespace+"literal"))

	vocabulary.Register(PropertyDomain,
		vocabulary.WithDescription("Domain class of the property"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSDomain))

	vocabulary.Register(PropertyRange,
		vocabulary.WithDescription("Range class of the property"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSRange))

	vocabulary.Register(PropertySubPropertyOf,
		vocabulary.WithDescription("Direct super-property"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFSSubPropertyOf))

	vocabulary.Register(PropertyInverseOf,
		vocabulary.WithDescription("Inverse property"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OWLInverseOf))

	vocabulary.Register(PropertyDatatype,
		vocabulary.WithDescription("Whether the property holds literal values"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(Namespace+"datatype"))
}
