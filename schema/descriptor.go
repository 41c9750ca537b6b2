// Package schema materializes class and property descriptors from a closed
// schema store. Descriptors are computed per query and never cached.
package schema

// ClassDescriptor describes one class of the closed schema.
type ClassDescriptor struct {
	IRI     string
	Label   string
	Comment string

	SuperClasses      []string
	SubClasses        []string
	EquivalentClasses []string
	DisjointWith      []string

	// Literal marks classes whose instances are literal values.
	Literal bool
}

// LocalName returns the IRI fragment or last path segment.
func (c ClassDescriptor) LocalName() string {
	return LocalName(c.IRI)
}

// PropertyDescriptor describes one property of the closed schema.
type PropertyDescriptor struct {
	IRI     string
	Label   string
	Comment string

	Domains         []string
	Ranges          []string
	SuperProperties []string
	InverseOf       []string

	// Datatype marks owl:DatatypeProperty.
	Datatype bool
}

// Domain returns the first domain, or "" if there is none.
func (p PropertyDescriptor) Domain() string {
	if len(p.Domains) == 0 {
		return ""
	}
	return p.Domains[0]
}

// LocalName returns the IRI fragment or last path segment.
func (p PropertyDescriptor) LocalName() string {
	return LocalName(p.IRI)
}

// LocalName returns the part of an IRI after the last '#', '/' or ':'.
func LocalName(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		switch iri[i] {
		case '#', '/', ':':
			return iri[i+1:]
		}
	}
	return iri
}
