package rdf

// Statement is a single subject/predicate/object triple.
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewStatement is shorthand for a statement between IRIs.
func NewStatement(s, p, o string) Statement {
	return Statement{Subject: IRI(s), Predicate: IRI(p), Object: IRI(o)}
}

// String renders the statement as an N-Triples line without the newline.
func (s Statement) String() string {
	return s.Subject.String() + " " + s.Predicate.String() + " " + s.Object.String() + " ."
}

// Mentions reports whether t appears as subject or object.
func (s Statement) Mentions(t Term) bool {
	return s.Subject == t || s.Object == t
}

// CompareStatements orders statements by subject, predicate, then object.
func CompareStatements(a, b Statement) int {
	if c := Compare(a.Subject, b.Subject); c != 0 {
		return c
	}
	if c := Compare(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	return Compare(a.Object, b.Object)
}
