package closure

import (
	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/vocabulary/schema"
)

// BaselineProperties are typed rdf:Property before any input is copied.
var BaselineProperties = []rdf.Term{
	schema.TypeTerm,
	schema.LabelTerm,
	schema.CommentTerm,
	schema.DomainTerm,
	schema.RangeTerm,
	schema.SubClassOfTerm,
	schema.EquivalentClassTerm,
	schema.DisjointWithTerm,
	schema.ComplementOfTerm,
}

// BaselineClasses are typed rdfs:Class before any input is copied.
var BaselineClasses = []rdf.Term{
	schema.ThingTerm,
	schema.LiteralTerm,
	schema.DatatypeTerm,
	schema.NothingTerm,
	schema.OWLClassTerm,
}

// Seed writes the baseline vocabulary and returns how many statements were
// new.
func Seed(w storage.Writer) int {
	stmts := make([]rdf.Statement, 0, len(BaselineProperties)+len(BaselineClasses))
	for _, p := range BaselineProperties {
		stmts = append(stmts, rdf.Statement{Subject: p, Predicate: schema.TypeTerm, Object: schema.PropertyTerm})
	}
	for _, c := range BaselineClasses {
		stmts = append(stmts, rdf.Statement{Subject: c, Predicate: schema.TypeTerm, Object: schema.ClassTerm})
	}
	return w.Add(stmts...)
}
