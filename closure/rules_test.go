package closure

import (
	"testing"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/vocabulary/schema"
	"github.com/stretchr/testify/assert"
)

const ex = "http://example.org/"

func iri(local string) rdf.Term { return rdf.IRI(ex + local) }

func st(s rdf.Term, p rdf.Term, o rdf.Term) rdf.Statement {
	return rdf.Statement{Subject: s, Predicate: p, Object: o}
}

func storeWith(stmts ...rdf.Statement) *storage.Store {
	s := storage.NewStore()
	Seed(s)
	s.Add(stmts...)
	return s
}

func TestRulesAreIdempotent(t *testing.T) {
	input := []rdf.Statement{
		st(iri("A"), schema.EquivalentClassTerm, iri("B")),
		st(iri("C"), schema.SubClassOfTerm, iri("A")),
		st(iri("p"), schema.TypeTerm, schema.ObjectPropertyTerm),
		st(iri("p"), schema.DomainTerm, iri("C")),
		st(iri("q"), schema.InverseOfTerm, iri("p")),
		st(iri("r"), schema.SubPropertyOfTerm, iri("p")),
		st(iri("age"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("age"), schema.RangeTerm, iri("Years")),
	}

	for _, rule := range DefaultRules() {
		t.Run(rule.Name, func(t *testing.T) {
			s := storeWith(input...)
			_, err := rule.Apply(s)
			assert.NoError(t, err)
			before := s.Len()

			n, err := rule.Apply(s)
			assert.NoError(t, err)
			assert.Zero(t, n)
			assert.Equal(t, before, s.Len())
		})
	}
}

func TestEquivalentClassSubsumption(t *testing.T) {
	s := storeWith(st(iri("A"), schema.EquivalentClassTerm, iri("B")))
	assert.Equal(t, 2, EquivalentClassSubsumption(s))
	assert.True(t, s.Has(st(iri("A"), schema.SubClassOfTerm, iri("B"))))
	assert.True(t, s.Has(st(iri("B"), schema.SubClassOfTerm, iri("A"))))
}

func TestEquivalentClassSubsumptionSkipsAnonymousClasses(t *testing.T) {
	s := storeWith(
		st(iri("A"), schema.EquivalentClassTerm, rdf.Blank("restriction")),
		st(rdf.Blank("union"), schema.EquivalentClassTerm, iri("B")),
	)
	assert.Zero(t, EquivalentClassSubsumption(s))
	assert.Empty(t, s.Match(rdf.Term{}, schema.SubClassOfTerm, rdf.Blank("restriction")))
	assert.Empty(t, s.Match(rdf.Blank("union"), schema.SubClassOfTerm, rdf.Term{}))
}

func TestThingSubsumption(t *testing.T) {
	s := storeWith(
		st(iri("A"), schema.TypeTerm, schema.OWLClassTerm),
		st(iri("B"), schema.SubClassOfTerm, iri("A")),
		st(iri("age"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("age"), schema.RangeTerm, iri("Years")),
		st(iri("Date"), schema.TypeTerm, schema.DatatypeTerm),
		st(rdf.Blank("r"), schema.SubClassOfTerm, iri("A")),
	)
	ThingSubsumption(s)

	for _, c := range []string{"A", "B"} {
		assert.True(t, s.Has(st(iri(c), schema.SubClassOfTerm, schema.ThingTerm)), c)
	}
	assert.False(t, s.Has(st(iri("Years"), schema.SubClassOfTerm, schema.ThingTerm)), "datatype range")
	assert.False(t, s.Has(st(iri("Date"), schema.SubClassOfTerm, schema.ThingTerm)), "datatype")
	assert.False(t, s.Has(st(rdf.Blank("r"), schema.SubClassOfTerm, schema.ThingTerm)), "blank node")
	assert.False(t, s.Has(st(schema.ThingTerm, schema.SubClassOfTerm, schema.ThingTerm)), "reserved")
}

func TestClassMembership(t *testing.T) {
	s := storeWith(
		st(iri("p"), schema.DomainTerm, iri("D")),
		st(iri("p"), schema.RangeTerm, iri("R")),
		st(iri("A"), schema.SubClassOfTerm, iri("B")),
		st(iri("B"), schema.SubClassOfTerm, schema.ThingTerm),
	)
	ClassMembership(s)

	for _, c := range []string{"D", "R", "A", "B"} {
		assert.True(t, s.Has(st(iri(c), schema.TypeTerm, schema.ClassTerm)), c)
	}
}

func TestPropertyMembership(t *testing.T) {
	s := storeWith(
		st(iri("d"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("o"), schema.TypeTerm, schema.ObjectPropertyTerm),
		st(iri("i1"), schema.InverseOfTerm, iri("i2")),
		st(iri("s1"), schema.SubPropertyOfTerm, iri("s2")),
	)
	assert.Equal(t, 6, PropertyMembership(s))
	for _, p := range []string{"d", "o", "i1", "i2", "s1", "s2"} {
		assert.True(t, s.Has(st(iri(p), schema.TypeTerm, schema.PropertyTerm)), p)
	}
}

func TestInverseDomainRange(t *testing.T) {
	s := storeWith(
		st(iri("hasChild"), schema.DomainTerm, iri("Parent")),
		st(iri("hasChild"), schema.RangeTerm, iri("Child")),
		st(iri("hasParent"), schema.InverseOfTerm, iri("hasChild")),
	)
	assert.Equal(t, 2, InverseDomainRange(s))
	assert.Equal(t, []rdf.Term{iri("Child")}, s.Objects(iri("hasParent"), schema.DomainTerm))
	assert.Equal(t, []rdf.Term{iri("Parent")}, s.Objects(iri("hasParent"), schema.RangeTerm))
}

func TestInverseDomainRangeKeepsExisting(t *testing.T) {
	s := storeWith(
		st(iri("hasChild"), schema.RangeTerm, iri("Child")),
		st(iri("hasParent"), schema.DomainTerm, iri("Person")),
		st(iri("hasParent"), schema.InverseOfTerm, iri("hasChild")),
	)
	InverseDomainRange(s)
	assert.Equal(t, []rdf.Term{iri("Person")}, s.Objects(iri("hasParent"), schema.DomainTerm))
}

func TestSubpropertyInheritanceNearestWins(t *testing.T) {
	s := storeWith(
		st(iri("p"), schema.SubPropertyOfTerm, iri("m2")),
		st(iri("m2"), schema.SubPropertyOfTerm, iri("m")),
		st(iri("m2"), schema.DomainTerm, iri("Near")),
		st(iri("m"), schema.DomainTerm, iri("Far")),
		st(iri("m"), schema.RangeTerm, iri("FarRange")),
	)
	PropertyMembership(s)
	SubpropertyInheritance(s)

	assert.Equal(t, []rdf.Term{iri("Near")}, s.Objects(iri("p"), schema.DomainTerm))
	assert.Equal(t, []rdf.Term{iri("FarRange")}, s.Objects(iri("p"), schema.RangeTerm),
		"range comes from the only ancestor defining one")
	assert.Equal(t, []rdf.Term{iri("FarRange")}, s.Objects(iri("m2"), schema.RangeTerm))
}

func TestInverseDomainRangeKeepsEveryDerivedValue(t *testing.T) {
	s := storeWith(
		st(iri("owns"), schema.RangeTerm, iri("Car")),
		st(iri("owns"), schema.RangeTerm, iri("Boat")),
		st(iri("ownedBy"), schema.InverseOfTerm, iri("owns")),
	)
	PropertyMembership(s)
	InverseDomainRange(s)
	DefaultDomain(s)

	assert.ElementsMatch(t, []rdf.Term{iri("Car"), iri("Boat")}, s.Objects(iri("ownedBy"), schema.DomainTerm),
		"both ranges of the inverse become domains and no default is added")
}

func TestSubpropertyInheritanceDiamond(t *testing.T) {
	s := storeWith(
		st(iri("p"), schema.SubPropertyOfTerm, iri("left")),
		st(iri("p"), schema.SubPropertyOfTerm, iri("right")),
		st(iri("left"), schema.SubPropertyOfTerm, iri("top")),
		st(iri("right"), schema.SubPropertyOfTerm, iri("top")),
		st(iri("left"), schema.DomainTerm, iri("L")),
		st(iri("right"), schema.DomainTerm, iri("R")),
		st(iri("top"), schema.DomainTerm, iri("T")),
	)
	PropertyMembership(s)
	SubpropertyInheritance(s)
	DefaultDomain(s)

	assert.ElementsMatch(t, []rdf.Term{iri("L"), iri("R")}, s.Objects(iri("p"), schema.DomainTerm),
		"equally near super-properties each contribute, the shadowed one does not")
}

func TestDefaultDomainAndRange(t *testing.T) {
	s := storeWith(
		st(iri("o"), schema.TypeTerm, schema.PropertyTerm),
		st(iri("d"), schema.TypeTerm, schema.PropertyTerm),
		st(iri("d"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("k"), schema.TypeTerm, schema.PropertyTerm),
		st(iri("k"), schema.DomainTerm, iri("K")),
	)
	DefaultDomain(s)
	DefaultRange(s)

	assert.Equal(t, []rdf.Term{schema.ThingTerm}, s.Objects(iri("o"), schema.DomainTerm))
	assert.Equal(t, []rdf.Term{iri("K")}, s.Objects(iri("k"), schema.DomainTerm))
	assert.Equal(t, []rdf.Term{schema.ThingTerm}, s.Objects(iri("o"), schema.RangeTerm))
	assert.Equal(t, []rdf.Term{schema.LiteralTerm}, s.Objects(iri("d"), schema.RangeTerm))
}

func TestLiteralRange(t *testing.T) {
	s := storeWith(
		st(iri("age"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("age"), schema.RangeTerm, iri("Years")),
		st(iri("name"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("name"), schema.RangeTerm, schema.LiteralTerm),
	)
	assert.Equal(t, 2, LiteralRange(s))
	assert.True(t, s.Has(st(iri("Years"), schema.SubClassOfTerm, schema.LiteralTerm)))
	assert.True(t, s.Has(st(iri("Years"), schema.TypeTerm, schema.ClassTerm)))
	assert.False(t, s.Has(st(schema.LiteralTerm, schema.SubClassOfTerm, schema.LiteralTerm)))
}

func TestAncestorsAndDescendants(t *testing.T) {
	s := storeWith(
		st(iri("A"), schema.SubClassOfTerm, iri("B")),
		st(iri("B"), schema.SubClassOfTerm, iri("C")),
	)
	assert.Equal(t, []rdf.Term{iri("B"), iri("C")}, Ancestors(s, iri("A"), schema.SubClassOfTerm))
	assert.ElementsMatch(t, []rdf.Term{iri("A"), iri("B")}, Descendants(s, iri("C"), schema.SubClassOfTerm))
}
