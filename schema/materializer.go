package schema

import (
	"slices"
	"strings"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	vocab "github.com/c360studio/semschema/vocabulary/schema"
)

// Materializer reads descriptors out of a closed store.
type Materializer struct {
	store storage.Reader
}

// NewMaterializer creates a Materializer over r.
func NewMaterializer(r storage.Reader) *Materializer {
	return &Materializer{store: r}
}

// Classes returns every IRI class with a subClassOf path to owl:Thing,
// sorted by IRI.
func (m *Materializer) Classes() []ClassDescriptor {
	var out []ClassDescriptor
	for _, c := range m.thingDescendants() {
		out = append(out, m.describeClass(c))
	}
	return out
}

// DistinctClasses returns Classes without any class that is linked by an
// equivalentClass edge to a lexicographically smaller class.
func (m *Materializer) DistinctClasses() []ClassDescriptor {
	var out []ClassDescriptor
	for _, c := range m.thingDescendants() {
		if m.shadowedByEquivalent(c) {
			continue
		}
		out = append(out, m.describeClass(c))
	}
	return out
}

// Class returns the descriptor of one class.
func (m *Materializer) Class(iri string) (ClassDescriptor, bool) {
	t := rdf.IRI(iri)
	if !m.store.Has(rdf.Statement{Subject: t, Predicate: vocab.TypeTerm, Object: vocab.ClassTerm}) {
		return ClassDescriptor{}, false
	}
	return m.describeClass(t), true
}

// Properties returns every resource typed rdf:Property, sorted by IRI.
func (m *Materializer) Properties() []PropertyDescriptor {
	props := m.store.Subjects(vocab.TypeTerm, vocab.PropertyTerm)
	props = slices.DeleteFunc(props, func(t rdf.Term) bool { return !t.IsIRI() })
	slices.SortFunc(props, rdf.Compare)

	out := make([]PropertyDescriptor, 0, len(props))
	for _, p := range props {
		out = append(out, m.describeProperty(p))
	}
	return out
}

// Property returns the descriptor of one property.
func (m *Materializer) Property(iri string) (PropertyDescriptor, bool) {
	t := rdf.IRI(iri)
	if !m.store.Has(rdf.Statement{Subject: t, Predicate: vocab.TypeTerm, Object: vocab.PropertyTerm}) {
		return PropertyDescriptor{}, false
	}
	return m.describeProperty(t), true
}

// Ancestors returns the IRIs of every class above iri along subClassOf,
// excluding iri itself, sorted.
func (m *Materializer) Ancestors(iri string) []string {
	start := rdf.IRI(iri)
	var out []string
	for _, t := range m.walk(start, func(t rdf.Term) []rdf.Term {
		return m.store.Objects(t, vocab.SubClassOfTerm)
	}) {
		if t.IsIRI() && t != start {
			out = append(out, t.Value)
		}
	}
	slices.Sort(out)
	return out
}

func (m *Materializer) thingDescendants() []rdf.Term {
	found := m.walk(vocab.ThingTerm, func(t rdf.Term) []rdf.Term {
		return m.store.Subjects(vocab.SubClassOfTerm, t)
	})
	found = slices.DeleteFunc(found, func(t rdf.Term) bool { return !t.IsIRI() })
	slices.SortFunc(found, rdf.Compare)
	return found
}

func (m *Materializer) shadowedByEquivalent(c rdf.Term) bool {
	var linked []rdf.Term
	linked = append(linked, m.store.Subjects(vocab.EquivalentClassTerm, c)...)
	linked = append(linked, m.store.Objects(c, vocab.EquivalentClassTerm)...)
	for _, e := range linked {
		if e != c && e.IsIRI() && e.Value < c.Value {
			return true
		}
	}
	return false
}

func (m *Materializer) isLiteral(c rdf.Term) bool {
	if c == vocab.LiteralTerm {
		return true
	}
	if c.IsIRI() && strings.HasPrefix(c.Value, vocab.XSDNamespace) {
		return true
	}
	if m.store.Has(rdf.Statement{Subject: c, Predicate: vocab.TypeTerm, Object: vocab.DatatypeTerm}) {
		return true
	}
	for _, a := range m.walk(c, func(t rdf.Term) []rdf.Term {
		return m.store.Objects(t, vocab.SubClassOfTerm)
	}) {
		if a == vocab.LiteralTerm {
			return true
		}
	}
	return false
}

func (m *Materializer) describeClass(c rdf.Term) ClassDescriptor {
	return ClassDescriptor{
		IRI:               c.Value,
		Label:             m.literal(c, vocab.LabelTerm),
		Comment:           m.literal(c, vocab.CommentTerm),
		SuperClasses:      m.iris(m.store.Objects(c, vocab.SubClassOfTerm), c),
		SubClasses:        m.iris(m.store.Subjects(vocab.SubClassOfTerm, c), c),
		EquivalentClasses: m.iris(append(m.store.Objects(c, vocab.EquivalentClassTerm), m.store.Subjects(vocab.EquivalentClassTerm, c)...), c),
		DisjointWith:      m.iris(append(m.store.Objects(c, vocab.DisjointWithTerm), m.store.Subjects(vocab.DisjointWithTerm, c)...), c),
		Literal:           m.isLiteral(c),
	}
}

func (m *Materializer) describeProperty(p rdf.Term) PropertyDescriptor {
	return PropertyDescriptor{
		IRI:             p.Value,
		Label:           m.literal(p, vocab.LabelTerm),
		Comment:         m.literal(p, vocab.CommentTerm),
		Domains:         m.iris(m.store.Objects(p, vocab.DomainTerm), rdf.Term{}),
		Ranges:          m.iris(m.store.Objects(p, vocab.RangeTerm), rdf.Term{}),
		SuperProperties: m.iris(m.store.Objects(p, vocab.SubPropertyOfTerm), p),
		InverseOf:       m.iris(append(m.store.Objects(p, vocab.InverseOfTerm), m.store.Subjects(vocab.InverseOfTerm, p)...), p),
		Datatype:        m.store.Has(rdf.Statement{Subject: p, Predicate: vocab.TypeTerm, Object: vocab.DatatypePropertyTerm}),
	}
}

// literal returns the preferred literal value: untagged first, then
// English, then any.
func (m *Materializer) literal(s, p rdf.Term) string {
	var best rdf.Term
	rank := func(t rdf.Term) int {
		switch t.Lang {
		case "":
			return 0
		case "en":
			return 1
		default:
			return 2
		}
	}
	for _, o := range m.store.Objects(s, p) {
		if !o.IsLiteral() {
			continue
		}
		if best.IsZero() || rank(o) < rank(best) {
			best = o
		}
	}
	return best.Value
}

// iris returns the distinct IRI values of terms other than self, sorted.
func (m *Materializer) iris(terms []rdf.Term, self rdf.Term) []string {
	var out []string
	for _, t := range terms {
		if t.IsIRI() && t != self {
			out = append(out, t.Value)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (m *Materializer) walk(start rdf.Term, next func(rdf.Term) []rdf.Term) []rdf.Term {
	seen := make(map[rdf.Term]struct{})
	var out []rdf.Term
	queue := next(start)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		queue = append(queue, next(t)...)
	}
	return out
}
