package closure

import (
	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/vocabulary/schema"
)

// Rule is one forward-chaining pass. Apply inserts the statements the rule
// derives from the current state and returns how many were new. Every rule
// only inserts what is absent, so running it again inserts nothing.
type Rule struct {
	Name  string
	Apply func(w storage.Writer) (int, error)
}

// Rule names.
const (
	RuleEquivalentClassSubsumption = "equivalent-class-subsumption"
	RuleThingSubsumption           = "thing-subsumption"
	RuleClassMembership            = "class-membership"
	RulePropertyMembership         = "property-membership"
	RuleInverseDomainRange         = "inverse-domain-range"
	RuleSubpropertyInheritance     = "subproperty-inheritance"
	RuleDefaultDomain              = "default-domain"
	RuleDefaultRange               = "default-range"
	RuleLiteralRange               = "literal-range"
)

// DefaultRules returns the closure pipeline in execution order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleEquivalentClassSubsumption, Apply: pure(EquivalentClassSubsumption)},
		{Name: RuleThingSubsumption, Apply: pure(ThingSubsumption)},
		{Name: RuleClassMembership, Apply: pure(ClassMembership)},
		{Name: RulePropertyMembership, Apply: pure(PropertyMembership)},
		{Name: RuleInverseDomainRange, Apply: pure(InverseDomainRange)},
		{Name: RuleSubpropertyInheritance, Apply: pure(SubpropertyInheritance)},
		{Name: RuleDefaultDomain, Apply: pure(DefaultDomain)},
		{Name: RuleDefaultRange, Apply: pure(DefaultRange)},
		{Name: RuleLiteralRange, Apply: pure(LiteralRange)},
	}
}

func pure(fn func(storage.Writer) int) func(storage.Writer) (int, error) {
	return func(w storage.Writer) (int, error) { return fn(w), nil }
}

// EquivalentClassSubsumption turns A equivalentClass B into subClassOf
// edges in both directions. Only named classes take part; anonymous class
// expressions would otherwise be folded into the class they describe.
func EquivalentClassSubsumption(w storage.Writer) int {
	var out []rdf.Statement
	for _, st := range w.Match(rdf.Term{}, schema.EquivalentClassTerm, rdf.Term{}) {
		if !st.Subject.IsIRI() || !st.Object.IsIRI() || st.Subject == st.Object {
			continue
		}
		out = append(out,
			rdf.Statement{Subject: st.Subject, Predicate: schema.SubClassOfTerm, Object: st.Object},
			rdf.Statement{Subject: st.Object, Predicate: schema.SubClassOfTerm, Object: st.Subject},
		)
	}
	return w.Add(out...)
}

// ThingSubsumption makes every named class outside the reserved
// vocabularies a subclass of owl:Thing. Datatypes and ranges of datatype
// properties are not named classes.
func ThingSubsumption(w storage.Writer) int {
	candidates := newTermSet()
	candidates.add(w.Subjects(schema.TypeTerm, schema.ClassTerm)...)
	candidates.add(w.Subjects(schema.TypeTerm, schema.OWLClassTerm)...)
	for _, pred := range []rdf.Term{schema.SubClassOfTerm, schema.EquivalentClassTerm} {
		for _, st := range w.Match(rdf.Term{}, pred, rdf.Term{}) {
			candidates.add(st.Subject, st.Object)
		}
	}
	for _, st := range w.Match(rdf.Term{}, schema.DomainTerm, rdf.Term{}) {
		candidates.add(st.Object)
	}
	datatypeRanges := newTermSet()
	for _, p := range w.Subjects(schema.TypeTerm, schema.DatatypePropertyTerm) {
		datatypeRanges.add(w.Objects(p, schema.RangeTerm)...)
	}
	for _, st := range w.Match(rdf.Term{}, schema.RangeTerm, rdf.Term{}) {
		if !datatypeRanges.has(st.Object) {
			candidates.add(st.Object)
		}
	}

	var out []rdf.Statement
	for _, c := range candidates.items {
		if !c.IsIRI() || schema.IsReservedTerm(c) || datatypeRanges.has(c) {
			continue
		}
		if w.Has(rdf.Statement{Subject: c, Predicate: schema.TypeTerm, Object: schema.DatatypeTerm}) {
			continue
		}
		out = append(out, rdf.Statement{Subject: c, Predicate: schema.SubClassOfTerm, Object: schema.ThingTerm})
	}
	return w.Add(out...)
}

// ClassMembership types as rdfs:Class every domain or range value, both
// sides of subClassOf and everything with a subClassOf path to owl:Thing.
func ClassMembership(w storage.Writer) int {
	classes := newTermSet()
	for _, pred := range []rdf.Term{schema.DomainTerm, schema.RangeTerm} {
		for _, st := range w.Match(rdf.Term{}, pred, rdf.Term{}) {
			classes.add(st.Object)
		}
	}
	for _, st := range w.Match(rdf.Term{}, schema.SubClassOfTerm, rdf.Term{}) {
		classes.add(st.Subject, st.Object)
	}
	classes.add(Descendants(w, schema.ThingTerm, schema.SubClassOfTerm)...)

	return w.Add(typeAll(classes.items, schema.ClassTerm)...)
}

// PropertyMembership types as rdf:Property every datatype or object
// property and both sides of inverseOf and subPropertyOf.
func PropertyMembership(w storage.Writer) int {
	props := newTermSet()
	props.add(w.Subjects(schema.TypeTerm, schema.DatatypePropertyTerm)...)
	props.add(w.Subjects(schema.TypeTerm, schema.ObjectPropertyTerm)...)
	for _, pred := range []rdf.Term{schema.InverseOfTerm, schema.SubPropertyOfTerm} {
		for _, st := range w.Match(rdf.Term{}, pred, rdf.Term{}) {
			props.add(st.Subject, st.Object)
		}
	}
	return w.Add(typeAll(props.items, schema.PropertyTerm)...)
}

// InverseDomainRange gives a property without a domain the range of its
// inverse, and a property without a range the domain of its inverse.
// inverseOf is read in both directions.
func InverseDomainRange(w storage.Writer) int {
	var out []rdf.Statement
	derive := func(p, q rdf.Term) {
		if !hasAny(w, p, schema.DomainTerm) {
			for _, r := range w.Objects(q, schema.RangeTerm) {
				out = append(out, rdf.Statement{Subject: p, Predicate: schema.DomainTerm, Object: r})
			}
		}
		if !hasAny(w, p, schema.RangeTerm) {
			for _, d := range w.Objects(q, schema.DomainTerm) {
				out = append(out, rdf.Statement{Subject: p, Predicate: schema.RangeTerm, Object: d})
			}
		}
	}
	for _, st := range w.Match(rdf.Term{}, schema.InverseOfTerm, rdf.Term{}) {
		if !isResource(st.Object) {
			continue
		}
		derive(st.Subject, st.Object)
		derive(st.Object, st.Subject)
	}
	return w.Add(out...)
}

// SubpropertyInheritance gives a property without a domain (or range) the
// value of its nearest super-property that defines one. A super-property m
// is skipped when another super-property between the property and m
// already defines a value.
func SubpropertyInheritance(w storage.Writer) int {
	var out []rdf.Statement
	for _, pred := range []rdf.Term{schema.DomainTerm, schema.RangeTerm} {
		for _, p := range w.Subjects(schema.TypeTerm, schema.PropertyTerm) {
			if hasAny(w, p, pred) {
				continue
			}
			for _, m := range nearestDefining(w, p, pred) {
				for _, v := range w.Objects(m, pred) {
					out = append(out, rdf.Statement{Subject: p, Predicate: pred, Object: v})
				}
			}
		}
	}
	return w.Add(out...)
}

func nearestDefining(r storage.Reader, p, pred rdf.Term) []rdf.Term {
	ancestors := Ancestors(r, p, schema.SubPropertyOfTerm)
	var defining []rdf.Term
	for _, m := range ancestors {
		if m != p && hasAny(r, m, pred) {
			defining = append(defining, m)
		}
	}

	var nearest []rdf.Term
	for _, m := range defining {
		shadowed := false
		for _, m2 := range defining {
			if m2 == m {
				continue
			}
			if newTermSet(Ancestors(r, m2, schema.SubPropertyOfTerm)...).has(m) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			nearest = append(nearest, m)
		}
	}
	return nearest
}

// DefaultDomain gives every property still without a domain owl:Thing.
func DefaultDomain(w storage.Writer) int {
	var out []rdf.Statement
	for _, p := range w.Subjects(schema.TypeTerm, schema.PropertyTerm) {
		if !hasAny(w, p, schema.DomainTerm) {
			out = append(out, rdf.Statement{Subject: p, Predicate: schema.DomainTerm, Object: schema.ThingTerm})
		}
	}
	return w.Add(out...)
}

// DefaultRange gives every property still without a range rdfs:Literal
// for datatype properties and owl:Thing otherwise.
func DefaultRange(w storage.Writer) int {
	var out []rdf.Statement
	for _, p := range w.Subjects(schema.TypeTerm, schema.PropertyTerm) {
		if hasAny(w, p, schema.RangeTerm) {
			continue
		}
		rng := schema.ThingTerm
		if w.Has(rdf.Statement{Subject: p, Predicate: schema.TypeTerm, Object: schema.DatatypePropertyTerm}) {
			rng = schema.LiteralTerm
		}
		out = append(out, rdf.Statement{Subject: p, Predicate: schema.RangeTerm, Object: rng})
	}
	return w.Add(out...)
}

// LiteralRange makes each range of a datatype property a class below
// rdfs:Literal.
func LiteralRange(w storage.Writer) int {
	var out []rdf.Statement
	for _, p := range w.Subjects(schema.TypeTerm, schema.DatatypePropertyTerm) {
		for _, r := range w.Objects(p, schema.RangeTerm) {
			if !isResource(r) || r == schema.LiteralTerm || r == schema.ThingTerm {
				continue
			}
			out = append(out,
				rdf.Statement{Subject: r, Predicate: schema.TypeTerm, Object: schema.ClassTerm},
				rdf.Statement{Subject: r, Predicate: schema.SubClassOfTerm, Object: schema.LiteralTerm},
			)
		}
	}
	return w.Add(out...)
}

// Ancestors returns every term reachable from start along pred, in
// breadth-first order. start is included only if it lies on a cycle.
func Ancestors(r storage.Reader, start, pred rdf.Term) []rdf.Term {
	return walk(start, func(t rdf.Term) []rdf.Term { return r.Objects(t, pred) })
}

// Descendants returns every term with a pred path to start.
func Descendants(r storage.Reader, start, pred rdf.Term) []rdf.Term {
	return walk(start, func(t rdf.Term) []rdf.Term { return r.Subjects(pred, t) })
}

func walk(start rdf.Term, next func(rdf.Term) []rdf.Term) []rdf.Term {
	seen := newTermSet()
	queue := next(start)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen.has(t) {
			continue
		}
		seen.add(t)
		queue = append(queue, next(t)...)
	}
	return seen.items
}

func typeAll(terms []rdf.Term, class rdf.Term) []rdf.Statement {
	out := make([]rdf.Statement, 0, len(terms))
	for _, t := range terms {
		if isResource(t) {
			out = append(out, rdf.Statement{Subject: t, Predicate: schema.TypeTerm, Object: class})
		}
	}
	return out
}

func hasAny(r storage.Reader, s, p rdf.Term) bool {
	return len(r.Objects(s, p)) > 0
}

func isResource(t rdf.Term) bool {
	return t.IsIRI() || t.IsBlank()
}

// termSet is an insertion-ordered set of terms.
type termSet struct {
	index map[rdf.Term]struct{}
	items []rdf.Term
}

func newTermSet(terms ...rdf.Term) *termSet {
	s := &termSet{index: make(map[rdf.Term]struct{})}
	s.add(terms...)
	return s
}

func (s *termSet) add(terms ...rdf.Term) {
	for _, t := range terms {
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = struct{}{}
		s.items = append(s.items, t)
	}
}

func (s *termSet) has(t rdf.Term) bool {
	_, ok := s.index[t]
	return ok
}
