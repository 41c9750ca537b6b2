package closure

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/validate"
	"github.com/c360studio/semschema/vocabulary/schema"
	errors "github.com/c360studio/semstreams/pkg/errs"
	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawGraph(stmts ...rdf.Statement) *rdf.Graph {
	g := rdf.NewGraph()
	g.Add(stmts...)
	return g
}

func build(t *testing.T, opts []Option, stmts ...rdf.Statement) (*storage.Store, *Result) {
	t.Helper()
	s := storage.NewStore()
	res, err := NewBuilder(s, opts...).Build(context.Background(), rawGraph(stmts...))
	require.NoError(t, err)
	return s, res
}

func TestBuildScenarioDefaultRangeAndEquivalence(t *testing.T) {
	s, res := build(t, nil,
		st(iri("C1"), schema.SubClassOfTerm, iri("C2")),
		st(iri("C2"), schema.EquivalentClassTerm, iri("C3")),
		st(iri("p"), schema.TypeTerm, schema.ObjectPropertyTerm),
		st(iri("p"), schema.DomainTerm, iri("C1")),
	)

	assert.Equal(t, []rdf.Term{iri("C1")}, s.Objects(iri("p"), schema.DomainTerm))
	assert.Equal(t, []rdf.Term{schema.ThingTerm}, s.Objects(iri("p"), schema.RangeTerm))

	assert.Equal(t, 1, res.Normalized.Components)
	assert.Empty(t, s.Match(iri("C3"), rdf.Term{}, rdf.Term{}), "C3 merged into C2")
	assert.True(t, s.Has(st(iri("C1"), schema.SubClassOfTerm, iri("C2"))))
	assert.True(t, s.Has(st(iri("C2"), schema.SubClassOfTerm, schema.ThingTerm)))
}

func TestBuildScenarioSubpropertyInheritance(t *testing.T) {
	s, _ := build(t, nil,
		st(iri("p2"), schema.SubPropertyOfTerm, iri("p1")),
		st(iri("p1"), schema.DomainTerm, schema.ThingTerm),
		st(iri("p1"), schema.RangeTerm, schema.LiteralTerm),
	)

	assert.Equal(t, []rdf.Term{schema.ThingTerm}, s.Objects(iri("p2"), schema.DomainTerm))
	assert.Equal(t, []rdf.Term{schema.LiteralTerm}, s.Objects(iri("p2"), schema.RangeTerm))
}

func TestBuildClosureCompleteness(t *testing.T) {
	s, _ := build(t, nil,
		st(iri("A"), schema.TypeTerm, schema.OWLClassTerm),
		st(iri("B"), schema.SubClassOfTerm, iri("A")),
		st(iri("p"), schema.TypeTerm, schema.ObjectPropertyTerm),
		st(iri("name"), schema.TypeTerm, schema.DatatypePropertyTerm),
		st(iri("name"), schema.DomainTerm, iri("A")),
	)

	for _, p := range s.Subjects(schema.TypeTerm, schema.PropertyTerm) {
		assert.Len(t, s.Objects(p, schema.DomainTerm), 1, p.Value)
		assert.NotEmpty(t, s.Objects(p, schema.RangeTerm), p.Value)
	}
	for _, c := range Descendants(s, schema.ThingTerm, schema.SubClassOfTerm) {
		assert.True(t, s.Has(st(c, schema.TypeTerm, schema.ClassTerm)), c.Value)
	}
}

func TestBuildSeedsBaseline(t *testing.T) {
	s, res := build(t, nil)
	assert.Equal(t, len(BaselineProperties)+len(BaselineClasses), res.Seeded)
	for _, p := range BaselineProperties {
		assert.True(t, s.Has(st(p, schema.TypeTerm, schema.PropertyTerm)), p.Value)
	}
	for _, c := range BaselineClasses {
		assert.True(t, s.Has(st(c, schema.TypeTerm, schema.ClassTerm)), c.Value)
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	s := storage.NewStore()
	b := NewBuilder(s)
	raw := rawGraph(
		st(iri("A"), schema.EquivalentClassTerm, iri("B")),
		st(iri("p"), schema.TypeTerm, schema.ObjectPropertyTerm),
	)
	_, err := b.Build(context.Background(), raw)
	require.NoError(t, err)
	n := s.Len()

	res, err := b.Build(context.Background(), rawGraph())
	require.NoError(t, err)
	assert.Equal(t, n, s.Len())
	for _, rc := range res.Inferred {
		assert.Zero(t, rc.Inserted, rc.Rule)
	}
}

func TestBuildConsistencyError(t *testing.T) {
	reasoner, err := validate.NewDatalogReasoner(nil)
	require.NoError(t, err)

	s := storage.NewStore()
	_, err = NewBuilder(s, WithReasoner(reasoner)).Build(context.Background(), rawGraph(
		st(iri("Dog"), schema.DisjointWithTerm, iri("Cat")),
		st(iri("x"), schema.TypeTerm, iri("Dog")),
		st(iri("x"), schema.TypeTerm, iri("Cat")),
	))

	var ce *ConsistencyError
	require.True(t, stderrors.As(err, &ce))
	assert.False(t, ce.Report.Valid)
	assert.True(t, errors.IsInvalid(err))
	assert.Zero(t, s.Len(), "nothing copied before validation passes")
}

func TestBuildRuleFailurePoisonsStore(t *testing.T) {
	boom := stderrors.New("rule engine exploded")
	rules := append(DefaultRules()[:2], Rule{
		Name:  "explode",
		Apply: func(storage.Writer) (int, error) { return 0, boom },
	})

	s := storage.NewStore()
	b := NewBuilder(s, WithRules(rules))
	_, err := b.Build(context.Background(), rawGraph(st(iri("A"), schema.SubClassOfTerm, iri("B"))))

	var mbe *ModelBuildingError
	require.True(t, stderrors.As(err, &mbe))
	assert.Equal(t, "explode", mbe.Stage)
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.IsFatal(err))
	assert.NotZero(t, s.Len(), "no rollback")

	_, err = b.Build(context.Background(), rawGraph())
	assert.ErrorIs(t, err, ErrStoreUnusable)
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(storage.NewStore()).Build(ctx, rawGraph())
	var mbe *ModelBuildingError
	require.True(t, stderrors.As(err, &mbe))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRecordsMetrics(t *testing.T) {
	m := NewMetrics(metric.NewMetricsRegistry())
	build(t, []Option{WithMetrics(m)},
		st(iri("A"), schema.EquivalentClassTerm, iri("B")),
	)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.transferred))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.components))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.merged))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.inferred.WithLabelValues(RuleEquivalentClassSubsumption)))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recordTransferred(1)
		m.recordInferred("x", 1)
		m.recordNormalized(1, 1)
		m.recordFailure("x")
	})
	assert.Nil(t, NewMetrics(nil))
}
