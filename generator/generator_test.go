package generator

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/semschema/closure"
	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/ingest"
	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/schema"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/validate"
	vocab "github.com/c360studio/semschema/vocabulary/schema"
	"github.com/c360studio/semstreams/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefixes = `@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
`

const equivalenceDoc = prefixes + `
ex:C1 rdfs:subClassOf ex:C2 .
ex:C2 owl:equivalentClass ex:C3 .
ex:p a owl:ObjectProperty .
ex:p rdfs:domain ex:C1 .
`

const inheritanceDoc = prefixes + `
ex:p2 rdfs:subPropertyOf ex:p1 .
ex:p1 rdfs:domain owl:Thing .
ex:p1 rdfs:range rdfs:Literal .
`

const inconsistentDoc = prefixes + `
ex:Dog owl:disjointWith ex:Cat .
ex:rex a ex:Dog .
ex:rex a ex:Cat .
`

const ex = "http://example.org/onto#"

func newGenerator(t *testing.T, docs ...string) *Generator {
	t.Helper()
	g, err := New()
	require.NoError(t, err)
	for _, doc := range docs {
		require.NoError(t, g.AddSchema(context.Background(), strings.NewReader(doc), ex, ingest.FormatTurtle))
	}
	return g
}

func iris(cs []schema.ClassDescriptor) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.IRI)
	}
	return out
}

func TestQueriesBeforeBuild(t *testing.T) {
	g := newGenerator(t, equivalenceDoc)

	_, err := g.DistinctClasses()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = g.Classes()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = g.Properties()
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestBuildEquivalenceAndDefaultRange(t *testing.T) {
	g := newGenerator(t, equivalenceDoc)
	_, err := g.Build(context.Background())
	require.NoError(t, err)

	distinct, err := g.DistinctClasses()
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "C1", ex + "C2"}, iris(distinct))

	m, err := g.Materializer()
	require.NoError(t, err)
	p, ok := m.Property(ex + "p")
	require.True(t, ok)
	assert.Equal(t, []string{vocab.OWLThing}, p.Ranges)
}

func TestBuildInheritsFromSuperProperty(t *testing.T) {
	g := newGenerator(t, inheritanceDoc)
	_, err := g.Build(context.Background())
	require.NoError(t, err)

	props, err := g.Properties()
	require.NoError(t, err)
	var p2 schema.PropertyDescriptor
	for _, p := range props {
		if p.IRI == ex+"p2" {
			p2 = p
		}
	}
	assert.Equal(t, []string{vocab.OWLThing}, p2.Domains)
	assert.Equal(t, []string{vocab.RDFSLiteral}, p2.Ranges)
}

func TestBuildInconsistentSchema(t *testing.T) {
	g := newGenerator(t, inconsistentDoc)

	report, err := g.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Valid)

	_, err = g.Build(context.Background())
	var ce *closure.ConsistencyError
	require.True(t, stderrors.As(err, &ce))
	assert.Zero(t, g.Store().Len(), "nothing copied")

	_, err = g.Classes()
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestGenerateBuildsAndEmits(t *testing.T) {
	g := newGenerator(t, equivalenceDoc)
	out := t.TempDir()

	report, err := g.Generate(context.Background(), codegen.Config{BaseNamespace: "example.com/gen", Mapping: codegen.MappingFlat}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Classes)

	dir := filepath.Join(out, "example.com", "gen")
	assert.FileExists(t, filepath.Join(dir, "c1.go"))
	assert.FileExists(t, filepath.Join(dir, "c2_support.go"))
	assert.NoFileExists(t, filepath.Join(dir, "c3.go"))
}

func TestGenerateRebuildsAfterNewSchema(t *testing.T) {
	g := newGenerator(t, equivalenceDoc)
	cfg := codegen.Config{BaseNamespace: "example.com/gen", Mapping: codegen.MappingFlat}

	_, err := g.Generate(context.Background(), cfg, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, g.AddSchema(context.Background(),
		strings.NewReader(prefixes+"ex:D a owl:Class .\n"), ex, ingest.FormatTurtle))
	report, err := g.Generate(context.Background(), cfg, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Classes)
}

func TestRebuildReplacesDerivedDefaults(t *testing.T) {
	g := newGenerator(t, prefixes+"ex:p a owl:ObjectProperty .\n")
	ctx := context.Background()

	property := func() schema.PropertyDescriptor {
		m, err := g.Materializer()
		require.NoError(t, err)
		p, ok := m.Property(ex + "p")
		require.True(t, ok)
		return p
	}

	_, err := g.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{vocab.OWLThing}, property().Domains)
	assert.Equal(t, []string{vocab.OWLThing}, property().Ranges)

	require.NoError(t, g.AddSchema(ctx,
		strings.NewReader(prefixes+"ex:p rdfs:domain ex:A ; rdfs:range ex:A .\n"), ex, ingest.FormatTurtle))
	_, err = g.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "A"}, property().Domains)
	assert.Equal(t, []string{ex + "A"}, property().Ranges)
}

func TestRebuildKeepsInitialStoreContent(t *testing.T) {
	store := storage.NewStore()
	marker := rdf.NewStatement(ex+"doc", vocab.RDFSComment, ex+"note")
	store.Add(marker)

	g, err := New(WithStore(store))
	require.NoError(t, err)
	require.NoError(t, g.AddSchema(context.Background(), strings.NewReader(equivalenceDoc), ex, ingest.FormatTurtle))
	_, err = g.Build(context.Background())
	require.NoError(t, err)
	_, err = g.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, store.Has(marker))
}

func TestAnonymousEquivalentClassIsNotMerged(t *testing.T) {
	g := newGenerator(t, prefixes+`
ex:p a owl:ObjectProperty .
ex:A owl:equivalentClass [
    a owl:Restriction ;
    owl:onProperty ex:p ;
    owl:someValuesFrom ex:B
] .
`)
	_, err := g.Build(context.Background())
	require.NoError(t, err)

	s := g.Store()
	a := rdf.IRI(ex + "A")
	assert.False(t, s.Has(rdf.NewStatement(ex+"A", vocab.RDFType, vocab.OWLNamespace+"Restriction")))
	assert.Empty(t, s.Objects(a, rdf.IRI(vocab.OWLNamespace+"onProperty")))
	assert.Empty(t, s.Objects(a, rdf.IRI(vocab.OWLNamespace+"someValuesFrom")))
	assert.Len(t, s.Objects(a, vocab.EquivalentClassTerm), 1, "restriction stays a separate node")

	distinct, err := g.DistinctClasses()
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "A"}, iris(distinct))
}

func TestGenerateInconsistentWritesNothing(t *testing.T) {
	g := newGenerator(t, inconsistentDoc)
	out := filepath.Join(t.TempDir(), "gen")

	_, err := g.Generate(context.Background(), codegen.DefaultConfig(), out)
	var ce *closure.ConsistencyError
	require.True(t, stderrors.As(err, &ce))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateOutputIsFile(t *testing.T) {
	g := newGenerator(t, equivalenceDoc)
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := g.Generate(context.Background(), codegen.DefaultConfig(), path)
	var cge *codegen.CodeGenerationError
	require.True(t, stderrors.As(err, &cge))
	assert.ErrorIs(t, err, codegen.ErrNotDirectory)

	_, err = g.Classes()
	assert.ErrorIs(t, err, ErrNotBuilt, "output checked before building")
}

func TestCustomReasonerAndMetrics(t *testing.T) {
	calls := 0
	reasoner := validate.ReasonerFunc(func(context.Context, *rdf.Graph) (validate.Report, error) {
		calls++
		return validate.Report{Valid: true}, nil
	})
	g, err := New(WithReasoner(reasoner), WithMetricsRegistry(metric.NewMetricsRegistry()))
	require.NoError(t, err)
	require.NoError(t, g.AddSchema(context.Background(), strings.NewReader(inconsistentDoc), ex, ingest.FormatTurtle))

	_, err = g.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func counterValue(t *testing.T, reg *metric.MetricsRegistry, name string) float64 {
	t.Helper()
	families, err := reg.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

func TestSharedMetricsAcrossGenerators(t *testing.T) {
	reg := metric.NewMetricsRegistry()
	cm := closure.NewMetrics(reg)
	gm := codegen.NewMetrics(reg)
	const transferred = "semschema_closure_statements_transferred_total"

	build := func() {
		g, err := New(WithMetrics(cm, gm))
		require.NoError(t, err)
		require.NoError(t, g.AddSchema(context.Background(), strings.NewReader(equivalenceDoc), ex, ingest.FormatTurtle))
		_, err = g.Build(context.Background())
		require.NoError(t, err)
	}

	build()
	first := counterValue(t, reg, transferred)
	require.Positive(t, first)

	build()
	assert.Equal(t, 2*first, counterValue(t, reg, transferred))
}
