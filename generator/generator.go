// Package generator drives the full pipeline: schema documents are
// ingested into a raw graph, checked for consistency, closed into a schema
// store and emitted as Go source.
package generator

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"

	"github.com/c360studio/semschema/closure"
	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/ingest"
	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/schema"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/validate"
	errors "github.com/c360studio/semstreams/pkg/errs"
	"github.com/c360studio/semstreams/metric"
)

// ErrNotBuilt is returned by descriptor queries before a successful Build.
var ErrNotBuilt = stderrors.New("schema not built")

// ErrStoreUnusable is returned once a build has failed part way.
var ErrStoreUnusable = closure.ErrStoreUnusable

// Generator accumulates schema documents and turns them into Go code.
type Generator struct {
	ingester *ingest.Ingester
	store    *storage.Store
	builder  *closure.Builder
	reasoner validate.Reasoner
	logger   *slog.Logger
	cgm      *codegen.Metrics

	// base is the store content before the first build; every rebuild
	// starts again from it.
	base []rdf.Statement

	mu    sync.Mutex
	built bool
	dirty bool
}

// Option configures a Generator.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	reasoner validate.Reasoner
	store    *storage.Store
	fetcher  *ingest.Fetcher
	registry *metric.MetricsRegistry
	cm       *closure.Metrics
	gm       *codegen.Metrics
}

// WithLogger sets the logger shared by every stage.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithReasoner replaces the Datalog consistency check.
func WithReasoner(r validate.Reasoner) Option {
	return func(o *options) { o.reasoner = r }
}

// WithStore closes schemas into an existing store.
func WithStore(s *storage.Store) Option {
	return func(o *options) { o.store = s }
}

// WithFetcher sets the fetcher for http(s) schema sources.
func WithFetcher(f *ingest.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithMetricsRegistry registers closure and codegen metrics.
func WithMetricsRegistry(r *metric.MetricsRegistry) Option {
	return func(o *options) { o.registry = r }
}

// WithMetrics reuses metrics created once by the caller, for callers that
// create many generators against one registry. It overrides
// WithMetricsRegistry.
func WithMetrics(cm *closure.Metrics, gm *codegen.Metrics) Option {
	return func(o *options) {
		o.cm = cm
		o.gm = gm
	}
}

// New creates a Generator. Without WithReasoner the Datalog reasoner checks
// consistency.
func New(opts ...Option) (*Generator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.store == nil {
		o.store = storage.NewStore()
	}
	if o.reasoner == nil {
		r, err := validate.NewDatalogReasoner(o.logger)
		if err != nil {
			return nil, errors.WrapFatal(err, "Generator", "New", "create reasoner")
		}
		o.reasoner = r
	}

	ingestOpts := []ingest.Option{ingest.WithLogger(o.logger)}
	if o.fetcher != nil {
		ingestOpts = append(ingestOpts, ingest.WithFetcher(o.fetcher))
	}
	if o.cm == nil && o.gm == nil {
		o.cm = closure.NewMetrics(o.registry)
		o.gm = codegen.NewMetrics(o.registry)
	}

	g := &Generator{
		ingester: ingest.New(ingestOpts...),
		store:    o.store,
		reasoner: o.reasoner,
		logger:   o.logger,
		cgm:      o.gm,
		base:     o.store.Statements(),
	}
	g.builder = closure.NewBuilder(o.store,
		closure.WithReasoner(o.reasoner),
		closure.WithLogger(o.logger),
		closure.WithMetrics(o.cm),
	)
	return g, nil
}

// AddSchema parses one document into the raw graph.
func (g *Generator) AddSchema(ctx context.Context, r io.Reader, baseIRI string, format ingest.Format) error {
	return g.track(g.ingester.AddSchema(ctx, r, baseIRI, format))
}

// AddSchemaURL reads a document from an http(s) URL, a file URL or a path.
func (g *Generator) AddSchemaURL(ctx context.Context, src, baseIRI string, format ingest.Format) error {
	return g.track(g.ingester.AddSchemaURL(ctx, src, baseIRI, format))
}

// AddSchemaFiles reads every file matching a doublestar pattern.
func (g *Generator) AddSchemaFiles(ctx context.Context, pattern, baseIRI string) (int, error) {
	n, err := g.ingester.AddSchemaFiles(ctx, pattern, baseIRI)
	if n > 0 {
		g.markDirty()
	}
	return n, err
}

func (g *Generator) track(err error) error {
	if err == nil {
		g.markDirty()
	}
	return err
}

func (g *Generator) markDirty() {
	g.mu.Lock()
	g.dirty = true
	g.mu.Unlock()
}

// Validate checks the raw graph without building.
func (g *Generator) Validate(ctx context.Context) (validate.Report, error) {
	return g.reasoner.Validate(ctx, g.ingester.Graph())
}

// Build closes the raw graph into the store. A repeated Build first resets
// the store to its content before the first build, so the closure always
// reflects every schema added so far. See closure.Builder.Build for the
// error contract.
func (g *Generator) Build(ctx context.Context) (*closure.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.build(ctx)
}

func (g *Generator) build(ctx context.Context) (*closure.Result, error) {
	// Defaults derived by an earlier build must not survive schemas that
	// now assert a domain or range.
	if g.built {
		g.store.Reset(g.base...)
		g.built = false
	}
	res, err := g.builder.Build(ctx, g.ingester.Graph())
	if err != nil {
		return nil, err
	}
	g.built = true
	g.dirty = false
	return res, nil
}

// Store returns the schema store.
func (g *Generator) Store() *storage.Store {
	return g.store
}

// Materializer returns a descriptor view over the closed store.
func (g *Generator) Materializer() (*schema.Materializer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.built {
		return nil, ErrNotBuilt
	}
	return schema.NewMaterializer(g.store), nil
}

// Classes returns every class below owl:Thing.
func (g *Generator) Classes() ([]schema.ClassDescriptor, error) {
	m, err := g.Materializer()
	if err != nil {
		return nil, err
	}
	return m.Classes(), nil
}

// DistinctClasses returns one class per equivalence class.
func (g *Generator) DistinctClasses() ([]schema.ClassDescriptor, error) {
	m, err := g.Materializer()
	if err != nil {
		return nil, err
	}
	return m.DistinctClasses(), nil
}

// Properties returns every property.
func (g *Generator) Properties() ([]schema.PropertyDescriptor, error) {
	m, err := g.Materializer()
	if err != nil {
		return nil, err
	}
	return m.Properties(), nil
}

// Generate checks outDir, builds if any schema was added since the last
// build, and emits code for every eligible distinct class.
func (g *Generator) Generate(ctx context.Context, cfg codegen.Config, outDir string) (*codegen.Report, error) {
	if err := codegen.EnsureOutputDir(outDir); err != nil {
		return nil, &codegen.CodeGenerationError{
			Path: outDir,
			Err:  errors.WrapFatal(err, "Generator", "Generate", "prepare output directory"),
		}
	}

	g.mu.Lock()
	if !g.built || g.dirty {
		if _, err := g.build(ctx); err != nil {
			g.mu.Unlock()
			return nil, err
		}
	}
	g.mu.Unlock()

	emitter := codegen.NewEmitter(cfg,
		codegen.WithLogger(g.logger),
		codegen.WithMetrics(g.cgm),
	)
	return emitter.Emit(ctx, schema.NewMaterializer(g.store), outDir)
}
