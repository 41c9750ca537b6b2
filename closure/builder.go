// Package closure turns a raw schema graph into a closed schema store:
// validated, seeded with the baseline vocabulary, extended by an ordered set
// of forward-chaining rules and normalized so every subclass cycle has one
// representative.
package closure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/semschema/normalize"
	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/validate"
	errors "github.com/c360studio/semstreams/pkg/errs"
)

// Build stages, as reported in ModelBuildingError.
const (
	StageValidate  = "validate"
	StageSeed      = "seed"
	StageCopy      = "copy"
	StageNormalize = "normalize"
)

// RuleCount records how many statements a rule inserted.
type RuleCount struct {
	Rule     string
	Inserted int
}

// Result summarizes a build.
type Result struct {
	Seeded      int
	Transferred int
	Inferred    []RuleCount
	Normalized  normalize.Result
	Report      validate.Report
}

// Builder closes a schema store. It owns the store for the duration of
// Build; callers must not write to it concurrently.
type Builder struct {
	store      *storage.Store
	reasoner   validate.Reasoner
	normalizer *normalize.Normalizer
	rules      []Rule
	logger     *slog.Logger
	metrics    *Metrics

	mu     sync.Mutex
	failed error
}

// Option configures a Builder.
type Option func(*Builder)

// WithReasoner sets the consistency check run before anything is copied.
// The default accepts every graph.
func WithReasoner(r validate.Reasoner) Option {
	return func(b *Builder) { b.reasoner = r }
}

// WithRules replaces the rule pipeline.
func WithRules(rules []Rule) Option {
	return func(b *Builder) { b.rules = rules }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// NewBuilder creates a Builder writing into store.
func NewBuilder(store *storage.Store, opts ...Option) *Builder {
	b := &Builder{
		store:    store,
		reasoner: validate.Noop,
		rules:    DefaultRules(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.normalizer = normalize.New(b.logger)
	return b
}

// Store returns the store the builder writes into.
func (b *Builder) Store() *storage.Store {
	return b.store
}

// Build validates raw, seeds the baseline vocabulary, copies raw into the
// store, runs every rule in order and normalizes equivalence cycles.
//
// An inconsistent graph yields a *ConsistencyError and leaves the store
// untouched. Any later failure yields a *ModelBuildingError; statements
// already written stay, and every further Build returns ErrStoreUnusable.
func (b *Builder) Build(ctx context.Context, raw *rdf.Graph) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failed != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnusable, b.failed)
	}

	res := &Result{}

	report, err := b.reasoner.Validate(ctx, raw)
	if err != nil {
		return nil, b.fail(StageValidate, err)
	}
	res.Report = report
	if !report.Valid {
		b.metrics.recordFailure(StageValidate)
		return nil, &ConsistencyError{
			Report: report,
			Err:    errors.WrapInvalid(report, "Builder", "Build", "validate schema"),
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, b.fail(StageSeed, err)
	}
	res.Seeded = Seed(b.store)

	stmts := raw.Statements()
	if err := ctx.Err(); err != nil {
		return nil, b.fail(StageCopy, err)
	}
	res.Transferred = b.store.Add(stmts...)
	b.metrics.recordTransferred(res.Transferred)
	b.logger.Debug("Statements transferred",
		"raw", len(stmts),
		"transferred", res.Transferred,
		"seeded", res.Seeded)

	for _, rule := range b.rules {
		if err := ctx.Err(); err != nil {
			return nil, b.fail(rule.Name, err)
		}
		n, err := rule.Apply(b.store)
		if err != nil {
			return nil, b.fail(rule.Name, err)
		}
		res.Inferred = append(res.Inferred, RuleCount{Rule: rule.Name, Inserted: n})
		b.metrics.recordInferred(rule.Name, n)
		b.logger.Debug("Rule applied", "rule", rule.Name, "inserted", n)
	}

	normalized, err := b.normalizer.Normalize(ctx, b.store)
	if err != nil {
		return nil, b.fail(StageNormalize, err)
	}
	res.Normalized = normalized
	b.metrics.recordNormalized(normalized.Components, normalized.Merged)

	b.logger.Info("Schema closure built",
		"statements", b.store.Len(),
		"transferred", res.Transferred,
		"components", normalized.Components)
	return res, nil
}

func (b *Builder) fail(stage string, err error) error {
	b.metrics.recordFailure(stage)
	wrapped := &ModelBuildingError{
		Stage: stage,
		Err:   errors.WrapFatal(err, "Builder", "Build", stage),
	}
	if stage != StageValidate && stage != StageSeed {
		b.failed = wrapped
	}
	return wrapped
}
