package codegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"

	errors "github.com/c360studio/semstreams/pkg/errs"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(e *Emitter) { e.metrics = m }
}

// Emitter writes Go source for a closed schema.
type Emitter struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
}

// NewEmitter creates an Emitter. Zero fields of cfg take their defaults.
func NewEmitter(cfg Config, opts ...Option) *Emitter {
	e := &Emitter{
		cfg:    cfg.withDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report summarizes an emission run.
type Report struct {
	// BaseNamespace is the effective base import path.
	BaseNamespace string
	// BaseDir is the directory BaseNamespace maps to.
	BaseDir string
	Classes int
	// Files lists every written file, sorted.
	Files []string
}

// Emit writes two files for every eligible distinct class of m below
// outDir. The first failure cancels the remaining classes and is returned
// as a *CodeGenerationError.
func (e *Emitter) Emit(ctx context.Context, m Model, outDir string) (*Report, error) {
	report, err := e.emit(ctx, m, outDir)
	if err != nil {
		e.metrics.recordFailure()
		return nil, err
	}
	return report, nil
}

func (e *Emitter) emit(ctx context.Context, m Model, outDir string) (*Report, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, e.fail("", outDir, err)
	}
	if err := EnsureOutputDir(outDir); err != nil {
		return nil, e.fail("", outDir, err)
	}
	lay, err := resolveLayout(e.cfg, outDir)
	if err != nil {
		return nil, e.fail("", outDir, err)
	}
	cfg := e.cfg
	cfg.BaseNamespace = lay.base

	classes := plan(cfg, lay, m)
	e.logger.Debug("Emitting classes",
		"classes", len(classes),
		"base_namespace", lay.base,
		"base_dir", lay.baseDir,
		"workers", cfg.Workers)

	report := &Report{BaseNamespace: lay.base, BaseDir: lay.baseDir}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, cp := range classes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return e.fail(cp.IRI, cp.Dir, err)
			}
			files, err := e.emitClass(cp)
			if err != nil {
				return e.fail(cp.IRI, cp.Dir, err)
			}
			e.metrics.recordClass(len(files))
			e.logger.Debug("Class generated",
				"class", cp.IRI,
				"type", cp.Name,
				"package", cp.ImportPath)

			mu.Lock()
			report.Classes++
			report.Files = append(report.Files, files...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(report.Files)
	e.logger.Info("Code generated",
		"classes", report.Classes,
		"files", len(report.Files),
		"base_dir", lay.baseDir)
	return report, nil
}

func (e *Emitter) emitClass(cp *classPlan) ([]string, error) {
	if err := os.MkdirAll(cp.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create package directory: %w", err)
	}
	stem := strings.ToLower(cp.Name)
	outputs := []struct {
		path string
		tmpl *template.Template
	}{
		{filepath.Join(cp.Dir, stem+".go"), typeTemplate},
		{filepath.Join(cp.Dir, stem+"_support.go"), supportTemplate},
	}

	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		src, err := render(out.tmpl, cp)
		if err != nil {
			return written, err
		}
		if err := writeSource(out.path, src); err != nil {
			return written, err
		}
		written = append(written, out.path)
	}
	return written, nil
}

// EnsureOutputDir creates dir and its parents. An existing non-directory
// at dir is an error.
func EnsureOutputDir(dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case err == nil && !fi.IsDir():
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("stat output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func (e *Emitter) fail(class, path string, err error) error {
	return &CodeGenerationError{
		Class: class,
		Path:  path,
		Err:   errors.WrapFatal(err, "Emitter", "Emit", "generate code"),
	}
}

func writeSource(path string, src []byte) error {
	formatted, err := imports.Process(path, src, &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return fmt.Errorf("format %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, formatted, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
