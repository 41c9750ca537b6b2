// Package ingest parses RDFS/OWL schema documents into a raw statement
// graph. Documents accumulate: every call adds to the same graph.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semschema/rdf"
	errors "github.com/c360studio/semstreams/pkg/errs"
	"github.com/google/uuid"
)

// Ingester accumulates schema documents into one raw graph.
type Ingester struct {
	graph   *rdf.Graph
	fetcher *Fetcher
	logger  *slog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Ingester) { i.logger = l }
}

// WithFetcher sets the fetcher used for http(s) sources.
func WithFetcher(f *Fetcher) Option {
	return func(i *Ingester) { i.fetcher = f }
}

// WithGraph makes the ingester append to an existing graph.
func WithGraph(g *rdf.Graph) Option {
	return func(i *Ingester) { i.graph = g }
}

// New creates an Ingester with an empty graph.
func New(opts ...Option) *Ingester {
	i := &Ingester{}
	for _, opt := range opts {
		opt(i)
	}
	if i.graph == nil {
		i.graph = rdf.NewGraph()
	}
	if i.fetcher == nil {
		i.fetcher = NewFetcher(30*time.Second, 0)
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	return i
}

// Graph returns the accumulated raw graph.
func (i *Ingester) Graph() *rdf.Graph {
	return i.graph
}

// AddSchema parses one document and adds its statements to the graph.
// Relative IRIs resolve against baseIRI. A parse error adds nothing.
func (i *Ingester) AddSchema(ctx context.Context, r io.Reader, baseIRI string, format Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	decode, err := decoderFor(format)
	if err != nil {
		return errors.WrapInvalid(err, "Ingester", "AddSchema", "select decoder")
	}

	stmts, err := decode(r, baseIRI, uuid.NewString())
	if err != nil {
		return errors.WrapInvalid(err, "Ingester", "AddSchema", fmt.Sprintf("parse %s document", format))
	}

	i.graph.Add(stmts...)
	i.logger.Debug("Schema ingested",
		"format", format,
		"base", baseIRI,
		"statements", len(stmts),
		"total", i.graph.Len())
	return nil
}

// AddSchemaURL ingests a document from an http(s) URL, a file:// URL or a
// local path. An empty format is inferred from the extension or the
// response content type. An empty baseIRI defaults to the document URL.
func (i *Ingester) AddSchemaURL(ctx context.Context, src, baseIRI string, format Format) error {
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return i.addRemote(ctx, src, baseIRI, format)
	}

	path := src
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	return i.addFile(ctx, path, baseIRI, format)
}

// AddSchemaFiles ingests every file matching a doublestar pattern, in
// lexical order, and returns how many were read.
func (i *Ingester) AddSchemaFiles(ctx context.Context, pattern, baseIRI string) (int, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return 0, errors.WrapInvalid(err, "Ingester", "AddSchemaFiles", "expand pattern")
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}
	sort.Strings(matches)

	for n, path := range matches {
		if err := i.addFile(ctx, path, baseIRI, ""); err != nil {
			return n, err
		}
	}
	return len(matches), nil
}

func (i *Ingester) addRemote(ctx context.Context, src, baseIRI string, format Format) error {
	res, err := i.fetcher.Fetch(ctx, src)
	if err != nil {
		return errors.WrapTransient(err, "Ingester", "AddSchemaURL", "fetch "+src)
	}
	if format == "" {
		f, ok := FormatForContentType(res.ContentType)
		if !ok {
			f, ok = FormatForPath(strings.SplitN(src, "?", 2)[0])
		}
		if !ok {
			return errors.WrapInvalid(fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, res.ContentType),
				"Ingester", "AddSchemaURL", "infer format")
		}
		format = f
	}
	if baseIRI == "" {
		baseIRI = src
	}
	return i.AddSchema(ctx, bytes.NewReader(res.Body), baseIRI, format)
}

func (i *Ingester) addFile(ctx context.Context, path, baseIRI string, format Format) error {
	if format == "" {
		f, ok := FormatForPath(path)
		if !ok {
			return errors.WrapInvalid(fmt.Errorf("%w: %s", ErrUnsupportedFormat, path),
				"Ingester", "AddSchemaURL", "infer format")
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.WrapInvalid(err, "Ingester", "AddSchemaURL", "open schema file")
	}
	defer f.Close()

	if baseIRI == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		baseIRI = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
	return i.AddSchema(ctx, f, baseIRI, format)
}
