package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/config"
	"github.com/c360studio/semschema/export"
	"github.com/c360studio/semschema/generator"
	"github.com/c360studio/semschema/graph"
	"github.com/c360studio/semschema/ingest"
	"github.com/c360studio/semschema/schema"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/validate"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// graphStream holds descriptor messages when no stream covers the publish
// subject yet.
const graphStream = "SEMSCHEMA_GRAPH"

// App wires configuration, the generator pipeline and the optional NATS
// side channels together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// NATS clients keyed by URL, shared by publish and snapshot
	clients map[string]*natsclient.Client
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]*natsclient.Client),
	}
}

// Load creates a generator and ingests every configured schema source.
func (a *App) Load(ctx context.Context) (*generator.Generator, error) {
	if len(a.cfg.Schemas) == 0 {
		return nil, fmt.Errorf("no schema sources: pass files or URLs, or list them under schemas in %s", config.ProjectConfigFile)
	}

	opts := []generator.Option{
		generator.WithLogger(a.logger),
		generator.WithFetcher(ingest.NewFetcher(a.cfg.Fetch.Timeout, a.cfg.Fetch.MaxAttempts)),
	}
	if !a.cfg.ReasonerEnabled() {
		opts = append(opts, generator.WithReasoner(validate.Noop))
	}
	g, err := generator.New(opts...)
	if err != nil {
		return nil, err
	}

	for _, src := range a.cfg.Schemas {
		if err := a.addSource(ctx, g, src); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (a *App) addSource(ctx context.Context, g *generator.Generator, src config.SchemaSource) error {
	var format ingest.Format
	if src.Format != "" {
		f, err := ingest.ParseFormat(src.Format)
		if err != nil {
			return err
		}
		format = f
	}

	if src.URL != "" {
		a.logger.Debug("Adding schema URL", "url", src.URL)
		return g.AddSchemaURL(ctx, src.URL, src.Base, format)
	}

	if format == "" && isGlob(src.Path) {
		n, err := g.AddSchemaFiles(ctx, src.Path, src.Base)
		if err != nil {
			return err
		}
		a.logger.Debug("Added schema files", "pattern", src.Path, "count", n)
		return nil
	}

	a.logger.Debug("Adding schema file", "path", src.Path)
	return g.AddSchemaURL(ctx, src.Path, src.Base, format)
}

// Generate runs the whole pipeline once: load, build, emit, then publish
// and snapshot when configured.
func (a *App) Generate(ctx context.Context) (*codegen.Report, error) {
	start := time.Now()
	g, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}

	report, err := g.Generate(ctx, a.cfg.Codegen, a.cfg.Output.Dir)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Generated code",
		"classes", report.Classes,
		"files", len(report.Files),
		"base_namespace", report.BaseNamespace,
		"dir", report.BaseDir,
		"duration", time.Since(start))

	if err := a.sideChannels(ctx, g); err != nil {
		return report, err
	}
	return report, nil
}

// Validate loads the sources and runs the consistency check only.
func (a *App) Validate(ctx context.Context) (validate.Report, error) {
	g, err := a.Load(ctx)
	if err != nil {
		return validate.Report{}, err
	}
	return g.Validate(ctx)
}

// Closure builds the schema store and writes it to w.
func (a *App) Closure(ctx context.Context, w io.Writer, format export.Format) error {
	g, err := a.Load(ctx)
	if err != nil {
		return err
	}
	if _, err := g.Build(ctx); err != nil {
		return err
	}
	if err := export.NewExporter(nil).Export(w, g.Store(), format); err != nil {
		return err
	}
	return a.sideChannels(ctx, g)
}

func (a *App) sideChannels(ctx context.Context, g *generator.Generator) error {
	if a.cfg.Publish.NATSURL == "" && a.cfg.Snapshot.NATSURL == "" {
		return nil
	}

	m, err := g.Materializer()
	if err != nil {
		return err
	}
	if a.cfg.Publish.NATSURL != "" {
		if err := a.publish(ctx, m); err != nil {
			return err
		}
	}
	if a.cfg.Snapshot.NATSURL != "" {
		if err := a.snapshot(ctx, g.Store()); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) publish(ctx context.Context, m *schema.Materializer) error {
	client, err := a.connect(ctx, a.cfg.Publish.NATSURL)
	if err != nil {
		return err
	}
	if err := a.ensureStream(ctx, client, a.cfg.Publish.Subject); err != nil {
		return err
	}

	n, err := graph.PublishSchema(ctx, graph.WithSubject(client, a.cfg.Publish.Subject), m)
	if err != nil {
		return fmt.Errorf("publish descriptors: %w", err)
	}
	a.logger.Info("Published schema descriptors", "count", n, "subject", a.cfg.Publish.Subject)
	return nil
}

func (a *App) snapshot(ctx context.Context, r storage.Reader) error {
	client, err := a.connect(ctx, a.cfg.Snapshot.NATSURL)
	if err != nil {
		return err
	}
	js, err := client.JetStream()
	if err != nil {
		return fmt.Errorf("get JetStream context: %w", err)
	}
	kv, err := storage.OpenBucket(ctx, js, a.cfg.Snapshot.Bucket)
	if err != nil {
		return err
	}

	n, err := storage.SaveSnapshot(ctx, kv, r)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	a.logger.Info("Saved closure snapshot", "subjects", n, "bucket", a.cfg.Snapshot.Bucket)
	return nil
}

// ensureStream creates a stream for subject unless one already covers it.
func (a *App) ensureStream(ctx context.Context, client *natsclient.Client, subject string) error {
	js, err := client.JetStream()
	if err != nil {
		return fmt.Errorf("get JetStream context: %w", err)
	}
	if name, err := js.StreamNameBySubject(ctx, subject); err == nil {
		a.logger.Debug("Using existing stream", "stream", name, "subject", subject)
		return nil
	}

	_, err = client.CreateStream(ctx, jetstream.StreamConfig{
		Name:     graphStream,
		Subjects: []string{subject},
		MaxAge:   24 * time.Hour,
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream for %s: %w", subject, err)
	}
	a.logger.Debug("Created stream", "stream", graphStream, "subject", subject)
	return nil
}

func (a *App) connect(ctx context.Context, url string) (*natsclient.Client, error) {
	if c, ok := a.clients[url]; ok {
		return c, nil
	}

	a.logger.Info("Connecting to NATS", "url", url)
	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(3),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	a.clients[url] = client
	return client, nil
}

// Close drains every NATS connection.
func (a *App) Close(ctx context.Context) {
	for url, c := range a.clients {
		if err := c.Close(ctx); err != nil {
			a.logger.Warn("Failed to close NATS client", "url", url, "error", err)
		}
	}
	a.clients = make(map[string]*natsclient.Client)
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Start a server with JetStream enabled or remove nats_url from the
publish and snapshot sections of %s.`, err, url, config.ProjectConfigFile)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
