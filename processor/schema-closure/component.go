// Package schemaclosure provides a streaming processor that consumes schema
// documents, keeps their closure current and publishes it as RDF and as
// knowledge graph descriptors.
package schemaclosure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semschema/closure"
	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/export"
	"github.com/c360studio/semschema/generator"
	"github.com/c360studio/semschema/graph"
	"github.com/c360studio/semschema/schema"
	"github.com/c360studio/semschema/validate"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// Component implements the schema-closure processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	registry   *metric.MetricsRegistry

	format export.Format

	// Resolved subjects from port config
	inputSubject   string
	inputStream    string
	closureSubject string
	entitySubject  string

	// Every build replays the accepted documents into a fresh generator.
	stateMu sync.Mutex
	docs    []DocumentPayload

	metricsOnce    sync.Once
	closureMetrics *closure.Metrics
	codegenMetrics *codegen.Metrics

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	documentsProcessed atomic.Int64
	buildErrors        atomic.Int64
	publishErrors      atomic.Int64
	lastActivityMu     sync.RWMutex
	lastActivity       time.Time
}

// NewComponent creates a new schema-closure processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if config.Ports == nil {
		config.Ports = DefaultConfig().Ports
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Component{
		name:           "schema-closure",
		config:         config,
		natsClient:     deps.NATSClient,
		logger:         deps.GetLogger(),
		registry:       deps.MetricsRegistry,
		format:         config.GetFormat(),
		inputSubject:   "schema.ingest.document",
		inputStream:    "SCHEMA",
		closureSubject: "schema.export.closure",
		entitySubject:  graph.GraphIngestSubject,
	}

	if len(config.Ports.Inputs) > 0 {
		c.inputSubject = config.Ports.Inputs[0].Subject
		c.inputStream = config.Ports.Inputs[0].StreamName
	}
	if len(config.Ports.Outputs) > 0 {
		c.closureSubject = config.Ports.Outputs[0].Subject
	}
	if len(config.Ports.Outputs) > 1 {
		c.entitySubject = config.Ports.Outputs[1].Subject
	}

	return c, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.initMetrics()
	return nil
}

func (c *Component) initMetrics() {
	c.metricsOnce.Do(func() {
		c.closureMetrics = closure.NewMetrics(c.registry)
		c.codegenMetrics = codegen.NewMetrics(c.registry)
	})
}

func (c *Component) newGenerator() (*generator.Generator, error) {
	c.initMetrics()
	opts := []generator.Option{
		generator.WithLogger(c.logger),
		generator.WithMetrics(c.closureMetrics, c.codegenMetrics),
	}
	if !c.config.Reasoner {
		opts = append(opts, generator.WithReasoner(validate.Noop))
	}
	return generator.New(opts...)
}

// Start begins consuming schema documents.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	if err := c.Initialize(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("initialize: %w", err)
	}

	// Set running state while holding lock to prevent race condition
	c.running = true
	c.startTime = time.Now()

	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	consumerCfg := natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "schema-closure",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "all",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       time.Minute,
	}

	err := c.natsClient.ConsumeStreamWithConfig(consumeCtx, consumerCfg, c.handleMessage)
	if err != nil {
		// Rollback running state on failure
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("start consumer: %w", err)
	}

	c.logger.Info("schema-closure started",
		"format", c.format,
		"input", c.inputSubject,
		"output", c.closureSubject,
		"generate", c.config.OutputDir != "")

	return nil
}

// handleMessage processes a single schema document message.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	var baseMsg message.BaseMessage
	if err := json.Unmarshal(msg.Data(), &baseMsg); err != nil {
		c.logger.Warn("Failed to unmarshal base message",
			"error", err,
			"subject", msg.Subject())
		_ = msg.Term() // Malformed data is never retryable
		return
	}

	doc, ok := baseMsg.Payload().(*DocumentPayload)
	if !ok {
		c.logger.Warn("Payload is not a schema document",
			"type", baseMsg.Type(),
			"subject", msg.Subject())
		_ = msg.Term()
		return
	}
	if err := doc.Validate(); err != nil {
		c.logger.Warn("Invalid schema document", "error", err)
		_ = msg.Term()
		return
	}

	result, descriptors, err := c.process(ctx, doc)
	if err != nil {
		c.logger.Warn("Schema document rejected",
			"source", doc.Source,
			"error", err)
		c.buildErrors.Add(1)
		_ = msg.Term()
		return
	}

	// The document is part of the closure from here on, so publish
	// failures are logged rather than redelivered.
	c.publish(ctx, result, descriptors)

	_ = msg.Ack()
	c.documentsProcessed.Add(1)
	c.updateLastActivity()
}

// descriptorSet is a snapshot of the descriptors of one build.
type descriptorSet struct {
	classes    []schema.ClassDescriptor
	properties []schema.PropertyDescriptor
}

func (d descriptorSet) DistinctClasses() []schema.ClassDescriptor { return d.classes }
func (d descriptorSet) Properties() []schema.PropertyDescriptor   { return d.properties }

// process adds doc to the closure and rebuilds it from every accepted
// document. A document that fails to parse or build is dropped and the
// previous closure stays current.
func (c *Component) process(ctx context.Context, doc *DocumentPayload) (*ClosurePayload, descriptorSet, error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	gen, err := c.newGenerator()
	if err != nil {
		return nil, descriptorSet{}, err
	}
	for _, d := range append(slices.Clone(c.docs), *doc) {
		format, err := documentFormat(d.Format, d.Source)
		if err != nil {
			return nil, descriptorSet{}, err
		}
		if err := gen.AddSchema(ctx, strings.NewReader(d.Content), d.BaseIRI, format); err != nil {
			return nil, descriptorSet{}, fmt.Errorf("add %s: %w", d.Source, err)
		}
	}
	if _, err := gen.Build(ctx); err != nil {
		return nil, descriptorSet{}, err
	}
	c.docs = append(c.docs, *doc)

	if c.config.OutputDir != "" {
		report, err := gen.Generate(ctx, c.config.Codegen, c.config.OutputDir)
		if err != nil {
			c.logger.Error("Code generation failed", "dir", c.config.OutputDir, "error", err)
		} else {
			c.logger.Info("Generated code", "classes", report.Classes, "dir", report.BaseDir)
		}
	}

	m, err := gen.Materializer()
	if err != nil {
		return nil, descriptorSet{}, err
	}
	descriptors := descriptorSet{classes: m.DistinctClasses(), properties: m.Properties()}

	var buf bytes.Buffer
	if err := export.NewExporter(nil).Export(&buf, gen.Store(), c.format); err != nil {
		return nil, descriptorSet{}, fmt.Errorf("serialize closure: %w", err)
	}

	sources := make([]string, len(c.docs))
	for i, d := range c.docs {
		sources[i] = d.Source
	}
	return &ClosurePayload{
		Sources:    sources,
		Format:     string(c.format),
		Statements: gen.Store().Len(),
		Classes:    len(descriptors.classes),
		Content:    buf.String(),
	}, descriptors, nil
}

func (c *Component) publish(ctx context.Context, result *ClosurePayload, descriptors descriptorSet) {
	baseMsg := message.NewBaseMessage(ClosureType, result, c.name)
	data, err := json.Marshal(baseMsg)
	if err == nil {
		err = c.natsClient.PublishToStream(ctx, c.closureSubject, data)
	}
	if err != nil {
		c.logger.Warn("Failed to publish closure",
			"subject", c.closureSubject,
			"error", err)
		c.publishErrors.Add(1)
	}

	if !c.config.Publish {
		return
	}
	n, err := graph.PublishSchema(ctx, graph.WithSubject(c.natsClient, c.entitySubject), descriptors)
	if err != nil {
		c.logger.Warn("Failed to publish descriptors",
			"subject", c.entitySubject,
			"published", n,
			"error", err)
		c.publishErrors.Add(1)
		return
	}
	c.logger.Debug("Published descriptors", "count", n)
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.running = false
	c.logger.Info("schema-closure stopped",
		"documents_processed", c.documentsProcessed.Load(),
		"build_errors", c.buildErrors.Load(),
		"publish_errors", c.publishErrors.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "schema-closure",
		Type:        "processor",
		Description: "Closes streamed RDFS/OWL schema documents and publishes the result",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition, using JetStreamPort
// for jetstream-type ports and NATSPort for core NATS ports.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return schemaClosureSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	errorCount := int(c.buildErrors.Load() + c.publishErrors.Load())

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: errorCount,
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		LastActivity: c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
