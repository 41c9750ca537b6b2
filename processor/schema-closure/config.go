package schemaclosure

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/export"
	"github.com/c360studio/semschema/ingest"
	"github.com/c360studio/semstreams/component"
)

// schemaClosureSchema defines the configuration schema.
var schemaClosureSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the schema-closure processor.
type Config struct {
	Ports    *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	Format   string                `json:"format" schema:"type:string,description:Closure serialization format (turtle/ntriples/jsonld),category:basic,default:turtle"`
	Reasoner bool                  `json:"reasoner" schema:"type:bool,description:Run the consistency check before closing,category:basic,default:true"`
	Publish  bool                  `json:"publish_descriptors" schema:"type:bool,description:Publish class and property descriptors to the graph,category:basic,default:true"`

	// OutputDir enables code generation after every successful build.
	OutputDir string         `json:"output_dir,omitempty" schema:"type:string,description:Directory for generated Go code (empty disables generation),category:advanced"`
	Codegen   codegen.Config `json:"codegen" schema:"type:object,description:Code generation settings,category:advanced"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Format != "" {
		if _, err := export.ParseFormat(c.Format); err != nil {
			return fmt.Errorf("%w (valid: turtle, ntriples, jsonld)", err)
		}
	}
	if c.OutputDir != "" {
		if err := c.Codegen.Validate(); err != nil {
			return fmt.Errorf("codegen: %w", err)
		}
	}
	return nil
}

// GetFormat returns the configured export format.
func (c *Config) GetFormat() export.Format {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.FormatTurtle
	}
	return f
}

// DefaultConfig returns the default configuration for schema-closure.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "documents_in",
					Type:        "jetstream",
					Subject:     "schema.ingest.document",
					StreamName:  "SCHEMA",
					Required:    true,
					Description: "Schema documents to add to the closure",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "closure_out",
					Type:        "jetstream",
					Subject:     "schema.export.closure",
					Required:    true,
					Description: "Serialized closed schema after every rebuild",
				},
				{
					Name:        "entities_out",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Required:    false,
					Description: "Class and property descriptors for the knowledge graph",
				},
			},
		},
		Format:   string(export.FormatTurtle),
		Reasoner: true,
		Publish:  true,
		Codegen:  codegen.DefaultConfig(),
	}
}

// documentFormat resolves a document's format token, inferring from the
// source name when empty.
func documentFormat(token, source string) (ingest.Format, error) {
	if token != "" {
		return ingest.ParseFormat(token)
	}
	if f, ok := ingest.FormatForPath(source); ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: cannot infer format of %q", ingest.ErrUnsupportedFormat, source)
}
