package schemaclosure

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const animals = `@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

ex:Animal a owl:Class .
ex:Dog rdfs:subClassOf ex:Animal .
`

const pets = `@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

ex:Pet rdfs:subClassOf ex:Animal .
ex:owner a owl:ObjectProperty ;
    rdfs:domain ex:Pet .
`

const clash = `@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .

ex:Dog owl:disjointWith ex:Cat .
ex:rex a ex:Dog .
ex:rex a ex:Cat .
`

func newTestComponent(t *testing.T, raw string) *Component {
	t.Helper()
	d, err := NewComponent(json.RawMessage(raw), component.Dependencies{})
	require.NoError(t, err)
	c, ok := d.(*Component)
	require.True(t, ok)
	return c
}

func TestNewComponentDefaults(t *testing.T) {
	c := newTestComponent(t, `{}`)

	assert.Equal(t, "schema.ingest.document", c.inputSubject)
	assert.Equal(t, "SCHEMA", c.inputStream)
	assert.Equal(t, "schema.export.closure", c.closureSubject)
	assert.Equal(t, "graph.ingest.entity", c.entitySubject)
	assert.True(t, c.config.Reasoner)
	assert.True(t, c.config.Publish)
	assert.Len(t, c.InputPorts(), 1)
	assert.Len(t, c.OutputPorts(), 2)
	assert.Equal(t, "schema-closure", c.Meta().Name)
}

func TestNewComponentCustomPorts(t *testing.T) {
	c := newTestComponent(t, `{
		"format": "ntriples",
		"ports": {
			"inputs": [{"name": "in", "type": "jetstream", "subject": "onto.docs", "stream_name": "ONTO"}],
			"outputs": [{"name": "out", "type": "nats", "subject": "onto.closure"}]
		}
	}`)

	assert.Equal(t, "onto.docs", c.inputSubject)
	assert.Equal(t, "ONTO", c.inputStream)
	assert.Equal(t, "onto.closure", c.closureSubject)
	assert.Equal(t, "graph.ingest.entity", c.entitySubject)
	assert.Equal(t, "ntriples", string(c.format))

	out := c.OutputPorts()
	require.Len(t, out, 1)
	assert.IsType(t, component.NATSPort{}, out[0].Config)
}

func TestNewComponentInvalidConfig(t *testing.T) {
	_, err := NewComponent(json.RawMessage(`{"format": "csv"}`), component.Dependencies{})
	assert.Error(t, err)

	_, err = NewComponent(json.RawMessage(`{"output_dir": "gen", "codegen": {"mapping": "sideways"}}`), component.Dependencies{})
	assert.Error(t, err)

	_, err = NewComponent(json.RawMessage(`not json`), component.Dependencies{})
	assert.Error(t, err)
}

func TestProcessAccumulatesDocuments(t *testing.T) {
	c := newTestComponent(t, `{"format": "ntriples"}`)
	ctx := context.Background()

	result, descriptors, err := c.process(ctx, &DocumentPayload{Source: "animals.ttl", Content: animals})
	require.NoError(t, err)
	assert.Equal(t, []string{"animals.ttl"}, result.Sources)
	assert.Equal(t, "ntriples", result.Format)
	assert.Equal(t, 2, result.Classes)
	assert.Contains(t, result.Content,
		"<http://example.org/onto#Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/onto#Animal>")
	assert.NoError(t, result.Validate())
	assert.Len(t, descriptors.DistinctClasses(), 2)

	result, descriptors, err = c.process(ctx, &DocumentPayload{Source: "pets", Format: "turtle", Content: pets})
	require.NoError(t, err)
	assert.Equal(t, []string{"animals.ttl", "pets"}, result.Sources)
	assert.Equal(t, 3, result.Classes)

	var props []string
	for _, p := range descriptors.Properties() {
		props = append(props, p.IRI)
	}
	assert.Contains(t, props, "http://example.org/onto#owner")
}

func TestProcessRejectsInconsistentDocument(t *testing.T) {
	c := newTestComponent(t, `{}`)
	ctx := context.Background()

	_, _, err := c.process(ctx, &DocumentPayload{Source: "animals.ttl", Content: animals})
	require.NoError(t, err)

	_, _, err = c.process(ctx, &DocumentPayload{Source: "clash.ttl", Content: clash})
	require.Error(t, err)

	// the closure continues from the accepted documents only
	result, _, err := c.process(ctx, &DocumentPayload{Source: "pets.ttl", Content: pets})
	require.NoError(t, err)
	assert.Equal(t, []string{"animals.ttl", "pets.ttl"}, result.Sources)
	assert.Equal(t, 3, result.Classes)
}

func TestProcessRebuildsFromScratch(t *testing.T) {
	c := newTestComponent(t, `{}`)
	ctx := context.Background()

	const owner = "http://example.org/onto#owner"
	rangeOf := func(d descriptorSet) []string {
		for _, p := range d.Properties() {
			if p.IRI == owner {
				return p.Ranges
			}
		}
		return nil
	}

	_, descriptors, err := c.process(ctx, &DocumentPayload{Source: "animals.ttl", Content: animals + pets})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.w3.org/2002/07/owl#Thing"}, rangeOf(descriptors))

	_, descriptors, err = c.process(ctx, &DocumentPayload{Source: "range.ttl", Content: `@prefix ex: <http://example.org/onto#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

ex:owner rdfs:range ex:Animal .
`})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/onto#Animal"}, rangeOf(descriptors))
}

func TestProcessWithoutReasoner(t *testing.T) {
	c := newTestComponent(t, `{"reasoner": false}`)

	_, _, err := c.process(context.Background(), &DocumentPayload{Source: "clash.ttl", Content: clash})
	assert.NoError(t, err)
}

func TestProcessUnknownFormat(t *testing.T) {
	c := newTestComponent(t, `{}`)

	_, _, err := c.process(context.Background(), &DocumentPayload{Source: "schema", Content: animals})
	assert.Error(t, err)
	assert.Empty(t, c.docs)
}

func TestProcessMalformedDocument(t *testing.T) {
	c := newTestComponent(t, `{}`)
	ctx := context.Background()

	_, _, err := c.process(ctx, &DocumentPayload{Source: "broken.ttl", Content: "ex:A ex:b"})
	require.Error(t, err)
	assert.Empty(t, c.docs)

	_, _, err = c.process(ctx, &DocumentPayload{Source: "animals.ttl", Content: animals})
	assert.NoError(t, err)
}

func TestProcessGeneratesCode(t *testing.T) {
	out := t.TempDir()
	raw, err := json.Marshal(map[string]any{
		"output_dir": out,
		"codegen":    map[string]any{"base_namespace": "example.com/pets", "mapping": "flat", "workers": 2},
	})
	require.NoError(t, err)
	c := newTestComponent(t, string(raw))

	_, _, err = c.process(context.Background(), &DocumentPayload{Source: "animals.ttl", Content: animals})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "example.com", "pets", "dog.go"))
	assert.FileExists(t, filepath.Join(out, "example.com", "pets", "animal_support.go"))
}

func TestStartRequiresNATS(t *testing.T) {
	c := newTestComponent(t, `{}`)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.False(t, c.Health().Healthy)
	assert.Equal(t, "stopped", c.Health().Status)
	assert.NoError(t, c.Stop(0))
}

func TestDocumentPayloadRoundTrip(t *testing.T) {
	doc := &DocumentPayload{Source: "animals.ttl", Content: animals}
	require.NoError(t, doc.Validate())

	data, err := json.Marshal(message.NewBaseMessage(DocumentType, doc, "test"))
	require.NoError(t, err)

	var decoded message.BaseMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	got, ok := decoded.Payload().(*DocumentPayload)
	require.True(t, ok)
	assert.Equal(t, doc.Content, got.Content)

	assert.Error(t, (&DocumentPayload{Content: animals}).Validate())
	assert.Error(t, (&DocumentPayload{Source: "a.ttl"}).Validate())
	assert.Error(t, (&ClosurePayload{Content: "x"}).Validate())
}

type fakeRegistry struct {
	configs []component.RegistrationConfig
}

func (r *fakeRegistry) RegisterWithConfig(cfg component.RegistrationConfig) error {
	r.configs = append(r.configs, cfg)
	return nil
}

func TestRegister(t *testing.T) {
	r := &fakeRegistry{}
	require.NoError(t, Register(r))
	require.Len(t, r.configs, 1)
	assert.Equal(t, "schema-closure", r.configs[0].Name)
	assert.Equal(t, "processor", r.configs[0].Type)
	assert.Contains(t, r.configs[0].Schema.Properties, "format")

	assert.Error(t, Register(nil))
}
