// Package graph publishes class and property descriptors to the knowledge
// graph so downstream consumers see the schema the code was generated from.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/c360studio/semschema/schema"
	vocab "github.com/c360studio/semschema/vocabulary/schema"
	"github.com/c360studio/semstreams/message"
	"github.com/google/uuid"
)

// GraphIngestSubject is the subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// Source tags every published triple.
const Source = "semschema.generate"

// Publisher sends data to a JetStream subject. *natsclient.Client
// implements it.
type Publisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// WithSubject returns a Publisher that sends everything to subject instead
// of the subject it is given.
func WithSubject(p Publisher, subject string) Publisher {
	return subjectPublisher{p: p, subject: subject}
}

type subjectPublisher struct {
	p       Publisher
	subject string
}

func (s subjectPublisher) PublishToStream(ctx context.Context, _ string, data []byte) error {
	return s.p.PublishToStream(ctx, s.subject, data)
}

// Descriptors is the read side the publisher needs.
type Descriptors interface {
	DistinctClasses() []schema.ClassDescriptor
	Properties() []schema.PropertyDescriptor
}

// PublishSchema publishes every distinct class and every property and
// returns how many entities were sent. A nil publisher publishes nothing.
func PublishSchema(ctx context.Context, p Publisher, d Descriptors) (int, error) {
	if p == nil {
		return 0, nil // Skip publishing if no NATS client (graceful degradation)
	}

	n := 0
	for _, c := range d.DistinctClasses() {
		if err := publish(ctx, p, ClassPayload(c, time.Now())); err != nil {
			return n, fmt.Errorf("publish class %s: %w", c.IRI, err)
		}
		n++
	}
	for _, prop := range d.Properties() {
		if err := publish(ctx, p, PropertyPayload(prop, time.Now())); err != nil {
			return n, fmt.Errorf("publish property %s: %w", prop.IRI, err)
		}
		n++
	}
	return n, nil
}

func publish(ctx context.Context, p Publisher, payload *DescriptorPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal descriptor entity: %w", err)
	}
	if err := p.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish descriptor entity: %w", err)
	}
	return nil
}

// ClassPayload converts a class descriptor to an entity payload.
func ClassPayload(c schema.ClassDescriptor, now time.Time) *DescriptorPayload {
	id := ClassEntityID(c.IRI)
	b := tripleBuilder{subject: id, now: now}
	b.add(vocab.SchemaType, "class")
	b.add(vocab.SchemaIRI, c.IRI)
	b.addIf(vocab.SchemaLabel, c.Label)
	b.addIf(vocab.SchemaComment, c.Comment)
	for _, s := range c.SuperClasses {
		b.add(vocab.ClassSubClassOf, ClassEntityID(s))
	}
	for _, e := range c.EquivalentClasses {
		b.add(vocab.ClassEquivalentTo, ClassEntityID(e))
	}
	for _, d := range c.DisjointWith {
		b.add(vocab.ClassDisjointWith, ClassEntityID(d))
	}
	b.add(vocab.ClassLiteral, strconv.FormatBool(c.Literal))
	return &DescriptorPayload{EntityID_: id, TripleData: b.triples, UpdatedAt: now}
}

// PropertyPayload converts a property descriptor to an entity payload.
func PropertyPayload(p schema.PropertyDescriptor, now time.Time) *DescriptorPayload {
	id := PropertyEntityID(p.IRI)
	b := tripleBuilder{subject: id, now: now}
	b.add(vocab.SchemaType, "property")
	b.add(vocab.SchemaIRI, p.IRI)
	b.addIf(vocab.SchemaLabel, p.Label)
	b.addIf(vocab.SchemaComment, p.Comment)
	for _, d := range p.Domains {
		b.add(vocab.PropertyDomain, ClassEntityID(d))
	}
	for _, r := range p.Ranges {
		b.add(vocab.PropertyRange, ClassEntityID(r))
	}
	for _, s := range p.SuperProperties {
		b.add(vocab.PropertySubPropertyOf, PropertyEntityID(s))
	}
	for _, i := range p.InverseOf {
		b.add(vocab.PropertyInverseOf, PropertyEntityID(i))
	}
	b.add(vocab.PropertyDatatype, strconv.FormatBool(p.Datatype))
	return &DescriptorPayload{EntityID_: id, TripleData: b.triples, UpdatedAt: now}
}

// ClassEntityID generates a stable entity ID for a class IRI.
// Format: semschema.local.schema.class.<uuid5 of iri>
func ClassEntityID(iri string) string {
	return fmt.Sprintf("semschema.local.schema.class.%s", uuid.NewSHA1(uuid.NameSpaceURL, []byte(iri)))
}

// PropertyEntityID generates a stable entity ID for a property IRI.
// Format: semschema.local.schema.property.<uuid5 of iri>
func PropertyEntityID(iri string) string {
	return fmt.Sprintf("semschema.local.schema.property.%s", uuid.NewSHA1(uuid.NameSpaceURL, []byte(iri)))
}

type tripleBuilder struct {
	subject string
	now     time.Time
	triples []message.Triple
}

func (b *tripleBuilder) add(predicate string, object any) {
	b.triples = append(b.triples, message.Triple{
		Subject:    b.subject,
		Predicate:  predicate,
		Object:     object,
		Source:     Source,
		Timestamp:  b.now,
		Confidence: 1.0,
	})
}

func (b *tripleBuilder) addIf(predicate, object string) {
	if object != "" {
		b.add(predicate, object)
	}
}
