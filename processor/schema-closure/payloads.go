package schemaclosure

import (
	"encoding/json"
	"errors"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "schema",
		Category:    "document",
		Version:     "v1",
		Description: "Schema document to be closed",
		Factory:     func() any { return &DocumentPayload{} },
	})
	if err != nil {
		panic("failed to register DocumentPayload: " + err.Error())
	}

	err = component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "schema",
		Category:    "closure",
		Version:     "v1",
		Description: "Serialized closed schema",
		Factory:     func() any { return &ClosurePayload{} },
	})
	if err != nil {
		panic("failed to register ClosurePayload: " + err.Error())
	}
}

// DocumentType is the message type for schema documents.
var DocumentType = message.Type{Domain: "schema", Category: "document", Version: "v1"}

// ClosureType is the message type for closure output.
var ClosureType = message.Type{Domain: "schema", Category: "closure", Version: "v1"}

// DocumentPayload carries one schema document.
type DocumentPayload struct {
	// Source names the document, e.g. a file name or URL
	Source  string `json:"source"`
	BaseIRI string `json:"base_iri,omitempty"`
	// Format is a format token; empty infers from Source
	Format  string `json:"format,omitempty"`
	Content string `json:"content"`
}

// Schema returns the message type for Payload interface.
func (p *DocumentPayload) Schema() message.Type { return DocumentType }

// Validate validates the payload for Payload interface.
func (p *DocumentPayload) Validate() error {
	if p.Source == "" {
		return errors.New("source is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *DocumentPayload) MarshalJSON() ([]byte, error) {
	type Alias DocumentPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *DocumentPayload) UnmarshalJSON(data []byte) error {
	type Alias DocumentPayload
	return json.Unmarshal(data, (*Alias)(p))
}

// ClosurePayload is the serialized store after a rebuild.
type ClosurePayload struct {
	Sources    []string `json:"sources"`
	Format     string   `json:"format"`
	Statements int      `json:"statements"`
	Classes    int      `json:"classes"`
	Content    string   `json:"content"`
}

// Schema returns the message type for Payload interface.
func (p *ClosurePayload) Schema() message.Type { return ClosureType }

// Validate validates the payload for Payload interface.
func (p *ClosurePayload) Validate() error {
	if p.Format == "" {
		return errors.New("format is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *ClosurePayload) MarshalJSON() ([]byte, error) {
	type Alias ClosurePayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ClosurePayload) UnmarshalJSON(data []byte) error {
	type Alias ClosurePayload
	return json.Unmarshal(data, (*Alias)(p))
}
