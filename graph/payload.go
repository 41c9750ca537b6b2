package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "schema",
		Category:    "descriptor",
		Version:     "v1",
		Description: "Class or property descriptor for graph ingestion",
		Factory:     func() any { return &DescriptorPayload{} },
	})
	if err != nil {
		panic("failed to register DescriptorPayload: " + err.Error())
	}
}

// DescriptorType is the message type for descriptor payloads.
var DescriptorType = message.Type{Domain: "schema", Category: "descriptor", Version: "v1"}

// DescriptorPayload carries the triples of one class or property descriptor.
type DescriptorPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *DescriptorPayload) EntityID() string          { return p.EntityID_ }
func (p *DescriptorPayload) Triples() []message.Triple { return p.TripleData }
func (p *DescriptorPayload) Schema() message.Type      { return DescriptorType }

func (p *DescriptorPayload) Validate() error {
	if p.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(p.TripleData) == 0 {
		return errors.New("at least one triple is required")
	}
	return nil
}

func (p *DescriptorPayload) MarshalJSON() ([]byte, error) {
	type Alias DescriptorPayload
	return json.Marshal((*Alias)(p))
}

func (p *DescriptorPayload) UnmarshalJSON(data []byte) error {
	type Alias DescriptorPayload
	return json.Unmarshal(data, (*Alias)(p))
}
