package schemaclosure

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the schema-closure processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "schema-closure",
		Factory:     NewComponent,
		Schema:      schemaClosureSchema,
		Type:        "processor",
		Protocol:    "rdf",
		Domain:      "schema",
		Description: "Closes streamed RDFS/OWL schema documents and publishes the result",
		Version:     "1.0.0",
	})
}
