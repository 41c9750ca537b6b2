// Package codegen emits Go source for the distinct classes of a closed
// schema: one type file and one support file per class, grouped into
// packages derived from the class IRIs.
package codegen

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	errors "github.com/c360studio/semstreams/pkg/errs"
)

// Mapping selects how a class IRI is turned into a package path below the
// base namespace.
type Mapping string

// Supported mappings.
const (
	// MappingReverseHost maps http://www.example.org/onto#A to org/example/onto.
	MappingReverseHost Mapping = "reverse-host"
	// MappingHostPath maps http://www.example.org/onto#A to example.org/onto.
	MappingHostPath Mapping = "host-path"
	// MappingFlat puts every class into the base package.
	MappingFlat Mapping = "flat"
)

// DefaultRuntimeImport is the package generated code embeds and registers
// with.
const DefaultRuntimeImport = "github.com/c360studio/semschema/resource"

// Config controls code emission.
type Config struct {
	// BaseNamespace is the Go import path all generated packages live
	// under. When empty it is derived from the go.mod enclosing the output
	// directory.
	BaseNamespace string `yaml:"base_namespace" json:"base_namespace"`

	Mapping Mapping `yaml:"mapping" json:"mapping"`

	// Aliases maps IRI prefixes to package paths relative to the base
	// namespace. The longest matching prefix wins over Mapping.
	Aliases map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Workers bounds how many classes are written concurrently.
	Workers int `yaml:"workers" json:"workers"`

	RuntimeImport string `yaml:"runtime_import,omitempty" json:"runtime_import,omitempty"`
}

// DefaultConfig returns sequential reverse-host emission.
func DefaultConfig() Config {
	return Config{
		Mapping:       MappingReverseHost,
		Workers:       1,
		RuntimeImport: DefaultRuntimeImport,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Mapping {
	case "", MappingReverseHost, MappingHostPath, MappingFlat:
	default:
		return errors.WrapInvalid(fmt.Errorf("unknown mapping %q", c.Mapping),
			"Config", "Validate", "check namespace mapping")
	}
	if c.Workers < 0 {
		return errors.WrapInvalid(fmt.Errorf("workers must not be negative, got %d", c.Workers),
			"Config", "Validate", "check workers")
	}
	if strings.HasPrefix(c.BaseNamespace, "/") || strings.HasSuffix(c.BaseNamespace, "/") {
		return errors.WrapInvalid(fmt.Errorf("base namespace %q must not start or end with /", c.BaseNamespace),
			"Config", "Validate", "check base namespace")
	}
	for prefix := range c.Aliases {
		if prefix == "" {
			return errors.WrapInvalid(fmt.Errorf("alias with empty IRI prefix"),
				"Config", "Validate", "check aliases")
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Mapping == "" {
		c.Mapping = MappingReverseHost
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.RuntimeImport == "" {
		c.RuntimeImport = DefaultRuntimeImport
	}
	return c
}

// alias returns the aliased package path for iri, if any prefix matches.
func (c Config) alias(iri string) (string, bool) {
	prefixes := slices.Collect(maps.Keys(c.Aliases))
	// Longest first, ties broken lexicographically.
	slices.SortFunc(prefixes, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	for _, p := range prefixes {
		if strings.HasPrefix(iri, p) {
			return strings.Trim(c.Aliases[p], "/"), true
		}
	}
	return "", false
}
