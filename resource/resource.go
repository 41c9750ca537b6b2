// Package resource is the runtime contract generated classes compile
// against.
package resource

import (
	"fmt"
	"slices"
	"sync"
)

// Object is implemented by every generated class.
type Object interface {
	IRI() string
	Types() []string
}

// Resource carries the identity of an instance. Generated structs embed it.
type Resource struct {
	ID string `json:"@id"`
}

// IRI returns the instance identifier.
func (r *Resource) IRI() string {
	if r == nil {
		return ""
	}
	return r.ID
}

// SetIRI sets the instance identifier.
func (r *Resource) SetIRI(iri string) {
	r.ID = iri
}

// Constructor creates an instance identified by iri.
type Constructor func(iri string) Object

var (
	mu       sync.RWMutex
	registry = make(map[string]Constructor)
)

// Register binds a class IRI to its constructor. Registering the same IRI
// twice panics, as it does for duplicate flags or drivers.
func Register(classIRI string, c Constructor) {
	if c == nil {
		panic("resource: Register constructor is nil")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[classIRI]; dup {
		panic(fmt.Sprintf("resource: Register called twice for %s", classIRI))
	}
	registry[classIRI] = c
}

// New creates an instance of the class registered under classIRI.
func New(classIRI, iri string) (Object, error) {
	mu.RLock()
	c, ok := registry[classIRI]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resource: unknown class %s", classIRI)
	}
	return c(iri), nil
}

// Registered returns the registered class IRIs, sorted.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
