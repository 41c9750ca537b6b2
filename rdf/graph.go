package rdf

import "sync"

// Graph is the raw, pre-closure statement set produced by ingestion.
// It only grows; duplicates are kept and collapse when copied into a store.
type Graph struct {
	mu         sync.RWMutex
	statements []Statement
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends statements to the graph.
func (g *Graph) Add(stmts ...Statement) {
	g.mu.Lock()
	g.statements = append(g.statements, stmts...)
	g.mu.Unlock()
}

// Len returns the number of statements, duplicates included.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.statements)
}

// Statements returns a copy of the statements in insertion order.
func (g *Graph) Statements() []Statement {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Statement, len(g.statements))
	copy(out, g.statements)
	return out
}
