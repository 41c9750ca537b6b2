package normalize

import (
	"slices"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/vocabulary/schema"
)

// arena is an index-based subclass graph. Node i is nodes[i]; adj[i] lists
// the direct super-classes of node i.
type arena struct {
	nodes []rdf.Term
	index map[rdf.Term]int
	adj   [][]int
}

// newArena collects every named class node (typed rdfs:Class or on either side of
// subClassOf) in term order, so component discovery is deterministic.
func newArena(r storage.Reader) *arena {
	seen := make(map[rdf.Term]struct{})
	var nodes []rdf.Term
	add := func(t rdf.Term) {
		if !t.IsIRI() {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		nodes = append(nodes, t)
	}

	for _, c := range r.Subjects(schema.TypeTerm, schema.ClassTerm) {
		add(c)
	}
	edges := r.Match(rdf.Term{}, schema.SubClassOfTerm, rdf.Term{})
	for _, st := range edges {
		add(st.Subject)
		add(st.Object)
	}
	slices.SortFunc(nodes, rdf.Compare)

	a := &arena{
		nodes: nodes,
		index: make(map[rdf.Term]int, len(nodes)),
		adj:   make([][]int, len(nodes)),
	}
	for i, t := range nodes {
		a.index[t] = i
	}
	for _, st := range edges {
		from, okFrom := a.index[st.Subject]
		to, okTo := a.index[st.Object]
		if okFrom && okTo {
			a.adj[from] = append(a.adj[from], to)
		}
	}
	for i := range a.adj {
		slices.Sort(a.adj[i])
	}
	return a
}

// components returns the strongly connected components of the arena using
// Tarjan's algorithm with an explicit call stack.
func (a *arena) components() [][]int {
	n := len(a.nodes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	type frame struct {
		v    int
		next int
	}

	var (
		stack   []int
		out     [][]int
		counter int
	)
	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
	}

	for root := range n {
		if index[root] != -1 {
			continue
		}
		visit(root)
		calls := []frame{{v: root}}

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.v
			if top.next < len(a.adj[v]) {
				w := a.adj[v][top.next]
				top.next++
				if index[w] == -1 {
					visit(w)
					calls = append(calls, frame{v: w})
				} else if onStack[w] {
					low[v] = min(low[v], index[w])
				}
				continue
			}

			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].v
				low[parent] = min(low[parent], low[v])
			}
			if low[v] != index[v] {
				continue
			}

			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			slices.Sort(comp)
			out = append(out, comp)
		}
	}
	return out
}
