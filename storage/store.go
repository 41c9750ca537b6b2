// Package storage provides the indexed statement store the closure engine
// writes into, plus snapshots of a closed store in NATS KV.
package storage

import (
	"cmp"
	"slices"
	"sync"

	"github.com/c360studio/semschema/rdf"
)

// Reader is the read side of a statement store.
type Reader interface {
	// Match returns statements matching the pattern in insertion order.
	// A zero term is a wildcard.
	Match(s, p, o rdf.Term) []rdf.Statement
	Has(st rdf.Statement) bool
	Objects(s, p rdf.Term) []rdf.Term
	Subjects(p, o rdf.Term) []rdf.Term
	Len() int
}

// Writer adds write access to a Reader.
type Writer interface {
	Reader
	// Add inserts statements and returns how many were new.
	Add(stmts ...rdf.Statement) int
	// Remove deletes statements and returns how many were present.
	Remove(stmts ...rdf.Statement) int
}

// Store is an in-memory statement set with subject, predicate and object
// indexes. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state *index
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newIndex()}
}

// Add inserts statements and returns how many were new.
func (s *Store) Add(stmts ...rdf.Statement) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.add(stmts)
}

// Remove deletes statements and returns how many were present.
func (s *Store) Remove(stmts ...rdf.Statement) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.remove(stmts)
}

// Match returns statements matching the pattern in insertion order.
func (s *Store) Match(subj, pred, obj rdf.Term) []rdf.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.match(subj, pred, obj)
}

// Has reports whether the statement is present.
func (s *Store) Has(st rdf.Statement) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.stmts[st]
	return ok
}

// Objects returns the distinct objects of statements with the given subject
// and predicate.
func (s *Store) Objects(subj, pred rdf.Term) []rdf.Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.objects(subj, pred)
}

// Subjects returns the distinct subjects of statements with the given
// predicate and object.
func (s *Store) Subjects(pred, obj rdf.Term) []rdf.Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.subjects(pred, obj)
}

// Len returns the number of distinct statements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.stmts)
}

// Statements returns every statement in insertion order.
func (s *Store) Statements() []rdf.Statement {
	return s.Match(rdf.Term{}, rdf.Term{}, rdf.Term{})
}

// Reset replaces the contents of the store with stmts.
func (s *Store) Reset(stmts ...rdf.Statement) {
	ix := newIndex()
	ix.add(stmts)

	s.mu.Lock()
	s.state = ix
	s.mu.Unlock()
}

// Update runs fn against a private copy of the store and publishes the copy
// only if fn returns nil. Readers never observe a partially applied batch.
// fn must use the supplied Tx and not call back into the Store.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// Tx is the working copy handed to Update callbacks.
type Tx struct {
	state *index
}

// Add inserts statements into the batch.
func (tx *Tx) Add(stmts ...rdf.Statement) int { return tx.state.add(stmts) }

// Remove deletes statements in the batch.
func (tx *Tx) Remove(stmts ...rdf.Statement) int { return tx.state.remove(stmts) }

// Match queries the batch state, pending changes included.
func (tx *Tx) Match(s, p, o rdf.Term) []rdf.Statement { return tx.state.match(s, p, o) }

// Has reports whether the batch state holds the statement.
func (tx *Tx) Has(st rdf.Statement) bool {
	_, ok := tx.state.stmts[st]
	return ok
}

// Objects returns distinct objects in the batch state.
func (tx *Tx) Objects(s, p rdf.Term) []rdf.Term { return tx.state.objects(s, p) }

// Subjects returns distinct subjects in the batch state.
func (tx *Tx) Subjects(p, o rdf.Term) []rdf.Term { return tx.state.subjects(p, o) }

// Len returns the number of statements in the batch state.
func (tx *Tx) Len() int { return len(tx.state.stmts) }

type stmtSet map[rdf.Statement]struct{}

type index struct {
	seq         uint64
	stmts       map[rdf.Statement]uint64
	bySubject   map[rdf.Term]stmtSet
	byPredicate map[rdf.Term]stmtSet
	byObject    map[rdf.Term]stmtSet
}

func newIndex() *index {
	return &index{
		stmts:       make(map[rdf.Statement]uint64),
		bySubject:   make(map[rdf.Term]stmtSet),
		byPredicate: make(map[rdf.Term]stmtSet),
		byObject:    make(map[rdf.Term]stmtSet),
	}
}

func (ix *index) clone() *index {
	c := &index{
		seq:         ix.seq,
		stmts:       make(map[rdf.Statement]uint64, len(ix.stmts)),
		bySubject:   make(map[rdf.Term]stmtSet, len(ix.bySubject)),
		byPredicate: make(map[rdf.Term]stmtSet, len(ix.byPredicate)),
		byObject:    make(map[rdf.Term]stmtSet, len(ix.byObject)),
	}
	for st, n := range ix.stmts {
		c.stmts[st] = n
		link(c.bySubject, st.Subject, st)
		link(c.byPredicate, st.Predicate, st)
		link(c.byObject, st.Object, st)
	}
	return c
}

func (ix *index) add(stmts []rdf.Statement) int {
	added := 0
	for _, st := range stmts {
		if _, ok := ix.stmts[st]; ok {
			continue
		}
		ix.seq++
		ix.stmts[st] = ix.seq
		link(ix.bySubject, st.Subject, st)
		link(ix.byPredicate, st.Predicate, st)
		link(ix.byObject, st.Object, st)
		added++
	}
	return added
}

func (ix *index) remove(stmts []rdf.Statement) int {
	removed := 0
	for _, st := range stmts {
		if _, ok := ix.stmts[st]; !ok {
			continue
		}
		delete(ix.stmts, st)
		unlink(ix.bySubject, st.Subject, st)
		unlink(ix.byPredicate, st.Predicate, st)
		unlink(ix.byObject, st.Object, st)
		removed++
	}
	return removed
}

func (ix *index) match(s, p, o rdf.Term) []rdf.Statement {
	var candidates stmtSet
	pick := func(m map[rdf.Term]stmtSet, t rdf.Term) bool {
		if t.IsZero() {
			return true
		}
		set := m[t]
		if candidates == nil || len(set) < len(candidates) {
			candidates = set
		}
		return len(set) > 0
	}
	if !pick(ix.bySubject, s) || !pick(ix.byPredicate, p) || !pick(ix.byObject, o) {
		return nil
	}

	var out []rdf.Statement
	keep := func(st rdf.Statement) {
		if (s.IsZero() || st.Subject == s) &&
			(p.IsZero() || st.Predicate == p) &&
			(o.IsZero() || st.Object == o) {
			out = append(out, st)
		}
	}
	if candidates == nil {
		for st := range ix.stmts {
			keep(st)
		}
	} else {
		for st := range candidates {
			keep(st)
		}
	}
	slices.SortFunc(out, func(a, b rdf.Statement) int {
		return cmp.Compare(ix.stmts[a], ix.stmts[b])
	})
	return out
}

func (ix *index) objects(s, p rdf.Term) []rdf.Term {
	return distinct(ix.match(s, p, rdf.Term{}), func(st rdf.Statement) rdf.Term { return st.Object })
}

func (ix *index) subjects(p, o rdf.Term) []rdf.Term {
	return distinct(ix.match(rdf.Term{}, p, o), func(st rdf.Statement) rdf.Term { return st.Subject })
}

func distinct(stmts []rdf.Statement, pick func(rdf.Statement) rdf.Term) []rdf.Term {
	seen := make(map[rdf.Term]struct{}, len(stmts))
	out := make([]rdf.Term, 0, len(stmts))
	for _, st := range stmts {
		t := pick(st)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func link(m map[rdf.Term]stmtSet, t rdf.Term, st rdf.Statement) {
	set, ok := m[t]
	if !ok {
		set = make(stmtSet)
		m[t] = set
	}
	set[st] = struct{}{}
}

func unlink(m map[rdf.Term]stmtSet, t rdf.Term, st rdf.Statement) {
	set := m[t]
	delete(set, st)
	if len(set) == 0 {
		delete(m, t)
	}
}
