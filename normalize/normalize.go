// Package normalize collapses cycles in the subclass graph into a single
// representative class.
package normalize

import (
	"context"
	"log/slog"
	"slices"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	"github.com/c360studio/semschema/vocabulary/schema"
)

// Result summarizes a normalization pass.
type Result struct {
	// Components is the number of cycles collapsed.
	Components int
	// Merged is the number of classes folded into a representative.
	Merged int
	// Representatives maps each surviving root to the classes merged into it.
	Representatives map[string][]string
}

// Normalizer collapses subclass cycles.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize finds every subclass cycle in s and folds each into one root.
// All rewrites happen in a single store batch: on error the store is left
// exactly as it was.
func (n *Normalizer) Normalize(ctx context.Context, s *storage.Store) (Result, error) {
	var res Result
	err := s.Update(func(tx *storage.Tx) error {
		var err error
		res, err = n.apply(ctx, tx)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	n.logger.Debug("Equivalence components normalized",
		"components", res.Components,
		"merged", res.Merged)
	return res, nil
}

func (n *Normalizer) apply(ctx context.Context, w storage.Writer) (Result, error) {
	res := Result{Representatives: make(map[string][]string)}
	a := newArena(w)

	for _, comp := range a.components() {
		if len(comp) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		members := make([]rdf.Term, len(comp))
		for i, idx := range comp {
			members[i] = a.nodes[idx]
		}
		root := Root(members)

		for _, m := range members {
			if m == root {
				continue
			}
			Merge(w, m, root)
			res.Representatives[root.Key()] = append(res.Representatives[root.Key()], m.Key())
			res.Merged++
		}
		res.Components++

		n.logger.Debug("Component collapsed",
			"root", root.Key(),
			"members", len(members))
	}
	return res, nil
}

// Root picks the representative of a component: reserved-vocabulary IRIs
// first, then other IRIs, then blank nodes, each group ordered by
// identifier.
func Root(members []rdf.Term) rdf.Term {
	return slices.MinFunc(members, func(a, b rdf.Term) int {
		ra, rb := schema.IsReservedTerm(a), schema.IsReservedTerm(b)
		if ra != rb {
			if ra {
				return -1
			}
			return 1
		}
		return rdf.Compare(a, b)
	})
}

// Merge copies every statement about m onto root, in subject and object
// position, then deletes every statement mentioning m. Subclass and
// equivalence edges that the rewrite turns into self-loops are dropped.
func Merge(w storage.Writer, m, root rdf.Term) {
	outgoing := w.Match(m, rdf.Term{}, rdf.Term{})
	incoming := w.Match(rdf.Term{}, rdf.Term{}, m)

	var rewritten []rdf.Statement
	for _, st := range outgoing {
		rewritten = append(rewritten, rewrite(st, m, root))
	}
	for _, st := range incoming {
		rewritten = append(rewritten, rewrite(st, m, root))
	}

	w.Remove(outgoing...)
	w.Remove(incoming...)

	kept := rewritten[:0]
	for _, st := range rewritten {
		if st.Subject == st.Object && (st.Predicate == schema.SubClassOfTerm || st.Predicate == schema.EquivalentClassTerm) {
			continue
		}
		kept = append(kept, st)
	}
	w.Add(kept...)
}

func rewrite(st rdf.Statement, m, root rdf.Term) rdf.Statement {
	if st.Subject == m {
		st.Subject = root
	}
	if st.Object == m {
		st.Object = root
	}
	return st
}
