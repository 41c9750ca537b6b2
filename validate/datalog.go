package validate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/vocabulary/schema"
	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// DefaultFactLimit bounds the number of derived facts per evaluation.
const DefaultFactLimit = 2_000_000

// programTemplate derives subsumption from subClassOf and equivalentClass,
// propagates rdf:type along it and reports clashes.
const programTemplate = `
Decl triple(S, P, O).

subclass(X, Y) :- triple(X, %[1]q, Y).
subclass(X, Y) :- triple(X, %[2]q, Y).
subclass(Y, X) :- triple(X, %[2]q, Y).
subclass(X, Z) :- subclass(X, Y), subclass(Y, Z).

disjoint(X, Y) :- triple(X, %[3]q, Y).
disjoint(Y, X) :- triple(X, %[3]q, Y).
disjoint(X, Y) :- triple(X, %[4]q, Y).
disjoint(Y, X) :- triple(X, %[4]q, Y).

instance_of(I, C) :- triple(I, %[5]q, C).
instance_of(I, D) :- instance_of(I, C), subclass(C, D).

clash(I, C, D) :- instance_of(I, C), instance_of(I, D), disjoint(C, D).
empty_instance(I) :- instance_of(I, %[6]q).

unsatisfiable(C, D) :- subclass(C, D), disjoint(C, D).
unsatisfiable(C, E) :- subclass(C, D), subclass(C, E), disjoint(D, E).
unsatisfiable(C, %[6]q) :- subclass(C, %[6]q).
`

// DatalogReasoner runs a Datalog consistency program over the raw graph.
type DatalogReasoner struct {
	logger    *slog.Logger
	factLimit int
	program   *analysis.ProgramInfo
}

// NewDatalogReasoner parses and analyzes the consistency program.
func NewDatalogReasoner(logger *slog.Logger) (*DatalogReasoner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src := fmt.Sprintf(programTemplate,
		schema.RDFSSubClassOf,
		schema.OWLEquivalentClass,
		schema.OWLDisjointWith,
		schema.OWLComplementOf,
		schema.RDFType,
		schema.OWLNothing,
	)
	unit, err := parse.Unit(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse consistency program: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze consistency program: %w", err)
	}

	return &DatalogReasoner{
		logger:    logger,
		factLimit: DefaultFactLimit,
		program:   info,
	}, nil
}

// Validate loads the graph as triple facts, evaluates to fixpoint and turns
// the derived clash facts into a report.
func (r *DatalogReasoner) Validate(ctx context.Context, g *rdf.Graph) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, st := range g.Statements() {
		store.Add(ast.NewAtom("triple",
			ast.String(st.Subject.Key()),
			ast.String(st.Predicate.Key()),
			ast.String(st.Object.Key())))
	}

	if err := engine.EvalProgram(r.program, store, engine.WithCreatedFactLimit(r.factLimit)); err != nil {
		return Report{}, fmt.Errorf("evaluate consistency program: %w", err)
	}

	var violations []Violation
	seen := make(map[string]struct{})
	add := func(v Violation) {
		key := v.Code + "|" + v.Message
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		violations = append(violations, v)
	}

	query(store, "clash", 3, func(args []string) {
		c, d := args[1], args[2]
		if d < c {
			c, d = d, c
		}
		add(Violation{
			Code:     CodeDisjointClash,
			Severity: SeverityError,
			Subject:  args[0],
			Message:  fmt.Sprintf("%s is an instance of disjoint classes %s and %s", args[0], c, d),
		})
	})
	query(store, "empty_instance", 1, func(args []string) {
		add(Violation{
			Code:     CodeEmptyInstance,
			Severity: SeverityError,
			Subject:  args[0],
			Message:  fmt.Sprintf("%s is an instance of %s", args[0], schema.OWLNothing),
		})
	})
	query(store, "unsatisfiable", 2, func(args []string) {
		add(Violation{
			Code:     CodeUnsatisfiable,
			Severity: SeverityWarning,
			Subject:  args[0],
			Message:  fmt.Sprintf("class %s can have no instances (via %s)", args[0], args[1]),
		})
	})

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Severity != violations[j].Severity {
			return violations[i].Severity == SeverityError
		}
		return violations[i].Message < violations[j].Message
	})

	report := Report{Valid: true, Violations: violations}
	for _, v := range violations {
		if v.Severity == SeverityError {
			report.Valid = false
			break
		}
	}

	r.logger.Debug("Consistency check complete",
		"statements", g.Len(),
		"violations", len(violations),
		"valid", report.Valid)
	return report, nil
}

func query(store factstore.FactStore, pred string, arity int, fn func(args []string)) {
	_ = store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: pred, Arity: arity}), func(a ast.Atom) error {
		args := make([]string, len(a.Args))
		for i, arg := range a.Args {
			if c, ok := arg.(ast.Constant); ok {
				args[i] = c.Symbol
			}
		}
		fn(args)
		return nil
	})
}
