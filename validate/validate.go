// Package validate checks a raw schema graph for logical consistency before
// it is closed.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360studio/semschema/rdf"
)

// Severity grades a violation.
type Severity string

// Severities. Only errors make a report invalid.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation codes.
const (
	CodeDisjointClash = "disjoint-clash"
	CodeEmptyInstance = "empty-instance"
	CodeUnsatisfiable = "unsatisfiable-class"
)

// Violation is one finding of a consistency check.
type Violation struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

// Report is the outcome of a consistency check.
type Report struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Errors returns the error-severity violations.
func (r Report) Errors() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			out = append(out, v)
		}
	}
	return out
}

// Error summarizes the error-severity violations.
func (r Report) Error() string {
	errs := r.Errors()
	if len(errs) == 0 {
		return "schema is consistent"
	}
	msgs := make([]string, 0, len(errs))
	for _, v := range errs {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%d consistency violation(s): %s", len(errs), strings.Join(msgs, "; "))
}

// Reasoner checks a raw graph for consistency.
type Reasoner interface {
	Validate(ctx context.Context, g *rdf.Graph) (Report, error)
}

// ReasonerFunc adapts a function to the Reasoner interface.
type ReasonerFunc func(ctx context.Context, g *rdf.Graph) (Report, error)

// Validate calls f.
func (f ReasonerFunc) Validate(ctx context.Context, g *rdf.Graph) (Report, error) {
	return f(ctx, g)
}

// Noop accepts every graph.
var Noop Reasoner = ReasonerFunc(func(context.Context, *rdf.Graph) (Report, error) {
	return Report{Valid: true}, nil
})
