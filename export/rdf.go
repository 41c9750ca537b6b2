// Package export serializes a closed schema store as Turtle, N-Triples or
// JSON-LD.
package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/c360studio/semschema/rdf"
	"github.com/c360studio/semschema/storage"
	vocab "github.com/c360studio/semschema/vocabulary/schema"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	for f, info := range FormatRegistry {
		if s == string(f) || "."+s == info.Extension {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Exporter serializes the statements of a store.
type Exporter struct {
	prefixes map[string]string
}

// NewExporter creates an exporter with the rdf, rdfs, owl and xsd prefixes.
// Extra prefixes are added on top.
func NewExporter(extra map[string]string) *Exporter {
	p := defaultPrefixes()
	for k, v := range extra {
		p[k] = v
	}
	return &Exporter{prefixes: p}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  vocab.RDFNamespace,
		"rdfs": vocab.RDFSNamespace,
		"owl":  vocab.OWLNamespace,
		"xsd":  vocab.XSDNamespace,
	}
}

// Export writes every statement of r to w in the given format. Output is
// ordered by subject, then predicate, then object.
func (e *Exporter) Export(w io.Writer, r storage.Reader, format Format) error {
	stmts := r.Match(rdf.Term{}, rdf.Term{}, rdf.Term{})
	slices.SortFunc(stmts, rdf.CompareStatements)

	switch format {
	case FormatTurtle:
		_, err := io.WriteString(w, e.toTurtle(stmts))
		return err
	case FormatNTriples:
		return e.toNTriples(w, stmts)
	case FormatJSONLD:
		_, err := io.WriteString(w, e.toJSONLD(stmts)+"\n")
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// toTurtle serializes to Turtle format.
func (e *Exporter) toTurtle(stmts []rdf.Statement) string {
	tw := NewTurtleWriter()
	for k, v := range e.prefixes {
		tw.SetPrefix(k, v)
	}
	tw.WritePrefixes()

	for i, group := range bySubject(stmts) {
		if i > 0 {
			tw.WriteBlank()
		}
		tw.WriteSubject(group[0].Subject)
		preds := byPredicate(group)
		for j, pg := range preds {
			objects := make([]rdf.Term, len(pg))
			for k, st := range pg {
				objects[k] = st.Object
			}
			tw.WritePredicate(pg[0].Predicate, objects, j == len(preds)-1)
		}
	}
	return tw.String()
}

// toNTriples serializes to N-Triples format.
func (e *Exporter) toNTriples(w io.Writer, stmts []rdf.Statement) error {
	nw := NewNTriplesWriter(w)
	for _, st := range stmts {
		if err := nw.WriteStatement(st); err != nil {
			return fmt.Errorf("write statement: %w", err)
		}
	}
	return nw.Close()
}

// toJSONLD serializes to JSON-LD format, one node per subject.
func (e *Exporter) toJSONLD(stmts []rdf.Statement) string {
	jw := NewJSONLDWriter()
	jw.SetContext(e.prefixes)

	for _, group := range bySubject(stmts) {
		var types []string
		props := make(map[string]any)
		for _, pg := range byPredicate(group) {
			pred := pg[0].Predicate
			if pred.Value == vocab.RDFType {
				for _, st := range pg {
					if st.Object.IsIRI() {
						types = append(types, st.Object.Value)
					}
				}
				continue
			}
			values := make([]any, len(pg))
			for i, st := range pg {
				values[i] = jsonLDValue(st.Object)
			}
			props[pred.Value] = values
		}
		jw.AddNode(nodeID(group[0].Subject), types, props)
	}
	return jw.String()
}

// nodeID renders a subject as a JSON-LD @id.
func nodeID(t rdf.Term) string {
	if t.IsBlank() {
		return "_:" + t.Value
	}
	return t.Value
}

// jsonLDValue renders an object as a JSON-LD node reference or value object.
func jsonLDValue(t rdf.Term) any {
	switch {
	case t.IsIRI() || t.IsBlank():
		return map[string]any{"@id": nodeID(t)}
	case t.Lang != "":
		return map[string]any{"@value": t.Value, "@language": t.Lang}
	case t.Datatype != "" && t.Datatype != vocab.XSDString:
		return map[string]any{"@value": t.Value, "@type": t.Datatype}
	default:
		return t.Value
	}
}

// bySubject splits sorted statements into runs sharing a subject.
func bySubject(stmts []rdf.Statement) [][]rdf.Statement {
	return runs(stmts, func(a, b rdf.Statement) bool { return a.Subject == b.Subject })
}

// byPredicate splits a subject run into runs sharing a predicate.
func byPredicate(stmts []rdf.Statement) [][]rdf.Statement {
	return runs(stmts, func(a, b rdf.Statement) bool { return a.Predicate == b.Predicate })
}

func runs(stmts []rdf.Statement, same func(a, b rdf.Statement) bool) [][]rdf.Statement {
	var out [][]rdf.Statement
	start := 0
	for i := 1; i <= len(stmts); i++ {
		if i == len(stmts) || !same(stmts[start], stmts[i]) {
			out = append(out, stmts[start:i])
			start = i
		}
	}
	return out
}
