package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/semschema/rdf"
	"github.com/cayleygraph/quad/nquads"
	knakk "github.com/knakk/rdf"
)

// decoder turns one document into statements. scope prefixes blank node
// labels so documents never share blank nodes.
type decoder func(r io.Reader, base, scope string) ([]rdf.Statement, error)

func decoderFor(f Format) (decoder, error) {
	switch f {
	case FormatNTriples:
		return decodeNTriples, nil
	case FormatTurtle, FormatN3:
		return knakkDecoder(knakk.Turtle), nil
	case FormatRDFXML:
		return knakkDecoder(knakk.RDFXML), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func decodeNTriples(r io.Reader, _ string, scope string) ([]rdf.Statement, error) {
	qr := nquads.NewReader(r, true)

	var out []rdf.Statement
	for {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", len(out)+1, err)
		}
		st, err := rdf.FromQuad(q)
		if err != nil {
			return nil, err
		}
		out = append(out, scopeStatement(st, scope))
	}
}

func knakkDecoder(f knakk.Format) decoder {
	return func(r io.Reader, base, scope string) ([]rdf.Statement, error) {
		dec := knakk.NewTripleDecoder(r, f)
		if base != "" {
			iri, err := knakk.NewIRI(base)
			if err != nil {
				return nil, fmt.Errorf("base IRI %q: %w", base, err)
			}
			if err := dec.SetOption(knakk.Base, iri); err != nil {
				return nil, fmt.Errorf("set base IRI: %w", err)
			}
		}

		var out []rdf.Statement
		for {
			tr, err := dec.Decode()
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			st, err := fromKnakk(tr)
			if err != nil {
				return nil, err
			}
			out = append(out, scopeStatement(st, scope))
		}
	}
}

func fromKnakk(tr knakk.Triple) (rdf.Statement, error) {
	s, err := knakkTerm(tr.Subj)
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("subject: %w", err)
	}
	p, err := knakkTerm(tr.Pred)
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("predicate: %w", err)
	}
	o, err := knakkTerm(tr.Obj)
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("object: %w", err)
	}
	return rdf.Statement{Subject: s, Predicate: p, Object: o}, nil
}

func knakkTerm(t knakk.Term) (rdf.Term, error) {
	switch x := t.(type) {
	case knakk.IRI:
		return rdf.IRI(x.String()), nil
	case knakk.Blank:
		return rdf.Blank(strings.TrimPrefix(x.String(), "_:")), nil
	case knakk.Literal:
		datatype := x.DataType.String()
		if x.Lang() != "" || datatype == xsdString {
			datatype = ""
		}
		return rdf.Literal(x.String(), datatype, x.Lang()), nil
	default:
		return rdf.Term{}, fmt.Errorf("unsupported term %T", t)
	}
}

const xsdString = "http://www.w3.org/2001/XMLSchema#string"

func scopeStatement(st rdf.Statement, scope string) rdf.Statement {
	st.Subject = scopeTerm(st.Subject, scope)
	st.Object = scopeTerm(st.Object, scope)
	return st
}

func scopeTerm(t rdf.Term, scope string) rdf.Term {
	if !t.IsBlank() || scope == "" {
		return t
	}
	return rdf.Blank(scope + "-" + t.Value)
}
