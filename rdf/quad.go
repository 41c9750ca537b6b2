package rdf

import (
	"fmt"

	"github.com/cayleygraph/quad"
)

// FromQuadValue converts a cayley quad value into a Term.
func FromQuadValue(v quad.Value) (Term, error) {
	switch x := v.(type) {
	case quad.IRI:
		return IRI(string(x.Full())), nil
	case quad.BNode:
		return Blank(string(x)), nil
	case quad.String:
		return Literal(string(x), "", ""), nil
	case quad.TypedString:
		return Literal(string(x.Value), string(x.Type.Full()), ""), nil
	case quad.LangString:
		return Literal(string(x.Value), "", x.Lang), nil
	case quad.TypedStringer:
		typed := x.TypedString()
		return Literal(string(typed.Value), string(typed.Type.Full()), ""), nil
	case nil:
		return Term{}, fmt.Errorf("empty quad value")
	default:
		return Term{}, fmt.Errorf("unsupported quad value %T", v)
	}
}

// QuadValue converts the term into a cayley quad value.
func (t Term) QuadValue() quad.Value {
	switch t.Kind {
	case KindIRI:
		return quad.IRI(t.Value)
	case KindBlank:
		return quad.BNode(t.Value)
	case KindLiteral:
		if t.Lang != "" {
			return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}
		}
		if t.Datatype != "" {
			return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
		}
		return quad.String(t.Value)
	default:
		return nil
	}
}

// FromQuad converts a cayley quad into a Statement. The label is dropped.
func FromQuad(q quad.Quad) (Statement, error) {
	s, err := FromQuadValue(q.Subject)
	if err != nil {
		return Statement{}, fmt.Errorf("subject: %w", err)
	}
	p, err := FromQuadValue(q.Predicate)
	if err != nil {
		return Statement{}, fmt.Errorf("predicate: %w", err)
	}
	o, err := FromQuadValue(q.Object)
	if err != nil {
		return Statement{}, fmt.Errorf("object: %w", err)
	}
	return Statement{Subject: s, Predicate: p, Object: o}, nil
}

// Quad converts the statement into a cayley quad in the default graph.
func (s Statement) Quad() quad.Quad {
	return quad.Quad{
		Subject:   s.Subject.QuadValue(),
		Predicate: s.Predicate.QuadValue(),
		Object:    s.Object.QuadValue(),
	}
}
