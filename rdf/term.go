// Package rdf holds the statement model shared by ingestion, the schema
// store and the exporters.
package rdf

import (
	"strconv"
	"strings"
)

// Kind distinguishes the three RDF term kinds.
type Kind uint8

// Term kinds.
const (
	KindIRI Kind = iota + 1
	KindBlank
	KindLiteral
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is an RDF term. Terms are comparable and are used directly as map
// keys by the store.
type Term struct {
	Kind     Kind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(v string) Term {
	return Term{Kind: KindIRI, Value: v}
}

// Blank returns a blank node term with the given label (without "_:").
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal returns a literal term. Empty datatype and lang produce a plain
// string literal.
func Literal(value, datatype, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype, Lang: lang}
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports whether the term is unset.
func (t Term) IsZero() bool { return t.Kind == 0 }

// Key returns a string that identifies the term. IRIs map to their value,
// blank nodes to "_:label" and literals to their N-Triples form.
func (t Term) Key() string {
	switch t.Kind {
	case KindIRI:
		return t.Value
	case KindBlank:
		return "_:" + t.Value
	default:
		return t.String()
	}
}

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		var sb strings.Builder
		sb.WriteString(strconv.Quote(t.Value))
		if t.Lang != "" {
			sb.WriteString("@" + t.Lang)
		} else if t.Datatype != "" {
			sb.WriteString("^^<" + t.Datatype + ">")
		}
		return sb.String()
	default:
		return ""
	}
}

// Compare orders terms by kind (IRIs, then blank nodes, then literals) and
// then by key.
func Compare(a, b Term) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Key(), b.Key())
}
