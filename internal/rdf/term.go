// Package rdf is the in-memory triple set the plugin queries, rewrites and renders.
package rdf

import (
	"strconv"
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// TermKind discriminates the three RDF term shapes
type TermKind uint8

const (
	KindNone TermKind = iota
	KindIRI
	KindBlank
	KindLiteral
)

// Term is an IRI, blank node or literal. The zero Term matches anything in Match.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string // literals only; empty means xsd:string
	Lang     string
}

// Any is the wildcard term
var Any = Term{}

func IRI(v string) Term   { return Term{Kind: KindIRI, Value: v} }
func Blank(id string) Term { return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, "_:")} }
func Literal(v string) Term {
	return Term{Kind: KindLiteral, Value: v}
}

// TypedLiteral builds a literal with a datatype. xsd:string collapses to a plain literal.
func TypedLiteral(v, datatype string) Term {
	if datatype == vocab.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: lang}
}

func (t Term) IsZero() bool    { return t.Kind == KindNone }
func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsResource reports whether the term can be a graph node (IRI or blank)
func (t Term) IsResource() bool { return t.Kind == KindIRI || t.Kind == KindBlank }

// String renders the term in N-Triples syntax
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := strconv.Quote(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	}
	return "*"
}

// Local returns the part of an IRI after the last '#' or '/'
func (t Term) Local() string {
	if t.Kind != KindIRI {
		return t.Value
	}
	if i := strings.LastIndexAny(t.Value, "#/"); i >= 0 && i < len(t.Value)-1 {
		return t.Value[i+1:]
	}
	return t.Value
}

func (t Term) matches(pattern Term) bool {
	return pattern.Kind == KindNone || t == pattern
}

// Triple is one subject-predicate-object statement
type Triple struct {
	S, P, O Term
}

func T(s, p, o Term) Triple { return Triple{S: s, P: p, O: o} }

func (t Triple) String() string {
	return t.S.String() + " " + t.P.String() + " " + t.O.String() + " ."
}

func (t Triple) less(u Triple) bool {
	if a, b := t.S.String(), u.S.String(); a != b {
		return a < b
	}
	if a, b := t.P.String(), u.P.String(); a != b {
		return a < b
	}
	return t.O.String() < u.O.String()
}
