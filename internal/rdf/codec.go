package rdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	knakk "github.com/knakk/rdf"

	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// Format is a triple serialization
type Format int

const (
	Turtle Format = iota
	NTriples
	NQuads
)

func (f Format) knakk() knakk.Format {
	switch f {
	case NTriples:
		return knakk.NTriples
	case NQuads:
		return knakk.NQuads
	}
	return knakk.Turtle
}

// FormatForPath picks a format from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return Turtle, nil
	case ".nt":
		return NTriples, nil
	case ".nq":
		return NQuads, nil
	}
	return 0, fmt.Errorf("unsupported RDF file extension: %s", path)
}

// Parse decodes a triple stream into a new graph. Quads are flattened into the
// default graph. Spaces inside IRI references are percent-encoded first; the
// request filters reject such entries later.
func Parse(r io.Reader, f Format) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading triples: %w", err)
	}
	data, _ = escapeBracketedSpaces(data)
	r = bytes.NewReader(data)

	g := NewGraph()
	if f == NQuads {
		dec := knakk.NewQuadDecoder(r, knakk.NQuads)
		for {
			q, err := dec.Decode()
			if errors.Is(err, io.EOF) {
				return g, nil
			}
			if err != nil {
				return nil, fmt.Errorf("decoding n-quads: %w", err)
			}
			t, err := fromKnakk(q.Triple)
			if err != nil {
				return nil, err
			}
			g.Add(t)
		}
	}

	dec := knakk.NewTripleDecoder(r, f.knakk())
	for {
		kt, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding triples: %w", err)
		}
		t, err := fromKnakk(kt)
		if err != nil {
			return nil, err
		}
		g.Add(t)
	}
}

// ParseString is Parse over an in-memory document
func ParseString(s string, f Format) (*Graph, error) {
	return Parse(strings.NewReader(s), f)
}

// LoadFile parses a .ttl, .nt or .nq file
func LoadFile(path string) (*Graph, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	g, err := Parse(file, f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return g, nil
}

// Write serializes the graph in deterministic order. Turtle output uses the
// graph's prefix bindings.
func (g *Graph) Write(w io.Writer, f Format) error {
	if f == NQuads {
		f = NTriples
	}
	enc := knakk.NewTripleEncoder(w, f.knakk())
	if f == Turtle {
		enc.Namespaces = make(map[string]string, len(g.prefixes))
		for p, ns := range g.prefixes {
			enc.Namespaces[ns] = p
		}
	}
	for _, t := range g.Triples() {
		kt, err := toKnakk(t)
		if err != nil {
			return err
		}
		if err := enc.Encode(kt); err != nil {
			return fmt.Errorf("encoding %s: %w", t, err)
		}
	}
	return enc.Close()
}

// Serialize is Write into a string
func (g *Graph) Serialize(f Format) (string, error) {
	var buf bytes.Buffer
	if err := g.Write(&buf, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fromKnakk(kt knakk.Triple) (Triple, error) {
	s, err := termFromKnakk(kt.Subj)
	if err != nil {
		return Triple{}, err
	}
	p, err := termFromKnakk(kt.Pred)
	if err != nil {
		return Triple{}, err
	}
	o, err := termFromKnakk(kt.Obj)
	if err != nil {
		return Triple{}, err
	}
	return Triple{S: s, P: p, O: o}, nil
}

func termFromKnakk(t knakk.Term) (Term, error) {
	switch v := t.(type) {
	case knakk.IRI:
		return IRI(v.String()), nil
	case knakk.Blank:
		return Blank(v.String()), nil
	case knakk.Literal:
		if v.Lang() != "" {
			return LangLiteral(v.String(), v.Lang()), nil
		}
		return TypedLiteral(v.String(), v.DataType.String()), nil
	}
	return Term{}, fmt.Errorf("unsupported term %v", t)
}

func toKnakk(t Triple) (knakk.Triple, error) {
	s, err := subjectToKnakk(t.S)
	if err != nil {
		return knakk.Triple{}, err
	}
	p, err := knakk.NewIRI(t.P.Value)
	if err != nil {
		return knakk.Triple{}, fmt.Errorf("predicate %s: %w", t.P, err)
	}
	o, err := objectToKnakk(t.O)
	if err != nil {
		return knakk.Triple{}, err
	}
	return knakk.Triple{Subj: s, Pred: p, Obj: o}, nil
}

func subjectToKnakk(t Term) (knakk.Subject, error) {
	switch t.Kind {
	case KindIRI:
		iri, err := knakk.NewIRI(t.Value)
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", t, err)
		}
		return iri, nil
	case KindBlank:
		b, err := knakk.NewBlank(t.Value)
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", t, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("invalid subject %s", t)
}

func objectToKnakk(t Term) (knakk.Object, error) {
	switch t.Kind {
	case KindIRI:
		iri, err := knakk.NewIRI(t.Value)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", t, err)
		}
		return iri, nil
	case KindBlank:
		b, err := knakk.NewBlank(t.Value)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", t, err)
		}
		return b, nil
	case KindNone:
		return nil, fmt.Errorf("invalid object %s", t)
	}
	if t.Lang != "" {
		l, err := knakk.NewLangLiteral(t.Value, t.Lang)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", t, err)
		}
		return l, nil
	}
	dt := t.Datatype
	if dt == "" {
		dt = vocab.XSDString
	}
	iri, err := knakk.NewIRI(dt)
	if err != nil {
		return nil, fmt.Errorf("datatype %s: %w", dt, err)
	}
	return knakk.NewTypedLiteral(t.Value, iri), nil
}
