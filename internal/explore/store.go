// Package explore implements the interactive exploration protocol: a page
// starts from the Action/Activity backbone, and each user action (expand,
// collapse, reduction, subset filter, graphical configuration, layout) is a
// transition on one Session.
package explore

import (
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/config"
	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// Literal is one literal-valued property of a node
type Literal struct {
	Predicate string `json:"predicate"` // compacted
	Value     string `json:"value"`
}

// NodeData is what the store knows about a node
type NodeData struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     string    `json:"type"`
	Prefix   string    `json:"prefix"`
	Literals []Literal `json:"literals,omitempty"`
}

// EdgeData is one resource-to-resource triple
type EdgeData struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Predicate string `json:"predicate"` // full IRI
	Label     string `json:"label"`     // predicate local name
}

// Key identifies the edge within a view
func (e EdgeData) Key() string { return e.From + " " + e.Predicate + " " + e.To }

// Store answers the queries a session issues
type Store interface {
	// Backbone returns the Action/Activity nodes and the edges among them
	Backbone() ([]NodeData, []EdgeData)
	// Neighborhood returns the allow-listed neighbors of a node in both
	// directions and the edges reaching them
	Neighborhood(id string) ([]NodeData, []EdgeData)
}

// GraphStore serves a cleaned graph
type GraphStore struct {
	g      *rdf.Graph
	types  infer.TypeIndex
	bundle *config.Bundle
	byID   map[string]rdf.Term
	// Allowed lists the kinds Neighborhood returns
	Allowed map[infer.NodeKind]bool
}

// NewGraphStore indexes g. Every known node kind is allowed.
func NewGraphStore(g *rdf.Graph, types infer.TypeIndex, bundle *config.Bundle) *GraphStore {
	s := &GraphStore{
		g:       g,
		types:   types,
		bundle:  bundle,
		byID:    make(map[string]rdf.Term),
		Allowed: make(map[infer.NodeKind]bool),
	}
	for _, n := range g.Nodes() {
		s.byID[NodeID(n)] = n
	}
	for k := infer.Action; k <= infer.Coordinates; k++ {
		s.Allowed[k] = true
	}
	return s
}

// NodeID is the view identity of a graph node
func NodeID(t rdf.Term) string {
	if t.IsBlank() {
		return "_:" + t.Value
	}
	return t.Value
}

func (s *GraphStore) Backbone() ([]NodeData, []EdgeData) {
	in := make(map[rdf.Term]bool)
	var nodes []NodeData
	for _, k := range []infer.NodeKind{infer.Action, infer.Activity} {
		for _, n := range s.types.NodesOf(k) {
			if _, ok := s.byID[NodeID(n)]; !ok {
				continue
			}
			in[n] = true
			nodes = append(nodes, s.describe(n))
		}
	}
	var edges []EdgeData
	for _, t := range s.g.Triples() {
		if in[t.S] && in[t.O] {
			edges = append(edges, s.edge(t))
		}
	}
	return nodes, edges
}

func (s *GraphStore) Neighborhood(id string) ([]NodeData, []EdgeData) {
	n, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	seen := make(map[rdf.Term]bool)
	var nodes []NodeData
	var edges []EdgeData
	visit := func(t rdf.Triple, other rdf.Term) {
		if !other.IsResource() || !s.Allowed[s.types.Kind(other)] {
			return
		}
		edges = append(edges, s.edge(t))
		if !seen[other] {
			seen[other] = true
			nodes = append(nodes, s.describe(other))
		}
	}
	for _, t := range s.g.Match(n, rdf.Any, rdf.Any) {
		visit(t, t.O)
	}
	for _, t := range s.g.Match(rdf.Any, rdf.Any, n) {
		visit(t, t.S)
	}
	return nodes, edges
}

// Graph is the served graph
func (s *GraphStore) Graph() *rdf.Graph { return s.g }

// Catalog describes every node of an allowed kind, keyed by id. Pages
// without a session answer neighborhood queries from it.
func (s *GraphStore) Catalog() map[string]NodeData {
	out := make(map[string]NodeData, len(s.byID))
	for id, n := range s.byID {
		if s.Allowed[s.types.Kind(n)] {
			out[id] = s.describe(n)
		}
	}
	return out
}

func (s *GraphStore) describe(n rdf.Term) NodeData {
	info := s.types.Lookup(n)
	d := NodeData{ID: NodeID(n), Type: info.Name}
	if d.Type == "" {
		d.Type = info.Kind.String()
	}
	if prefix, _, ok := s.g.QName(n); ok {
		d.Prefix = prefix
	}
	for _, t := range s.g.Match(n, rdf.Any, rdf.Any) {
		if t.O.IsLiteral() {
			d.Literals = append(d.Literals, Literal{Predicate: s.g.Compact(t.P), Value: t.O.Value})
		}
	}
	d.Label = s.label(n, d)
	return d
}

// label joins the first value of each configured literal predicate, falling
// back to the graph label
func (s *GraphStore) label(n rdf.Term, d NodeData) string {
	var parts []string
	if s.bundle != nil {
		for _, p := range s.bundle.Graphical.Nodes[d.Type].LiteralPredicates {
			if o, ok := s.g.Object(n, rdf.IRI(s.bundle.Expand(p))); ok && o.IsLiteral() {
				parts = append(parts, o.Value)
			}
		}
	}
	if len(parts) == 0 {
		return s.g.Label(n)
	}
	return strings.Join(parts, "\n")
}

func (s *GraphStore) edge(t rdf.Triple) EdgeData {
	label := t.P.Local()
	if _, local, ok := s.g.QName(t.P); ok {
		label = local
	}
	return EdgeData{From: NodeID(t.S), To: NodeID(t.O), Predicate: t.P.Value, Label: label}
}
