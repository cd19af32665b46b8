package rdf

import (
	"sort"
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

type tripleSet map[Triple]struct{}

// Graph is a set of triples indexed by subject, predicate and object, plus
// display-only prefix bindings.
type Graph struct {
	triples     tripleSet
	bySubject   map[Term]tripleSet
	byPredicate map[Term]tripleSet
	byObject    map[Term]tripleSet
	prefixes    map[string]string // prefix -> namespace
}

// NewGraph returns an empty graph with the default vocabulary prefixes bound
func NewGraph() *Graph {
	g := &Graph{
		triples:     make(tripleSet),
		bySubject:   make(map[Term]tripleSet),
		byPredicate: make(map[Term]tripleSet),
		byObject:    make(map[Term]tripleSet),
		prefixes:    make(map[string]string, len(vocab.Prefixes)),
	}
	for p, ns := range vocab.Prefixes {
		g.prefixes[p] = ns
	}
	return g
}

func index(m map[Term]tripleSet, k Term, t Triple) {
	set, ok := m[k]
	if !ok {
		set = make(tripleSet)
		m[k] = set
	}
	set[t] = struct{}{}
}

func unindex(m map[Term]tripleSet, k Term, t Triple) {
	if set, ok := m[k]; ok {
		delete(set, t)
		if len(set) == 0 {
			delete(m, k)
		}
	}
}

// Add inserts a triple. Returns false if it was already present.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.triples[t]; ok {
		return false
	}
	g.triples[t] = struct{}{}
	index(g.bySubject, t.S, t)
	index(g.byPredicate, t.P, t)
	index(g.byObject, t.O, t)
	return true
}

func (g *Graph) AddAll(ts []Triple) {
	for _, t := range ts {
		g.Add(t)
	}
}

// Remove deletes a triple. Returns false if it was absent.
func (g *Graph) Remove(t Triple) bool {
	if _, ok := g.triples[t]; !ok {
		return false
	}
	delete(g.triples, t)
	unindex(g.bySubject, t.S, t)
	unindex(g.byPredicate, t.P, t)
	unindex(g.byObject, t.O, t)
	return true
}

// RemoveMatching deletes every triple matching the pattern and returns the count
func (g *Graph) RemoveMatching(s, p, o Term) int {
	matched := g.Match(s, p, o)
	for _, t := range matched {
		g.Remove(t)
	}
	return len(matched)
}

func (g *Graph) Has(t Triple) bool {
	_, ok := g.triples[t]
	return ok
}

func (g *Graph) Len() int { return len(g.triples) }

// Match returns the triples matching the pattern in deterministic order.
// Zero terms are wildcards.
func (g *Graph) Match(s, p, o Term) []Triple {
	var candidates tripleSet
	pick := func(m map[Term]tripleSet, k Term) bool {
		if k.IsZero() {
			return true
		}
		set := m[k]
		if candidates == nil || len(set) < len(candidates) {
			candidates = set
		}
		return len(set) > 0
	}
	if !pick(g.bySubject, s) || !pick(g.byPredicate, p) || !pick(g.byObject, o) {
		return nil
	}
	if candidates == nil {
		candidates = g.triples
	}

	var out []Triple
	for t := range candidates {
		if t.S.matches(s) && t.P.matches(p) && t.O.matches(o) {
			out = append(out, t)
		}
	}
	sortTriples(out)
	return out
}

// Triples returns every triple in deterministic order
func (g *Graph) Triples() []Triple {
	return g.Match(Any, Any, Any)
}

// Objects returns the distinct objects of (s, p, *)
func (g *Graph) Objects(s, p Term) []Term {
	var out []Term
	seen := make(map[Term]bool)
	for _, t := range g.Match(s, p, Any) {
		if !seen[t.O] {
			seen[t.O] = true
			out = append(out, t.O)
		}
	}
	return out
}

// Subjects returns the distinct subjects of (*, p, o)
func (g *Graph) Subjects(p, o Term) []Term {
	var out []Term
	seen := make(map[Term]bool)
	for _, t := range g.Match(Any, p, o) {
		if !seen[t.S] {
			seen[t.S] = true
			out = append(out, t.S)
		}
	}
	return out
}

// Object returns the first object of (s, p, *) in deterministic order
func (g *Graph) Object(s, p Term) (Term, bool) {
	objs := g.Objects(s, p)
	if len(objs) == 0 {
		return Term{}, false
	}
	return objs[0], true
}

// Nodes returns every IRI or blank term appearing as subject or object
func (g *Graph) Nodes() []Term {
	seen := make(map[Term]bool)
	var out []Term
	add := func(t Term) {
		if t.IsResource() && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range g.Triples() {
		add(t.S)
		add(t.O)
	}
	return out
}

// Clone returns an independent copy, prefixes included
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for p, ns := range g.prefixes {
		c.prefixes[p] = ns
	}
	for t := range g.triples {
		c.Add(t)
	}
	return c
}

// Merge adds every triple of other and adopts its prefix bindings
func (g *Graph) Merge(other *Graph) {
	for t := range other.triples {
		g.Add(t)
	}
	for p, ns := range other.prefixes {
		if _, ok := g.prefixes[p]; !ok {
			g.prefixes[p] = ns
		}
	}
}

// Bind associates a display prefix with a namespace
func (g *Graph) Bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the prefix bindings
func (g *Graph) Prefixes() map[string]string {
	out := make(map[string]string, len(g.prefixes))
	for p, ns := range g.prefixes {
		out[p] = ns
	}
	return out
}

// QName splits an IRI into a bound prefix and local name. The longest matching
// namespace wins.
func (g *Graph) QName(t Term) (prefix, local string, ok bool) {
	if !t.IsIRI() {
		return "", "", false
	}
	best := ""
	for p, ns := range g.prefixes {
		if strings.HasPrefix(t.Value, ns) && len(ns) > len(g.prefixes[best]) {
			rest := t.Value[len(ns):]
			if rest == "" || strings.ContainsAny(rest, "/#") {
				continue
			}
			best = p
		}
	}
	if best == "" {
		return "", "", false
	}
	return best, t.Value[len(g.prefixes[best]):], true
}

// Compact renders an IRI as prefix:local when a binding applies
func (g *Graph) Compact(t Term) string {
	if p, l, ok := g.QName(t); ok {
		return p + ":" + l
	}
	if t.IsLiteral() {
		return t.Value
	}
	return t.String()
}

// Label returns the human readable label of a node: the first label-property
// literal, else the local part of its qualified name, else its raw value.
func (g *Graph) Label(t Term) string {
	if t.IsLiteral() {
		return t.Value
	}
	for _, prop := range vocab.LabelProperties {
		for _, o := range g.Objects(t, IRI(prop)) {
			if o.IsLiteral() {
				return o.Value
			}
		}
	}
	if _, local, ok := g.QName(t); ok {
		return local
	}
	return t.Value
}

func sortTriples(ts []Triple) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].less(ts[j]) })
}
