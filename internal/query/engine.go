// Package query evaluates graph patterns against an rdf.Graph and builds the
// provenance and astroquery-request queries used by every renderer.
package query

import (
	"sort"
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// Node is a pattern position: either a variable or a constant term
type Node struct {
	Var  string
	Term rdf.Term
}

// V is a variable
func V(name string) Node { return Node{Var: name} }

// C is a constant IRI
func C(iri string) Node { return Node{Term: rdf.IRI(iri)} }

// Step is one hop of a property path
type Step struct {
	Pred    rdf.Term
	Inverse bool
}

func Fwd(iri string) Step { return Step{Pred: rdf.IRI(iri)} }
func Inv(iri string) Step { return Step{Pred: rdf.IRI(iri), Inverse: true} }

// Pattern matches S --Path--> O
type Pattern struct {
	S    Node
	Path []Step
	O    Node
}

// P is a single forward-step pattern
func P(s Node, pred string, o Node) Pattern {
	return Pattern{S: s, Path: []Step{Fwd(pred)}, O: o}
}

// Seq is a multi-step path pattern
func Seq(s Node, o Node, steps ...Step) Pattern {
	return Pattern{S: s, Path: steps, O: o}
}

// Binding maps variable names to terms
type Binding map[string]rdf.Term

func (b Binding) resolve(n Node) rdf.Term {
	if n.Var == "" {
		return n.Term
	}
	return b[n.Var]
}

func (b Binding) with(n Node, t rdf.Term) (Binding, bool) {
	if n.Var == "" {
		return b, n.Term == t
	}
	if cur, ok := b[n.Var]; ok {
		return b, cur == t
	}
	out := make(Binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[n.Var] = t
	return out, true
}

// Get returns the value bound to a variable
func (b Binding) Get(name string) (rdf.Term, bool) {
	t, ok := b[name]
	return t, ok
}

// Filter keeps a row when it returns true
type Filter func(Binding) bool

// Group is a conjunction of patterns, an optional set of union alternatives,
// left-joined optional groups and filters, evaluated in that order.
type Group struct {
	Patterns []Pattern
	Union    []Group
	Optional []Group
	Filters  []Filter
}

func (g Group) eval(graph *rdf.Graph, rows []Binding) []Binding {
	for _, p := range g.Patterns {
		rows = join(graph, rows, p)
		if len(rows) == 0 {
			return nil
		}
	}
	if len(g.Union) > 0 {
		var out []Binding
		for _, alt := range g.Union {
			out = append(out, alt.eval(graph, rows)...)
		}
		rows = out
	}
	for _, opt := range g.Optional {
		var out []Binding
		for _, row := range rows {
			ext := opt.eval(graph, []Binding{row})
			if len(ext) == 0 {
				out = append(out, row)
				continue
			}
			out = append(out, ext...)
		}
		rows = out
	}
	if len(g.Filters) == 0 {
		return rows
	}
	kept := rows[:0:0]
	for _, row := range rows {
		if all(g.Filters, row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func all(fs []Filter, row Binding) bool {
	for _, f := range fs {
		if !f(row) {
			return false
		}
	}
	return true
}

func join(graph *rdf.Graph, rows []Binding, p Pattern) []Binding {
	var out []Binding
	for _, row := range rows {
		s, o := row.resolve(p.S), row.resolve(p.O)
		for _, pair := range evalPath(graph, s, o, p.Path) {
			next, ok := row.with(p.S, pair[0])
			if !ok {
				continue
			}
			if next, ok = next.with(p.O, pair[1]); ok {
				out = append(out, next)
			}
		}
	}
	return out
}

func evalPath(graph *rdf.Graph, s, o rdf.Term, steps []Step) [][2]rdf.Term {
	if len(steps) == 1 {
		st := steps[0]
		var pairs [][2]rdf.Term
		if st.Inverse {
			for _, t := range graph.Match(o, st.Pred, s) {
				pairs = append(pairs, [2]rdf.Term{t.O, t.S})
			}
		} else {
			for _, t := range graph.Match(s, st.Pred, o) {
				pairs = append(pairs, [2]rdf.Term{t.S, t.O})
			}
		}
		return pairs
	}

	var starts []rdf.Term
	if !s.IsZero() {
		starts = []rdf.Term{s}
	} else {
		seen := make(map[rdf.Term]bool)
		for _, pair := range evalPath(graph, rdf.Any, rdf.Any, steps[:1]) {
			if !seen[pair[0]] {
				seen[pair[0]] = true
				starts = append(starts, pair[0])
			}
		}
	}

	var pairs [][2]rdf.Term
	for _, start := range starts {
		for _, end := range walk(graph, start, steps) {
			if o.IsZero() || end == o {
				pairs = append(pairs, [2]rdf.Term{start, end})
			}
		}
	}
	return pairs
}

func walk(graph *rdf.Graph, from rdf.Term, steps []Step) []rdf.Term {
	frontier := []rdf.Term{from}
	for _, st := range steps {
		seen := make(map[rdf.Term]bool)
		var next []rdf.Term
		for _, f := range frontier {
			var hop []rdf.Term
			if st.Inverse {
				hop = graph.Subjects(st.Pred, f)
			} else {
				hop = graph.Objects(f, st.Pred)
			}
			for _, t := range hop {
				if !seen[t] {
					seen[t] = true
					next = append(next, t)
				}
			}
		}
		frontier = next
	}
	return frontier
}

// Select evaluates a group and returns its solutions
func Select(graph *rdf.Graph, where Group) []Binding {
	return where.eval(graph, []Binding{{}})
}

// Construct instantiates the template once per solution of where. Template
// triples with an unbound variable, or a literal in subject position, are skipped.
func Construct(graph *rdf.Graph, template []Pattern, where Group) *rdf.Graph {
	out := rdf.NewGraph()
	for p, ns := range graph.Prefixes() {
		out.Bind(p, ns)
	}
	for _, row := range Select(graph, where) {
		for _, tp := range template {
			s, o := row.resolve(tp.S), row.resolve(tp.O)
			if s.IsZero() || o.IsZero() || !s.IsResource() || len(tp.Path) != 1 {
				continue
			}
			st := tp.Path[0]
			if st.Inverse {
				if !o.IsResource() {
					continue
				}
				s, o = o, s
			}
			out.Add(rdf.T(s, st.Pred, o))
		}
	}
	return out
}

// Distinct projects rows onto vars and drops duplicates, keeping first-seen order
func Distinct(rows []Binding, vars ...string) []Binding {
	seen := make(map[string]bool)
	var out []Binding
	for _, row := range rows {
		var key strings.Builder
		proj := make(Binding, len(vars))
		for _, v := range vars {
			t := row[v]
			proj[v] = t
			key.WriteString(t.String())
			key.WriteByte('\x00')
		}
		if !seen[key.String()] {
			seen[key.String()] = true
			out = append(out, proj)
		}
	}
	return out
}

// SortBy orders rows by the string form of the given variables
func SortBy(rows []Binding, vars ...string) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, v := range vars {
			a, b := rows[i][v].String(), rows[j][v].String()
			if a != b {
				return a < b
			}
		}
		return false
	})
}
