// Package graph summarizes the shape of a cleaned provenance graph: node
// kinds, connected components, orphans and hubs.
package graph

import (
	"sort"

	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// NodeInfo is a lightweight node representation decoupled from RDF terms
type NodeInfo struct {
	ID    string
	Label string
	Kind  string
}

// EdgeInfo is one resource-to-resource triple
type EdgeInfo struct {
	Source    string
	Target    string
	Predicate string // compacted
}

// GraphSnapshot holds a graph with precomputed adjacency lists
type GraphSnapshot struct {
	Nodes  map[string]*NodeInfo
	Edges  []EdgeInfo
	Adj    map[string][]string // undirected
	OutAdj map[string][]string // directed: source -> targets
	InAdj  map[string][]string // directed: target -> sources
}

// NewSnapshot builds a GraphSnapshot from raw nodes and edges. Edges with an
// unknown endpoint are kept in Edges but left out of the adjacency lists.
func NewSnapshot(nodes []*NodeInfo, edges []EdgeInfo) *GraphSnapshot {
	nodeMap := make(map[string]*NodeInfo, len(nodes))
	adj := make(map[string][]string)
	outAdj := make(map[string][]string)
	inAdj := make(map[string][]string)

	for _, n := range nodes {
		nodeMap[n.ID] = n
		adj[n.ID] = nil
		outAdj[n.ID] = nil
		inAdj[n.ID] = nil
	}

	for _, e := range edges {
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
		outAdj[e.Source] = append(outAdj[e.Source], e.Target)
		inAdj[e.Target] = append(inAdj[e.Target], e.Source)
	}

	return &GraphSnapshot{
		Nodes:  nodeMap,
		Edges:  edges,
		Adj:    adj,
		OutAdj: outAdj,
		InAdj:  inAdj,
	}
}

// FromRDF snapshots every IRI or blank node of g. Literal-valued triples are
// node properties, not edges, and are skipped.
func FromRDF(g *rdf.Graph, types infer.TypeIndex) *GraphSnapshot {
	var nodes []*NodeInfo
	for _, n := range g.Nodes() {
		info := types.Lookup(n)
		kind := info.Name
		if kind == "" {
			kind = info.Kind.String()
		}
		nodes = append(nodes, &NodeInfo{
			ID:    n.String(),
			Label: g.Label(n),
			Kind:  kind,
		})
	}
	var edges []EdgeInfo
	for _, t := range g.Triples() {
		if !t.O.IsResource() {
			continue
		}
		edges = append(edges, EdgeInfo{
			Source:    t.S.String(),
			Target:    t.O.String(),
			Predicate: g.Compact(t.P),
		})
	}
	return NewSnapshot(nodes, edges)
}

// FilterToKinds returns a new snapshot containing only nodes of the given kinds
func (s *GraphSnapshot) FilterToKinds(kinds ...string) *GraphSnapshot {
	keep := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	var filteredNodes []*NodeInfo
	filteredSet := make(map[string]bool)
	for _, id := range s.NodeIDs() {
		if n := s.Nodes[id]; keep[n.Kind] {
			filteredNodes = append(filteredNodes, n)
			filteredSet[id] = true
		}
	}

	var filteredEdges []EdgeInfo
	for _, e := range s.Edges {
		if filteredSet[e.Source] && filteredSet[e.Target] {
			filteredEdges = append(filteredEdges, e)
		}
	}

	return NewSnapshot(filteredNodes, filteredEdges)
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output)
func (s *GraphSnapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
