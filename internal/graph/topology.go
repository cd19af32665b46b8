package graph

import "sort"

// HubNode is a node linked to more than the hub threshold
type HubNode struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	Degree    int    `json:"degree"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// KindCount is the number of nodes of one type
type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Workflow is one connected component, usually the steps of one notebook
// pipeline and the astroquery requests they issued
type Workflow struct {
	Size     int    `json:"size"`
	Actions  int    `json:"actions"`
	Requests int    `json:"requests"`
	Anchor   string `json:"anchor"` // label of the first action, or of the first node
}

// TopologyReport contains topology analysis results
type TopologyReport struct {
	TotalNodes        int         `json:"total_nodes"`
	TotalEdges        int         `json:"total_edges"`
	Kinds             []KindCount `json:"kinds"`
	NumComponents     int         `json:"num_components"`
	LargestComponent  int         `json:"largest_component"`
	SmallestComponent int         `json:"smallest_component"`
	Workflows         []Workflow  `json:"workflows"`
	OrphanCount       int         `json:"orphan_count"`
	OrphanIDs         []string    `json:"orphan_ids"`
	Hubs              []HubNode   `json:"hubs"`
}

// requestKinds are the node kinds that count as an astroquery request target
var requestKinds = map[string]bool{
	"AstrophysicalObject": true,
	"AstrophysicalRegion": true,
	"AstrophysicalImage":  true,
}

// ComputeTopology reports node kinds, connected components, orphans and
// hubs. A cleaned provenance graph is normally one component per workflow;
// orphans are nodes inference left unlinked. At most topN orphans, hubs and
// workflows are listed.
func ComputeTopology(snap *GraphSnapshot, hubThreshold, topN int) *TopologyReport {
	r := &TopologyReport{TotalNodes: len(snap.Nodes), TotalEdges: len(snap.Edges)}
	if r.TotalNodes == 0 {
		return r
	}

	nodeIDs := snap.NodeIDs()
	r.Kinds = countKinds(snap, nodeIDs)

	uf := NewUnionFind(nodeIDs)
	for _, e := range snap.Edges {
		uf.Union(e.Source, e.Target)
	}
	components := uf.Components()
	r.NumComponents = len(components)
	r.LargestComponent = len(components[0])
	r.SmallestComponent = len(components[len(components)-1])

	for _, members := range components {
		if len(members) == 1 {
			continue
		}
		r.Workflows = append(r.Workflows, summarize(snap, members))
	}
	if len(r.Workflows) > topN {
		r.Workflows = r.Workflows[:topN]
	}

	for _, id := range nodeIDs {
		degree := len(snap.Adj[id])
		if degree == 0 {
			r.OrphanCount++
			if len(r.OrphanIDs) < topN {
				r.OrphanIDs = append(r.OrphanIDs, id)
			}
			continue
		}
		if degree > hubThreshold {
			n := snap.Nodes[id]
			r.Hubs = append(r.Hubs, HubNode{
				ID:        id,
				Label:     n.Label,
				Kind:      n.Kind,
				Degree:    degree,
				InDegree:  len(snap.InAdj[id]),
				OutDegree: len(snap.OutAdj[id]),
			})
		}
	}
	sort.SliceStable(r.Hubs, func(i, j int) bool { return r.Hubs[i].Degree > r.Hubs[j].Degree })
	if len(r.Hubs) > topN {
		r.Hubs = r.Hubs[:topN]
	}
	return r
}

// summarize counts actions and request targets in one sorted component
func summarize(snap *GraphSnapshot, members []string) Workflow {
	w := Workflow{Size: len(members), Anchor: snap.Nodes[members[0]].Label}
	anchored := false
	for _, id := range members {
		n := snap.Nodes[id]
		switch {
		case n.Kind == "Action":
			w.Actions++
			if !anchored {
				w.Anchor, anchored = n.Label, true
			}
		case requestKinds[n.Kind]:
			w.Requests++
		}
	}
	return w
}

func countKinds(snap *GraphSnapshot, nodeIDs []string) []KindCount {
	counts := make(map[string]int)
	for _, id := range nodeIDs {
		counts[snap.Nodes[id].Kind]++
	}
	out := make([]KindCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, KindCount{Kind: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
