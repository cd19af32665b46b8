package cmd

import (
	"fmt"
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/graph"
	"github.com/oda-hub/deprecated-renku-aqs/internal/pipeline"
)

const (
	summaryHubThreshold = 6
	summaryTopN         = 5
)

// printSummary reports the shape of a cleaned graph and any pipeline warnings
func printSummary(res *pipeline.Result) {
	snap := graph.FromRDF(res.Graph, res.Types)
	t := graph.ComputeTopology(snap, summaryHubThreshold, summaryTopN)

	fmt.Println(titleStyle.Render("  GRAPH"))
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Nodes: %d  Edges: %d  Components: %d\n", t.TotalNodes, t.TotalEdges, t.NumComponents)
	if len(t.Kinds) > 0 {
		parts := make([]string, 0, len(t.Kinds))
		for _, k := range t.Kinds {
			parts = append(parts, fmt.Sprintf("%s=%d", k.Kind, k.Count))
		}
		fmt.Printf("  %s\n", mutedStyle.Render(strings.Join(parts, " ")))
	}
	for _, w := range t.Workflows {
		fmt.Printf("    workflow %s: %d nodes, %d actions, %d requests\n",
			truncTitle(w.Anchor, 40), w.Size, w.Actions, w.Requests)
	}
	if t.OrphanCount > 0 {
		fmt.Printf("  Orphans: %d unlinked nodes\n", t.OrphanCount)
	}
	for _, hub := range t.Hubs {
		fmt.Printf("    hub %s degree=%d  %s\n", hub.Kind, hub.Degree, truncTitle(hub.Label, 50))
	}
	for _, w := range res.Warnings() {
		fmt.Println(warningStyle.Render("  warning: " + w))
	}
}
