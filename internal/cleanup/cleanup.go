// Package cleanup strips the structural predicates that inference has already
// turned into display relations.
package cleanup

import (
	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// Predicates are removed graph-wide, in this order
var Predicates = []string{
	vocab.HasInputs,
	vocab.HasArguments,
	vocab.Position,
	vocab.HadPlan,
	vocab.IsUsing,
	vocab.IsRequestingAstroObject,
	vocab.IsRequestingAstroRegion,
	vocab.IsRequestingAstroImage,
	vocab.Title,
	vocab.HasTarget,
	vocab.Type,
}

// Clean removes every triple using one of Predicates and returns the count.
// Running it twice removes nothing the second time.
func Clean(g *rdf.Graph) int {
	n := 0
	for _, p := range Predicates {
		n += g.RemoveMatching(rdf.Any, rdf.IRI(p), rdf.Any)
	}
	return n
}

// Stage runs Clean as a pipeline stage
type Stage struct{}

func (Stage) Name() string      { return "cleanup" }
func (Stage) Reads() []string   { return nil }
func (Stage) Removes() []string { return Predicates }

func (s Stage) Apply(in *rdf.Graph, env *infer.Env) (*rdf.Graph, error) {
	g := in.Clone()
	n := Clean(g)
	env.Logger.Debug("cleaned graph", "removed", n, "remaining", g.Len())
	return g, nil
}
