package infer

import (
	"github.com/oda-hub/deprecated-renku-aqs/internal/normalize"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// InferDomainRelations turns raw astroquery run annotations into display
// relations: the module is linked to the action it ran during and to what it
// requested, and request attribute literals are normalized onto their nodes.
type InferDomainRelations struct{}

func (InferDomainRelations) Name() string { return "infer-domain-relations" }

func (InferDomainRelations) Reads() []string {
	return []string{
		vocab.HasTarget, vocab.IsUsing, vocab.HadPlan, vocab.Title,
		vocab.IsRequestingAstroObject, vocab.IsRequestingAstroRegion, vocab.IsRequestingAstroImage,
	}
}

func (InferDomainRelations) Removes() []string { return nil }

type normalizer func(string) (string, error)

func asIs(v string) (string, error)   { return v, nil }
func asList(v string) (string, error) { return normalize.List(v), nil }

// attribute predicates and how their title literal becomes a defaultValue
var (
	regionAttributes = []struct {
		pred string
		norm normalizer
	}{
		{vocab.IsUsingSkyCoordinates, normalize.SkyCoordinates},
		{vocab.IsUsingRadius, normalize.Angle},
	}
	imageAttributes = []struct {
		pred string
		norm normalizer
	}{
		{vocab.IsUsingCoordinates, normalize.SkyCoordinates},
		{vocab.IsUsingPosition, normalize.SkyCoordinates},
		{vocab.IsUsingRadius, normalize.Angle},
		{vocab.IsUsingPixels, asList},
		{vocab.IsUsingImageBand, asIs},
	}
)

func (s InferDomainRelations) Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error) {
	g := in.Clone()
	for _, t := range g.Match(rdf.Any, pred(vocab.HasTarget), rdf.Any) {
		run, activity := t.S, t.O
		module, ok := g.Object(run, pred(vocab.IsUsing))
		if !ok {
			env.Report(s.Name(), CodeMissingModule, "run %s has no astroquery module", run.Value)
			continue
		}

		// after hoisting the plan carries the activity's identity for display
		targets := g.Objects(activity, pred(vocab.HadPlan))
		if len(targets) == 0 {
			targets = []rdf.Term{activity}
		}
		link := func() {
			for _, target := range targets {
				g.Add(rdf.T(module, pred(vocab.IsUsedDuring), target))
			}
		}

		if obj, ok := g.Object(run, pred(vocab.IsRequestingAstroObject)); ok {
			link()
			g.Add(rdf.T(module, pred(vocab.RequestsAstroObject), obj))
		}
		if region, ok := g.Object(run, pred(vocab.IsRequestingAstroRegion)); ok {
			link()
			g.Add(rdf.T(module, pred(vocab.RequestsAstroRegion), region))
			for _, attr := range regionAttributes {
				if err := normalizeAttribute(g, region, attr.pred, attr.norm); err != nil {
					return nil, err
				}
			}
		}
		if image, ok := g.Object(run, pred(vocab.IsRequestingAstroImage)); ok {
			link()
			g.Add(rdf.T(module, pred(vocab.RequestsAstroImage), image))
			for _, attr := range imageAttributes {
				if err := normalizeAttribute(g, image, attr.pred, attr.norm); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

// normalizeAttribute sets the defaultValue of the single node reached through
// p from owner, computed from its single title. Any other shape is skipped.
func normalizeAttribute(g *rdf.Graph, owner rdf.Term, p string, norm normalizer) error {
	nodes := g.Objects(owner, pred(p))
	if len(nodes) != 1 {
		return nil
	}
	node := nodes[0]
	titles := g.Objects(node, pred(vocab.Title))
	if len(titles) != 1 {
		return nil
	}
	value, err := norm(titles[0].Value)
	if err != nil {
		return err
	}
	g.RemoveMatching(node, pred(vocab.DefaultValue), rdf.Any)
	g.Add(rdf.T(node, pred(vocab.DefaultValue), rdf.Literal(value)))
	return nil
}
