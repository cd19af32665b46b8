package provenance

import (
	"context"
	"fmt"
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/runner"
)

const localMarker = "/.renku/"

// Resolver returns the public URI of the project checked out at dir
type Resolver func(ctx context.Context, dir string) (string, error)

// ProjectURI resolves a project through the http form of its origin remote
func ProjectURI(ctx context.Context, dir string) (string, error) {
	return runner.RemoteURL(ctx, dir, "origin")
}

// SplitLocal splits file://<project>/.renku/<run> into the project path and
// the run id
func SplitLocal(iri string) (project, run string, ok bool) {
	rest, found := strings.CutPrefix(iri, "file://")
	if !found {
		return "", "", false
	}
	return strings.Cut(rest, localMarker)
}

// NormalizeLocal returns a copy of g where every project-local IRI is
// replaced by <project uri>#<run>. Each project is resolved once.
func NormalizeLocal(ctx context.Context, g *rdf.Graph, resolve Resolver) (*rdf.Graph, error) {
	uris := make(map[string]string)
	rewrite := func(t rdf.Term) (rdf.Term, error) {
		if !t.IsIRI() {
			return t, nil
		}
		project, run, ok := SplitLocal(t.Value)
		if !ok {
			return t, nil
		}
		uri, seen := uris[project]
		if !seen {
			var err error
			if uri, err = resolve(ctx, project); err != nil {
				return t, fmt.Errorf("resolve project %s: %w", project, err)
			}
			uris[project] = uri
		}
		return rdf.IRI(uri + "#" + run), nil
	}

	out := rdf.NewGraph()
	for prefix, ns := range g.Prefixes() {
		if !strings.HasPrefix(ns, "file://") {
			out.Bind(prefix, ns)
		}
	}
	for _, t := range g.Triples() {
		s, err := rewrite(t.S)
		if err != nil {
			return nil, err
		}
		p, err := rewrite(t.P)
		if err != nil {
			return nil, err
		}
		o, err := rewrite(t.O)
		if err != nil {
			return nil, err
		}
		out.Add(rdf.T(s, p, o))
	}
	return out, nil
}
