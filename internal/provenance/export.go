// Package provenance obtains the project's provenance graph from the renku
// CLI and rewrites project-local IRIs before the graph leaves the machine.
package provenance

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/runner"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// ExportError is a failed or unreadable `renku graph export`
type ExportError struct {
	Revision string
	Err      error
}

func (e *ExportError) Error() string {
	rev := e.Revision
	if rev == "" {
		rev = "working tree"
	}
	return fmt.Sprintf("export provenance graph (%s): %v", rev, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Exporter runs the renku CLI inside one project
type Exporter struct {
	RenkuBin   string
	ProjectDir string
	Logger     *slog.Logger
}

// Export returns the full provenance graph at revision, or at the working
// tree when revision is empty
func (e *Exporter) Export(ctx context.Context, revision string) (*rdf.Graph, error) {
	bin := e.RenkuBin
	if bin == "" {
		bin = "renku"
	}
	args := []string{"graph", "export", "--format", "nt"}
	if revision != "" {
		args = append(args, "--revision", revision)
	}
	res, err := runner.Run(ctx, e.ProjectDir, bin, args...)
	if err != nil {
		return nil, &ExportError{Revision: revision, Err: err}
	}
	g, err := rdf.Parse(bytes.NewReader(res.Stdout), rdf.NTriples)
	if err != nil {
		return nil, &ExportError{Revision: revision, Err: err}
	}
	if e.Logger != nil {
		e.Logger.Debug("exported provenance graph", "revision", revision, "triples", g.Len())
	}
	if e.ProjectDir != "" {
		g.Bind(vocab.LocalProjectPrefix, "file://"+e.ProjectDir+"/")
	}
	return g, nil
}
