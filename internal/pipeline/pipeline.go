// Package pipeline runs query extraction, inference and cleanup in their
// required order and refuses any order that would read a predicate after it
// has been removed.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/oda-hub/deprecated-renku-aqs/internal/cleanup"
	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/query"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// StageOrderError reports a stage that reads a predicate an earlier stage removed
type StageOrderError struct {
	Stage     string
	Predicate string
	RemovedBy string
}

func (e *StageOrderError) Error() string {
	return fmt.Sprintf("stage %s reads %s, already removed by %s", e.Stage, e.Predicate, e.RemovedBy)
}

// Options controls extraction and inference
type Options struct {
	// Scope limits the graph to activities that used this input artifact
	Scope string
	// IncludeDomainInfo enables astroquery request extraction and inference
	IncludeDomainInfo bool
	Logger            *slog.Logger
}

// Result is a cleaned graph ready for rendering
type Result struct {
	Graph       *rdf.Graph
	Types       infer.TypeIndex
	Diagnostics []infer.Diagnostic
	Env         *infer.Env
}

// Warnings returns the distinct diagnostic messages worth showing a user
func (r *Result) Warnings() []string {
	var out []string
	for _, d := range r.Diagnostics {
		if d.Code == infer.CodeInvalidEntries {
			out = append(out, d.Message)
		}
	}
	return out
}

// Pipeline is a validated sequence of stages
type Pipeline struct {
	stages []infer.Stage
}

// New validates the stage order
func New(stages ...infer.Stage) (*Pipeline, error) {
	removedBy := make(map[string]string)
	for _, st := range stages {
		for _, p := range st.Reads() {
			if by, ok := removedBy[p]; ok {
				return nil, &StageOrderError{Stage: st.Name(), Predicate: p, RemovedBy: by}
			}
		}
		for _, p := range st.Removes() {
			if _, ok := removedBy[p]; !ok {
				removedBy[p] = st.Name()
			}
		}
	}
	return &Pipeline{stages: stages}, nil
}

// Stages returns the default stage sequence
func Stages(includeDomainInfo bool) []infer.Stage {
	stages := []infer.Stage{
		infer.HoistActivityTime{},
		infer.HarvestInputs{},
		infer.RetypeOutputs{},
		infer.HarvestArguments{},
		infer.SynthesizeParameters{},
		infer.IndexTypes{},
	}
	if includeDomainInfo {
		stages = append(stages, infer.InferDomainRelations{})
	}
	return append(stages, cleanup.Stage{})
}

// Run applies every stage in order. The input graph is not modified.
func (p *Pipeline) Run(in *rdf.Graph, env *infer.Env) (*rdf.Graph, error) {
	g := in
	for _, st := range p.stages {
		next, err := st.Apply(g, env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Name(), err)
		}
		env.Logger.Debug("stage done", "stage", st.Name(), "triples", next.Len())
		g = next
	}
	return g, nil
}

// Build extracts the provenance subgraph from a full graph and runs the
// default stages over it
func Build(full *rdf.Graph, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	env := infer.NewEnv(logger)

	extracted, rep := query.Extract(full, query.Options{Scope: opts.Scope, IncludeDomainInfo: opts.IncludeDomainInfo})
	if w := rep.Warning(); w != "" {
		env.Report("query", infer.CodeInvalidEntries, "%s", w)
		logger.Warn(w, "count", rep.InvalidEntries)
	}

	p, err := New(Stages(opts.IncludeDomainInfo)...)
	if err != nil {
		return nil, err
	}
	cleaned, err := p.Run(extracted, env)
	if err != nil {
		return nil, err
	}
	return &Result{Graph: cleaned, Types: env.Types, Diagnostics: env.Diagnostics, Env: env}, nil
}
