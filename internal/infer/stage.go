// Package infer derives display relations and node types from the extracted
// provenance subgraph. Each pass is a Stage: it reads its input graph and
// returns a rewritten copy.
package infer

import (
	"fmt"
	"log/slog"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// Stage is one graph rewrite. Reads lists the predicates the stage consumes;
// Removes lists the predicates it deletes from the whole graph.
type Stage interface {
	Name() string
	Reads() []string
	Removes() []string
	Apply(in *rdf.Graph, env *Env) (*rdf.Graph, error)
}

// Diagnostic is a non-fatal finding reported by a stage
type Diagnostic struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Diagnostic codes
const (
	CodeInvalidEntries    = "invalid_entries"
	CodeOddArguments      = "odd_arguments"
	CodeBadPosition       = "bad_position"
	CodeMissingModule     = "missing_module"
	CodeUnmatchedFragment = "unmatched_fragment"
)

// ArgumentValue is one positional argument collected from an action
type ArgumentValue struct {
	Value    string
	Position int
}

// Env carries state between stages of one pipeline run
type Env struct {
	Types       TypeIndex
	Arguments   map[rdf.Term][]ArgumentValue
	Diagnostics []Diagnostic
	Logger      *slog.Logger

	argumentsHarvested bool
}

// NewEnv returns an empty environment logging to logger (slog.Default when nil)
func NewEnv(logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{
		Arguments: make(map[rdf.Term][]ArgumentValue),
		Logger:    logger,
	}
}

// Report records a diagnostic
func (e *Env) Report(stage, code, format string, args ...any) {
	d := Diagnostic{Stage: stage, Code: code, Message: fmt.Sprintf(format, args...)}
	e.Diagnostics = append(e.Diagnostics, d)
	e.Logger.Debug("diagnostic", "stage", stage, "code", code, "message", d.Message)
}
