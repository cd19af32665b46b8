package diagram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/runner"
)

// RenderError is a rasterization failure
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.Path, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

var formats = map[string]string{
	".png":  "png",
	".svg":  "svg",
	".pdf":  "pdf",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".gif":  "gif",
}

// FormatFor returns the Graphviz output format for a file name
func FormatFor(path string) (string, error) {
	f, ok := formats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	return f, nil
}

// Render writes g as an image to path, choosing the format from its extension
func (r *Renderer) Render(ctx context.Context, g *rdf.Graph, types infer.TypeIndex, path string) error {
	return r.RenderSource(ctx, r.Source(g, types), path)
}

// RenderSource rasterizes DOT text to path
func (r *Renderer) RenderSource(ctx context.Context, src, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}
	if _, err := runner.RunInput(ctx, "", []byte(src), r.DotBin, "-K"+r.Engine, "-T"+format, "-o", path); err != nil {
		return &RenderError{Path: path, Err: err}
	}
	return nil
}
