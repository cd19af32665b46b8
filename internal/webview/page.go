// Package webview renders the interactive HTML page: a menu, a legend, one
// network canvas and the embedded graph data read by the bundled script.
package webview

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"sort"

	"github.com/viant/afs"

	"github.com/oda-hub/deprecated-renku-aqs/internal/config"
	"github.com/oda-hub/deprecated-renku-aqs/internal/explore"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

//go:embed assets/*
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/page.html.tmpl"))

// RenderError is a failure to build or write a page
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("render page: %v", e.Err)
	}
	return fmt.Sprintf("render page %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Options controls one page
type Options struct {
	Title string
	// SessionURL is the base of the exploration session API. Empty renders a
	// standalone page that explores the embedded graph locally.
	SessionURL string
}

// Data is the JSON document embedded in script#aqs-data. Triples and Catalog
// are the local store of standalone pages: the script indexes the
// resource-to-resource triples for neighborhood queries and reads node
// descriptions from the catalog, since cleanup drops rdf:type.
type Data struct {
	Triples    string                      `json:"triples"`
	Catalog    map[string]explore.NodeData `json:"catalog"`
	View       explore.View                `json:"view"`
	Graphical  config.Graphical            `json:"graphical"`
	Reductions map[string]config.Reduction `json:"reductions"`
	Subsets    map[string]config.Subset    `json:"subsets"`
	Prefixes   map[string]string           `json:"prefixes"`
	Configs    []string                    `json:"configs"`
	SessionURL string                      `json:"session_url,omitempty"`
}

type choice struct {
	Value   string
	Label   string
	Checked bool
}

type legendEntry struct {
	Label string
	Color string
}

type page struct {
	Title      string
	Layouts    []choice
	Subsets    []choice
	Reductions []choice
	Configs    []choice
	Legend     []legendEntry
	Data       Data
}

// Renderer builds pages from one configuration bundle
type Renderer struct {
	bundle *config.Bundle
}

func New(bundle *config.Bundle) *Renderer {
	return &Renderer{bundle: bundle}
}

// Render writes the page for the store's graph. The view is the initial
// canvas content, normally the backbone.
func (r *Renderer) Render(w io.Writer, store *explore.GraphStore, view explore.View, opts Options) error {
	doc, err := r.Page(store, view, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// Page returns the complete HTML document
func (r *Renderer) Page(store *explore.GraphStore, view explore.View, opts Options) ([]byte, error) {
	triples, err := store.Graph().Serialize(rdf.NTriples)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	title := opts.Title
	if title == "" {
		title = "Provenance graph"
	}

	p := page{
		Title: title,
		Data: Data{
			Triples:    triples,
			Catalog:    store.Catalog(),
			View:       view,
			Graphical:  r.bundle.Graphical,
			Reductions: r.bundle.Reductions,
			Subsets:    r.bundle.Subsets,
			Prefixes:   r.bundle.Prefixes,
			Configs:    r.bundle.ConfigNames(),
			SessionURL: opts.SessionURL,
		},
	}
	for _, l := range []explore.Layout{explore.LayoutRepulsion, explore.LayoutHierarchical} {
		label := "Undirected"
		if l == explore.LayoutHierarchical {
			label = "Hierarchical"
		}
		p.Layouts = append(p.Layouts, choice{Value: string(l), Label: label, Checked: view.Layout == l})
	}
	disabled := toSet(view.DisabledSubsets)
	for _, k := range r.bundle.SubsetKeys() {
		p.Subsets = append(p.Subsets, choice{Value: k, Label: r.bundle.Subsets[k].Name, Checked: !disabled[k]})
	}
	active := toSet(view.ActiveReductions)
	for _, k := range r.bundle.ReductionKeys() {
		p.Reductions = append(p.Reductions, choice{Value: k, Label: r.bundle.Reductions[k].Name, Checked: active[k]})
	}
	off := toSet(view.DisabledConfigs)
	for _, name := range p.Data.Configs {
		p.Configs = append(p.Configs, choice{Value: name, Label: name, Checked: !off[name]})
	}
	p.Legend = legend(r.bundle, p.Data.Catalog)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, &RenderError{Err: err}
	}
	doc, err := InjectHead(buf.Bytes())
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	return doc, nil
}

// legend lists the configured node types present in the graph
func legend(b *config.Bundle, catalog map[string]explore.NodeData) []legendEntry {
	seen := make(map[string]bool)
	for _, n := range catalog {
		seen[n.Type] = true
	}
	var out []legendEntry
	for typ, cfg := range b.Graphical.Nodes {
		if seen[typ] && cfg.Color != "" {
			out = append(out, legendEntry{Label: typ, Color: cfg.Color})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func toSet(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, v := range list {
		m[v] = true
	}
	return m
}

// WriteFile renders the page to path
func (r *Renderer) WriteFile(ctx context.Context, path string, store *explore.GraphStore, view explore.View, opts Options) error {
	doc, err := r.Page(store, view, opts)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}
	if err := afs.New().Upload(ctx, abs, 0o644, bytes.NewReader(doc)); err != nil {
		return &RenderError{Path: path, Err: err}
	}
	return nil
}

// StaticView is the initial backbone view of a page without a session
func StaticView(store *explore.GraphStore, bundle *config.Bundle) explore.View {
	return explore.NewSession(store, bundle).View()
}
