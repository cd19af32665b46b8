package config

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// Document file names, shared by the embedded defaults and override directories
const (
	GraphicalFile = "graph_graphical_config.json"
	ReductionFile = "graph_reduction_config.json"
	SubsetFile    = "graph_nodes_subset_config.json"
	StyleFile     = "graph_config.yaml"
)

//go:embed defaults/*
var defaults embed.FS

// ElementConfig is the interactive style of one node type or edge predicate
type ElementConfig struct {
	Shape     string `json:"shape,omitempty"`
	Color     string `json:"color,omitempty"`
	Border    int    `json:"border,omitempty"`
	Width     int    `json:"width,omitempty"`
	Dashes    bool   `json:"dashes,omitempty"`
	Clickable bool   `json:"clickable"`
	// LiteralPredicates are the literal rows shown in the node label, in order
	LiteralPredicates []string `json:"literal_predicates,omitempty"`
	// ConfigFile names the document the entry came from
	ConfigFile string `json:"config_file"`
}

// Graphical holds node styles keyed by type name and edge styles keyed by
// predicate local name
type Graphical struct {
	Nodes map[string]ElementConfig `json:"Nodes"`
	Edges map[string]ElementConfig `json:"Edges"`
}

// Reduction lists the predicates whose neighbors are absorbed into a node of
// the keyed type
type Reduction struct {
	Name               string   `json:"name"`
	PredicatesToAbsorb []string `json:"predicates_to_absorb"`
}

// Subset is a named group of namespace prefixes toggled together
type Subset struct {
	Name     string   `json:"name"`
	Prefixes []string `json:"prefixes"`
}

// NodeStyle is the static (Graphviz) style of one node type
type NodeStyle struct {
	Shape            string `yaml:"shape"`
	Color            string `yaml:"color"`
	Style            string `yaml:"style"`
	CellBorder       *int   `yaml:"cellborder"`
	Border           *int   `yaml:"border"`
	DisplayTypeTitle *bool  `yaml:"display_type_title"`
}

// StyleTable maps type names to static styles. The Default entry fills in
// anything a type leaves unset.
type StyleTable map[string]NodeStyle

// DefaultStyle is the key of the fallback entry
const DefaultStyle = "Default"

// Lookup returns the style for a type name with every field resolved
func (t StyleTable) Lookup(name string) NodeStyle {
	def := t[DefaultStyle]
	s, ok := t[name]
	if !ok {
		s = def
	}
	if s.Shape == "" {
		s.Shape = def.Shape
	}
	if s.Color == "" {
		s.Color = def.Color
	}
	if s.Style == "" {
		s.Style = def.Style
	}
	if s.CellBorder == nil {
		s.CellBorder = def.CellBorder
	}
	if s.Border == nil {
		s.Border = def.Border
	}
	if s.DisplayTypeTitle == nil {
		s.DisplayTypeTitle = def.DisplayTypeTitle
	}
	return s
}

// Bundle is every configuration document the renderers read. It is never
// mutated after LoadBundle returns.
type Bundle struct {
	Graphical  Graphical
	Reductions map[string]Reduction
	Subsets    map[string]Subset
	Styles     StyleTable
	// Prefixes resolves the prefixed names used inside the documents
	Prefixes map[string]string
}

// LoadBundle reads the four documents from dir, falling back to the embedded
// defaults for any file dir does not have. An empty dir uses only defaults.
func LoadBundle(ctx context.Context, dir string) (*Bundle, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = abs
	}
	fs := afs.New()
	read := func(name string) ([]byte, error) {
		if dir != "" {
			url := filepath.Join(dir, name)
			if ok, _ := fs.Exists(ctx, url); ok {
				return fs.DownloadWithURL(ctx, url)
			}
		}
		return defaults.ReadFile("defaults/" + name)
	}

	b := &Bundle{Prefixes: vocab.Prefixes}

	data, err := read(GraphicalFile)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &b.Graphical); err != nil {
		return nil, fmt.Errorf("parse %s: %w", GraphicalFile, err)
	}
	stamp(b.Graphical.Nodes, GraphicalFile)
	stamp(b.Graphical.Edges, GraphicalFile)

	if data, err = read(ReductionFile); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &b.Reductions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ReductionFile, err)
	}

	if data, err = read(SubsetFile); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &b.Subsets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", SubsetFile, err)
	}

	if data, err = read(StyleFile); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &b.Styles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", StyleFile, err)
	}
	if _, ok := b.Styles[DefaultStyle]; !ok {
		return nil, fmt.Errorf("%s: missing %s entry", StyleFile, DefaultStyle)
	}
	return b, nil
}

func stamp(m map[string]ElementConfig, file string) {
	for k, v := range m {
		if v.ConfigFile == "" {
			v.ConfigFile = file
			m[k] = v
		}
	}
}

// Expand resolves a prefixed name like "oda:isUsingRadius" to a full IRI.
// Unknown prefixes and full IRIs are returned unchanged.
func (b *Bundle) Expand(name string) string {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return name
	}
	if ns, ok := b.Prefixes[prefix]; ok {
		return ns + local
	}
	return name
}

// ConfigNames lists the distinct source documents of the graphical entries
func (b *Bundle) ConfigNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range []map[string]ElementConfig{b.Graphical.Nodes, b.Graphical.Edges} {
		for _, c := range m {
			if c.ConfigFile != "" && !seen[c.ConfigFile] {
				seen[c.ConfigFile] = true
				out = append(out, c.ConfigFile)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ReductionKeys returns the reduction type names in sorted order
func (b *Bundle) ReductionKeys() []string {
	keys := make([]string, 0, len(b.Reductions))
	for k := range b.Reductions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SubsetKeys returns the subset ids in sorted order
func (b *Bundle) SubsetKeys() []string {
	keys := make([]string, 0, len(b.Subsets))
	for k := range b.Subsets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
