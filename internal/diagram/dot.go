// Package diagram renders a cleaned provenance graph as a Graphviz diagram:
// one table-shaped label per node with a row per literal, styled by node type.
package diagram

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/oda-hub/deprecated-renku-aqs/internal/config"
	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// Renderer turns graphs into DOT source and raster images
type Renderer struct {
	Styles config.StyleTable
	// DotBin is the Graphviz executable
	DotBin string
	// Engine is passed as -K (fdp, dot, neato...)
	Engine string
}

// New returns a renderer using the static style table
func New(styles config.StyleTable, dotBin, engine string) *Renderer {
	if dotBin == "" {
		dotBin = "dot"
	}
	if engine == "" {
		engine = "fdp"
	}
	return &Renderer{Styles: styles, DotBin: dotBin, Engine: engine}
}

type row struct {
	pred  rdf.Term
	value string
}

// Source returns the DOT text for g. Nodes missing from types keep the plain
// structural rendering: title, identifier and predicate/value rows.
func (r *Renderer) Source(g *rdf.Graph, types infer.TypeIndex) string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("  node [fontname=\"DejaVu Sans\"];\n")
	b.WriteString("  edge [fontname=\"DejaVu Sans\", color=\"#6F6F6F\"];\n")

	ids := make(map[rdf.Term]string)
	for i, n := range g.Nodes() {
		id := fmt.Sprintf("node%d", i)
		ids[n] = id

		var rows []row
		for _, t := range g.Match(n, rdf.Any, rdf.Any) {
			if t.O.IsLiteral() {
				rows = append(rows, row{pred: t.P, value: t.O.Value})
			}
		}
		sort.SliceStable(rows, func(i, j int) bool { return g.Compact(rows[i].pred) < g.Compact(rows[j].pred) })

		info, typed := types[n]
		if !typed {
			fmt.Fprintf(&b, "  %s [shape=none, margin=0, label=<%s>];\n", id, plainTable(g, n, rows))
			continue
		}
		style := r.Styles.Lookup(info.Name)
		fmt.Fprintf(&b, "  %s [shape=%q, color=%q, style=%q, margin=0, label=<%s>];\n",
			id, style.Shape, style.Color, style.Style, styledTable(info, style, rows))
	}

	for _, t := range g.Triples() {
		if !t.O.IsResource() {
			continue
		}
		fmt.Fprintf(&b, "  %s -> %s [label=<%s>];\n", ids[t.S], ids[t.O], html.EscapeString(edgeLabel(g, t.P)))
	}
	b.WriteString("}\n")
	return b.String()
}

func plainTable(g *rdf.Graph, n rdf.Term, rows []row) string {
	var b strings.Builder
	b.WriteString(`<table border="0" cellborder="1" cellspacing="0" cellpadding="2">`)
	fmt.Fprintf(&b, `<tr><td bgcolor="#E5E5E5" colspan="2"><B>%s</B></td></tr>`, html.EscapeString(g.Label(n)))
	fmt.Fprintf(&b, `<tr><td colspan="2"><font point-size="9">%s</font></td></tr>`, html.EscapeString(n.Value))
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><td align="left">%s</td><td align="left">%s</td></tr>`,
			html.EscapeString(g.Compact(r.pred)), html.EscapeString(r.value))
	}
	b.WriteString(`</table>`)
	return b.String()
}

func styledTable(info infer.TypeInfo, style config.NodeStyle, rows []row) string {
	title := typeTitle(info)
	var cells, bottom []string
	for _, r := range rows {
		value := r.value
		switch {
		case r.pred.Value == vocab.StartedAtTime:
			bottom = append(bottom, html.EscapeString(formatTime(value)))
			continue
		case info.Kind == infer.CommandParameter && r.pred.Value == vocab.DefaultValue:
			// the synthesized value is "<name> <value...>": the name becomes the title
			name, rest, _ := strings.Cut(value, " ")
			title, value = name, rest
		}
		escaped := html.EscapeString(value)
		switch {
		case info.Kind == infer.Action && r.pred.Value == vocab.Command:
			escaped = "<B>" + escaped + "</B>"
		case info.Kind == infer.CommandInput:
			escaped = "<B><I>" + escaped + "</I></B>"
		}
		cells = append(cells, escaped)
	}
	cells = append(cells, bottom...)

	var b strings.Builder
	fmt.Fprintf(&b, `<table border="%d" cellborder="%d" cellspacing="0" cellpadding="2">`,
		derefInt(style.Border), derefInt(style.CellBorder))
	showTitle := style.DisplayTypeTitle == nil || *style.DisplayTypeTitle
	if showTitle || len(cells) == 0 {
		fmt.Fprintf(&b, `<tr><td colspan="2"><B>%s</B></td></tr>`, html.EscapeString(title))
	}
	for _, c := range cells {
		fmt.Fprintf(&b, `<tr><td align="center" colspan="2">%s</td></tr>`, c)
	}
	b.WriteString(`</table>`)
	return b.String()
}

// typeTitle is the type name, with CommandOutput refinements shortened to
// their suffix (Image, FitsFile...)
func typeTitle(info infer.TypeInfo) string {
	if info.Kind.IsOutput() && info.Kind != infer.CommandOutput {
		return strings.TrimPrefix(info.Name, "CommandOutput")
	}
	return info.Name
}

// edgeLabel keeps only the local part of the predicate's qualified name
func edgeLabel(g *rdf.Graph, p rdf.Term) string {
	if _, local, ok := g.QName(p); ok {
		return local
	}
	return p.Local()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func formatTime(v string) string {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t.Format("2006-01-02 15:04:05")
		}
	}
	return v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
