package query

import (
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// InvalidEntriesWarning is emitted once when requests were dropped by the
// validity filter.
const InvalidEntriesWarning = "some entries are invalid, store should be recreated"

// RequestKind is the shape of an astroquery request
type RequestKind int

const (
	RequestObject RequestKind = iota
	RequestRegion
	RequestImage
)

// RequestKinds lists every kind in evaluation order
var RequestKinds = []RequestKind{RequestObject, RequestRegion, RequestImage}

func (k RequestKind) String() string {
	switch k {
	case RequestObject:
		return "object"
	case RequestRegion:
		return "region"
	case RequestImage:
		return "image"
	}
	return "unknown"
}

// Predicate is the raw annotation predicate linking a run to its target
func (k RequestKind) Predicate() string {
	switch k {
	case RequestRegion:
		return vocab.IsRequestingAstroRegion
	case RequestImage:
		return vocab.IsRequestingAstroImage
	}
	return vocab.IsRequestingAstroObject
}

// targetVar is the variable bound to the requested object/region/image
func (k RequestKind) targetVar() string {
	switch k {
	case RequestRegion:
		return "aRegion"
	case RequestImage:
		return "aImage"
	}
	return "aObject"
}

// Options selects the query variant
type Options struct {
	// Scope restricts matches to activities that used the artifact at this location
	Scope string
	// IncludeDomainInfo adds the astroquery request shapes
	IncludeDomainInfo bool
}

// Query is a construct template and its where clause
type Query struct {
	Template []Pattern
	Where    Group
}

// Build assembles the provenance query for the given options
func Build(opts Options) Query {
	where := backbone(opts)
	template := backboneTemplate()
	if opts.IncludeDomainInfo {
		alts := make([]Group, 0, len(RequestKinds))
		for _, k := range RequestKinds {
			alts = append(alts, requestShape(k, true))
		}
		where.Optional = append(where.Optional, Group{Union: alts})
		template = append(template, requestTemplate()...)
	}
	return Query{Template: template, Where: where}
}

// Report carries the non-fatal findings of a query
type Report struct {
	// InvalidEntries counts requests rejected by the validity filter
	InvalidEntries int
}

// Warning returns the aggregate warning text, or "" when nothing was rejected
func (r Report) Warning() string {
	if r.InvalidEntries == 0 {
		return ""
	}
	return InvalidEntriesWarning
}

// Extract runs the provenance query and returns the constructed subgraph
func Extract(g *rdf.Graph, opts Options) (*rdf.Graph, Report) {
	q := Build(opts)
	out := Construct(g, q.Template, q.Where)
	var rep Report
	if opts.IncludeDomainInfo {
		rep.InvalidEntries = countInvalid(g)
	}
	return out, rep
}

func backbone(opts Options) Group {
	g := Group{
		Patterns: []Pattern{
			P(V("activity"), vocab.Type, C(vocab.Activity)),
			Seq(V("activity"), V("action"), Fwd(vocab.QualifiedAssociation), Fwd(vocab.HadPlan)),
			P(V("action"), vocab.Command, V("actionCommand")),
		},
		Optional: []Group{
			{Patterns: []Pattern{P(V("activity"), vocab.StartedAtTime, V("activityTime"))}},
			{Patterns: []Pattern{
				P(V("action"), vocab.HasInputs, V("actionInput")),
				P(V("actionInput"), vocab.DefaultValue, V("inputValue")),
			}},
			{Patterns: []Pattern{
				P(V("action"), vocab.HasOutputs, V("actionOutput")),
				P(V("actionOutput"), vocab.DefaultValue, V("outputValue")),
			}},
			{
				Patterns: []Pattern{
					P(V("action"), vocab.HasArguments, V("actionArgument")),
					P(V("actionArgument"), vocab.DefaultValue, V("argValue")),
				},
				Optional: []Group{{Patterns: []Pattern{P(V("actionArgument"), vocab.Position, V("argPosition"))}}},
			},
		},
	}
	if opts.Scope != "" {
		g.Patterns = append(g.Patterns,
			Seq(V("activity"), V("entityInput"), Fwd(vocab.QualifiedUsage), Fwd(vocab.ProvEntity)),
			P(V("entityInput"), vocab.AtLocation, V("entityInputLocation")),
		)
		g.Filters = append(g.Filters, locationIs(opts.Scope))
	}
	return g
}

func locationIs(scope string) Filter {
	return func(b Binding) bool {
		t, ok := b.Get("entityInputLocation")
		return ok && t.Value == scope
	}
}

func backboneTemplate() []Pattern {
	return []Pattern{
		P(V("activity"), vocab.Type, C(vocab.Activity)),
		P(V("activity"), vocab.StartedAtTime, V("activityTime")),
		P(V("activity"), vocab.HadPlan, V("action")),
		P(V("action"), vocab.Type, C(vocab.Action)),
		P(V("action"), vocab.Command, V("actionCommand")),
		P(V("action"), vocab.HasInputs, V("actionInput")),
		P(V("action"), vocab.HasOutputs, V("actionOutput")),
		P(V("action"), vocab.HasArguments, V("actionArgument")),
		P(V("actionInput"), vocab.Type, C(vocab.CommandInput)),
		P(V("actionInput"), vocab.DefaultValue, V("inputValue")),
		P(V("actionOutput"), vocab.Type, C(vocab.CommandOutput)),
		P(V("actionOutput"), vocab.DefaultValue, V("outputValue")),
		P(V("actionArgument"), vocab.Type, C(vocab.CommandParameter)),
		P(V("actionArgument"), vocab.DefaultValue, V("argValue")),
		P(V("actionArgument"), vocab.Position, V("argPosition")),
	}
}

// requestShape matches one run of the given kind attached to ?activity through
// its annotation. guard applies the validity filter on object requests.
func requestShape(kind RequestKind, guard bool) Group {
	target := kind.targetVar()
	g := Group{
		Patterns: []Pattern{
			P(V("run"), vocab.IsUsing, V("aqModule")),
			P(V("run"), kind.Predicate(), V(target)),
			Seq(V("run"), V("activity"), Inv(vocab.HasBody), Fwd(vocab.HasTarget)),
			P(V("aqModule"), vocab.Title, V("aqModuleName")),
			P(V(target), vocab.Title, V(target+"Name")),
		},
		Optional: []Group{
			optType("run"), optType("aqModule"), optType(target),
		},
	}
	switch kind {
	case RequestObject:
		if guard {
			g.Filters = append(g.Filters, validObject)
		}
	case RequestRegion:
		g.Patterns = append(g.Patterns,
			P(V("aRegion"), vocab.IsUsingSkyCoordinates, V("skyCoords")),
			P(V("skyCoords"), vocab.Title, V("skyCoordsName")),
			P(V("aRegion"), vocab.IsUsingRadius, V("radius")),
			P(V("radius"), vocab.Title, V("radiusName")),
		)
		g.Optional = append(g.Optional, optType("skyCoords"), optType("radius"))
	case RequestImage:
		for _, sub := range imageParts {
			g.Optional = append(g.Optional, Group{
				Patterns: []Pattern{
					P(V("aImage"), sub.pred, V(sub.name)),
					P(V(sub.name), vocab.Title, V(sub.name+"Name")),
				},
				Optional: []Group{optType(sub.name)},
			})
		}
	}
	return g
}

var imageParts = []struct {
	pred, name string
}{
	{vocab.IsUsingCoordinates, "coordinates"},
	{vocab.IsUsingPosition, "position"},
	{vocab.IsUsingRadius, "radius"},
	{vocab.IsUsingPixels, "pixels"},
	{vocab.IsUsingImageBand, "imageBand"},
}

func optType(v string) Group {
	return Group{Patterns: []Pattern{P(V(v), vocab.Type, V(v+"Type"))}}
}

// validObject rejects objects whose IRI or name contains a space. Decoding
// percent-encodes spaces in IRIs, so the escaped form counts too.
func validObject(b Binding) bool {
	obj, name := b["aObject"], b["aObjectName"]
	return !rdf.HasSpace(obj.Value) && !strings.Contains(name.Value, " ")
}

func requestTemplate() []Pattern {
	t := []Pattern{
		P(V("run"), vocab.Type, V("runType")),
		P(V("run"), vocab.IsUsing, V("aqModule")),
		P(V("run"), vocab.IsRequestingAstroObject, V("aObject")),
		P(V("run"), vocab.IsRequestingAstroRegion, V("aRegion")),
		P(V("run"), vocab.IsRequestingAstroImage, V("aImage")),
		P(V("run"), vocab.HasTarget, V("activity")),
		P(V("aqModule"), vocab.Type, V("aqModuleType")),
		P(V("aqModule"), vocab.Name, V("aqModuleName")),
		P(V("aRegion"), vocab.IsUsingSkyCoordinates, V("skyCoords")),
		P(V("aRegion"), vocab.IsUsingRadius, V("radius")),
		P(V("aImage"), vocab.IsUsingRadius, V("radius")),
	}
	for _, target := range []string{"aObject", "aRegion", "aImage"} {
		t = append(t,
			P(V(target), vocab.Type, V(target+"Type")),
			P(V(target), vocab.Name, V(target+"Name")),
		)
	}
	for _, sub := range imageParts {
		if sub.name != "radius" {
			t = append(t, P(V("aImage"), sub.pred, V(sub.name)))
		}
	}
	for _, sub := range []string{"skyCoords", "radius", "coordinates", "position", "pixels", "imageBand"} {
		t = append(t,
			P(V(sub), vocab.Type, V(sub+"Type")),
			P(V(sub), vocab.Title, V(sub+"Name")),
		)
	}
	return t
}

// countInvalid counts object requests the validity filter rejects
func countInvalid(g *rdf.Graph) int {
	rows := Select(g, requestShape(RequestObject, false))
	n := 0
	for _, row := range Distinct(rows, "run", "aObject", "aObjectName") {
		if !validObject(row) {
			n++
		}
	}
	return n
}

// Request is one row of the astroquery request report
type Request struct {
	Run        rdf.Term
	Activity   rdf.Term
	Kind       RequestKind
	Module     rdf.Term
	ModuleName string
	Target     rdf.Term
	TargetName string
}

// RunID is the last path segment of the run IRI
func (r Request) RunID() string {
	v := r.Run.Value
	if i := strings.LastIndexAny(v, "/#"); i >= 0 {
		return v[i+1:]
	}
	return v
}

// Requests lists the valid astroquery requests of the graph, optionally
// restricted to activities that used the scoped artifact.
func Requests(g *rdf.Graph, opts Options) ([]Request, Report) {
	var out []Request
	seen := make(map[[3]rdf.Term]bool)
	for _, kind := range RequestKinds {
		shape := requestShape(kind, true)
		if opts.Scope != "" {
			shape.Patterns = append(shape.Patterns,
				Seq(V("activity"), V("entityInput"), Fwd(vocab.QualifiedUsage), Fwd(vocab.ProvEntity)),
				P(V("entityInput"), vocab.AtLocation, V("entityInputLocation")),
			)
			shape.Filters = append(shape.Filters, locationIs(opts.Scope))
		}
		rows := Select(g, shape)
		SortBy(rows, "run", kind.targetVar())
		for _, row := range rows {
			target := row[kind.targetVar()]
			key := [3]rdf.Term{row["run"], rdf.Literal(kind.String()), target}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Request{
				Run:        row["run"],
				Activity:   row["activity"],
				Kind:       kind,
				Module:     row["aqModule"],
				ModuleName: row["aqModuleName"].Value,
				Target:     target,
				TargetName: row[kind.targetVar()+"Name"].Value,
			})
		}
	}
	return out, Report{InvalidEntries: countInvalid(g)}
}
