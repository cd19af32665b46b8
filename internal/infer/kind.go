package infer

import (
	"sort"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// NodeKind is the closed set of node types the renderers know how to style.
// Anything else is Unknown and gets the default style.
type NodeKind int

const (
	Unknown NodeKind = iota
	Action
	Activity
	Run
	CommandInput
	CommandOutput
	CommandOutputImage
	CommandOutputFitsFile
	CommandOutputNotebook
	CommandOutputEcsvFile
	CommandParameter
	AstroqueryModule
	AstrophysicalObject
	AstrophysicalRegion
	AstrophysicalImage
	SkyCoordinates
	Angle
	Pixels
	ImageBand
	Position
	Coordinates
)

var kindNames = map[NodeKind]string{
	Unknown:               "Unknown",
	Action:                "Action",
	Activity:              "Activity",
	Run:                   "Run",
	CommandInput:          "CommandInput",
	CommandOutput:         "CommandOutput",
	CommandOutputImage:    "CommandOutputImage",
	CommandOutputFitsFile: "CommandOutputFitsFile",
	CommandOutputNotebook: "CommandOutputNotebook",
	CommandOutputEcsvFile: "CommandOutputEcsvFile",
	CommandParameter:      "CommandParameter",
	AstroqueryModule:      "AstroqueryModule",
	AstrophysicalObject:   "AstrophysicalObject",
	AstrophysicalRegion:   "AstrophysicalRegion",
	AstrophysicalImage:    "AstrophysicalImage",
	SkyCoordinates:        "SkyCoordinates",
	Angle:                 "Angle",
	Pixels:                "Pixels",
	ImageBand:             "ImageBand",
	Position:              "Position",
	Coordinates:           "Coordinates",
}

var kindByType = map[string]NodeKind{
	vocab.Action:                Action,
	vocab.Activity:              Activity,
	vocab.Run:                   Run,
	vocab.CommandInput:          CommandInput,
	vocab.CommandOutput:         CommandOutput,
	vocab.CommandOutputImage:    CommandOutputImage,
	vocab.CommandOutputFitsFile: CommandOutputFitsFile,
	vocab.CommandOutputNotebook: CommandOutputNotebook,
	vocab.CommandOutputEcsvFile: CommandOutputEcsvFile,
	vocab.CommandParameter:      CommandParameter,
	vocab.AstroqueryModule:      AstroqueryModule,
	vocab.AstrophysicalObject:   AstrophysicalObject,
	vocab.AstrophysicalRegion:   AstrophysicalRegion,
	vocab.AstrophysicalImage:    AstrophysicalImage,
	vocab.SkyCoordinates:        SkyCoordinates,
	vocab.Angle:                 Angle,
	vocab.Pixels:                Pixels,
	vocab.ImageBand:             ImageBand,
	vocab.ODAPosition:           Position,
	vocab.Coordinates:           Coordinates,
}

func (k NodeKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[Unknown]
}

// IsOutput covers CommandOutput and its file-type refinements
func (k NodeKind) IsOutput() bool {
	return k >= CommandOutput && k <= CommandOutputEcsvFile
}

// KindOfType maps a type IRI to its kind
func KindOfType(typeIRI string) NodeKind {
	return kindByType[typeIRI]
}

// KindByName maps a short type name back to its kind
func KindByName(name string) NodeKind {
	for k, n := range kindNames {
		if n == name && k != Unknown {
			return k
		}
	}
	return Unknown
}

// TypeInfo is what the renderers know about a node's type
type TypeInfo struct {
	Kind NodeKind
	// Name is the short type name; for Unknown kinds, the local name of the type IRI
	Name string
}

// TypeIndex maps node identity to its type. Nodes absent from the index have
// no rdf:type.
type TypeIndex map[rdf.Term]TypeInfo

// Lookup returns the node's type, or Unknown with an empty name
func (ti TypeIndex) Lookup(node rdf.Term) TypeInfo {
	if info, ok := ti[node]; ok {
		return info
	}
	return TypeInfo{Kind: Unknown}
}

// Kind is Lookup(node).Kind
func (ti TypeIndex) Kind(node rdf.Term) NodeKind {
	return ti.Lookup(node).Kind
}

// NodesOf returns every node of the given kind, sorted
func (ti TypeIndex) NodesOf(kind NodeKind) []rdf.Term {
	var out []rdf.Term
	for n, info := range ti {
		if info.Kind == kind {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// BuildTypeIndex records one type per typed node. A known kind wins over an
// unknown one; ties go to the lexically smallest type IRI.
func BuildTypeIndex(g *rdf.Graph) TypeIndex {
	ti := make(TypeIndex)
	for _, t := range g.Match(rdf.Any, rdf.IRI(vocab.Type), rdf.Any) {
		if !t.O.IsIRI() {
			continue
		}
		info := TypeInfo{Kind: KindOfType(t.O.Value)}
		if info.Kind == Unknown {
			info.Name = t.O.Local()
		} else {
			info.Name = info.Kind.String()
		}
		cur, seen := ti[t.S]
		if !seen || (cur.Kind == Unknown && info.Kind != Unknown) {
			ti[t.S] = info
		}
	}
	return ti
}
