// Package vocab holds the namespaces and IRIs used across the provenance graph.
package vocab

// Namespace IRIs
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	PROV    = "http://www.w3.org/ns/prov#"
	Renku   = "https://swissdatasciencecenter.github.io/renku-ontology#"
	ODA     = "http://odahub.io/ontology#"
	ODAS    = "https://odahub.io/ontology#"
	Schema  = "http://schema.org/"
	OA      = "http://www.w3.org/ns/oa#"
	DCTerms = "http://purl.org/dc/terms/"
	AQS     = "http://www.w3.org/ns/aqs#"
	FOAF    = "http://xmlns.com/foaf/0.1/"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
)

// ParameterBase prefixes the IRIs of synthesized command parameters.
const ParameterBase = "https://renkulab.io/aqs/parameters/"

// RDF and RDFS terms
const (
	Type  = RDF + "type"
	Label = RDFS + "label"
)

// XSD datatypes
const (
	XSDString   = XSD + "string"
	XSDInteger  = XSD + "integer"
	XSDDateTime = XSD + "dateTime"
)

// PROV terms
const (
	Activity             = PROV + "Activity"
	Entity               = PROV + "Entity"
	StartedAtTime        = PROV + "startedAtTime"
	HadPlan              = PROV + "hadPlan"
	QualifiedAssociation = PROV + "qualifiedAssociation"
	QualifiedUsage       = PROV + "qualifiedUsage"
	QualifiedGeneration  = PROV + "qualifiedGeneration"
	ProvEntity           = PROV + "entity"
	ProvActivity         = PROV + "activity"
	AtLocation           = PROV + "atLocation"
)

// Renku terms
const (
	Command               = Renku + "command"
	HasInputs             = Renku + "hasInputs"
	HasOutputs            = Renku + "hasOutputs"
	HasArguments          = Renku + "hasArguments"
	Position              = Renku + "position"
	Checksum              = Renku + "checksum"
	CommandInput          = Renku + "CommandInput"
	CommandOutput         = Renku + "CommandOutput"
	CommandParameter      = Renku + "CommandParameter"
	CommandOutputImage    = Renku + "CommandOutputImage"
	CommandOutputFitsFile = Renku + "CommandOutputFitsFile"
	CommandOutputNotebook = Renku + "CommandOutputNotebook"
	CommandOutputEcsvFile = Renku + "CommandOutputEcsvFile"
	IsInputOf             = Renku + "isInputOf"
	IsArgumentOf          = Renku + "isArgumentOf"
)

// schema.org terms
const (
	Action       = Schema + "Action"
	DefaultValue = Schema + "defaultValue"
	Name         = Schema + "name"
)

// Web annotation terms
const (
	Annotation = OA + "Annotation"
	HasBody    = OA + "hasBody"
	HasTarget  = OA + "hasTarget"
)

// Dublin Core terms
const (
	Title  = DCTerms + "title"
	Source = DCTerms + "source"
)

// ODA classes
const (
	Run                 = ODA + "Run"
	AstroqueryModule    = ODA + "AstroqueryModule"
	AstrophysicalObject = ODA + "AstrophysicalObject"
	AstrophysicalRegion = ODA + "AstrophysicalRegion"
	AstrophysicalImage  = ODA + "AstrophysicalImage"
	SkyCoordinates      = ODA + "SkyCoordinates"
	Angle               = ODA + "Angle"
	Pixels              = ODA + "Pixels"
	ImageBand           = ODA + "ImageBand"
	ODAPosition         = ODA + "Position"
	Coordinates         = ODA + "Coordinates"
)

// ODA request predicates, as written by the astroquery hooks
const (
	IsUsing                 = ODA + "isUsing"
	IsRequestingAstroObject = ODA + "isRequestingAstroObject"
	IsRequestingAstroRegion = ODA + "isRequestingAstroRegion"
	IsRequestingAstroImage  = ODA + "isRequestingAstroImage"
	IsUsingSkyCoordinates   = ODA + "isUsingSkyCoordinates"
	IsUsingRadius           = ODA + "isUsingRadius"
	IsUsingCoordinates      = ODA + "isUsingCoordinates"
	IsUsingPosition         = ODA + "isUsingPosition"
	IsUsingPixels           = ODA + "isUsingPixels"
	IsUsingImageBand        = ODA + "isUsingImageBand"
)

// ODA display predicates produced by inference
const (
	IsUsedDuring        = ODA + "isUsedDuring"
	RequestsAstroObject = ODA + "requestsAstroObject"
	RequestsAstroRegion = ODA + "requestsAstroRegion"
	RequestsAstroImage  = ODA + "requestsAstroImage"
)

// Prefixes are the default display bindings. They never change graph meaning.
var Prefixes = map[string]string{
	"rdf":     RDF,
	"rdfs":    RDFS,
	"xsd":     XSD,
	"prov":    PROV,
	"renku":   Renku,
	"oda":     ODA,
	"odas":    ODAS,
	"schema":  Schema,
	"oa":      OA,
	"dcterms": DCTerms,
	"aqs":     AQS,
}

// LabelProperties are tried in order when looking for a human readable label.
var LabelProperties = []string{
	Label,
	DCTerms + "title",
	"http://purl.org/dc/elements/1.1/title",
	FOAF + "name",
	SKOS + "prefLabel",
	Name,
}

// LocalProjectPrefix is the display prefix bound to the project's file:// namespace.
const LocalProjectPrefix = "local-renku"
