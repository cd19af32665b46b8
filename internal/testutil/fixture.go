// Package testutil builds a small but complete provenance graph shared by the
// package tests: one activity running a notebook plan, three astroquery runs
// (object, region, image) and one run whose object name is malformed.
package testutil

import (
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

const base = "https://renkulab.io/test/"

// Fixture node identities
var (
	Activity   = rdf.IRI(base + "activities/a1")
	Assoc      = rdf.IRI(base + "activities/a1/association")
	Plan       = rdf.IRI(base + "plans/p1")
	Input      = rdf.IRI(base + "plans/p1/inputs/1")
	OutImage   = rdf.IRI(base + "plans/p1/outputs/1")
	OutFits    = rdf.IRI(base + "plans/p1/outputs/2")
	OutNote    = rdf.IRI(base + "plans/p1/outputs/3")
	Arg1       = rdf.IRI(base + "plans/p1/parameters/1")
	Arg2       = rdf.IRI(base + "plans/p1/parameters/2")
	Arg3       = rdf.IRI(base + "plans/p1/parameters/3")
	Arg4       = rdf.IRI(base + "plans/p1/parameters/4")
	Usage      = rdf.IRI(base + "activities/a1/usages/1")
	UsedEntity = rdf.IRI(base + "entities/notebook")
	Generation = rdf.IRI(base + "activities/a1/generations/1")
	OutEntity  = rdf.IRI(base + "entities/out-png")

	ModSimbad  = rdf.IRI(vocab.ODA + "AQModuleSimbad")
	ModSkyView = rdf.IRI(vocab.ODA + "AQModuleSkyView")

	RunObject = rdf.IRI(vocab.ODA + "Run_object")
	RunRegion = rdf.IRI(vocab.ODA + "Run_region")
	RunImage  = rdf.IRI(vocab.ODA + "Run_image")
	RunBad    = rdf.IRI(vocab.ODA + "Run_bad")

	Crab      = rdf.IRI(vocab.ODA + "AstroObjectCrab")
	BadObject = rdf.IRI(vocab.ODA + "AstroObjectMrk_421")
	Region    = rdf.IRI(vocab.ODA + "AstroRegion1")
	SkyCoords = rdf.IRI(vocab.ODA + "SkyCoordinates1")
	Radius    = rdf.IRI(vocab.ODA + "Angle1")
	Image     = rdf.IRI(vocab.ODA + "AstroImage1")
	ImgPos    = rdf.IRI(vocab.ODA + "Position1")
	ImgRadius = rdf.IRI(vocab.ODA + "Angle2")
	ImgPixels = rdf.IRI(vocab.ODA + "Pixels1")
	ImgBand   = rdf.IRI(vocab.ODA + "ImageBand1")
)

// NotebookPath is the location of the plan's input artifact
const NotebookPath = "notebooks/query.ipynb"

// OutputChecksum identifies the generated image entity
const OutputChecksum = "9f2c1e"

func iri(v string) rdf.Term { return rdf.IRI(v) }
func lit(v string) rdf.Term { return rdf.Literal(v) }

func integer(v string) rdf.Term { return rdf.TypedLiteral(v, vocab.XSDInteger) }

// Provenance returns the raw provenance graph without any annotations
func Provenance() *rdf.Graph {
	g := rdf.NewGraph()
	add := func(s rdf.Term, p string, o rdf.Term) { g.Add(rdf.T(s, iri(p), o)) }

	add(Activity, vocab.Type, iri(vocab.Activity))
	add(Activity, vocab.StartedAtTime, rdf.TypedLiteral("2023-01-01T00:00:00", vocab.XSDDateTime))
	add(Activity, vocab.QualifiedAssociation, Assoc)
	add(Assoc, vocab.HadPlan, Plan)
	add(Activity, vocab.QualifiedUsage, Usage)
	add(Usage, vocab.ProvEntity, UsedEntity)
	add(UsedEntity, vocab.AtLocation, lit(NotebookPath))
	add(OutEntity, vocab.QualifiedGeneration, Generation)
	add(Generation, vocab.ProvActivity, Activity)
	add(OutEntity, vocab.Checksum, lit(OutputChecksum))

	add(Plan, vocab.Type, iri(vocab.PROV+"Plan"))
	add(Plan, vocab.Command, lit("papermill"))
	add(Plan, vocab.HasInputs, Input)
	add(Input, vocab.DefaultValue, lit(NotebookPath))
	add(Input, vocab.Position, integer("1"))
	for out, v := range map[rdf.Term]string{OutImage: "out.png", OutFits: "result.fits", OutNote: "final.ipynb"} {
		add(Plan, vocab.HasOutputs, out)
		add(out, vocab.DefaultValue, lit(v))
	}
	args := []struct {
		node  rdf.Term
		value string
		pos   string
	}{
		{Arg3, "--dec", "4"},
		{Arg1, "--ra", "2"},
		{Arg4, "41.2", "5"},
		{Arg2, "10.5", "3"},
	}
	for _, a := range args {
		add(Plan, vocab.HasArguments, a.node)
		add(a.node, vocab.DefaultValue, lit(a.value))
		add(a.node, vocab.Position, integer(a.pos))
	}
	return g
}

// Annotate attaches a run to the fixture activity through an oa:Annotation
func Annotate(g *rdf.Graph, run rdf.Term) {
	ann := rdf.IRI(Activity.Value + "/annotations/aqs/" + run.Local())
	g.Add(rdf.T(ann, iri(vocab.Type), iri(vocab.Annotation)))
	g.Add(rdf.T(ann, iri(vocab.HasBody), run))
	g.Add(rdf.T(ann, iri(vocab.HasTarget), Activity))
}

// Annotated returns the provenance graph with all four runs attached
func Annotated() *rdf.Graph {
	g := Provenance()
	add := func(s rdf.Term, p string, o rdf.Term) { g.Add(rdf.T(s, iri(p), o)) }

	add(ModSimbad, vocab.Type, iri(vocab.AstroqueryModule))
	add(ModSimbad, vocab.Title, lit("Simbad"))
	add(ModSkyView, vocab.Type, iri(vocab.AstroqueryModule))
	add(ModSkyView, vocab.Title, lit("SkyView"))

	add(RunObject, vocab.Type, iri(vocab.Run))
	add(RunObject, vocab.IsUsing, ModSimbad)
	add(RunObject, vocab.IsRequestingAstroObject, Crab)
	add(Crab, vocab.Type, iri(vocab.AstrophysicalObject))
	add(Crab, vocab.Title, lit("Crab"))

	add(RunRegion, vocab.Type, iri(vocab.Run))
	add(RunRegion, vocab.IsUsing, ModSimbad)
	add(RunRegion, vocab.IsRequestingAstroRegion, Region)
	add(Region, vocab.Type, iri(vocab.AstrophysicalRegion))
	add(Region, vocab.Title, lit("region-1"))
	add(Region, vocab.IsUsingSkyCoordinates, SkyCoords)
	add(SkyCoords, vocab.Type, iri(vocab.SkyCoordinates))
	add(SkyCoords, vocab.Title, lit("10.5 41.2"))
	add(Region, vocab.IsUsingRadius, Radius)
	add(Radius, vocab.Type, iri(vocab.Angle))
	add(Radius, vocab.Title, lit("5arcmin"))

	add(RunImage, vocab.Type, iri(vocab.Run))
	add(RunImage, vocab.IsUsing, ModSkyView)
	add(RunImage, vocab.IsRequestingAstroImage, Image)
	add(Image, vocab.Type, iri(vocab.AstrophysicalImage))
	add(Image, vocab.Title, lit("image-1"))
	add(Image, vocab.IsUsingPosition, ImgPos)
	add(ImgPos, vocab.Type, iri(vocab.ODAPosition))
	add(ImgPos, vocab.Title, lit("83.63,22.01"))
	add(Image, vocab.IsUsingRadius, ImgRadius)
	add(ImgRadius, vocab.Type, iri(vocab.Angle))
	add(ImgRadius, vocab.Title, lit("0.1 deg"))
	add(Image, vocab.IsUsingPixels, ImgPixels)
	add(ImgPixels, vocab.Type, iri(vocab.Pixels))
	add(ImgPixels, vocab.Title, lit("100 200"))
	add(Image, vocab.IsUsingImageBand, ImgBand)
	add(ImgBand, vocab.Type, iri(vocab.ImageBand))
	add(ImgBand, vocab.Title, lit("J"))

	add(RunBad, vocab.Type, iri(vocab.Run))
	add(RunBad, vocab.IsUsing, ModSimbad)
	add(RunBad, vocab.IsRequestingAstroObject, BadObject)
	add(BadObject, vocab.Type, iri(vocab.AstrophysicalObject))
	add(BadObject, vocab.Title, lit("Mrk 421"))

	for _, run := range []rdf.Term{RunObject, RunRegion, RunImage, RunBad} {
		Annotate(g, run)
	}
	return g
}
