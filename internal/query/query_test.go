package query

import (
	"strings"
	"testing"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/testutil"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func has(g *rdf.Graph, s rdf.Term, p string, o rdf.Term) bool {
	return g.Has(rdf.T(s, rdf.IRI(p), o))
}

func TestExtractBackbone(t *testing.T) {
	out, rep := Extract(testutil.Provenance(), Options{})
	if rep.InvalidEntries != 0 {
		t.Errorf("expected no invalid entries without domain info, got %d", rep.InvalidEntries)
	}

	checks := []struct {
		name string
		s    rdf.Term
		p    string
		o    rdf.Term
	}{
		{"activity type", testutil.Activity, vocab.Type, rdf.IRI(vocab.Activity)},
		{"flattened plan link", testutil.Activity, vocab.HadPlan, testutil.Plan},
		{"action type", testutil.Plan, vocab.Type, rdf.IRI(vocab.Action)},
		{"command", testutil.Plan, vocab.Command, rdf.Literal("papermill")},
		{"input", testutil.Plan, vocab.HasInputs, testutil.Input},
		{"output", testutil.Plan, vocab.HasOutputs, testutil.OutFits},
		{"argument position", testutil.Arg2, vocab.Position, rdf.TypedLiteral("3", vocab.XSDInteger)},
		{"output type", testutil.OutImage, vocab.Type, rdf.IRI(vocab.CommandOutput)},
	}
	for _, c := range checks {
		if !has(out, c.s, c.p, c.o) {
			t.Errorf("%s: missing triple", c.name)
		}
	}
	if len(out.Match(rdf.Any, rdf.IRI(vocab.QualifiedAssociation), rdf.Any)) != 0 {
		t.Error("qualified association should not be constructed")
	}
	if len(out.Match(rdf.Any, rdf.IRI(vocab.IsUsing), rdf.Any)) != 0 {
		t.Error("no domain triples expected")
	}
}

func TestExtractDomainInfo(t *testing.T) {
	out, rep := Extract(testutil.Annotated(), Options{IncludeDomainInfo: true})

	if !has(out, testutil.RunObject, vocab.IsRequestingAstroObject, testutil.Crab) {
		t.Error("object request missing")
	}
	if !has(out, testutil.RunObject, vocab.HasTarget, testutil.Activity) {
		t.Error("annotation target edge missing")
	}
	if !has(out, testutil.Crab, vocab.Name, rdf.Literal("Crab")) {
		t.Error("object name missing")
	}
	if !has(out, testutil.Region, vocab.IsUsingSkyCoordinates, testutil.SkyCoords) {
		t.Error("region sky coordinates missing")
	}
	if !has(out, testutil.SkyCoords, vocab.Title, rdf.Literal("10.5 41.2")) {
		t.Error("sky coordinates title missing")
	}
	if !has(out, testutil.Image, vocab.IsUsingPixels, testutil.ImgPixels) {
		t.Error("image pixels missing")
	}
	if !has(out, testutil.ImgBand, vocab.Type, rdf.IRI(vocab.ImageBand)) {
		t.Error("image band type missing")
	}

	if has(out, testutil.RunBad, vocab.IsRequestingAstroObject, testutil.BadObject) {
		t.Error("object with a space in its name must be filtered out")
	}
	if len(out.Match(testutil.BadObject, rdf.Any, rdf.Any)) != 0 {
		t.Error("filtered object must not appear at all")
	}
	if rep.InvalidEntries != 1 {
		t.Errorf("expected 1 invalid entry, got %d", rep.InvalidEntries)
	}
	if rep.Warning() != InvalidEntriesWarning {
		t.Errorf("unexpected warning %q", rep.Warning())
	}
}

func TestSpaceInObjectIRIIsCountedNotFatal(t *testing.T) {
	doc, err := testutil.Annotated().Serialize(rdf.NTriples)
	if err != nil {
		t.Fatal(err)
	}
	// the legacy form: the space sits in the IRI, the name has none
	doc = strings.ReplaceAll(doc, "AstroObjectMrk_421", "AstroObjectMrk 421")
	doc = strings.ReplaceAll(doc, `"Mrk 421"`, `"Mrk421"`)

	g, err := rdf.ParseString(doc, rdf.NTriples)
	if err != nil {
		t.Fatalf("legacy export should decode: %v", err)
	}
	out, rep := Extract(g, Options{IncludeDomainInfo: true})
	if rep.InvalidEntries != 1 {
		t.Errorf("expected 1 invalid entry, got %d", rep.InvalidEntries)
	}
	bad := rdf.IRI(vocab.ODA + "AstroObjectMrk%20421")
	if len(out.Match(bad, rdf.Any, rdf.Any)) != 0 || len(out.Match(rdf.Any, rdf.Any, bad)) != 0 {
		t.Error("object with a space in its IRI must be filtered out")
	}
	if !has(out, testutil.RunObject, vocab.IsRequestingAstroObject, testutil.Crab) {
		t.Error("valid request lost")
	}
}

func TestImageAttributesAreIndependent(t *testing.T) {
	g := testutil.Annotated()
	g.RemoveMatching(testutil.Image, rdf.IRI(vocab.IsUsingPosition), rdf.Any)
	g.RemoveMatching(testutil.Image, rdf.IRI(vocab.IsUsingImageBand), rdf.Any)

	out, _ := Extract(g, Options{IncludeDomainInfo: true})
	if !has(out, testutil.RunImage, vocab.IsRequestingAstroImage, testutil.Image) {
		t.Fatal("image request should survive missing optional attributes")
	}
	if !has(out, testutil.Image, vocab.IsUsingRadius, testutil.ImgRadius) {
		t.Error("remaining radius attribute missing")
	}
	if has(out, testutil.Image, vocab.IsUsingPosition, testutil.ImgPos) {
		t.Error("removed position should not be constructed")
	}
}

func TestScope(t *testing.T) {
	out, _ := Extract(testutil.Provenance(), Options{Scope: testutil.NotebookPath})
	if !has(out, testutil.Activity, vocab.HadPlan, testutil.Plan) {
		t.Error("scoped query should keep the activity that used the notebook")
	}

	out, _ = Extract(testutil.Provenance(), Options{Scope: "other.ipynb"})
	if out.Len() != 0 {
		t.Errorf("scope on an unused artifact should match nothing, got %d triples", out.Len())
	}
}

func TestRequests(t *testing.T) {
	reqs, rep := Requests(testutil.Annotated(), Options{})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 valid requests, got %d", len(reqs))
	}
	byKind := map[RequestKind]Request{}
	for _, r := range reqs {
		byKind[r.Kind] = r
	}
	obj := byKind[RequestObject]
	if obj.ModuleName != "Simbad" || obj.TargetName != "Crab" || obj.RunID() != "Run_object" {
		t.Errorf("unexpected object row: %+v (run id %s)", obj, obj.RunID())
	}
	if byKind[RequestImage].ModuleName != "SkyView" {
		t.Errorf("unexpected image module %q", byKind[RequestImage].ModuleName)
	}
	if rep.InvalidEntries != 1 {
		t.Errorf("expected 1 invalid entry, got %d", rep.InvalidEntries)
	}
}

func TestSelectOptionalAndPath(t *testing.T) {
	g := testutil.Provenance()
	rows := Select(g, Group{
		Patterns: []Pattern{
			Seq(V("entity"), V("act"), Fwd(vocab.QualifiedGeneration), Fwd(vocab.ProvActivity)),
		},
		Optional: []Group{{Patterns: []Pattern{P(V("entity"), vocab.Checksum, V("sum"))}}},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["act"] != testutil.Activity || rows[0]["sum"].Value != testutil.OutputChecksum {
		t.Errorf("unexpected row %v", rows[0])
	}

	inv := Select(g, Group{Patterns: []Pattern{
		Seq(V("act"), V("entity"), Inv(vocab.ProvActivity), Inv(vocab.QualifiedGeneration)),
	}})
	if len(inv) != 1 || inv[0]["entity"] != testutil.OutEntity {
		t.Errorf("inverse path: unexpected rows %v", inv)
	}
}
