package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/oda-hub/deprecated-renku-aqs/internal/cleanup"
	"github.com/oda-hub/deprecated-renku-aqs/internal/infer"
	"github.com/oda-hub/deprecated-renku-aqs/internal/query"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/testutil"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func has(g *rdf.Graph, s rdf.Term, p string, o rdf.Term) bool {
	return g.Has(rdf.T(s, rdf.IRI(p), o))
}

func TestNewRejectsCleanupBeforeInference(t *testing.T) {
	_, err := New(cleanup.Stage{}, infer.InferDomainRelations{})
	var soe *StageOrderError
	if !errors.As(err, &soe) {
		t.Fatalf("expected StageOrderError, got %v", err)
	}
	if soe.RemovedBy != "cleanup" {
		t.Errorf("unexpected remover %q", soe.RemovedBy)
	}
}

func TestDefaultStagesAreValid(t *testing.T) {
	for _, domain := range []bool{true, false} {
		if _, err := New(Stages(domain)...); err != nil {
			t.Errorf("domain=%v: %v", domain, err)
		}
	}
}

func TestSynthesisWithoutHarvestFails(t *testing.T) {
	p, err := New(infer.SynthesizeParameters{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(rdf.NewGraph(), infer.NewEnv(nil)); err == nil {
		t.Error("expected precondition failure")
	}
}

func TestBuildEndToEnd(t *testing.T) {
	full := testutil.Annotated()
	before := full.Len()
	res, err := Build(full, Options{IncludeDomainInfo: true})
	if err != nil {
		t.Fatal(err)
	}
	if full.Len() != before {
		t.Error("input graph was modified")
	}
	g := res.Graph

	// backbone
	if !has(g, testutil.Plan, vocab.Command, rdf.Literal("papermill")) {
		t.Error("action command missing")
	}
	if !has(g, testutil.Plan, vocab.StartedAtTime, rdf.TypedLiteral("2023-01-01T00:00:00", vocab.XSDDateTime)) {
		t.Error("start time should be hoisted onto the action")
	}
	if len(g.Match(testutil.Activity, rdf.IRI(vocab.StartedAtTime), rdf.Any)) != 0 {
		t.Error("start time should be removed from the activity")
	}

	// harvested relations
	if !has(g, testutil.Input, vocab.IsInputOf, testutil.Plan) {
		t.Error("isInputOf missing")
	}
	if !has(g, testutil.Plan, vocab.HasOutputs, testutil.OutImage) {
		t.Error("hasOutputs missing")
	}
	if len(g.Match(testutil.OutImage, rdf.Any, testutil.Plan)) != 0 {
		t.Error("output should not link back to its action")
	}
	if res.Types.Kind(testutil.OutImage) != infer.CommandOutputImage {
		t.Errorf("png output kind: %v", res.Types.Kind(testutil.OutImage))
	}
	if res.Types.Kind(testutil.OutFits) != infer.CommandOutputFitsFile {
		t.Errorf("fits output kind: %v", res.Types.Kind(testutil.OutFits))
	}
	if res.Types.Kind(testutil.OutNote) != infer.CommandOutputNotebook {
		t.Errorf("notebook output kind: %v", res.Types.Kind(testutil.OutNote))
	}

	// synthesized parameters replace the original argument values
	params := g.Subjects(rdf.IRI(vocab.IsArgumentOf), testutil.Plan)
	if len(params) != 2 {
		t.Fatalf("expected 2 synthesized parameters, got %d", len(params))
	}
	var values []string
	for _, p := range params {
		v, _ := g.Object(p, rdf.IRI(vocab.DefaultValue))
		values = append(values, v.Value)
	}
	joined := strings.Join(values, "|")
	if !strings.Contains(joined, "--ra 10.5") || !strings.Contains(joined, "--dec 41.2") {
		t.Errorf("unexpected parameter values %v", values)
	}
	if len(g.Match(testutil.Arg1, rdf.Any, rdf.Any)) != 0 {
		t.Error("original argument node should vanish after cleanup")
	}

	// domain relations hang off the action
	if !has(g, testutil.ModSimbad, vocab.IsUsedDuring, testutil.Plan) {
		t.Error("isUsedDuring missing")
	}
	if !has(g, testutil.ModSimbad, vocab.RequestsAstroObject, testutil.Crab) {
		t.Error("requestsAstroObject missing")
	}
	if !has(g, testutil.SkyCoords, vocab.DefaultValue, rdf.Literal("RA=10.5 deg  Dec=41.2 deg")) {
		t.Error("sky coordinates not normalized")
	}
	if !has(g, testutil.Radius, vocab.DefaultValue, rdf.Literal("5.0 unit=arcmin")) {
		t.Error("radius not normalized")
	}
	if !has(g, testutil.ImgPixels, vocab.DefaultValue, rdf.Literal("100,200")) {
		t.Error("pixels not normalized")
	}
	if !has(g, testutil.ImgBand, vocab.DefaultValue, rdf.Literal("J")) {
		t.Error("image band not copied")
	}

	// space-filtered object is gone, and reported once
	if len(g.Match(rdf.Any, rdf.Any, testutil.BadObject)) != 0 {
		t.Error("invalid object should be excluded")
	}
	if w := res.Warnings(); len(w) != 1 || w[0] != query.InvalidEntriesWarning {
		t.Errorf("unexpected warnings %v", w)
	}

	// cleaned
	for _, p := range cleanup.Predicates {
		if len(g.Match(rdf.Any, rdf.IRI(p), rdf.Any)) != 0 {
			t.Errorf("%s survived cleanup", p)
		}
	}
}

func TestBuildWithoutDomainInfo(t *testing.T) {
	res, err := Build(testutil.Annotated(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Graph.Match(rdf.Any, rdf.IRI(vocab.IsUsedDuring), rdf.Any)) != 0 {
		t.Error("no domain relations expected")
	}
	if !has(res.Graph, testutil.Plan, vocab.Command, rdf.Literal("papermill")) {
		t.Error("backbone should still be present")
	}
}

func TestBuildMissingEdgesAreNotErrors(t *testing.T) {
	g := testutil.Provenance()
	g.RemoveMatching(rdf.Any, rdf.IRI(vocab.HasArguments), rdf.Any)
	g.RemoveMatching(rdf.Any, rdf.IRI(vocab.HasOutputs), rdf.Any)
	if _, err := Build(g, Options{IncludeDomainInfo: true}); err != nil {
		t.Errorf("missing optional edges should not fail: %v", err)
	}
}

func TestBuildPropagatesLiteralParseFailure(t *testing.T) {
	g := testutil.Annotated()
	g.RemoveMatching(testutil.Radius, rdf.IRI(vocab.Title), rdf.Any)
	g.Add(rdf.T(testutil.Radius, rdf.IRI(vocab.Title), rdf.Literal("0.5")))
	if _, err := Build(g, Options{IncludeDomainInfo: true}); err == nil {
		t.Error("a unitless radius should fail the build")
	}
}
