package infer

import (
	"testing"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func ex(local string) rdf.Term { return rdf.IRI("http://example.org/" + local) }

func add(g *rdf.Graph, s rdf.Term, p string, o rdf.Term) { g.Add(rdf.T(s, rdf.IRI(p), o)) }

func apply(t *testing.T, st Stage, g *rdf.Graph, env *Env) *rdf.Graph {
	t.Helper()
	out, err := st.Apply(g, env)
	if err != nil {
		t.Fatalf("%s: %v", st.Name(), err)
	}
	return out
}

func TestHoistActivityTime(t *testing.T) {
	g := rdf.NewGraph()
	ts := rdf.Literal("2023-01-01T00:00:00")
	add(g, ex("act"), vocab.StartedAtTime, ts)
	add(g, ex("act"), vocab.HadPlan, ex("plan1"))
	add(g, ex("act"), vocab.HadPlan, ex("plan2"))
	add(g, ex("orphan"), vocab.StartedAtTime, ts)

	out := apply(t, HoistActivityTime{}, g, NewEnv(nil))
	for _, plan := range []rdf.Term{ex("plan1"), ex("plan2")} {
		if !out.Has(rdf.T(plan, rdf.IRI(vocab.StartedAtTime), ts)) {
			t.Errorf("%s missing start time", plan.Value)
		}
	}
	if out.Has(rdf.T(ex("act"), rdf.IRI(vocab.StartedAtTime), ts)) {
		t.Error("activity should lose its start time")
	}
	if !out.Has(rdf.T(ex("orphan"), rdf.IRI(vocab.StartedAtTime), ts)) {
		t.Error("activity without a plan keeps its start time")
	}
	if !g.Has(rdf.T(ex("act"), rdf.IRI(vocab.StartedAtTime), ts)) {
		t.Error("input graph must not change")
	}
}

func TestRetypeOutputs(t *testing.T) {
	tests := []struct {
		value string
		want  NodeKind
	}{
		{"plot.png", CommandOutputImage},
		{"plot.jpeg", CommandOutputImage},
		{"cube.fits", CommandOutputFitsFile},
		{"run.ipynb", CommandOutputNotebook},
		{"table.ecsv", CommandOutputEcsvFile},
		{"notes.txt", CommandOutput},
		{"PLOT.PNG", CommandOutput},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			g := rdf.NewGraph()
			add(g, ex("plan"), vocab.HasOutputs, ex("out"))
			add(g, ex("out"), vocab.Type, rdf.IRI(vocab.CommandOutput))
			add(g, ex("out"), vocab.DefaultValue, rdf.Literal(tt.value))

			out := apply(t, RetypeOutputs{}, g, NewEnv(nil))
			if got := BuildTypeIndex(out).Kind(ex("out")); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if len(out.Objects(ex("out"), rdf.IRI(vocab.Type))) != 1 {
				t.Error("output should keep exactly one type")
			}
			if n := len(out.Match(ex("out"), rdf.Any, ex("plan"))); n != 0 {
				t.Errorf("output gained %d edges back to its plan", n)
			}
			if !out.Has(rdf.T(ex("plan"), rdf.IRI(vocab.HasOutputs), ex("out"))) {
				t.Error("hasOutputs must stay")
			}
		})
	}
}

func TestRetypeSkipsAmbiguousOutputs(t *testing.T) {
	g := rdf.NewGraph()
	add(g, ex("plan"), vocab.HasOutputs, ex("out"))
	add(g, ex("out"), vocab.Type, rdf.IRI(vocab.CommandOutput))
	add(g, ex("out"), vocab.DefaultValue, rdf.Literal("a.png"))
	add(g, ex("out"), vocab.DefaultValue, rdf.Literal("b.png"))

	out := apply(t, RetypeOutputs{}, g, NewEnv(nil))
	if BuildTypeIndex(out).Kind(ex("out")) != CommandOutput {
		t.Error("two default values: type must not change")
	}
}

func argsGraph(values ...string) *rdf.Graph {
	g := rdf.NewGraph()
	for i, v := range values {
		arg := ex("arg" + string(rune('a'+i)))
		add(g, ex("plan"), vocab.HasArguments, arg)
		add(g, arg, vocab.DefaultValue, rdf.Literal(v))
		add(g, arg, vocab.Position, rdf.TypedLiteral(string(rune('1'+i)), vocab.XSDInteger))
	}
	return g
}

func synthesize(t *testing.T, g *rdf.Graph) (*rdf.Graph, *Env) {
	t.Helper()
	env := NewEnv(nil)
	g = apply(t, HarvestArguments{}, g, env)
	return apply(t, SynthesizeParameters{}, g, env), env
}

func TestSynthesizeParameters(t *testing.T) {
	out, env := synthesize(t, argsGraph("--ra", "10.5", "--dec", "41.2"))

	params := out.Subjects(rdf.IRI(vocab.IsArgumentOf), ex("plan"))
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	want, _ := ParameterIRI(ex("plan"), "--ra", "10.5")
	if !out.Has(rdf.T(want, rdf.IRI(vocab.DefaultValue), rdf.Literal("--ra 10.5"))) {
		t.Error("parameter --ra 10.5 missing")
	}
	if !out.Has(rdf.T(want, rdf.IRI(vocab.Type), rdf.IRI(vocab.CommandParameter))) {
		t.Error("parameter type missing")
	}
	if len(out.Objects(ex("arga"), rdf.IRI(vocab.DefaultValue))) != 0 {
		t.Error("original argument value should be removed")
	}
	if len(env.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics %v", env.Diagnostics)
	}
}

func TestSynthesizeDropsOddArgument(t *testing.T) {
	out, env := synthesize(t, argsGraph("-v", "--ra", "10.5"))
	if n := len(out.Subjects(rdf.IRI(vocab.IsArgumentOf), ex("plan"))); n != 1 {
		t.Errorf("expected 1 parameter, got %d", n)
	}
	if len(env.Diagnostics) != 1 || env.Diagnostics[0].Code != CodeOddArguments {
		t.Errorf("expected odd-argument diagnostic, got %v", env.Diagnostics)
	}
}

func TestSynthesisIsIdempotent(t *testing.T) {
	a, _ := synthesize(t, argsGraph("--ra", "10.5"))
	b, _ := synthesize(t, argsGraph("--ra", "10.5"))
	if a.Len() != b.Len() {
		t.Fatalf("different sizes %d vs %d", a.Len(), b.Len())
	}
	merged := a.Clone()
	merged.Merge(b)
	if merged.Len() != a.Len() {
		t.Error("re-synthesis produced new nodes")
	}
}

func TestParameterIRIDistinguishesTokenBoundaries(t *testing.T) {
	a, _ := ParameterIRI(ex("plan"), "ab", "c")
	b, _ := ParameterIRI(ex("plan"), "a", "bc")
	if a == b {
		t.Error("token boundary should affect identity")
	}
	c, _ := ParameterIRI(ex("plan2"), "ab", "c")
	if a == c {
		t.Error("owning action should affect identity")
	}
	again, _ := ParameterIRI(ex("plan"), "ab", "c")
	if a != again {
		t.Error("identity must be stable")
	}
}

func TestSameArgumentsOnTwoActions(t *testing.T) {
	g := rdf.NewGraph()
	for _, plan := range []string{"planA", "planB"} {
		for i, v := range []string{"--ra", "10.5"} {
			arg := ex(plan + "/arg" + string(rune('a'+i)))
			add(g, ex(plan), vocab.HasArguments, arg)
			add(g, arg, vocab.DefaultValue, rdf.Literal(v))
			add(g, arg, vocab.Position, rdf.TypedLiteral(string(rune('1'+i)), vocab.XSDInteger))
		}
	}
	out, _ := synthesize(t, g)

	params := out.Subjects(rdf.IRI(vocab.Type), rdf.IRI(vocab.CommandParameter))
	if len(params) != 2 {
		t.Fatalf("expected one parameter per action, got %d", len(params))
	}
	for _, p := range params {
		if n := len(out.Objects(p, rdf.IRI(vocab.IsArgumentOf))); n != 1 {
			t.Errorf("%s is an argument of %d actions", p.Value, n)
		}
	}
}

func TestBuildTypeIndex(t *testing.T) {
	g := rdf.NewGraph()
	add(g, ex("a"), vocab.Type, rdf.IRI(vocab.PROV+"Plan"))
	add(g, ex("a"), vocab.Type, rdf.IRI(vocab.Action))
	add(g, ex("b"), vocab.Type, rdf.IRI("http://example.org/Widget"))

	ti := BuildTypeIndex(g)
	if ti.Kind(ex("a")) != Action {
		t.Errorf("known kind should win, got %v", ti.Kind(ex("a")))
	}
	if info := ti.Lookup(ex("b")); info.Kind != Unknown || info.Name != "Widget" {
		t.Errorf("unexpected info %+v", info)
	}
	if ti.Lookup(ex("untyped")).Kind != Unknown {
		t.Error("untyped node should be Unknown")
	}
	if KindByName("CommandOutputImage") != CommandOutputImage || KindByName("nope") != Unknown {
		t.Error("KindByName mismatch")
	}
}

func TestInferDomainRelationsWithoutModule(t *testing.T) {
	g := rdf.NewGraph()
	add(g, ex("run"), vocab.HasTarget, ex("act"))
	add(g, ex("run"), vocab.IsRequestingAstroObject, ex("obj"))

	env := NewEnv(nil)
	out := apply(t, InferDomainRelations{}, g, env)
	if len(out.Match(rdf.Any, rdf.IRI(vocab.RequestsAstroObject), rdf.Any)) != 0 {
		t.Error("no relation expected without a module")
	}
	if len(env.Diagnostics) != 1 || env.Diagnostics[0].Code != CodeMissingModule {
		t.Errorf("expected missing-module diagnostic, got %v", env.Diagnostics)
	}
}

func TestInferDomainRelationsFallsBackToActivity(t *testing.T) {
	g := rdf.NewGraph()
	add(g, ex("run"), vocab.HasTarget, ex("act"))
	add(g, ex("run"), vocab.IsUsing, ex("mod"))
	add(g, ex("run"), vocab.IsRequestingAstroObject, ex("obj"))

	out := apply(t, InferDomainRelations{}, g, NewEnv(nil))
	if !out.Has(rdf.T(ex("mod"), rdf.IRI(vocab.IsUsedDuring), ex("act"))) {
		t.Error("module should link to the activity when it has no plan")
	}
}
