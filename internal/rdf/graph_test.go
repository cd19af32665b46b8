package rdf

import (
	"strings"
	"testing"

	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func ex(local string) Term { return IRI("http://example.org/" + local) }

func sampleGraph() *Graph {
	g := NewGraph()
	g.Add(T(ex("a"), IRI(vocab.HasInputs), ex("in")))
	g.Add(T(ex("a"), IRI(vocab.Command), Literal("python run.py")))
	g.Add(T(ex("in"), IRI(vocab.DefaultValue), Literal("data.csv")))
	g.Add(T(ex("b"), IRI(vocab.HasInputs), ex("in")))
	return g
}

func TestAddIsSetSemantics(t *testing.T) {
	g := NewGraph()
	tr := T(ex("a"), IRI(vocab.Type), IRI(vocab.Action))
	if !g.Add(tr) {
		t.Fatal("first add should report insertion")
	}
	if g.Add(tr) {
		t.Error("second add should be a no-op")
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 triple, got %d", g.Len())
	}
}

func TestMatchPatterns(t *testing.T) {
	g := sampleGraph()

	tests := []struct {
		name    string
		s, p, o Term
		want    int
	}{
		{"all", Any, Any, Any, 4},
		{"by subject", ex("a"), Any, Any, 2},
		{"by predicate", Any, IRI(vocab.HasInputs), Any, 2},
		{"by object", Any, Any, ex("in"), 2},
		{"fully bound", ex("b"), IRI(vocab.HasInputs), ex("in"), 1},
		{"unknown subject", ex("zzz"), Any, Any, 0},
		{"literal object", Any, Any, Literal("data.csv"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Match(tt.s, tt.p, tt.o)
			if len(got) != tt.want {
				t.Errorf("expected %d matches, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	g := sampleGraph()
	first := g.Triples()
	for i := 0; i < 10; i++ {
		again := g.Triples()
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order changed at %d", j)
			}
		}
	}
}

func TestRemoveMatching(t *testing.T) {
	g := sampleGraph()
	n := g.RemoveMatching(Any, IRI(vocab.HasInputs), Any)
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if len(g.Match(Any, IRI(vocab.HasInputs), Any)) != 0 {
		t.Error("predicate should be gone")
	}
	if g.RemoveMatching(Any, IRI(vocab.HasInputs), Any) != 0 {
		t.Error("second removal should be a no-op")
	}
	if g.Len() != 2 {
		t.Errorf("expected 2 remaining, got %d", g.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := sampleGraph()
	c := g.Clone()
	c.RemoveMatching(ex("a"), Any, Any)
	if g.Len() != 4 {
		t.Errorf("original mutated: %d triples", g.Len())
	}
	if c.Len() != 2 {
		t.Errorf("clone expected 2 triples, got %d", c.Len())
	}
}

func TestQNameAndCompact(t *testing.T) {
	g := NewGraph()
	if got := g.Compact(IRI(vocab.IsInputOf)); got != "renku:isInputOf" {
		t.Errorf("got %q", got)
	}
	if got := g.Compact(IRI(vocab.ODA + "isUsedDuring")); got != "oda:isUsedDuring" {
		t.Errorf("got %q", got)
	}
	if got := g.Compact(ex("x")); got != "<http://example.org/x>" {
		t.Errorf("unbound IRI should stay bracketed, got %q", got)
	}
	g.Bind("ex", "http://example.org/")
	if got := g.Compact(ex("x")); got != "ex:x" {
		t.Errorf("got %q", got)
	}
}

func TestLabel(t *testing.T) {
	g := NewGraph()
	g.Bind("ex", "http://example.org/")
	g.Add(T(ex("obj"), IRI(vocab.Title), Literal("Mrk 421")))

	if got := g.Label(ex("obj")); got != "Mrk 421" {
		t.Errorf("title label: got %q", got)
	}
	if got := g.Label(ex("other")); got != "other" {
		t.Errorf("qname fallback: got %q", got)
	}
	if got := g.Label(IRI("urn:raw")); got != "urn:raw" {
		t.Errorf("raw fallback: got %q", got)
	}
}

func TestParseTurtle(t *testing.T) {
	doc := `@prefix renku: <https://swissdatasciencecenter.github.io/renku-ontology#> .
@prefix schema: <http://schema.org/> .
<http://example.org/plan> renku:command "python run.py" ;
    renku:hasOutputs <http://example.org/out> .
<http://example.org/out> schema:defaultValue "plot.png" .
`
	g, err := ParseString(doc, Turtle)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 triples, got %d", g.Len())
	}
	v, ok := g.Object(ex("out"), IRI(vocab.DefaultValue))
	if !ok || v != Literal("plot.png") {
		t.Errorf("expected plain literal plot.png, got %v", v)
	}
}

func TestWriteNTriples(t *testing.T) {
	g := NewGraph()
	g.Add(T(ex("a"), IRI(vocab.Command), Literal("run")))
	out, err := g.Serialize(NTriples)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<http://example.org/a>") || !strings.Contains(out, `"run"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestParseEscapesSpacesInIRIs(t *testing.T) {
	doc := `<http://example.org/run> <http://odahub.io/ontology#isRequestingAstroObject> <http://odahub.io/ontology#AstroObjectMrk 421> .
<http://example.org/run> <http://purl.org/dc/terms/title> "see <a b> # not a comment" .
`
	g, err := ParseString(doc, NTriples)
	if err != nil {
		t.Fatalf("a space in an IRI should not fail the document: %v", err)
	}
	obj := IRI(vocab.ODA + "AstroObjectMrk%20421")
	if !g.Has(T(ex("run"), IRI(vocab.IsRequestingAstroObject), obj)) {
		t.Errorf("escaped object missing from %v", g.Triples())
	}
	if !HasSpace(obj.Value) {
		t.Error("escaped IRI should still report its space")
	}
	if v, _ := g.Object(ex("run"), IRI(vocab.Title)); v.Value != "see <a b> # not a comment" {
		t.Errorf("literal changed: %q", v.Value)
	}
}

func TestEscapeLeavesTurtleLiteralsAlone(t *testing.T) {
	doc := `@prefix oda: <http://odahub.io/ontology#> .
# a comment with <odd iri>
<http://example.org/x> oda:note """multi
line <kept as is>""" ;
    oda:other 'single <quoted here>' .
`
	out, fixed := escapeBracketedSpaces([]byte(doc))
	if fixed != 0 || string(out) != doc {
		t.Errorf("rewrote %d references:\n%s", fixed, out)
	}

	out, fixed = escapeBracketedSpaces([]byte(`<a b> <p> <c d e> .`))
	if fixed != 2 || string(out) != `<a%20b> <p> <c%20d%20e> .` {
		t.Errorf("got %d %q", fixed, out)
	}
}
