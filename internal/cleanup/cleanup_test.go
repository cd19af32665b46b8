package cleanup

import (
	"testing"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/testutil"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func TestCleanRemovesListedPredicates(t *testing.T) {
	g := testutil.Annotated()
	before := g.Len()
	removed := Clean(g)
	if removed == 0 || g.Len() != before-removed {
		t.Fatalf("removed %d of %d, %d left", removed, before, g.Len())
	}
	for _, p := range Predicates {
		if n := len(g.Match(rdf.Any, rdf.IRI(p), rdf.Any)); n != 0 {
			t.Errorf("%s: %d triples left", p, n)
		}
	}
	if len(g.Match(rdf.Any, rdf.IRI(vocab.Command), rdf.Any)) == 0 {
		t.Error("unlisted predicates must survive")
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	g := testutil.Annotated()
	Clean(g)
	snapshot := g.Triples()
	if n := Clean(g); n != 0 {
		t.Errorf("second pass removed %d triples", n)
	}
	after := g.Triples()
	if len(after) != len(snapshot) {
		t.Fatalf("graph changed: %d -> %d", len(snapshot), len(after))
	}
	for i := range after {
		if after[i] != snapshot[i] {
			t.Errorf("triple %d changed", i)
		}
	}
}
