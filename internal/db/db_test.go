package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/testutil"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(filepath.Join(t.TempDir(), "kg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenDBCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kg.db")
	d, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// reopening an existing store keeps the schema
	d, err = OpenDB(path)
	require.NoError(t, err)
	defer d.Close()
	s, err := d.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s)
}

func TestPushGraphRoundTrip(t *testing.T) {
	d := openTemp(t)
	g := testutil.Provenance()

	p, err := d.PushGraph(g, "https://gitlab.com/team/p", "HEAD")
	require.NoError(t, err)
	assert.Len(t, p.ID, 36)
	assert.Equal(t, g.Len(), p.Triples)
	assert.Equal(t, g.Len(), p.Added)

	back, err := d.Graph()
	require.NoError(t, err)
	assert.Equal(t, g.Len(), back.Len())
	for _, tr := range g.Triples() {
		assert.True(t, back.Has(tr), "missing %s", tr)
	}
}

func TestPushIsIdempotentPerTriple(t *testing.T) {
	d := openTemp(t)
	g := testutil.Provenance()

	first, err := d.PushGraph(g, "proj", "")
	require.NoError(t, err)

	extra := g.Clone()
	extra.Add(rdf.T(testutil.Plan, rdf.IRI(vocab.Command), rdf.Literal("python")))
	second, err := d.PushGraph(extra, "proj", "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Added)

	s, err := d.Stats()
	require.NoError(t, err)
	assert.Equal(t, g.Len()+1, s.Triples)
	assert.Equal(t, 2, s.Pushes)
	assert.Equal(t, 1, s.Projects)

	pushes, err := d.Pushes()
	require.NoError(t, err)
	require.Len(t, pushes, 2)
	ids := []string{pushes[0].ID, pushes[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	triples, err := d.AllTriples()
	require.NoError(t, err)
	owners := map[string]int{}
	for _, tr := range triples {
		owners[tr.PushID]++
	}
	assert.Equal(t, g.Len(), owners[first.ID], "existing triples keep their first push")
	assert.Equal(t, 1, owners[second.ID])
}

func TestDeletePush(t *testing.T) {
	d := openTemp(t)
	g := testutil.Provenance()
	p, err := d.PushGraph(g, "proj", "")
	require.NoError(t, err)

	n, err := d.DeletePush(p.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Len(), n)

	s, err := d.Stats()
	require.NoError(t, err)
	assert.Zero(t, s.Triples)
	assert.Zero(t, s.Pushes)

	_, err = d.DeletePush(p.ID)
	assert.Error(t, err)
}

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"the Crab nebula", []string{"Crab", "nebula"}},
		{"a to of", nil},
		{"(papermill), run!", []string{"papermill", "run"}},
		{"Mrk_421", []string{"Mrk_421"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SearchTerms(tt.in), tt.in)
	}
}

func TestSearchLiterals(t *testing.T) {
	d := openTemp(t)
	_, err := d.PushGraph(testutil.Annotated(), "proj", "")
	require.NoError(t, err)

	found, err := d.SearchLiterals("crab")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, testutil.Crab.String(), found[0].Subject)

	found, err = d.SearchLiterals("papermill query.ipynb")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(found), 2)

	found, err = d.SearchLiterals("of")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = d.SearchLiterals("10.5")
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	// LIKE wildcards in the query are matched literally
	found, err = d.SearchLiterals("10_5")
	require.NoError(t, err)
	assert.Empty(t, found)
}
