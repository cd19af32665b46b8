// Package annotation folds astroquery request fragments into the provenance
// graph. Each fragment is a JSON-LD document named after the checksum of the
// artifact whose generating activity issued the requests.
package annotation

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minio/highwayhash"
	"github.com/piprate/json-gold/ld"
	"github.com/viant/afs"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/vocab"
)

// Ext is the fragment file extension
const Ext = ".jsonld"

// SourceName tags every annotation this package creates
const SourceName = "AQS plugin"

var hashKey = []byte("AQSANNOTATIONKEY0123456789ABCDEF")

// Fragment is one parsed annotation document
type Fragment struct {
	URL string
	// Checksum is the file name without extension
	Checksum string
	// ID is the expanded @id of the document body
	ID    string
	Graph *rdf.Graph
}

// Store reads and deletes fragments in one directory
type Store struct {
	fs  afs.Service
	dir string
}

// Open returns a store over dir, which may not exist yet
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Store{fs: afs.New(), dir: abs}, nil
}

// Dir is the absolute fragment directory
func (s *Store) Dir() string { return s.dir }

// List returns the URLs of all fragments, sorted. A missing directory holds
// no fragments.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ok, err := s.fs.Exists(ctx, s.dir)
	if err != nil || !ok {
		return nil, err
	}
	objects, err := s.fs.List(ctx, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	var urls []string
	for _, o := range objects {
		if o.IsDir() || !strings.HasSuffix(o.Name(), Ext) {
			continue
		}
		urls = append(urls, o.URL())
	}
	sort.Strings(urls)
	return urls, nil
}

// Load parses every fragment in the directory
func (s *Store) Load(ctx context.Context) ([]Fragment, error) {
	urls, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	frags := make([]Fragment, 0, len(urls))
	for _, url := range urls {
		data, err := s.fs.DownloadWithURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", url, err)
		}
		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", url, err)
		}
		f.URL = url
		f.Checksum = strings.TrimSuffix(filepath.Base(url), Ext)
		frags = append(frags, f)
	}
	return frags, nil
}

// Consume deletes the given fragments
func (s *Store) Consume(ctx context.Context, frags []Fragment) error {
	for _, f := range frags {
		if err := s.fs.Delete(ctx, f.URL); err != nil {
			return fmt.Errorf("delete %s: %w", f.URL, err)
		}
	}
	return nil
}

// Parse expands a JSON-LD document into triples
func Parse(data []byte) (Fragment, error) {
	doc, err := ld.DocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Fragment{}, err
	}
	escapeIDs(doc)
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")

	expanded, err := proc.Expand(doc, opts)
	if err != nil {
		return Fragment{}, fmt.Errorf("expand: %w", err)
	}
	var id string
	if len(expanded) > 0 {
		if m, ok := expanded[0].(map[string]interface{}); ok {
			id, _ = m["@id"].(string)
		}
	}

	opts.Format = "application/n-quads"
	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return Fragment{}, fmt.Errorf("to rdf: %w", err)
	}
	nquads, _ := out.(string)
	g, err := rdf.ParseString(nquads, rdf.NQuads)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{ID: id, Graph: g}, nil
}

// escapeIDs percent-encodes spaces in every @id. json-gold silently drops
// nodes whose IRI holds a space.
func escapeIDs(v interface{}) {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, val := range x {
			if id, ok := val.(string); ok && k == "@id" {
				x[k] = rdf.EscapeIRISpaces(id)
				continue
			}
			escapeIDs(val)
		}
	case []interface{}:
		for _, val := range x {
			escapeIDs(val)
		}
	}
}

// Report splits fragments by whether Fold attached them
type Report struct {
	Folded    []Fragment
	Unmatched []Fragment
}

// Fold returns a copy of g with each fragment's triples merged and attached
// to its activity through an oa:Annotation. Fragments whose checksum matches
// no generated artifact are reported and left out.
func Fold(g *rdf.Graph, frags []Fragment) (*rdf.Graph, Report, error) {
	out := g.Clone()
	var rep Report
	for _, f := range frags {
		activities := ActivitiesFor(g, f.Checksum)
		if len(activities) == 0 || f.ID == "" {
			rep.Unmatched = append(rep.Unmatched, f)
			continue
		}
		out.Merge(scopeBlanks(f.Graph, f.Checksum))
		for _, act := range activities {
			ann, err := AnnotationIRI(act, f.ID)
			if err != nil {
				return nil, rep, err
			}
			out.Add(rdf.T(ann, rdf.IRI(vocab.Type), rdf.IRI(vocab.Annotation)))
			out.Add(rdf.T(ann, rdf.IRI(vocab.HasBody), rdf.IRI(f.ID)))
			out.Add(rdf.T(ann, rdf.IRI(vocab.HasTarget), act))
			out.Add(rdf.T(ann, rdf.IRI(vocab.Source), rdf.Literal(SourceName)))
		}
		rep.Folded = append(rep.Folded, f)
	}
	return out, rep, nil
}

// ActivitiesFor returns the activities that generated an entity with the
// given checksum, sorted
func ActivitiesFor(g *rdf.Graph, checksum string) []rdf.Term {
	seen := make(map[rdf.Term]bool)
	var out []rdf.Term
	for _, entity := range g.Subjects(rdf.IRI(vocab.Checksum), rdf.Literal(checksum)) {
		for _, gen := range g.Objects(entity, rdf.IRI(vocab.QualifiedGeneration)) {
			for _, act := range g.Objects(gen, rdf.IRI(vocab.ProvActivity)) {
				if act.IsResource() && !seen[act] {
					seen[act] = true
					out = append(out, act)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// AnnotationIRI is <activity>/annotations/aqs/<hash of body id>
func AnnotationIRI(activity rdf.Term, bodyID string) (rdf.Term, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return rdf.Term{}, err
	}
	h.Write([]byte(bodyID))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h.Sum64())
	return rdf.IRI(activity.Value + "/annotations/aqs/" + hex.EncodeToString(buf[:])), nil
}

// scopeBlanks relabels blank nodes so fragments merged into one graph never
// share them
func scopeBlanks(g *rdf.Graph, scope string) *rdf.Graph {
	relabel := func(t rdf.Term) rdf.Term {
		if t.IsBlank() {
			return rdf.Blank(scope + "-" + t.Value)
		}
		return t
	}
	out := rdf.NewGraph()
	for _, t := range g.Triples() {
		out.Add(rdf.T(relabel(t.S), t.P, relabel(t.O)))
	}
	return out
}
