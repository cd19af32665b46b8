package db

import (
	"strings"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// scanTriple scans a row into a Triple. The row must have all 4 columns in standard order.
func scanTriple(scanner interface{ Scan(dest ...any) error }) (Triple, error) {
	var t Triple
	err := scanner.Scan(&t.Subject, &t.Predicate, &t.Object, &t.PushID)
	return t, err
}

// AllTriples returns every stored triple ordered by subject, predicate, object
func (d *DB) AllTriples() ([]Triple, error) {
	rows, err := d.conn.Query(`
		SELECT subject, predicate, object, push_id
		FROM triples ORDER BY subject, predicate, object
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triples []Triple
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

// Graph loads the whole store as a graph
func (d *DB) Graph() (*rdf.Graph, error) {
	triples, err := d.AllTriples()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, t := range triples {
		b.WriteString(t.Subject + " " + t.Predicate + " " + t.Object + " .\n")
	}
	return rdf.ParseString(b.String(), rdf.NTriples)
}

// Pushes returns every push, newest first
func (d *DB) Pushes() ([]Push, error) {
	rows, err := d.conn.Query(`
		SELECT id, project, revision, pushed_at, triples, added
		FROM pushes ORDER BY pushed_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pushes []Push
	for rows.Next() {
		var p Push
		if err := rows.Scan(&p.ID, &p.Project, &p.Revision, &p.PushedAt, &p.Triples, &p.Added); err != nil {
			return nil, err
		}
		pushes = append(pushes, p)
	}
	return pushes, rows.Err()
}

// Stats counts triples, distinct subjects, pushes and projects
func (d *DB) Stats() (Stats, error) {
	var s Stats
	err := d.conn.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM triples),
			(SELECT COUNT(DISTINCT subject) FROM triples),
			(SELECT COUNT(*) FROM pushes),
			(SELECT COUNT(DISTINCT project) FROM pushes)
	`).Scan(&s.Triples, &s.Subjects, &s.Pushes, &s.Projects)
	return s, err
}
