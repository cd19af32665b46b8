package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

// PushGraph merges g into the store in one transaction and records the push.
// Triples already present keep their original push.
func (d *DB) PushGraph(g *rdf.Graph, project, revision string) (*Push, error) {
	p := &Push{
		ID:       uuid.NewString(),
		Project:  project,
		Revision: revision,
		PushedAt: time.Now().UnixMilli(),
		Triples:  g.Len(),
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning push: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO pushes (id, project, revision, pushed_at, triples, added) VALUES (?, ?, ?, ?, ?, 0)`,
		p.ID, p.Project, p.Revision, p.PushedAt, p.Triples,
	); err != nil {
		return nil, fmt.Errorf("recording push: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO triples (subject, predicate, object, push_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range g.Triples() {
		res, err := stmt.Exec(t.S.String(), t.P.String(), t.O.String(), p.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting %s: %w", t, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		p.Added += int(n)
	}

	if _, err := tx.Exec(`UPDATE pushes SET added = ? WHERE id = ?`, p.Added, p.ID); err != nil {
		return nil, fmt.Errorf("updating push: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing push: %w", err)
	}
	return p, nil
}

// DeletePush removes a push and every triple it introduced, returning the
// number of triples removed
func (d *DB) DeletePush(id string) (int, error) {
	var n int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM triples WHERE push_id = ?`, id).Scan(&n); err != nil {
		return 0, err
	}
	res, err := d.conn.Exec(`DELETE FROM pushes WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting push %s: %w", id, err)
	}
	if deleted, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if deleted == 0 {
		return 0, fmt.Errorf("push %s not found", id)
	}
	return n, nil
}
