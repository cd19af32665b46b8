package db

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "is": true,
	"it": true, "and": true, "or": true, "with": true, "from": true,
	"by": true, "this": true, "that": true, "as": true, "be": true,
}

// SearchTerms preprocesses a natural language query.
// Splits on whitespace, removes stopwords and words < 3 chars, trims punctuation.
func SearchTerms(query string) []string {
	var filtered []string
	for _, w := range strings.Fields(query) {
		// Trim non-letter/digit chars from both ends
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if len(trimmed) < 3 {
			continue
		}
		if stopwords[strings.ToLower(trimmed)] {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	return filtered
}

// SearchLiterals returns triples whose literal object contains any search
// term, case-insensitively. Returns empty slice if no term survives
// preprocessing.
func (d *DB) SearchLiterals(query string) ([]Triple, error) {
	terms := SearchTerms(query)
	if len(terms) == 0 {
		return []Triple{}, nil
	}

	var where []string
	args := make([]any, 0, len(terms))
	for _, term := range terms {
		where = append(where, "object LIKE ? ESCAPE '\\'")
		args = append(args, "\"%"+escapeLike(term)+"%")
	}
	rows, err := d.conn.Query(`
		SELECT subject, predicate, object, push_id
		FROM triples
		WHERE `+strings.Join(where, " OR ")+`
		ORDER BY subject, predicate, object
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	triples := []Triple{}
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
