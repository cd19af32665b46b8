package db

// Triple is a row in the triples table. Terms are stored in N-Triples syntax.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	PushID    string `json:"push_id"` // first push that carried the triple
}

// Push is a row in the pushes table
type Push struct {
	ID       string `json:"id"`
	Project  string `json:"project"`
	Revision string `json:"revision"`
	PushedAt int64  `json:"pushed_at"` // Unix millis
	Triples  int    `json:"triples"`   // triples sent
	Added    int    `json:"added"`     // triples new to the store
}

// Stats summarizes the store
type Stats struct {
	Triples  int `json:"triples"`
	Subjects int `json:"subjects"`
	Pushes   int `json:"pushes"`
	Projects int `json:"projects"`
}
