package store

import "time"

// Import is a cached raw ICS payload.
type Import struct {
	ID         string
	SourceID   string
	Body       []byte
	ImportedAt time.Time
}

type colorAssignment struct {
	PersonName string `db:"person_name"`
	Color      string `db:"color"`
}

type importRow struct {
	ID         string `db:"id"`
	SourceID   string `db:"source_id"`
	Body       string `db:"body"`
	ImportedAt string `db:"imported_at"`
}

func (r importRow) convert() Import {
	ts, _ := time.Parse(time.RFC3339, r.ImportedAt)
	return Import{
		ID:         r.ID,
		SourceID:   r.SourceID,
		Body:       []byte(r.Body),
		ImportedAt: ts,
	}
}
