package store

func (s *Store) runMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS color_assignments (
		person_name VARCHAR NOT NULL PRIMARY KEY,
		color VARCHAR NOT NULL,
		updated_at VARCHAR NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS imports (
		id VARCHAR NOT NULL PRIMARY KEY,
		source_id VARCHAR NOT NULL,
		body TEXT NOT NULL,
		imported_at VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_imports_source ON imports (source_id, imported_at)`,
}
