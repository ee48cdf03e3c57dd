package store

// schemaStatements define the export schema. The column types are accepted
// by both SQLite and Dolt.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
    id VARCHAR(36) PRIMARY KEY,        -- uuid
    created_at VARCHAR(40) NOT NULL,   -- fixed-width UTC timestamp, sorts lexically
    declarations INT NOT NULL,
    diagnostics INT NOT NULL,
    has_errors INT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS declarations (
    run_id VARCHAR(36) NOT NULL,
    seq INT NOT NULL,                  -- depth-first insertion order
    kind VARCHAR(32) NOT NULL,         -- namespace, struct, enum_item, function, ...
    name TEXT NOT NULL,
    full_name TEXT NOT NULL,           -- geo::Point::x
    file TEXT,
    line INT,
    parent TEXT,                       -- owner full name, empty at the root
    type_spelling TEXT,                -- field type, typedef target or function signature
    is_system INT NOT NULL,
    PRIMARY KEY (run_id, seq)
)`,

	`CREATE TABLE IF NOT EXISTS attributes (
    run_id VARCHAR(36) NOT NULL,
    decl_seq INT NOT NULL,
    seq INT NOT NULL,
    kind VARCHAR(16) NOT NULL,         -- system, annotate, comment, token
    name TEXT NOT NULL,
    scope TEXT,
    arguments TEXT,
    PRIMARY KEY (run_id, decl_seq, seq)
)`,

	`CREATE TABLE IF NOT EXISTS diagnostics (
    run_id VARCHAR(36) NOT NULL,
    seq INT NOT NULL,
    severity VARCHAR(16) NOT NULL,
    message TEXT NOT NULL,
    file TEXT,
    line INT,
    PRIMARY KEY (run_id, seq)
)`,

	`CREATE TABLE IF NOT EXISTS macros (
    run_id VARCHAR(36) NOT NULL,
    seq INT NOT NULL,
    name TEXT NOT NULL,
    parameters TEXT,                   -- comma separated, NULL for object-like macros
    value TEXT,
    file TEXT,
    line INT,
    PRIMARY KEY (run_id, seq)
)`,
}

func (s *Store) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
