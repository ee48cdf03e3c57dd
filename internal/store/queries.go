package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Runs returns every export run, newest first.
func (s *Store) Runs(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, declarations, diagnostics, has_errors
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, declarations, diagnostics, has_errors
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r         Run
		createdAt string
		hasErrors int
	)
	if err := sc.Scan(&r.ID, &createdAt, &r.Declarations, &r.Diagnostics, &hasErrors); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	r.HasErrors = hasErrors != 0
	return &r, nil
}

const declColumns = `d.run_id, d.seq, d.kind, d.name, d.full_name, d.file, d.line,
	d.parent, d.type_spelling, d.is_system`

// Declarations returns the declarations of one run in export order.
func (s *Store) Declarations(ctx context.Context, runID string) ([]*Declaration, error) {
	return s.queryDeclarations(ctx, `
		SELECT `+declColumns+`
		FROM declarations d WHERE d.run_id = ? ORDER BY d.seq`, runID)
}

// FindDeclarations returns declarations whose name or full name equals
// name across all runs, newest run first.
func (s *Store) FindDeclarations(ctx context.Context, name string) ([]*Declaration, error) {
	return s.queryDeclarations(ctx, `
		SELECT `+declColumns+`
		FROM declarations d JOIN runs r ON r.id = d.run_id
		WHERE d.name = ? OR d.full_name = ?
		ORDER BY r.created_at DESC, d.seq`, name, name)
}

func (s *Store) queryDeclarations(ctx context.Context, query string, args ...any) ([]*Declaration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()

	var decls []*Declaration
	for rows.Next() {
		var (
			d                 Declaration
			file, parent, typ sql.NullString
			line              sql.NullInt64
			isSystem          int
		)
		if err := rows.Scan(&d.RunID, &d.Seq, &d.Kind, &d.Name, &d.FullName, &file, &line,
			&parent, &typ, &isSystem); err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		d.File = file.String
		d.Line = int(line.Int64)
		d.Parent = parent.String
		d.Type = typ.String
		d.IsSystem = isSystem != 0
		decls = append(decls, &d)
	}
	return decls, rows.Err()
}

// Attributes returns the attributes of the declaration with the given full
// name in one run.
func (s *Store) Attributes(ctx context.Context, runID, fullName string) ([]*Attribute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.run_id, a.decl_seq, a.kind, a.name, a.scope, a.arguments
		FROM attributes a
		JOIN declarations d ON d.run_id = a.run_id AND d.seq = a.decl_seq
		WHERE a.run_id = ? AND d.full_name = ?
		ORDER BY a.decl_seq, a.seq`, runID, fullName)
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}
	defer rows.Close()

	var attrs []*Attribute
	for rows.Next() {
		var (
			a           Attribute
			scope, args sql.NullString
		)
		if err := rows.Scan(&a.RunID, &a.DeclSeq, &a.Kind, &a.Name, &scope, &args); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		a.Scope = scope.String
		a.Arguments = args.String
		attrs = append(attrs, &a)
	}
	return attrs, rows.Err()
}

// Diagnostics returns the diagnostics of one run in report order.
func (s *Store) Diagnostics(ctx context.Context, runID string) ([]*Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, severity, message, file, line
		FROM diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []*Diagnostic
	for rows.Next() {
		var (
			d    Diagnostic
			file sql.NullString
			line sql.NullInt64
		)
		if err := rows.Scan(&d.RunID, &d.Seq, &d.Severity, &d.Message, &file, &line); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.File = file.String
		d.Line = int(line.Int64)
		diags = append(diags, &d)
	}
	return diags, rows.Err()
}

// Macros returns the macros of one run in definition order.
func (s *Store) Macros(ctx context.Context, runID string) ([]*Macro, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, name, parameters, value, file, line
		FROM macros WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query macros: %w", err)
	}
	defer rows.Close()

	var macros []*Macro
	for rows.Next() {
		var (
			m                   Macro
			params, value, file sql.NullString
			line                sql.NullInt64
		)
		if err := rows.Scan(&m.RunID, &m.Seq, &m.Name, &params, &value, &file, &line); err != nil {
			return nil, fmt.Errorf("scan macro: %w", err)
		}
		if params.Valid {
			m.Parameters = []string{}
			if params.String != "" {
				m.Parameters = strings.Split(params.String, ",")
			}
		}
		m.Value = value.String
		m.File = file.String
		m.Line = int(line.Int64)
		macros = append(macros, &m)
	}
	return macros, rows.Err()
}
