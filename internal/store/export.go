package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hargabyte/cppast/internal/model"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type declRow struct {
	decl  Declaration
	attrs []*model.Attribute
}

// SaveCompilation writes comp as a new run in a single transaction and
// returns the run ID. The user and system forests are both exported; system
// declarations are flagged with is_system.
func (s *Store) SaveCompilation(ctx context.Context, comp *model.Compilation) (string, error) {
	runID := uuid.NewString()

	var rows []declRow
	collect := func(system bool) func(model.Declaration) bool {
		return func(d model.Declaration) bool {
			rows = append(rows, declRow{
				decl:  declarationRow(runID, len(rows), d, system),
				attrs: d.GetDecl().Attributes,
			})
			return true
		}
	}
	comp.Global.Walk(collect(false))
	comp.System.Walk(collect(true))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, declarations, diagnostics, has_errors)
		VALUES (?, ?, ?, ?, ?)`,
		runID, now, len(rows), len(comp.Diagnostics.Messages), boolInt(comp.HasErrors()))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := insertDeclarations(ctx, tx, runID, rows); err != nil {
		return "", err
	}
	if err := insertDiagnostics(ctx, tx, runID, comp.Diagnostics.Messages); err != nil {
		return "", err
	}
	if err := insertMacros(ctx, tx, runID, comp.Macros.Items()); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	if s.backend == BackendDolt {
		if err := s.doltCommit(ctx, "export run "+runID); err != nil {
			return runID, err
		}
	}
	return runID, nil
}

func insertDeclarations(ctx context.Context, tx *sql.Tx, runID string, rows []declRow) error {
	declStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO declarations (run_id, seq, kind, name, full_name, file, line,
			parent, type_spelling, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer declStmt.Close()

	attrStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attributes (run_id, decl_seq, seq, kind, name, scope, arguments)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer attrStmt.Close()

	for _, r := range rows {
		d := r.decl
		_, err := declStmt.ExecContext(ctx,
			runID, d.Seq, d.Kind, d.Name, d.FullName, d.File, d.Line,
			d.Parent, d.Type, boolInt(d.IsSystem))
		if err != nil {
			return fmt.Errorf("insert declaration %d (%s): %w", d.Seq, d.FullName, err)
		}
		for i, a := range r.attrs {
			_, err := attrStmt.ExecContext(ctx,
				runID, d.Seq, i, a.Kind.String(), a.Name, a.Scope, a.Arguments)
			if err != nil {
				return fmt.Errorf("insert attribute %s of %s: %w", a.Name, d.FullName, err)
			}
		}
	}
	return nil
}

func insertDiagnostics(ctx context.Context, tx *sql.Tx, runID string, msgs []*model.Diagnostic) error {
	if len(msgs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostics (run_id, seq, severity, message, file, line)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, m := range msgs {
		_, err := stmt.ExecContext(ctx,
			runID, i, m.Severity.String(), m.Message, m.Location.File, m.Location.Line)
		if err != nil {
			return fmt.Errorf("insert diagnostic %d: %w", i, err)
		}
	}
	return nil
}

func insertMacros(ctx context.Context, tx *sql.Tx, runID string, macros []*model.Macro) error {
	if len(macros) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO macros (run_id, seq, name, parameters, value, file, line)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, m := range macros {
		var params sql.NullString
		if m.IsFunctionLike() {
			params = sql.NullString{String: strings.Join(m.Parameters, ","), Valid: true}
		}
		start := m.Span.Start
		_, err := stmt.ExecContext(ctx, runID, i, m.Name, params, m.Value, start.File, start.Line)
		if err != nil {
			return fmt.Errorf("insert macro %s: %w", m.Name, err)
		}
	}
	return nil
}

// doltCommit stages every table and records a Dolt commit.
func (s *Store) doltCommit(ctx context.Context, message string) error {
	// DOLT_COMMIT doesn't support bind variables
	msg := strings.ReplaceAll(message, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("CALL DOLT_COMMIT('-Am', '%s')", msg)); err != nil {
		return fmt.Errorf("dolt commit: %w", err)
	}
	return nil
}

func declarationRow(runID string, seq int, d model.Declaration, system bool) Declaration {
	start := d.GetDecl().Span.Start
	row := Declaration{
		RunID:    runID,
		Seq:      seq,
		Kind:     model.KindOf(d),
		Name:     d.GetName(),
		FullName: model.FullName(d),
		File:     start.File,
		Line:     start.Line,
		Type:     typeSpelling(d),
		IsSystem: system,
	}
	if p, ok := d.Parent().(model.Declaration); ok {
		row.Parent = model.FullName(p)
	}
	return row
}

func typeSpelling(d model.Declaration) string {
	switch v := d.(type) {
	case *model.Class:
		if v.TemplateKind != model.NormalClass {
			return v.String()
		}
	case *model.Enum:
		if v.IntegerType != nil {
			return v.IntegerType.String()
		}
	case *model.Function:
		return v.Signature()
	case *model.Field:
		if v.Type != nil {
			return v.Type.String()
		}
	case *model.Typedef:
		if v.ElementType != nil {
			return v.ElementType.String()
		}
	}
	return ""
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
