package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// FieldSpec declares one column of a Target Table: a field name and its
// SQL type, set once at initialization (spec.md §3 Target Table).
type FieldSpec struct {
	Name string
	Type string // e.g. "TEXT", "DOUBLE PRECISION", "BOOLEAN", "TIMESTAMPTZ"
}

var allowedFieldTypes = map[string]bool{
	"TEXT": true, "BOOLEAN": true, "BIGINT": true, "INTEGER": true,
	"DOUBLE PRECISION": true, "TIMESTAMPTZ": true, "JSONB": true,
}

// EnsureTargetTable creates a module's result table if it does not yet
// exist, with the declared field schema plus the bookkeeping columns
// every target table carries (id, url_id, updated_at). Re-running with
// the same fields is a no-op; it does not currently reconcile a changed
// schema, matching spec.md's "schema is set up once at initialization".
func (db *DB) EnsureTargetTable(ctx context.Context, websiteNamespace, listNamespace, resultName string, fields []FieldSpec) (string, error) {
	table, err := targetTableName(websiteNamespace, listNamespace, resultName)
	if err != nil {
		return "", err
	}

	listTable, err := listTableName(websiteNamespace, listNamespace)
	if err != nil {
		return "", err
	}

	cols := ""

	for _, f := range fields {
		name, err := sanitizeIdentifierPart(f.Name)
		if err != nil {
			return "", err
		}

		if !allowedFieldTypes[f.Type] {
			return "", fmt.Errorf("unsupported target table field type %q for field %q", f.Type, f.Name)
		}

		cols += fmt.Sprintf(", %s %s", quoteIdent(name), f.Type)
	}

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         BIGSERIAL PRIMARY KEY,
			url_id     BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()%s
		)`, quoteIdent(table), quoteIdent(listTable), cols)

	if _, err := db.Pool.Exec(ctx, sql); err != nil {
		return "", fmt.Errorf("ensure target table %s: %w", table, err)
	}

	return table, nil
}

// TouchTargetTable updates the target table's last-write timestamp,
// invoked after every successful write batch.
func (db *DB) TouchTargetTable(ctx context.Context, tableName string, urlID int64, now time.Time) error {
	sql := fmt.Sprintf(`UPDATE %s SET updated_at = $2 WHERE url_id = $1`, quoteIdent(tableName))

	if _, err := db.Pool.Exec(ctx, sql, urlID, now); err != nil {
		return fmt.Errorf("touch target table %s: %w", tableName, err)
	}

	return nil
}

// InsertTargetRow inserts one result row into a target table. values
// must align positionally with the FieldSpec slice passed to
// EnsureTargetTable.
func (db *DB) InsertTargetRow(ctx context.Context, tableName string, fields []FieldSpec, urlID int64, values []any) error {
	if len(fields) != len(values) {
		return fmt.Errorf("insert target row: %d fields but %d values", len(fields), len(values))
	}

	cols := "url_id"
	placeholders := "$1"
	args := []any{urlID}

	for i, f := range fields {
		name, err := sanitizeIdentifierPart(f.Name)
		if err != nil {
			return err
		}

		cols += ", " + quoteIdent(name)
		placeholders += fmt.Sprintf(", $%d", i+2)
		args = append(args, values[i])
	}

	sql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quoteIdent(tableName), cols, placeholders)

	if _, err := db.Pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert target row into %s: %w", tableName, err)
	}

	return nil
}

// TargetTextRow is one row of a target table read back for corpus
// construction: the configured id/datetime columns plus every
// requested text column concatenated, space-joined, in declaration
// order (internal/analyzer's only read path into another module's
// target table, spec.md §4.9 "requests one or more corpora").
type TargetTextRow struct {
	ArticleID string
	Datetime  *time.Time
	Text      string
}

// ReadTargetTextRows reads an entire target table in ascending id
// order. idColumn and datetimeColumn are typically "extracted_id" and
// "extracted_datetime" (see reservedFields); textColumns name zero or
// more of the module's configured fields to fold into Text.
func (db *DB) ReadTargetTextRows(ctx context.Context, tableName, idColumn, datetimeColumn string, textColumns []string) ([]TargetTextRow, error) {
	idCol, err := sanitizeIdentifierPart(idColumn)
	if err != nil {
		return nil, err
	}

	dtCol, err := sanitizeIdentifierPart(datetimeColumn)
	if err != nil {
		return nil, err
	}

	quotedText := make([]string, len(textColumns))

	for i, c := range textColumns {
		name, err := sanitizeIdentifierPart(c)
		if err != nil {
			return nil, err
		}

		quotedText[i] = quoteIdent(name)
	}

	selectList := fmt.Sprintf("%s, %s", quoteIdent(idCol), quoteIdent(dtCol))
	if len(quotedText) > 0 {
		selectList += ", " + strings.Join(quotedText, ", ")
	}

	sql := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id ASC`, selectList, quoteIdent(tableName))

	rows, err := db.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("read target text rows from %s: %w", tableName, err)
	}
	defer rows.Close()

	var out []TargetTextRow

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan target text row from %s: %w", tableName, err)
		}

		row := TargetTextRow{}

		if s, ok := vals[0].(string); ok {
			row.ArticleID = s
		}

		if t, ok := vals[1].(time.Time); ok {
			row.Datetime = &t
		}

		parts := make([]string, 0, len(textColumns))

		for _, v := range vals[2:] {
			if s, ok := v.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}

		row.Text = strings.Join(parts, " ")

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read target text rows from %s: %w", tableName, err)
	}

	return out, nil
}

// EnsureAnalysisTable creates an Analyzer's result table if it does not
// yet exist. Unlike EnsureTargetTable, these rows key on an
// algorithm-defined "analyzed key" (e.g. an article id or reduced
// date) rather than a url_id — spec.md §5: "each row has a URL or
// analyzed-key primary key unique to one worker".
func (db *DB) EnsureAnalysisTable(ctx context.Context, websiteNamespace, listNamespace, resultName string, fields []FieldSpec) (string, error) {
	table, err := targetTableName(websiteNamespace, listNamespace, resultName)
	if err != nil {
		return "", err
	}

	cols := ""

	for _, f := range fields {
		name, err := sanitizeIdentifierPart(f.Name)
		if err != nil {
			return "", err
		}

		if !allowedFieldTypes[f.Type] {
			return "", fmt.Errorf("unsupported analysis table field type %q for field %q", f.Type, f.Name)
		}

		cols += fmt.Sprintf(", %s %s", quoteIdent(name), f.Type)
	}

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         BIGSERIAL PRIMARY KEY,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()%s
		)`, quoteIdent(table), cols)

	if _, err := db.Pool.Exec(ctx, sql); err != nil {
		return "", fmt.Errorf("ensure analysis table %s: %w", table, err)
	}

	return table, nil
}

// InsertAnalysisRow inserts one aggregate row into an Analyzer's result
// table. values must align positionally with fields.
func (db *DB) InsertAnalysisRow(ctx context.Context, tableName string, fields []FieldSpec, values []any) error {
	if len(fields) != len(values) {
		return fmt.Errorf("insert analysis row: %d fields but %d values", len(fields), len(values))
	}

	cols := ""
	placeholders := ""
	args := make([]any, 0, len(values))

	for i, f := range fields {
		name, err := sanitizeIdentifierPart(f.Name)
		if err != nil {
			return err
		}

		if i > 0 {
			cols += ", "
			placeholders += ", "
		}

		cols += quoteIdent(name)
		placeholders += fmt.Sprintf("$%d", i+1)
		args = append(args, values[i])
	}

	sql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quoteIdent(tableName), cols, placeholders)

	if _, err := db.Pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert analysis row into %s: %w", tableName, err)
	}

	return nil
}
