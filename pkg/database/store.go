package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Row is one fetched record keyed by column name.
type Row = map[string]any

// Store is the generic data-access surface used by the repositories.
// Table and column names are quoted identifiers; every value is a bind parameter.
// All methods run inside the transaction carried by ctx when there is one.
type Store interface {
	// Insert writes one row and returns its generated id.
	Insert(ctx context.Context, table string, fields map[string]any) (int64, error)
	// Update sets fields on the rows whose columns equal every value in match
	// and returns the number of rows affected.
	Update(ctx context.Context, table string, fields map[string]any, match map[string]any) (int64, error)
	// Upsert inserts fields, or on a conflict over conflictColumns overwrites
	// updateColumns with the new values. It returns the resulting row.
	Upsert(ctx context.Context, table string, fields map[string]any, conflictColumns, updateColumns []string) (Row, error)
	// FetchOne returns the first row of query, or nil when there is none.
	FetchOne(ctx context.Context, query string, args ...any) (Row, error)
	// FetchAll returns every row of query in order.
	FetchAll(ctx context.Context, query string, args ...any) ([]Row, error)
}

type pgStore struct {
	db Querier
}

// NewStore returns a Store over db. Pass the pool; transactions are picked up from context.
func NewStore(db Querier) Store {
	return &pgStore{db: db}
}

var _ Store = (*pgStore)(nil)

func (s *pgStore) Insert(ctx context.Context, table string, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("insert into %s: no fields", table)
	}

	cols, args := splitFields(fields)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quoteIdent(table), quoteIdents(cols), placeholders(1, len(cols)))

	var id int64
	if err := querierFor(ctx, s.db).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return id, nil
}

func (s *pgStore) Update(ctx context.Context, table string, fields map[string]any, match map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("update %s: no fields", table)
	}
	if len(match) == 0 {
		return 0, fmt.Errorf("update %s: match criteria required", table)
	}

	setCols, args := splitFields(fields)
	sets := make([]string, len(setCols))
	for i, c := range setCols {
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdent(c), i+1)
	}

	matchCols, matchArgs := splitFields(match)
	conds := make([]string, len(matchCols))
	for i, c := range matchCols {
		conds[i] = fmt.Sprintf("%s = $%d", quoteIdent(c), len(setCols)+i+1)
	}
	args = append(args, matchArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quoteIdent(table), strings.Join(sets, ", "), strings.Join(conds, " AND "))

	tag, err := querierFor(ctx, s.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

func (s *pgStore) Upsert(ctx context.Context, table string, fields map[string]any, conflictColumns, updateColumns []string) (Row, error) {
	if len(fields) == 0 || len(conflictColumns) == 0 {
		return nil, fmt.Errorf("upsert %s: fields and conflict columns required", table)
	}

	cols, args := splitFields(fields)
	action := "NOTHING"
	if len(updateColumns) > 0 {
		sets := make([]string, len(updateColumns))
		for i, c := range updateColumns {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(c), quoteIdent(c))
		}
		action = "UPDATE SET " + strings.Join(sets, ", ")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO %s RETURNING *",
		quoteIdent(table), quoteIdents(cols), placeholders(1, len(cols)), quoteIdents(conflictColumns), action)

	row, err := s.FetchOne(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert %s: %w", table, err)
	}
	return row, nil
}

func (s *pgStore) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := querierFor(ctx, s.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	return row, nil
}

func (s *pgStore) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := querierFor(ctx, s.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return out, nil
}

// splitFields returns the column names in sorted order with their values aligned.
func splitFields(fields map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
	}
	return cols, args
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(start, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}
