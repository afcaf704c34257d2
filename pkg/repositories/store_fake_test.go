package repositories

import (
	"context"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
)

// fakeStore records the last call made through database.Store and returns canned results.
type fakeStore struct {
	table    string
	fields   map[string]any
	match    map[string]any
	conflict []string
	update   []string
	query    string
	args     []any

	id       int64
	affected int64
	row      database.Row
	rows     []database.Row
	err      error
}

var _ database.Store = (*fakeStore)(nil)

func (s *fakeStore) Insert(_ context.Context, table string, fields map[string]any) (int64, error) {
	s.table, s.fields = table, fields
	return s.id, s.err
}

func (s *fakeStore) Update(_ context.Context, table string, fields, match map[string]any) (int64, error) {
	s.table, s.fields, s.match = table, fields, match
	return s.affected, s.err
}

func (s *fakeStore) Upsert(_ context.Context, table string, fields map[string]any, conflict, update []string) (database.Row, error) {
	s.table, s.fields, s.conflict, s.update = table, fields, conflict, update
	return s.row, s.err
}

func (s *fakeStore) FetchOne(_ context.Context, query string, args ...any) (database.Row, error) {
	s.query, s.args = query, args
	return s.row, s.err
}

func (s *fakeStore) FetchAll(_ context.Context, query string, args ...any) ([]database.Row, error) {
	s.query, s.args = query, args
	return s.rows, s.err
}
