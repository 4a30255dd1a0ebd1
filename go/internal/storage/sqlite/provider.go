// Package sqlite implements the storage.Provider contract on a SQLite file
// using database/sql. Record keys map 1:1 to columns; identifiers only ever
// come from package constants, never from callers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	sqlite3 "modernc.org/sqlite"

	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// SQLite extended result codes for constraint violations.
const (
	codeConstraintUnique     = 2067
	codeConstraintPrimaryKey = 1555
)

// Provider is the relational storage variant.
type Provider struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Open connects to the SQLite database at path (":memory:" for tests),
// bootstraps the schema, and returns a ready provider.
func Open(path string, clock clockwork.Clock) (*Provider, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("sqlite storage ready")

	return &Provider{db: db, clock: clock}, nil
}

// DB exposes the underlying handle for test setup.
func (p *Provider) DB() *sql.DB {
	return p.db
}

// Close releases the connection pool.
func (p *Provider) Close() error {
	return p.db.Close()
}

// Get returns the record with the given id, or storage.ErrNotFound.
func (p *Provider) Get(ctx context.Context, table, id string) (storage.Record, error) {
	recs, err := p.selectWhere(ctx, table, map[string]any{storage.FieldID: id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, storage.ErrNotFound
	}
	return recs[0], nil
}

// Put writes the full record, replacing any existing row with the same id.
// created_at is preserved across replacements; updated_at is always
// restamped.
func (p *Provider) Put(ctx context.Context, table string, rec storage.Record) error {
	return p.put(ctx, p.db, table, rec)
}

func (p *Provider) put(ctx context.Context, ex execer, table string, rec storage.Record) error {
	if !rec.Has(storage.FieldID) {
		return fmt.Errorf("put %s: record has no id", table)
	}
	rec = p.stamp(rec)

	cols := sortedKeys(rec)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	var updates []string
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = encodeValue(rec[col])
		if col != storage.FieldID && col != storage.FieldCreatedAt {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
		}
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := ex.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("put %s: %w", table, mapErr(err))
	}
	return nil
}

// Update applies the given fields to an existing row and returns the updated
// record. A nil field value clears the column. Missing rows return
// storage.ErrNotFound.
func (p *Provider) Update(ctx context.Context, table, id string, fields map[string]any) (storage.Record, error) {
	if err := p.update(ctx, p.db, table, id, fields); err != nil {
		return nil, err
	}
	return p.Get(ctx, table, id)
}

func (p *Provider) update(ctx context.Context, ex execer, table, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("update %s: no fields", table)
	}

	set := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		set[k] = v
	}
	if _, ok := set[storage.FieldUpdatedAt]; !ok {
		set[storage.FieldUpdatedAt] = p.clock.Now().UTC()
	}

	cols := sortedKeys(storage.Record(set))
	exprs := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		exprs[i] = col + " = ?"
		args = append(args, encodeValue(set[col]))
	}
	args = append(args, id)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(exprs, ", "))
	res, err := ex.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, mapErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes the row if present. Deleting a missing row is not an error.
func (p *Provider) Delete(ctx context.Context, table, id string) error {
	return p.delete(ctx, p.db, table, id)
}

func (p *Provider) delete(ctx context.Context, ex execer, table, id string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	if _, err := ex.ExecContext(ctx, stmt, id); err != nil {
		return fmt.Errorf("delete %s: %w", table, mapErr(err))
	}
	return nil
}

// Query serves equality lookups from the base table. The index hint in q is
// for the key-value variant; the SQL planner picks its own access path here.
func (p *Provider) Query(ctx context.Context, table string, q storage.Query) ([]storage.Record, error) {
	return p.selectWhere(ctx, table, q.Key)
}

// Scan returns all rows matching the equality filter (all rows when the
// filter is empty).
func (p *Provider) Scan(ctx context.Context, table string, filter map[string]any) ([]storage.Record, error) {
	return p.selectWhere(ctx, table, filter)
}

// Transact applies the batch inside one transaction.
func (p *Provider) Transact(ctx context.Context, ops []storage.Op) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, op := range ops {
		var opErr error
		switch op.Kind {
		case storage.OpPut:
			opErr = p.put(ctx, tx, op.Table, op.Record)
		case storage.OpUpdate:
			opErr = p.update(ctx, tx, op.Table, op.ID, op.Fields)
		case storage.OpDelete:
			opErr = p.delete(ctx, tx, op.Table, op.ID)
		default:
			opErr = fmt.Errorf("unknown op kind %d", op.Kind)
		}
		if opErr != nil {
			_ = tx.Rollback()
			return opErr
		}
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (p *Provider) selectWhere(ctx context.Context, table string, conds map[string]any) ([]storage.Record, error) {
	stmt := "SELECT * FROM " + table
	var args []any
	if len(conds) > 0 {
		cols := sortedKeys(storage.Record(conds))
		exprs := make([]string, 0, len(cols))
		for _, col := range cols {
			if conds[col] == nil {
				exprs = append(exprs, col+" IS NULL")
				continue
			}
			exprs = append(exprs, col+" = ?")
			args = append(args, encodeValue(conds[col]))
		}
		stmt += " WHERE " + strings.Join(exprs, " AND ")
	}
	stmt += " ORDER BY id"

	rows, err := p.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, mapErr(err))
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]storage.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []storage.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(storage.Record, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case nil:
				// NULL columns stay absent, matching key-value semantics
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// stamp clones the record and applies write timestamps. created_at is only
// filled when the caller did not carry one over from a previous read.
func (p *Provider) stamp(rec storage.Record) storage.Record {
	now := p.clock.Now().UTC()
	out := rec.Clone()
	if !out.Has(storage.FieldCreatedAt) {
		out[storage.FieldCreatedAt] = now
	}
	out[storage.FieldUpdatedAt] = now
	return out
}

// encodeValue normalizes Go values to a single representation per type so
// both backends read back identically: timestamps as RFC3339 text, booleans
// as 0/1 integers.
func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(storage.TimeLayout)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(t)
	default:
		return v
	}
}

func sortedKeys(rec storage.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mapErr(err error) error {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case codeConstraintUnique, codeConstraintPrimaryKey:
			return fmt.Errorf("unique constraint violated: %w", storage.ErrConflict)
		}
	}
	return err
}
