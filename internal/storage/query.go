// ABOUTME: Query helpers shared by every service: select, insert, update, delete.
// ABOUTME: Each helper waits for readiness, binds parameters, logs and counts failures.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harperreed/gymlog/internal/metrics"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Handle is something queries can run against: the DB or an open Tx.
type Handle interface {
	conn(ctx context.Context) (querier, error)
	log() *log.Logger
}

// Scanner is satisfied by *sql.Rows and *sql.Row.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc decodes the current row into a T.
type ScanFunc[T any] func(Scanner) (T, error)

// Select runs a query and scans every row in order. No rows is a nil slice.
func Select[T any](ctx context.Context, h Handle, scan ScanFunc[T], query string, args ...any) ([]T, error) {
	defer track(metrics.OpSelect)()

	q, err := h.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fail(h, metrics.OpSelect, ErrRead, query, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fail(h, metrics.OpSelect, ErrRead, query, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(h, metrics.OpSelect, ErrRead, query, err)
	}
	return out, nil
}

// Get runs a query expected to match one row. No rows is ErrNotFound.
func Get[T any](ctx context.Context, h Handle, scan ScanFunc[T], query string, args ...any) (T, error) {
	var zero T
	rows, err := Select(ctx, h, scan, query, args...)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, ErrNotFound
	}
	return rows[0], nil
}

// Insert runs an INSERT and returns the new row id.
func Insert(ctx context.Context, h Handle, query string, args ...any) (int64, error) {
	defer track(metrics.OpInsert)()

	q, err := h.conn(ctx)
	if err != nil {
		return 0, err
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fail(h, metrics.OpInsert, ErrWrite, query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fail(h, metrics.OpInsert, ErrWrite, query, err)
	}
	return id, nil
}

// Update runs a write statement. Success means the engine accepted it,
// not that any row changed.
func Update(ctx context.Context, h Handle, query string, args ...any) error {
	defer track(metrics.OpUpdate)()

	q, err := h.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fail(h, metrics.OpUpdate, ErrWrite, query, err)
	}
	return nil
}

// DeleteByID removes the row with the given id from table.
func DeleteByID(ctx context.Context, h Handle, table Table, id int64) error {
	return DeleteWhere(ctx, h, table, "id = ?", id)
}

// DeleteWhere removes every row of table matching the where clause.
func DeleteWhere(ctx context.Context, h Handle, table Table, where string, args ...any) error {
	if err := table.check(); err != nil {
		return err
	}
	defer track(metrics.OpDelete)()

	q, err := h.conn(ctx)
	if err != nil {
		return err
	}

	query := "DELETE FROM " + string(table) + " WHERE " + where
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fail(h, metrics.OpDelete, ErrWrite, query, err)
	}
	return nil
}

// Count returns the number of rows in table.
func Count(ctx context.Context, h Handle, table Table) (int, error) {
	if err := table.check(); err != nil {
		return 0, err
	}
	return Get(ctx, h, func(s Scanner) (int, error) {
		var n int
		err := s.Scan(&n)
		return n, err
	}, "SELECT COUNT(*) FROM "+string(table))
}

// Tx is an open transaction. It is a Handle.
type Tx struct {
	tx *sql.Tx
	db *DB
}

func (t *Tx) conn(context.Context) (querier, error) {
	return t.tx, nil
}

func (t *Tx) log() *log.Logger {
	return t.db.logger
}

// InTx runs fn inside a transaction. Any error or panic from fn rolls back.
// With a single connection, fn must use tx rather than the DB.
func (d *DB) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	defer track(metrics.OpTx)()

	db, err := d.sqlDB(ctx)
	if err != nil {
		return err
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fail(d, metrics.OpTx, ErrWrite, "BEGIN", err)
	}
	tx := &Tx{tx: sqlTx, db: d}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			d.logger.Error("rollback failed", "err", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fail(d, metrics.OpTx, ErrWrite, "COMMIT", err)
	}
	return nil
}

// WithTx runs fn in h's transaction if h is a Tx, otherwise in a new one.
func WithTx(ctx context.Context, h Handle, fn func(tx *Tx) error) error {
	switch v := h.(type) {
	case *Tx:
		return fn(v)
	case *DB:
		return v.InTx(ctx, fn)
	default:
		return fmt.Errorf("unsupported handle %T", h)
	}
}

func track(op string) func() {
	timer := prometheus.NewTimer(metrics.StorageOpDuration.WithLabelValues(op))
	return func() { timer.ObserveDuration() }
}

func fail(h Handle, op string, kind error, query string, err error) error {
	metrics.StorageOpErrors.WithLabelValues(op).Inc()
	h.log().Error("storage operation failed", "op", op, "query", compact(query), "err", err)
	return fmt.Errorf("%w: %w", kind, err)
}

// compact collapses whitespace so multi-line queries log on one line.
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
