package driver

import (
	"context"
	"database/sql"
)

// SQLDBAdapter adapts a generic *sql.DB (mysql, sqlite, or pgx's stdlib
// driver) to the DB interface. Unlike PgxPoolAdapter, it always has a
// *sql.DB to hand back from SQLDB(), which migration tooling and test
// fixtures rely on.
type SQLDBAdapter struct {
	db *sql.DB
}

// NewSQLDB adapts db to the DB interface.
func NewSQLDB(db *sql.DB) DB {
	return &SQLDBAdapter{db: db}
}

func (a *SQLDBAdapter) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlResult{result: result}, nil
}

func (a *SQLDBAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (a *SQLDBAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return a.db.QueryRowContext(ctx, query, args...)
}

func (a *SQLDBAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// SQLDB returns the underlying *sql.DB.
func (a *SQLDBAdapter) SQLDB() *sql.DB {
	return a.db
}

type sqlResult struct {
	result sql.Result
}

func (r *sqlResult) RowsAffected() int64 {
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Close()            { r.rows.Close() }
func (r *sqlRows) Err() error        { return r.rows.Err() }
func (r *sqlRows) Next() bool        { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }

func (t *sqlTx) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlResult{result: result}, nil
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}
