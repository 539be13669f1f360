package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prisma-migrate/engine/internal/dialect"
	"github.com/prisma-migrate/engine/internal/driver"
)

// DefaultTableName is the ledger table name used when Settings doesn't
// override it.
const DefaultTableName = "_prisma_migrations"

// LedgerRow is a snapshot of one row of the ledger table.
type LedgerRow struct {
	ID                string
	Checksum          string
	MigrationName     string
	StartedAt         time.Time
	FinishedAt        *time.Time
	RolledBackAt      *time.Time
	AppliedStepsCount int
	Logs              string
}

// execer is satisfied by both driver.DB and an open driver.Tx, letting
// every LedgerStore operation run against the root connection or inside
// a caller-supplied transaction.
type execer interface {
	Exec(ctx context.Context, query string, args ...interface{}) (driver.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row
}

// LedgerStore owns the ledger table: read/insert/mark-finished/delete.
type LedgerStore struct {
	db        driver.DB
	tableName string
	dialect   dialect.Dialect
}

// NewLedgerStore constructs a LedgerStore bound to db, using tableName
// (falling back to DefaultTableName if empty) and the dialect matching
// provider.
func NewLedgerStore(db driver.DB, tableName string, provider string) *LedgerStore {
	if tableName == "" {
		tableName = DefaultTableName
	}
	return &LedgerStore{db: db, tableName: tableName, dialect: dialect.GetDialect(provider)}
}

// TableName returns the ledger table name this store operates on.
func (s *LedgerStore) TableName() string {
	return s.tableName
}

func (s *LedgerStore) q(tx execer) execer {
	if tx != nil {
		return tx
	}
	return s.db
}

// EnsureTable idempotently creates the ledger table with the column set
// from spec.md §6, in the syntax appropriate for the backend.
func (s *LedgerStore) EnsureTable(ctx context.Context, tx execer) error {
	tn := s.dialect.QuoteIdentifier(s.tableName)

	var timestampType string
	switch s.dialect.Name() {
	case "postgresql":
		timestampType = "TIMESTAMPTZ"
	case "mysql":
		timestampType = "DATETIME(3)"
	case "sqlite":
		timestampType = "DATETIME"
	default:
		timestampType = "TIMESTAMPTZ"
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			finished_at %s,
			migration_name VARCHAR(255) NOT NULL,
			logs TEXT,
			rolled_back_at %s,
			started_at %s NOT NULL,
			applied_steps_count INT NOT NULL DEFAULT 0
		)
	`, tn, timestampType, timestampType, timestampType)

	if _, err := s.q(tx).Exec(ctx, query); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// ListApplied returns the rows with rolled_back_at IS NULL, ordered by
// started_at ascending.
func (s *LedgerStore) ListApplied(ctx context.Context, tx execer) ([]LedgerRow, error) {
	tn := s.dialect.QuoteIdentifier(s.tableName)
	query := fmt.Sprintf(`
		SELECT id, checksum, migration_name, started_at, finished_at, rolled_back_at, applied_steps_count, logs
		FROM %s
		WHERE rolled_back_at IS NULL
		ORDER BY started_at ASC
	`, tn)

	rows, err := s.q(tx).Query(ctx, query)
	if err != nil {
		return nil, newDatabaseError(err)
	}
	defer rows.Close()

	var out []LedgerRow
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, newDatabaseError(err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLedgerRow(s scanner) (LedgerRow, error) {
	var (
		row          LedgerRow
		logs         sql.NullString
		finishedAt   sql.NullTime
		rolledBackAt sql.NullTime
	)
	if err := s.Scan(&row.ID, &row.Checksum, &row.MigrationName, &row.StartedAt, &finishedAt, &rolledBackAt, &row.AppliedStepsCount, &logs); err != nil {
		return LedgerRow{}, newLedgerCorruptError("?", err.Error())
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		row.FinishedAt = &t
	}
	if rolledBackAt.Valid {
		t := rolledBackAt.Time
		row.RolledBackAt = &t
	}
	row.Logs = logs.String
	return row, nil
}

// IsApplied reports whether id has a row with rolled_back_at IS NULL.
func (s *LedgerStore) IsApplied(ctx context.Context, tx execer, id string) (bool, error) {
	tn := s.dialect.QuoteIdentifier(s.tableName)
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = %s AND rolled_back_at IS NULL`, tn, s.dialect.GetPlaceholder(1))

	var one int
	err := s.q(tx).QueryRow(ctx, query, id).Scan(&one)
	if err != nil {
		if isNoRowsErr(err) {
			return false, nil
		}
		return false, newDatabaseError(err)
	}
	return true, nil
}

// InsertStart inserts a row marking the beginning of an up. It errors if
// a row for id already exists.
func (s *LedgerStore) InsertStart(ctx context.Context, tx execer, id, name, checksum string) error {
	tn := s.dialect.QuoteIdentifier(s.tableName)
	query := fmt.Sprintf(`
		INSERT INTO %s (id, checksum, migration_name, started_at, finished_at, applied_steps_count)
		VALUES (%s, %s, %s, %s, NULL, 0)
	`, tn, s.dialect.GetPlaceholder(1), s.dialect.GetPlaceholder(2), s.dialect.GetPlaceholder(3), s.dialect.GetPlaceholder(4))

	if _, err := s.q(tx).Exec(ctx, query, id, checksum, name, time.Now().UTC()); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// MarkFinished sets finished_at = now() and applied_steps_count = 1.
func (s *LedgerStore) MarkFinished(ctx context.Context, tx execer, id string) error {
	tn := s.dialect.QuoteIdentifier(s.tableName)
	query := fmt.Sprintf(`
		UPDATE %s SET finished_at = %s, applied_steps_count = 1 WHERE id = %s
	`, tn, s.dialect.GetPlaceholder(1), s.dialect.GetPlaceholder(2))

	if _, err := s.q(tx).Exec(ctx, query, time.Now().UTC(), id); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// DeleteRow removes the ledger row for id (delete-on-rollback, per
// spec.md's resolution of the rollback-bookkeeping open question).
func (s *LedgerStore) DeleteRow(ctx context.Context, tx execer, id string) error {
	tn := s.dialect.QuoteIdentifier(s.tableName)
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, tn, s.dialect.GetPlaceholder(1))

	if _, err := s.q(tx).Exec(ctx, query, id); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// GetChecksum returns the stored checksum for id, and whether a row
// exists at all (regardless of rolled_back_at).
func (s *LedgerStore) GetChecksum(ctx context.Context, tx execer, id string) (checksum string, found bool, err error) {
	tn := s.dialect.QuoteIdentifier(s.tableName)
	query := fmt.Sprintf(`SELECT checksum FROM %s WHERE id = %s`, tn, s.dialect.GetPlaceholder(1))

	err = s.q(tx).QueryRow(ctx, query, id).Scan(&checksum)
	if err != nil {
		if isNoRowsErr(err) {
			return "", false, nil
		}
		return "", false, newDatabaseError(err)
	}
	return checksum, true, nil
}

// isNoRowsErr recognizes both database/sql's sentinel and pgx's
// equivalent ("no rows in result set"), since LedgerStore runs under
// either driver depending on the backend.
func isNoRowsErr(err error) bool {
	if err == nil {
		return false
	}
	if err == sql.ErrNoRows {
		return true
	}
	return strings.Contains(err.Error(), "no rows")
}
