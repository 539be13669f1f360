package migrations

import (
	"context"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/google/uuid"

	"github.com/prisma-migrate/engine/internal/dialect"
	"github.com/prisma-migrate/engine/internal/driver"
)

// DefaultLockTimeout and DefaultPollInterval are the spec's chosen
// defaults (spec.md §4.3's Open Question resolution): they aren't
// documented by the source this was distilled from.
const (
	DefaultLockTimeout  = 30 * time.Second
	DefaultPollInterval = 200 * time.Millisecond

	lockKeySalt     uint32 = 746384521
	lockKeyString          = "prisma-migrations-lock"
	lockTableName          = "_prisma_migrations_lock"
	lockRowID              = 1
)

// lockKey folds the fixed lock identifier into a stable 32-bit key,
// the same crc32-salt idiom used by pgxschema's Migrator.AdvisoryLockID.
func lockKey() uint32 {
	sum := crc32.ChecksumIEEE([]byte(lockKeyString))
	return sum * lockKeySalt
}

// LockToken is the opaque value returned by a successful acquisition and
// required to release it. Its zero value is never a valid token.
type LockToken struct {
	holder string
}

// ErrNotAcquired is returned by TryAcquire when the lock is currently
// held by someone else.
var ErrNotAcquired = fmt.Errorf("migration lock is already held")

// LockManager provides mutually-exclusive migration execution across
// processes sharing one database, via a backend-native advisory lock
// where available and a sentinel table CAS otherwise.
type LockManager struct {
	db           driver.DB
	dialect      dialect.Dialect
	provider     string
	pollInterval time.Duration
	timeoutMs    int
}

// NewLockManager constructs a LockManager bound to db for provider
// ("postgresql", "mysql", "sqlite", ...). timeoutMs is the configured
// lock timeout (spec.md §4.3); it is the threshold reapStale uses (at
// 2×timeoutMs) when a call site doesn't override it. A timeoutMs of 0
// falls back to DefaultLockTimeout.
func NewLockManager(db driver.DB, provider string, timeoutMs int) *LockManager {
	return &LockManager{
		db:           db,
		dialect:      dialect.GetDialect(provider),
		provider:     provider,
		pollInterval: DefaultPollInterval,
		timeoutMs:    timeoutMs,
	}
}

// usesAdvisoryLock reports whether provider has a session-scoped
// advisory-lock primitive this manager can use directly, versus needing
// the fallback sentinel table.
func (l *LockManager) usesAdvisoryLock() bool {
	switch l.provider {
	case "postgresql", "mysql":
		return true
	default:
		return false
	}
}

// Acquire polls at a fixed interval until the lock is obtained or
// timeoutMs elapses, in which case it fails with LockAcquisitionTimeout.
// Cancellation of ctx during the poll returns ctx.Err() without side
// effects, per spec.md §5.
func (l *LockManager) Acquire(ctx context.Context, timeoutMs int) (LockToken, error) {
	if timeoutMs <= 0 {
		timeoutMs = int(DefaultLockTimeout / time.Millisecond)
	}
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)

	for {
		token, ok, err := l.tryAcquireOnce(ctx)
		if err != nil {
			return LockToken{}, err
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return LockToken{}, newLockTimeoutError(timeoutMs)
		}

		timer := time.NewTimer(l.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return LockToken{}, ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire attempts to obtain the lock without waiting.
func (l *LockManager) TryAcquire(ctx context.Context) (LockToken, error) {
	token, ok, err := l.tryAcquireOnce(ctx)
	if err != nil {
		return LockToken{}, err
	}
	if !ok {
		return LockToken{}, ErrNotAcquired
	}
	return token, nil
}

func (l *LockManager) tryAcquireOnce(ctx context.Context) (LockToken, bool, error) {
	if l.usesAdvisoryLock() {
		return l.tryAdvisoryLock(ctx)
	}
	return l.tryTableLock(ctx)
}

func (l *LockManager) tryAdvisoryLock(ctx context.Context) (LockToken, bool, error) {
	var query string
	var arg interface{}

	switch l.provider {
	case "postgresql":
		query = "SELECT pg_try_advisory_lock($1)"
		arg = int64(lockKey())
	case "mysql":
		query = "SELECT GET_LOCK(?, 0)"
		arg = lockKeyString
	default:
		return LockToken{}, false, fmt.Errorf("advisory lock not supported for provider %q", l.provider)
	}

	var acquired bool
	if err := l.db.QueryRow(ctx, query, arg).Scan(&acquired); err != nil {
		return LockToken{}, false, newDatabaseError(err)
	}
	if !acquired {
		return LockToken{}, false, nil
	}
	return LockToken{holder: "session"}, true, nil
}

func (l *LockManager) tryTableLock(ctx context.Context) (LockToken, bool, error) {
	if err := l.ensureLockTable(ctx); err != nil {
		return LockToken{}, false, err
	}
	if err := l.reapStale(ctx, l.timeoutMs); err != nil {
		return LockToken{}, false, err
	}

	holder := uuid.New().String()
	tn := l.dialect.QuoteIdentifier(lockTableName)

	var query string
	switch l.provider {
	case "sqlite":
		query = fmt.Sprintf(`INSERT OR IGNORE INTO %s (id, acquired_at, holder) VALUES (%s, %s, %s)`,
			tn, l.dialect.GetPlaceholder(1), l.dialect.GetPlaceholder(2), l.dialect.GetPlaceholder(3))
	default:
		query = fmt.Sprintf(`INSERT INTO %s (id, acquired_at, holder) VALUES (%s, %s, %s) ON CONFLICT (id) DO NOTHING`,
			tn, l.dialect.GetPlaceholder(1), l.dialect.GetPlaceholder(2), l.dialect.GetPlaceholder(3))
	}

	result, err := l.db.Exec(ctx, query, lockRowID, time.Now().UTC(), holder)
	if err != nil {
		return LockToken{}, false, newDatabaseError(err)
	}
	if result.RowsAffected() == 0 {
		return LockToken{}, false, nil
	}
	return LockToken{holder: holder}, true, nil
}

// ensureLockTable idempotently creates the fallback sentinel table.
func (l *LockManager) ensureLockTable(ctx context.Context) error {
	tn := l.dialect.QuoteIdentifier(lockTableName)
	var timestampType string
	switch l.provider {
	case "mysql":
		timestampType = "DATETIME(3)"
	case "sqlite":
		timestampType = "TEXT"
	default:
		timestampType = "TIMESTAMPTZ"
	}
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INT PRIMARY KEY,
			acquired_at %s NOT NULL,
			holder VARCHAR(64) NOT NULL
		)
	`, tn, timestampType)
	if _, err := l.db.Exec(ctx, query); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// reapStale deletes a fallback-table lock row considered abandoned: one
// older than 2×timeoutMs. A timeoutMs of 0 uses 2×DefaultLockTimeout.
func (l *LockManager) reapStale(ctx context.Context, timeoutMs int) error {
	threshold := 2 * DefaultLockTimeout
	if timeoutMs > 0 {
		threshold = 2 * time.Duration(timeoutMs) * time.Millisecond
	}
	cutoff := time.Now().Add(-threshold).UTC()

	tn := l.dialect.QuoteIdentifier(lockTableName)
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s AND acquired_at < %s`,
		tn, l.dialect.GetPlaceholder(1), l.dialect.GetPlaceholder(2))
	if _, err := l.db.Exec(ctx, query, lockRowID, cutoff); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// Release relinquishes token. Releasing a stale or zero-value token is a
// no-op, not an error.
func (l *LockManager) Release(ctx context.Context, token LockToken) error {
	if token.holder == "" {
		return nil
	}

	if l.usesAdvisoryLock() {
		var query string
		var arg interface{}
		switch l.provider {
		case "postgresql":
			query = "SELECT pg_advisory_unlock($1)"
			arg = int64(lockKey())
		case "mysql":
			query = "SELECT RELEASE_LOCK(?)"
			arg = lockKeyString
		}
		if _, err := l.db.Exec(ctx, query, arg); err != nil {
			return newDatabaseError(err)
		}
		return nil
	}

	tn := l.dialect.QuoteIdentifier(lockTableName)
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s AND holder = %s`,
		tn, l.dialect.GetPlaceholder(1), l.dialect.GetPlaceholder(2))
	if _, err := l.db.Exec(ctx, query, lockRowID, token.holder); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

// IsHeld reports whether the lock is currently held by anyone. The
// fallback table is checked for the lock row and MySQL is asked via
// IS_USED_LOCK. For PostgreSQL this is necessarily best-effort: it
// attempts a non-blocking acquire and immediately releases it if
// successful.
func (l *LockManager) IsHeld(ctx context.Context) (bool, error) {
	if !l.usesAdvisoryLock() {
		if err := l.ensureLockTable(ctx); err != nil {
			return false, err
		}
		tn := l.dialect.QuoteIdentifier(lockTableName)
		query := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = %s`, tn, l.dialect.GetPlaceholder(1))
		var one int
		err := l.db.QueryRow(ctx, query, lockRowID).Scan(&one)
		if err != nil {
			if isNoRowsErr(err) {
				return false, nil
			}
			return false, newDatabaseError(err)
		}
		return true, nil
	}

	if l.provider == "mysql" {
		var held interface{}
		if err := l.db.QueryRow(ctx, "SELECT IS_USED_LOCK(?)", lockKeyString).Scan(&held); err != nil {
			return false, newDatabaseError(err)
		}
		return held != nil, nil
	}

	token, ok, err := l.tryAdvisoryLock(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	_ = l.Release(ctx, token)
	return false, nil
}
