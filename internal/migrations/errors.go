package migrations

import (
	"fmt"

	ierrors "github.com/prisma-migrate/engine/internal/errors"
)

// Sentinel errors for the migration runner, allocated in the P3xxx range
// so they never collide with the query engine's P1xxx/P2xxx codes.
var (
	ErrConfig                 = ierrors.NewPrismaError("P1012", "Invalid migration configuration", nil)
	ErrInvalidMigrationFormat = ierrors.NewPrismaError("P3015", "Could not parse migration file", nil)
	ErrDuplicateID            = ierrors.NewPrismaError("P3019", "Duplicate migration id", nil)
	ErrChecksumMismatch       = ierrors.NewPrismaError("P3006", "Migration has been modified since it was applied", nil)
	ErrNotApplied             = ierrors.NewPrismaError("P3017", "Migration is not applied", nil)
	ErrNoDownStatements       = ierrors.NewPrismaError("P3016", "Migration has no down statements", nil)
	ErrLockAcquisitionTimeout = ierrors.NewPrismaError("P3020", "Could not acquire the migration lock", nil)
	ErrLedgerCorrupt          = ierrors.NewPrismaError("P3021", "Migration ledger row is corrupt", nil)
	ErrReadError              = ierrors.NewPrismaError("P3022", "Could not read migrations directory", nil)
	ErrDatabase               = ierrors.NewPrismaError("P3014", "Migration database operation failed", nil)
)

func newInvalidFormatError(format string, args ...interface{}) error {
	return ierrors.WrapPrismaError(ErrInvalidMigrationFormat, fmt.Errorf(format, args...))
}

func newDuplicateIDError(id string) error {
	return ierrors.WrapPrismaError(ErrDuplicateID, fmt.Errorf("migration id %q is used by more than one directory", id))
}

func newChecksumMismatchError(id string) error {
	return ierrors.WrapPrismaError(ErrChecksumMismatch, fmt.Errorf("Migration %s has been modified since it was applied", id))
}

func newNotAppliedError(id string) error {
	return ierrors.WrapPrismaError(ErrNotApplied, fmt.Errorf("migration %s is not applied", id))
}

func newNoDownStatementsError(id string) error {
	return ierrors.WrapPrismaError(ErrNoDownStatements, fmt.Errorf("migration %s has no down statements", id))
}

func newLockTimeoutError(timeoutMs int) error {
	return ierrors.WrapPrismaError(ErrLockAcquisitionTimeout, fmt.Errorf("lock not acquired within %dms", timeoutMs))
}

func newLedgerCorruptError(id string, reason string) error {
	return ierrors.WrapPrismaError(ErrLedgerCorrupt, fmt.Errorf("ledger row %s: %s", id, reason))
}

func newReadError(err error) error {
	return ierrors.WrapPrismaError(ErrReadError, err)
}

func newDatabaseError(err error) error {
	return ierrors.WrapPrismaError(ErrDatabase, err)
}
