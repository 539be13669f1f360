package migrations

import (
	"context"
	"time"

	"github.com/prisma-migrate/engine/internal/driver"
	"github.com/prisma-migrate/engine/internal/logger"
)

// Settings configures a Runner. It is the only state a Runner is given
// at construction — there is no ambient/global configuration (spec.md §2).
type Settings struct {
	MigrationsDir string
	TableName     string
	LockTimeoutMs int
	DatabaseURL   string
}

// MigrationStatus is one row of Runner.Status's result: the union of
// on-disk files and ledger rows.
type MigrationStatus struct {
	ID        string
	Name      string
	State     string // "applied" | "pending"
	AppliedAt *time.Time
}

const (
	StateApplied = "applied"
	StatePending = "pending"
)

// UpResult is returned by UpIfNotLocked.
type UpResult struct {
	Ran    bool
	Count  int
	Reason string
}

// RefreshResult is returned by Refresh.
type RefreshResult struct {
	Down int
	Up   int
}

// Runner composes the Reader, LedgerStore, LockManager and Executor to
// implement the public migration operations (spec.md §4.5).
type Runner struct {
	reader   *Reader
	ledger   *LedgerStore
	lock     *LockManager
	executor *Executor
	db       driver.DB

	lockTimeoutMs int
	logger        *logger.Logger
}

// NewRunner constructs a Runner for provider ("postgresql", "mysql",
// "sqlite", ...) bound to db, reading migrations from settings.MigrationsDir.
func NewRunner(db driver.DB, provider string, settings Settings) *Runner {
	ledger := NewLedgerStore(db, settings.TableName, provider)
	lockTimeout := settings.LockTimeoutMs
	if lockTimeout <= 0 {
		lockTimeout = int(DefaultLockTimeout / time.Millisecond)
	}
	return &Runner{
		reader:        NewReader(settings.MigrationsDir),
		ledger:        ledger,
		lock:          NewLockManager(db, provider, lockTimeout),
		executor:      NewExecutor(db, ledger, settings.DatabaseURL),
		db:            db,
		lockTimeoutMs: lockTimeout,
	}
}

// SetLogger attaches a logger that receives an info line for each
// migration applied or rolled back. Optional.
func (r *Runner) SetLogger(l *logger.Logger) {
	r.logger = l
}

func (r *Runner) logInfo(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(format, args...)
	}
}

func (r *Runner) ensureReady(ctx context.Context) error {
	return r.ledger.EnsureTable(ctx, nil)
}

// Status returns the union of on-disk files and ledger rows, ordered by
// id, without acquiring the lock.
func (r *Runner) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := r.ensureReady(ctx); err != nil {
		return nil, err
	}

	files, err := r.reader.Read()
	if err != nil {
		return nil, err
	}
	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return nil, err
	}

	appliedByID := make(map[string]LedgerRow, len(applied))
	for _, row := range applied {
		appliedByID[row.ID] = row
	}

	seen := make(map[string]bool, len(files))
	var out []MigrationStatus
	for _, f := range files {
		seen[f.ID] = true
		if row, ok := appliedByID[f.ID]; ok {
			out = append(out, MigrationStatus{ID: f.ID, Name: f.Name, State: StateApplied, AppliedAt: row.FinishedAt})
		} else {
			out = append(out, MigrationStatus{ID: f.ID, Name: f.Name, State: StatePending})
		}
	}
	for _, row := range applied {
		if !seen[row.ID] {
			out = append(out, MigrationStatus{ID: row.ID, Name: row.MigrationName, State: StateApplied, AppliedAt: row.FinishedAt})
		}
	}

	SortMigrationsStatus(out)
	return out, nil
}

// SortMigrationsStatus orders MigrationStatus values by id ascending.
func SortMigrationsStatus(rows []MigrationStatus) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].ID < rows[j-1].ID; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

// Pending returns the on-disk migrations not present in Applied, ordered
// ascending by id, without acquiring the lock.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	if err := r.ensureReady(ctx); err != nil {
		return nil, err
	}
	files, err := r.reader.Read()
	if err != nil {
		return nil, err
	}
	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, row := range applied {
		appliedSet[row.ID] = true
	}

	var pending []Migration
	for _, f := range files {
		if !appliedSet[f.ID] {
			pending = append(pending, f)
		}
	}
	SortMigrations(pending)
	return pending, nil
}

// Applied returns ListApplied, without acquiring the lock.
func (r *Runner) Applied(ctx context.Context) ([]LedgerRow, error) {
	if err := r.ensureReady(ctx); err != nil {
		return nil, err
	}
	return r.ledger.ListApplied(ctx, nil)
}

// Latest returns the last applied row by started_at, or nil.
func (r *Runner) Latest(ctx context.Context) (*LedgerRow, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, nil
	}
	last := applied[0]
	for _, row := range applied[1:] {
		if row.StartedAt.After(last.StartedAt) {
			last = row
		}
	}
	return &last, nil
}

// checkIntegrity verifies that every applied migration whose id also
// appears on disk still matches its stored checksum, per spec.md §4.4's
// integrity scan.
func (r *Runner) checkIntegrity(ctx context.Context, files []Migration, applied []LedgerRow) error {
	byID := make(map[string]Migration, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}
	for _, row := range applied {
		f, ok := byID[row.ID]
		if !ok {
			continue
		}
		if f.Checksum != row.Checksum {
			return newChecksumMismatchError(row.ID)
		}
	}
	return nil
}

// planPending computes the pending set (ascending by id) and runs the
// integrity scan against the currently-applied rows.
func (r *Runner) planPending(ctx context.Context) ([]Migration, error) {
	files, err := r.reader.Read()
	if err != nil {
		return nil, err
	}
	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := r.checkIntegrity(ctx, files, applied); err != nil {
		return nil, err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, row := range applied {
		appliedSet[row.ID] = true
	}
	var pending []Migration
	for _, f := range files {
		if !appliedSet[f.ID] {
			pending = append(pending, f)
		}
	}
	SortMigrations(pending)
	return pending, nil
}

// DryRun returns the list the next Up(steps) would apply, without
// running anything and without acquiring the lock.
func (r *Runner) DryRun(ctx context.Context, steps *int) ([]Migration, error) {
	if err := r.ensureReady(ctx); err != nil {
		return nil, err
	}
	files, err := r.reader.Read()
	if err != nil {
		return nil, err
	}
	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, row := range applied {
		appliedSet[row.ID] = true
	}
	var pending []Migration
	for _, f := range files {
		if !appliedSet[f.ID] {
			pending = append(pending, f)
		}
	}
	SortMigrations(pending)
	return limitMigrations(pending, steps), nil
}

func limitMigrations(migrations []Migration, steps *int) []Migration {
	if steps == nil || *steps >= len(migrations) {
		return migrations
	}
	if *steps <= 0 {
		return nil
	}
	return migrations[:*steps]
}

// Up applies up to steps pending migrations (all if nil), in id order,
// returning the count applied. It acquires the lock for the whole call.
func (r *Runner) Up(ctx context.Context, steps *int) (int, error) {
	if err := r.ensureReady(ctx); err != nil {
		return 0, err
	}

	token, err := r.lock.Acquire(ctx, r.lockTimeoutMs)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.lock.Release(ctx, token) }()

	return r.runUp(ctx, steps)
}

// runUp is Up's body, assumed to run under the caller's already-held lock.
func (r *Runner) runUp(ctx context.Context, steps *int) (int, error) {
	pending, err := r.planPending(ctx)
	if err != nil {
		return 0, err
	}
	pending = limitMigrations(pending, steps)

	count := 0
	for _, m := range pending {
		if err := r.executor.Up(ctx, m); err != nil {
			return count, err
		}
		count++
		r.logInfo("applied migration %s (%s)", m.ID, m.Name)
	}
	return count, nil
}

// UpIfNotLocked behaves like Up, but if the lock is held by another
// caller it returns {Ran: false, Count: 0} immediately instead of waiting.
func (r *Runner) UpIfNotLocked(ctx context.Context, steps *int) (UpResult, error) {
	if err := r.ensureReady(ctx); err != nil {
		return UpResult{}, err
	}

	token, err := r.lock.TryAcquire(ctx)
	if err != nil {
		if err == ErrNotAcquired {
			return UpResult{Ran: false, Count: 0, Reason: "Another instance is running migrations"}, nil
		}
		return UpResult{}, err
	}
	defer func() { _ = r.lock.Release(ctx, token) }()

	count, err := r.runUp(ctx, steps)
	if err != nil {
		return UpResult{}, err
	}
	return UpResult{Ran: true, Count: count}, nil
}

// Down rolls back the last steps applied migrations (1 if nil) in
// reverse id order, returning the count. It acquires the lock for the
// whole call.
func (r *Runner) Down(ctx context.Context, steps *int) (int, error) {
	if err := r.ensureReady(ctx); err != nil {
		return 0, err
	}

	token, err := r.lock.Acquire(ctx, r.lockTimeoutMs)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.lock.Release(ctx, token) }()

	return r.runDown(ctx, steps)
}

func (r *Runner) runDown(ctx context.Context, steps *int) (int, error) {
	n := 1
	if steps != nil {
		n = *steps
	}
	if n <= 0 {
		return 0, nil
	}

	files, err := r.reader.Read()
	if err != nil {
		return 0, err
	}
	byID := make(map[string]Migration, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}

	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return 0, err
	}
	var rows []LedgerRow
	for _, row := range applied {
		rows = append(rows, row)
	}
	sortLedgerRowsDescending(rows)
	if n < len(rows) {
		rows = rows[:n]
	}

	count := 0
	for _, row := range rows {
		m, ok := byID[row.ID]
		if !ok {
			return count, newInvalidFormatError("migration %s is applied but missing from disk", row.ID)
		}
		if err := r.executor.Down(ctx, m, false); err != nil {
			return count, err
		}
		count++
		r.logInfo("rolled back migration %s (%s)", m.ID, m.Name)
	}
	return count, nil
}

func sortLedgerRowsDescending(rows []LedgerRow) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].ID > rows[j-1].ID; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

// Reset rolls back every applied migration.
func (r *Runner) Reset(ctx context.Context) (int, error) {
	if err := r.ensureReady(ctx); err != nil {
		return 0, err
	}

	token, err := r.lock.Acquire(ctx, r.lockTimeoutMs)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.lock.Release(ctx, token) }()

	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return 0, err
	}
	n := len(applied)
	return r.runDown(ctx, &n)
}

// Fresh resets the database then applies every pending migration,
// returning the up count.
func (r *Runner) Fresh(ctx context.Context) (int, error) {
	result, err := r.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	return result.Up, nil
}

// Refresh is Fresh, but returns both the down and up counts.
func (r *Runner) Refresh(ctx context.Context) (RefreshResult, error) {
	if err := r.ensureReady(ctx); err != nil {
		return RefreshResult{}, err
	}

	token, err := r.lock.Acquire(ctx, r.lockTimeoutMs)
	if err != nil {
		return RefreshResult{}, err
	}
	defer func() { _ = r.lock.Release(ctx, token) }()

	applied, err := r.ledger.ListApplied(ctx, nil)
	if err != nil {
		return RefreshResult{}, err
	}
	n := len(applied)
	downCount, err := r.runDown(ctx, &n)
	if err != nil {
		return RefreshResult{Down: downCount}, err
	}

	upCount, err := r.runUp(ctx, nil)
	if err != nil {
		return RefreshResult{Down: downCount, Up: upCount}, err
	}
	return RefreshResult{Down: downCount, Up: upCount}, nil
}
