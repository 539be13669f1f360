//go:build sqlite

package migrations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	testutil "github.com/prisma-migrate/engine/internal/testing"
)

func newTestRunner(t *testing.T, migrationsDir string) (*Runner, func()) {
	t.Helper()
	db, cleanup := testutil.SetupSQLiteTestDB(t)
	runner := NewRunner(db, "sqlite", Settings{MigrationsDir: migrationsDir})
	return runner, cleanup
}

// TestRunner_FreshInstall matches spec.md §8 scenario 1.
func TestRunner_FreshInstall(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE users(id INTEGER PRIMARY KEY);\n-- Migration: Down\nDROP TABLE users;\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	count, err := runner.Up(ctx, nil)
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied, got %d", count)
	}

	applied, err := runner.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 1 || applied[0].ID != "20240101000000" {
		t.Fatalf("unexpected applied set: %v", applied)
	}
}

// TestRunner_RollbackOfLast matches spec.md §8 scenario 2.
func TestRunner_RollbackOfLast(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE users(id INTEGER PRIMARY KEY);\n-- Migration: Down\nDROP TABLE users;\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	if _, err := runner.Up(ctx, nil); err != nil {
		t.Fatalf("Up: %v", err)
	}

	count, err := runner.Down(ctx, nil)
	if err != nil {
		t.Fatalf("Down: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 rolled back, got %d", count)
	}

	applied, err := runner.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected empty ledger after rollback, got %v", applied)
	}
}

// TestRunner_FailureMidBatchStopsLoop matches spec.md §8 scenario 3.
func TestRunner_FailureMidBatchStopsLoop(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_a",
		"-- Migration: Up\nCREATE TABLE a(id INTEGER PRIMARY KEY);\n")
	writeMigrationDir(t, dir, "20240102000000_b",
		"-- Migration: Up\nCREATE TABLE a(id INTEGER PRIMARY KEY);\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	count, err := runner.Up(ctx, nil)
	if err == nil {
		t.Fatal("expected the second migration to fail (duplicate table)")
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 committed before the failure, got %d", count)
	}

	applied, err := runner.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 1 || applied[0].ID != "20240101000000" {
		t.Fatalf("expected only the first migration in the ledger, got %v", applied)
	}
}

// TestRunner_ChecksumDrift matches spec.md §8 scenario 5.
func TestRunner_ChecksumDrift(t *testing.T) {
	dir := t.TempDir()
	initDir := filepath.Join(dir, "20240101000000_init")
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE users(id INTEGER PRIMARY KEY);\n-- Migration: Down\nDROP TABLE users;\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	if _, err := runner.Up(ctx, nil); err != nil {
		t.Fatalf("Up: %v", err)
	}

	// Mutate the applied migration's file on disk.
	if err := os.WriteFile(filepath.Join(initDir, "migration.sql"),
		[]byte("-- Migration: Up\nCREATE TABLE users(id INTEGER PRIMARY KEY, email TEXT);\n"), 0644); err != nil {
		t.Fatal(err)
	}
	writeMigrationDir(t, dir, "20240102000000_next",
		"-- Migration: Up\nCREATE TABLE widgets(id INTEGER PRIMARY KEY);\n")

	_, err := runner.Up(ctx, nil)
	if err == nil {
		t.Fatal("expected ChecksumMismatch")
	}

	applied, err := runner.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	for _, row := range applied {
		if row.ID == "20240102000000" {
			t.Fatal("the pending migration must not be applied after a checksum mismatch")
		}
	}
}

// TestRunner_EmptyDown matches spec.md §8 scenario 6.
func TestRunner_EmptyDown(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE t(id INTEGER PRIMARY KEY);\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	if _, err := runner.Up(ctx, nil); err != nil {
		t.Fatalf("Up: %v", err)
	}

	if _, err := runner.Down(ctx, nil); err == nil {
		t.Fatal("expected NoDownStatements")
	}

	// force=true removes the ledger row without running any SQL.
	files, err := runner.reader.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := runner.executor.Down(ctx, files[0], true); err != nil {
		t.Fatalf("forced Down: %v", err)
	}

	applied, err := runner.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected ledger row removed by forced down, got %v", applied)
	}
}

// TestRunner_IdempotentUp exercises the "up(); up()" invariant from
// spec.md §8.
func TestRunner_IdempotentUp(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE t(id INTEGER PRIMARY KEY);\n-- Migration: Down\nDROP TABLE t;\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	first, err := runner.Up(ctx, nil)
	if err != nil {
		t.Fatalf("first Up: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected 1 applied, got %d", first)
	}

	second, err := runner.Up(ctx, nil)
	if err != nil {
		t.Fatalf("second Up: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 newly applied on the second call, got %d", second)
	}
}

// TestRunner_UpIfNotLockedReturnsReasonWhenHeld exercises §4.5's
// upIfNotLocked contract directly against the lock manager.
func TestRunner_UpIfNotLockedReturnsReasonWhenHeld(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE t(id INTEGER PRIMARY KEY);\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	token, err := runner.lock.Acquire(ctx, 1000)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer runner.lock.Release(ctx, token)

	result, err := runner.UpIfNotLocked(ctx, nil)
	if err != nil {
		t.Fatalf("UpIfNotLocked: %v", err)
	}
	if result.Ran {
		t.Fatal("expected Ran=false while the lock is held")
	}
	if result.Reason != "Another instance is running migrations" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

// TestRunner_RefreshResetsThenReapplies exercises fresh/refresh.
func TestRunner_RefreshResetsThenReapplies(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE t(id INTEGER PRIMARY KEY);\n-- Migration: Down\nDROP TABLE t;\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	if _, err := runner.Up(ctx, nil); err != nil {
		t.Fatalf("Up: %v", err)
	}

	result, err := runner.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result.Down != 1 || result.Up != 1 {
		t.Fatalf("unexpected refresh result: %+v", result)
	}
}

// TestRunner_DryRunDoesNotMutate verifies dryRun reports the pending set
// without applying anything.
func TestRunner_DryRunDoesNotMutate(t *testing.T) {
	dir := t.TempDir()
	writeMigrationDir(t, dir, "20240101000000_init",
		"-- Migration: Up\nCREATE TABLE t(id INTEGER PRIMARY KEY);\n")

	runner, cleanup := newTestRunner(t, dir)
	defer cleanup()
	ctx := context.Background()

	plan, err := runner.DryRun(ctx, nil)
	if err != nil {
		t.Fatalf("DryRun: %v", err)
	}
	if len(plan) != 1 || plan[0].ID != "20240101000000" {
		t.Fatalf("unexpected plan: %v", plan)
	}

	applied, err := runner.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 0 {
		t.Fatal("DryRun must not apply anything")
	}
}
