//go:build sqlite

package migrations

import (
	"context"
	"testing"
	"time"

	testutil "github.com/prisma-migrate/engine/internal/testing"
)

func TestLockManager_TryAcquireThenReleaseRoundTrips(t *testing.T) {
	db, cleanup := testutil.SetupSQLiteTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lm := NewLockManager(db, "sqlite", 0)

	held, err := lm.IsHeld(ctx)
	if err != nil {
		t.Fatalf("IsHeld: %v", err)
	}
	if held {
		t.Fatal("lock should not be held initially")
	}

	token, err := lm.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	held, err = lm.IsHeld(ctx)
	if err != nil {
		t.Fatalf("IsHeld: %v", err)
	}
	if !held {
		t.Fatal("lock should be held after TryAcquire")
	}

	if err := lm.Release(ctx, token); err != nil {
		t.Fatalf("Release: %v", err)
	}

	held, err = lm.IsHeld(ctx)
	if err != nil {
		t.Fatalf("IsHeld: %v", err)
	}
	if held {
		t.Fatal("lock should not be held after Release")
	}
}

func TestLockManager_TryAcquireFailsWhileHeld(t *testing.T) {
	db, cleanup := testutil.SetupSQLiteTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lm := NewLockManager(db, "sqlite", 0)

	token, err := lm.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("first TryAcquire: %v", err)
	}
	defer lm.Release(ctx, token)

	if _, err := lm.TryAcquire(ctx); err != ErrNotAcquired {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
}

func TestLockManager_ReleaseIsIdempotent(t *testing.T) {
	db, cleanup := testutil.SetupSQLiteTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lm := NewLockManager(db, "sqlite", 0)
	token, err := lm.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if err := lm.Release(ctx, token); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := lm.Release(ctx, token); err != nil {
		t.Fatalf("second Release (stale token) must be a no-op, got: %v", err)
	}
}

func TestLockManager_AcquireTimesOutWhileHeld(t *testing.T) {
	db, cleanup := testutil.SetupSQLiteTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lm := NewLockManager(db, "sqlite", 0)
	lm.pollInterval = 10 * time.Millisecond

	token, err := lm.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	defer lm.Release(ctx, token)

	_, err = lm.Acquire(ctx, 50)
	if err == nil {
		t.Fatal("expected LockAcquisitionTimeout")
	}
}

func TestLockManager_ReleaseOfZeroValueTokenIsNoOp(t *testing.T) {
	db, cleanup := testutil.SetupSQLiteTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lm := NewLockManager(db, "sqlite", 0)
	if err := lm.Release(ctx, LockToken{}); err != nil {
		t.Fatalf("releasing the zero-value token must be a no-op, got: %v", err)
	}
}
