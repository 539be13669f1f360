package migrations

import (
	"context"

	"github.com/prisma-migrate/engine/internal/driver"
)

// Executor applies a single migration's up or down payload atomically,
// one transaction per migration (spec.md §5's "Transaction discipline":
// no multi-migration super-transactions).
type Executor struct {
	db         driver.DB
	ledger     *LedgerStore
	connString string
}

// NewExecutor constructs an Executor. connString is only consulted for
// code migrations, whose out-of-process program receives it as DATABASE_URL
// (see SPEC_FULL.md §9) since it cannot share the Go-level transaction.
func NewExecutor(db driver.DB, ledger *LedgerStore, connString string) *Executor {
	return &Executor{db: db, ledger: ledger, connString: connString}
}

// Up applies m's up payload inside one transaction, per spec.md §4.4.
func (e *Executor) Up(ctx context.Context, m Migration) error {
	if stored, found, err := e.ledger.GetChecksum(ctx, nil, m.ID); err != nil {
		return err
	} else if found && stored != m.Checksum {
		return newChecksumMismatchError(m.ID)
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return newDatabaseError(err)
	}

	if err := e.ledger.InsertStart(ctx, tx, m.ID, m.Name, m.Checksum); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := e.applyUp(ctx, tx, m); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := e.ledger.MarkFinished(ctx, tx, m.ID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

func (e *Executor) applyUp(ctx context.Context, tx driver.Tx, m Migration) error {
	switch m.Kind {
	case KindCode:
		// The out-of-process program manages its own transaction against
		// connString; it cannot participate in the Go-level tx above
		// (spec.md §9's Design Notes resolution for code migrations).
		return m.Loader.Invoke(ctx, "up", e.connString)
	default:
		if m.UpText == "" {
			return nil
		}
		_, err := tx.Exec(ctx, m.UpText)
		return err
	}
}

// Down reverses m inside one transaction, per spec.md §4.4.
func (e *Executor) Down(ctx context.Context, m Migration, force bool) error {
	applied, err := e.ledger.IsApplied(ctx, nil, m.ID)
	if err != nil {
		return err
	}
	if !applied {
		return newNotAppliedError(m.ID)
	}

	if m.Kind == KindSQL && m.DownText == "" && !force {
		return newNoDownStatementsError(m.ID)
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return newDatabaseError(err)
	}

	skipPayload := m.Kind == KindSQL && m.DownText == "" && force
	if !skipPayload {
		if err := e.applyDown(ctx, tx, m); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	if err := e.ledger.DeleteRow(ctx, tx, m.ID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return newDatabaseError(err)
	}
	return nil
}

func (e *Executor) applyDown(ctx context.Context, tx driver.Tx, m Migration) error {
	switch m.Kind {
	case KindCode:
		return m.Loader.Invoke(ctx, "down", e.connString)
	default:
		if m.DownText == "" {
			return nil
		}
		_, err := tx.Exec(ctx, m.DownText)
		return err
	}
}
