package revstore

import (
	"context"

	"github.com/flimzy/revstore/driver"
	"github.com/flimzy/revstore/errors"
)

// txScope is a re-entrant transaction scope (spec.md §4.2). A per-store
// counter tracks nesting depth: begin increments it, and when it
// transitions 0→1 a real transaction starts; end decrements it, and when
// it transitions 1→0 the transaction commits (if the fail-flag is clear)
// or rolls back. The fail-flag is write-once within the outermost scope.
type txScope struct {
	store *Store
	done  bool
}

// beginScope acquires a scope for the duration of a mutating operation.
// Every Store mutation holds one for its lifetime (spec.md §4.2, §5).
func (s *Store) beginScope(ctx context.Context) (*txScope, error) {
	if s.depth == 0 {
		tx, err := s.storage.BeginTx(ctx)
		if err != nil {
			return nil, errors.Internal(err)
		}
		s.tx = tx
		s.failed = false
		s.pending = s.pending[:0]
	}
	s.depth++
	return &txScope{store: s}, nil
}

// fail sets the write-once fail-flag, forcing a rollback when the
// outermost scope ends. It returns err unchanged, so call sites can write
// `return sc.fail(err)`.
func (sc *txScope) fail(err error) error {
	sc.store.failed = true
	return err
}

// failed reports whether the fail-flag has been set anywhere in the
// current outermost transaction.
func (sc *txScope) failed() bool {
	return sc.store.failed
}

// tx returns the shared underlying transaction.
func (sc *txScope) tx() driver.Tx {
	return sc.store.tx
}

// end releases the scope. At depth 0 it commits (dispatching queued change
// notifications afterward) or rolls back, per the fail-flag. Safe to call
// more than once; only the first call has effect, so `defer scope.end()`
// composes with an explicit call on the success path.
func (sc *txScope) end() error {
	if sc.done {
		return nil
	}
	sc.done = true

	s := sc.store
	s.depth--
	if s.depth > 0 {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if s.failed {
		pending := s.pending
		s.pending = nil
		_ = pending
		if err := tx.Rollback(); err != nil {
			s.logger.Printf("revstore: rollback failed: %s", err)
			return err
		}
		return nil
	}

	if err := tx.Commit(); err != nil {
		s.pending = nil
		if rerr := tx.Rollback(); rerr != nil {
			s.logger.Printf("revstore: rollback after failed commit failed: %s", rerr)
		}
		s.logger.Printf("revstore: commit failed, rolled back: %s", err)
		return errors.Internal(err)
	}

	s.dispatchPending()
	return nil
}
