package revstore

import (
	"context"

	"github.com/flimzy/revstore/errors"
)

// ChangeEvent is the in-process change-notification payload
// (spec.md §6, "Change notification payload").
type ChangeEvent struct {
	Rev Revision
	Seq int64
}

// Observer receives change notifications after each successful committed
// mutation, in commit order (spec.md §4.4.2). Handlers must not
// re-enter the Store on the dispatching goroutine; doing so is undefined
// behavior (spec.md §5, §9).
type Observer interface {
	OnChange(ChangeEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ChangeEvent)

// OnChange implements Observer.
func (f ObserverFunc) OnChange(e ChangeEvent) { f(e) }

// Subscribe registers an observer and returns a function that removes it.
// Per-instance only; there is no global registry (spec.md §9).
func (s *Store) Subscribe(o Observer) (cancel func()) {
	s.observers = append(s.observers, o)
	id := len(s.observers) - 1
	return func() {
		if id < len(s.observers) {
			s.observers[id] = nil
		}
	}
}

// queueChange records a change for dispatch once the outermost scope
// commits. This defers notification past commit, fixing the re-entrancy
// hazard spec.md §9 documents in the source behavior (dispatch used to
// happen synchronously inside the mutating call, before the transaction
// was guaranteed durable).
func (s *Store) queueChange(rev Revision) {
	s.pending = append(s.pending, ChangeEvent{Rev: rev, Seq: rev.Sequence})
}

// dispatchPending fires queued notifications synchronously, in commit
// order, after the outermost txScope has committed.
func (s *Store) dispatchPending() {
	pending := s.pending
	s.pending = nil
	for _, evt := range pending {
		for _, obs := range s.observers {
			if obs != nil {
				obs.OnChange(evt)
			}
		}
	}
}

// ChangesSince implements the replication cursor (spec.md §4.4.1):
// revisions with sequence > lastSequence and current = true, ordered
// ascending by sequence, capped at the Limit option. Bodies are not
// populated; call LoadBody if needed.
func (s *Store) ChangesSince(ctx context.Context, lastSequence int64, opts ...Option) (revs []Revision, err error) {
	o := newQueryOptions(opts...)

	scope, err := s.beginScope(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	rows, err := s.storage.ChangesSince(ctx, scope.tx(), lastSequence, o.limit)
	if err != nil {
		return nil, scope.fail(s.wrapStorageErr(err))
	}

	revs = make([]Revision, 0, len(rows))
	for _, row := range rows {
		revs = append(revs, revisionFromRow(row))
	}
	return revs, nil
}
