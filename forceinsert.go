package revstore

import (
	"context"

	"github.com/flimzy/revstore/errors"
)

// ForceInsert implements spec.md §4.3.4: splices a remote revision chain
// into the local tree. history is ordered newest-to-oldest, beginning with
// leaf.RevID. ForceInsert is idempotent (spec.md P4): replaying the same
// (leaf, history) inserts nothing new and returns the same leaf sequence.
func (s *Store) ForceInsert(ctx context.Context, leaf Revision, history []string) (result Revision, err error) {
	if leaf.DocID == "" {
		return Revision{}, errors.BadRequest("leaf.DocID must be set")
	}
	if len(history) == 0 || history[0] != leaf.RevID.String() {
		return Revision{}, errors.BadRequest("history must begin with the leaf's revID")
	}
	for _, revIDStr := range history {
		if _, perr := ParseRevID(revIDStr); perr != nil {
			return Revision{}, perr
		}
	}

	scope, err := s.beginScope(ctx)
	if err != nil {
		return Revision{}, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	var (
		cursor     *int64 // the spec's rolling "parentSequence"
		leafSeq    int64
		leafParent *int64
	)

	// Walk oldest (len-1) to newest (0), per spec.md §4.3.4 step 2.
	for i := len(history) - 1; i >= 0; i-- {
		revIDStr := history[i]
		isLeaf := i == 0

		row, found, qerr := s.storage.RevisionByID(ctx, scope.tx(), leaf.DocID, revIDStr)
		if qerr != nil {
			return Revision{}, scope.fail(s.wrapStorageErr(qerr))
		}
		if found {
			seq := row.Sequence
			cursor = &seq
			if isLeaf {
				leafSeq = row.Sequence
				leafParent = row.Parent
			}
			continue
		}

		parentForInsert := cursor
		deleted := false
		current := false
		var body []byte
		if isLeaf {
			deleted = leaf.Deleted
			current = true
			if !deleted {
				if leaf.Properties == nil {
					return Revision{}, scope.fail(errors.BadRequest("leaf revision body is required for a non-deleted forceInsert"))
				}
				withRev := leaf
				withRev.RevID, _ = ParseRevID(revIDStr)
				body, err = bodyJSON(s.codec, withRev)
				if err != nil {
					return Revision{}, scope.fail(err)
				}
			}
		}

		seq, ierr := s.storage.InsertRevision(ctx, scope.tx(), leaf.DocID, revIDStr, parentForInsert, current, deleted, body)
		if ierr != nil {
			return Revision{}, scope.fail(s.wrapStorageErr(ierr))
		}
		cursor = &seq
		if isLeaf {
			leafSeq = seq
			leafParent = parentForInsert
		}
	}

	result = leaf
	result.Sequence = leafSeq
	result.parentSequence = leafParent
	result.current = true

	s.queueChange(result)
	return result, nil
}
