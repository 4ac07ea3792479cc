package revstore

import (
	"context"
	"fmt"

	"github.com/flimzy/revstore/driver"
	"github.com/flimzy/revstore/errors"
)

// FindMissing implements spec.md §4.5.1: the replication "revs_diff"
// primitive. It returns the subset of revs not already present locally, so
// a replicator knows which leaves it still needs to push.
func (s *Store) FindMissing(ctx context.Context, revs *RevisionList) (missing *RevisionList, err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	existing, err := s.storage.FindExisting(ctx, scope.tx(), revs.pairs())
	if err != nil {
		return nil, scope.fail(s.wrapStorageErr(err))
	}

	missing = NewRevisionList()
	for _, rev := range revs.All() {
		if !existing[[2]string{rev.DocID, rev.RevID.String()}] {
			missing.Add(rev)
		}
	}
	return missing, nil
}

// GetAllRevisions implements spec.md §4.5.2: every known revision of docID,
// leaves and ancestors alike, most recent sequence first. Bodies are not
// populated; call LoadBody on the entries the caller actually needs.
func (s *Store) GetAllRevisions(ctx context.Context, docID string) (revs []Revision, err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	rows, err := s.storage.AllRevisions(ctx, scope.tx(), docID)
	if err != nil {
		return nil, scope.fail(s.wrapStorageErr(err))
	}

	revs = make([]Revision, 0, len(rows))
	for _, row := range rows {
		revs = append(revs, revisionFromRow(row))
	}
	return revs, nil
}

// GetRevisionHistory implements spec.md §4.5.3: the ordered revID chain
// from the given leaf back to its root, newest first, suitable for passing
// straight to ForceInsert on a peer that has the root but not the leaf.
func (s *Store) GetRevisionHistory(ctx context.Context, docID, revID string) (history []string, err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	row, found, err := s.storage.RevisionByID(ctx, scope.tx(), docID, revID)
	if err != nil {
		return nil, scope.fail(s.wrapStorageErr(err))
	}
	if !found {
		return nil, scope.fail(errors.NotFound("revision %s of %q not found", revID, docID))
	}

	history = append(history, row.RevID)
	for row.Parent != nil {
		row, found, err = s.storage.RevisionBySequence(ctx, scope.tx(), *row.Parent)
		if err != nil {
			return nil, scope.fail(s.wrapStorageErr(err))
		}
		if !found {
			return nil, scope.fail(errors.Internal(fmt.Errorf("dangling parent sequence in revision history of %q", docID)))
		}
		history = append(history, row.RevID)
	}
	return history, nil
}

// AllDocumentsResult is the summarization endpoint's result (spec.md
// §4.5.4): the page of rows actually returned, plus the totals a
// replicator or UI needs to page through the rest.
type AllDocumentsResult struct {
	Rows []Revision
	// TotalRows is the count of current, non-deleted documents in the
	// store, unaffected by Skip/Limit.
	TotalRows int64
	// Offset is the number of matching rows skipped before Rows begins
	// (the Skip option's value).
	Offset int
	// UpdateSeq is a same-transaction snapshot of LastSequence, populated
	// only when UpdateSeq() was passed; nil otherwise.
	UpdateSeq *int64
}

// AllDocuments implements spec.md §4.5.4: every current, non-deleted
// document, ordered by docID. With IncludeDocs set, Properties is populated
// on each returned Revision. With UpdateSeq set, the result's UpdateSeq
// field carries a snapshot of LastSequence taken in the same transaction.
func (s *Store) AllDocuments(ctx context.Context, opts ...Option) (result AllDocumentsResult, err error) {
	o := newQueryOptions(opts...)

	scope, err := s.beginScope(ctx)
	if err != nil {
		return AllDocumentsResult{}, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	total, err := s.storage.DocumentCount(ctx, scope.tx())
	if err != nil {
		return AllDocumentsResult{}, scope.fail(s.wrapStorageErr(err))
	}

	rows, err := s.storage.AllCurrentNonDeleted(ctx, scope.tx(), driver.ListOptions{
		StartKey:   o.startKey,
		EndKey:     o.endKey,
		Skip:       o.skip,
		Limit:      o.limit,
		Descending: o.descending,
	})
	if err != nil {
		return AllDocumentsResult{}, scope.fail(s.wrapStorageErr(err))
	}

	revs := make([]Revision, 0, len(rows))
	for _, row := range rows {
		rev := revisionFromRow(row)
		if o.includeDocs {
			props, derr := decodeBody(s.codec, row.JSON)
			if derr != nil {
				return AllDocumentsResult{}, scope.fail(derr)
			}
			rev.Properties = props
		}
		revs = append(revs, rev)
	}

	result = AllDocumentsResult{
		Rows:      revs,
		TotalRows: total,
		Offset:    o.skip,
	}
	if o.updateSeq {
		seq, serr := s.storage.LastSequence(ctx, scope.tx())
		if serr != nil {
			return AllDocumentsResult{}, scope.fail(s.wrapStorageErr(serr))
		}
		result.UpdateSeq = &seq
	}
	return result, nil
}
