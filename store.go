package revstore

import (
	"context"
	"log"

	"github.com/flimzy/revstore/driver"
	"github.com/flimzy/revstore/errors"
	"github.com/flimzy/revstore/sqlite"
)

// Store is the central component (spec.md §2, "DocumentStore"). It owns a
// Storage, exposes read/write operations, enforces revision-tree
// invariants, assigns sequences, and generates revision identifiers.
type Store struct {
	storage driver.Storage
	codec   Codec
	logger  *log.Logger

	// Transaction-scope bookkeeping (spec.md §4.2); see txscope.go.
	depth   int
	tx      driver.Tx
	failed  bool
	pending []ChangeEvent

	observers []Observer
}

// Open opens (creating if necessary) a single-file SQLite-backed store at
// dsn, per spec.md §6's persistent schema.
func Open(ctx context.Context, dsn string, opts ...StoreOption) (*Store, error) {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	storage, err := sqlite.Open(ctx, dsn, sqlite.Config{BusyTimeout: cfg.busyTimeout})
	if err != nil {
		return nil, errors.Internal(err)
	}

	return newStore(storage, cfg), nil
}

// newStore wires an already-open Storage into a Store. Exposed at package
// level (not exported) so tests can inject an in-memory Storage without
// going through Open.
func newStore(storage driver.Storage, cfg storeConfig) *Store {
	return &Store{
		storage: storage,
		codec:   cfg.codec,
		logger:  cfg.logger,
	}
}

// Close releases the underlying storage connection.
func (s *Store) Close() error {
	return s.storage.Close()
}

// wrapStorageErr classifies an error returned from driver.Storage: a
// SQLITE_BUSY (busy_timeout exhausted, spec.md §5) becomes errors.Busy,
// everything else becomes errors.Internal.
func (s *Store) wrapStorageErr(err error) error {
	if sqlite.IsBusy(err) {
		s.logger.Printf("revstore: busy-retry window exhausted: %s", err)
		return errors.Busy("storage busy: %s", err)
	}
	return errors.Internal(err)
}

// revisionFromRow converts a driver.Row into a Revision value. It does not
// decode the body; callers that need Properties decode row.JSON themselves
// or leave it to LoadBody.
func revisionFromRow(row driver.Row) Revision {
	rev, _ := ParseRevID(row.RevID)
	return Revision{
		DocID:          row.DocID,
		RevID:          rev,
		Deleted:        row.Deleted,
		Sequence:       row.Sequence,
		parentSequence: row.Parent,
		current:        row.Current,
	}
}

// Get implements spec.md §4.3.1. If revID is empty, the current
// non-deleted revision with the lexicographically greatest revID is
// returned (spec.md §9); otherwise the single matching revision is
// returned. Body is populated when the stored JSON is non-null.
func (s *Store) Get(ctx context.Context, docID, revID string) (rev Revision, err error) {
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
		row   driver.Row
		found bool
	)
	if revID != "" {
		row, found, err = s.storage.RevisionByID(ctx, scope.tx(), docID, revID)
	} else {
		row, found, err = s.currentNonDeleted(ctx, scope.tx(), docID)
	}
	if err != nil {
		return Revision{}, scope.fail(s.wrapStorageErr(err))
	}
	if !found {
		return Revision{}, scope.fail(errors.NotFound("document %q not found", docID))
	}

	rev = revisionFromRow(row)
	rev.Properties, err = decodeBody(s.codec, row.JSON)
	if err != nil {
		return Revision{}, scope.fail(err)
	}
	return rev, nil
}

// currentNonDeleted returns the current leaf with the lexicographically
// greatest revID among non-deleted leaves, per spec.md §4.3.1/§9.
func (s *Store) currentNonDeleted(ctx context.Context, tx driver.Tx, docID string) (driver.Row, bool, error) {
	leaves, err := s.storage.CurrentRevisions(ctx, tx, docID)
	if err != nil {
		return driver.Row{}, false, err
	}
	var (
		best  driver.Row
		found bool
	)
	for _, row := range leaves {
		if row.Deleted {
			continue
		}
		if !found || best.RevID < row.RevID {
			best, found = row, true
		}
	}
	return best, found, nil
}

// LoadBody implements spec.md §4.3.2: populates rev.Properties. Returns
// NotFound if the row no longer exists; if the body was compacted away,
// Properties ends up nil with no error.
func (s *Store) LoadBody(ctx context.Context, rev *Revision) (err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	row, found, err := s.storage.RevisionByID(ctx, scope.tx(), rev.DocID, rev.RevID.String())
	if err != nil {
		return scope.fail(s.wrapStorageErr(err))
	}
	if !found {
		return scope.fail(errors.NotFound("revision %s of %q not found", rev.RevID, rev.DocID))
	}
	props, err := decodeBody(s.codec, row.JSON)
	if err != nil {
		return scope.fail(err)
	}
	rev.Properties = props
	return nil
}

// Put implements spec.md §4.3.3.
func (s *Store) Put(ctx context.Context, rev Revision, prevRevID string) (result Revision, err error) {
	if !rev.RevID.IsZero() {
		return Revision{}, errors.BadRequest("rev.RevID must be unset; the store assigns it")
	}
	if rev.DocID == "" && prevRevID != "" {
		return Revision{}, errors.BadRequest("prevRevID given without docID")
	}
	if rev.Deleted && prevRevID == "" {
		return Revision{}, errors.BadRequest("deletion requires prevRevID")
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

	docID := rev.DocID
	if docID == "" {
		docID = newDocID()
	}

	var parent *int64
	var prevGen int
	switch {
	case prevRevID != "":
		parsedPrev, perr := ParseRevID(prevRevID)
		if perr != nil {
			return Revision{}, scope.fail(perr)
		}
		row, found, qerr := s.storage.RevisionByID(ctx, scope.tx(), docID, prevRevID)
		if qerr != nil {
			return Revision{}, scope.fail(s.wrapStorageErr(qerr))
		}
		if !found || !row.Current {
			_, hasCurrent, cerr := s.storage.CurrentRevision(ctx, scope.tx(), docID)
			if cerr != nil {
				return Revision{}, scope.fail(s.wrapStorageErr(cerr))
			}
			if hasCurrent {
				return Revision{}, scope.fail(errors.Conflict("document update conflict"))
			}
			return Revision{}, scope.fail(errors.NotFound("document %q not found", docID))
		}
		seq := row.Sequence
		parent = &seq
		prevGen = parsedPrev.Generation
		if err := s.storage.SetCurrent(ctx, scope.tx(), row.Sequence, false); err != nil {
			return Revision{}, scope.fail(s.wrapStorageErr(err))
		}

	default:
		cur, hasCurrent, cerr := s.storage.CurrentRevision(ctx, scope.tx(), docID)
		if cerr != nil {
			return Revision{}, scope.fail(s.wrapStorageErr(cerr))
		}
		if hasCurrent {
			if !cur.Deleted {
				return Revision{}, scope.fail(errors.Conflict("document update conflict"))
			}
			seq := cur.Sequence
			parent = &seq
			parsedCur, _ := ParseRevID(cur.RevID)
			prevGen = parsedCur.Generation
			if err := s.storage.SetCurrent(ctx, scope.tx(), cur.Sequence, false); err != nil {
				return Revision{}, scope.fail(s.wrapStorageErr(err))
			}
		}
	}

	var prevRev *RevID
	if parent != nil {
		prevRev = &RevID{Generation: prevGen}
	}
	newRevID := nextRevID(prevRev)

	result = rev
	result.DocID = docID
	result.RevID = newRevID

	body, err := bodyJSON(s.codec, result)
	if err != nil {
		return Revision{}, scope.fail(err)
	}

	seq, err := s.storage.InsertRevision(ctx, scope.tx(), docID, newRevID.String(), parent, true, rev.Deleted, body)
	if err != nil {
		return Revision{}, scope.fail(s.wrapStorageErr(err))
	}

	result.Sequence = seq
	result.parentSequence = parent
	result.current = true

	s.queueChange(result)
	return result, nil
}

// Compact implements spec.md §4.3.5: discards the bodies of every
// non-current revision. History structure (the parent chain) is
// untouched. Not reversible.
func (s *Store) Compact(ctx context.Context) (err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	if err := s.storage.CompactBodies(ctx, scope.tx()); err != nil {
		return scope.fail(s.wrapStorageErr(err))
	}
	return nil
}

// DocumentCount implements spec.md §4.3.6.
func (s *Store) DocumentCount(ctx context.Context) (count int64, err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	count, err = s.storage.DocumentCount(ctx, scope.tx())
	if err != nil {
		return 0, scope.fail(s.wrapStorageErr(err))
	}
	return count, nil
}

// LastSequence implements spec.md §4.3.7.
func (s *Store) LastSequence(ctx context.Context) (seq int64, err error) {
	scope, err := s.beginScope(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if endErr := scope.end(); endErr != nil && err == nil {
			err = endErr
		}
	}()

	seq, err = s.storage.LastSequence(ctx, scope.tx())
	if err != nil {
		return 0, scope.fail(s.wrapStorageErr(err))
	}
	return seq, nil
}
