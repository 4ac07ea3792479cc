// Package driver defines the typed substrate the root revstore package is
// built on. A concrete implementation (revstore/sqlite) owns exactly one
// underlying database connection and never leaks SQL outside this
// interface boundary, mirroring how github.com/go-kivik/kivik/v4/driver
// decouples the kivik client from its backends.
package driver

import "context"

// Tx is a running transaction against the storage engine. The root package
// owns the nesting/fail-flag bookkeeping (see revstore.txScope); Tx is
// just the raw commit/rollback primitive.
type Tx interface {
	Commit() error
	Rollback() error
}

// Row mirrors one row of the docs table (spec.md §6).
type Row struct {
	Sequence int64
	DocID    string
	RevID    string
	Parent   *int64
	Current  bool
	Deleted  bool
	JSON     []byte // nil if compacted away or never set (deletions)
}

// ListOptions controls AllCurrentNonDeleted pagination and ordering.
type ListOptions struct {
	StartKey   *string
	EndKey     *string
	Skip       int
	Limit      int // 0 means unlimited
	Descending bool
}

// Storage is the typed key-value substrate DocumentStore is built on. It
// exposes exactly the statements the core needs against the `docs` table;
// everything else (query planning, indexing, BLOB storage) belongs to the
// embedded relational engine, which Storage treats as an opaque
// implementation detail.
type Storage interface {
	// BeginTx starts a new transaction. Nesting is the caller's
	// responsibility (see revstore.txScope); Storage itself is not
	// reentrant within a single Tx.
	BeginTx(ctx context.Context) (Tx, error)

	// InsertRevision inserts a new row and returns its assigned sequence.
	// parent may be nil for a root revision.
	InsertRevision(ctx context.Context, tx Tx, docID, revID string, parent *int64, current, deleted bool, body []byte) (int64, error)

	// SetCurrent flips the `current` flag for the row at seq.
	SetCurrent(ctx context.Context, tx Tx, seq int64, current bool) error

	// CurrentRevision returns a current (leaf) row for docID, preferring
	// the lexicographically greatest revid when more than one current row
	// exists (spec.md §9). Unlike CurrentRevisions, this does not filter
	// out deleted leaves: callers deciding whether a document exists at
	// all, or whether its sole leaf is a tombstone, need the deleted leaf
	// too. found is false only if docID has no current row whatsoever.
	CurrentRevision(ctx context.Context, tx Tx, docID string) (row Row, found bool, err error)

	// CurrentRevisions returns every current row for docID (the full leaf
	// set, including conflict branches and deleted leaves).
	CurrentRevisions(ctx context.Context, tx Tx, docID string) ([]Row, error)

	// RevisionByID returns the row for (docID, revID).
	RevisionByID(ctx context.Context, tx Tx, docID, revID string) (row Row, found bool, err error)

	// RevisionBySequence returns the row at the given sequence.
	RevisionBySequence(ctx context.Context, tx Tx, seq int64) (row Row, found bool, err error)

	// AllRevisions returns every row for docID, ordered by descending
	// sequence.
	AllRevisions(ctx context.Context, tx Tx, docID string) ([]Row, error)

	// ChangesSince returns rows with sequence > since and current = true,
	// ascending by sequence, capped at limit (0 = unlimited).
	ChangesSince(ctx context.Context, tx Tx, since int64, limit int) ([]Row, error)

	// FindExisting returns the subset of the given (docID, revID) pairs
	// that already exist locally.
	FindExisting(ctx context.Context, tx Tx, pairs [][2]string) (map[[2]string]bool, error)

	// CompactBodies sets body to NULL for every row with current = false.
	CompactBodies(ctx context.Context, tx Tx) error

	// DocumentCount returns the count of distinct docIDs having at least
	// one current, non-deleted row.
	DocumentCount(ctx context.Context, tx Tx) (int64, error)

	// LastSequence returns the maximum sequence value, 0 if empty.
	LastSequence(ctx context.Context, tx Tx) (int64, error)

	// AllCurrentNonDeleted returns current, non-deleted rows ordered by
	// docID (ascending or descending per opts), for allDocuments.
	AllCurrentNonDeleted(ctx context.Context, tx Tx, opts ListOptions) ([]Row, error)

	// Close releases the underlying connection.
	Close() error
}
