package revstore

import (
	"log"
	"time"
)

// Option configures a single call to ChangesSince or AllDocuments
// (spec.md §6, "Query options"). Options compose as functional options:
// each Option mutates a private struct built up at the call site.
type Option interface {
	apply(*queryOptions)
}

type optionFunc func(*queryOptions)

func (f optionFunc) apply(o *queryOptions) { f(o) }

// queryOptions mirrors spec.md §6's
// { startKey?, endKey?, skip=0, limit=INT_MAX, descending=false,
//   includeDocs=false, updateSeq=false }. A zero limit means unlimited.
type queryOptions struct {
	startKey    *string
	endKey      *string
	skip        int
	limit       int
	descending  bool
	includeDocs bool
	updateSeq   bool
}

func newQueryOptions(opts ...Option) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

// StartKey restricts results to docIDs >= key.
func StartKey(key string) Option {
	return optionFunc(func(o *queryOptions) { o.startKey = &key })
}

// EndKey restricts results to docIDs <= key.
func EndKey(key string) Option {
	return optionFunc(func(o *queryOptions) { o.endKey = &key })
}

// Skip discards the first n matching rows.
func Skip(n int) Option {
	return optionFunc(func(o *queryOptions) { o.skip = n })
}

// Limit caps the number of returned rows. A limit of 0 (the default) means
// unlimited.
func Limit(n int) Option {
	return optionFunc(func(o *queryOptions) { o.limit = n })
}

// Descending reverses the default ascending docID order.
func Descending() Option {
	return optionFunc(func(o *queryOptions) { o.descending = true })
}

// IncludeDocs populates Properties on each returned Revision.
func IncludeDocs() Option {
	return optionFunc(func(o *queryOptions) { o.includeDocs = true })
}

// UpdateSeq requests a same-transaction snapshot of LastSequence
// (spec.md §4.5.4).
func UpdateSeq() Option {
	return optionFunc(func(o *queryOptions) { o.updateSeq = true })
}

// StoreOption configures Open.
type StoreOption func(*storeConfig)

type storeConfig struct {
	busyTimeout time.Duration
	codec       Codec
	logger      *log.Logger
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		busyTimeout: 10 * time.Second, // spec.md §5 default
		codec:       jsonCodec{},
		logger:      log.Default(),
	}
}

// WithBusyTimeout overrides the SQL engine's busy-retry window
// (spec.md §5, default 10s).
func WithBusyTimeout(d time.Duration) StoreOption {
	return func(c *storeConfig) { c.busyTimeout = d }
}

// WithCodec overrides the body (de)serializer (spec.md §1, "delegated to
// an external codec"). Defaults to encoding/json.
func WithCodec(codec Codec) StoreOption {
	return func(c *storeConfig) { c.codec = codec }
}

// WithLogger overrides the Store's diagnostic logger. Defaults to
// log.Default(), matching x/sqlite/sqlite.go's client.logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(c *storeConfig) { c.logger = l }
}
