// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package sqlite is the revstore/driver.Storage implementation backed by
// modernc.org/sqlite, an embedded, pure-Go, cgo-free SQLite engine
// (spec.md §1, "single-process, embedded"). It owns exactly one
// database/sql connection pool, capped at one open connection
// (spec.md §5, "single-writer" model), and speaks nothing but
// driver.Row/driver.Tx to the rest of revstore.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/flimzy/revstore/driver"
)

// Config controls how Open establishes the connection.
type Config struct {
	// BusyTimeout bounds how long a writer waits for SQLITE_BUSY to clear
	// before giving up (spec.md §5, default 10s; see revstore.WithBusyTimeout).
	BusyTimeout time.Duration
}

// storage is the concrete driver.Storage backed by a single SQLite
// connection.
type storage struct {
	db *sql.DB
}

var _ driver.Storage = (*storage)(nil)

// Open opens (creating if necessary) the SQLite file at dsn and ensures the
// docs table and its indexes exist.
func Open(ctx context.Context, dsn string, cfg Config) (driver.Storage, error) {
	busyMS := int64(cfg.BusyTimeout / time.Millisecond)
	if busyMS <= 0 {
		busyMS = 10000
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", dsn, busyMS))
	if err != nil {
		return nil, err
	}
	// Exactly one connection: revstore.txScope serializes all access anyway
	// (spec.md §5), and a single connection makes SQLite's own locking the
	// sole arbiter of writer exclusivity.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &storage{db: db}, nil
}

func (s *storage) Close() error {
	return s.db.Close()
}

// BeginTx starts a transaction. *sql.Tx already satisfies driver.Tx's
// Commit/Rollback signature, so no adapter type is needed.
func (s *storage) BeginTx(ctx context.Context) (driver.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// sqlTx recovers the concrete *sql.Tx from the driver.Tx interface value
// every Storage method receives. Storage is the only package that ever
// downcasts; the rest of revstore sees only driver.Tx.
func sqlTx(tx driver.Tx) *sql.Tx {
	return tx.(*sql.Tx)
}

// IsBusy reports whether err is SQLITE_BUSY, i.e. the busy_timeout pragma's
// retry window was exhausted without acquiring the write lock
// (spec.md §5). revstore.Store maps this to errors.Busy instead of
// errors.Internal.
func IsBusy(err error) bool {
	var sqliteErr *sqlite.Error
	return stderrors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_BUSY
}
