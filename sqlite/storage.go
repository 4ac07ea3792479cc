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

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flimzy/revstore/driver"
)

const rowColumns = `sequence, docid, revid, parent, current, deleted, json`

// scanRow scans a single docs row from a *sql.Row or *sql.Rows positioned
// at rowColumns, in that order.
func scanRow(scan func(...interface{}) error) (driver.Row, error) {
	var (
		row    driver.Row
		parent sql.NullInt64
	)
	if err := scan(&row.Sequence, &row.DocID, &row.RevID, &parent, &row.Current, &row.Deleted, &row.JSON); err != nil {
		return driver.Row{}, err
	}
	if parent.Valid {
		v := parent.Int64
		row.Parent = &v
	}
	return row, nil
}

func (s *storage) InsertRevision(ctx context.Context, tx driver.Tx, docID, revID string, parent *int64, current, deleted bool, body []byte) (int64, error) {
	var seq int64
	err := sqlTx(tx).QueryRowContext(ctx, `
		INSERT INTO docs (docid, revid, parent, current, deleted, json)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING sequence
	`, docID, revID, nullableInt64(parent), current, deleted, body).Scan(&seq)
	return seq, err
}

func (s *storage) SetCurrent(ctx context.Context, tx driver.Tx, seq int64, current bool) error {
	_, err := sqlTx(tx).ExecContext(ctx, `UPDATE docs SET current = ? WHERE sequence = ?`, current, seq)
	return err
}

func (s *storage) CurrentRevision(ctx context.Context, tx driver.Tx, docID string) (driver.Row, bool, error) {
	row, err := scanRow(sqlTx(tx).QueryRowContext(ctx, `
		SELECT `+rowColumns+`
		FROM docs
		WHERE docid = ? AND current = 1
		ORDER BY revid DESC
		LIMIT 1
	`, docID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return driver.Row{}, false, nil
	}
	if err != nil {
		return driver.Row{}, false, err
	}
	return row, true, nil
}

func (s *storage) CurrentRevisions(ctx context.Context, tx driver.Tx, docID string) ([]driver.Row, error) {
	rows, err := sqlTx(tx).QueryContext(ctx, `
		SELECT `+rowColumns+`
		FROM docs
		WHERE docid = ? AND current = 1
		ORDER BY revid DESC
	`, docID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (s *storage) RevisionByID(ctx context.Context, tx driver.Tx, docID, revID string) (driver.Row, bool, error) {
	row, err := scanRow(sqlTx(tx).QueryRowContext(ctx, `
		SELECT `+rowColumns+`
		FROM docs
		WHERE docid = ? AND revid = ?
	`, docID, revID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return driver.Row{}, false, nil
	}
	if err != nil {
		return driver.Row{}, false, err
	}
	return row, true, nil
}

func (s *storage) RevisionBySequence(ctx context.Context, tx driver.Tx, seq int64) (driver.Row, bool, error) {
	row, err := scanRow(sqlTx(tx).QueryRowContext(ctx, `
		SELECT `+rowColumns+`
		FROM docs
		WHERE sequence = ?
	`, seq).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return driver.Row{}, false, nil
	}
	if err != nil {
		return driver.Row{}, false, err
	}
	return row, true, nil
}

func (s *storage) AllRevisions(ctx context.Context, tx driver.Tx, docID string) ([]driver.Row, error) {
	rows, err := sqlTx(tx).QueryContext(ctx, `
		SELECT `+rowColumns+`
		FROM docs
		WHERE docid = ?
		ORDER BY sequence DESC
	`, docID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (s *storage) ChangesSince(ctx context.Context, tx driver.Tx, since int64, limit int) ([]driver.Row, error) {
	query := `
		SELECT ` + rowColumns + `
		FROM docs
		WHERE sequence > ? AND current = 1
		ORDER BY sequence ASC`
	args := []interface{}{since}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := sqlTx(tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (s *storage) FindExisting(ctx context.Context, tx driver.Tx, pairs [][2]string) (map[[2]string]bool, error) {
	existing := make(map[[2]string]bool, len(pairs))
	stmt, err := sqlTx(tx).PrepareContext(ctx, `SELECT 1 FROM docs WHERE docid = ? AND revid = ?`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, pair := range pairs {
		var found int
		err := stmt.QueryRowContext(ctx, pair[0], pair[1]).Scan(&found)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			continue
		case err != nil:
			return nil, err
		default:
			existing[pair] = true
		}
	}
	return existing, nil
}

func (s *storage) CompactBodies(ctx context.Context, tx driver.Tx) error {
	_, err := sqlTx(tx).ExecContext(ctx, `UPDATE docs SET json = NULL WHERE current = 0`)
	return err
}

func (s *storage) DocumentCount(ctx context.Context, tx driver.Tx) (int64, error) {
	var count int64
	err := sqlTx(tx).QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT docid)
		FROM docs
		WHERE current = 1 AND deleted = 0
	`).Scan(&count)
	return count, err
}

func (s *storage) LastSequence(ctx context.Context, tx driver.Tx) (int64, error) {
	var seq sql.NullInt64
	err := sqlTx(tx).QueryRowContext(ctx, `SELECT MAX(sequence) FROM docs`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq.Int64, nil
}

func collectRows(rows *sql.Rows) ([]driver.Row, error) {
	defer rows.Close()
	var out []driver.Row
	for rows.Next() {
		row, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
