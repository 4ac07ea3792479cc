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
	"strings"

	"github.com/flimzy/revstore/driver"
)

// AllCurrentNonDeleted backs revstore.AllDocuments (spec.md §4.5.4): every
// current, non-deleted row, paginated and ordered by docid.
func (s *storage) AllCurrentNonDeleted(ctx context.Context, tx driver.Tx, opts driver.ListOptions) ([]driver.Row, error) {
	var b strings.Builder
	args := make([]interface{}, 0, 6)

	b.WriteString(`SELECT ` + rowColumns + ` FROM docs WHERE current = 1 AND deleted = 0`)
	if opts.StartKey != nil {
		b.WriteString(` AND docid >= ?`)
		args = append(args, *opts.StartKey)
	}
	if opts.EndKey != nil {
		b.WriteString(` AND docid <= ?`)
		args = append(args, *opts.EndKey)
	}
	b.WriteString(` ORDER BY docid`)
	if opts.Descending {
		b.WriteString(` DESC`)
	}
	if opts.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
		if opts.Skip > 0 {
			b.WriteString(` OFFSET ?`)
			args = append(args, opts.Skip)
		}
	} else if opts.Skip > 0 {
		// SQLite requires a LIMIT clause for OFFSET to take effect; -1 means
		// unlimited.
		b.WriteString(` LIMIT -1 OFFSET ?`)
		args = append(args, opts.Skip)
	}

	rows, err := sqlTx(tx).QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}
