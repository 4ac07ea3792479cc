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

// schema is the single `docs` table spec.md §6 specifies, in place of this
// package's former three-table (revs/docs/attachments) layout: revstore has
// no attachment store and no separate revision-tree table, so every row
// carries its own place in the DAG via parent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS docs (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		docid    TEXT NOT NULL,
		revid    TEXT NOT NULL,
		parent   INTEGER REFERENCES docs (sequence) ON DELETE SET NULL,
		current  BOOLEAN NOT NULL DEFAULT 0,
		deleted  BOOLEAN NOT NULL DEFAULT 0,
		json     BLOB,
		UNIQUE (docid, revid)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_docs_docid ON docs (docid)`,
	`CREATE INDEX IF NOT EXISTS idx_docs_current ON docs (docid, current)`,
	`CREATE INDEX IF NOT EXISTS idx_docs_parent ON docs (parent)`,
}
