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
	"testing"

	"github.com/flimzy/revstore/driver"
)

func seedDocs(t *testing.T, st *storage, docIDs ...string) {
	t.Helper()
	withTx(t, st, func(tx driver.Tx) {
		for _, id := range docIDs {
			if _, err := st.InsertRevision(context.Background(), tx, id, "1-abc", nil, true, false, []byte(`{}`)); err != nil {
				t.Fatalf("InsertRevision(%q): %s", id, err)
			}
		}
	})
}

func docIDsOf(rows []driver.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.DocID
	}
	return out
}

func TestAllCurrentNonDeleted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		docs []string
		opts driver.ListOptions
		want []string
	}{
		{
			name: "all, ascending",
			docs: []string{"c", "a", "b"},
			want: []string{"a", "b", "c"},
		},
		{
			name: "descending",
			docs: []string{"a", "b", "c"},
			opts: driver.ListOptions{Descending: true},
			want: []string{"c", "b", "a"},
		},
		{
			name: "start and end key",
			docs: []string{"a", "b", "c", "d"},
			opts: driver.ListOptions{StartKey: strPtr("b"), EndKey: strPtr("c")},
			want: []string{"b", "c"},
		},
		{
			name: "limit",
			docs: []string{"a", "b", "c"},
			opts: driver.ListOptions{Limit: 2},
			want: []string{"a", "b"},
		},
		{
			name: "skip",
			docs: []string{"a", "b", "c"},
			opts: driver.ListOptions{Skip: 1},
			want: []string{"b", "c"},
		},
		{
			name: "limit and skip",
			docs: []string{"a", "b", "c", "d"},
			opts: driver.ListOptions{Skip: 1, Limit: 2},
			want: []string{"b", "c"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st := openTestStorage(t)
			seedDocs(t, st, tt.docs...)

			var got []driver.Row
			withTx(t, st, func(tx driver.Tx) {
				var err error
				got, err = st.AllCurrentNonDeleted(context.Background(), tx, tt.opts)
				if err != nil {
					t.Fatalf("AllCurrentNonDeleted: %s", err)
				}
			})

			gotIDs := docIDsOf(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("got %v, want %v", gotIDs, tt.want)
			}
			for i := range tt.want {
				if gotIDs[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", gotIDs, tt.want)
				}
			}
		})
	}
}

func TestAllCurrentNonDeletedExcludesDeleted(t *testing.T) {
	st := openTestStorage(t)
	withTx(t, st, func(tx driver.Tx) {
		if _, err := st.InsertRevision(context.Background(), tx, "a", "1-abc", nil, true, false, []byte(`{}`)); err != nil {
			t.Fatalf("InsertRevision: %s", err)
		}
		if _, err := st.InsertRevision(context.Background(), tx, "b", "1-def", nil, true, true, nil); err != nil {
			t.Fatalf("InsertRevision: %s", err)
		}
	})

	var got []driver.Row
	withTx(t, st, func(tx driver.Tx) {
		var err error
		got, err = st.AllCurrentNonDeleted(context.Background(), tx, driver.ListOptions{})
		if err != nil {
			t.Fatalf("AllCurrentNonDeleted: %s", err)
		}
	})
	if len(got) != 1 || got[0].DocID != "a" {
		t.Fatalf("got %v, want only doc \"a\"", docIDsOf(got))
	}
}

func strPtr(s string) *string { return &s }
