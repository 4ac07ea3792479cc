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

package revstoretest_test

import (
	"testing"

	"github.com/flimzy/revstore"
	"github.com/flimzy/revstore/revstoretest"
)

func TestRecorder(t *testing.T) {
	r := revstoretest.NewRecorder()

	r.OnChange(revstore.ChangeEvent{Seq: 1})
	r.OnChange(revstore.ChangeEvent{Seq: 2})
	r.OnChange(revstore.ChangeEvent{Seq: 3})

	if got := r.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	ok, got := r.ExpectSequences([]int64{1, 2, 3})
	if !ok {
		t.Fatalf("ExpectSequences: got %v", got)
	}

	r.Reset()
	if got := r.Len(); got != 0 {
		t.Fatalf("after Reset, Len() = %d, want 0", got)
	}
}
