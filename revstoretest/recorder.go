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

// Package revstoretest provides test doubles for revstore.Observer, in the
// Expect/WillReturn recorder style this corpus's mockdb package uses for
// asserting on asynchronous call sequences.
package revstoretest

import (
	"sync"

	"github.com/flimzy/revstore"
)

// Recorder is an revstore.Observer that records every ChangeEvent it
// receives, in delivery order, for later assertion.
type Recorder struct {
	mu     sync.Mutex
	events []revstore.ChangeEvent
}

// NewRecorder returns a Recorder ready to Subscribe to a Store.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnChange implements revstore.Observer.
func (r *Recorder) OnChange(evt revstore.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of the events recorded so far, in delivery order.
func (r *Recorder) Events() []revstore.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]revstore.ChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Len reports how many events have been recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// ExpectSequences asserts that the recorded events' Seq fields, in order,
// equal want. Intended for table-driven tests that drive a Store through a
// sequence of mutations and then check delivery order.
func (r *Recorder) ExpectSequences(want []int64) (ok bool, got []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	got = make([]int64, len(r.events))
	for i, evt := range r.events {
		got[i] = evt.Seq
	}
	if len(got) != len(want) {
		return false, got
	}
	for i := range want {
		if got[i] != want[i] {
			return false, got
		}
	}
	return true, got
}
