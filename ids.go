package revstore

import "github.com/google/uuid"

// newDocID generates a docID for an insert that didn't supply one
// (spec.md §4.3.3 step 2, "If docID absent -> generate one").
func newDocID() string {
	return uuid.NewString()
}
