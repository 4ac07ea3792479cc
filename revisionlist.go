package revstore

// revKey identifies a Revision by its content-addressed key (spec.md I7).
type revKey struct {
	docID string
	revID string
}

// RevisionList is a collection of Revisions supporting lookup by
// (docID, revID) and the bulk set-difference operation replication relies
// on (spec.md §2, component 3).
type RevisionList struct {
	order []revKey
	byKey map[revKey]Revision
}

// NewRevisionList builds a RevisionList from the given revisions. Later
// entries with a duplicate (docID, revID) overwrite earlier ones.
func NewRevisionList(revs ...Revision) *RevisionList {
	l := &RevisionList{byKey: make(map[revKey]Revision, len(revs))}
	for _, r := range revs {
		l.Add(r)
	}
	return l
}

// Add inserts or replaces rev in the list.
func (l *RevisionList) Add(rev Revision) {
	k := revKey{rev.DocID, rev.RevID.String()}
	if _, exists := l.byKey[k]; !exists {
		l.order = append(l.order, k)
	}
	l.byKey[k] = rev
}

// Remove deletes the (docID, revID) entry, if present.
func (l *RevisionList) Remove(docID, revID string) {
	k := revKey{docID, revID}
	if _, ok := l.byKey[k]; !ok {
		return
	}
	delete(l.byKey, k)
	for i, o := range l.order {
		if o == k {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether (docID, revID) is present.
func (l *RevisionList) Contains(docID, revID string) bool {
	_, ok := l.byKey[revKey{docID, revID}]
	return ok
}

// Get returns the revision for (docID, revID), if present.
func (l *RevisionList) Get(docID, revID string) (Revision, bool) {
	rev, ok := l.byKey[revKey{docID, revID}]
	return rev, ok
}

// Len returns the number of entries.
func (l *RevisionList) Len() int { return len(l.order) }

// All returns the list's entries in insertion order.
func (l *RevisionList) All() []Revision {
	out := make([]Revision, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.byKey[k])
	}
	return out
}

// pairs returns the (docID, revID) pairs in the list, for a bulk existence
// query against Storage.
func (l *RevisionList) pairs() [][2]string {
	out := make([][2]string, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, [2]string{k.docID, k.revID})
	}
	return out
}
