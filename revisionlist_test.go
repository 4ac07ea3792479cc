package revstore

import "testing"

func rev(docID, revIDStr string) Revision {
	id, _ := ParseRevID(revIDStr)
	return Revision{DocID: docID, RevID: id}
}

func TestRevisionListAddAndGet(t *testing.T) {
	l := NewRevisionList(rev("doc1", "1-abc"), rev("doc2", "1-def"))
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if !l.Contains("doc1", "1-abc") {
		t.Error("expected doc1/1-abc to be present")
	}
	if _, ok := l.Get("doc3", "1-xyz"); ok {
		t.Error("did not expect doc3/1-xyz to be present")
	}
}

func TestRevisionListAddOverwrites(t *testing.T) {
	l := NewRevisionList()
	l.Add(Revision{DocID: "doc1", RevID: RevID{Generation: 1, Digest: "a"}, Deleted: false})
	l.Add(Revision{DocID: "doc1", RevID: RevID{Generation: 1, Digest: "a"}, Deleted: true})
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	got, _ := l.Get("doc1", "1-a")
	if !got.Deleted {
		t.Error("expected the later Add to win")
	}
}

func TestRevisionListRemove(t *testing.T) {
	l := NewRevisionList(rev("doc1", "1-abc"), rev("doc2", "1-def"))
	l.Remove("doc1", "1-abc")
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if l.Contains("doc1", "1-abc") {
		t.Error("expected doc1/1-abc to be removed")
	}
	// Removing an absent key is a no-op.
	l.Remove("doc3", "1-xyz")
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after no-op remove", l.Len())
	}
}

func TestRevisionListAllPreservesOrder(t *testing.T) {
	l := NewRevisionList(rev("doc1", "1-abc"), rev("doc2", "1-def"), rev("doc3", "1-ghi"))
	all := l.All()
	want := []string{"doc1", "doc2", "doc3"}
	for i, r := range all {
		if r.DocID != want[i] {
			t.Errorf("All()[%d].DocID = %q, want %q", i, r.DocID, want[i])
		}
	}
}

func TestRevisionListPairs(t *testing.T) {
	l := NewRevisionList(rev("doc1", "1-abc"))
	pairs := l.pairs()
	if len(pairs) != 1 || pairs[0] != [2]string{"doc1", "1-abc"} {
		t.Errorf("pairs() = %v, want [[doc1 1-abc]]", pairs)
	}
}
