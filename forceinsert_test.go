package revstore

import (
	"context"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestForceInsertNewLeaf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	leaf := Revision{
		DocID:      "doc1",
		RevID:      RevID{Generation: 3, Digest: "leaf"},
		Properties: map[string]interface{}{"v": 3},
	}
	history := []string{"3-leaf", "2-middle", "1-root"}

	result, err := s.ForceInsert(ctx, leaf, history)
	if err != nil {
		t.Fatalf("ForceInsert: %s", err)
	}
	if result.Sequence == 0 {
		t.Error("expected a non-zero sequence to be assigned")
	}

	all, err := s.GetAllRevisions(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetAllRevisions: %s", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	got, err := s.Get(ctx, "doc1", "")
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	if got.RevID.String() != "3-leaf" {
		t.Errorf("current revID = %s, want 3-leaf", got.RevID)
	}
}

func TestForceInsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	leaf := Revision{DocID: "doc1", RevID: RevID{Generation: 2, Digest: "leaf"}, Properties: map[string]interface{}{}}
	history := []string{"2-leaf", "1-root"}

	first, err := s.ForceInsert(ctx, leaf, history)
	if err != nil {
		t.Fatalf("ForceInsert: %s", err)
	}
	second, err := s.ForceInsert(ctx, leaf, history)
	if err != nil {
		t.Fatalf("ForceInsert (replay): %s", err)
	}
	if first.Sequence != second.Sequence {
		t.Errorf("replay assigned a new sequence: %d != %d", first.Sequence, second.Sequence)
	}

	all, err := s.GetAllRevisions(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetAllRevisions: %s", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2 (no duplicate rows from replay)", len(all))
	}
}

func TestForceInsertHistoryMismatch(t *testing.T) {
	s := newTestStore(t)
	leaf := Revision{DocID: "doc1", RevID: RevID{Generation: 2, Digest: "leaf"}}
	_, err := s.ForceInsert(context.Background(), leaf, []string{"1-other"})
	if !testy.ErrorMatches("history must begin with the leaf's revID", err) {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestForceInsertRequiresBodyForNonDeletedLeaf(t *testing.T) {
	s := newTestStore(t)
	leaf := Revision{DocID: "doc1", RevID: RevID{Generation: 1, Digest: "leaf"}}
	_, err := s.ForceInsert(context.Background(), leaf, []string{"1-leaf"})
	if !testy.ErrorMatches("leaf revision body is required for a non-deleted forceInsert", err) {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestForceInsertDeletedLeafNeedsNoBody(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	leaf := Revision{DocID: "doc1", RevID: RevID{Generation: 1, Digest: "leaf"}, Deleted: true}
	result, err := s.ForceInsert(ctx, leaf, []string{"1-leaf"})
	if err != nil {
		t.Fatalf("ForceInsert: %s", err)
	}
	if !result.Deleted {
		t.Error("expected the inserted leaf to be marked deleted")
	}
}
