package revstore

import (
	"context"
	"testing"
)

func TestNestedScopesShareOneTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outer, err := s.beginScope(ctx)
	if err != nil {
		t.Fatalf("beginScope: %s", err)
	}
	inner, err := s.beginScope(ctx)
	if err != nil {
		t.Fatalf("beginScope (nested): %s", err)
	}
	if outer.tx() != inner.tx() {
		t.Error("expected nested scopes to share the same underlying transaction")
	}
	if s.depth != 2 {
		t.Errorf("depth = %d, want 2", s.depth)
	}

	if err := inner.end(); err != nil {
		t.Fatalf("inner.end: %s", err)
	}
	if s.depth != 1 {
		t.Errorf("depth = %d, want 1 after ending the inner scope", s.depth)
	}
	if s.tx == nil {
		t.Error("expected the transaction to still be open at depth 1")
	}

	if err := outer.end(); err != nil {
		t.Fatalf("outer.end: %s", err)
	}
	if s.depth != 0 {
		t.Errorf("depth = %d, want 0", s.depth)
	}
}

func TestFailPropagatesToOutermostScope(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outer, err := s.beginScope(ctx)
	if err != nil {
		t.Fatalf("beginScope: %s", err)
	}
	if _, err := s.Put(ctx, Revision{DocID: "doc1", Properties: map[string]interface{}{}}, ""); err != nil {
		t.Fatalf("Put: %s", err)
	}
	inner, err := s.beginScope(ctx)
	if err != nil {
		t.Fatalf("beginScope (nested): %s", err)
	}
	_ = inner.fail(errInjectedForTest)
	if err := inner.end(); err != nil {
		t.Fatalf("inner.end: %s", err)
	}
	if !outer.failed() {
		t.Error("expected the fail-flag set by the inner scope to be visible to the outer scope")
	}
	if err := outer.end(); err != nil {
		t.Fatalf("outer.end: %s", err)
	}

	if _, err := s.Get(ctx, "doc1", ""); err == nil {
		t.Error("expected the rolled-back Put to be invisible")
	}
}

func TestScopeEndIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	scope, err := s.beginScope(context.Background())
	if err != nil {
		t.Fatalf("beginScope: %s", err)
	}
	if err := scope.end(); err != nil {
		t.Fatalf("end: %s", err)
	}
	if err := scope.end(); err != nil {
		t.Fatalf("second end should be a no-op, got: %s", err)
	}
}

var errInjectedForTest = &testError{"injected"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
