package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "sub", "data.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func TestInsertAndLookup(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	n, err := st.InsertTexts(ctx, []string{"the quick brown fox", "  ", "jumps over\tthe lazy dog "})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}
	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	txt, err := st.TextByID(ctx, 2)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if txt != "jumps over\tthe lazy dog" {
		t.Fatalf("unexpected text %q", txt)
	}
}

func TestTextByIDMissing(t *testing.T) {
	st := openTestStore(t)
	_, err := st.TextByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := st.InsertTexts(context.Background(), []string{"one", "two", "three"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()
	txt, err := st.TextByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if txt != "three" {
		t.Fatalf("unexpected text %q", txt)
	}
}
