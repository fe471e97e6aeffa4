package textsrc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/retype/internal/model"
)

type fakeDB struct {
	calls []int
}

func (f *fakeDB) TextByID(_ context.Context, id int) (string, error) {
	f.calls = append(f.calls, id)
	return fmt.Sprintf("text %d", id), nil
}

func newTestSource(db Lookup) *Source {
	return NewWithRand(db, rand.New(rand.NewSource(1)))
}

func TestBandRange(t *testing.T) {
	cases := []struct {
		k      int
		lo, hi int
	}{
		{1, 1, 1200},
		{2, 1201, 2400},
		{5, 4801, 6000},
	}
	for _, tc := range cases {
		lo, hi, err := BandRange(tc.k)
		if err != nil {
			t.Fatalf("band %d: %v", tc.k, err)
		}
		if lo != tc.lo || hi != tc.hi {
			t.Fatalf("band %d: got [%d,%d], want [%d,%d]", tc.k, lo, hi, tc.lo, tc.hi)
		}
	}
	for _, k := range []int{-1, 6, 9} {
		if _, _, err := BandRange(k); !errors.Is(err, ErrInvalidSelector) {
			t.Fatalf("band %d: expected ErrInvalidSelector, got %v", k, err)
		}
	}
}

func TestLoadByID(t *testing.T) {
	db := &fakeDB{}
	src := newTestSource(db)
	text, ref, err := src.Load(context.Background(), Selector{ID: 42, Difficulty: 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if text != "text 42" || ref != (model.TextRef{ID: 42}) {
		t.Fatalf("unexpected load result %q %+v", text, ref)
	}
}

func TestLoadByIDOutOfRange(t *testing.T) {
	db := &fakeDB{}
	src := newTestSource(db)
	for _, id := range []int{-3, 6001} {
		if _, _, err := src.Load(context.Background(), Selector{ID: id}); !errors.Is(err, ErrInvalidSelector) {
			t.Fatalf("id %d: expected ErrInvalidSelector, got %v", id, err)
		}
	}
	if len(db.calls) != 0 {
		t.Fatalf("expected no lookups, got %v", db.calls)
	}
}

func TestLoadByDifficultyStaysInBand(t *testing.T) {
	db := &fakeDB{}
	src := newTestSource(db)
	for i := 0; i < 200; i++ {
		if _, _, err := src.Load(context.Background(), Selector{Difficulty: 3}); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	for _, id := range db.calls {
		if id < 2401 || id > 3600 {
			t.Fatalf("id %d outside band 3", id)
		}
	}
}

func TestLoadRandomBand(t *testing.T) {
	db := &fakeDB{}
	src := newTestSource(db)
	for i := 0; i < 200; i++ {
		if _, _, err := src.Load(context.Background(), Selector{}); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	for _, id := range db.calls {
		if id < 1 || id > RowCount {
			t.Fatalf("id %d outside table", id)
		}
	}
}

func TestLoadBadDifficulty(t *testing.T) {
	src := newTestSource(&fakeDB{})
	if _, _, err := src.Load(context.Background(), Selector{Difficulty: 7}); !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("expected ErrInvalidSelector, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.txt")
	if err := os.WriteFile(path, []byte("roses are red\nviolets are blue\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	db := &fakeDB{}
	src := newTestSource(db)
	text, ref, err := src.Load(context.Background(), Selector{File: path, ID: 5})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if text != "roses are red\nviolets are blue\n" {
		t.Fatalf("unexpected text %q", text)
	}
	if ref != (model.TextRef{Name: "poem.txt"}) {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if len(db.calls) != 0 {
		t.Fatalf("file load should not touch the database")
	}

	if _, _, err := src.Load(context.Background(), Selector{File: filepath.Join(dir, "missing.txt")}); !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("expected ErrInvalidSelector for missing file, got %v", err)
	}
	if _, _, err := src.Load(context.Background(), Selector{File: dir}); !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("expected ErrInvalidSelector for directory, got %v", err)
	}
}

func TestAdjacent(t *testing.T) {
	src := newTestSource(&fakeDB{})
	ctx := context.Background()

	text, ref, ok, err := src.Adjacent(ctx, model.TextRef{ID: 10}, 1)
	if err != nil || !ok {
		t.Fatalf("adjacent: ok=%v err=%v", ok, err)
	}
	if text != "text 11" || ref.ID != 11 {
		t.Fatalf("unexpected adjacent %q %+v", text, ref)
	}

	for _, tc := range []struct {
		ref   model.TextRef
		delta int
	}{
		{model.TextRef{ID: 1}, -1},
		{model.TextRef{ID: RowCount}, 1},
		{model.TextRef{Name: "poem.txt"}, 1},
	} {
		_, _, ok, err := src.Adjacent(ctx, tc.ref, tc.delta)
		if err != nil || ok {
			t.Fatalf("adjacent %+v %d: expected no-op, got ok=%v err=%v", tc.ref, tc.delta, ok, err)
		}
	}
}

func TestLoadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.txt")
	if err := os.WriteFile(path, []byte("first line\n\n  second line  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines, err := LoadLines(path)
	if err != nil {
		t.Fatalf("load lines: %v", err)
	}
	if diff := cmp.Diff([]string{"first line", "second line"}, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadLines(empty); err == nil {
		t.Fatalf("expected error for empty snippet file")
	}
}
