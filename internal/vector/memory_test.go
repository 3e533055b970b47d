package vector

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryIndexAddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	err = idx.Add(ctx, []string{"a", "b", "c"}, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size = %d, want 3", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "c" {
		t.Errorf("order = [%s %s], want [a c]", results[0].ID, results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("scores not descending")
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()
	if err := idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected add dimension error")
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected search dimension error")
	}
	if _, err := NewMemoryIndex(0); err == nil {
		t.Error("expected error for non-positive dimensions")
	}
}

func TestMemoryIndexRemove(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})

	if err := idx.Remove(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size = %d, want 1", idx.Size())
	}
	results, _ := idx.Search(ctx, []float32{1, 0}, 5)
	for _, r := range results {
		if r.ID == "a" {
			t.Error("removed vector still returned")
		}
	}
}

func TestMemoryIndexSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"a", "b"}, [][]float32{{0.6, 0.8}, {1, 0}})

	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded Size = %d, want 2", loaded.Size())
	}
	results, err := loaded.Search(ctx, []float32{0.6, 0.8}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].ID != "a" {
		t.Errorf("top result after load = %s, want a", results[0].ID)
	}

	// Loading a missing file leaves the index unchanged.
	if err := loaded.Load(filepath.Join(t.TempDir(), "missing.bin")); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Error("missing file load should not clear the index")
	}

	// Dimension mismatch on load is an error.
	wrong, _ := NewMemoryIndex(3)
	if err := wrong.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestFactory(t *testing.T) {
	idx, err := New("memory", 4, QdrantSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.(*MemoryIndex); !ok {
		t.Errorf("expected MemoryIndex, got %T", idx)
	}

	if _, err := New("", 4, QdrantSettings{}); err != nil {
		t.Errorf("empty provider should default to memory: %v", err)
	}
	if _, err := New("bogus", 4, QdrantSettings{}); err == nil {
		t.Error("unknown provider should fail")
	}
}
