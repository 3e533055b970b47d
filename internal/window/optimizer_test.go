package window

import (
	"math"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func result(id, content string, score float64) *models.RankedResult {
	return &models.RankedResult{ChunkID: id, Content: content, Score: score}
}

func TestOptimizeUnderBudgetUnchanged(t *testing.T) {
	o := NewOptimizer(100, 0.7)
	in := []*models.RankedResult{
		result("c1", "five words of chunk text", 0.9),
		result("c2", "another five word chunk here", 0.8),
	}
	out := o.Optimize(in)
	if len(out) != 2 {
		t.Fatalf("expected all chunks kept, got %d", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Error("ranking order must be preserved")
		}
	}
}

func TestOptimizeSkipsRedundantChunk(t *testing.T) {
	o := NewOptimizer(12, 0.7)
	in := []*models.RankedResult{
		result("c1", "alpha beta gamma delta epsilon", 0.9),
		result("c2", "alpha beta gamma delta epsilon", 0.8),
		result("c3", "zeta eta theta iota kappa", 0.7),
	}
	out := o.Optimize(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[0].ChunkID != "c1" || out[1].ChunkID != "c3" {
		t.Errorf("selection = [%s %s], want [c1 c3]", out[0].ChunkID, out[1].ChunkID)
	}
}

func TestOptimizeSkipsOverBudgetChunk(t *testing.T) {
	o := NewOptimizer(7, 0.7)
	in := []*models.RankedResult{
		result("c1", "one two three four five", 0.9),
		result("c2", "six seven eight nine ten", 0.8),
		result("c3", "eleven twelve", 0.7),
	}
	out := o.Optimize(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[1].ChunkID != "c3" {
		t.Errorf("expected small chunk admitted, got %s", out[1].ChunkID)
	}
}

func TestOptimizeAlwaysAdmitsTopChunk(t *testing.T) {
	o := NewOptimizer(3, 0.7)
	in := []*models.RankedResult{
		result("c1", "a chunk larger than the whole budget by itself", 0.9),
		result("c2", "anything", 0.8),
	}
	out := o.Optimize(in)
	if len(out) != 1 || out[0].ChunkID != "c1" {
		t.Fatalf("top-ranked chunk must always be admitted, got %v", out)
	}
}

func TestOptimizeEmpty(t *testing.T) {
	o := NewOptimizer(0, 0)
	if out := o.Optimize(nil); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}

func TestStats(t *testing.T) {
	stats := Stats([]*models.RankedResult{
		result("c1", "one two three", 0.8),
		result("c2", "four five", 0.4),
	})
	if stats.TotalChunks != 2 {
		t.Errorf("TotalChunks = %d", stats.TotalChunks)
	}
	if stats.TotalWords != 5 {
		t.Errorf("TotalWords = %d", stats.TotalWords)
	}
	if math.Abs(stats.AvgChunkScore-0.6) > 1e-9 {
		t.Errorf("AvgChunkScore = %f", stats.AvgChunkScore)
	}

	empty := Stats(nil)
	if empty.TotalChunks != 0 || empty.AvgChunkScore != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}
