package retrieval

import "sort"

// fusedHit is a chunk ID with its weighted reciprocal-rank-fusion score.
type fusedHit struct {
	ID    string
	Score float64
}

// fuseRRF combines two ranked ID lists with weighted reciprocal rank fusion.
// Each list contributes weight * 1/(rank+k) with 1-based ranks; a chunk
// absent from a list contributes nothing for that list. Results are sorted
// by score descending, ties broken by chunk ID ascending so fusion is
// deterministic across runs.
func fuseRRF(semantic, keyword []string, semWeight, kwWeight float64, k int) []fusedHit {
	if k <= 0 {
		k = 60
	}
	scores := make(map[string]float64)
	for i, id := range semantic {
		scores[id] += semWeight / float64(i+1+k)
	}
	for i, id := range keyword {
		scores[id] += kwWeight / float64(i+1+k)
	}

	hits := make([]fusedHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, fusedHit{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// normalizeScores rescales hit scores to [0,1] by dividing by the maximum.
// Needed before blending with re-rank scores, which are already in [0,1].
func normalizeScores(hits []fusedHit) {
	if len(hits) == 0 {
		return
	}
	max := hits[0].Score
	for _, h := range hits {
		if h.Score > max {
			max = h.Score
		}
	}
	if max <= 0 {
		return
	}
	for i := range hits {
		hits[i].Score /= max
	}
}
