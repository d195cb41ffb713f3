// Package retrieval implements rank-based fusion of the semantic and keyword
// result lists. Raw BM25 magnitudes and cosine similarities are not
// comparable, so fusion works on ranks (Reciprocal Rank Fusion), never on
// weighted raw-score sums.
package retrieval

import (
	"sort"

	"finrag-orchestrator/internal/domain"
)

// FusionParams carries the tunable RRF inputs. The defaults come from the
// deployment configuration, not from literals at call sites.
type FusionParams struct {
	// Alpha is the semantic-trust weight in [0,1]: 1 ranks purely by the
	// semantic list, 0 purely by keyword ranks.
	Alpha float64
	// K is the RRF smoothing constant damping the rank-1 vs rank-2 gap.
	K float64
	// TopK truncates the fused list.
	TopK int
}

// Fuse merges the semantic result list with the corpus-wide keyword score
// array. keywordScores[i] belongs to keywordMeta[i]; the two come from the
// same index snapshot and are joined positionally.
//
// Each semantic result receives
//
//	rrf = alpha/(K+semanticRank) + (1-alpha)/(K+keywordRank)
//
// with 1-based ranks. A chunk absent from the keyword ranking gets the
// worst-case keyword rank len(keywordScores)+1. Ties on the fused score are
// broken by semantic rank. With an empty semantic list the result is empty;
// with an empty keyword array the semantic list is returned truncated and
// untouched (no RRF transform, origin stays as produced).
func Fuse(semantic []domain.RankedResult, keywordScores []float64, keywordMeta []domain.ChunkRef, p FusionParams) []domain.RankedResult {
	if len(semantic) == 0 {
		return nil
	}
	if len(keywordScores) == 0 {
		return truncate(semantic, p.TopK)
	}

	// Semantic rank: order by the list's own score, descending, 1-based.
	semOrder := make([]int, len(semantic))
	for i := range semOrder {
		semOrder[i] = i
	}
	sort.SliceStable(semOrder, func(a, b int) bool {
		return semantic[semOrder[a]].Score > semantic[semOrder[b]].Score
	})
	semRank := make(map[domain.ChunkKey]int, len(semantic))
	for rank, i := range semOrder {
		key := semantic[i].Key()
		if _, seen := semRank[key]; !seen {
			semRank[key] = rank + 1
		}
	}

	keywordRank := rankKeywordScores(keywordScores, keywordMeta)
	worstKeywordRank := len(keywordScores) + 1

	type fused struct {
		result  domain.RankedResult
		rrf     float64
		semRank int
	}

	out := make([]fused, 0, len(semantic))
	seen := make(map[domain.ChunkKey]bool, len(semantic))
	for _, res := range semantic {
		key := res.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		sr := semRank[key]
		kr, ok := keywordRank[key]
		if !ok {
			kr = worstKeywordRank
		}

		res.Score = p.Alpha/(p.K+float64(sr)) + (1-p.Alpha)/(p.K+float64(kr))
		res.Origin = domain.OriginHybrid
		out = append(out, fused{result: res, rrf: res.Score, semRank: sr})
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].rrf != out[b].rrf {
			return out[a].rrf > out[b].rrf
		}
		return out[a].semRank < out[b].semRank
	})

	results := make([]domain.RankedResult, 0, len(out))
	for _, f := range out {
		results = append(results, f.result)
	}
	return truncate(results, p.TopK)
}

// rankKeywordScores orders the keyword score array descending and assigns
// each (document, chunk index) its best 1-based rank.
func rankKeywordScores(scores []float64, meta []domain.ChunkRef) map[domain.ChunkKey]int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranks := make(map[domain.ChunkKey]int, len(scores))
	for rank, i := range order {
		if i >= len(meta) {
			continue
		}
		key := meta[i].Key()
		if _, seen := ranks[key]; !seen {
			ranks[key] = rank + 1
		}
	}
	return ranks
}

func truncate(results []domain.RankedResult, topK int) []domain.RankedResult {
	if topK > 0 && len(results) > topK {
		return results[:topK]
	}
	return results
}
