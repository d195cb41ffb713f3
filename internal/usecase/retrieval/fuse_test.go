package retrieval_test

import (
	"testing"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(topK int) retrieval.FusionParams {
	return retrieval.FusionParams{Alpha: 0.7, K: 60, TopK: topK}
}

func semanticList(docs ...string) []domain.RankedResult {
	results := make([]domain.RankedResult, 0, len(docs))
	score := 0.95
	for i, d := range docs {
		results = append(results, domain.RankedResult{
			Score:      score,
			Content:    "chunk from " + d,
			Document:   d,
			ChunkIndex: i,
			Origin:     domain.OriginVector,
		})
		score -= 0.1
	}
	return results
}

func refsFor(results []domain.RankedResult) []domain.ChunkRef {
	refs := make([]domain.ChunkRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, domain.ChunkRef{Document: r.Document, ChunkIndex: r.ChunkIndex})
	}
	return refs
}

func TestFuse_EmptySemanticReturnsEmpty(t *testing.T) {
	out := retrieval.Fuse(nil, []float64{1, 2, 3}, nil, params(5))
	assert.Empty(t, out)
}

func TestFuse_EmptyKeywordScoresPassesSemanticThrough(t *testing.T) {
	semantic := semanticList("a.pdf", "b.pdf", "c.pdf")

	out := retrieval.Fuse(semantic, nil, nil, params(2))

	require.Len(t, out, 2)
	assert.Equal(t, semantic[0].Score, out[0].Score, "scores unchanged without fusion")
	assert.Equal(t, domain.OriginVector, out[0].Origin)
	assert.Equal(t, domain.OriginVector, out[1].Origin)
}

func TestFuse_SemanticPriorityDeterminism(t *testing.T) {
	// Semantic order: A, B, C. Keyword order: B, A, C.
	semantic := semanticList("A", "B", "C")
	refs := refsFor(semantic)
	// Keyword scores positionally match refs: B highest, then A, then C.
	keywordScores := []float64{5.0, 9.0, 1.0}

	out := retrieval.Fuse(semantic, keywordScores, refs, params(3))

	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Document, "alpha=0.7 keeps semantic winner first")
	assert.Equal(t, "B", out[1].Document)
	assert.Equal(t, "C", out[2].Document)
	assert.Greater(t, out[0].Score, out[1].Score)
	assert.Greater(t, out[1].Score, out[2].Score)
	for _, r := range out {
		assert.Equal(t, domain.OriginHybrid, r.Origin)
	}
}

func TestFuse_ExactRRFValues(t *testing.T) {
	semantic := semanticList("A", "B")
	refs := refsFor(semantic)
	keywordScores := []float64{2.0, 8.0} // keyword rank: B=1, A=2

	out := retrieval.Fuse(semantic, keywordScores, refs, params(2))

	require.Len(t, out, 2)
	wantA := 0.7/61.0 + 0.3/62.0
	wantB := 0.7/62.0 + 0.3/61.0
	assert.InDelta(t, wantA, out[0].Score, 1e-12)
	assert.InDelta(t, wantB, out[1].Score, 1e-12)
}

func TestFuse_ChunkMissingFromKeywordGetsWorstRank(t *testing.T) {
	semantic := semanticList("A", "B")
	// Keyword index only knows about B.
	refs := []domain.ChunkRef{{Document: "B", ChunkIndex: 1}}
	keywordScores := []float64{3.0}

	out := retrieval.Fuse(semantic, keywordScores, refs, params(2))

	require.Len(t, out, 2)
	// A: sem rank 1, kw rank 2 (= len+1). B: sem rank 2, kw rank 1.
	wantA := 0.7/61.0 + 0.3/62.0
	wantB := 0.7/62.0 + 0.3/61.0
	byDoc := map[string]float64{}
	for _, r := range out {
		byDoc[r.Document] = r.Score
	}
	assert.InDelta(t, wantA, byDoc["A"], 1e-12)
	assert.InDelta(t, wantB, byDoc["B"], 1e-12)
}

func TestFuse_TieBrokenBySemanticRank(t *testing.T) {
	// Equal semantic scores and equal keyword scores make the rrf values
	// identical; the earlier semantic entry must win.
	semantic := []domain.RankedResult{
		{Score: 0.9, Document: "first", ChunkIndex: 0, Origin: domain.OriginVector},
		{Score: 0.9, Document: "second", ChunkIndex: 0, Origin: domain.OriginVector},
	}
	refs := refsFor(semantic)

	out := retrieval.Fuse(semantic, []float64{4.0, 4.0}, refs, params(2))

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Document)
}

func TestFuse_TruncatesToTopK(t *testing.T) {
	semantic := semanticList("a", "b", "c", "d", "e")
	refs := refsFor(semantic)
	scores := []float64{1, 2, 3, 4, 5}

	out := retrieval.Fuse(semantic, scores, refs, params(1))
	assert.Len(t, out, 1)

	out = retrieval.Fuse(semantic, scores, refs, params(10))
	assert.Len(t, out, 5)
}

func TestFuse_AlphaOnePurelySemantic(t *testing.T) {
	semantic := semanticList("A", "B", "C")
	refs := refsFor(semantic)
	// Keyword ranking is the exact reverse of semantic.
	keywordScores := []float64{1.0, 2.0, 3.0}

	out := retrieval.Fuse(semantic, keywordScores, refs, retrieval.FusionParams{Alpha: 1.0, K: 60, TopK: 3})

	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Document)
	assert.Equal(t, "B", out[1].Document)
	assert.Equal(t, "C", out[2].Document)
}
