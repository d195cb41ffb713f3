// Package lexical provides the in-process BM25 keyword index built over the
// full chunk corpus. The index is immutable once built: serving reads share
// one instance and rebuilds swap in a fresh one via Provider.
package lexical

import (
	"math"
	"strings"
	"unicode"

	"finrag-orchestrator/internal/domain"
)

// Default BM25 parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// record holds everything the index knows about one corpus position: term
// statistics and positional metadata in a single struct, so the tokenized
// corpus and the metadata can never drift out of alignment.
type record struct {
	termFreq map[string]int
	length   int
	ref      domain.ChunkRef
}

// Index is a corpus-wide BM25 index. It is read-only after Build.
type Index struct {
	k1 float64
	b  float64

	records     []record
	docFreq     map[string]int
	totalLength int64
}

// Build constructs an index over the given corpus. The corpus order is
// preserved: Score returns one value per chunk in this order.
func Build(chunks []domain.Chunk, k1, b float64) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b < 0 || b > 1 {
		b = DefaultB
	}

	idx := &Index{
		k1:      k1,
		b:       b,
		records: make([]record, 0, len(chunks)),
		docFreq: make(map[string]int),
	}

	for _, c := range chunks {
		tokens := Tokenize(c.Content)
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			idx.docFreq[t]++
		}
		idx.totalLength += int64(len(tokens))
		idx.records = append(idx.records, record{
			termFreq: tf,
			length:   len(tokens),
			ref: domain.ChunkRef{
				Document:   c.Document,
				ChunkIndex: c.ChunkIndex,
				PageNumber: c.PageNumber,
			},
		})
	}

	return idx, nil
}

// Score computes the BM25 score of the query against every corpus position,
// in build order. The result always has length Len(), including for queries
// that tokenize to nothing.
func (idx *Index) Score(query string) []float64 {
	scores := make([]float64, len(idx.records))

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return scores
	}

	avgDL := float64(idx.totalLength) / float64(len(idx.records))

	for _, t := range tokens {
		df, ok := idx.docFreq[t]
		if !ok {
			continue
		}
		idf := idx.idf(df)

		for i := range idx.records {
			count, ok := idx.records[i].termFreq[t]
			if !ok {
				continue
			}
			tf := float64(count)
			docLen := float64(idx.records[i].length)

			num := tf * (idx.k1 + 1)
			denom := tf + idx.k1*(1-idx.b+idx.b*(docLen/avgDL))
			scores[i] += idf * (num / denom)
		}
	}

	return scores
}

// idf = log(1 + (N - n + 0.5) / (n + 0.5))
func (idx *Index) idf(df int) float64 {
	n := float64(df)
	total := float64(len(idx.records))
	return math.Log(1 + (total-n+0.5)/(n+0.5))
}

// Len returns the corpus size.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Refs returns positional metadata in build order. The slice index of each
// ref matches the slice index of its score from Score.
func (idx *Index) Refs() []domain.ChunkRef {
	refs := make([]domain.ChunkRef, len(idx.records))
	for i := range idx.records {
		refs[i] = idx.records[i].ref
	}
	return refs
}

// Params returns the k1/b parameters the index was built with.
func (idx *Index) Params() (k1, b float64) {
	return idx.k1, idx.b
}

// Tokenize lowercases text and splits it on anything that is not a letter or
// digit. Financial text is full of punctuation-adjacent tokens ("EBITDA,",
// "$4.2M") so plain whitespace splitting is not enough.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
