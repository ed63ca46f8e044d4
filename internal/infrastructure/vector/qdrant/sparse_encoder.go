package qdrant

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

type sparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

func (v sparseVector) empty() bool {
	return len(v.Indices) == 0
}

const (
	bm25K          = 1.2
	nameWeight     = 1.5
	addressWeight  = 1.0
	hoursWeight    = 0.5
	maxSparseTerms = 256
)

// Common query filler that would otherwise match every outlet.
var sparseStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "for": {}, "how": {}, "in": {},
	"is": {}, "me": {}, "near": {}, "of": {}, "on": {}, "or": {}, "outlet": {}, "outlets": {},
	"the": {}, "there": {}, "to": {}, "what": {}, "where": {}, "which": {}, "with": {},
}

func encodeSparseOutlet(o domain.Outlet) sparseVector {
	termFreq := make(map[uint32]float64, 64)
	appendTermFreq(termFreq, tokenizeAlphaNum(o.Name), nameWeight)
	appendTermFreq(termFreq, tokenizeAlphaNum(o.Address), addressWeight)
	appendTermFreq(termFreq, tokenizeAlphaNum(o.OperatingHours), hoursWeight)
	return termFreqToSparse(termFreq)
}

func encodeSparseQuery(query string) sparseVector {
	termFreq := make(map[uint32]float64, 32)
	appendTermFreq(termFreq, tokenizeAlphaNum(query), 1.0)
	return termFreqToSparse(termFreq)
}

func appendTermFreq(dst map[uint32]float64, tokens []string, weight float64) {
	for _, token := range tokens {
		if _, stop := sparseStopWords[token]; stop {
			continue
		}
		dst[hashToken(token)] += weight
	}
}

// termFreqToSparse applies BM25 term-frequency saturation and keeps at most
// maxSparseTerms entries sorted by index.
func termFreqToSparse(tf map[uint32]float64) sparseVector {
	if len(tf) == 0 {
		return sparseVector{}
	}
	indices := make([]uint32, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	if len(indices) > maxSparseTerms {
		indices = indices[:maxSparseTerms]
	}

	values := make([]float32, 0, len(indices))
	for _, idx := range indices {
		freq := tf[idx]
		weight := (freq * (bm25K + 1.0)) / (freq + bm25K)
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			weight = 0
		}
		values = append(values, float32(weight))
	}
	return sparseVector{Indices: indices, Values: values}
}

func hashToken(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	if sum := h.Sum32(); sum != 0 {
		return sum
	}
	return 1
}

// tokenizeAlphaNum lower-cases s and splits it on anything that is not a
// letter or digit. Single-letter tokens are dropped.
func tokenizeAlphaNum(s string) []string {
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 1 || unicode.IsDigit([]rune(f)[0]) {
			out = append(out, f)
		}
	}
	return out
}
