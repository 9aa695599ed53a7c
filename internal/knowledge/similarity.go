package knowledge

import "math"

// EmbeddedEntry is a QAEntry together with the embedding of its question.
type EmbeddedEntry struct {
	QAEntry
	Embedding []float64 `json:"embedding"`
}

// CosineSimilarity returns dot(a,b)/(|a||b|). Empty vectors, vectors of
// different length and zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	normA := vectorNorm(a)
	normB := vectorNorm(b)
	if normA*normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (normA * normB)
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// BestMatch scores every entry against query and returns the entry with the
// strictly greatest score above zero. Ties keep the earliest entry. ok is false
// when no entry scored above zero, in which case score is 0.
func BestMatch(query []float64, entries []EmbeddedEntry) (best EmbeddedEntry, score float64, ok bool) {
	for _, entry := range entries {
		s := CosineSimilarity(query, entry.Embedding)
		if s > score {
			best, score, ok = entry, s, true
		}
	}
	return best, score, ok
}
