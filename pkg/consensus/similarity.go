package consensus

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// lexicalSimilarity scores how similar two texts are via cosine
// similarity over bag-of-words term-frequency vectors, computed with
// gonum/floats (spec §4.9: "lexical similarity between the arbiter
// answer and each participant").
func lexicalSimilarity(a, b string) float64 {
	freqA := termFrequencies(a)
	freqB := termFrequencies(b)
	if len(freqA) == 0 || len(freqB) == 0 {
		return 0
	}

	vocab := make(map[string]int)
	for term := range freqA {
		if _, ok := vocab[term]; !ok {
			vocab[term] = len(vocab)
		}
	}
	for term := range freqB {
		if _, ok := vocab[term]; !ok {
			vocab[term] = len(vocab)
		}
	}

	va := make([]float64, len(vocab))
	vb := make([]float64, len(vocab))
	for term, idx := range vocab {
		va[idx] = freqA[term]
		vb[idx] = freqB[term]
	}

	dot := floats.Dot(va, vb)
	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}

func termFrequencies(s string) map[string]float64 {
	words := strings.Fields(strings.ToLower(s))
	freq := make(map[string]float64, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}
