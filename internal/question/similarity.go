package question

import "strings"

// similarityThreshold is the word-overlap ratio above which two questions
// count as duplicates.
const similarityThreshold = 0.6

// wordSet lowercases and splits text into its unique words.
func wordSet(text string) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Overlap returns the shared-word ratio between two question texts, scaled
// by the larger word set so that a short question embedded in a long one
// does not read as a duplicate.
func Overlap(a, b string) float64 {
	setA, setB := wordSet(a), wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for w := range setA {
		if setB[w] {
			shared++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(shared) / float64(larger)
}

// TooSimilar reports whether candidate duplicates any previously asked
// question, either exactly or by word overlap.
func TooSimilar(candidate string, asked []string) bool {
	for _, prev := range asked {
		if candidate == prev {
			return true
		}
		if Overlap(candidate, prev) > similarityThreshold {
			return true
		}
	}
	return false
}
