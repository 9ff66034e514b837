// internal/analysis/quotes.go
package analysis

import "sort"

const maxKeyQuotes = 5

// KeyQuotes scores sentences by emotion-keyword hits plus a length bonus and
// returns the top five. Ties keep original sentence order (stable sort).
func KeyQuotes(sentences []string) []string {
	type scored struct {
		sentence string
		score    int
	}

	candidates := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		score := 0
		for _, hits := range emotionHits(s) {
			score += hits * 2
		}
		wordCount := len(Words(s))
		if wordCount >= 6 && wordCount <= 30 {
			score++
		}
		if score > 0 {
			candidates = append(candidates, scored{sentence: s, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxKeyQuotes {
		candidates = candidates[:maxKeyQuotes]
	}
	quotes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		quotes = append(quotes, c.sentence)
	}
	return quotes
}
