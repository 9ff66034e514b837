// internal/analysis/sentiment.go
package analysis

import (
	"math"
	"strings"

	"github.com/Corphon/LitLensMCP/internal/models"
)

// Fixed polarity lexicons. Matching is exact on lowercased tokens.
var (
	positiveWords = []string{
		"good", "great", "excellent", "beautiful", "wonderful", "amazing",
		"love", "happy", "joy", "delight", "hope",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "horrible", "hate", "sad", "angry",
		"fear", "death", "despair", "gloom",
	}

	positiveSet = toSet(positiveWords)
	negativeSet = toSet(negativeWords)
)

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Sentiment counts polarity-lexicon hits and normalizes by sqrt(wordCount)
// so long texts cannot trivially amplify score magnitude. Label thresholds:
// positive > 0.15, negative < -0.15, neutral otherwise.
func Sentiment(text string) models.SentimentResult {
	words := Words(text)
	if len(words) == 0 {
		return models.SentimentResult{Label: "neutral"}
	}

	var pos, neg int
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, ok := positiveSet[lw]; ok {
			pos++
		}
		if _, ok := negativeSet[lw]; ok {
			neg++
		}
	}

	score := float64(pos-neg) / math.Sqrt(float64(len(words)))
	score = math.Round(score*1000) / 1000

	label := "neutral"
	switch {
	case score > 0.15:
		label = "positive"
	case score < -0.15:
		label = "negative"
	}

	return models.SentimentResult{
		Label:         label,
		Score:         score,
		PositiveCount: pos,
		NegativeCount: neg,
	}
}
