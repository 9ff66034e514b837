// internal/analysis/emotions.go
package analysis

import (
	"math"
	"strings"

	"github.com/Corphon/LitLensMCP/internal/models"
)

// EmotionNames lists the buckets in fixed emission order.
var EmotionNames = []string{"joy", "sadness", "anger", "fear", "surprise", "love", "hope"}

// emotionKeywords maps each bucket to its literary keyword list. Counting is
// by substring occurrence on the lowercased text, so inflected forms like
// "smiled" still register.
var emotionKeywords = map[string][]string{
	"joy": {
		"happy", "joyful", "cheerful", "delighted", "pleased", "glad",
		"merry", "jubilant", "ecstatic", "blissful", "content", "smile",
		"laugh", "bright", "sunshine", "celebration", "love", "peace",
	},
	"sadness": {
		"sad", "unhappy", "sorrowful", "melancholy", "gloomy", "depressed",
		"miserable", "tearful", "grief", "mourn", "despair", "heartbroken",
		"lonely", "dark", "tears", "cry", "weep", "sorrow", "loss",
	},
	"anger": {
		"angry", "furious", "mad", "enraged", "irritated", "annoyed",
		"frustrated", "hostile", "rage", "wrath", "fury", "outrage",
		"hate", "bitter", "resentment", "storm", "fire", "violent",
	},
	"fear": {
		"afraid", "scared", "fearful", "terrified", "frightened", "anxious",
		"worried", "nervous", "panic", "dread", "horror", "terror",
		"nightmare", "shadow", "darkness", "threat", "danger", "tremble",
	},
	"surprise": {
		"surprised", "amazed", "astonished", "shocked", "stunned",
		"startled", "unexpected", "sudden", "wonder", "awe",
		"marvel", "bewildered", "extraordinary", "remarkable",
	},
	"love": {
		"love", "affection", "adore", "cherish", "devotion", "passion",
		"romance", "tender", "heart", "dear", "beloved", "kiss",
		"embrace", "warmth", "gentle", "care", "sweet",
	},
	"hope": {
		"hope", "optimism", "faith", "trust", "believe", "dream",
		"aspire", "wish", "future", "light", "dawn", "promise",
		"courage", "strength", "persevere", "possibility",
	},
}

const arcChunkSize = 100

// emotionHits counts raw keyword occurrences per bucket.
func emotionHits(text string) map[string]int {
	lower := strings.ToLower(text)
	hits := make(map[string]int, len(emotionKeywords))
	for name, keywords := range emotionKeywords {
		count := 0
		for _, kw := range keywords {
			count += strings.Count(lower, kw)
		}
		hits[name] = count
	}
	return hits
}

// Emotions scores the seven emotion buckets as percentages of total
// emotion-word hits. Primary is the highest bucket; ties resolve by the
// fixed bucket order.
func Emotions(text string) models.EmotionResult {
	hits := emotionHits(text)

	total := 0
	for _, c := range hits {
		total += c
	}

	percentages := make(map[string]float64, len(EmotionNames))
	primary := EmotionNames[0]
	best := -1.0
	for _, name := range EmotionNames {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(hits[name])/float64(total)*1000) / 10
		}
		percentages[name] = pct
		if pct > best {
			best = pct
			primary = name
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = percentages[primary] / 100
	}

	return models.EmotionResult{
		Primary:     primary,
		Confidence:  confidence,
		Percentages: percentages,
	}
}

// EmotionalArc tracks how emotions shift across the text in 100-word chunks.
func EmotionalArc(text string) []models.ArcPoint {
	words := Words(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += arcChunkSize {
		end := i + arcChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}

	arc := make([]models.ArcPoint, 0, len(chunks))
	for i, chunk := range chunks {
		result := Emotions(chunk)
		arc = append(arc, models.ArcPoint{
			Position:       float64(i) / float64(len(chunks)),
			ChunkNumber:    i + 1,
			PrimaryEmotion: result.Primary,
			Emotions:       result.Percentages,
		})
	}
	return arc
}
