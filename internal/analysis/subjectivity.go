// internal/analysis/subjectivity.go
package analysis

import (
	"math"
	"strings"

	"github.com/Corphon/LitLensMCP/internal/models"
)

// opinionMarkers signal first-person stance or evaluative language.
var opinionMarkers = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "feel": {}, "felt": {}, "think": {},
	"believe": {}, "seems": {}, "perhaps": {}, "maybe": {}, "surely": {},
	"beautiful": {}, "terrible": {}, "wonderful": {}, "awful": {},
	"love": {}, "hate": {}, "best": {}, "worst": {}, "lovely": {},
}

// Subjectivity estimates how opinionated the text is on [0,1] from
// opinion-marker density. Polarity reuses the sentiment score clamped to
// [-1,1].
func Subjectivity(text string) models.SubjectivityResult {
	words := Words(text)
	if len(words) == 0 {
		return models.SubjectivityResult{Assessment: assessSubjectivity(0)}
	}

	markers := 0
	for _, w := range words {
		if _, ok := opinionMarkers[strings.ToLower(w)]; ok {
			markers++
		}
	}

	score := math.Min(1, float64(markers)/float64(len(words))*8)
	score = math.Round(score*100) / 100

	polarity := Sentiment(text).Score
	if polarity > 1 {
		polarity = 1
	} else if polarity < -1 {
		polarity = -1
	}

	return models.SubjectivityResult{
		Score:      score,
		Polarity:   polarity,
		Assessment: assessSubjectivity(score),
	}
}

func assessSubjectivity(score float64) string {
	switch {
	case score < 0.3:
		return "Highly objective (factual, analytical)"
	case score < 0.5:
		return "Somewhat objective (balanced perspective)"
	case score < 0.7:
		return "Somewhat subjective (personal opinions present)"
	default:
		return "Highly subjective (emotional, opinionated)"
	}
}
