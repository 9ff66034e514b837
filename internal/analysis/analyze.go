// internal/analysis/analyze.go
package analysis

import (
	"strings"
	"time"

	"github.com/Corphon/LitLensMCP/internal/models"
)

const arcMinWords = 200

// Analyze composes every extractor into one AnalysisResult. It is pure over
// text and textType; repeated calls on identical input are identical bar the
// AnalyzedAt timestamp.
func Analyze(text, textType string) *models.AnalysisResult {
	trimmed := strings.TrimSpace(text)

	result := &models.AnalysisResult{
		Text:       text,
		TextType:   textType,
		AnalyzedAt: time.Now(),
		Themes:     []string{},
		KeyQuotes:  []string{},
	}
	if trimmed == "" {
		result.Words = []string{}
		result.Sentences = []string{}
		result.Sentiment = models.SentimentResult{Label: "neutral"}
		result.Emotions = Emotions("")
		result.Devices = Devices("")
		result.ReadingLevel = "moderate"
		result.Subjectivity = Subjectivity("")
		return result
	}

	result.Words = Words(text)
	result.Sentences = Sentences(text)
	result.Stats = Stats(text)
	result.Sentiment = Sentiment(text)
	result.Emotions = Emotions(text)
	result.Themes = Themes(result.Sentences)
	result.Devices = Devices(text)
	result.ReadingLevel = Readability(result.Stats)
	result.KeyQuotes = KeyQuotes(result.Sentences)
	result.KeyStatements = KeyStatements(result.Sentences)
	result.Structure = Structure(result.Sentences)
	result.Subjectivity = Subjectivity(text)

	if result.Stats.WordCount > arcMinWords {
		result.EmotionalArc = EmotionalArc(text)
	}
	if textType == "poem" {
		ps := Poetic(text)
		result.Poetic = &ps
	}

	return result
}
