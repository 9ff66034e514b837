// internal/analysis/stats.go
package analysis

import (
	"math"
	"strings"

	"github.com/Corphon/LitLensMCP/internal/models"
)

const punctuationChars = `!"#$%&'()*+,-./:;<=>?@[\]^_` + "`{|}~"

// Stats computes basic token statistics. All averages are zero for empty
// input rather than NaN.
func Stats(text string) models.TextStats {
	words := Words(text)
	sentences := Sentences(text)

	stats := models.TextStats{
		WordCount:        len(words),
		SentenceCount:    len(sentences),
		ExclamationCount: strings.Count(text, "!"),
		QuestionCount:    strings.Count(text, "?"),
	}

	for _, r := range text {
		if strings.ContainsRune(punctuationChars, r) {
			stats.PunctuationCount++
		}
	}

	if len(words) > 0 {
		totalLen := 0
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			totalLen += len(w)
			unique[strings.ToLower(w)] = struct{}{}
		}
		stats.UniqueWords = len(unique)
		stats.AvgWordLength = round2(float64(totalLen) / float64(len(words)))
		stats.LexicalDiversity = round2(float64(len(unique)) / float64(len(words)))
	}
	if len(sentences) > 0 {
		stats.AvgSentenceLength = round2(float64(len(words)) / float64(len(sentences)))
	}

	return stats
}

// Poetic analyzes line and stanza layout for poem inputs.
func Poetic(text string) models.PoeticStructure {
	var lines []string
	var stanzas [][]string
	var current []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
			current = append(current, line)
		} else if len(current) > 0 {
			stanzas = append(stanzas, current)
			current = nil
		}
	}
	if len(current) > 0 {
		stanzas = append(stanzas, current)
	}

	ps := models.PoeticStructure{
		LineCount:   len(lines),
		StanzaCount: len(stanzas),
	}
	words := Words(text)
	if len(stanzas) > 0 {
		ps.AvgLinesPerStanza = round2(float64(len(lines)) / float64(len(stanzas)))
	}
	if len(lines) > 0 {
		ps.AvgWordsPerLine = round2(float64(len(words)) / float64(len(lines)))
	}
	return ps
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
