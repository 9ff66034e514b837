// internal/analysis/readability.go
package analysis

import "github.com/Corphon/LitLensMCP/internal/models"

// Readability thresholds. These are heuristics over average word and
// sentence length, not a validated readability formula.
const (
	simpleWordLen    = 4.5
	complexWordLen   = 5.5
	simpleSentLen    = 12.0
	complexSentLen   = 20.0
)

// Readability classifies the text as simple, moderate or complex. Texts
// with no sentences default to moderate.
func Readability(stats models.TextStats) string {
	if stats.SentenceCount == 0 || stats.WordCount == 0 {
		return "moderate"
	}
	switch {
	case stats.AvgWordLength > complexWordLen || stats.AvgSentenceLength > complexSentLen:
		return "complex"
	case stats.AvgWordLength < simpleWordLen && stats.AvgSentenceLength < simpleSentLen:
		return "simple"
	default:
		return "moderate"
	}
}
