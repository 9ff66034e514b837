// internal/services/summary_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizePicksFrequentSentences(t *testing.T) {
	s := NewSummaryService()

	text := "The river carried the village's whole life. " +
		"The river flooded every spring and the village rebuilt. " +
		"A stray dog barked once. " +
		"Everyone in the village depended on the river for water."

	result, err := s.Summarize(text, 2)
	require.NoError(t, err)
	require.Len(t, result.Summary, 2)

	joined := strings.Join(result.Summary, " ")
	assert.Contains(t, joined, "river")
	assert.NotContains(t, joined, "stray dog")
}

func TestSummarizePreservesOriginalOrder(t *testing.T) {
	s := NewSummaryService()

	text := "Justice weighed on the town and the town spoke of justice. " +
		"Nothing much happened midway. " +
		"In the end justice came to the town at last."

	result, err := s.Summarize(text, 2)
	require.NoError(t, err)
	require.Len(t, result.Summary, 2)
	assert.Contains(t, result.Summary[0], "weighed")
	assert.Contains(t, result.Summary[1], "In the end")
}

func TestSummarizeRejectsEmptyText(t *testing.T) {
	s := NewSummaryService()
	_, err := s.Summarize("   ", 3)
	assert.Error(t, err)
}

func TestKeyPhrasesRequireRepetition(t *testing.T) {
	s := NewSummaryService()

	text := "dark water rose and dark water fell while the bright moon watched"
	phrases := s.KeyPhrases(text, 5)
	assert.Contains(t, phrases, "dark water")
	assert.NotContains(t, phrases, "bright moon")
}

func TestWordFrequencyCSV(t *testing.T) {
	s := NewSummaryService()

	out, err := s.WordFrequencyCSV("storm storm storm calm calm sea")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Word,Count", lines[0])
	assert.Equal(t, "storm,3", lines[1])
	assert.Equal(t, "calm,2", lines[2])
}

func TestSummaryContentHeuristics(t *testing.T) {
	s := NewSummaryService()

	text := "Atticus stood in the court while the police watched. " +
		"Atticus spoke of the attack calmly and the court listened."

	result, err := s.Summarize(text, 1)
	require.NoError(t, err)

	assert.Contains(t, result.Entities, "Atticus")
	assert.Contains(t, result.Institutions, "court")
	assert.Contains(t, result.Institutions, "police")
	assert.True(t, result.HasViolence)
}
