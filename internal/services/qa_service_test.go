// internal/services/qa_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
)

const grimText = "It was a bad and terrible day, full of awful and horrible news. " +
	"We hate the sad and angry mood, the fear of death everywhere."

func newTestQAService(t *testing.T, text string) *QAService {
	t.Helper()
	analyzer := NewAnalyzerService(newTestFileStorage(t))
	if text != "" {
		_, err := analyzer.Analyze(context.Background(), text, "prose")
		require.NoError(t, err)
	}
	return NewQAService(analyzer, NewEmptyLLMService())
}

func TestAnswerRequiresPriorAnalysis(t *testing.T) {
	s := newTestQAService(t, "")

	_, err := s.Answer(context.Background(), models.QARequest{Question: "What is the tone?"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "Please analyze some text first")
}

func TestAnswerRequiresQuestion(t *testing.T) {
	s := newTestQAService(t, grimText)

	_, err := s.Answer(context.Background(), models.QARequest{Question: "   "})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSentimentAnswerStronglyNegative(t *testing.T) {
	s := newTestQAService(t, grimText)

	answer, err := s.Answer(context.Background(), models.QARequest{Question: "What is the sentiment of this text?"})
	require.NoError(t, err)

	assert.Contains(t, answer.Answer, "strongly negative")
	assert.Contains(t, answer.Answer, "-1.80")
	assert.Equal(t, "heuristic", answer.Source)
}

func TestTrainedPatternWinsOverHeuristics(t *testing.T) {
	s := newTestQAService(t, grimText)

	// "what does" and "symbolize" both hit the meaning group.
	answer, err := s.Answer(context.Background(), models.QARequest{Question: "What does the clock symbolize?"})
	require.NoError(t, err)

	assert.Equal(t, "trained", answer.Source)
	assert.Equal(t, "meaning", answer.Pattern)
}

func TestThemeQuestionListsThemes(t *testing.T) {
	text := "The court ruled him guilty after the trial. The judge applied the law. " +
		"His father and mother wept for their child and family."
	s := newTestQAService(t, text)

	answer, err := s.Answer(context.Background(), models.QARequest{Question: "What is this text about?"})
	require.NoError(t, err)

	assert.Contains(t, answer.Answer, "justice")
	assert.Contains(t, answer.Answer, "family")
}

func TestStatsQuestion(t *testing.T) {
	s := newTestQAService(t, grimText)

	answer, err := s.Answer(context.Background(), models.QARequest{Question: "What are the length statistics?"})
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "25 words")
}

func TestFallbackForUnrecognizedQuestion(t *testing.T) {
	s := newTestQAService(t, grimText)

	answer, err := s.Answer(context.Background(), models.QARequest{Question: "Banana?"})
	require.NoError(t, err)

	assert.Equal(t, "fallback", answer.Source)
	assert.Contains(t, answer.Answer, "sentiment")
}

func TestAnswersAreDeterministic(t *testing.T) {
	s := newTestQAService(t, grimText)

	first, err := s.Answer(context.Background(), models.QARequest{Question: "How do the emotions change and evolve?"})
	require.NoError(t, err)
	second, err := s.Answer(context.Background(), models.QARequest{Question: "How do the emotions change and evolve?"})
	require.NoError(t, err)

	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, "trained", first.Source)
	assert.Equal(t, "emotionalChange", first.Pattern)
}
