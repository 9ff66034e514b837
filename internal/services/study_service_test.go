// internal/services/study_service_test.go
package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studyText = "The trial began on a gray morning and the town gathered to watch the proceedings unfold in the old courthouse downtown.\n\n" +
	"The verdict came quickly because the evidence left no room for doubt among the jurors seated along the wall."

func newTestStudyService(t *testing.T) *StudyService {
	t.Helper()
	return NewStudyService(newTestFileStorage(t))
}

func TestBuildDeckFromText(t *testing.T) {
	s := newTestStudyService(t)

	deck, err := s.BuildDeckFromText("trial", studyText)
	require.NoError(t, err)

	assert.NotEmpty(t, deck.Cards)
	var paragraphCards, sentenceCards int
	for _, card := range deck.Cards {
		if card.Front == "What happens in this part of the text?" {
			paragraphCards++
		}
		if strings.HasPrefix(card.Front, "Why is this sentence important?") {
			sentenceCards++
		}
	}
	assert.Equal(t, 2, paragraphCards)
	assert.Equal(t, 2, sentenceCards)

	// "because" sentence becomes a cause-and-effect question.
	require.Len(t, deck.Questions, 1)
	assert.Contains(t, deck.Questions[0].Prompt, "cause-and-effect")
}

func TestBuildDeckFromAnalysis(t *testing.T) {
	s := newTestStudyService(t)
	analyzer := NewAnalyzerService(newTestFileStorage(t))

	text := "The judge was stern because the law demanded it. His family feared the danger ahead."
	result, err := analyzer.Analyze(context.Background(), text, "prose")
	require.NoError(t, err)

	deck, err := s.BuildDeckFromAnalysis("analysis-deck", result)
	require.NoError(t, err)

	hasThemeCard := false
	for _, card := range deck.Cards {
		if card.Front == "How does the text explore justice?" {
			hasThemeCard = true
			assert.Equal(t, "Through events, language, and consequences connected to justice.", card.Back)
		}
	}
	assert.True(t, hasThemeCard)
}

func TestReviewCardSchedulerMath(t *testing.T) {
	s := newTestStudyService(t)
	deck, err := s.BuildDeckFromText("sched", studyText)
	require.NoError(t, err)
	cardID := deck.Cards[0].ID

	first, err := s.ReviewCard("sched", cardID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Repetitions)
	assert.InDelta(t, 2.6, first.Easiness, 0.001)
	assert.Equal(t, 1, first.IntervalDays)

	second, err := s.ReviewCard("sched", cardID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Repetitions)
	assert.InDelta(t, 2.7, second.Easiness, 0.001)
	assert.Equal(t, 3, second.IntervalDays, "ceil(1 * 2.7)")

	failed, err := s.ReviewCard("sched", cardID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, failed.Repetitions)
	assert.Equal(t, 1, failed.IntervalDays)
	assert.WithinDuration(t, time.Now().Add(time.Hour), failed.Due, 5*time.Second)
}

func TestReviewUpdatesStatsAndAchievements(t *testing.T) {
	s := newTestStudyService(t)
	deck, err := s.BuildDeckFromText("stats", studyText)
	require.NoError(t, err)

	_, err = s.ReviewCard("stats", deck.Cards[0].ID, true)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 1, stats.CardsReviewed)
	assert.Equal(t, 1, stats.Streak)

	achievements := s.Achievements()
	require.NotEmpty(t, achievements)
	assert.Equal(t, "first-review", achievements[0].ID)
}

func TestDueCardsOrdering(t *testing.T) {
	s := newTestStudyService(t)
	deck, err := s.BuildDeckFromText("due", studyText)
	require.NoError(t, err)

	due, err := s.DueCards("due")
	require.NoError(t, err)
	assert.Len(t, due, len(deck.Cards), "new cards are due immediately")

	// A correctly answered card moves out of the due set.
	_, err = s.ReviewCard("due", deck.Cards[0].ID, true)
	require.NoError(t, err)
	due, err = s.DueCards("due")
	require.NoError(t, err)
	assert.Len(t, due, len(deck.Cards)-1)
}

func TestGradeAnswerLengthRule(t *testing.T) {
	s := newTestStudyService(t)

	assert.False(t, s.GradeAnswer("too short"))
	assert.True(t, s.GradeAnswer("this answer engages with the question substantively"))
}

func TestBuildMCQDeterministic(t *testing.T) {
	s := newTestStudyService(t)
	_, err := s.BuildDeckFromText("mcq", studyText)
	require.NoError(t, err)

	first, err := s.BuildMCQ("mcq", 42)
	require.NoError(t, err)
	second, err := s.BuildMCQ("mcq", 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, q := range first {
		assert.Len(t, q.Choices, 4)
		assert.Contains(t, q.Choices, q.Answer)
		assert.Contains(t, q.Prompt, "_____")
	}
}

func TestTaskLifecycleAndAutoPlan(t *testing.T) {
	s := newTestStudyService(t)

	task, err := s.AddTask("Read chapter 3", "", "", 60, 2)
	require.NoError(t, err)

	sessions, err := s.AutoPlan(task.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3, "60 minutes of effort in 25-minute sessions")
	assert.Equal(t, 25, sessions[0].DurationMins)
	assert.Equal(t, 25, sessions[1].DurationMins)
	assert.Equal(t, 10, sessions[2].DurationMins)

	done, err := s.CompleteTask(task.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.NotNil(t, done.CompletedAt)

	_, err = s.CompleteTask(task.ID)
	assert.Error(t, err, "completing twice conflicts")

	require.NoError(t, s.DeleteTask(task.ID))
	assert.Empty(t, s.ListTasks())
}

func TestAddTaskValidatesDueDate(t *testing.T) {
	s := newTestStudyService(t)

	_, err := s.AddTask("Bad date", "", "tomorrow", 25, 1)
	assert.Error(t, err)
}

func TestExportICSShape(t *testing.T) {
	s := newTestStudyService(t)

	_, err := s.AddTask("Essay draft", "outline first", "2026-09-01", 25, 1)
	require.NoError(t, err)

	ics := s.ExportICS()
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR"))
	assert.Contains(t, ics, "VERSION:2.0")
	assert.Contains(t, ics, "PRODID:-//LitLensMCP//Study Planner//EN")
	assert.Contains(t, ics, "DTSTART:20260901T090000")
	assert.Contains(t, ics, "SUMMARY:Essay draft")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(ics), "END:VCALENDAR"))
}

func TestDeckPersistenceAcrossRestart(t *testing.T) {
	fs := newTestFileStorage(t)

	first := NewStudyService(fs)
	_, err := first.BuildDeckFromText("persisted", studyText)
	require.NoError(t, err)

	second := NewStudyService(fs)
	deck, err := second.GetDeck("persisted")
	require.NoError(t, err)
	assert.NotEmpty(t, deck.Cards)
}

func TestReviewSessionWrapsBothWays(t *testing.T) {
	s := newTestStudyService(t)
	deck, err := s.BuildDeckFromText("browse", studyText)
	require.NoError(t, err)
	total := len(deck.Cards)

	session, card, err := s.StartReviewSession("browse")
	require.NoError(t, err)
	assert.Equal(t, 0, session.Index)
	assert.False(t, session.Flipped)
	assert.Equal(t, deck.Cards[0].ID, card.ID)

	// Stepping back from the first card lands on the last.
	session, card, err = s.PrevReviewCard(session.ID)
	require.NoError(t, err)
	assert.Equal(t, total-1, session.Index)
	assert.Equal(t, deck.Cards[total-1].ID, card.ID)

	// Stepping forward from the last card wraps to the first.
	session, card, err = s.NextReviewCard(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.Index)
	assert.Equal(t, deck.Cards[0].ID, card.ID)
}

func TestReviewSessionFlipToggles(t *testing.T) {
	s := newTestStudyService(t)
	_, err := s.BuildDeckFromText("flip", studyText)
	require.NoError(t, err)

	session, _, err := s.StartReviewSession("flip")
	require.NoError(t, err)

	session, _, err = s.FlipReviewCard(session.ID)
	require.NoError(t, err)
	assert.True(t, session.Flipped)

	session, _, err = s.FlipReviewCard(session.ID)
	require.NoError(t, err)
	assert.False(t, session.Flipped)

	// Moving on always turns the next card face down.
	_, _, err = s.FlipReviewCard(session.ID)
	require.NoError(t, err)
	session, _, err = s.NextReviewCard(session.ID)
	require.NoError(t, err)
	assert.False(t, session.Flipped)
}

func TestReviewSessionShuffleSeeded(t *testing.T) {
	s := newTestStudyService(t)
	_, err := s.BuildDeckFromText("shuffle", studyText)
	require.NoError(t, err)

	first, _, err := s.StartReviewSession("shuffle")
	require.NoError(t, err)
	second, _, err := s.StartReviewSession("shuffle")
	require.NoError(t, err)

	first, _, err = s.ShuffleReviewSession(first.ID, 42)
	require.NoError(t, err)
	second, _, err = s.ShuffleReviewSession(second.ID, 42)
	require.NoError(t, err)

	assert.Equal(t, first.Order, second.Order, "the same seed yields the same order")
	assert.Equal(t, 0, first.Index)
	assert.False(t, first.Flipped)
}

func TestReviewSessionLifecycle(t *testing.T) {
	s := newTestStudyService(t)

	_, _, err := s.StartReviewSession("missing")
	assert.Error(t, err)

	_, err = s.BuildDeckFromText("lifecycle", studyText)
	require.NoError(t, err)
	session, _, err := s.StartReviewSession("lifecycle")
	require.NoError(t, err)

	require.NoError(t, s.EndReviewSession(session.ID))
	_, _, err = s.GetReviewSession(session.ID)
	assert.Error(t, err)
}
