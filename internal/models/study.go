// internal/models/study.go
package models

import "time"

// Flashcard is one front/back study card with spaced-repetition state.
type Flashcard struct {
	ID           string    `json:"id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Easiness     float64   `json:"easiness"`
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`
	Due          time.Time `json:"due"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuizQuestion is an open or multiple-choice question derived from text.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Answer  string   `json:"answer"`
	Choices []string `json:"choices,omitempty"`
}

// Deck is a named collection of cards and questions, regenerated wholesale
// from source material rather than updated incrementally.
type Deck struct {
	Name      string         `json:"name"`
	Cards     []Flashcard    `json:"cards"`
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"created_at"`
}

// ReviewSession is one in-memory walk through a deck: an ordering over
// the deck's cards, a cursor that wraps at both ends, and a flipped
// flag for the current card. Sessions are not persisted.
type ReviewSession struct {
	ID        string    `json:"id"`
	DeckName  string    `json:"deck_name"`
	Order     []string  `json:"order"`
	Index     int       `json:"index"`
	Flipped   bool      `json:"flipped"`
	StartedAt time.Time `json:"started_at"`
}

// StudyTask is a planner entry.
type StudyTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Due         string     `json:"due,omitempty"` // YYYY-MM-DD
	EffortMins  int        `json:"effort_mins"`
	Priority    int        `json:"priority"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StudySession is one planned or completed study block.
type StudySession struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id,omitempty"`
	PlannedFor   string    `json:"planned_for"` // YYYY-MM-DD
	DurationMins int       `json:"duration_mins"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// StudyStats accumulates review activity.
type StudyStats struct {
	Sessions      int `json:"sessions"`
	Streak        int `json:"streak"`
	CardsReviewed int `json:"cards_reviewed"`
}

// Achievement marks a one-time study milestone.
type Achievement struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	EarnedAt time.Time `json:"earned_at"`
}
