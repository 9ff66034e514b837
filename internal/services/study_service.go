// internal/services/study_service.go
package services

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/Corphon/LitLensMCP/internal/analysis"
	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/storage"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

const (
	decksBlob   = "decks"
	studyBlob   = "study"
	sessionMins = 25

	initialEasiness = 2.5
	minEasiness     = 1.3

	maxSentenceCards = 10
	mcqChoiceCount   = 4
)

// studyDB is the persisted planner state.
type studyDB struct {
	Tasks         []models.StudyTask    `json:"tasks"`
	Sessions      []models.StudySession `json:"sessions"`
	Stats         models.StudyStats     `json:"stats"`
	Achievements  []models.Achievement  `json:"achievements"`
	LastReviewDay string                `json:"last_review_day,omitempty"` // YYYY-MM-DD
}

// ReminderFunc receives the due-card count when the reminder job fires.
type ReminderFunc func(dueCards int)

// StudyService owns flashcard decks, the review scheduler, quizzes and
// the study planner. Decks and planner state persist as two snapshots.
type StudyService struct {
	fileStorage *storage.FileStorage

	mutex    sync.RWMutex
	decks    map[string]*models.Deck
	db       studyDB
	sessions map[string]*models.ReviewSession

	cron *cron.Cron
}

// NewStudyService loads the persisted decks and planner state. Either
// snapshot being malformed resets that snapshot only.
func NewStudyService(fileStorage *storage.FileStorage) *StudyService {
	s := &StudyService{
		fileStorage: fileStorage,
		decks:       make(map[string]*models.Deck),
		sessions:    make(map[string]*models.ReviewSession),
	}

	var decks map[string]*models.Deck
	ok, err := fileStorage.LoadBlob(decksBlob, &decks)
	if err != nil {
		utils.GetLogger().Warnf("resetting unreadable deck snapshot: %v", err)
	} else if ok && decks != nil {
		s.decks = decks
	}

	var db studyDB
	ok, err = fileStorage.LoadBlob(studyBlob, &db)
	if err != nil {
		utils.GetLogger().Warnf("resetting unreadable study snapshot: %v", err)
	} else if ok {
		s.db = db
	}
	if s.db.Tasks == nil {
		s.db.Tasks = []models.StudyTask{}
	}

	return s
}

func (s *StudyService) persistDecksLocked() error {
	if err := s.fileStorage.SaveBlob(decksBlob, s.decks); err != nil {
		return apperrors.NewStorageError("saving decks", err)
	}
	return nil
}

func (s *StudyService) persistDBLocked() error {
	if err := s.fileStorage.SaveBlob(studyBlob, s.db); err != nil {
		return apperrors.NewStorageError("saving study state", err)
	}
	return nil
}

func newCard(front, back string) models.Flashcard {
	now := time.Now()
	return models.Flashcard{
		ID:        uuid.NewString(),
		Front:     front,
		Back:      back,
		Easiness:  initialEasiness,
		Due:       now,
		CreatedAt: now,
	}
}

// BuildDeckFromText builds a deck directly from raw text: one card per
// paragraph, importance cards for the opening sentences, and
// cause-and-effect quiz questions.
func (s *StudyService) BuildDeckFromText(name, text string) (*models.Deck, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("deck name is required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}

	deck := &models.Deck{Name: name, CreatedAt: time.Now()}

	for _, paragraph := range analysis.Paragraphs(text) {
		deck.Cards = append(deck.Cards, newCard("What happens in this part of the text?", paragraph))
	}

	sentences := analysis.Sentences(text)
	for i, sentence := range sentences {
		if i >= maxSentenceCards {
			break
		}
		sentence = strings.TrimSpace(sentence)
		deck.Cards = append(deck.Cards, newCard(
			fmt.Sprintf("Why is this sentence important? %q", sentence),
			"Consider what it contributes to the passage's argument, feeling, or momentum."))
	}

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		if strings.Contains(lower, "because") || strings.Contains(lower, "therefore") {
			deck.Questions = append(deck.Questions, models.QuizQuestion{
				Prompt: fmt.Sprintf("What cause-and-effect link is stated here? %q", strings.TrimSpace(sentence)),
				Answer: strings.TrimSpace(sentence),
			})
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.decks[name] = deck
	if err := s.persistDecksLocked(); err != nil {
		return nil, err
	}
	return deck, nil
}

// BuildDeckFromAnalysis builds a deck from an analysis result: key
// statements and themes become cards, key quotes become questions.
func (s *StudyService) BuildDeckFromAnalysis(name string, result *models.AnalysisResult) (*models.Deck, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("deck name is required", nil)
	}
	if result == nil {
		return nil, apperrors.NewValidationError("no analysis to build from", nil)
	}

	deck := &models.Deck{Name: name, CreatedAt: time.Now()}

	for _, statement := range result.KeyStatements {
		deck.Cards = append(deck.Cards, newCard("What is happening here?", strings.TrimSpace(statement)))
	}
	for _, theme := range result.Themes {
		deck.Cards = append(deck.Cards, newCard(
			fmt.Sprintf("How does the text explore %s?", theme),
			fmt.Sprintf("Through events, language, and consequences connected to %s.", theme)))
	}
	for _, quote := range result.KeyQuotes {
		deck.Questions = append(deck.Questions, models.QuizQuestion{
			Prompt: fmt.Sprintf("Who or what is this passage about, and why does it stand out? %q", strings.TrimSpace(quote)),
			Answer: strings.TrimSpace(quote),
		})
	}

	if len(deck.Cards) == 0 && len(deck.Questions) == 0 {
		return nil, apperrors.NewProcessingError("analysis yielded no study material", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.decks[name] = deck
	if err := s.persistDecksLocked(); err != nil {
		return nil, err
	}
	return deck, nil
}

// GetDeck returns a deck by name.
func (s *StudyService) GetDeck(name string) (*models.Deck, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	deck, exists := s.decks[name]
	if !exists {
		return nil, apperrors.NewNotFoundError("deck not found: "+name, nil)
	}
	clone := *deck
	return &clone, nil
}

// ListDecks returns deck names sorted alphabetically.
func (s *StudyService) ListDecks() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.decks))
	for name := range s.decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteDeck removes a deck.
func (s *StudyService) DeleteDeck(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.decks[name]; !exists {
		return apperrors.NewNotFoundError("deck not found: "+name, nil)
	}
	delete(s.decks, name)
	return s.persistDecksLocked()
}

// DueCards returns the cards of a deck due now or earlier, oldest first.
func (s *StudyService) DueCards(deckName string) ([]models.Flashcard, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	deck, exists := s.decks[deckName]
	if !exists {
		return nil, apperrors.NewNotFoundError("deck not found: "+deckName, nil)
	}

	now := time.Now()
	var due []models.Flashcard
	for _, card := range deck.Cards {
		if !card.Due.After(now) {
			due = append(due, card)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Due.Before(due[j].Due) })
	return due, nil
}

// ReviewCard applies the spaced-repetition update for one answer.
// A correct answer grows the interval by the easiness factor; a wrong
// answer resets the card and brings it back within the hour.
func (s *StudyService) ReviewCard(deckName, cardID string, correct bool) (*models.Flashcard, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	deck, exists := s.decks[deckName]
	if !exists {
		return nil, apperrors.NewNotFoundError("deck not found: "+deckName, nil)
	}

	for i := range deck.Cards {
		card := &deck.Cards[i]
		if card.ID != cardID {
			continue
		}

		now := time.Now()
		if correct {
			card.Repetitions++
			card.Easiness = math.Max(minEasiness, card.Easiness+0.1)
			interval := card.IntervalDays
			if interval < 1 {
				interval = 1
			} else {
				interval = int(math.Ceil(float64(interval) * card.Easiness))
			}
			card.IntervalDays = interval
			card.Due = now.AddDate(0, 0, interval)
		} else {
			card.Repetitions = 0
			card.Easiness = math.Max(minEasiness, card.Easiness-0.2)
			card.IntervalDays = 1
			card.Due = now.Add(time.Hour)
		}

		s.recordReviewLocked(now)
		if err := s.persistDecksLocked(); err != nil {
			return nil, err
		}
		if err := s.persistDBLocked(); err != nil {
			return nil, err
		}

		updated := *card
		return &updated, nil
	}
	return nil, apperrors.NewNotFoundError("card not found: "+cardID, nil)
}

// StartReviewSession opens a browsing session over a deck's cards in
// deck order. Sessions live in memory only and are dropped on restart.
func (s *StudyService) StartReviewSession(deckName string) (*models.ReviewSession, *models.Flashcard, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	deck, exists := s.decks[deckName]
	if !exists {
		return nil, nil, apperrors.NewNotFoundError("deck not found: "+deckName, nil)
	}
	if len(deck.Cards) == 0 {
		return nil, nil, apperrors.NewValidationError("deck has no cards to review", nil)
	}

	order := make([]string, len(deck.Cards))
	for i, card := range deck.Cards {
		order[i] = card.ID
	}
	session := &models.ReviewSession{
		ID:        uuid.NewString(),
		DeckName:  deckName,
		Order:     order,
		StartedAt: time.Now(),
	}
	s.sessions[session.ID] = session
	return s.sessionViewLocked(session)
}

// NextReviewCard moves the cursor forward, wrapping to the first card
// after the last, and turns the card face down.
func (s *StudyService) NextReviewCard(sessionID string) (*models.ReviewSession, *models.Flashcard, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, nil, err
	}
	session.Index = (session.Index + 1) % len(session.Order)
	session.Flipped = false
	return s.sessionViewLocked(session)
}

// PrevReviewCard moves the cursor backward, wrapping to the last card
// before the first, and turns the card face down.
func (s *StudyService) PrevReviewCard(sessionID string) (*models.ReviewSession, *models.Flashcard, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, nil, err
	}
	session.Index = (session.Index - 1 + len(session.Order)) % len(session.Order)
	session.Flipped = false
	return s.sessionViewLocked(session)
}

// FlipReviewCard toggles the current card between front and back.
func (s *StudyService) FlipReviewCard(sessionID string) (*models.ReviewSession, *models.Flashcard, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, nil, err
	}
	session.Flipped = !session.Flipped
	return s.sessionViewLocked(session)
}

// ShuffleReviewSession reorders the session's cards, rewinds to the
// first card and turns it face down. The seed makes the order
// reproducible.
func (s *StudyService) ShuffleReviewSession(sessionID string, seed int64) (*models.ReviewSession, *models.Flashcard, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(session.Order), func(i, j int) {
		session.Order[i], session.Order[j] = session.Order[j], session.Order[i]
	})
	session.Index = 0
	session.Flipped = false
	return s.sessionViewLocked(session)
}

// GetReviewSession returns the session and its current card unchanged.
func (s *StudyService) GetReviewSession(sessionID string) (*models.ReviewSession, *models.Flashcard, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return s.sessionViewLocked(session)
}

// EndReviewSession discards a session.
func (s *StudyService) EndReviewSession(sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return apperrors.NewNotFoundError("review session not found: "+sessionID, nil)
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *StudyService) sessionLocked(sessionID string) (*models.ReviewSession, error) {
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, apperrors.NewNotFoundError("review session not found: "+sessionID, nil)
	}
	return session, nil
}

// sessionViewLocked clones the session and resolves its current card.
// The deck can be rebuilt while a session is open, so a missing card is
// a conflict rather than a panic.
func (s *StudyService) sessionViewLocked(session *models.ReviewSession) (*models.ReviewSession, *models.Flashcard, error) {
	deck, exists := s.decks[session.DeckName]
	if !exists {
		return nil, nil, apperrors.NewNotFoundError("deck not found: "+session.DeckName, nil)
	}

	cardID := session.Order[session.Index]
	for _, card := range deck.Cards {
		if card.ID == cardID {
			view := *session
			view.Order = append([]string(nil), session.Order...)
			current := card
			return &view, &current, nil
		}
	}
	return nil, nil, apperrors.NewConflictError("deck changed since the review session started", nil)
}

// recordReviewLocked bumps review stats and the daily streak, then
// checks achievements. Caller holds the mutex.
func (s *StudyService) recordReviewLocked(now time.Time) {
	s.db.Stats.CardsReviewed++

	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	switch s.db.LastReviewDay {
	case today:
		// already counted
	case yesterday:
		s.db.Stats.Streak++
		s.db.LastReviewDay = today
	default:
		s.db.Stats.Streak = 1
		s.db.LastReviewDay = today
	}

	s.maybeAwardLocked("first-review", "First card reviewed", s.db.Stats.CardsReviewed >= 1)
	s.maybeAwardLocked("hundred-cards", "One hundred cards reviewed", s.db.Stats.CardsReviewed >= 100)
	s.maybeAwardLocked("week-streak", "Seven-day review streak", s.db.Stats.Streak >= 7)
}

func (s *StudyService) maybeAwardLocked(id, title string, earned bool) {
	if !earned {
		return
	}
	for _, a := range s.db.Achievements {
		if a.ID == id {
			return
		}
	}
	s.db.Achievements = append(s.db.Achievements, models.Achievement{
		ID:       id,
		Title:    title,
		EarnedAt: time.Now(),
	})
}

// GradeAnswer scores an open quiz answer. Substantive answers, longer
// than twenty characters, earn credit.
func (s *StudyService) GradeAnswer(answer string) bool {
	return len(strings.TrimSpace(answer)) > 20
}

// BuildMCQ turns a deck's quiz questions into multiple-choice cloze
// items. One content word is blanked per question and three distractors
// are drawn from the other questions; seed fixes the shuffle.
func (s *StudyService) BuildMCQ(deckName string, seed int64) ([]models.QuizQuestion, error) {
	s.mutex.RLock()
	deck, exists := s.decks[deckName]
	s.mutex.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("deck not found: "+deckName, nil)
	}

	rng := rand.New(rand.NewSource(seed))

	// Pool of candidate distractor words across the deck.
	var pool []string
	seen := map[string]bool{}
	for _, q := range deck.Questions {
		for _, word := range analysis.Words(q.Answer) {
			if len(word) >= 5 && !seen[strings.ToLower(word)] {
				seen[strings.ToLower(word)] = true
				pool = append(pool, word)
			}
		}
	}

	var mcqs []models.QuizQuestion
	for _, q := range deck.Questions {
		target := longestWord(analysis.Words(q.Answer))
		if target == "" || len(pool) < mcqChoiceCount {
			continue
		}

		choices := []string{target}
		for _, idx := range rng.Perm(len(pool)) {
			if len(choices) == mcqChoiceCount {
				break
			}
			if !strings.EqualFold(pool[idx], target) {
				choices = append(choices, pool[idx])
			}
		}
		if len(choices) < mcqChoiceCount {
			continue
		}
		rng.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })

		mcqs = append(mcqs, models.QuizQuestion{
			Prompt:  strings.Replace(q.Answer, target, "_____", 1),
			Answer:  target,
			Choices: choices,
		})
	}
	return mcqs, nil
}

func longestWord(words []string) string {
	best := ""
	for _, word := range words {
		if len(word) > len(best) {
			best = word
		}
	}
	if len(best) < 5 {
		return ""
	}
	return best
}

// --- planner ---

// AddTask creates a planner task.
func (s *StudyService) AddTask(title, notes, due string, effortMins, priority int) (*models.StudyTask, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("task title is required", nil)
	}
	if due != "" {
		if _, err := time.Parse("2006-01-02", due); err != nil {
			return nil, apperrors.NewValidationError("due date must be YYYY-MM-DD", err)
		}
	}
	if effortMins <= 0 {
		effortMins = sessionMins
	}

	task := models.StudyTask{
		ID:         uuid.NewString(),
		Title:      title,
		Notes:      notes,
		Due:        due,
		EffortMins: effortMins,
		Priority:   priority,
		CreatedAt:  time.Now(),
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.db.Tasks = append(s.db.Tasks, task)
	if err := s.persistDBLocked(); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns tasks ordered by done state, priority, then due date.
func (s *StudyService) ListTasks() []models.StudyTask {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tasks := make([]models.StudyTask, len(s.db.Tasks))
	copy(tasks, s.db.Tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Done != tasks[j].Done {
			return !tasks[i].Done
		}
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}
		return tasks[i].Due < tasks[j].Due
	})
	return tasks
}

// CompleteTask marks a task done and counts a study session.
func (s *StudyService) CompleteTask(id string) (*models.StudyTask, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.db.Tasks {
		if s.db.Tasks[i].ID != id {
			continue
		}
		if s.db.Tasks[i].Done {
			return nil, apperrors.NewConflictError("task already completed: "+id, nil)
		}
		now := time.Now()
		s.db.Tasks[i].Done = true
		s.db.Tasks[i].CompletedAt = &now
		s.db.Stats.Sessions++
		if err := s.persistDBLocked(); err != nil {
			return nil, err
		}
		task := s.db.Tasks[i]
		return &task, nil
	}
	return nil, apperrors.NewNotFoundError("task not found: "+id, nil)
}

// DeleteTask removes a task and its planned sessions.
func (s *StudyService) DeleteTask(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.db.Tasks {
		if s.db.Tasks[i].ID == id {
			s.db.Tasks = append(s.db.Tasks[:i], s.db.Tasks[i+1:]...)
			kept := s.db.Sessions[:0]
			for _, session := range s.db.Sessions {
				if session.TaskID != id {
					kept = append(kept, session)
				}
			}
			s.db.Sessions = kept
			return s.persistDBLocked()
		}
	}
	return apperrors.NewNotFoundError("task not found: "+id, nil)
}

// AutoPlan splits a task's effort into 25-minute sessions spread one
// per day, ending on the due date when the task has one.
func (s *StudyService) AutoPlan(taskID string) ([]models.StudySession, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var task *models.StudyTask
	for i := range s.db.Tasks {
		if s.db.Tasks[i].ID == taskID {
			task = &s.db.Tasks[i]
			break
		}
	}
	if task == nil {
		return nil, apperrors.NewNotFoundError("task not found: "+taskID, nil)
	}

	count := int(math.Ceil(float64(task.EffortMins) / float64(sessionMins)))
	if count < 1 {
		count = 1
	}

	start := time.Now()
	if task.Due != "" {
		if dueDay, err := time.Parse("2006-01-02", task.Due); err == nil {
			candidate := dueDay.AddDate(0, 0, -(count - 1))
			if candidate.After(start) {
				start = candidate
			}
		}
	}

	remaining := task.EffortMins
	sessions := make([]models.StudySession, 0, count)
	for i := 0; i < count; i++ {
		mins := sessionMins
		if remaining < sessionMins {
			mins = remaining
		}
		remaining -= mins
		sessions = append(sessions, models.StudySession{
			ID:           uuid.NewString(),
			TaskID:       task.ID,
			PlannedFor:   start.AddDate(0, 0, i).Format("2006-01-02"),
			DurationMins: mins,
			Status:       "planned",
			CreatedAt:    time.Now(),
		})
	}

	s.db.Sessions = append(s.db.Sessions, sessions...)
	if err := s.persistDBLocked(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Stats returns accumulated review statistics.
func (s *StudyService) Stats() models.StudyStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.db.Stats
}

// Achievements returns earned milestones.
func (s *StudyService) Achievements() []models.Achievement {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]models.Achievement, len(s.db.Achievements))
	copy(out, s.db.Achievements)
	return out
}

// --- calendar export ---

// ExportICS renders planner tasks and planned sessions as an iCalendar
// document with one 9:00 event per entry.
func (s *StudyService) ExportICS() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//LitLensMCP//Study Planner//EN\r\n")

	for _, task := range s.db.Tasks {
		if task.Done || task.Due == "" {
			continue
		}
		writeICSEvent(&b, task.ID, task.Due, task.Title, task.Notes)
	}
	for _, session := range s.db.Sessions {
		if session.Status != "planned" {
			continue
		}
		summary := fmt.Sprintf("Study session (%d min)", session.DurationMins)
		writeICSEvent(&b, session.ID, session.PlannedFor, summary, "")
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func writeICSEvent(b *strings.Builder, uid, day, summary, description string) {
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(b, "UID:%s\r\n", uid)
	fmt.Fprintf(b, "DTSTART:%sT090000\r\n", strings.ReplaceAll(day, "-", ""))
	fmt.Fprintf(b, "SUMMARY:%s\r\n", escapeICS(summary))
	if description != "" {
		fmt.Fprintf(b, "DESCRIPTION:%s\r\n", escapeICS(description))
	}
	b.WriteString("END:VEVENT\r\n")
}

func escapeICS(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, ";", "\\;")
	return text
}

// --- reminders ---

// StartReminders schedules the due-card reminder on the given cron
// expression. An empty expression disables reminders.
func (s *StudyService) StartReminders(cronSpec string, notify ReminderFunc) error {
	if cronSpec == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(cronSpec, func() {
		due := s.countDueCards()
		utils.GetLogger().Info("study reminder fired", map[string]interface{}{"due_cards": due})
		if notify != nil && due > 0 {
			notify(due)
		}
	})
	if err != nil {
		return apperrors.NewValidationError("invalid reminder cron expression: "+cronSpec, err)
	}

	c.Start()
	s.mutex.Lock()
	s.cron = c
	s.mutex.Unlock()
	return nil
}

// StopReminders cancels the reminder job.
func (s *StudyService) StopReminders() {
	s.mutex.Lock()
	c := s.cron
	s.cron = nil
	s.mutex.Unlock()

	if c != nil {
		c.Stop()
	}
}

func (s *StudyService) countDueCards() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now()
	count := 0
	for _, deck := range s.decks {
		for _, card := range deck.Cards {
			if !card.Due.After(now) {
				count++
			}
		}
	}
	return count
}
