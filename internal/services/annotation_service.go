// internal/services/annotation_service.go
package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Corphon/LitLensMCP/internal/analysis"
	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/storage"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

const (
	annotationsBlob         = "annotations"
	maxGeneratedAnnotations = 10
)

// AnnotationService owns the annotation collection. All mutations are
// serialized under one mutex and persisted as a single snapshot.
type AnnotationService struct {
	fileStorage *storage.FileStorage

	mutex       sync.RWMutex
	annotations []models.Annotation
}

// NewAnnotationService loads the persisted collection. A malformed
// snapshot resets the collection rather than failing startup.
func NewAnnotationService(fileStorage *storage.FileStorage) *AnnotationService {
	s := &AnnotationService{fileStorage: fileStorage}

	var saved []models.Annotation
	ok, err := fileStorage.LoadBlob(annotationsBlob, &saved)
	if err != nil {
		utils.GetLogger().Warnf("resetting unreadable annotation snapshot: %v", err)
	} else if ok {
		s.annotations = saved
	}
	if s.annotations == nil {
		s.annotations = []models.Annotation{}
	}

	return s
}

func (s *AnnotationService) persistLocked() error {
	if err := s.fileStorage.SaveBlob(annotationsBlob, s.annotations); err != nil {
		return apperrors.NewStorageError("saving annotations", err)
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range models.AnnotationCategories {
		if c == category {
			return true
		}
	}
	return false
}

func textPreview(text string, maxLen int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen]) + "..."
}

func defaultTitle(category, text string) string {
	preview := textPreview(text, 40)
	switch category {
	case models.CategorySymbolism:
		return "Symbolic Meaning"
	case models.CategoryTechnique:
		return "Literary Technique"
	case models.CategoryTheme:
		return "Thematic Connection"
	case models.CategoryCharacter:
		return "Character Analysis"
	case models.CategoryInsight:
		return fmt.Sprintf("Insight: %q", preview)
	case models.CategoryQuestion:
		return fmt.Sprintf("Question about %q", preview)
	case models.CategoryVocabulary:
		words := analysis.Words(text)
		if len(words) > 0 {
			return "Vocabulary: " + words[0]
		}
		return "Vocabulary"
	default:
		return fmt.Sprintf("Annotation: %q", preview)
	}
}

func defaultContent(category string) string {
	switch category {
	case models.CategorySymbolism:
		return "Consider what this image or object stands for beyond its literal meaning."
	case models.CategoryTechnique:
		return "Identify the device at work here and what effect it creates."
	case models.CategoryTheme:
		return "Connect this passage to a larger idea the text keeps returning to."
	case models.CategoryCharacter:
		return "What does this passage reveal about the character's motives or change?"
	case models.CategoryQuestion:
		return "Note what is unclear here and what evidence might resolve it."
	case models.CategoryVocabulary:
		return "Define this word in context and note its connotations."
	default:
		return "Record your observation about this passage."
	}
}

// Create adds an annotation for the given passage. Title and content
// fall back to per-category defaults when empty, and sentiment, tags
// and relevance are computed from the passage.
func (s *AnnotationService) Create(text, category, title, content string) (*models.Annotation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("annotation text is required", nil)
	}
	if category == "" {
		category = models.CategoryCustom
	}
	if !validCategory(category) {
		return nil, apperrors.NewValidationError("unknown annotation category: "+category, nil)
	}

	if title == "" {
		title = defaultTitle(category, text)
	}
	if content == "" {
		content = defaultContent(category)
	}

	sentiment := analysis.Sentiment(text)
	annotation := models.Annotation{
		ID:          uuid.NewString(),
		Text:        text,
		Category:    category,
		Title:       title,
		Content:     content,
		Timestamp:   time.Now().Format(time.RFC3339),
		Tags:        analysis.ExtractTags(text),
		Relevance:   analysis.Relevance(text),
		Sentiment:   models.AnnotationSentiment{Label: sentiment.Label, Score: sentiment.Score},
		Color:       models.CategoryColors[category],
		EditHistory: []models.EditSnapshot{},
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.annotations = append(s.annotations, annotation)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return &annotation, nil
}

// Get returns the annotation with the given id.
func (s *AnnotationService) Get(id string) (*models.Annotation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for i := range s.annotations {
		if s.annotations[i].ID == id {
			clone := s.annotations[i]
			return &clone, nil
		}
	}
	return nil, apperrors.NewNotFoundError("annotation not found: "+id, nil)
}

// Update edits title, content or tags. The pre-edit state, including
// its timestamp, is pushed onto the edit history before anything
// changes, and the record's timestamp moves to the edit time.
func (s *AnnotationService) Update(id, title, content string, tags []string) (*models.Annotation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.annotations {
		if s.annotations[i].ID != id {
			continue
		}

		a := &s.annotations[i]
		a.EditHistory = append(a.EditHistory, models.EditSnapshot{
			Timestamp: a.Timestamp,
			Title:     a.Title,
			Content:   a.Content,
		})

		if title != "" {
			a.Title = title
		}
		if content != "" {
			a.Content = content
		}
		if tags != nil {
			a.Tags = tags
		}
		a.Timestamp = time.Now().Format(time.RFC3339)

		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		clone := *a
		return &clone, nil
	}
	return nil, apperrors.NewNotFoundError("annotation not found: "+id, nil)
}

// Delete removes an annotation. The caller must confirm explicitly;
// an unconfirmed delete is rejected without touching the collection.
func (s *AnnotationService) Delete(id string, confirmed bool) error {
	if !confirmed {
		return apperrors.NewValidationError("deleting an annotation requires confirmation", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.annotations {
		if s.annotations[i].ID == id {
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			return s.persistLocked()
		}
	}
	return apperrors.NewNotFoundError("annotation not found: "+id, nil)
}

// Duplicate copies an annotation under a fresh id with an empty edit
// history and a " (Copy)" title suffix.
func (s *AnnotationService) Duplicate(id string) (*models.Annotation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.annotations {
		if s.annotations[i].ID != id {
			continue
		}

		dup := s.annotations[i]
		dup.ID = uuid.NewString()
		dup.Title = dup.Title + " (Copy)"
		dup.Timestamp = time.Now().Format(time.RFC3339)
		dup.EditHistory = []models.EditSnapshot{}

		s.annotations = append(s.annotations, dup)
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		return &dup, nil
	}
	return nil, apperrors.NewNotFoundError("annotation not found: "+id, nil)
}

// Query filters annotations by category, tag and a case-insensitive
// search over title, content and passage text. Empty fields match all.
func (s *AnnotationService) Query(q models.AnnotationQuery) []models.Annotation {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	search := strings.ToLower(q.Search)
	results := make([]models.Annotation, 0, len(s.annotations))

	for _, a := range s.annotations {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.Tag != "" && !containsTag(a.Tags, q.Tag) {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(a.Title + " " + a.Content + " " + a.Text)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		results = append(results, a)
	}
	return results
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// List returns all annotations.
func (s *AnnotationService) List() []models.Annotation {
	return s.Query(models.AnnotationQuery{})
}

// Stats summarizes the collection.
func (s *AnnotationService) Stats() models.AnnotationStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := models.AnnotationStats{
		Total:       len(s.annotations),
		ByCategory:  make(map[string]int),
		BySentiment: make(map[string]int),
	}

	var relevanceSum float64
	for _, a := range s.annotations {
		stats.ByCategory[a.Category]++
		stats.BySentiment[a.Sentiment.Label]++
		relevanceSum += a.Relevance
	}
	if stats.Total > 0 {
		stats.AverageRelevance = round2(relevanceSum / float64(stats.Total))
	}
	return stats
}

// ExportJSON serializes the full collection.
func (s *AnnotationService) ExportJSON() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := json.MarshalIndent(s.annotations, "", "  ")
	if err != nil {
		return "", apperrors.NewProcessingError("serializing annotations", err)
	}
	return string(data), nil
}

// ExportCSV renders the collection as CSV with one row per annotation.
func (s *AnnotationService) ExportCSV() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Category", "Title", "Text", "Content", "Timestamp", "Tags", "Sentiment"}
	if err := writer.Write(header); err != nil {
		return "", apperrors.NewProcessingError("writing CSV header", err)
	}

	for _, a := range s.annotations {
		row := []string{
			a.ID,
			a.Category,
			a.Title,
			a.Text,
			a.Content,
			a.Timestamp,
			strings.Join(a.Tags, "; "),
			a.Sentiment.Label,
		}
		if err := writer.Write(row); err != nil {
			return "", apperrors.NewProcessingError("writing CSV row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", apperrors.NewProcessingError("flushing CSV", err)
	}
	return buf.String(), nil
}

// ImportJSON merges annotations from a JSON export. Entries with
// unknown categories are rejected; entries without an id get one.
func (s *AnnotationService) ImportJSON(data []byte) (int, error) {
	var incoming []models.Annotation
	if err := json.Unmarshal(data, &incoming); err != nil {
		return 0, apperrors.NewValidationError("parsing annotation import", err)
	}

	for i := range incoming {
		if strings.TrimSpace(incoming[i].Text) == "" {
			return 0, apperrors.NewValidationError(fmt.Sprintf("import entry %d has no text", i), nil)
		}
		if !validCategory(incoming[i].Category) {
			return 0, apperrors.NewValidationError(
				fmt.Sprintf("import entry %d has unknown category: %s", i, incoming[i].Category), nil)
		}
		if incoming[i].ID == "" {
			incoming[i].ID = uuid.NewString()
		}
		if incoming[i].Timestamp == "" {
			incoming[i].Timestamp = time.Now().Format(time.RFC3339)
		}
		if incoming[i].Color == "" {
			incoming[i].Color = models.CategoryColors[incoming[i].Category]
		}
		if incoming[i].EditHistory == nil {
			incoming[i].EditHistory = []models.EditSnapshot{}
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing := make(map[string]bool, len(s.annotations))
	for _, a := range s.annotations {
		existing[a.ID] = true
	}

	added := 0
	for _, a := range incoming {
		if existing[a.ID] {
			continue
		}
		s.annotations = append(s.annotations, a)
		existing[a.ID] = true
		added++
	}

	if err := s.persistLocked(); err != nil {
		return 0, err
	}
	return added, nil
}

// GenerateFromAnalysis walks the text the way a close reader would:
// device notes first when the text is a poem, then per paragraph a
// context annotation (narrative event, else narrating perspective, else
// plot work, else exposition) and scholarly notes on the sentences that
// carry the most weight. At most ten annotations are produced. Seed
// zero yields the canonical formal phrasing; any other seed applies a
// deterministic lead-in variation.
func (s *AnnotationService) GenerateFromAnalysis(result *models.AnalysisResult, seed int64) ([]models.Annotation, error) {
	if result == nil {
		return nil, apperrors.NewValidationError("no analysis to annotate", nil)
	}

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}

	var generated []models.Annotation
	add := func(text, category, title, content string) error {
		a, err := s.buildGenerated(text, category, title, applyStyle(rng, content))
		if err != nil {
			return err
		}
		generated = append(generated, *a)
		return nil
	}
	full := func() bool { return len(generated) >= maxGeneratedAnnotations }

	// For poems the craft is the point, so detected devices lead.
	if result.TextType == "poem" {
		deviceNames := make([]string, 0, len(result.Devices))
		for name, count := range result.Devices {
			if count > 0 {
				deviceNames = append(deviceNames, name)
			}
		}
		sort.Strings(deviceNames)
		for _, name := range deviceNames {
			if full() {
				break
			}
			note, ok := deviceNotes[name]
			if !ok {
				note = fmt.Sprintf("Instances of %s shape how this passage reads. Note their effect.", name)
			}
			if err := add(textPreview(result.Text, 80), models.CategoryTechnique, "Device: "+titleCase(name), note); err != nil {
				return nil, err
			}
		}
	}

	paragraphs := analysis.Paragraphs(result.Text)
	if len(paragraphs) == 0 {
		paragraphs = []string{strings.TrimSpace(result.Text)}
	}

	for _, paragraph := range paragraphs {
		if full() {
			break
		}
		sentences := analysis.Sentences(paragraph)

		// Paragraph context, in priority order.
		contextDone := false
		for _, sentence := range sentences {
			if event := extractNarrativeEvent(sentence); event != nil {
				if err := add(textPreview(paragraph, 120), models.CategoryInsight, titleCase(event.kind), event.what+". "+event.significance); err != nil {
					return nil, err
				}
				contextDone = true
				break
			}
		}
		if !contextDone {
			if title, explanation, ok := narrativePosition(paragraph); ok {
				if err := add(textPreview(paragraph, 120), models.CategoryTechnique, title, explanation); err != nil {
					return nil, err
				}
				contextDone = true
			}
		}
		if !contextDone {
			if note, ok := plotSignificance(paragraph); ok {
				if err := add(textPreview(paragraph, 120), models.CategoryTheme, "Plot Significance", note); err != nil {
					return nil, err
				}
				contextDone = true
			}
		}
		if !contextDone {
			if err := add(textPreview(paragraph, 120), models.CategoryInsight, "Context",
				"This passage establishes the world and situation before the main action begins."); err != nil {
				return nil, err
			}
		}
		if full() {
			break
		}

		// Sentence notes on paragraph openers and closers, plus every
		// sentence of short paragraphs.
		for i, sentence := range sentences {
			if full() {
				break
			}
			if len(sentence) <= 30 {
				continue
			}
			if i != 0 && i != len(sentences)-1 && len(sentences) >= 4 {
				continue
			}
			category, title, content := scholarlyNote(sentence)
			if err := add(sentence, category, title, content); err != nil {
				return nil, err
			}
		}
	}

	// Themes round out the pass when room remains.
	for _, theme := range result.Themes {
		if full() {
			break
		}
		title := "Theme: " + titleCase(theme)
		content := fmt.Sprintf("The text repeatedly engages with %s. Trace where this thread surfaces.", theme)
		if err := add(textPreview(result.Text, 80), models.CategoryTheme, title, content); err != nil {
			return nil, err
		}
	}

	return generated, nil
}

func (s *AnnotationService) buildGenerated(text, category, title, content string) (*models.Annotation, error) {
	a, err := s.Create(text, category, title, content)
	if err != nil {
		return nil, err
	}
	s.mutex.Lock()
	for i := range s.annotations {
		if s.annotations[i].ID == a.ID {
			s.annotations[i].Generated = true
			a.Generated = true
			break
		}
	}
	err = s.persistLocked()
	s.mutex.Unlock()
	if err != nil {
		return nil, err
	}
	return a, nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
