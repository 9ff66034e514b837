// internal/services/annotation_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/storage"
)

func newTestFileStorage(t *testing.T) *storage.FileStorage {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestCreateAppliesCategoryDefaults(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	a, err := s.Create("the broken clock on the wall", models.CategorySymbolism, "", "")
	require.NoError(t, err)

	assert.Equal(t, "Symbolic Meaning", a.Title)
	assert.NotEmpty(t, a.Content)
	assert.Equal(t, models.CategoryColors[models.CategorySymbolism], a.Color)
	assert.Contains(t, a.Tags, "broken")
	assert.Contains(t, a.Tags, "clock")
	assert.Empty(t, a.EditHistory)
}

func TestCreateInsightTitleQuotesPreview(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	a, err := s.Create("a short passage", models.CategoryInsight, "", "")
	require.NoError(t, err)
	assert.Equal(t, `Insight: "a short passage"`, a.Title)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	_, err := s.Create("text", "nonsense", "", "")
	assert.Error(t, err)
}

func TestUpdatePushesSingleSnapshot(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	a, err := s.Create("some passage", models.CategoryTheme, "Original", "original content")
	require.NoError(t, err)

	updated, err := s.Update(a.ID, "Revised", "revised content", nil)
	require.NoError(t, err)

	require.Len(t, updated.EditHistory, 1)
	assert.Equal(t, "Original", updated.EditHistory[0].Title)
	assert.Equal(t, "original content", updated.EditHistory[0].Content)
	assert.Equal(t, a.Timestamp, updated.EditHistory[0].Timestamp,
		"snapshot carries the pre-edit timestamp")
	assert.Equal(t, "Revised", updated.Title)
	assert.GreaterOrEqual(t, updated.Timestamp, a.Timestamp,
		"record timestamp moves to the edit time")
}

func TestDuplicateGetsFreshIdentity(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	a, err := s.Create("some passage", models.CategoryTheme, "Title", "content")
	require.NoError(t, err)
	_, err = s.Update(a.ID, "Edited", "", nil)
	require.NoError(t, err)

	dup, err := s.Duplicate(a.ID)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, dup.ID)
	assert.Equal(t, "Edited (Copy)", dup.Title)
	assert.Empty(t, dup.EditHistory)
}

func TestDeleteThenQuery(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	a, err := s.Create("some passage", models.CategoryQuestion, "", "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(a.ID, true))

	assert.Empty(t, s.List())
	assert.Error(t, s.Delete(a.ID, true))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	a, err := s.Create("some passage", models.CategoryQuestion, "", "")
	require.NoError(t, err)

	err = s.Delete(a.ID, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Len(t, s.List(), 1, "unconfirmed delete leaves the collection intact")
}

func TestQueryFilters(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	_, err := s.Create("justice is blind", models.CategoryTheme, "", "")
	require.NoError(t, err)
	_, err = s.Create("a quiet morning", models.CategoryInsight, "", "")
	require.NoError(t, err)

	byCategory := s.Query(models.AnnotationQuery{Category: models.CategoryTheme})
	require.Len(t, byCategory, 1)
	assert.Equal(t, "justice is blind", byCategory[0].Text)

	bySearch := s.Query(models.AnnotationQuery{Search: "morning"})
	require.Len(t, bySearch, 1)
	assert.Equal(t, models.CategoryInsight, bySearch[0].Category)
}

func TestExportCSVShape(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	_, err := s.Create("some passage", models.CategoryCustom, "With, comma", "")
	require.NoError(t, err)

	out, err := s.ExportCSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Category,Title,Text,Content,Timestamp,Tags,Sentiment", lines[0])
	assert.Contains(t, lines[1], `"With, comma"`)
}

func TestImportRoundTrip(t *testing.T) {
	fs := newTestFileStorage(t)
	src := NewAnnotationService(fs)

	_, err := src.Create("first passage", models.CategoryTheme, "", "")
	require.NoError(t, err)
	_, err = src.Create("second passage", models.CategoryInsight, "", "")
	require.NoError(t, err)

	exported, err := src.ExportJSON()
	require.NoError(t, err)

	dst := NewAnnotationService(newTestFileStorage(t))
	added, err := dst.ImportJSON([]byte(exported))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Importing the same data again must not duplicate.
	added, err = dst.ImportJSON([]byte(exported))
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, dst.List(), 2)
}

func TestStatsAggregation(t *testing.T) {
	s := NewAnnotationService(newTestFileStorage(t))

	_, err := s.Create("I love this beautiful day", models.CategoryInsight, "", "")
	require.NoError(t, err)
	_, err = s.Create("a plain factual line", models.CategoryTheme, "", "")
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByCategory[models.CategoryInsight])
	assert.Equal(t, 1, stats.ByCategory[models.CategoryTheme])
	assert.Equal(t, 1, stats.BySentiment["positive"])
	assert.GreaterOrEqual(t, stats.AverageRelevance, 0.0)
}

func TestPersistenceAcrossRestart(t *testing.T) {
	fs := newTestFileStorage(t)

	first := NewAnnotationService(fs)
	created, err := first.Create("persisted passage", models.CategoryCustom, "", "")
	require.NoError(t, err)

	second := NewAnnotationService(fs)
	loaded, err := second.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted passage", loaded.Text)
}
