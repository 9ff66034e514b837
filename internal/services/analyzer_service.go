// internal/services/analyzer_service.go
package services

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/LitLensMCP/internal/analysis"
	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/storage"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

const (
	lastAnalysisBlob    = "last_analysis"
	analysisCacheExpiry = 30 * time.Minute
	maxAnalysisTextLen  = 1 << 20
)

// ProgressCallback receives coarse progress updates during an analysis.
type ProgressCallback func(stage string, percent int)

// AnalyzerService runs the heuristic extractors over a text and caches
// results. The most recent result is persisted so question answering
// survives a restart.
type AnalyzerService struct {
	fileStorage *storage.FileStorage

	cacheMutex sync.RWMutex
	cache      map[string]*analysisCacheEntry

	semaphore chan struct{}

	lastMutex sync.RWMutex
	last      *models.AnalysisResult
}

type analysisCacheEntry struct {
	result    *models.AnalysisResult
	createdAt time.Time
}

// NewAnalyzerService creates the service and reloads the last persisted
// analysis when one exists. A corrupt snapshot is discarded.
func NewAnalyzerService(fileStorage *storage.FileStorage) *AnalyzerService {
	s := &AnalyzerService{
		fileStorage: fileStorage,
		cache:       make(map[string]*analysisCacheEntry),
		semaphore:   make(chan struct{}, 3),
	}

	var last models.AnalysisResult
	ok, err := fileStorage.LoadBlob(lastAnalysisBlob, &last)
	if err != nil {
		utils.GetLogger().Warnf("discarding unreadable analysis snapshot: %v", err)
	} else if ok {
		s.last = &last
	}

	return s
}

func analysisCacheKey(text, textType string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(textType+":::"+text)))
}

// Analyze runs the full extractor pipeline. Identical text/type pairs
// within the cache window return the cached result.
func (s *AnalyzerService) Analyze(ctx context.Context, text, textType string) (*models.AnalysisResult, error) {
	return s.AnalyzeWithProgress(ctx, text, textType, nil)
}

// AnalyzeWithProgress is Analyze with an optional progress callback.
func (s *AnalyzerService) AnalyzeWithProgress(ctx context.Context, text, textType string, progress ProgressCallback) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	if len(text) > maxAnalysisTextLen {
		return nil, apperrors.NewValidationError("text exceeds the maximum size", nil)
	}
	if textType == "" {
		textType = "prose"
	}

	key := analysisCacheKey(text, textType)
	if result, ok := s.cachedResult(key); ok {
		s.setLast(result)
		return result, nil
	}

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	report := func(stage string, percent int) {
		if progress != nil {
			progress(stage, percent)
		}
	}

	report("tokenizing", 10)
	started := time.Now()

	result := analysis.Analyze(text, textType)
	report("extracting", 80)

	s.cacheMutex.Lock()
	s.cache[key] = &analysisCacheEntry{result: result, createdAt: time.Now()}
	for k, entry := range s.cache {
		if time.Since(entry.createdAt) > analysisCacheExpiry {
			delete(s.cache, k)
		}
	}
	s.cacheMutex.Unlock()

	s.setLast(result)
	if err := s.fileStorage.SaveBlob(lastAnalysisBlob, result); err != nil {
		utils.GetLogger().Errorf("persisting analysis snapshot: %v", err)
	}

	report("done", 100)
	utils.GetLogger().Info("analysis completed", map[string]interface{}{
		"words":     result.Stats.WordCount,
		"sentences": result.Stats.SentenceCount,
		"elapsed":   time.Since(started).String(),
	})

	return result, nil
}

func (s *AnalyzerService) cachedResult(key string) (*models.AnalysisResult, bool) {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	entry, exists := s.cache[key]
	if !exists || time.Since(entry.createdAt) > analysisCacheExpiry {
		return nil, false
	}
	return entry.result, true
}

func (s *AnalyzerService) setLast(result *models.AnalysisResult) {
	s.lastMutex.Lock()
	s.last = result
	s.lastMutex.Unlock()
}

// LastAnalysis returns the most recent analysis, or nil when no text
// has been analyzed yet.
func (s *AnalyzerService) LastAnalysis() *models.AnalysisResult {
	s.lastMutex.RLock()
	defer s.lastMutex.RUnlock()
	return s.last
}

// ClearLastAnalysis drops the in-memory and persisted snapshot.
func (s *AnalyzerService) ClearLastAnalysis() {
	s.lastMutex.Lock()
	s.last = nil
	s.lastMutex.Unlock()

	if s.fileStorage.FileExists("blobs", lastAnalysisBlob+".json") {
		if err := s.fileStorage.DeleteFile("blobs", lastAnalysisBlob+".json"); err != nil {
			utils.GetLogger().Warnf("removing analysis snapshot: %v", err)
		}
	}
}
