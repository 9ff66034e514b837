// internal/api/handlers.go
package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LitLensMCP/internal/config"
	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/llm"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/services"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

// Handler wires HTTP requests to the services.
type Handler struct {
	AnalyzerService   *services.AnalyzerService
	AnnotationService *services.AnnotationService
	QAService         *services.QAService
	StudyService      *services.StudyService
	SummaryService    *services.SummaryService
	ExportService     *services.ExportService
	LLMService        *services.LLMService
	WebSocketManager  *WebSocketManager
	Response          *ResponseHelper
}

func NewHandler(
	analyzer *services.AnalyzerService,
	annotations *services.AnnotationService,
	qa *services.QAService,
	study *services.StudyService,
	summary *services.SummaryService,
	export *services.ExportService,
	llmService *services.LLMService,
	wsManager *WebSocketManager,
) *Handler {
	return &Handler{
		AnalyzerService:   analyzer,
		AnnotationService: annotations,
		QAService:         qa,
		StudyService:      study,
		SummaryService:    summary,
		ExportService:     export,
		LLMService:        llmService,
		WebSocketManager:  wsManager,
		Response:          NewResponseHelper(),
	}
}

// APIResponse is the standard envelope for every JSON response.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError is the standard error shape.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaginationMeta carries list paging info.
type PaginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PaginatedResponse is the envelope for paged lists.
type PaginatedResponse struct {
	*APIResponse
	Meta *PaginationMeta `json:"meta,omitempty"`
}

// respondError maps application error types onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidationError(err):
		h.Response.BadRequest(c, err.Error())
	case apperrors.IsNotFoundError(err):
		h.Response.Error(c, http.StatusNotFound, ErrorNotFound, err.Error())
	case apperrors.IsConflictError(err):
		h.Response.Conflict(c, err.Error())
	case apperrors.IsExternalServiceError(err):
		h.Response.ServiceUnavailable(c, err.Error())
	default:
		h.Response.InternalError(c, err.Error())
	}
}

// ------------------------------------------------
// analysis

type analyzeRequest struct {
	Text     string `json:"text"`
	TextType string `json:"text_type"`
}

// AnalyzeText runs the extractor pipeline and broadcasts progress to
// any connected WebSocket clients.
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	progress := func(stage string, percent int) {
		if h.WebSocketManager != nil {
			h.WebSocketManager.Broadcast(map[string]interface{}{
				"type":    "analysis_progress",
				"stage":   stage,
				"percent": percent,
			})
		}
	}

	result, err := h.AnalyzerService.AnalyzeWithProgress(c.Request.Context(), req.Text, req.TextType, progress)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, result, "Analysis completed")
}

// GetLastAnalysis returns the most recent result.
func (h *Handler) GetLastAnalysis(c *gin.Context) {
	result := h.AnalyzerService.LastAnalysis()
	if result == nil {
		h.Response.NotFound(c, "analysis")
		return
	}
	h.Response.Success(c, result)
}

// ClearAnalysis drops the stored result.
func (h *Handler) ClearAnalysis(c *gin.Context) {
	h.AnalyzerService.ClearLastAnalysis()
	h.Response.Success(c, nil, "Analysis cleared")
}

// ------------------------------------------------
// question answering

// AskQuestion answers a question about the last analyzed text.
func (h *Handler) AskQuestion(c *gin.Context) {
	var req models.QARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	answer, err := h.QAService.Answer(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, answer)
}

// ------------------------------------------------
// annotations

type annotationCreateRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type annotationUpdateRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ListAnnotations returns annotations filtered by query parameters.
func (h *Handler) ListAnnotations(c *gin.Context) {
	annotations := h.AnnotationService.Query(models.AnnotationQuery{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
	})

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	total := len(annotations)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	h.Response.PaginatedSuccess(c, annotations[start:end], &PaginationMeta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// CreateAnnotation adds an annotation.
func (h *Handler) CreateAnnotation(c *gin.Context) {
	var req annotationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	annotation, err := h.AnnotationService.Create(req.Text, req.Category, req.Title, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, annotation, "Annotation created")
}

// GetAnnotation returns one annotation.
func (h *Handler) GetAnnotation(c *gin.Context) {
	annotation, err := h.AnnotationService.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, annotation)
}

// UpdateAnnotation edits one annotation, preserving history.
func (h *Handler) UpdateAnnotation(c *gin.Context) {
	var req annotationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	annotation, err := h.AnnotationService.Update(c.Param("id"), req.Title, req.Content, req.Tags)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, annotation, "Annotation updated")
}

// DeleteAnnotation removes one annotation. Deletion must be confirmed
// with ?confirmed=true.
func (h *Handler) DeleteAnnotation(c *gin.Context) {
	confirmed := c.Query("confirmed") == "true"
	if err := h.AnnotationService.Delete(c.Param("id"), confirmed); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, nil, "Annotation deleted")
}

// DuplicateAnnotation copies an annotation.
func (h *Handler) DuplicateAnnotation(c *gin.Context) {
	annotation, err := h.AnnotationService.Duplicate(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, annotation, "Annotation duplicated")
}

// GetAnnotationStats summarizes the collection.
func (h *Handler) GetAnnotationStats(c *gin.Context) {
	h.Response.Success(c, h.AnnotationService.Stats())
}

// ExportAnnotations downloads the collection as json or csv.
func (h *Handler) ExportAnnotations(c *gin.Context) {
	result, err := h.ExportService.ExportAnnotations(c.DefaultQuery("format", "json"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.ExportResponse(c, result)
}

// ImportAnnotations merges a JSON export into the collection.
func (h *Handler) ImportAnnotations(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, 4<<20))
	if err != nil {
		h.Response.BadRequest(c, "Reading request body failed", err.Error())
		return
	}

	added, err := h.AnnotationService.ImportJSON(data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, gin.H{"imported": added}, "Annotations imported")
}

type generateAnnotationsRequest struct {
	Seed int64 `json:"seed"`
}

// GenerateAnnotations derives annotations from the last analysis.
func (h *Handler) GenerateAnnotations(c *gin.Context) {
	var req generateAnnotationsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	result := h.AnalyzerService.LastAnalysis()
	generated, err := h.AnnotationService.GenerateFromAnalysis(result, req.Seed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, generated, "Annotations generated")
}

// ------------------------------------------------
// summary

type summaryRequest struct {
	Text         string `json:"text"`
	MaxSentences int    `json:"max_sentences"`
}

// SummarizeText returns the extractive summary of a text.
func (h *Handler) SummarizeText(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.SummaryService.Summarize(req.Text, req.MaxSentences)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, result)
}

// WordFrequency downloads the word frequency table as CSV.
func (h *Handler) WordFrequency(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	csvContent, err := h.SummaryService.WordFrequencyCSV(req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.FileResponse(c, csvContent, "word_frequency.csv", "text/csv; charset=utf-8")
}

// ------------------------------------------------
// study

type createDeckRequest struct {
	Name         string `json:"name"`
	Text         string `json:"text"`
	FromAnalysis bool   `json:"from_analysis"`
}

// ListDecks returns the deck names.
func (h *Handler) ListDecks(c *gin.Context) {
	h.Response.Success(c, h.StudyService.ListDecks())
}

// CreateDeck builds a deck from raw text or from the last analysis.
func (h *Handler) CreateDeck(c *gin.Context) {
	var req createDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	var deck *models.Deck
	var err error
	if req.FromAnalysis {
		deck, err = h.StudyService.BuildDeckFromAnalysis(req.Name, h.AnalyzerService.LastAnalysis())
	} else {
		deck, err = h.StudyService.BuildDeckFromText(req.Name, req.Text)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, deck, "Deck created")
}

// GetDeck returns a deck by name.
func (h *Handler) GetDeck(c *gin.Context) {
	deck, err := h.StudyService.GetDeck(c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, deck)
}

// DeleteDeck removes a deck.
func (h *Handler) DeleteDeck(c *gin.Context) {
	if err := h.StudyService.DeleteDeck(c.Param("name")); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, nil, "Deck deleted")
}

// GetDueCards returns the cards due for review.
func (h *Handler) GetDueCards(c *gin.Context) {
	due, err := h.StudyService.DueCards(c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, due)
}

type reviewRequest struct {
	CardID  string `json:"card_id"`
	Correct bool   `json:"correct"`
}

// ReviewCard records one review and returns the rescheduled card.
func (h *Handler) ReviewCard(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	card, err := h.StudyService.ReviewCard(c.Param("name"), req.CardID, req.Correct)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, card, "Review recorded")
}

// GetQuiz returns seeded multiple-choice questions for a deck.
func (h *Handler) GetQuiz(c *gin.Context) {
	seed, err := strconv.ParseInt(c.DefaultQuery("seed", "0"), 10, 64)
	if err != nil {
		h.Response.BadRequest(c, "seed must be an integer")
		return
	}

	questions, err := h.StudyService.BuildMCQ(c.Param("name"), seed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, questions)
}

type quizAnswerRequest struct {
	Answer string `json:"answer"`
}

// GradeQuizAnswer applies the open-answer length rule.
func (h *Handler) GradeQuizAnswer(c *gin.Context) {
	var req quizAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	h.Response.Success(c, gin.H{"correct": h.StudyService.GradeAnswer(req.Answer)})
}

func reviewSessionPayload(session *models.ReviewSession, card *models.Flashcard) gin.H {
	return gin.H{"session": session, "card": card}
}

// StartReviewSession opens a card-browsing session over a deck.
func (h *Handler) StartReviewSession(c *gin.Context) {
	session, card, err := h.StudyService.StartReviewSession(c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, reviewSessionPayload(session, card), "Review session started")
}

// GetReviewSession returns a session and its current card.
func (h *Handler) GetReviewSession(c *gin.Context) {
	session, card, err := h.StudyService.GetReviewSession(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, reviewSessionPayload(session, card))
}

// NextReviewCard advances the session cursor, wrapping past the end.
func (h *Handler) NextReviewCard(c *gin.Context) {
	session, card, err := h.StudyService.NextReviewCard(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, reviewSessionPayload(session, card))
}

// PrevReviewCard steps the session cursor back, wrapping before the start.
func (h *Handler) PrevReviewCard(c *gin.Context) {
	session, card, err := h.StudyService.PrevReviewCard(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, reviewSessionPayload(session, card))
}

// FlipReviewCard toggles the current card between front and back.
func (h *Handler) FlipReviewCard(c *gin.Context) {
	session, card, err := h.StudyService.FlipReviewCard(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, reviewSessionPayload(session, card))
}

// ShuffleReviewSession reorders the session's cards with a seed.
func (h *Handler) ShuffleReviewSession(c *gin.Context) {
	seed, err := strconv.ParseInt(c.DefaultQuery("seed", "0"), 10, 64)
	if err != nil {
		h.Response.BadRequest(c, "seed must be an integer")
		return
	}

	session, card, err := h.StudyService.ShuffleReviewSession(c.Param("id"), seed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, reviewSessionPayload(session, card), "Session shuffled")
}

// EndReviewSession discards a session.
func (h *Handler) EndReviewSession(c *gin.Context) {
	if err := h.StudyService.EndReviewSession(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, nil, "Review session ended")
}

type taskRequest struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Due        string `json:"due"`
	EffortMins int    `json:"effort_mins"`
	Priority   int    `json:"priority"`
}

// ListTasks returns planner tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	h.Response.Success(c, h.StudyService.ListTasks())
}

// CreateTask adds a planner task.
func (h *Handler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.StudyService.AddTask(req.Title, req.Notes, req.Due, req.EffortMins, req.Priority)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, task, "Task created")
}

// CompleteTask marks a task done.
func (h *Handler) CompleteTask(c *gin.Context) {
	task, err := h.StudyService.CompleteTask(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, task, "Task completed")
}

// DeleteTask removes a task.
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.StudyService.DeleteTask(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, nil, "Task deleted")
}

// PlanTask splits a task into study sessions.
func (h *Handler) PlanTask(c *gin.Context) {
	sessions, err := h.StudyService.AutoPlan(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Created(c, sessions, "Sessions planned")
}

// GetStudyStats returns review statistics.
func (h *Handler) GetStudyStats(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"stats":        h.StudyService.Stats(),
		"achievements": h.StudyService.Achievements(),
	})
}

// ExportCalendar downloads the planner as an iCalendar file.
func (h *Handler) ExportCalendar(c *gin.Context) {
	result, err := h.ExportService.ExportCalendar()
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.FileResponse(c, result.Content, filepath.Base(result.FilePath), "text/calendar; charset=utf-8")
}

// ------------------------------------------------
// export

// ExportAnalysis downloads the last analysis in the requested format.
func (h *Handler) ExportAnalysis(c *gin.Context) {
	result, err := h.ExportService.ExportAnalysis(c.DefaultQuery("format", "json"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.ExportResponse(c, result)
}

// ------------------------------------------------
// settings and LLM

// GetLLMStatus reports provider readiness.
func (h *Handler) GetLLMStatus(c *gin.Context) {
	ready, state := h.LLMService.GetProviderStatus()
	h.Response.Success(c, gin.H{
		"ready":    ready,
		"state":    state,
		"provider": h.LLMService.GetProviderName(),
	})
}

// GetLLMModels lists providers and their supported models.
func (h *Handler) GetLLMModels(c *gin.Context) {
	providers := llm.ListProviders()
	modelsByProvider := make(map[string][]string, len(providers))
	for _, name := range providers {
		modelsByProvider[name] = llm.GetSupportedModelsForProvider(name)
	}
	h.Response.Success(c, modelsByProvider)
}

type llmConfigRequest struct {
	Provider string            `json:"provider"`
	Config   map[string]string `json:"config"`
}

// UpdateLLMConfig switches the provider and persists the settings.
func (h *Handler) UpdateLLMConfig(c *gin.Context) {
	var req llmConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.LLMService.UpdateProvider(req.Provider, req.Config); err != nil {
		h.Response.BadRequest(c, "Provider configuration failed", err.Error())
		return
	}
	if err := config.UpdateLLMConfig(req.Provider, req.Config); err != nil {
		h.Response.InternalError(c, "Saving configuration failed", err.Error())
		return
	}
	h.Response.Success(c, nil, "LLM configuration updated")
}

// GetSettings returns the non-secret configuration.
func (h *Handler) GetSettings(c *gin.Context) {
	cfg := config.GetCurrentConfig()
	h.Response.Success(c, gin.H{
		"port":          cfg.Port,
		"debug_mode":    cfg.DebugMode,
		"llm_provider":  cfg.LLMProvider,
		"reminder_cron": cfg.ReminderCron,
	})
}

// GetMetrics returns a snapshot of process metrics.
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, utils.GetMetricsCollector().Snapshot())
}

// HealthCheck reports liveness and provider state.
func (h *Handler) HealthCheck(c *gin.Context) {
	ready, state := h.LLMService.GetProviderStatus()
	h.Response.Success(c, gin.H{
		"status":    "ok",
		"llm_ready": ready,
		"llm_state": state,
	})
}

// ------------------------------------------------
// websocket

// ProgressWebSocket upgrades the connection for progress and reminder
// push messages.
func (h *Handler) ProgressWebSocket(c *gin.Context) {
	h.WebSocketManager.Serve(c)
}

// GetWebSocketStatus reports connection counts.
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	h.Response.Success(c, gin.H{"connections": h.WebSocketManager.ConnectionCount()})
}
