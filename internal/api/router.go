// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LitLensMCP/internal/config"
	"github.com/Corphon/LitLensMCP/internal/di"
	"github.com/Corphon/LitLensMCP/internal/services"
)

// SetupRouter builds the gin engine from services already registered in
// the DI container.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	container := di.GetContainer()

	analyzerService, ok := container.Get("analyzer").(*services.AnalyzerService)
	if !ok {
		return nil, fmt.Errorf("analyzer service not initialized")
	}

	annotationService, ok := container.Get("annotations").(*services.AnnotationService)
	if !ok {
		return nil, fmt.Errorf("annotation service not initialized")
	}

	qaService, ok := container.Get("qa").(*services.QAService)
	if !ok {
		return nil, fmt.Errorf("qa service not initialized")
	}

	studyService, ok := container.Get("study").(*services.StudyService)
	if !ok {
		return nil, fmt.Errorf("study service not initialized")
	}

	summaryService, ok := container.Get("summary").(*services.SummaryService)
	if !ok {
		return nil, fmt.Errorf("summary service not initialized")
	}

	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("export service not initialized")
	}

	llmService, ok := container.Get("llm").(*services.LLMService)
	if !ok {
		return nil, fmt.Errorf("llm service not initialized")
	}

	wsManager, ok := container.Get("websocket").(*WebSocketManager)
	if !ok {
		return nil, fmt.Errorf("websocket manager not initialized")
	}

	handler := NewHandler(
		analyzerService,
		annotationService,
		qaService,
		studyService,
		summaryService,
		exportService,
		llmService,
		wsManager,
	)

	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(MetricsMiddleware())

	// HTTPS redirect behind a proxy in production
	if !cfg.DebugMode {
		r.Use(func(c *gin.Context) {
			if c.Request.Header.Get("X-Forwarded-Proto") != "https" {
				c.Redirect(http.StatusPermanentRedirect,
					"https://"+c.Request.Host+c.Request.URL.Path)
				return
			}
			c.Next()
		})
	}

	r.GET("/ws/progress", handler.ProgressWebSocket)

	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/metrics", handler.GetMetrics)

		api.POST("/analyze", AnalysisRateLimit(), handler.AnalyzeText)
		api.GET("/analysis", handler.GetLastAnalysis)
		api.DELETE("/analysis", handler.ClearAnalysis)
		api.GET("/analysis/export", handler.ExportAnalysis)

		api.POST("/qa", QARateLimit(), handler.AskQuestion)

		annotations := api.Group("/annotations")
		{
			annotations.GET("", handler.ListAnnotations)
			annotations.POST("", handler.CreateAnnotation)
			annotations.GET("/stats", handler.GetAnnotationStats)
			annotations.GET("/export", handler.ExportAnnotations)
			annotations.POST("/import", handler.ImportAnnotations)
			annotations.POST("/generate", handler.GenerateAnnotations)
			annotations.GET("/:id", handler.GetAnnotation)
			annotations.PUT("/:id", handler.UpdateAnnotation)
			annotations.DELETE("/:id", handler.DeleteAnnotation)
			annotations.POST("/:id/duplicate", handler.DuplicateAnnotation)
		}

		api.POST("/summary", handler.SummarizeText)
		api.POST("/summary/word-frequency", handler.WordFrequency)

		study := api.Group("/study")
		{
			study.GET("/decks", handler.ListDecks)
			study.POST("/decks", handler.CreateDeck)
			study.GET("/decks/:name", handler.GetDeck)
			study.DELETE("/decks/:name", handler.DeleteDeck)
			study.GET("/decks/:name/due", handler.GetDueCards)
			study.POST("/decks/:name/review", handler.ReviewCard)
			study.GET("/decks/:name/quiz", handler.GetQuiz)
			study.POST("/quiz/answer", handler.GradeQuizAnswer)

			study.POST("/decks/:name/session", handler.StartReviewSession)
			study.GET("/session/:id", handler.GetReviewSession)
			study.POST("/session/:id/next", handler.NextReviewCard)
			study.POST("/session/:id/prev", handler.PrevReviewCard)
			study.POST("/session/:id/flip", handler.FlipReviewCard)
			study.POST("/session/:id/shuffle", handler.ShuffleReviewSession)
			study.DELETE("/session/:id", handler.EndReviewSession)

			study.GET("/tasks", handler.ListTasks)
			study.POST("/tasks", handler.CreateTask)
			study.POST("/tasks/:id/complete", handler.CompleteTask)
			study.POST("/tasks/:id/plan", handler.PlanTask)
			study.DELETE("/tasks/:id", handler.DeleteTask)

			study.GET("/stats", handler.GetStudyStats)
			study.GET("/calendar", handler.ExportCalendar)
		}

		llmGroup := api.Group("/llm")
		{
			llmGroup.GET("/status", handler.GetLLMStatus)
			llmGroup.GET("/models", handler.GetLLMModels)
			llmGroup.PUT("/config", handler.UpdateLLMConfig)
		}

		api.GET("/settings", handler.GetSettings)

		api.GET("/ws/status", handler.GetWebSocketStatus)
	}

	return r, nil
}

// corsMiddleware enables cross-origin requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
