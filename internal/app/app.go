// internal/app/app.go
package app

import (
	"fmt"

	"github.com/Corphon/LitLensMCP/internal/api"
	"github.com/Corphon/LitLensMCP/internal/config"
	"github.com/Corphon/LitLensMCP/internal/di"
	"github.com/Corphon/LitLensMCP/internal/services"
	"github.com/Corphon/LitLensMCP/internal/storage"
	"github.com/Corphon/LitLensMCP/internal/utils"

	// provider self-registration
	_ "github.com/Corphon/LitLensMCP/internal/llm/providers/anthropic"
	_ "github.com/Corphon/LitLensMCP/internal/llm/providers/openai"
)

// InitServices constructs every service and registers it in the DI
// container. Call once at startup, after config.InitConfig.
func InitServices(cfg *config.AppConfig) error {
	logger := utils.GetLogger()
	container := di.GetContainer()

	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	container.Register("storage", fileStorage)

	llmService, err := services.NewLLMService()
	if err != nil {
		logger.Warn("LLM provider unavailable, rule-based answering only", map[string]interface{}{
			"error": err.Error(),
		})
		llmService = services.NewEmptyLLMService()
	}
	container.Register("llm", llmService)

	analyzerService := services.NewAnalyzerService(fileStorage)
	container.Register("analyzer", analyzerService)

	annotationService := services.NewAnnotationService(fileStorage)
	container.Register("annotations", annotationService)

	qaService := services.NewQAService(analyzerService, llmService)
	container.Register("qa", qaService)

	studyService := services.NewStudyService(fileStorage)
	container.Register("study", studyService)

	summaryService := services.NewSummaryService()
	container.Register("summary", summaryService)

	exportService := services.NewExportService(fileStorage, analyzerService, annotationService, studyService)
	container.Register("export", exportService)

	wsManager := api.NewWebSocketManager()
	container.Register("websocket", wsManager)

	if err := studyService.StartReminders(cfg.ReminderCron, func(dueCards int) {
		wsManager.Broadcast(map[string]interface{}{
			"type":      "study_reminder",
			"due_cards": dueCards,
		})
	}); err != nil {
		logger.Warn("study reminders disabled", map[string]interface{}{
			"cron":  cfg.ReminderCron,
			"error": err.Error(),
		})
	}

	logger.Info("services initialized", map[string]interface{}{
		"llm_ready": llmService.IsReady(),
		"data_dir":  cfg.DataDir,
	})
	return nil
}

// ShutdownServices stops background workers before the process exits.
func ShutdownServices() {
	container := di.GetContainer()

	if studyService, ok := container.Get("study").(*services.StudyService); ok {
		studyService.StopReminders()
	}
	if wsManager, ok := container.Get("websocket").(*api.WebSocketManager); ok {
		wsManager.Shutdown()
	}
}
