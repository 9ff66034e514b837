// internal/api/error_codes.go
package api

// API error code constants
const (
	// general
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"
	ErrorUnavailable   = "SERVICE_UNAVAILABLE"

	// analysis
	ErrorAnalysisNotFound = "ANALYSIS_NOT_FOUND"
	ErrorTextEmpty        = "TEXT_EMPTY"
	ErrorTextTooLarge     = "TEXT_TOO_LARGE"

	// annotations
	ErrorAnnotationNotFound = "ANNOTATION_NOT_FOUND"
	ErrorCategoryInvalid    = "CATEGORY_INVALID"
	ErrorImportInvalid      = "IMPORT_INVALID"

	// study
	ErrorDeckNotFound = "DECK_NOT_FOUND"
	ErrorCardNotFound = "CARD_NOT_FOUND"
	ErrorTaskNotFound = "TASK_NOT_FOUND"
	ErrorTaskDone     = "TASK_ALREADY_DONE"

	// LLM
	ErrorLLMUnavailable   = "LLM_SERVICE_UNAVAILABLE"
	ErrorLLMConfigInvalid = "LLM_CONFIG_INVALID"

	// export
	ErrorExportFailed        = "EXPORT_FAILED"
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"
)
