// internal/api/response_helpers.go
package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LitLensMCP/internal/models"
)

// ResponseHelper centralizes the JSON envelope and download responses.
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success sends a 200 envelope.
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(http.StatusOK, response)
}

// Created sends a 201 envelope.
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	} else {
		response.Message = "Resource created"
	}
	c.JSON(http.StatusCreated, response)
}

// sanitizeErrorMessage keeps secrets out of client-facing errors.
func sanitizeErrorMessage(message string) string {
	lowered := strings.ToLower(message)
	for _, pattern := range []string{"api_key", "apikey", "secret", "token", "password"} {
		if strings.Contains(lowered, pattern) {
			return "An internal error occurred"
		}
	}
	return message
}

// Error sends an error envelope with the given status and code.
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}
	if len(details) > 0 {
		apiError.Details = sanitizeErrorMessage(details[0])
	}

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

func (rh *ResponseHelper) NotFound(c *gin.Context, resource string, details ...string) {
	rh.Error(c, http.StatusNotFound, rh.resourceNotFoundCode(resource), resource+" not found", details...)
}

func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

func (rh *ResponseHelper) Conflict(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusConflict, ErrorConflict, message, details...)
}

func (rh *ResponseHelper) ServiceUnavailable(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusServiceUnavailable, ErrorUnavailable, message, details...)
}

// PaginatedSuccess sends a 200 envelope with pagination metadata.
func (rh *ResponseHelper) PaginatedSuccess(c *gin.Context, data interface{}, meta *PaginationMeta, message ...string) {
	response := &PaginatedResponse{
		APIResponse: &APIResponse{
			Success:   true,
			Data:      data,
			Timestamp: time.Now(),
			RequestID: rh.getRequestID(c),
		},
		Meta: meta,
	}
	if len(message) > 0 {
		response.APIResponse.Message = message[0]
	}
	c.JSON(http.StatusOK, response)
}

// FileResponse sends content as a named attachment.
func (rh *ResponseHelper) FileResponse(c *gin.Context, content, filename, contentType string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Length", fmt.Sprintf("%d", len(content)))
	c.String(http.StatusOK, content)
}

// ExportResponse maps an export result to the right transport: JSON
// stays in the envelope, everything else downloads as a file.
func (rh *ResponseHelper) ExportResponse(c *gin.Context, result *models.ExportResult) {
	filename := filepath.Base(result.FilePath)
	switch strings.ToLower(result.Format) {
	case "json":
		rh.Success(c, result, "Export completed")
	case "markdown", "md", "txt":
		rh.FileResponse(c, result.Content, filename, "text/plain; charset=utf-8")
	case "html":
		rh.FileResponse(c, result.Content, filename, "text/html; charset=utf-8")
	case "csv":
		rh.FileResponse(c, result.Content, filename, "text/csv; charset=utf-8")
	case "ics":
		rh.FileResponse(c, result.Content, filename, "text/calendar; charset=utf-8")
	default:
		rh.Success(c, result, "Export completed")
	}
}

func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

func (rh *ResponseHelper) resourceNotFoundCode(resource string) string {
	switch resource {
	case "annotation":
		return ErrorAnnotationNotFound
	case "deck":
		return ErrorDeckNotFound
	case "card":
		return ErrorCardNotFound
	case "task":
		return ErrorTaskNotFound
	case "analysis":
		return ErrorAnalysisNotFound
	default:
		return ErrorNotFound
	}
}
