// internal/models/export.go
package models

import "time"

// ExportResult wraps rendered export content for download responses.
type ExportResult struct {
	Format      string    `json:"format"`
	Content     string    `json:"content"`
	FilePath    string    `json:"file_path,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
