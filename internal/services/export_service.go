// internal/services/export_service.go
package services

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/storage"
)

// ExportService renders analyses, annotations and the study calendar
// into portable formats and writes the rendered file under exports/.
type ExportService struct {
	fileStorage *storage.FileStorage
	analyzer    *AnalyzerService
	annotations *AnnotationService
	study       *StudyService
}

func NewExportService(fileStorage *storage.FileStorage, analyzer *AnalyzerService, annotations *AnnotationService, study *StudyService) *ExportService {
	return &ExportService{
		fileStorage: fileStorage,
		analyzer:    analyzer,
		annotations: annotations,
		study:       study,
	}
}

func (s *ExportService) finish(format, extension, content string) (*models.ExportResult, error) {
	now := time.Now()
	filename := fmt.Sprintf("export_%s.%s", now.Format("20060102_150405"), extension)
	if err := s.fileStorage.SaveTextFile("exports", filename, []byte(content)); err != nil {
		return nil, apperrors.NewStorageError("writing export file", err)
	}

	return &models.ExportResult{
		Format:      format,
		Content:     content,
		FilePath:    "exports/" + filename,
		GeneratedAt: now,
	}, nil
}

// ExportAnalysis renders the last analysis as json, markdown, or html.
func (s *ExportService) ExportAnalysis(format string) (*models.ExportResult, error) {
	result := s.analyzer.LastAnalysis()
	if result == nil {
		return nil, apperrors.NewValidationError("Please analyze some text first", nil)
	}

	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, apperrors.NewProcessingError("serializing analysis", err)
		}
		return s.finish("json", "json", string(data))
	case "markdown", "md":
		return s.finish("markdown", "md", renderAnalysisMarkdown(result))
	case "html":
		return s.finish("html", "html", renderAnalysisHTML(result))
	default:
		return nil, apperrors.NewValidationError("unsupported export format: "+format, nil)
	}
}

// ExportAnnotations renders the annotation collection as json or csv.
func (s *ExportService) ExportAnnotations(format string) (*models.ExportResult, error) {
	switch strings.ToLower(format) {
	case "json":
		content, err := s.annotations.ExportJSON()
		if err != nil {
			return nil, err
		}
		return s.finish("json", "json", content)
	case "csv":
		content, err := s.annotations.ExportCSV()
		if err != nil {
			return nil, err
		}
		return s.finish("csv", "csv", content)
	default:
		return nil, apperrors.NewValidationError("unsupported export format: "+format, nil)
	}
}

// ExportCalendar renders the study planner as an iCalendar file.
func (s *ExportService) ExportCalendar() (*models.ExportResult, error) {
	return s.finish("ics", "ics", s.study.ExportICS())
}

func renderAnalysisMarkdown(r *models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("# Text Analysis\n\n")
	fmt.Fprintf(&b, "Analyzed at %s.\n\n", r.AnalyzedAt.Format("2006-01-02 15:04"))

	b.WriteString("## Sentiment\n\n")
	fmt.Fprintf(&b, "- Label: **%s**\n- Score: %.3f\n- Positive markers: %d\n- Negative markers: %d\n\n",
		r.Sentiment.Label, r.Sentiment.Score, r.Sentiment.PositiveCount, r.Sentiment.NegativeCount)

	b.WriteString("## Emotions\n\n")
	if r.Emotions.Primary != "" {
		fmt.Fprintf(&b, "Primary: **%s** (confidence %.2f)\n\n", r.Emotions.Primary, r.Emotions.Confidence)
	}
	for _, name := range sortedKeys(r.Emotions.Percentages) {
		if r.Emotions.Percentages[name] > 0 {
			fmt.Fprintf(&b, "- %s: %.1f%%\n", name, r.Emotions.Percentages[name])
		}
	}
	b.WriteString("\n")

	b.WriteString("## Themes\n\n")
	if len(r.Themes) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		for _, theme := range r.Themes {
			fmt.Fprintf(&b, "- %s\n", theme)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Literary Devices\n\n")
	for _, name := range sortedIntKeys(r.Devices) {
		if r.Devices[name] > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", name, r.Devices[name])
		}
	}
	b.WriteString("\n")

	b.WriteString("## Key Quotes\n\n")
	for _, quote := range r.KeyQuotes {
		fmt.Fprintf(&b, "> %s\n\n", strings.TrimSpace(quote))
	}

	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- Words: %d\n- Sentences: %d\n- Unique words: %d\n- Reading level: %s\n",
		r.Stats.WordCount, r.Stats.SentenceCount, r.Stats.UniqueWords, r.ReadingLevel)

	return b.String()
}

func renderAnalysisHTML(r *models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Text Analysis</title>\n</head>\n<body>\n")
	b.WriteString("<h1>Text Analysis</h1>\n")

	fmt.Fprintf(&b, "<h2>Sentiment</h2>\n<p>%s (score %.3f)</p>\n",
		html.EscapeString(r.Sentiment.Label), r.Sentiment.Score)

	b.WriteString("<h2>Emotions</h2>\n<ul>\n")
	for _, name := range sortedKeys(r.Emotions.Percentages) {
		if r.Emotions.Percentages[name] > 0 {
			fmt.Fprintf(&b, "<li>%s: %.1f%%</li>\n", html.EscapeString(name), r.Emotions.Percentages[name])
		}
	}
	b.WriteString("</ul>\n")

	b.WriteString("<h2>Themes</h2>\n<ul>\n")
	for _, theme := range r.Themes {
		fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(theme))
	}
	b.WriteString("</ul>\n")

	b.WriteString("<h2>Key Quotes</h2>\n")
	for _, quote := range r.KeyQuotes {
		fmt.Fprintf(&b, "<blockquote>%s</blockquote>\n", html.EscapeString(strings.TrimSpace(quote)))
	}

	fmt.Fprintf(&b, "<h2>Statistics</h2>\n<p>%d words, %d sentences, reading level %s.</p>\n",
		r.Stats.WordCount, r.Stats.SentenceCount, html.EscapeString(r.ReadingLevel))

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
