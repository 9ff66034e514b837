// internal/models/annotation.go
package models

// Annotation categories form a closed set.
const (
	CategoryInsight    = "insight"
	CategoryQuestion   = "question"
	CategoryVocabulary = "vocabulary"
	CategoryTechnique  = "technique"
	CategoryTheme      = "theme"
	CategoryCharacter  = "character"
	CategorySymbolism  = "symbolism"
	CategoryCustom     = "custom"
)

// AnnotationCategories lists all valid categories in display order.
var AnnotationCategories = []string{
	CategoryInsight,
	CategoryQuestion,
	CategoryVocabulary,
	CategoryTechnique,
	CategoryTheme,
	CategoryCharacter,
	CategorySymbolism,
	CategoryCustom,
}

// CategoryColors is the fixed category -> highlight color lookup.
var CategoryColors = map[string]string{
	CategoryInsight:    "#FFE5B4",
	CategoryQuestion:   "#B4E5FF",
	CategoryVocabulary: "#D4B4FF",
	CategoryTechnique:  "#B4FFD4",
	CategoryTheme:      "#FFB4B4",
	CategoryCharacter:  "#FFFFB4",
	CategorySymbolism:  "#FFB4D4",
	CategoryCustom:     "#E8E8E8",
}

// EditSnapshot preserves the pre-mutation state of an annotation.
type EditSnapshot struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// AnnotationSentiment is the structured sentiment attached to an annotation.
type AnnotationSentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Annotation is a user- or system-authored note anchored to a text span.
type Annotation struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Category  string              `json:"category"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Timestamp string              `json:"timestamp"`
	Tags      []string            `json:"tags"`
	Relevance float64             `json:"relevance"`
	Sentiment AnnotationSentiment `json:"sentiment"`
	Color     string              `json:"color"`
	Generated bool                `json:"generated,omitempty"`

	// EditHistory is append-only; entries are snapshots taken immediately
	// before each update.
	EditHistory []EditSnapshot `json:"edit_history"`
}

// AnnotationStats summarizes the persisted collection.
type AnnotationStats struct {
	Total            int            `json:"total"`
	ByCategory       map[string]int `json:"by_category"`
	BySentiment      map[string]int `json:"by_sentiment"`
	AverageRelevance float64        `json:"average_relevance"`
}

// AnnotationQuery filters the collection; zero values mean "no filter".
type AnnotationQuery struct {
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Search   string `json:"search,omitempty"`
}
