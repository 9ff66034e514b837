// internal/models/analysis.go
package models

import "time"

// SentimentResult holds the polarity classification for one text.
type SentimentResult struct {
	Label         string  `json:"label"`
	Score         float64 `json:"score"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
}

// EmotionResult holds the keyword-bucket emotion distribution.
// Percentages are shares of total emotion-word hits (0-100), not of total words.
type EmotionResult struct {
	Primary     string             `json:"primary"`
	Confidence  float64            `json:"confidence"`
	Percentages map[string]float64 `json:"percentages"`
}

// ArcPoint is one chunk of the emotional arc.
type ArcPoint struct {
	Position       float64            `json:"position"`
	ChunkNumber    int                `json:"chunk_number"`
	PrimaryEmotion string             `json:"primary_emotion"`
	Emotions       map[string]float64 `json:"emotions"`
}

// TextStats holds basic statistics of the tokenized text.
type TextStats struct {
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	UniqueWords       int     `json:"unique_words"`
	AvgWordLength     float64 `json:"avg_word_length"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	LexicalDiversity  float64 `json:"lexical_diversity"`
	PunctuationCount  int     `json:"punctuation_count"`
	ExclamationCount  int     `json:"exclamation_count"`
	QuestionCount     int     `json:"question_count"`
}

// StructureFlags marks coarse narrative properties.
type StructureFlags struct {
	HasNarration bool `json:"has_narration"`
	HasConflict  bool `json:"has_conflict"`
	HasJudgment  bool `json:"has_judgment"`
}

// PoeticStructure describes line/stanza layout, computed for poem inputs.
type PoeticStructure struct {
	LineCount         int     `json:"line_count"`
	StanzaCount       int     `json:"stanza_count"`
	AvgLinesPerStanza float64 `json:"avg_lines_per_stanza"`
	AvgWordsPerLine   float64 `json:"avg_words_per_line"`
}

// SubjectivityResult estimates how opinionated the text is.
type SubjectivityResult struct {
	Score      float64 `json:"score"`
	Polarity   float64 `json:"polarity"`
	Assessment string  `json:"assessment"`
}

// AnalysisResult is the flat record of all derived features for one input text.
// Every field is a pure function of Text; repeated analysis is deterministic.
type AnalysisResult struct {
	Text      string   `json:"text"`
	TextType  string   `json:"text_type"`
	Words     []string `json:"words"`
	Sentences []string `json:"sentences"`

	Sentiment     SentimentResult    `json:"sentiment"`
	Emotions      EmotionResult      `json:"emotions"`
	EmotionalArc  []ArcPoint         `json:"emotional_arc,omitempty"`
	Themes        []string           `json:"themes"`
	Devices       map[string]int     `json:"literary_devices"`
	ReadingLevel  string             `json:"reading_level"`
	KeyQuotes     []string           `json:"key_quotes"`
	KeyStatements []string           `json:"key_statements"`
	Structure     StructureFlags     `json:"structure"`
	Stats         TextStats          `json:"stats"`
	Subjectivity  SubjectivityResult `json:"subjectivity"`
	Poetic        *PoeticStructure   `json:"poetic_structure,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}
