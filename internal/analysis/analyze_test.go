// internal/analysis/analyze_test.go
package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const joyfulText = "I love this beautiful sunny day! It fills me with joy and hope."

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"don't", "stop"}, Words("don't stop"))
	assert.Empty(t, Words("   "))
	assert.Empty(t, Words(""))
	assert.Len(t, Words(joyfulText), 13)
}

func TestSentences(t *testing.T) {
	sentences := Sentences("First one. Second one! Third?")
	require.Len(t, sentences, 3)
	assert.Equal(t, "First one.", sentences[0])
	assert.Equal(t, "Third?", sentences[2])

	// terminator optional at end of input
	assert.Len(t, Sentences("No terminator here"), 1)

	// spans without word characters are not sentences
	assert.Empty(t, Sentences("🙂"))
	assert.Empty(t, Sentences("..."))
	assert.Empty(t, Sentences(""))
}

func TestParagraphsFilterShortFragments(t *testing.T) {
	long := "This paragraph is comfortably longer than sixty characters in total length."
	text := "short\n\n" + long + "\n\nalso short"
	paragraphs := Paragraphs(text)
	require.Len(t, paragraphs, 1)
	assert.Equal(t, long, paragraphs[0])
}

func TestAnnotationSentences(t *testing.T) {
	text := "Tiny. This sentence is long enough to anchor an annotation. Also tiny."
	spans := AnnotationSentences(text)
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0], "long enough to anchor")
}

func TestSentimentPositiveExample(t *testing.T) {
	s := Sentiment(joyfulText)
	assert.Equal(t, "positive", s.Label)
	assert.InDelta(t, 1.109, s.Score, 0.0005)
	assert.Equal(t, 4, s.PositiveCount)
	assert.Equal(t, 0, s.NegativeCount)
}

func TestSentimentThresholds(t *testing.T) {
	neg := Sentiment("death despair gloom everywhere around the town square")
	assert.Equal(t, "negative", neg.Label)
	assert.Less(t, neg.Score, -0.15)

	neutral := Sentiment("the table stands in the corner of the room")
	assert.Equal(t, "neutral", neutral.Label)
	assert.Equal(t, 0.0, neutral.Score)
}

func TestSentimentEmptyInput(t *testing.T) {
	s := Sentiment("")
	assert.Equal(t, "neutral", s.Label)
	assert.Equal(t, 0.0, s.Score)
}

func TestEmotionsDominance(t *testing.T) {
	e := Emotions(joyfulText)
	assert.Equal(t, "joy", e.Primary)
	assert.Positive(t, e.Percentages["joy"])
	assert.Positive(t, e.Percentages["love"])
	assert.Zero(t, e.Percentages["anger"])
}

func TestEmotionsNoHits(t *testing.T) {
	e := Emotions("the table stands in the corner")
	assert.Equal(t, 0.0, e.Confidence)
	for _, name := range EmotionNames {
		assert.Zero(t, e.Percentages[name])
	}
}

func TestThemesEmptyForUnconfiguredKeywords(t *testing.T) {
	assert.Empty(t, Themes(Sentences(joyfulText)))
}

func TestThemesPriorityOrder(t *testing.T) {
	sentences := []string{
		"His father feared the danger ahead.",
		"The trial would decide if he was guilty.",
	}
	themes := Themes(sentences)
	assert.Equal(t, []string{"justice", "family", "fear"}, themes)
}

func TestDevicesKeepZeroCounts(t *testing.T) {
	counts := Devices("The wind whispers like a song, soft and golden.")
	for _, name := range DeviceNames {
		_, ok := counts[name]
		assert.True(t, ok, "missing device count %q", name)
	}
	assert.Positive(t, counts["simile"])
	assert.Positive(t, counts["personification"])
	assert.Positive(t, counts["imagery"])
}

func TestReadabilityDefaults(t *testing.T) {
	result := Analyze("🙂", "general")
	assert.Equal(t, "moderate", result.ReadingLevel)
	assert.Empty(t, result.KeyQuotes)
	assert.Empty(t, result.Sentences)
}

func TestKeyQuotesBoundedAndStable(t *testing.T) {
	text := "Joy and laughter filled the happy bright morning. " +
		"The table stood still. " +
		"Grief and sorrow followed the darkness of the lonely night. " +
		"He walked. " +
		"Love and hope and dreams carried them through the gentle dawn. " +
		"Fear and terror and dread haunted the shadows of the nightmare. " +
		"Wonder and awe struck the amazed crowd at the marvel."
	quotes := KeyQuotes(Sentences(text))
	assert.LessOrEqual(t, len(quotes), 5)
	assert.NotContains(t, quotes, "The table stood still.")
	assert.NotContains(t, quotes, "He walked.")
}

func TestKeyStatementsCap(t *testing.T) {
	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, "This is a claim about the text.")
	}
	assert.Len(t, KeyStatements(sentences), 6)
}

func TestStructureFlags(t *testing.T) {
	flags := Structure([]string{"I went home.", "But she stayed.", "They must be wrong."})
	assert.True(t, flags.HasNarration)
	assert.True(t, flags.HasConflict)
	assert.True(t, flags.HasJudgment)

	assert.Equal(t, Structure(nil), Structure([]string{}))
}

func TestStatsCounts(t *testing.T) {
	stats := Stats("One two three. Four five?")
	assert.Equal(t, 5, stats.WordCount)
	assert.Equal(t, 2, stats.SentenceCount)
	assert.Equal(t, 5, stats.UniqueWords)
	assert.Equal(t, 1.0, stats.LexicalDiversity)
	assert.Equal(t, 1, stats.QuestionCount)
	assert.Equal(t, 2.5, stats.AvgSentenceLength)
}

func TestPoeticStructure(t *testing.T) {
	poem := "The woods are lovely, dark and deep,\nBut I have promises to keep,\n\nAnd miles to go before I sleep,\nAnd miles to go before I sleep."
	ps := Poetic(poem)
	assert.Equal(t, 4, ps.LineCount)
	assert.Equal(t, 2, ps.StanzaCount)
	assert.Equal(t, 2.0, ps.AvgLinesPerStanza)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := Analyze(joyfulText, "general")
	b := Analyze(joyfulText, "general")

	assert.Equal(t, a.Sentiment, b.Sentiment)
	assert.Equal(t, a.Emotions, b.Emotions)
	assert.Equal(t, a.Themes, b.Themes)
	assert.Equal(t, a.Devices, b.Devices)
	assert.Equal(t, a.KeyQuotes, b.KeyQuotes)
	assert.Equal(t, a.ReadingLevel, b.ReadingLevel)
}

func TestAnalyzeEmotionalArcOnlyForLongTexts(t *testing.T) {
	assert.Nil(t, Analyze(joyfulText, "general").EmotionalArc)

	var sb []byte
	for i := 0; i < 260; i++ {
		sb = append(sb, "word "...)
	}
	long := Analyze(string(sb), "general")
	assert.NotEmpty(t, long.EmotionalArc)
	assert.Equal(t, 1, long.EmotionalArc[0].ChunkNumber)
}

func TestExtractTagsSymbolismExample(t *testing.T) {
	tags := ExtractTags("the broken clock on the wall")
	assert.NotEmpty(t, tags)
	assert.Contains(t, tags, "broken")
	assert.Contains(t, tags, "clock")
	assert.NotContains(t, tags, "the")
}

func TestExtractTagsWeighting(t *testing.T) {
	tags := ExtractTags(`Scout watched "the mad dog" stumble down the street near Maycomb`)
	require.NotEmpty(t, tags)
	// quoted phrase and proper nouns outrank plain words
	assert.Contains(t, tags[:3], "the mad dog")
	assert.Contains(t, tags, "scout")
	assert.LessOrEqual(t, len(tags), 6)
}

func TestRelevanceBounds(t *testing.T) {
	assert.Equal(t, 0.0, Relevance(""))
	r := Relevance("the broken clock on the wall")
	assert.Greater(t, r, 0.0)
	assert.LessOrEqual(t, r, 1.0)
}

func TestSubjectivityBands(t *testing.T) {
	objective := Subjectivity("The clock struck twelve. The door opened.")
	assert.Less(t, objective.Score, 0.3)
	assert.Contains(t, objective.Assessment, "objective")

	subjective := Subjectivity("I feel this is the most beautiful, wonderful thing I love.")
	assert.Greater(t, subjective.Score, 0.5)
}
