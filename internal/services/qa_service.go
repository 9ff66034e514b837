// internal/services/qa_service.go
package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

// Keyword groups for trained question patterns. A question matching at
// least two keywords of a group is answered by that group's responder.
var trainingPatterns = map[string][]string{
	"emotionalChange": {"how does", "emotion", "change", "evolve", "shift", "transform", "progress"},
	"meaning":         {"what does", "mean", "symbolize", "represent", "signify", "convey"},
	"style":           {"style", "write", "writing", "technique", "craft", "approach"},
	"comparison":      {"compare", "contrast", "difference", "similar", "versus", "vs"},
	"effectiveness":   {"effective", "powerful", "impact", "successful", "work"},
	"audience":        {"who", "audience", "reader", "for whom"},
	"purpose":         {"why", "purpose", "intent", "goal", "reason"},
	"structure":       {"structure", "organize", "arrange", "flow", "sequence"},
}

var (
	qualityFallbackRe        = regexp.MustCompile(`(?i)\b(good|bad|quality|well.written)\b`)
	sentimentFallbackRe      = regexp.MustCompile(`(?i)\b(positive|negative|happy|sad|dark|light)\b`)
	recommendationFallbackRe = regexp.MustCompile(`(?i)\b(should|recommend|worth|suggest)\b`)
	understandingFallbackRe  = regexp.MustCompile(`(?i)\b(understand|explain|confus|clarify|help)\b`)
)

// QAService answers questions about the most recently analyzed text.
// Answers come from trained patterns, keyword heuristics, or optionally
// the configured LLM provider.
type QAService struct {
	analyzer *AnalyzerService
	llm      *LLMService
}

func NewQAService(analyzer *AnalyzerService, llmService *LLMService) *QAService {
	return &QAService{analyzer: analyzer, llm: llmService}
}

// Answer resolves a question against the last analysis. With UseLLM set
// and a ready provider, the question goes to the LLM; the rule engine
// is the fallback either way.
func (s *QAService) Answer(ctx context.Context, req models.QARequest) (*models.QAAnswer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperrors.NewValidationError("question is required", nil)
	}

	result := s.analyzer.LastAnalysis()
	if result == nil {
		return nil, apperrors.NewValidationError("Please analyze some text first", nil)
	}

	if req.UseLLM && s.llm != nil && s.llm.IsReady() {
		answer, err := s.llm.AnswerQuestion(ctx, result.Text, question)
		if err == nil {
			return &models.QAAnswer{Question: question, Answer: answer, Source: "llm"}, nil
		}
		utils.GetLogger().Warnf("LLM answer failed, falling back to rules: %v", err)
	}

	answer, source, pattern := s.answerWithRules(question, result)
	return &models.QAAnswer{Question: question, Answer: answer, Source: source, Pattern: pattern}, nil
}

func (s *QAService) answerWithRules(question string, result *models.AnalysisResult) (answer, source, pattern string) {
	q := strings.ToLower(question)

	if name, ok := bestTrainedPattern(q); ok {
		return s.trainedAnswer(name, result), "trained", name
	}

	if answer, ok := s.heuristicAnswer(q, result); ok {
		return answer, "heuristic", ""
	}

	return s.fallbackAnswer(q, result), "fallback", ""
}

// bestTrainedPattern scores each group by keyword containment and picks
// the highest scorer when it reaches two hits. Ties break alphabetically
// so answers stay deterministic.
func bestTrainedPattern(q string) (string, bool) {
	names := make([]string, 0, len(trainingPatterns))
	for name := range trainingPatterns {
		names = append(names, name)
	}
	sort.Strings(names)

	bestName, bestScore := "", 0
	for _, name := range names {
		score := 0
		for _, keyword := range trainingPatterns[name] {
			if strings.Contains(q, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestName, bestScore = name, score
		}
	}

	if bestScore >= 2 {
		return bestName, true
	}
	return "", false
}

func (s *QAService) trainedAnswer(pattern string, r *models.AnalysisResult) string {
	switch pattern {
	case "emotionalChange":
		return describeEmotionalArc(r)
	case "meaning":
		return describeMeaning(r)
	case "style":
		return describeStyle(r)
	case "comparison":
		return "Within this text, the strongest contrast is between its " +
			describeDominantContrast(r) + ". To compare against another text, analyze both and set their results side by side."
	case "effectiveness":
		return describeEffectiveness(r)
	case "audience":
		return describeAudience(r)
	case "purpose":
		return describePurpose(r)
	case "structure":
		return describeOrganization(r)
	default:
		return describeSummary(r)
	}
}

func (s *QAService) heuristicAnswer(q string, r *models.AnalysisResult) (string, bool) {
	has := func(keywords ...string) bool {
		for _, k := range keywords {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}

	switch {
	case has("style") && has("author", "writer"):
		return describeStyle(r), true
	case has("compare", "difference", "similar"):
		return "Comparison works best with two analyzed texts. Within this one, " +
			describeDominantContrast(r) + " pull in different directions.", true
	case has("genre"):
		return describeGenre(r), true
	case has("audience") || has("purpose"):
		return describeAudience(r) + " " + describePurpose(r), true
	case has("why") && has("author", "writer"):
		return describePurpose(r), true
	case has("sentiment", "tone") || strings.Contains(q, "overall feeling"):
		return describeSentiment(r), true
	case has("theme", "about", "topic"):
		return describeThemes(r), true
	case has("emotion", "feeling", "mood"):
		return describeEmotions(r), true
	case has("quote", "key", "memorable"):
		return describeQuotes(r), true
	case has("complex") || strings.Contains(q, "reading level"):
		return describeReadability(r), true
	case has("length", "statistic"):
		return describeStats(r), true
	case has("literary", "device", "technique"):
		return describeDevices(r), true
	case has("character", "who", "person"):
		return describeCharacters(r), true
	case has("summary") || strings.Contains(q, "main idea"):
		return describeSummary(r), true
	case has("lesson", "takeaway"):
		return describeLesson(r), true
	}
	return "", false
}

func (s *QAService) fallbackAnswer(q string, r *models.AnalysisResult) string {
	switch {
	case qualityFallbackRe.MatchString(q):
		return describeEffectiveness(r)
	case sentimentFallbackRe.MatchString(q):
		return describeSentiment(r)
	case recommendationFallbackRe.MatchString(q):
		return fmt.Sprintf("Based on its %s tone and %s reading level, this text suits readers "+
			"looking for %s material.", r.Sentiment.Label, r.ReadingLevel, r.ReadingLevel)
	case understandingFallbackRe.MatchString(q):
		return describeSummary(r) + " Ask about its themes, emotions, devices, or key quotes for more detail."
	default:
		return "I can discuss this text's sentiment, emotions, themes, literary devices, structure, " +
			"key quotes, and statistics. Try asking about one of those."
	}
}

// --- answer builders ---

func describeSentiment(r *models.AnalysisResult) string {
	label := r.Sentiment.Label
	if r.Sentiment.Score < -1 {
		label = "strongly negative"
	}
	return fmt.Sprintf("The overall sentiment is %s, with a score of %.2f "+
		"(%d positive and %d negative markers).",
		label, r.Sentiment.Score, r.Sentiment.PositiveCount, r.Sentiment.NegativeCount)
}

func describeEmotions(r *models.AnalysisResult) string {
	if r.Emotions.Primary == "" || r.Emotions.Confidence == 0 {
		return "No single emotion dominates this text; its emotional register is fairly even."
	}
	return fmt.Sprintf("The dominant emotion is %s (%.0f%% of detected emotional language). "+
		"The mix across the text: %s.",
		r.Emotions.Primary, r.Emotions.Confidence*100, formatPercentages(r.Emotions.Percentages))
}

func describeEmotionalArc(r *models.AnalysisResult) string {
	if len(r.EmotionalArc) < 2 {
		return "The text is too short to trace an emotional arc; it reads as one emotional unit. " +
			describeEmotions(r)
	}
	first := r.EmotionalArc[0].PrimaryEmotion
	last := r.EmotionalArc[len(r.EmotionalArc)-1].PrimaryEmotion
	if first == last {
		return fmt.Sprintf("The emotional register stays anchored in %s from start to finish, "+
			"across %d sections.", first, len(r.EmotionalArc))
	}
	return fmt.Sprintf("The emotional center shifts from %s at the opening to %s by the close, "+
		"across %d sections.", first, last, len(r.EmotionalArc))
}

func describeThemes(r *models.AnalysisResult) string {
	if len(r.Themes) == 0 {
		return "No recurring thematic pattern stands out; the text reads as situational rather than thematic."
	}
	return fmt.Sprintf("The text engages with these themes: %s. The most prominent is %s.",
		strings.Join(r.Themes, ", "), r.Themes[0])
}

func describeMeaning(r *models.AnalysisResult) string {
	base := describeThemes(r)
	if len(r.KeyStatements) > 0 {
		return base + fmt.Sprintf(" Its clearest claim: %q", strings.TrimSpace(r.KeyStatements[0]))
	}
	return base
}

func describeDevices(r *models.AnalysisResult) string {
	var present []string
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if r.Devices[name] > 0 {
			present = append(present, fmt.Sprintf("%s (%d)", name, r.Devices[name]))
		}
	}
	if len(present) == 0 {
		return "No marked literary devices were detected; the writing is fairly plain."
	}
	return "Detected literary devices: " + strings.Join(present, ", ") + "."
}

func describeStyle(r *models.AnalysisResult) string {
	return fmt.Sprintf("The writing averages %.1f words per sentence at a %s reading level. %s",
		r.Stats.AvgSentenceLength, r.ReadingLevel, describeDevices(r))
}

func describeQuotes(r *models.AnalysisResult) string {
	if len(r.KeyQuotes) == 0 {
		return "No sentence stood out strongly enough to flag as a key quote."
	}
	var b strings.Builder
	b.WriteString("The most striking passages:\n")
	for i, quote := range r.KeyQuotes {
		fmt.Fprintf(&b, "%d. %q\n", i+1, strings.TrimSpace(quote))
	}
	return strings.TrimSpace(b.String())
}

func describeReadability(r *models.AnalysisResult) string {
	return fmt.Sprintf("The reading level is %s: %.1f words per sentence and %.1f letters per word on average.",
		r.ReadingLevel, r.Stats.AvgSentenceLength, r.Stats.AvgWordLength)
}

func describeStats(r *models.AnalysisResult) string {
	return fmt.Sprintf("The text has %d words across %d sentences, with %d distinct words "+
		"(lexical diversity %.2f).",
		r.Stats.WordCount, r.Stats.SentenceCount, r.Stats.UniqueWords, r.Stats.LexicalDiversity)
}

func describeCharacters(r *models.AnalysisResult) string {
	if r.Structure.HasNarration {
		return "The text carries narrated action, so it centers on people doing and saying things. " +
			"Its dominant emotion, " + r.Emotions.Primary + ", colors how those figures come across."
	}
	return "The text reads as exposition rather than character-driven narrative; " +
		"no clear personal actors emerge from the surface patterns."
}

func describeSummary(r *models.AnalysisResult) string {
	parts := []string{
		fmt.Sprintf("This is a %s-sentiment text of %d words at a %s reading level.",
			r.Sentiment.Label, r.Stats.WordCount, r.ReadingLevel),
	}
	if len(r.Themes) > 0 {
		parts = append(parts, "It works through "+strings.Join(r.Themes, ", ")+".")
	}
	if len(r.KeyStatements) > 0 {
		parts = append(parts, fmt.Sprintf("A central statement: %q", strings.TrimSpace(r.KeyStatements[0])))
	}
	return strings.Join(parts, " ")
}

func describeLesson(r *models.AnalysisResult) string {
	if len(r.Themes) > 0 {
		return fmt.Sprintf("The takeaway circles its treatment of %s: follow what the text "+
			"rewards and punishes to see where it stands.", r.Themes[0])
	}
	return "Without a dominant theme, the takeaway lies in its tone: " + describeSentiment(r)
}

func describeGenre(r *models.AnalysisResult) string {
	switch {
	case r.TextType == "poem" || r.Poetic != nil:
		return "The text is laid out as verse, so it reads as poetry."
	case r.Structure.HasNarration && r.Structure.HasConflict:
		return "With narrated action and conflict, the text reads as narrative fiction."
	case r.Structure.HasJudgment:
		return "The prevalence of evaluative claims suggests argumentative or critical prose."
	default:
		return "The surface patterns point to descriptive or expository prose."
	}
}

func describeAudience(r *models.AnalysisResult) string {
	switch r.ReadingLevel {
	case "simple":
		return "Its short sentences and plain vocabulary suit a general or young readership."
	case "complex":
		return "Its long sentences and dense vocabulary target experienced, patient readers."
	default:
		return "Its moderate difficulty suits a broad adult readership."
	}
}

func describePurpose(r *models.AnalysisResult) string {
	switch {
	case r.Structure.HasJudgment:
		return "The text argues: it passes judgment and wants the reader persuaded."
	case r.Structure.HasConflict:
		return "The text dramatizes conflict, aiming to involve the reader in its stakes."
	case r.Sentiment.Label == "positive":
		return "Its warm register suggests the text means to celebrate or reassure."
	case r.Sentiment.Label == "negative":
		return "Its dark register suggests the text means to warn or unsettle."
	default:
		return "Its even register suggests the text means primarily to inform or describe."
	}
}

func describeOrganization(r *models.AnalysisResult) string {
	return fmt.Sprintf("The text runs %d sentences averaging %.1f words each. %s",
		r.Stats.SentenceCount, r.Stats.AvgSentenceLength, describeEmotionalArc(r))
}

func describeEffectiveness(r *models.AnalysisResult) string {
	signals := 0
	if len(r.KeyQuotes) > 0 {
		signals++
	}
	if len(r.Themes) > 0 {
		signals++
	}
	if r.Emotions.Confidence > 0.4 {
		signals++
	}
	switch {
	case signals >= 2:
		return "The text lands: it carries a clear emotional charge, memorable lines, and thematic focus."
	case signals == 1:
		return "The text is partially effective; one of its dimensions stands out but others stay flat."
	default:
		return "By surface measures the text is muted: little emotional charge and no standout passages."
	}
}

func describeDominantContrast(r *models.AnalysisResult) string {
	if r.Sentiment.PositiveCount > 0 && r.Sentiment.NegativeCount > 0 {
		return "positive and negative language"
	}
	if len(r.EmotionalArc) >= 2 {
		return "opening and closing emotional registers"
	}
	return "literal statements and figurative passages"
}

func formatPercentages(percentages map[string]float64) string {
	names := make([]string, 0, len(percentages))
	for name, pct := range percentages {
		if pct > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if percentages[names[i]] != percentages[names[j]] {
			return percentages[names[i]] > percentages[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", name, percentages[name]))
	}
	if len(parts) == 0 {
		return "no emotional language detected"
	}
	return strings.Join(parts, ", ")
}
