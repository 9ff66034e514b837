// internal/services/summary_service.go
package services

import (
	"encoding/csv"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Corphon/LitLensMCP/internal/analysis"
	apperrors "github.com/Corphon/LitLensMCP/internal/errors"
)

var summaryStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"his": true, "has": true, "have": true, "this": true, "that": true,
	"with": true, "they": true, "them": true, "were": true, "from": true,
	"which": true, "their": true, "would": true, "there": true, "been": true,
}

var (
	properNameRe  = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)?\b`)
	violenceRe    = regexp.MustCompile(`(?i)\b(kill|attack|fight|shot|wound|assault|violen\w*|murder)\b`)
	institutionRe = regexp.MustCompile(`(?i)\b(court|school|church|government|prison|jail|hospital|police)\b`)
)

// SummaryResult bundles the extractive summary outputs.
type SummaryResult struct {
	Summary      []string `json:"summary"`
	KeyPhrases   []string `json:"key_phrases"`
	Entities     []string `json:"entities,omitempty"`
	Institutions []string `json:"institutions,omitempty"`
	HasViolence  bool     `json:"has_violence"`
}

// SummaryService produces extractive summaries and word-frequency
// reports. Everything is pure computation over the input text.
type SummaryService struct{}

func NewSummaryService() *SummaryService {
	return &SummaryService{}
}

func normalizedContentWords(text string) []string {
	var out []string
	for _, word := range analysis.Words(text) {
		word = strings.ToLower(word)
		if len(word) >= 3 && !summaryStopwords[word] {
			out = append(out, word)
		}
	}
	return out
}

// Summarize scores each sentence by how many frequent content words it
// carries and returns the top maxSentences in original order.
func (s *SummaryService) Summarize(text string, maxSentences int) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	if maxSentences <= 0 {
		maxSentences = 3
	}

	sentences := analysis.Sentences(text)

	freq := make(map[string]int)
	for _, word := range normalizedContentWords(text) {
		freq[word]++
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, 0, len(sentences))
	for i, sentence := range sentences {
		score := 0
		for _, word := range normalizedContentWords(sentence) {
			score += freq[word]
		}
		ranked = append(ranked, scored{index: i, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if maxSentences > len(ranked) {
		maxSentences = len(ranked)
	}
	picked := ranked[:maxSentences]
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	summary := make([]string, 0, len(picked))
	for _, p := range picked {
		summary = append(summary, strings.TrimSpace(sentences[p.index]))
	}

	return &SummaryResult{
		Summary:      summary,
		KeyPhrases:   s.KeyPhrases(text, 5),
		Entities:     topEntities(text, 5),
		Institutions: matchSet(institutionRe, text, 5),
		HasViolence:  violenceRe.MatchString(text),
	}, nil
}

// KeyPhrases returns the most repeated two-word phrases of content words.
func (s *SummaryService) KeyPhrases(text string, max int) []string {
	words := normalizedContentWords(text)
	counts := make(map[string]int)
	for i := 0; i+1 < len(words); i++ {
		counts[words[i]+" "+words[i+1]]++
	}

	type pair struct {
		phrase string
		count  int
	}
	var pairs []pair
	for phrase, count := range counts {
		if count >= 2 {
			pairs = append(pairs, pair{phrase, count})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].phrase < pairs[j].phrase
	})

	if max > len(pairs) {
		max = len(pairs)
	}
	phrases := make([]string, 0, max)
	for _, p := range pairs[:max] {
		phrases = append(phrases, p.phrase)
	}
	return phrases
}

// WordFrequencyCSV renders the content-word frequency table as CSV,
// most frequent first.
func (s *SummaryService) WordFrequencyCSV(text string) (string, error) {
	freq := make(map[string]int)
	for _, word := range normalizedContentWords(text) {
		freq[word]++
	}

	type entry struct {
		word  string
		count int
	}
	entries := make([]entry, 0, len(freq))
	for word, count := range freq {
		entries = append(entries, entry{word, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].word < entries[j].word
	})

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Word", "Count"}); err != nil {
		return "", apperrors.NewProcessingError("writing CSV header", err)
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.word, strconv.Itoa(e.count)}); err != nil {
			return "", apperrors.NewProcessingError("writing CSV row", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", apperrors.NewProcessingError("flushing CSV", err)
	}
	return buf.String(), nil
}

// topEntities picks the most repeated capitalized names, skipping
// sentence-initial false positives by requiring two occurrences.
func topEntities(text string, max int) []string {
	counts := make(map[string]int)
	for _, match := range properNameRe.FindAllString(text, -1) {
		counts[match]++
	}

	type entry struct {
		name  string
		count int
	}
	var entries []entry
	for name, count := range counts {
		if count >= 2 {
			entries = append(entries, entry{name, count})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	if max > len(entries) {
		max = len(entries)
	}
	names := make([]string, 0, max)
	for _, e := range entries[:max] {
		names = append(names, e.name)
	}
	return names
}

func matchSet(re *regexp.Regexp, text string, max int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, match := range re.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
		if len(out) == max {
			break
		}
	}
	sort.Strings(out)
	return out
}
