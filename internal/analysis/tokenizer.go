// internal/analysis/tokenizer.go
package analysis

import (
	"regexp"
	"strings"
)

const (
	minParagraphLen          = 60
	minAnnotationSentenceLen = 25
)

var (
	wordRe      = regexp.MustCompile(`[\w']+`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]*`)
	wordCharRe  = regexp.MustCompile(`\w`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

// Words tokenizes text into word tokens (word characters plus apostrophes).
// Whitespace-only input yields an empty slice.
func Words(text string) []string {
	matches := wordRe.FindAllString(text, -1)
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.Trim(m, "'")
		if m != "" {
			words = append(words, m)
		}
	}
	return words
}

// Sentences splits text into sentence-like spans terminated by '.', '!' or
// '?'. The terminator is optional at end of input. Spans with no word
// characters (bare punctuation, emoji) are not sentences.
func Sentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m != "" && wordCharRe.MatchString(m) {
			sentences = append(sentences, m)
		}
	}
	return sentences
}

// Paragraphs splits on blank lines and drops fragments too short to carry
// analyzable content.
func Paragraphs(text string) []string {
	parts := paragraphRe.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > minParagraphLen {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// AnnotationSentences splits on whitespace following a sentence terminator
// and keeps only spans long enough to anchor an annotation.
func AnnotationSentences(text string) []string {
	var sentences []string
	var sb strings.Builder
	runes := []rune(text)

	flush := func() {
		s := strings.TrimSpace(sb.String())
		if len(s) > minAnnotationSentenceLen {
			sentences = append(sentences, s)
		}
		sb.Reset()
	}

	for i := 0; i < len(runes); i++ {
		sb.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			// consume trailing terminators, then split on whitespace
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
				sb.WriteRune(runes[i])
			}
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' || runes[i+1] == '\r') {
				flush()
			}
		}
	}
	flush()
	return sentences
}
