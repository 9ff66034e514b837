// internal/analysis/tags.go
package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const maxTags = 6

// tagStopwords are excluded from tag extraction.
var tagStopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "by": {}, "that": {}, "is": {},
	"are": {}, "it": {}, "as": {}, "this": {}, "be": {}, "or": {},
	"from": {}, "at": {}, "was": {}, "which": {},
}

var (
	quotedPhraseRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	properNounRe   = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
)

// ExtractTags ranks candidate keywords for an annotation anchor: quoted
// phrases and proper nouns weigh double, plain words of three or more
// characters weigh one. Top six by score, ties by first appearance.
func ExtractTags(text string) []string {
	scores := make(map[string]int)
	order := make(map[string]int)
	next := 0

	add := func(tag string, weight int) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, stop := tagStopwords[tag]; stop {
			return
		}
		if _, seen := scores[tag]; !seen {
			order[tag] = next
			next++
		}
		scores[tag] += weight
	}

	for _, m := range quotedPhraseRe.FindAllStringSubmatch(text, -1) {
		phrase := m[1]
		if phrase == "" {
			phrase = m[2]
		}
		add(phrase, 2)
	}
	for _, w := range Words(text) {
		if len(w) >= 3 {
			add(w, 1)
		}
	}
	for _, m := range properNounRe.FindAllString(text, -1) {
		add(m, 2)
	}

	tags := make([]string, 0, len(scores))
	for tag := range scores {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if scores[tags[i]] != scores[tags[j]] {
			return scores[tags[i]] > scores[tags[j]]
		}
		return order[tags[i]] < order[tags[j]]
	})

	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// Relevance estimates how substantive an anchor span is from lexical
// variety and length, bounded to [0,1].
func Relevance(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}
	score := float64(len(unique))/float64(len(words))*0.5 + float64(len(words))/100*0.5
	if score > 1 {
		score = 1
	}
	return math.Round(score*100) / 100
}
