// internal/analysis/devices.go
package analysis

import (
	"regexp"
	"strings"
)

// DeviceNames lists the tracked literary devices in fixed emission order.
var DeviceNames = []string{
	"repetition", "alliteration", "simile", "metaphor",
	"personification", "imagery", "symbolism", "rhyme",
}

var (
	simileRe          = regexp.MustCompile(`(?i)\blike (a|an|the)\b|\bas \w+ as\b`)
	metaphorRe        = regexp.MustCompile(`(?i)\b(is|was|are|were) (a|an|the)\b`)
	personificationRe = regexp.MustCompile(
		`(?i)\b(wind|sun|moon|sea|sky|night|death|time|shadow|tree|river)s? ` +
			`(whisper|sing|dance|smile|weep|laugh|sleep|breathe|speak|call|wait|watch)`)

	imageryWords = []string{
		"golden", "crimson", "silver", "shimmer", "glisten", "fragrant",
		"bitter", "sweet", "soft", "rough", "thunder", "whisper", "gleam",
		"misty", "radiant", "velvet",
	}
	symbolWords = []string{
		"light", "darkness", "shadow", "mirror", "door", "key", "rose",
		"cross", "crown", "chain", "bird", "serpent", "flame",
	}
)

// Devices counts heuristic markers for each literary device. Zero counts are
// retained in the map so consumers can distinguish "checked" from "absent".
func Devices(text string) map[string]int {
	counts := make(map[string]int, len(DeviceNames))
	for _, name := range DeviceNames {
		counts[name] = 0
	}

	lower := strings.ToLower(text)
	words := Words(lower)

	// repetition: distinct substantial words used three or more times
	freq := make(map[string]int)
	for _, w := range words {
		if len(w) >= 4 {
			freq[w]++
		}
	}
	for _, c := range freq {
		if c >= 3 {
			counts["repetition"]++
		}
	}

	// alliteration: consecutive word pairs sharing an initial letter
	for i := 1; i < len(words); i++ {
		if len(words[i]) > 2 && len(words[i-1]) > 2 && words[i][0] == words[i-1][0] {
			counts["alliteration"]++
		}
	}

	counts["simile"] = len(simileRe.FindAllString(text, -1))
	counts["metaphor"] = len(metaphorRe.FindAllString(text, -1))
	counts["personification"] = len(personificationRe.FindAllString(text, -1))

	for _, w := range imageryWords {
		counts["imagery"] += strings.Count(lower, w)
	}
	for _, w := range symbolWords {
		counts["symbolism"] += strings.Count(lower, w)
	}

	counts["rhyme"] = rhymeCues(text)

	return counts
}

// rhymeCues counts consecutive line pairs whose final words share a two
// character ending.
func rhymeCues(text string) int {
	lines := strings.Split(text, "\n")
	var endings []string
	for _, line := range lines {
		ws := Words(strings.ToLower(line))
		if len(ws) > 0 {
			endings = append(endings, ws[len(ws)-1])
		}
	}

	cues := 0
	for i := 1; i < len(endings); i++ {
		a, b := endings[i-1], endings[i]
		if len(a) >= 2 && len(b) >= 2 && a != b && a[len(a)-2:] == b[len(b)-2:] {
			cues++
		}
	}
	return cues
}
