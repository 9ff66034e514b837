// internal/analysis/themes.go
package analysis

import "regexp"

// themePattern ties a theme label to its sentence-level detector.
type themePattern struct {
	name string
	re   *regexp.Regexp
}

// themePatterns is a priority list, not a ranking: a theme is emitted if ANY
// sentence matches, and output order always follows this list.
var themePatterns = []themePattern{
	{"justice", regexp.MustCompile(`(?i)\b(law|court|trial|judge|guilty)\b`)},
	{"race", regexp.MustCompile(`(?i)\b(race|black|white|colored)\b`)},
	{"family", regexp.MustCompile(`(?i)\b(father|mother|child|family)\b`)},
	{"fear", regexp.MustCompile(`(?i)\b(fear|afraid|danger)\b`)},
}

// Themes flags each configured theme present in any sentence, emitted in
// fixed priority order.
func Themes(sentences []string) []string {
	themes := make([]string, 0, 4)
	for _, tp := range themePatterns {
		for _, s := range sentences {
			if tp.re.MatchString(s) {
				themes = append(themes, tp.name)
				break
			}
		}
	}
	return themes
}
