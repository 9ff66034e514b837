// internal/analysis/structure.go
package analysis

import (
	"regexp"

	"github.com/Corphon/LitLensMCP/internal/models"
)

const maxKeyStatements = 6

var (
	narrationRe = regexp.MustCompile(`(?i)\b(I|he|she|they)\b`)
	conflictRe  = regexp.MustCompile(`(?i)\b(but|however|yet|although)\b`)
	judgmentRe  = regexp.MustCompile(`(?i)\b(should|must|guilty|innocent|wrong|right)\b`)
	claimRe     = regexp.MustCompile(`(?i)\b(is|was|means|shows|proves|because)\b`)
)

// Structure flags coarse narrative properties across all sentences.
func Structure(sentences []string) models.StructureFlags {
	var flags models.StructureFlags
	for _, s := range sentences {
		if narrationRe.MatchString(s) {
			flags.HasNarration = true
		}
		if conflictRe.MatchString(s) {
			flags.HasConflict = true
		}
		if judgmentRe.MatchString(s) {
			flags.HasJudgment = true
		}
	}
	return flags
}

// KeyStatements returns the first six sentences that assert something
// (copulas, causal markers, "shows"/"proves").
func KeyStatements(sentences []string) []string {
	var statements []string
	for _, s := range sentences {
		if claimRe.MatchString(s) {
			statements = append(statements, s)
			if len(statements) == maxKeyStatements {
				break
			}
		}
	}
	return statements
}
