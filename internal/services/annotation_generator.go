// internal/services/annotation_generator.go
package services

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/Corphon/LitLensMCP/internal/models"
)

// Sentence-level narrative event patterns. Checked in order; the first
// match wins.
var (
	injuryRe        = regexp.MustCompile(`(?i)\b(got|had|broke|broken|injured|hurt|wounded|damaged|fractured)\s+(his|her|their|my|your)\s+(\w+)`)
	severityRe      = regexp.MustCompile(`(?i)\b(badly|severely)\b`)
	ageRe           = regexp.MustCompile(`(?i)\bwhen (he|she|they|i) (was|were) (nearly |almost |about )?(\w+)`)
	introductionRe  = regexp.MustCompile(`(?i)\bmy (brother|sister|father|mother|friend) (\w+)`)
	habitualRe      = regexp.MustCompile(`(?i)\b(would|used to|always|never|often|sometimes|usually) (\w+)`)
	retrospectionRe = regexp.MustCompile(`(?i)\b(remembered|recalled|forgot|realized|understood|knew) (that )?(.{10,})`)
	settingRe       = regexp.MustCompile(`(?i)\b(in|at|near|around) (the |a |an )?(\w+)(,| where| that)`)
	placeWordRe     = regexp.MustCompile(`(?i)\b(town|city|house|home|place|county|state|country)\b`)

	retrospectiveVoiceRe = regexp.MustCompile(`(?i)\b(when i was|i remember|back then|at that time|those days|in those years)\b`)
	thirdLimitedRe       = regexp.MustCompile(`(?i)\b(he|she) (thought|felt|wondered|believed|knew|realized)\b`)
	firstPersonRe        = regexp.MustCompile(`(?i)\bi\b`)
	pastTenseRe          = regexp.MustCompile(`(?i)\b(was|were|had)\b`)

	conflictHintRe = regexp.MustCompile(`(?i)\b(but|however|until|except|although|despite|problem|trouble|difficult|wrong|broken|hurt|conflict)\b`)
	mysteryHintRe  = regexp.MustCompile(`(?i)\b(wondered|mystery|question|unclear|uncertain|strange|curious|odd|unusual)\b`)
	changeHintRe   = regexp.MustCompile(`(?i)\b(changed|became|turned|transformed|different|never the same|after that|from then on)\b`)

	dialogueRe      = regexp.MustCompile(`"[^"]+"`)
	questionOpenRe  = regexp.MustCompile(`(?i)^(shall|should|must|why|how|what|who|when|where)\b`)
	contrastTurnRe  = regexp.MustCompile(`(?i)\b(but|yet|however|although|despite|though|whereas)\b`)
	capitalizedRe   = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
	pronounSubjRe   = regexp.MustCompile(`(?i)\b(he|she|they|it|the narrator|the protagonist)\b`)
	narrativeVerbRe = regexp.MustCompile(`(?i)\b(made|said|went|became|realized|discovered|fought|loved|hated|created|destroyed|changed|decided|chose|refused|accepted|ran|walked|left|stayed|died|lived|tried|wanted|needed|saw|heard|felt|thought|believed|hoped|feared)\b`)
)

type narrativeEvent struct {
	kind         string
	what         string
	significance string
}

// extractNarrativeEvent reads one sentence for the concrete story
// events that carry the most analytical weight.
func extractNarrativeEvent(sentence string) *narrativeEvent {
	if m := injuryRe.FindStringSubmatch(sentence); m != nil {
		subject := extractSubject(sentence)
		what := subject + " suffered an injury to the " + m[3]
		if severityRe.MatchString(sentence) {
			what = subject + " suffered a severe injury to the " + m[3]
		}
		return &narrativeEvent{
			kind: "injury",
			what: what,
			significance: "Opening with a past injury signals that the story will explain how and why it happened. " +
				"Revealing the outcome first creates dramatic irony: the reader knows something the characters living through the events do not.",
		}
	}

	if m := ageRe.FindStringSubmatch(sentence); m != nil {
		subject := extractSubject(sentence)
		return &narrativeEvent{
			kind: "temporal setting",
			what: subject + " was " + m[4] + " when the story begins",
			significance: "Age markers establish perspective and signal coming-of-age themes. " +
				"A narrator on the edge of adolescence is in a liminal space, and liminal spaces in fiction usually mean crisis or change.",
		}
	}

	if m := introductionRe.FindStringSubmatch(sentence); m != nil {
		return &narrativeEvent{
			kind: "character introduction",
			what: m[2] + " is introduced as the narrator's " + strings.ToLower(m[1]),
			significance: "The way a character enters tells us their importance. Naming the relationship before the name " +
				"makes this an intimate family story with personal stakes, not a distant observation.",
		}
	}

	if m := habitualRe.FindStringSubmatch(sentence); m != nil {
		return &narrativeEvent{
			kind: "habitual action",
			what: "a recurring pattern around " + strings.ToLower(m[2]) + " is established",
			significance: "Habitual actions build the baseline of normal life against which disruption will stand out. " +
				"When a text says someone always or used to do something, it is setting up a pattern to be broken.",
		}
	}

	if m := retrospectionRe.FindStringSubmatch(sentence); m != nil {
		realized := strings.TrimSpace(strings.SplitN(m[3], ".", 2)[0])
		return &narrativeEvent{
			kind: "retrospective understanding",
			what: "the narrator looks back on knowing " + realized,
			significance: "Retrospective narration creates distance between past experience and present understanding. " +
				"The story is not just recounting events, it is processing them with hindsight.",
		}
	}

	if m := settingRe.FindStringSubmatch(sentence); m != nil && placeWordRe.MatchString(sentence) {
		return &narrativeEvent{
			kind: "setting",
			what: "establishes the setting in or around " + m[3],
			significance: "Settings shape what is possible and what is meaningful. " +
				"Ask how this particular place enables or constrains the action.",
		}
	}

	return nil
}

// narrativePosition classifies the narrating voice of a paragraph.
func narrativePosition(paragraph string) (title, explanation string, ok bool) {
	if retrospectiveVoiceRe.MatchString(paragraph) {
		return "Narrative Perspective: First-Person Retrospective",
			"The narrator looks back at events from a later point and already knows how things turned out. " +
				"The story runs on two timelines: the past being narrated and the present moment of narration.",
			true
	}
	if thirdLimitedRe.MatchString(paragraph) && !firstPersonRe.MatchString(paragraph) {
		return "Narrative Perspective: Third-Person Limited",
			"The narrator has access to one character's thoughts while staying outside them. " +
				"This creates intimacy with the character's inner life and distance at the same time.",
			true
	}
	if firstPersonRe.MatchString(paragraph) && !pastTenseRe.MatchString(paragraph) {
		return "Narrative Perspective: First-Person Present",
			"The narrator describes events as they unfold, without hindsight. " +
				"This creates immediacy and uncertainty: the narrator does not know what happens next, and neither does the reader.",
			true
	}
	return "", "", false
}

// plotSignificance reads a paragraph for the structural work it does.
func plotSignificance(paragraph string) (string, bool) {
	switch {
	case conflictHintRe.MatchString(paragraph):
		return "This passage introduces or hints at conflict, the problem that will drive the plot. " +
			"Narratives need disruption; something has to be at stake for there to be a story.", true
	case mysteryHintRe.MatchString(paragraph):
		return "A question or mystery is established here. Mysteries create narrative momentum: " +
			"they are promises to the reader that an answer is coming.", true
	case changeHintRe.MatchString(paragraph):
		return "A change is marked here. Change is the engine of plot; this signals a before/after boundary.", true
	}
	return "", false
}

// scholarlyNote builds the sentence-level annotation: narrative events
// first, then dialogue, rhetorical questions, contrasts, plain actions,
// and a generic detail note as the floor.
func scholarlyNote(sentence string) (category, title, content string) {
	if event := extractNarrativeEvent(sentence); event != nil {
		return models.CategoryInsight, titleCase(event.kind), event.what + ". " + event.significance
	}

	if dialogueRe.MatchString(sentence) {
		subject := extractSubject(sentence)
		return models.CategoryTechnique, "Dialogue",
			subject + " speaks here. Dialogue reveals character through what is said and how, advances plot, " +
				"and creates voice. Pay attention to what is implied and what is avoided."
	}

	trimmed := strings.TrimSpace(sentence)
	if strings.HasSuffix(trimmed, "?") && questionOpenRe.MatchString(trimmed) {
		return models.CategoryTechnique, "Question",
			"This question creates tension or frames an argument. Questions make readers active participants; " +
				"even rhetorical ones guide thought and invite reflection."
	}

	if contrastTurnRe.MatchString(sentence) {
		return models.CategoryTechnique, "Contrast",
			"A shift occurs here: the text moves from one position to another, complicating what came before. " +
				"The turn signals that things are more complex than they first appeared."
	}

	subject := extractSubject(sentence)
	if action := narrativeVerbRe.FindString(sentence); subject != "The text" && action != "" {
		verb := strings.ToLower(action)
		return models.CategoryCharacter, "Action: " + subject + " " + verb,
			subject + " " + verb + " here. Actions reveal character and have consequences. " +
				"Ask why " + subject + " does this and what it says about their priorities or fears."
	}

	return models.CategoryInsight, "Detail",
		"This sentence contributes information or atmosphere. Small details establish tone, " +
			"provide context, or plant seeds that matter later."
}

func extractSubject(sentence string) string {
	for _, name := range capitalizedRe.FindAllString(sentence, -1) {
		if !sentenceOpenerWord(name) {
			return name
		}
	}
	if pronoun := pronounSubjRe.FindString(sentence); pronoun != "" {
		return titleCase(strings.ToLower(pronoun))
	}
	return "The text"
}

// sentenceOpenerWord filters capitalized words that are common sentence
// starters rather than names.
func sentenceOpenerWord(word string) bool {
	switch strings.ToLower(word) {
	case "the", "and", "but", "when", "then", "after", "before", "his", "her", "they", "she", "there", "this", "that", "these", "those", "what", "where", "while", "with":
		return true
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var deviceNotes = map[string]string{
	"repetition":      "Repeated words or phrases build rhythm and insistence; what the text repeats, it wants remembered.",
	"alliteration":    "Repeated initial sounds bind words together and draw the ear to the phrase.",
	"simile":          "An explicit comparison invites the reader to hold two images at once; ask what the comparison values.",
	"metaphor":        "The text asserts one thing is another, importing a whole field of associations.",
	"personification": "Giving human action to the nonhuman makes the world an actor in the story.",
	"imagery":         "Sensory language puts the reader inside the scene rather than telling them about it.",
	"symbolism":       "A concrete object carries meaning beyond itself; trace where it recurs.",
	"rhyme":           "Sound patterning marks the text as shaped and deliberate, slowing the reading ear.",
}

// Style variation applied when a nonzero seed is supplied. Seed zero
// keeps the canonical formal phrasing.
var styleTransitions = []string{
	"Worth pausing on here. ",
	"A moment to note. ",
	"Keep this in view. ",
	"This deserves a second read. ",
	"Mark this spot. ",
}

func applyStyle(rng *rand.Rand, content string) string {
	if rng == nil {
		return content
	}
	return styleTransitions[rng.Intn(len(styleTransitions))] + content
}
