// cmd/demo/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/Corphon/LitLensMCP/internal/config"
	"github.com/Corphon/LitLensMCP/internal/models"
	"github.com/Corphon/LitLensMCP/internal/services"
	"github.com/Corphon/LitLensMCP/internal/storage"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

const samplePassage = `It was a dark and fearful night in Maycomb. The family gathered in silence while the court prepared its judgment. Atticus spoke calmly, like a lighthouse in a storm, but the town's anger pressed against the windows. "You never really understand a person until you consider things from his point of view." The children listened, afraid and hopeful at once, because the verdict would change everything.`

var (
	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.FgYellow)
	value   = color.New(color.FgGreen)
	dim     = color.New(color.Faint)
)

func main() {
	heading.Println("LitLensMCP walkthrough")
	fmt.Println()

	baseConfig, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration failed: %v", err)
	}
	if err := utils.InitLogger(baseConfig.LogDir + "/demo.log"); err != nil {
		log.Printf("logger unavailable: %v", err)
	}
	utils.GetLogger().Enable(false)

	dataDir, err := os.MkdirTemp("", "litlens_demo_*")
	if err != nil {
		log.Fatalf("creating temp dir failed: %v", err)
	}
	defer os.RemoveAll(dataDir)

	fileStorage, err := storage.NewFileStorage(dataDir)
	if err != nil {
		log.Fatalf("initializing storage failed: %v", err)
	}

	analyzer := services.NewAnalyzerService(fileStorage)
	annotations := services.NewAnnotationService(fileStorage)
	qa := services.NewQAService(analyzer, services.NewEmptyLLMService())
	study := services.NewStudyService(fileStorage)
	summary := services.NewSummaryService()

	result := runAnalysis(analyzer)
	runAnnotations(annotations, result)
	runQA(qa)
	runSummary(summary)
	runStudy(study, result)
}

func runAnalysis(analyzer *services.AnalyzerService) *models.AnalysisResult {
	heading.Println("1. Text analysis")

	result, err := analyzer.Analyze(context.Background(), samplePassage, "prose")
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	printField("Sentiment", fmt.Sprintf("%s (%.2f)", result.Sentiment.Label, result.Sentiment.Score))
	printField("Primary emotion", result.Emotions.Primary)
	printField("Themes", strings.Join(result.Themes, ", "))
	printField("Reading level", result.ReadingLevel)
	printField("Words", fmt.Sprintf("%d", result.Stats.WordCount))
	if len(result.KeyQuotes) > 0 {
		printField("Key quote", result.KeyQuotes[0])
	}
	for device, count := range result.Devices {
		if count > 0 {
			printField("Device", fmt.Sprintf("%s x%d", device, count))
		}
	}
	fmt.Println()
	return result
}

func runAnnotations(annotations *services.AnnotationService, result *models.AnalysisResult) {
	heading.Println("2. Annotations")

	created, err := annotations.Create("like a lighthouse in a storm", "technique", "", "")
	if err != nil {
		log.Fatalf("creating annotation failed: %v", err)
	}
	printField("Created", created.Title)

	generated, err := annotations.GenerateFromAnalysis(result, 7)
	if err != nil {
		log.Printf("generation skipped: %v", err)
	} else {
		printField("Generated", fmt.Sprintf("%d annotations from analysis", len(generated)))
		for _, a := range generated {
			dim.Printf("    - [%s] %s\n", a.Category, a.Title)
		}
	}

	stats := annotations.Stats()
	printField("Total annotations", fmt.Sprintf("%d", stats.Total))
	fmt.Println()
}

func runQA(qa *services.QAService) {
	heading.Println("3. Questions")

	questions := []string{
		"What is the overall sentiment of this text?",
		"What themes does the text explore?",
		"How do the emotions change and evolve?",
	}

	for _, q := range questions {
		answer, err := qa.Answer(context.Background(), models.QARequest{Question: q})
		if err != nil {
			log.Printf("answering failed: %v", err)
			continue
		}
		label.Printf("  Q: %s\n", q)
		value.Printf("  A: %s\n", answer.Answer)
		dim.Printf("     (source: %s)\n", answer.Source)
	}
	fmt.Println()
}

func runSummary(summary *services.SummaryService) {
	heading.Println("4. Summary")

	result, err := summary.Summarize(samplePassage, 2)
	if err != nil {
		log.Fatalf("summarizing failed: %v", err)
	}
	for _, sentence := range result.Summary {
		value.Printf("  %s\n", sentence)
	}
	if len(result.Entities) > 0 {
		printField("Entities", strings.Join(result.Entities, ", "))
	}
	fmt.Println()
}

func runStudy(study *services.StudyService, result *models.AnalysisResult) {
	heading.Println("5. Flashcards")

	deck, err := study.BuildDeckFromAnalysis("walkthrough", result)
	if err != nil {
		log.Fatalf("building deck failed: %v", err)
	}
	printField("Deck", fmt.Sprintf("%d cards, %d questions", len(deck.Cards), len(deck.Questions)))

	due, err := study.DueCards("walkthrough")
	if err != nil {
		log.Fatalf("listing due cards failed: %v", err)
	}
	printField("Due now", fmt.Sprintf("%d", len(due)))

	if len(due) > 0 {
		card, err := study.ReviewCard("walkthrough", due[0].ID, true)
		if err != nil {
			log.Fatalf("review failed: %v", err)
		}
		label.Printf("  Reviewed: %s\n", card.Front)
		dim.Printf("    next review in %d day(s), easiness %.2f\n", card.IntervalDays, card.Easiness)
	}

	stats := study.Stats()
	printField("Cards reviewed", fmt.Sprintf("%d", stats.CardsReviewed))
	printField("Streak", fmt.Sprintf("%d day(s)", stats.Streak))
}

func printField(name, val string) {
	label.Printf("  %s: ", name)
	value.Println(val)
}
