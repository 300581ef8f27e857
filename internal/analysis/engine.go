// internal/analysis/engine.go

// Package analysis implements the rule-based text heuristics used by the
// analyze-issue worker: keyword classification, priority scoring, sentiment
// signals, and SLA lookup. All rule tables come from configuration.
package analysis

import (
	"fmt"
	"strings"

	"customer-service-workers/internal/common/config"
	"customer-service-workers/internal/models"
)

// Engine evaluates customer issue text against configured rule tables.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg config.HeuristicsConfig
}

func NewEngine(cfg config.HeuristicsConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs the full analysis pipeline over an issue description.
func (e *Engine) Analyze(description string, tier models.CustomerTier) models.AnalysisResult {
	classification := e.ClassifyIssue(description)
	priority := e.AssessPriority(description, tier)
	solution := e.RecommendSolution(classification, tier)
	sentiment := e.AnalyzeSentiment(description)

	return models.AnalysisResult{
		IssueClassification: classification,
		Priority:            priority,
		RecommendedSolution: solution,
		Sentiment:           sentiment,
		ConfidenceScore:     models.OverallConfidence(classification.Confidence, len(priority.Factors)),
	}
}

// ClassifyIssue scores the description against each category's keyword list.
// A word matches when any keyword is a substring of it; confidence is the
// matched-word fraction. Ties resolve in fixed category declaration order.
func (e *Engine) ClassifyIssue(description string) models.IssueClassification {
	lower := strings.ToLower(description)
	words := strings.Fields(lower)
	totalWords := len(words)

	allScores := make(map[string]float64, len(models.IssueCategories))
	best := models.IssueCategories[0]
	bestScore := -1.0

	for _, category := range models.IssueCategories {
		keywords := e.cfg.CategoryKeywords[string(category)]
		matches := 0
		for _, word := range words {
			for _, keyword := range keywords {
				if strings.Contains(word, keyword) {
					matches++
					break
				}
			}
		}

		score := 0.0
		if totalWords > 0 {
			score = float64(matches) / float64(totalWords)
		}
		allScores[string(category)] = score

		if score > bestScore {
			best = category
			bestScore = score
		}
	}

	return models.IssueClassification{
		PrimaryCategory: best,
		Subcategory:     e.Subcategory(best, description),
		Confidence:      allScores[string(best)],
		AllScores:       allScores,
	}
}

// Subcategory picks the first configured subcategory keyword found in the
// description, falling back to "general".
func (e *Engine) Subcategory(category models.IssueCategory, description string) string {
	lower := strings.ToLower(description)
	for _, sub := range e.cfg.SubcategoryKeywords[string(category)] {
		if strings.Contains(lower, sub) {
			return sub
		}
	}
	return "general"
}

// AssessPriority scores the issue from the customer tier weight plus weighted
// urgency and business-impact keyword hits, then maps the score to a level.
func (e *Engine) AssessPriority(description string, tier models.CustomerTier) models.PriorityAssessment {
	lower := strings.ToLower(description)

	score := e.tierWeight(tier)
	factors := []string{e.tierFactor(tier)}

	urgencyMatches := countPresent(lower, e.cfg.UrgencyKeywords)
	score += urgencyMatches * e.cfg.UrgencyWeight
	if urgencyMatches > 0 {
		factors = append(factors, fmt.Sprintf("Urgency indicators: %d", urgencyMatches))
	}

	impactMatches := countPresent(lower, e.cfg.ImpactKeywords)
	score += impactMatches * e.cfg.ImpactWeight
	if impactMatches > 0 {
		factors = append(factors, fmt.Sprintf("Business impact indicators: %d", impactMatches))
	}

	level := e.levelForScore(score)

	return models.PriorityAssessment{
		Level:     level,
		Score:     score,
		Factors:   factors,
		SLATarget: e.SLATarget(level, tier),
	}
}

func (e *Engine) tierWeight(tier models.CustomerTier) int {
	if w, ok := e.cfg.TierWeights[string(tier)]; ok {
		return w
	}
	return e.cfg.TierWeights[string(models.TierStandard)]
}

func (e *Engine) tierFactor(tier models.CustomerTier) string {
	switch tier {
	case models.TierEnterprise:
		return "Enterprise customer"
	case models.TierPremium:
		return "Premium customer"
	default:
		return "Standard customer"
	}
}

func (e *Engine) levelForScore(score int) models.Priority {
	switch {
	case score >= e.cfg.CriticalThreshold:
		return models.PriorityCritical
	case score >= e.cfg.HighThreshold:
		return models.PriorityHigh
	case score >= e.cfg.MediumThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// countPresent counts keywords that occur anywhere in the text. Each keyword
// contributes at most once regardless of repetition.
func countPresent(lowerText string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(lowerText, keyword) {
			count++
		}
	}
	return count
}

// AnalyzeSentiment counts positive, negative, and neutral lexicon hits. Zero
// sentiment words yields neutral with confidence 0.5; ties default to neutral.
func (e *Engine) AnalyzeSentiment(text string) models.SentimentAnalysis {
	words := strings.Fields(strings.ToLower(text))

	positive := countMatching(words, e.cfg.PositiveWords)
	negative := countMatching(words, e.cfg.NegativeWords)
	neutral := countMatching(words, e.cfg.NeutralWords)

	total := positive + negative + neutral

	sentiment := models.SentimentNeutral
	confidence := 0.5

	if total > 0 {
		switch {
		case negative > positive:
			sentiment = models.SentimentNegative
			confidence = float64(negative) / float64(total)
		case positive > negative:
			sentiment = models.SentimentPositive
			confidence = float64(positive) / float64(total)
		default:
			if neutral > 0 {
				confidence = float64(neutral) / float64(total)
			}
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return models.SentimentAnalysis{
		Sentiment:  sentiment,
		Confidence: confidence,
		WordCounts: map[string]int{
			"positive": positive,
			"negative": negative,
			"neutral":  neutral,
		},
		Urgent: negative > e.cfg.UrgentNegativeCount,
	}
}

// countMatching counts words containing any of the lexicon entries.
func countMatching(words, lexicon []string) int {
	count := 0
	for _, word := range words {
		for _, entry := range lexicon {
			if strings.Contains(word, entry) {
				count++
				break
			}
		}
	}
	return count
}

// SLATarget resolves the committed resolution window for a priority level and
// customer tier. Pairs absent from the matrix fall back to the default SLA.
func (e *Engine) SLATarget(level models.Priority, tier models.CustomerTier) string {
	if byTier, ok := e.cfg.SLAMatrix[string(level)]; ok {
		if sla, ok := byTier[string(tier)]; ok {
			return sla
		}
	}
	return e.cfg.DefaultSLA
}
