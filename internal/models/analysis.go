// internal/models/analysis.go
package models

import "math"

// IssueClassification is the result of keyword-based issue categorization.
type IssueClassification struct {
	PrimaryCategory IssueCategory      `json:"primaryCategory"`
	Subcategory     string             `json:"subcategory"`
	Confidence      float64            `json:"confidence"`
	AllScores       map[string]float64 `json:"allScores,omitempty"`
}

// PriorityAssessment is the result of tier- and keyword-weighted scoring.
type PriorityAssessment struct {
	Level     Priority `json:"level"`
	Score     int      `json:"score"`
	Factors   []string `json:"factors"`
	SLATarget string   `json:"slaTarget"`
}

// SentimentAnalysis holds the rule-based sentiment signal.
type SentimentAnalysis struct {
	Sentiment  Sentiment      `json:"sentiment"`
	Confidence float64        `json:"confidence"`
	WordCounts map[string]int `json:"wordCounts"`
	Urgent     bool           `json:"urgent"`
}

// SolutionRecommendation is a category-templated action plan. Action lists
// are ordered and owned by the recommendation; builders must copy, never
// mutate shared template tables.
type SolutionRecommendation struct {
	Category                IssueCategory `json:"category"`
	Subcategory             string        `json:"subcategory"`
	ImmediateActions        []string      `json:"immediateActions"`
	ResolutionSteps         []string      `json:"resolutionSteps"`
	EscalationCriteria      string        `json:"escalationCriteria"`
	EstimatedResolutionTime string        `json:"estimatedResolutionTime"`
	RequiredPermissions     []string      `json:"requiredPermissions"`
	AdditionalBenefits      []string      `json:"additionalBenefits,omitempty"`
}

// AnalysisResult aggregates the complete issue analysis.
type AnalysisResult struct {
	IssueClassification IssueClassification    `json:"issueClassification"`
	Priority            PriorityAssessment     `json:"priority"`
	RecommendedSolution SolutionRecommendation `json:"recommendedSolution"`
	Sentiment           SentimentAnalysis      `json:"sentiment"`
	ConfidenceScore     float64                `json:"confidenceScore"`
}

// OverallConfidence combines classification confidence with priority
// assessment certainty, rounded to two decimals.
func OverallConfidence(classificationConfidence float64, priorityFactors int) float64 {
	priorityConfidence := math.Min(float64(priorityFactors)/3.0, 1.0)
	overall := (classificationConfidence + priorityConfidence) / 2.0
	return math.Round(overall*100) / 100
}
