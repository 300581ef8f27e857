// internal/models/response.go
package models

// CustomerResponse is the rendered customer-facing reply.
type CustomerResponse struct {
	ResponseText           string        `json:"responseText"`
	Category               IssueCategory `json:"category"`
	PriorityLevel          Priority      `json:"priorityLevel"`
	SLACommitment          string        `json:"slaCommitment"`
	PersonalizationApplied bool          `json:"personalizationApplied"`
	SentimentAdjusted      bool          `json:"sentimentAdjusted"`
}

// InternalReport summarizes a processed interaction for tracking and
// analytics storage.
type InternalReport struct {
	ReportID        string                `json:"reportId"`
	Timestamp       string                `json:"timestamp"`
	CustomerInfo    ReportCustomerInfo    `json:"customerInfo"`
	IssueAnalysis   ReportIssueAnalysis   `json:"issueAnalysis"`
	ResolutionInfo  ReportResolutionInfo  `json:"resolutionInfo"`
	ResponseDetails ReportResponseDetails `json:"responseDetails"`

	// HumanInterventionRequired is raised for critical priority or
	// low-confidence analyses.
	HumanInterventionRequired bool `json:"humanInterventionRequired"`
}

type ReportCustomerInfo struct {
	CustomerID string       `json:"customerId"`
	Tier       CustomerTier `json:"tier"`
	Status     string       `json:"status"`
}

type ReportIssueAnalysis struct {
	Category        IssueCategory `json:"category"`
	Subcategory     string        `json:"subcategory"`
	Priority        Priority      `json:"priority"`
	ConfidenceScore float64       `json:"confidenceScore"`
	Sentiment       Sentiment     `json:"sentiment"`
}

type ReportResolutionInfo struct {
	SLATarget           string   `json:"slaTarget"`
	EstimatedResolution string   `json:"estimatedResolution"`
	RequiredPermissions []string `json:"requiredPermissions"`
	EscalationCriteria  string   `json:"escalationCriteria"`
}

type ReportResponseDetails struct {
	ResponseCategory       IssueCategory `json:"responseCategory"`
	PersonalizationApplied bool          `json:"personalizationApplied"`
	SentimentAdjusted      bool          `json:"sentimentAdjusted"`
}
