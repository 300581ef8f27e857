// internal/workers/customer-service/analyze-issue/models.go
package analyzeissue

import "customer-service-workers/internal/models"

// CustomerData is the slice of the collection-stage output this worker reads.
type CustomerData struct {
	Profile models.CustomerProfile `json:"profile"`
}

type Input struct {
	CustomerID       string           `json:"customerId"`
	IssueDescription string           `json:"issueDescription"`
	Data             CustomerData     `json:"data"`
	PriorityOverride *models.Priority `json:"priorityOverride,omitempty"`
}

type Output struct {
	Step     string                `json:"step"`
	Analysis models.AnalysisResult `json:"analysis"`
	Status   string                `json:"status"`
}

const (
	StepName        = "analysis"
	StatusCompleted = "completed"
)
