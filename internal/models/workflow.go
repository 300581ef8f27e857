// internal/models/workflow.go
package models

import "time"

// WorkflowContext carries identifiers through a single workflow run. It is
// created at workflow start and discarded after final persistence.
type WorkflowContext struct {
	WorkflowID       string                 `json:"workflowId"`
	CustomerID       string                 `json:"customerId"`
	IssueDescription string                 `json:"issueDescription"`
	Channel          string                 `json:"channel"`
	Timestamp        time.Time              `json:"timestamp"`
	PriorityOverride *Priority              `json:"priorityOverride,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Step statuses
const (
	StepCompleted = "completed"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
)

// StepResult records the outcome of a single workflow stage.
type StepResult struct {
	StepName      string        `json:"stepName"`
	WorkerName    string        `json:"workerName"`
	Status        string        `json:"status"`
	ExecutionTime time.Duration `json:"executionTime"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}

// Workflow statuses
const (
	WorkflowCompleted = "completed"
	WorkflowFailed    = "failed"
)

// WorkflowResult is the complete outcome of a workflow run.
type WorkflowResult struct {
	WorkflowID         string                 `json:"workflowId"`
	CustomerID         string                 `json:"customerId"`
	Status             string                 `json:"status"`
	CustomerResponse   CustomerResponse       `json:"customerResponse"`
	ProcessingSummary  map[string]interface{} `json:"processingSummary"`
	EscalationRequired bool                   `json:"escalationRequired"`
	StepResults        []StepResult           `json:"stepResults,omitempty"`
}
