// internal/workers/customer-service/collect-customer-data/models.go
package collectcustomerdata

import "customer-service-workers/internal/models"

type Input struct {
	CustomerID string `json:"customerId"`
}

// InteractionRecord is one prior customer interaction, truncated for context.
type InteractionRecord struct {
	Date string `json:"date"`
	Data string `json:"data"`
}

// CollectedData aggregates everything the collection stage gathers.
type CollectedData struct {
	Profile     models.CustomerProfile `json:"profile"`
	History     []InteractionRecord    `json:"history"`
	Preferences map[string]interface{} `json:"preferences"`
	Session     map[string]interface{} `json:"session"`
}

type Output struct {
	Step       string        `json:"step"`
	CustomerID string        `json:"customerId"`
	Data       CollectedData `json:"data"`
	Status     string        `json:"status"`
}

const (
	StepName        = "data_collection"
	StatusCompleted = "completed"
)
