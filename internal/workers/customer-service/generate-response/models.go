// internal/workers/customer-service/generate-response/models.go
package generateresponse

import "customer-service-workers/internal/models"

// CustomerData is the slice of the collection-stage output this worker reads.
type CustomerData struct {
	Profile models.CustomerProfile `json:"profile"`
}

type Input struct {
	CustomerID string                `json:"customerId"`
	Data       CustomerData          `json:"data"`
	Analysis   models.AnalysisResult `json:"analysis"`
}

// StorageTarget records the outcome of one persistence target.
type StorageTarget struct {
	Success  bool   `json:"success"`
	Location string `json:"location,omitempty"`
}

// StorageResults tracks every persistence target. Failures are collected
// rather than raised so a storage outage never blocks the customer response.
type StorageResults struct {
	BlobStorage    StorageTarget `json:"blobStorage"`
	SummaryStorage StorageTarget `json:"summaryStorage"`
	SearchIndex    StorageTarget `json:"searchIndex"`
	Errors         []string      `json:"errors"`
}

type NotificationRecord struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
}

type NotificationFailure struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NotificationResults tracks which alerts went out. Delivery failures are
// recorded, not raised.
type NotificationResults struct {
	Sent   []NotificationRecord  `json:"sent"`
	Failed []NotificationFailure `json:"failed"`
}

// Outputs bundles everything produced by the reporting stage.
type Outputs struct {
	CustomerResponse models.CustomerResponse `json:"customerResponse"`
	InternalReport   models.InternalReport   `json:"internalReport"`
	StorageResults   StorageResults          `json:"storageResults"`
	Notifications    NotificationResults     `json:"notifications"`
}

type Output struct {
	Step       string  `json:"step"`
	CustomerID string  `json:"customerId"`
	Outputs    Outputs `json:"outputs"`
	Status     string  `json:"status"`
}

const (
	StepName        = "reporting"
	StatusCompleted = "completed"
)
