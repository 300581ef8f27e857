// internal/workers/customer-service/generate-response/handler.go
package generateresponse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"customer-service-workers/internal/common/errors"
	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/common/metrics"
	"customer-service-workers/internal/models"
)

const (
	TaskType = "generate-response"

	lowConfidenceThreshold = 0.6
	apologyThreshold       = 0.7
	apologyPrefix          = "I sincerely apologize for the inconvenience you've experienced. "
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// ObjectStore is the blob-store surface the reporting stage needs.
type ObjectStore interface {
	Bucket() string
	PutObject(ctx context.Context, key string, body []byte) error
}

// ReportIndexer indexes finished reports for search.
type ReportIndexer interface {
	IndexDocument(ctx context.Context, index, docID string, body []byte) error
}

type Handler struct {
	config    *Config
	db        *sql.DB
	store     ObjectStore
	indexer   ReportIndexer
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger

	// now is swappable for deterministic report IDs in tests.
	now func() time.Time
}

func NewHandler(config *Config, db *sql.DB, store ObjectStore, indexer ReportIndexer, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		store:     store,
		indexer:   indexer,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "REPORTING_FAILED", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "REPORTING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	response := h.GenerateCustomerResponse(&input.Analysis, input.Data.Profile)
	report := h.CreateInternalReport(&input.Analysis, input.Data.Profile, response)
	storage := h.storeResults(ctx, input.CustomerID, report)
	notifications := h.sendNotifications(ctx, input, report)

	h.logger.Info("report generated", map[string]interface{}{
		"customerId":        input.CustomerID,
		"reportId":          report.ReportID,
		"priority":          report.IssueAnalysis.Priority,
		"humanIntervention": report.HumanInterventionRequired,
		"storageErrors":     len(storage.Errors),
		"notificationsSent": len(notifications.Sent),
	})

	return &Output{
		Step:       StepName,
		CustomerID: input.CustomerID,
		Outputs: Outputs{
			CustomerResponse: response,
			InternalReport:   report,
			StorageResults:   storage,
			Notifications:    notifications,
		},
		Status: StatusCompleted,
	}, nil
}

// GenerateCustomerResponse renders the reply from the category template,
// adjusted for sentiment and customer tier.
func (h *Handler) GenerateCustomerResponse(analysis *models.AnalysisResult, profile models.CustomerProfile) models.CustomerResponse {
	category := analysis.IssueClassification.PrimaryCategory
	tpl := templateFor(category)

	slaTime := analysis.Priority.SLATarget
	if slaTime == "" {
		slaTime = h.config.DefaultSLA
	}

	greeting := tpl.Greeting
	acknowledgment := tpl.Acknowledgment
	nextSteps := tpl.NextSteps

	sentiment := analysis.Sentiment
	if sentiment.Sentiment == models.SentimentNegative && sentiment.Confidence > apologyThreshold {
		acknowledgment = apologyPrefix + acknowledgment
	}

	tier := profile.Tier
	if tier == models.TierPremium || tier == models.TierEnterprise {
		greeting = fmt.Sprintf("Dear Valued %s Customer, %s", titleCase(string(tier)), greeting)
		// Lowercased before the SLA value is substituted so the commitment
		// text keeps its original casing.
		nextSteps = fmt.Sprintf("As a %s customer, %s", tier, strings.ToLower(nextSteps))
	}
	nextSteps = strings.ReplaceAll(nextSteps, "{sla_time}", slaTime)

	responseText := fmt.Sprintf("%s %s %s %s", greeting, acknowledgment, tpl.Action, nextSteps)

	return models.CustomerResponse{
		ResponseText:           responseText,
		Category:               category,
		PriorityLevel:          analysis.Priority.Level,
		SLACommitment:          slaTime,
		PersonalizationApplied: true,
		SentimentAdjusted:      sentiment.Sentiment == models.SentimentNegative,
	}
}

// CreateInternalReport assembles the tracking report for a processed
// interaction.
func (h *Handler) CreateInternalReport(analysis *models.AnalysisResult, profile models.CustomerProfile, response models.CustomerResponse) models.InternalReport {
	now := h.now().UTC()

	return models.InternalReport{
		ReportID:  "RPT_" + now.Format("20060102_150405"),
		Timestamp: now.Format(time.RFC3339),
		CustomerInfo: models.ReportCustomerInfo{
			CustomerID: profile.CustomerID,
			Tier:       profile.Tier,
			Status:     profile.Status,
		},
		IssueAnalysis: models.ReportIssueAnalysis{
			Category:        analysis.IssueClassification.PrimaryCategory,
			Subcategory:     analysis.IssueClassification.Subcategory,
			Priority:        analysis.Priority.Level,
			ConfidenceScore: analysis.ConfidenceScore,
			Sentiment:       analysis.Sentiment.Sentiment,
		},
		ResolutionInfo: models.ReportResolutionInfo{
			SLATarget:           analysis.Priority.SLATarget,
			EstimatedResolution: analysis.RecommendedSolution.EstimatedResolutionTime,
			RequiredPermissions: analysis.RecommendedSolution.RequiredPermissions,
			EscalationCriteria:  analysis.RecommendedSolution.EscalationCriteria,
		},
		ResponseDetails: models.ReportResponseDetails{
			ResponseCategory:       response.Category,
			PersonalizationApplied: response.PersonalizationApplied,
			SentimentAdjusted:      response.SentimentAdjusted,
		},
		HumanInterventionRequired: analysis.Priority.Level == models.PriorityCritical ||
			analysis.ConfidenceScore < lowConfidenceThreshold,
	}
}

// storeResults persists the report to every configured target. Failures are
// collected in the result; the stage never fails because a store is down.
func (h *Handler) storeResults(ctx context.Context, customerID string, report models.InternalReport) StorageResults {
	results := StorageResults{Errors: []string{}}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		results.Errors = append(results.Errors, fmt.Sprintf("marshal report: %v", err))
		return results
	}

	key := fmt.Sprintf("reports/%s/%s.json", customerID, report.ReportID)
	if err := h.store.PutObject(ctx, key, body); err != nil {
		results.Errors = append(results.Errors, h.recordStoreFailure(errors.NewBlobStoreFailedError(key, err)))
	} else {
		results.BlobStorage = StorageTarget{
			Success:  true,
			Location: fmt.Sprintf("s3://%s/%s", h.store.Bucket(), key),
		}
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO interaction_summaries (customer_id, report_id, created_at, category, priority, status, sla_target, blob_location) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		customerID, report.ReportID, report.Timestamp, string(report.IssueAnalysis.Category),
		string(report.IssueAnalysis.Priority), StatusCompleted, report.ResolutionInfo.SLATarget,
		results.BlobStorage.Location)
	if err != nil {
		results.Errors = append(results.Errors, h.recordStoreFailure(errors.NewDatabaseUnavailableError(err)))
	} else {
		results.SummaryStorage = StorageTarget{Success: true, Location: "interaction_summaries"}
	}

	if err := h.indexer.IndexDocument(ctx, h.config.ReportIndex, report.ReportID, body); err != nil {
		results.Errors = append(results.Errors, h.recordStoreFailure(errors.NewSearchIndexFailedError(h.config.ReportIndex, err)))
	} else {
		results.SearchIndex = StorageTarget{Success: true, Location: h.config.ReportIndex}
	}

	return results
}

// recordStoreFailure logs a degraded storage target and renders it for the
// stage's errors list, keeping the taxonomy code with the cause.
func (h *Handler) recordStoreFailure(stdErr *errors.StandardError) string {
	h.logger.WithError(stdErr).Warn("report storage target failed", map[string]interface{}{
		"code": string(stdErr.Code),
	})
	return fmt.Sprintf("%s: %s", stdErr.Code, stdErr.Details)
}

// sendNotifications routes alerts based on the analysis outcome. Delivery
// failures are recorded, not raised.
func (h *Handler) sendNotifications(ctx context.Context, input *Input, report models.InternalReport) NotificationResults {
	results := NotificationResults{
		Sent:   []NotificationRecord{},
		Failed: []NotificationFailure{},
	}

	priority := report.IssueAnalysis.Priority
	category := report.IssueAnalysis.Category

	if h.config.ManagementEnabled && (priority == models.PriorityCritical || priority == models.PriorityHigh) {
		if err := h.sendManagementAlert(ctx, input.CustomerID, priority, category); err != nil {
			results.Failed = append(results.Failed, h.recordSendFailure("management_alert", err))
		} else {
			results.Sent = append(results.Sent, NotificationRecord{Type: "management_alert", Recipient: h.config.ManagementTopicARN})
		}
	}

	if h.config.EmailEnabled && category == models.CategoryTechnical {
		if err := h.sendTechnicalAlert(ctx, input.CustomerID, report); err != nil {
			results.Failed = append(results.Failed, h.recordSendFailure("technical_team_alert", err))
		} else {
			results.Sent = append(results.Sent, NotificationRecord{Type: "technical_team_alert", Recipient: h.config.TechTeamEmail})
		}
	}

	if h.config.EmailEnabled {
		email := input.Data.Profile.Email
		if email == "" {
			// No delivery was attempted, so this is not a send failure.
			results.Failed = append(results.Failed, NotificationFailure{Type: "customer_confirmation", Error: "no email address on file"})
		} else if err := h.sendCustomerConfirmation(ctx, email, report); err != nil {
			results.Failed = append(results.Failed, h.recordSendFailure("customer_confirmation", err))
		} else {
			results.Sent = append(results.Sent, NotificationRecord{Type: "customer_confirmation", Recipient: email})
		}
	}

	return results
}

// recordSendFailure logs an undelivered notification and renders the failure
// record from the taxonomy error.
func (h *Handler) recordSendFailure(notificationType string, err error) NotificationFailure {
	stdErr := errors.NewNotificationSendFailedError(notificationType, err)
	h.logger.WithError(stdErr).Warn("notification delivery failed", map[string]interface{}{
		"type": notificationType,
	})
	return NotificationFailure{Type: notificationType, Error: stdErr.Details}
}

func (h *Handler) sendManagementAlert(ctx context.Context, customerID string, priority models.Priority, category models.IssueCategory) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.ManagementTopicARN),
		Subject:  aws.String(fmt.Sprintf("%s priority customer issue", titleCase(string(priority)))),
		Message:  aws.String(fmt.Sprintf("High priority %s issue for customer %s", category, customerID)),
	})
	return err
}

func (h *Handler) sendTechnicalAlert(ctx context.Context, customerID string, report models.InternalReport) error {
	body := fmt.Sprintf("Technical issue reported by customer %s\nSubcategory: %s\nPriority: %s\nReport: %s",
		customerID, report.IssueAnalysis.Subcategory, report.IssueAnalysis.Priority, report.ReportID)
	return h.sendEmail(ctx, h.config.TechTeamEmail, "Technical issue alert", body)
}

func (h *Handler) sendCustomerConfirmation(ctx context.Context, to string, report models.InternalReport) error {
	body := fmt.Sprintf("Support request received and being processed.\nReference: %s\nCommitted resolution window: %s",
		report.ReportID, report.ResolutionInfo.SLATarget)
	return h.sendEmail(ctx, to, "We received your support request", body)
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}
