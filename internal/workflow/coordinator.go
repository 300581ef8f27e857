// internal/workflow/coordinator.go

// Package workflow runs the three-stage customer service pipeline in process:
// data collection, analysis, and reporting, in that order, with no retry
// between stages. The same stage handlers also run as standalone job workers.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/common/metrics"
	"customer-service-workers/internal/common/observability"
	"customer-service-workers/internal/models"
	analyzeissue "customer-service-workers/internal/workers/customer-service/analyze-issue"
	collectcustomerdata "customer-service-workers/internal/workers/customer-service/collect-customer-data"
	generateresponse "customer-service-workers/internal/workers/customer-service/generate-response"
)

// Stage names, in execution order.
const (
	StageCollecting = "collecting"
	StageAnalyzing  = "analyzing"
	StageReporting  = "reporting"
)

// Request is the workflow entry contract.
type Request struct {
	CustomerID       string                 `json:"customerId"`
	IssueDescription string                 `json:"issueDescription"`
	Channel          string                 `json:"channel,omitempty"`
	PriorityOverride *models.Priority       `json:"priorityOverride,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Stage executor surfaces, satisfied by the worker handlers.
type DataCollector interface {
	Execute(ctx context.Context, input *collectcustomerdata.Input) (*collectcustomerdata.Output, error)
}

type IssueAnalyzer interface {
	Execute(ctx context.Context, input *analyzeissue.Input) (*analyzeissue.Output, error)
}

type ResponseGenerator interface {
	Execute(ctx context.Context, input *generateresponse.Input) (*generateresponse.Output, error)
}

type Coordinator struct {
	collector DataCollector
	analyzer  IssueAnalyzer
	generator ResponseGenerator
	obs       *observability.Observability
	logger    logger.Logger
}

func NewCoordinator(collector DataCollector, analyzer IssueAnalyzer, generator ResponseGenerator, obs *observability.Observability, log logger.Logger) *Coordinator {
	return &Coordinator{
		collector: collector,
		analyzer:  analyzer,
		generator: generator,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "workflow-coordinator"}),
	}
}

// ProcessRequest validates the request and drives the stages to completion.
// The first stage error makes the run terminal failed; the partial result is
// returned alongside the error.
func (c *Coordinator) ProcessRequest(ctx context.Context, req *Request) (*models.WorkflowResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	channel := req.Channel
	if channel == "" {
		channel = "api"
	}
	metrics.WorkflowsStarted.WithLabelValues(channel).Inc()

	wctx := &models.WorkflowContext{
		WorkflowID:       uuid.New().String(),
		CustomerID:       req.CustomerID,
		IssueDescription: req.IssueDescription,
		Channel:          channel,
		Timestamp:        time.Now().UTC(),
		PriorityOverride: req.PriorityOverride,
		Metadata:         req.Metadata,
	}

	c.logger.Info("workflow started", map[string]interface{}{
		"workflowId": wctx.WorkflowID,
		"customerId": wctx.CustomerID,
		"channel":    wctx.Channel,
	})

	result := &models.WorkflowResult{
		WorkflowID: wctx.WorkflowID,
		CustomerID: wctx.CustomerID,
	}

	collected, step := c.runCollection(ctx, wctx)
	result.StepResults = append(result.StepResults, step)
	if step.Status == models.StepFailed {
		return c.fail(ctx, result, StageCollecting, step.ErrorMessage)
	}

	analyzed, step := c.runAnalysis(ctx, wctx, collected)
	result.StepResults = append(result.StepResults, step)
	if step.Status == models.StepFailed {
		return c.fail(ctx, result, StageAnalyzing, step.ErrorMessage)
	}

	reported, step := c.runReporting(ctx, wctx, collected, analyzed)
	result.StepResults = append(result.StepResults, step)
	if step.Status == models.StepFailed {
		return c.fail(ctx, result, StageReporting, step.ErrorMessage)
	}

	result.Status = models.WorkflowCompleted
	result.CustomerResponse = reported.Outputs.CustomerResponse
	result.EscalationRequired = reported.Outputs.InternalReport.HumanInterventionRequired
	result.ProcessingSummary = map[string]interface{}{
		"category":        analyzed.Analysis.IssueClassification.PrimaryCategory,
		"subcategory":     analyzed.Analysis.IssueClassification.Subcategory,
		"priority":        analyzed.Analysis.Priority.Level,
		"slaTarget":       analyzed.Analysis.Priority.SLATarget,
		"sentiment":       analyzed.Analysis.Sentiment.Sentiment,
		"confidenceScore": analyzed.Analysis.ConfidenceScore,
		"reportId":        reported.Outputs.InternalReport.ReportID,
		"storageErrors":   len(reported.Outputs.StorageResults.Errors),
	}

	metrics.WorkflowsCompleted.WithLabelValues(models.WorkflowCompleted).Inc()
	c.logger.Info("workflow completed", map[string]interface{}{
		"workflowId": result.WorkflowID,
		"customerId": result.CustomerID,
		"reportId":   reported.Outputs.InternalReport.ReportID,
		"escalation": result.EscalationRequired,
	})

	return result, nil
}

func (c *Coordinator) runCollection(ctx context.Context, wctx *models.WorkflowContext) (*collectcustomerdata.Output, models.StepResult) {
	start := time.Now()
	output, err := c.collector.Execute(ctx, &collectcustomerdata.Input{
		CustomerID: wctx.CustomerID,
	})
	return output, c.stepResult(ctx, StageCollecting, "collect-customer-data", start, err)
}

func (c *Coordinator) runAnalysis(ctx context.Context, wctx *models.WorkflowContext, collected *collectcustomerdata.Output) (*analyzeissue.Output, models.StepResult) {
	start := time.Now()
	output, err := c.analyzer.Execute(ctx, &analyzeissue.Input{
		CustomerID:       wctx.CustomerID,
		IssueDescription: wctx.IssueDescription,
		Data: analyzeissue.CustomerData{
			Profile: collected.Data.Profile,
		},
		PriorityOverride: wctx.PriorityOverride,
	})
	return output, c.stepResult(ctx, StageAnalyzing, "analyze-issue", start, err)
}

func (c *Coordinator) runReporting(ctx context.Context, wctx *models.WorkflowContext, collected *collectcustomerdata.Output, analyzed *analyzeissue.Output) (*generateresponse.Output, models.StepResult) {
	start := time.Now()
	output, err := c.generator.Execute(ctx, &generateresponse.Input{
		CustomerID: wctx.CustomerID,
		Data: generateresponse.CustomerData{
			Profile: collected.Data.Profile,
		},
		Analysis: analyzed.Analysis,
	})
	return output, c.stepResult(ctx, StageReporting, "generate-response", start, err)
}

func (c *Coordinator) stepResult(ctx context.Context, stage, workerName string, start time.Time, err error) models.StepResult {
	elapsed := time.Since(start)
	metrics.WorkflowStageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())

	step := models.StepResult{
		StepName:      stage,
		WorkerName:    workerName,
		Status:        models.StepCompleted,
		ExecutionTime: elapsed,
	}
	if err != nil {
		step.Status = models.StepFailed
		step.ErrorMessage = err.Error()
	}

	if c.obs != nil {
		c.obs.RecordStage(ctx, stage, step.Status)
	}
	return step
}

func (c *Coordinator) fail(ctx context.Context, result *models.WorkflowResult, stage, cause string) (*models.WorkflowResult, error) {
	result.Status = models.WorkflowFailed
	result.ProcessingSummary = map[string]interface{}{
		"failedStage": stage,
		"cause":       cause,
	}

	metrics.WorkflowsCompleted.WithLabelValues(models.WorkflowFailed).Inc()
	c.logger.Error("workflow failed", map[string]interface{}{
		"workflowId": result.WorkflowID,
		"customerId": result.CustomerID,
		"stage":      stage,
		"cause":      cause,
	})

	return result, &StageError{Stage: stage, Cause: cause}
}

// StageError is the terminal failure of a workflow run.
type StageError struct {
	Stage string
	Cause string
}

func (e *StageError) Error() string {
	return "workflow stage " + e.Stage + " failed: " + e.Cause
}
