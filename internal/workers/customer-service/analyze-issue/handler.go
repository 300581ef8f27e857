// internal/workers/customer-service/analyze-issue/handler.go
package analyzeissue

import (
	"context"
	"encoding/json"
	"fmt"

	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"customer-service-workers/internal/analysis"
	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/common/metrics"
	"customer-service-workers/internal/models"
)

const (
	TaskType = "analyze-issue"
)

type Handler struct {
	config *Config
	engine *analysis.Engine
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, engine *analysis.Engine, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		engine: engine,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "ANALYSIS_FAILED", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "ANALYSIS_FAILED", err.Error())
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
	if input.IssueDescription == "" {
		return nil, fmt.Errorf("issue description is empty")
	}

	description := models.SanitizeText(input.IssueDescription, h.config.MaxDescription)

	tier := input.Data.Profile.Tier
	if !tier.Valid() {
		h.logger.Warn("missing or invalid customer tier, assuming standard", map[string]interface{}{
			"customerId": input.CustomerID,
			"tier":       tier,
		})
		tier = models.TierStandard
	}

	result := h.engine.Analyze(description, tier)

	if input.PriorityOverride != nil && input.PriorityOverride.Valid() {
		h.applyOverride(&result, *input.PriorityOverride, tier)
	}

	h.cacheResult(ctx, input.CustomerID, &result)

	h.logger.Info("issue analyzed", map[string]interface{}{
		"customerId": input.CustomerID,
		"category":   result.IssueClassification.PrimaryCategory,
		"priority":   result.Priority.Level,
		"sentiment":  result.Sentiment.Sentiment,
		"confidence": result.ConfidenceScore,
	})

	return &Output{
		Step:     StepName,
		Analysis: result,
		Status:   StatusCompleted,
	}, nil
}

// applyOverride replaces the computed priority level, recomputes the SLA for
// the new level, and records the override as an assessment factor.
func (h *Handler) applyOverride(result *models.AnalysisResult, level models.Priority, tier models.CustomerTier) {
	result.Priority.Level = level
	result.Priority.SLATarget = h.engine.SLATarget(level, tier)
	result.Priority.Factors = append(result.Priority.Factors, fmt.Sprintf("Priority override: %s", level))
}

// cacheResult is best effort; analysis proceeds whether or not the cache is up.
func (h *Handler) cacheResult(ctx context.Context, customerID string, result *models.AnalysisResult) {
	if h.redis == nil || customerID == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, "customer:analysis:"+customerID, data, h.config.AnalysisCacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache analysis result", map[string]interface{}{
			"customerId": customerID,
			"error":      err,
		})
	}
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
