// internal/workers/customer-service/collect-customer-data/handler.go
package collectcustomerdata

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"customer-service-workers/internal/common/aws"
	"customer-service-workers/internal/common/errors"
	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/common/metrics"
	"customer-service-workers/internal/models"
)

const (
	TaskType = "collect-customer-data"

	interactionPrefix = "interactions/"
	maxInteractionLen = 200
)

// ObjectStore is the blob-store surface the collection stage needs.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string, max int32) ([]aws.Object, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *redis.Client
	store      ObjectStore
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, store ObjectStore, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      redis,
		store:      store,
		logger:     scoped,
		errHandler: errors.NewErrorHandler(scoped),
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
		h.failJob(client, job, "DATA_COLLECTION_FAILED", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// Validation failures carry their own BPMN error codes.
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCodeOf(err)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
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
	if err := models.ValidateCustomerID(input.CustomerID); err != nil {
		return nil, errors.NewInvalidCustomerIDError(err.Error())
	}

	profile, err := h.fetchProfile(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	history := h.fetchHistory(ctx, input.CustomerID)
	preferences := h.fetchPreferences(ctx, input.CustomerID)
	session := h.fetchSession(ctx, input.CustomerID)

	h.logger.Info("customer data collected", map[string]interface{}{
		"customerId":   input.CustomerID,
		"tier":         profile.Tier,
		"historyCount": len(history),
	})

	return &Output{
		Step:       StepName,
		CustomerID: input.CustomerID,
		Data: CollectedData{
			Profile:     profile,
			History:     history,
			Preferences: preferences,
			Session:     session,
		},
		Status: StatusCompleted,
	}, nil
}

func (h *Handler) fetchProfile(ctx context.Context, customerID string) (models.CustomerProfile, error) {
	cacheKey := "customer:profile:" + customerID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.CustomerProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx,
		`SELECT name, tier, status, created_date, email, phone FROM customer_profiles WHERE customer_id = $1`,
		customerID)

	var profile models.CustomerProfile
	var tier string
	err := row.Scan(&profile.Name, &tier, &profile.Status, &profile.CreatedDate, &profile.Email, &profile.Phone)
	if err != nil {
		if err == sql.ErrNoRows {
			h.logger.WithError(errors.NewProfileNotFoundError(customerID)).Debug("profile missing, using defaults", map[string]interface{}{
				"customerId": customerID,
			})
		} else {
			h.logger.WithError(errors.NewDatabaseUnavailableError(err)).Warn("profile lookup failed, using defaults", map[string]interface{}{
				"customerId": customerID,
			})
		}
		return models.DefaultProfile(customerID), nil
	}

	profile.CustomerID = customerID
	profile.Tier = models.CustomerTier(tier)
	if !profile.Tier.Valid() {
		// A bad stored tier is a data quality problem, not a lookup miss.
		return models.CustomerProfile{}, errors.NewInvalidTierError(tier)
	}

	if data, err := json.Marshal(profile); err == nil {
		h.redis.Set(ctx, cacheKey, data, h.config.ProfileCacheTTL)
	}
	return profile, nil
}

// fetchSession reads transient session state. A missing or unreachable cache
// yields an empty session.
func (h *Handler) fetchSession(ctx context.Context, customerID string) map[string]interface{} {
	val, err := h.redis.Get(ctx, "session:"+customerID).Result()
	if err != nil {
		if err == redis.Nil {
			h.logger.WithError(errors.NewSessionNotFoundError(customerID)).Debug("no active session", map[string]interface{}{
				"customerId": customerID,
			})
		} else {
			h.logger.WithError(errors.NewCacheUnavailableError(err)).Warn("session lookup failed", map[string]interface{}{
				"customerId": customerID,
			})
		}
		return map[string]interface{}{}
	}

	var session map[string]interface{}
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		h.logger.Warn("discarding malformed session data", map[string]interface{}{
			"customerId": customerID,
			"error":      err,
		})
		return map[string]interface{}{}
	}
	return session
}

func (h *Handler) fetchHistory(ctx context.Context, customerID string) []InteractionRecord {
	prefix := interactionPrefix + customerID + "/"
	objects, err := h.store.ListObjects(ctx, prefix, h.config.HistoryLimit)
	if err != nil {
		h.logger.WithError(errors.NewBlobStoreFailedError("list "+prefix, err)).Warn("interaction history unavailable", map[string]interface{}{
			"customerId": customerID,
		})
		return []InteractionRecord{}
	}

	history := make([]InteractionRecord, 0, len(objects))
	for _, obj := range objects {
		data, err := h.store.GetObject(ctx, obj.Key)
		if err != nil {
			h.logger.WithError(errors.NewBlobStoreFailedError("get "+obj.Key, err)).Warn("skipping unreadable interaction record", map[string]interface{}{
				"customerId": customerID,
				"key":        obj.Key,
			})
			continue
		}
		history = append(history, InteractionRecord{
			Date: obj.LastModified.UTC().Format(time.RFC3339),
			Data: truncate(string(data), maxInteractionLen),
		})
	}
	return history
}

func (h *Handler) fetchPreferences(ctx context.Context, customerID string) map[string]interface{} {
	row := h.db.QueryRowContext(ctx,
		`SELECT communication_channel, language, timezone, notification_frequency FROM customer_preferences WHERE customer_id = $1`,
		customerID)

	var channel, language, timezone, frequency string
	err := row.Scan(&channel, &language, &timezone, &frequency)
	if err != nil {
		if err == sql.ErrNoRows {
			h.logger.WithError(errors.NewPreferencesNotFoundError(customerID)).Debug("no stored preferences, using defaults", map[string]interface{}{
				"customerId": customerID,
			})
		} else {
			h.logger.WithError(errors.NewDatabaseUnavailableError(err)).Warn("preferences lookup failed, using defaults", map[string]interface{}{
				"customerId": customerID,
			})
		}
		return models.DefaultPreferences()
	}

	return map[string]interface{}{
		"communication_channel":  channel,
		"language":               language,
		"timezone":               timezone,
		"notification_frequency": frequency,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
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

func errorCodeOf(err error) string {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
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
