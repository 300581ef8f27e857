// internal/workers/customer-service/analyze-issue/handler_test.go
package analyzeissue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"customer-service-workers/internal/analysis"
	"customer-service-workers/internal/common/config"
	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		AnalysisCacheTTL: 30 * time.Minute,
		MaxDescription:   5000,
		Timeout:          10 * time.Second,
	}
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func newTestHandler(t *testing.T, rdb *redis.Client) *Handler {
	engine := analysis.NewEngine(config.DefaultHeuristics())
	return NewHandler(createTestConfig(), engine, rdb, logger.NewTestLogger(t))
}

func createTestInput(customerID, description string, tier models.CustomerTier) *Input {
	return &Input{
		CustomerID:       customerID,
		IssueDescription: description,
		Data: CustomerData{
			Profile: models.CustomerProfile{
				CustomerID: customerID,
				Name:       "Test Customer",
				Tier:       tier,
				Status:     models.StatusActive,
			},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	input := createTestInput("CUST001", "my invoice charge is wrong, this is urgent", models.TierPremium)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StepName, output.Step)
	assert.Equal(t, StatusCompleted, output.Status)

	assert.Equal(t, models.CategoryBilling, output.Analysis.IssueClassification.PrimaryCategory)
	assert.Equal(t, models.PriorityHigh, output.Analysis.Priority.Level)
	assert.Equal(t, "8 hours", output.Analysis.Priority.SLATarget)
}

func TestHandler_Execute_EmptyDescription(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	input := createTestInput("CUST001", "", models.TierStandard)
	output, err := handler.Execute(context.Background(), input)

	assert.Error(t, err)
	assert.Nil(t, output)
}

func TestHandler_Execute_InvalidTierDefaultsToStandard(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	input := createTestInput("CUST001", "the system is down, this is urgent", "")
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	// standard weight 1 + urgency 2*2 + impact 1*1 = 6
	assert.Equal(t, models.PriorityCritical, output.Analysis.Priority.Level)
	assert.Contains(t, output.Analysis.Priority.Factors, "Standard customer")
}

func TestHandler_Execute_SanitizesDescription(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	input := createTestInput("CUST001", "login <script>alert(1)</script> error", models.TierStandard)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, models.CategoryTechnical, output.Analysis.IssueClassification.PrimaryCategory)
}

// ==========================
// Priority Override Tests
// ==========================

func TestHandler_Execute_PriorityOverride(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	override := models.PriorityCritical
	input := createTestInput("CUST001", "question about product features", models.TierEnterprise)
	input.PriorityOverride = &override

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, models.PriorityCritical, output.Analysis.Priority.Level)
	assert.Equal(t, "1 hour", output.Analysis.Priority.SLATarget)
	assert.Contains(t, output.Analysis.Priority.Factors, "Priority override: critical")
}

func TestHandler_Execute_InvalidOverrideIgnored(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	override := models.Priority("extreme")
	input := createTestInput("CUST001", "question about product features", models.TierStandard)
	input.PriorityOverride = &override

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotEqual(t, override, output.Analysis.Priority.Level)
}

// ==========================
// Cache Tests
// ==========================

func TestHandler_Execute_CachesAnalysis(t *testing.T) {
	rdb := setupRedis(t)
	handler := newTestHandler(t, rdb)

	input := createTestInput("CUST777", "refund please", models.TierStandard)
	output, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)

	cached, err := rdb.Get(context.Background(), "customer:analysis:CUST777").Result()
	assert.NoError(t, err)

	var result models.AnalysisResult
	assert.NoError(t, json.Unmarshal([]byte(cached), &result))
	assert.Equal(t, output.Analysis.IssueClassification.PrimaryCategory, result.IssueClassification.PrimaryCategory)
}

func TestHandler_Execute_CacheUnavailable_StillSucceeds(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	handler := newTestHandler(t, rdb)

	input := createTestInput("CUST001", "my invoice is wrong", models.TierStandard)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, models.CategoryBilling, output.Analysis.IssueClassification.PrimaryCategory)
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkHandler_Execute(b *testing.B) {
	mr, _ := miniredis.Run()
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	engine := analysis.NewEngine(config.DefaultHeuristics())
	handler := NewHandler(createTestConfig(), engine, rdb, logger.NewNoOpLogger())

	input := createTestInput("benchmark", "my invoice charge is wrong, this is urgent", models.TierPremium)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
