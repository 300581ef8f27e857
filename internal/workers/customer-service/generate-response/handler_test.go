// internal/workers/customer-service/generate-response/handler_test.go
package generateresponse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		DefaultSLA:         "24 hours",
		EmailEnabled:       true,
		FromEmail:          "support@company.com",
		TechTeamEmail:      "technical-team@company.com",
		ManagementEnabled:  true,
		ManagementTopicARN: "arn:aws:sns:us-east-1:000000000000:management-alerts",
		ReportIndex:        "customer-reports",
		Timeout:            10 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Bucket() string { return "customer-service-documents" }

func (f *fakeStore) PutObject(ctx context.Context, key string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

type fakeIndexer struct {
	indexed  map[string][]byte
	indexErr error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[string][]byte{}}
}

func (f *fakeIndexer) IndexDocument(ctx context.Context, index, docID string, body []byte) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed[index+"/"+docID] = body
	return nil
}

type fakeSES struct {
	sent    []*ses.SendEmailInput
	sendErr error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	published  []*sns.PublishInput
	publishErr error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, params)
	return &sns.PublishOutput{}, nil
}

type testEnv struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	store   *fakeStore
	indexer *fakeIndexer
	ses     *fakeSES
	sns     *fakeSNS
}

func newTestEnv(t *testing.T) *testEnv {
	db, mock := setupMockDB(t)
	store := newFakeStore()
	indexer := newFakeIndexer()
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{}

	handler := NewHandler(createTestConfig(), db, store, indexer, sesClient, snsClient, logger.NewTestLogger(t))
	handler.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}

	return &testEnv{
		handler: handler,
		mock:    mock,
		store:   store,
		indexer: indexer,
		ses:     sesClient,
		sns:     snsClient,
	}
}

const summaryInsert = `INSERT INTO interaction_summaries \(customer_id, report_id, created_at, category, priority, status, sla_target, blob_location\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)`

func expectSummaryInsert(mock sqlmock.Sqlmock) {
	mock.ExpectExec(summaryInsert).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func makeAnalysis(category models.IssueCategory, priority models.Priority, sla string, sentiment models.Sentiment, sentimentConf, overallConf float64) models.AnalysisResult {
	return models.AnalysisResult{
		IssueClassification: models.IssueClassification{
			PrimaryCategory: category,
			Subcategory:     "general",
			Confidence:      overallConf,
		},
		Priority: models.PriorityAssessment{
			Level:     priority,
			Score:     4,
			Factors:   []string{"Standard customer"},
			SLATarget: sla,
		},
		RecommendedSolution: models.SolutionRecommendation{
			Category:                category,
			EstimatedResolutionTime: "2-3 business days",
			RequiredPermissions:     []string{"billing_admin"},
			EscalationCriteria:      "Disputes over $500 or repeated billing errors",
		},
		Sentiment: models.SentimentAnalysis{
			Sentiment:  sentiment,
			Confidence: sentimentConf,
			WordCounts: map[string]int{"positive": 0, "negative": 0, "neutral": 0},
		},
		ConfidenceScore: overallConf,
	}
}

func makeProfile(tier models.CustomerTier, email string) models.CustomerProfile {
	return models.CustomerProfile{
		CustomerID:  "CUST001",
		Name:        "Test Customer",
		Tier:        tier,
		Status:      models.StatusActive,
		CreatedDate: "2023-01-01",
		Email:       email,
	}
}

// ==========================
// Customer Response Tests
// ==========================

func TestHandler_GenerateCustomerResponse_Billing(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityMedium, "24 hours", models.SentimentNeutral, 0.5, 0.8)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierStandard, ""))

	assert.Equal(t, "Thank you for contacting us regarding your billing inquiry. "+
		"I've reviewed your account and understand your concern about the billing issue. "+
		"I'm working to resolve this matter promptly and will ensure any necessary adjustments are made. "+
		"You can expect a resolution within 24 hours, and I'll keep you updated on our progress.",
		response.ResponseText)
	assert.Equal(t, models.CategoryBilling, response.Category)
	assert.Equal(t, models.PriorityMedium, response.PriorityLevel)
	assert.Equal(t, "24 hours", response.SLACommitment)
	assert.True(t, response.PersonalizationApplied)
	assert.False(t, response.SentimentAdjusted)
}

func TestHandler_GenerateCustomerResponse_PremiumTier(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityHigh, "8 hours", models.SentimentNeutral, 0.5, 0.8)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierPremium, ""))

	assert.True(t, strings.HasPrefix(response.ResponseText,
		"Dear Valued Premium Customer, Thank you for contacting us regarding your billing inquiry."))
	// The template is lowercased before the SLA value is inserted, so the
	// commitment text keeps its own case.
	assert.Contains(t, response.ResponseText,
		"As a premium customer, you can expect a resolution within 8 hours, and i'll keep you updated on our progress.")
}

func TestHandler_GenerateCustomerResponse_EnterpriseTier(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryAccount, models.PriorityCritical, "1 hour", models.SentimentNeutral, 0.5, 0.9)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierEnterprise, ""))

	assert.Contains(t, response.ResponseText, "Dear Valued Enterprise Customer,")
	assert.Contains(t, response.ResponseText, "As a enterprise customer, your account issue will be resolved within 1 hour.")
}

func TestHandler_GenerateCustomerResponse_NegativeSentimentApology(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryTechnical, models.PriorityHigh, "4 hours", models.SentimentNegative, 0.8, 0.7)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierStandard, ""))

	assert.Contains(t, response.ResponseText, apologyPrefix+"I understand how frustrating technical problems can be")
	assert.True(t, response.SentimentAdjusted)
}

func TestHandler_GenerateCustomerResponse_NegativeLowConfidence_NoApology(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryTechnical, models.PriorityHigh, "4 hours", models.SentimentNegative, 0.6, 0.7)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierStandard, ""))

	assert.NotContains(t, response.ResponseText, apologyPrefix)
	// Sentiment flag is raised on any negative reading, apology or not.
	assert.True(t, response.SentimentAdjusted)
}

func TestHandler_GenerateCustomerResponse_GeneralUsesProductTemplate(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryGeneral, models.PriorityLow, "72 hours", models.SentimentNeutral, 0.5, 0.5)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierStandard, ""))

	assert.Contains(t, response.ResponseText, "Thank you for your product inquiry.")
	assert.Equal(t, models.CategoryGeneral, response.Category)
}

func TestHandler_GenerateCustomerResponse_EmptySLADefaults(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryProduct, models.PriorityMedium, "", models.SentimentNeutral, 0.5, 0.6)
	response := env.handler.GenerateCustomerResponse(&analysis, makeProfile(models.TierStandard, ""))

	assert.Equal(t, "24 hours", response.SLACommitment)
	assert.Contains(t, response.ResponseText, "within 24 hours")
}

// ==========================
// Internal Report Tests
// ==========================

func TestHandler_CreateInternalReport(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityHigh, "8 hours", models.SentimentNegative, 0.8, 0.75)
	profile := makeProfile(models.TierPremium, "alice@example.com")
	response := env.handler.GenerateCustomerResponse(&analysis, profile)

	report := env.handler.CreateInternalReport(&analysis, profile, response)

	assert.Equal(t, "RPT_20250615_103000", report.ReportID)
	assert.Equal(t, "2025-06-15T10:30:00Z", report.Timestamp)
	assert.Equal(t, "CUST001", report.CustomerInfo.CustomerID)
	assert.Equal(t, models.TierPremium, report.CustomerInfo.Tier)
	assert.Equal(t, models.CategoryBilling, report.IssueAnalysis.Category)
	assert.Equal(t, models.PriorityHigh, report.IssueAnalysis.Priority)
	assert.Equal(t, 0.75, report.IssueAnalysis.ConfidenceScore)
	assert.Equal(t, "8 hours", report.ResolutionInfo.SLATarget)
	assert.Equal(t, "2-3 business days", report.ResolutionInfo.EstimatedResolution)
	assert.True(t, report.ResponseDetails.SentimentAdjusted)
	assert.False(t, report.HumanInterventionRequired)
}

func TestHandler_CreateInternalReport_HumanIntervention(t *testing.T) {
	env := newTestEnv(t)
	profile := makeProfile(models.TierStandard, "")

	critical := makeAnalysis(models.CategoryTechnical, models.PriorityCritical, "4 hours", models.SentimentNeutral, 0.5, 0.9)
	report := env.handler.CreateInternalReport(&critical, profile, models.CustomerResponse{})
	assert.True(t, report.HumanInterventionRequired)

	lowConfidence := makeAnalysis(models.CategoryProduct, models.PriorityLow, "72 hours", models.SentimentNeutral, 0.5, 0.4)
	report = env.handler.CreateInternalReport(&lowConfidence, profile, models.CustomerResponse{})
	assert.True(t, report.HumanInterventionRequired)

	routine := makeAnalysis(models.CategoryProduct, models.PriorityLow, "72 hours", models.SentimentNeutral, 0.5, 0.8)
	report = env.handler.CreateInternalReport(&routine, profile, models.CustomerResponse{})
	assert.False(t, report.HumanInterventionRequired)
}

// ==========================
// Storage Tests
// ==========================

func TestHandler_StoreResults_AllTargetsSucceed(t *testing.T) {
	env := newTestEnv(t)
	expectSummaryInsert(env.mock)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityMedium, "24 hours", models.SentimentNeutral, 0.5, 0.8)
	report := env.handler.CreateInternalReport(&analysis, makeProfile(models.TierStandard, ""), models.CustomerResponse{})

	results := env.handler.storeResults(context.Background(), "CUST001", report)

	assert.Empty(t, results.Errors)
	assert.True(t, results.BlobStorage.Success)
	assert.Equal(t, "s3://customer-service-documents/reports/CUST001/RPT_20250615_103000.json", results.BlobStorage.Location)
	assert.True(t, results.SummaryStorage.Success)
	assert.True(t, results.SearchIndex.Success)
	assert.Equal(t, "customer-reports", results.SearchIndex.Location)

	stored, ok := env.store.objects["reports/CUST001/RPT_20250615_103000.json"]
	assert.True(t, ok)

	var roundTrip models.InternalReport
	assert.NoError(t, json.Unmarshal(stored, &roundTrip))
	assert.Equal(t, report.ReportID, roundTrip.ReportID)

	assert.Contains(t, env.indexer.indexed, "customer-reports/RPT_20250615_103000")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_StoreResults_FailuresCollected(t *testing.T) {
	env := newTestEnv(t)
	env.store.putErr = fmt.Errorf("bucket unavailable")
	env.indexer.indexErr = fmt.Errorf("cluster red")
	env.mock.ExpectExec(summaryInsert).WillReturnError(sql.ErrConnDone)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityMedium, "24 hours", models.SentimentNeutral, 0.5, 0.8)
	report := env.handler.CreateInternalReport(&analysis, makeProfile(models.TierStandard, ""), models.CustomerResponse{})

	results := env.handler.storeResults(context.Background(), "CUST001", report)

	assert.Len(t, results.Errors, 3)
	assert.False(t, results.BlobStorage.Success)
	assert.False(t, results.SummaryStorage.Success)
	assert.False(t, results.SearchIndex.Success)

	joined := strings.Join(results.Errors, "\n")
	assert.Contains(t, joined, "BLOB_STORE_FAILED")
	assert.Contains(t, joined, "DATABASE_UNAVAILABLE")
	assert.Contains(t, joined, "SEARCH_INDEX_FAILED")
	assert.Contains(t, joined, "bucket unavailable")
	assert.Contains(t, joined, "cluster red")
}

// ==========================
// Notification Tests
// ==========================

func TestHandler_SendNotifications_HighPriorityTechnical(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryTechnical, models.PriorityCritical, "1 hour", models.SentimentNegative, 0.8, 0.9)
	profile := makeProfile(models.TierEnterprise, "alice@example.com")
	report := env.handler.CreateInternalReport(&analysis, profile, models.CustomerResponse{})

	input := &Input{CustomerID: "CUST001", Data: CustomerData{Profile: profile}, Analysis: analysis}
	results := env.handler.sendNotifications(context.Background(), input, report)

	types := make([]string, 0, len(results.Sent))
	for _, rec := range results.Sent {
		types = append(types, rec.Type)
	}
	assert.ElementsMatch(t, []string{"management_alert", "technical_team_alert", "customer_confirmation"}, types)
	assert.Empty(t, results.Failed)

	assert.Len(t, env.sns.published, 1)
	assert.Len(t, env.ses.sent, 2)
}

func TestHandler_SendNotifications_LowPriorityNonTechnical(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityLow, "72 hours", models.SentimentNeutral, 0.5, 0.8)
	profile := makeProfile(models.TierStandard, "bob@example.com")
	report := env.handler.CreateInternalReport(&analysis, profile, models.CustomerResponse{})

	input := &Input{CustomerID: "CUST001", Data: CustomerData{Profile: profile}, Analysis: analysis}
	results := env.handler.sendNotifications(context.Background(), input, report)

	assert.Len(t, results.Sent, 1)
	assert.Equal(t, "customer_confirmation", results.Sent[0].Type)
	assert.Equal(t, "bob@example.com", results.Sent[0].Recipient)
	assert.Empty(t, env.sns.published)
}

func TestHandler_SendNotifications_DeliveryFailureRecorded(t *testing.T) {
	env := newTestEnv(t)
	env.sns.publishErr = fmt.Errorf("topic not found")

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityCritical, "2 hours", models.SentimentNeutral, 0.5, 0.9)
	profile := makeProfile(models.TierPremium, "carol@example.com")
	report := env.handler.CreateInternalReport(&analysis, profile, models.CustomerResponse{})

	input := &Input{CustomerID: "CUST001", Data: CustomerData{Profile: profile}, Analysis: analysis}
	results := env.handler.sendNotifications(context.Background(), input, report)

	assert.Len(t, results.Failed, 1)
	assert.Equal(t, "management_alert", results.Failed[0].Type)
	assert.Contains(t, results.Failed[0].Error, "type: management_alert")
	assert.Contains(t, results.Failed[0].Error, "topic not found")

	// Customer confirmation still goes out.
	assert.Len(t, results.Sent, 1)
	assert.Equal(t, "customer_confirmation", results.Sent[0].Type)
}

func TestHandler_SendNotifications_NoEmailOnFile(t *testing.T) {
	env := newTestEnv(t)

	analysis := makeAnalysis(models.CategoryAccount, models.PriorityMedium, "24 hours", models.SentimentNeutral, 0.5, 0.8)
	profile := makeProfile(models.TierStandard, "")
	report := env.handler.CreateInternalReport(&analysis, profile, models.CustomerResponse{})

	input := &Input{CustomerID: "CUST001", Data: CustomerData{Profile: profile}, Analysis: analysis}
	results := env.handler.sendNotifications(context.Background(), input, report)

	assert.Len(t, results.Failed, 1)
	assert.Equal(t, "customer_confirmation", results.Failed[0].Type)
	assert.Contains(t, results.Failed[0].Error, "no email address")
}

// ==========================
// Integration Test
// ==========================

func TestHandler_Execute_FullReportingStage(t *testing.T) {
	env := newTestEnv(t)
	expectSummaryInsert(env.mock)

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityHigh, "8 hours", models.SentimentNegative, 0.8, 0.75)
	profile := makeProfile(models.TierPremium, "alice@example.com")

	input := &Input{CustomerID: "CUST001", Data: CustomerData{Profile: profile}, Analysis: analysis}
	output, err := env.handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, StepName, output.Step)
	assert.Equal(t, StatusCompleted, output.Status)
	assert.Equal(t, "CUST001", output.CustomerID)

	assert.Contains(t, output.Outputs.CustomerResponse.ResponseText, "Dear Valued Premium Customer,")
	assert.Contains(t, output.Outputs.CustomerResponse.ResponseText, apologyPrefix)
	assert.Equal(t, "RPT_20250615_103000", output.Outputs.InternalReport.ReportID)
	assert.Empty(t, output.Outputs.StorageResults.Errors)

	// High priority triggers the management alert alongside the confirmation.
	assert.Len(t, output.Outputs.Notifications.Sent, 2)
	assert.Empty(t, output.Outputs.Notifications.Failed)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkHandler_GenerateCustomerResponse(b *testing.B) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, nil, nil, logger.NewNoOpLogger())

	analysis := makeAnalysis(models.CategoryBilling, models.PriorityHigh, "8 hours", models.SentimentNegative, 0.8, 0.75)
	profile := makeProfile(models.TierPremium, "alice@example.com")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.GenerateCustomerResponse(&analysis, profile)
	}
}
