// internal/workers/customer-service/collect-customer-data/handler_test.go
package collectcustomerdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"customer-service-workers/internal/common/aws"
	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		ProfileCacheTTL: 30 * time.Minute,
		HistoryLimit:    5,
		Timeout:         10 * time.Second,
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

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeStore is an in-memory ObjectStore.
type fakeStore struct {
	objects map[string][]byte
	modTime time.Time
	listErr error
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: map[string][]byte{},
		modTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) ListObjects(ctx context.Context, prefix string, max int32) ([]aws.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []aws.Object
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, aws.Object{Key: key, LastModified: f.modTime})
		}
		if int32(len(out)) >= max {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return data, nil
}

const profileQuery = `SELECT name, tier, status, created_date, email, phone FROM customer_profiles WHERE customer_id = \$1`
const preferencesQuery = `SELECT communication_channel, language, timezone, notification_frequency FROM customer_preferences WHERE customer_id = \$1`

func expectProfile(mock sqlmock.Sqlmock, customerID, name, tier string) {
	mock.ExpectQuery(profileQuery).
		WithArgs(customerID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "tier", "status", "created_date", "email", "phone"}).
			AddRow(name, tier, "active", "2023-05-01", name+"@example.com", "555-0100"))
}

func expectNoPreferences(mock sqlmock.Sqlmock, customerID string) {
	mock.ExpectQuery(preferencesQuery).
		WithArgs(customerID).
		WillReturnError(sql.ErrNoRows)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)
	store := newFakeStore()

	customerID := "CUST001"
	expectProfile(mock, customerID, "Alice Smith", "premium")
	mock.ExpectQuery(preferencesQuery).
		WithArgs(customerID).
		WillReturnRows(sqlmock.NewRows([]string{"communication_channel", "language", "timezone", "notification_frequency"}).
			AddRow("sms", "en", "America/New_York", "high"))

	store.objects["interactions/CUST001/2025-05-01.json"] = []byte(`{"issue":"slow dashboard"}`)

	handler := NewHandler(createTestConfig(), db, rdb, store, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{CustomerID: customerID})

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StepName, output.Step)
	assert.Equal(t, customerID, output.CustomerID)
	assert.Equal(t, StatusCompleted, output.Status)

	assert.Equal(t, "Alice Smith", output.Data.Profile.Name)
	assert.Equal(t, models.TierPremium, output.Data.Profile.Tier)
	assert.Equal(t, customerID, output.Data.Profile.CustomerID)

	assert.Len(t, output.Data.History, 1)
	assert.Equal(t, `{"issue":"slow dashboard"}`, output.Data.History[0].Data)
	assert.Equal(t, "2025-06-01T12:00:00Z", output.Data.History[0].Date)

	assert.Equal(t, "sms", output.Data.Preferences["communication_channel"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileNotFound_UsesDefaults(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)
	store := newFakeStore()

	customerID := "CUST404"
	mock.ExpectQuery(profileQuery).
		WithArgs(customerID).
		WillReturnError(sql.ErrNoRows)
	expectNoPreferences(mock, customerID)

	handler := NewHandler(createTestConfig(), db, rdb, store, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{CustomerID: customerID})

	assert.NoError(t, err)
	assert.Equal(t, "Unknown Customer", output.Data.Profile.Name)
	assert.Equal(t, models.TierStandard, output.Data.Profile.Tier)
	assert.Equal(t, models.StatusActive, output.Data.Profile.Status)
	assert.Equal(t, models.DefaultPreferences(), output.Data.Preferences)
	assert.Empty(t, output.Data.History)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DatabaseError_UsesDefaults(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)
	store := newFakeStore()

	customerID := "CUSTERR"
	mock.ExpectQuery(profileQuery).
		WithArgs(customerID).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectQuery(preferencesQuery).
		WithArgs(customerID).
		WillReturnError(sql.ErrConnDone)

	handler := NewHandler(createTestConfig(), db, rdb, store, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{CustomerID: customerID})

	assert.NoError(t, err)
	assert.Equal(t, models.TierStandard, output.Data.Profile.Tier)
	assert.Equal(t, models.DefaultPreferences(), output.Data.Preferences)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidCustomerID(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)

	handler := NewHandler(createTestConfig(), db, rdb, newFakeStore(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{CustomerID: ""})
	assert.Error(t, err)
	assert.Nil(t, output)

	output, err = handler.Execute(context.Background(), &Input{CustomerID: "CUST-001"})
	assert.Error(t, err)
	assert.Nil(t, output)
}

// ==========================
// Unit Tests
// ==========================

func TestHandler_FetchProfile_CacheHit(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)

	customerID := "CUSTCACHED"
	cached := models.CustomerProfile{
		CustomerID:  customerID,
		Name:        "Cached Customer",
		Tier:        models.TierEnterprise,
		Status:      models.StatusActive,
		CreatedDate: "2022-01-01",
	}
	data, err := json.Marshal(cached)
	assert.NoError(t, err)
	err = rdb.Set(context.Background(), "customer:profile:"+customerID, data, 30*time.Minute).Err()
	assert.NoError(t, err)

	handler := NewHandler(createTestConfig(), db, rdb, newFakeStore(), logger.NewTestLogger(t))
	profile, err := handler.fetchProfile(context.Background(), customerID)

	assert.NoError(t, err)
	assert.Equal(t, cached, profile)
}

func TestHandler_FetchProfile_CacheMiss_PopulatesCache(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)

	customerID := "CUSTDB"
	expectProfile(mock, customerID, "Bob Jones", "enterprise")

	handler := NewHandler(createTestConfig(), db, rdb, newFakeStore(), logger.NewTestLogger(t))
	profile, err := handler.fetchProfile(context.Background(), customerID)

	assert.NoError(t, err)
	assert.Equal(t, models.TierEnterprise, profile.Tier)
	assert.Equal(t, "Bob Jones", profile.Name)

	cachedValue, err := rdb.Get(context.Background(), "customer:profile:"+customerID).Result()
	assert.NoError(t, err)

	var cached models.CustomerProfile
	assert.NoError(t, json.Unmarshal([]byte(cachedValue), &cached))
	assert.Equal(t, profile, cached)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_FetchProfile_InvalidTier_Surfaced(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)

	customerID := "CUSTBADTIER"
	expectProfile(mock, customerID, "Carol White", "platinum")

	handler := NewHandler(createTestConfig(), db, rdb, newFakeStore(), logger.NewTestLogger(t))
	_, err := handler.fetchProfile(context.Background(), customerID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_TIER")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_FetchSession(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)

	handler := NewHandler(createTestConfig(), db, rdb, newFakeStore(), logger.NewTestLogger(t))

	t.Run("existing session", func(t *testing.T) {
		err := rdb.Set(context.Background(), "session:CUST001", `{"lastPage":"billing"}`, 30*time.Minute).Err()
		assert.NoError(t, err)

		session := handler.fetchSession(context.Background(), "CUST001")
		assert.Equal(t, map[string]interface{}{"lastPage": "billing"}, session)
	})

	t.Run("missing session yields empty map", func(t *testing.T) {
		session := handler.fetchSession(context.Background(), "CUSTNONE")
		assert.NotNil(t, session)
		assert.Empty(t, session)
	})

	t.Run("malformed session discarded", func(t *testing.T) {
		err := rdb.Set(context.Background(), "session:CUSTBAD", "{not json", 30*time.Minute).Err()
		assert.NoError(t, err)

		session := handler.fetchSession(context.Background(), "CUSTBAD")
		assert.Empty(t, session)
	})
}

func TestHandler_FetchHistory_TruncatesLongRecords(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)
	store := newFakeStore()

	customerID := "CUSTLONG"
	long := strings.Repeat("x", 500)
	store.objects["interactions/CUSTLONG/old.json"] = []byte(long)

	handler := NewHandler(createTestConfig(), db, rdb, store, logger.NewTestLogger(t))
	history := handler.fetchHistory(context.Background(), customerID)

	assert.Len(t, history, 1)
	assert.Len(t, history[0].Data, maxInteractionLen+3)
	assert.True(t, strings.HasSuffix(history[0].Data, "..."))
}

func TestHandler_FetchHistory_StoreError_ReturnsEmpty(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)
	store := newFakeStore()
	store.listErr = fmt.Errorf("bucket unavailable")

	handler := NewHandler(createTestConfig(), db, rdb, store, logger.NewTestLogger(t))
	history := handler.fetchHistory(context.Background(), "CUST001")

	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestHandler_FetchHistory_SkipsUnreadableObjects(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)
	store := newFakeStore()
	store.objects["interactions/CUST001/a.json"] = []byte("hello")
	store.getErr = fmt.Errorf("access denied")

	handler := NewHandler(createTestConfig(), db, rdb, store, logger.NewTestLogger(t))
	history := handler.fetchHistory(context.Background(), "CUST001")

	assert.Empty(t, history)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 200))
	assert.Equal(t, strings.Repeat("a", 200)+"...", truncate(strings.Repeat("a", 201), 200))
	exact := strings.Repeat("b", 200)
	assert.Equal(t, exact, truncate(exact, 200))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// The cut never lands inside a multi-byte rune.
	got := truncate(strings.Repeat("ü", 101), 201)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 100)+"...", got)

	assert.Equal(t, "ab...", truncate("abñcdef", 3))
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkHandler_Execute_CacheHit(b *testing.B) {
	mr, _ := miniredis.Run()
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	profile := models.DefaultProfile("benchmark")
	data, _ := json.Marshal(profile)
	rdb.Set(context.Background(), "customer:profile:benchmark", data, 30*time.Minute)

	handler := NewHandler(createTestConfig(), db, rdb, newFakeStore(), logger.NewNoOpLogger())

	input := &Input{CustomerID: "benchmark"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
