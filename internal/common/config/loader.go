// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (development convenience)
	_ = godotenv.Load()

	v := viper.New()

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Environment variables override file settings
	v.AutomaticEnv()
	v.SetEnvPrefix("CSW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable, rely on env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in string fields
	expandEnvVars(&cfg)

	// Apply defaults for missing values
	applyDefaults(&cfg)

	// Validate required fields
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars expands ${VAR} references in string config fields.
func expandEnvVars(cfg *Config) {
	cfg.Camunda.BrokerAddress = os.ExpandEnv(cfg.Camunda.BrokerAddress)
	cfg.Database.Postgres.Host = os.ExpandEnv(cfg.Database.Postgres.Host)
	cfg.Database.Postgres.Password = os.ExpandEnv(cfg.Database.Postgres.Password)
	cfg.Database.Redis.Address = os.ExpandEnv(cfg.Database.Redis.Address)
	cfg.Database.Redis.Password = os.ExpandEnv(cfg.Database.Redis.Password)
	for i, addr := range cfg.Database.Elasticsearch.Addresses {
		cfg.Database.Elasticsearch.Addresses[i] = os.ExpandEnv(addr)
	}
	cfg.Database.Elasticsearch.Password = os.ExpandEnv(cfg.Database.Elasticsearch.Password)
	cfg.Storage.AWS.Bucket = os.ExpandEnv(cfg.Storage.AWS.Bucket)
	cfg.Notifications.Email.FromEmail = os.ExpandEnv(cfg.Notifications.Email.FromEmail)
	cfg.Notifications.Email.TechTeamEmail = os.ExpandEnv(cfg.Notifications.Email.TechTeamEmail)
	cfg.Notifications.Management.TopicARN = os.ExpandEnv(cfg.Notifications.Management.TopicARN)
}

// applyDefaults sets sensible defaults for missing configuration values.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "customer-service-workers"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = "localhost:26500"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 32
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 10000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if len(cfg.Database.Elasticsearch.Addresses) == 0 {
		cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.Database.Elasticsearch.ReportIndex == "" {
		cfg.Database.Elasticsearch.ReportIndex = "customer-service-reports"
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Storage.AWS.Region == "" {
		cfg.Storage.AWS.Region = "us-east-1"
	}
	if cfg.Storage.SessionTTL == 0 {
		cfg.Storage.SessionTTL = 3600
	}
	if cfg.Storage.ProfileTTL == 0 {
		cfg.Storage.ProfileTTL = 1800
	}
	if cfg.Storage.MaxHistory == 0 {
		cfg.Storage.MaxHistory = 5
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = cfg.Storage.AWS.Region
	}
	if cfg.Notifications.Management.PriorityThreshold == "" {
		cfg.Notifications.Management.PriorityThreshold = "high"
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for _, name := range []string{"collect-customer-data", "analyze-issue", "generate-response"} {
		wc, ok := cfg.Workers[name]
		if !ok {
			wc = WorkerConfig{Enabled: true}
		}
		if wc.MaxJobsActive == 0 {
			wc.MaxJobsActive = 10
		}
		if wc.Timeout == 0 {
			wc.Timeout = 30000
		}
		if wc.MaxRetries == 0 {
			wc.MaxRetries = 3
		}
		cfg.Workers[name] = wc
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	applyHeuristicsDefaults(&cfg.Heuristics)
}

// DefaultHeuristics returns the built-in rule set used when no heuristics
// tables are configured.
func DefaultHeuristics() HeuristicsConfig {
	var h HeuristicsConfig
	applyHeuristicsDefaults(&h)
	return h
}

// applyHeuristicsDefaults seeds the rule tables the heuristics engine runs
// on. Any table left empty in the config file falls back to the built-in
// rule set.
func applyHeuristicsDefaults(h *HeuristicsConfig) {
	if len(h.CategoryKeywords) == 0 {
		h.CategoryKeywords = map[string][]string{
			"billing":   {"bill", "charge", "payment", "invoice", "refund", "cost", "price"},
			"technical": {"error", "bug", "not working", "broken", "crash", "slow", "issue"},
			"account":   {"account", "login", "password", "access", "profile", "settings"},
			"product":   {"feature", "product", "service", "functionality", "how to", "usage"},
			"general":   {"help", "support", "question", "inquiry", "information"},
		}
	}
	if len(h.SubcategoryKeywords) == 0 {
		h.SubcategoryKeywords = map[string][]string{
			"billing":   {"invoice", "payment", "refund", "pricing"},
			"technical": {"login", "performance", "error", "integration"},
			"account":   {"access", "settings", "profile", "security"},
			"product":   {"features", "usage", "documentation", "training"},
		}
	}
	if len(h.PositiveWords) == 0 {
		h.PositiveWords = []string{"good", "great", "excellent", "happy", "satisfied", "love", "perfect", "amazing"}
	}
	if len(h.NegativeWords) == 0 {
		h.NegativeWords = []string{"bad", "terrible", "awful", "hate", "angry", "frustrated", "disappointed", "broken"}
	}
	if len(h.NeutralWords) == 0 {
		h.NeutralWords = []string{"okay", "fine", "normal", "standard", "regular"}
	}
	if len(h.UrgencyKeywords) == 0 {
		h.UrgencyKeywords = []string{"urgent", "asap", "immediately", "critical", "emergency", "down", "broken"}
	}
	if len(h.ImpactKeywords) == 0 {
		h.ImpactKeywords = []string{"revenue", "business", "production", "customers", "sales", "system"}
	}
	if len(h.TierWeights) == 0 {
		h.TierWeights = map[string]int{"standard": 1, "premium": 2, "enterprise": 3}
	}
	if h.UrgencyWeight == 0 {
		h.UrgencyWeight = 2
	}
	if h.ImpactWeight == 0 {
		h.ImpactWeight = 1
	}
	if h.CriticalThreshold == 0 {
		h.CriticalThreshold = 6
	}
	if h.HighThreshold == 0 {
		h.HighThreshold = 4
	}
	if h.MediumThreshold == 0 {
		h.MediumThreshold = 2
	}
	if h.UrgentNegativeCount == 0 {
		h.UrgentNegativeCount = 2
	}
	if len(h.SLAMatrix) == 0 {
		h.SLAMatrix = map[string]map[string]string{
			"critical": {"enterprise": "1 hour", "premium": "2 hours", "standard": "4 hours"},
			"high":     {"enterprise": "4 hours", "premium": "8 hours", "standard": "24 hours"},
			"medium":   {"enterprise": "8 hours", "premium": "24 hours", "standard": "48 hours"},
			"low":      {"enterprise": "24 hours", "premium": "48 hours", "standard": "72 hours"},
		}
	}
	if h.DefaultSLA == "" {
		h.DefaultSLA = "72 hours"
	}
}

// validateConfig ensures all required configuration is present.
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda broker address is required")
	}
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("postgres database name is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("postgres user is required")
	}
	if cfg.Storage.AWS.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notification from email is required when email notifications are enabled")
	}
	if cfg.Notifications.Management.Enabled && cfg.Notifications.Management.TopicARN == "" {
		return fmt.Errorf("management topic ARN is required when management notifications are enabled")
	}
	return nil
}

// GetDuration converts a millisecond int config value to time.Duration.
func GetDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// GetWorkerConfig returns worker-specific config with fallback to global defaults.
func (c *Config) GetWorkerConfig(workerName string) WorkerConfig {
	if wc, ok := c.Workers[workerName]; ok {
		return wc
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: c.Camunda.MaxJobsActive,
		Timeout:       c.Camunda.Timeout,
		MaxRetries:    3,
	}
}
