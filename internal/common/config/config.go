// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Heuristics    HeuristicsConfig        `mapstructure:"heuristics"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	ReportIndex string   `mapstructure:"report_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds blob-store settings for interaction history and reports.
type StorageConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		Bucket string `mapstructure:"bucket"`
	} `mapstructure:"aws"`
	SessionTTL int `mapstructure:"session_ttl"` // seconds
	ProfileTTL int `mapstructure:"profile_ttl"` // seconds
	MaxHistory int `mapstructure:"max_history"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// NotificationConfig holds settings for the reporting stage's notification
// fan-out.
type NotificationConfig struct {
	Email struct {
		Enabled       bool   `mapstructure:"enabled"`
		FromEmail     string `mapstructure:"from_email"`
		TechTeamEmail string `mapstructure:"tech_team_email"`
	} `mapstructure:"email"`
	Management struct {
		Enabled           bool   `mapstructure:"enabled"`
		TopicARN          string `mapstructure:"topic_arn"`
		PriorityThreshold string `mapstructure:"priority_threshold"`
	} `mapstructure:"management"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// HeuristicsConfig carries the rule data for the text heuristics engine.
// Keyword lists, weights, thresholds, and the SLA matrix are configuration,
// not logic, so they can be tuned without code changes.
type HeuristicsConfig struct {
	CategoryKeywords    map[string][]string `mapstructure:"category_keywords"`
	SubcategoryKeywords map[string][]string `mapstructure:"subcategory_keywords"`

	PositiveWords []string `mapstructure:"positive_words"`
	NegativeWords []string `mapstructure:"negative_words"`
	NeutralWords  []string `mapstructure:"neutral_words"`

	UrgencyKeywords []string `mapstructure:"urgency_keywords"`
	ImpactKeywords  []string `mapstructure:"impact_keywords"`

	TierWeights   map[string]int `mapstructure:"tier_weights"`
	UrgencyWeight int            `mapstructure:"urgency_weight"`
	ImpactWeight  int            `mapstructure:"impact_weight"`

	CriticalThreshold int `mapstructure:"critical_threshold"`
	HighThreshold     int `mapstructure:"high_threshold"`
	MediumThreshold   int `mapstructure:"medium_threshold"`

	UrgentNegativeCount int `mapstructure:"urgent_negative_count"`

	// SLAMatrix maps priority level -> tier -> resolution window.
	SLAMatrix  map[string]map[string]string `mapstructure:"sla_matrix"`
	DefaultSLA string                       `mapstructure:"default_sla"`
}
