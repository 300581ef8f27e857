// internal/workers/customer-service/generate-response/config.go
package generateresponse

import "time"

type Config struct {
	DefaultSLA string

	// Notification routing
	EmailEnabled       bool
	FromEmail          string
	TechTeamEmail      string
	ManagementEnabled  bool
	ManagementTopicARN string

	ReportIndex string
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultSLA:         "24 hours",
		EmailEnabled:       true,
		FromEmail:          "support@company.com",
		TechTeamEmail:      "technical-team@company.com",
		ManagementEnabled:  true,
		ManagementTopicARN: "",
		ReportIndex:        "customer-reports",
		Timeout:            30 * time.Second,
	}
}
