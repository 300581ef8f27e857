// internal/workers/customer-service/analyze-issue/config.go
package analyzeissue

import "time"

type Config struct {
	AnalysisCacheTTL time.Duration
	MaxDescription   int
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AnalysisCacheTTL: 1 * time.Hour,
		MaxDescription:   5000,
		Timeout:          30 * time.Second,
	}
}
