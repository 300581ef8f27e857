// internal/workers/customer-service/collect-customer-data/config.go
package collectcustomerdata

import "time"

type Config struct {
	ProfileCacheTTL time.Duration
	HistoryLimit    int32
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ProfileCacheTTL: 1 * time.Hour,
		HistoryLimit:    5,
		Timeout:         30 * time.Second,
	}
}
