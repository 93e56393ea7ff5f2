// internal/workers/infrastructure/send-rejection/config.go
package sendrejection

import "time"

type Config struct {
	EmailEnabled      bool
	EscalationEnabled bool
	FromEmail         string
	ToEmail           string
	TopicARN          string
	AWSRegion         string
	// EscalateCodes are the rejection codes also published to the topic.
	EscalateCodes []string
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:     "us-east-1",
		EscalateCodes: []string{"COMPLIANCE_ERROR", "ID_COLLISION_EXHAUSTED"},
		Timeout:       30 * time.Second,
	}
}
