// internal/workers/award/allocate-id/config.go
package allocateid

import "time"

type Config struct {
	MaxCollisionAttempts int
	// KeyPrefix namespaces the counter hash and the batch lock in Redis.
	KeyPrefix string
	LockTTL   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxCollisionAttempts: 1000,
		KeyPrefix:            "awards",
		LockTTL:              10 * time.Minute,
	}
}
