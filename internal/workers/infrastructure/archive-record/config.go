// internal/workers/infrastructure/archive-record/config.go
package archiverecord

import "time"

type Config struct {
	Table        string
	IndexRecords bool
	IndexName    string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Table:     "award_archive",
		IndexName: "awards",
		Timeout:   10 * time.Second,
	}
}
