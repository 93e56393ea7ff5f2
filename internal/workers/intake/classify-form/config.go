// internal/workers/intake/classify-form/config.go
package classifyform

type Config struct {
	// MinFieldCount is the number of valid fields a submission must exceed
	// to be considered a filled-in form.
	MinFieldCount int
}

func LoadConfig() *Config {
	return &Config{
		MinFieldCount: 10,
	}
}
