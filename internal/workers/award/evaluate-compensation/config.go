// internal/workers/award/evaluate-compensation/config.go
package evaluatecompensation

type Config struct {
	// PolicyReference is printed in every over-limit alert.
	PolicyReference string
}

func LoadConfig() *Config {
	return &Config{
		PolicyReference: "# Insert_NAP_Policy",
	}
}
