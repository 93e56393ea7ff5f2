// internal/workers/award/aggregate-employees/config.go
package aggregateemployees

type Config struct {
	// BlankMarker is text submitters type into unused nominee rows.
	BlankMarker string
	// IneligiblePayPlans may not receive individual awards.
	IneligiblePayPlans []string
}

func LoadConfig() *Config {
	return &Config{
		BlankMarker:        "left blank",
		IneligiblePayPlans: []string{"ES"},
	}
}
