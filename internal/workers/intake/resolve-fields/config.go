// internal/workers/intake/resolve-fields/config.go
package resolvefields

type Config struct {
	// ExternalAgency is the funding organization code recorded for
	// external-agency forms, which carry no funding block.
	ExternalAgency string
	// CheckedValue is the export value of a ticked checkbox.
	CheckedValue string
}

func LoadConfig() *Config {
	return &Config{
		ExternalAgency: "DOE",
		CheckedValue:   "on",
	}
}
