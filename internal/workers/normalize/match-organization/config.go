// internal/workers/normalize/match-organization/config.go
package matchorganization

const DefaultManagementOrg = "Management and Budget (NA-MB)"

type Config struct {
	// ManagementOrg is the organization whose divisions are elected into
	// Output.ManagementDivision.
	ManagementOrg string
}

func LoadConfig() *Config {
	return &Config{ManagementOrg: DefaultManagementOrg}
}
