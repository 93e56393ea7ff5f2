// internal/workers/award/assemble-record/config.go
package assemblerecord

type Config struct {
	// FiscalYearSuffix overrides the fiscal year derived from the clock.
	FiscalYearSuffix string
	// Consultants maps funding organizations to HR consultants. Keys match
	// after organization normalization, so "NA-10" and "na-10" are equal.
	Consultants map[string]string
	// MonetaryHold rejects submissions carrying any monetary amount.
	MonetaryHold bool
}

func LoadConfig() *Config {
	return &Config{}
}
