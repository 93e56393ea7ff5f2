// internal/workers/award/evaluate-compensation/models.go
package evaluatecompensation

import "github.com/cinematicsodium/awards/internal/models"

// MonetaryMatrix and HoursMatrix are indexed [value][extent] in the order
// of models.Values and models.Extents.
var (
	MonetaryMatrix = [3][3]int{
		{500, 1000, 3000},
		{1000, 3000, 6000},
		{3000, 6000, 10000},
	}
	HoursMatrix = [3][3]int{
		{9, 18, 27},
		{18, 27, 36},
		{27, 36, 40},
	}
)

// Limits returns the monetary and hours limits for a value and extent. ok is
// false when either rating is unresolved.
func Limits(v models.Value, e models.Extent) (monetary, hours int, ok bool) {
	vi, ei := v.Index(), e.Index()
	if vi < 0 || ei < 0 {
		return 0, 0, false
	}
	return MonetaryMatrix[vi][ei], HoursMatrix[vi][ei], true
}

type Input struct {
	Category  models.Category   `json:"category"`
	Value     models.Value      `json:"value"`
	Extent    models.Extent     `json:"extent"`
	Employees []models.Employee `json:"employees"`
}

type Output struct {
	// Skipped is set when value or extent is unresolved; no limit applies.
	Skipped       bool    `json:"skipped"`
	MonetaryLimit int     `json:"monetaryLimit,omitempty"`
	HoursLimit    int     `json:"hoursLimit,omitempty"`
	MonetarySum   int     `json:"monetarySum"`
	HoursSum      int     `json:"hoursSum"`
	CombinedRatio float64 `json:"combinedRatio"`
}

type NomineeLine struct {
	Name          string  `json:"name"`
	Monetary      int     `json:"monetary"`
	Hours         int     `json:"hours"`
	MonetaryRatio float64 `json:"monetaryRatio"`
	HoursRatio    float64 `json:"hoursRatio"`
}

type Totals struct {
	Monetary      int     `json:"monetary"`
	Hours         int     `json:"hours"`
	MonetaryRatio float64 `json:"monetaryRatio"`
	HoursRatio    float64 `json:"hoursRatio"`
}

// ComplianceReport is the structured over-limit payload. Its rendered text
// is the rejection message sent back to the submitter.
type ComplianceReport struct {
	Category      models.Category `json:"category"`
	Value         models.Value    `json:"value"`
	Extent        models.Extent   `json:"extent"`
	MonetaryLimit int             `json:"monetaryLimit"`
	HoursLimit    int             `json:"hoursLimit"`
	Lines         []NomineeLine   `json:"lines"`
	// Totals is set for group awards only.
	Totals        *Totals `json:"totals,omitempty"`
	CombinedRatio float64 `json:"combinedRatio"`
	Policy        string  `json:"policy"`
}
