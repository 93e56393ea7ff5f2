// internal/workers/award/aggregate-employees/models.go
package aggregateemployees

import "github.com/cinematicsodium/awards/internal/models"

// UnrecognizedPayPlan marks pay-plan text that matched no known code.
const UnrecognizedPayPlan = "-"

type Input struct {
	Variant models.FormVariant `json:"variant"`
	// Fields supplies the nominee rows of group forms.
	Fields models.RawFieldMap `json:"fields"`
	// Individual carries the resolved nominee of an individual form.
	Individual    *Individual `json:"individual,omitempty"`
	NominatorName string      `json:"nominatorName"`
}

// Individual is the resolver's view of the single nominee.
type Individual struct {
	Name           string           `json:"name"`
	Organization   string           `json:"organization"`
	PayPlan        string           `json:"payPlan"`
	SupervisorName string           `json:"supervisorName"`
	Monetary       int              `json:"monetary"`
	Hours          int              `json:"hours"`
	AwardType      models.AwardType `json:"awardType"`
}

type Output struct {
	AwardType models.AwardType  `json:"awardType"`
	Employee  *models.Employee  `json:"employee,omitempty"`
	Employees []models.Employee `json:"employees,omitempty"`
}
