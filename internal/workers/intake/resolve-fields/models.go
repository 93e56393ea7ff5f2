// internal/workers/intake/resolve-fields/models.go
package resolvefields

import (
	"github.com/cinematicsodium/awards/internal/models"
	"github.com/cinematicsodium/awards/pkg/registry"
)

type Input struct {
	Fields  models.RawFieldMap `json:"fields"`
	Variant models.FormVariant `json:"variant"`
}

// Amounts are the raw SAS and OTS award components before the
// max-of-nonzero rule is applied.
type Amounts struct {
	SASMonetary int `json:"sas_monetary"`
	SASHours    int `json:"sas_hours"`
	OTSMonetary int `json:"ots_monetary"`
	OTSHours    int `json:"ots_hours"`
}

type Output struct {
	Revision string `json:"revision"`
	External bool   `json:"external"`
	// Fields holds every single-valued role that resolved to a value.
	Fields map[registry.FieldRole]string `json:"fields"`
	// FundingOrg is preset only for external-agency forms.
	FundingOrg string           `json:"funding_org,omitempty"`
	Amounts    Amounts          `json:"amounts"`
	Monetary   int              `json:"monetary"`
	Hours      int              `json:"hours"`
	AwardType  models.AwardType `json:"award_type"`
	Value      models.Value     `json:"value"`
	Extent     models.Extent    `json:"extent"`
	// ValueSelections and ExtentSelections list every ticked option, so a
	// multi-select can be reported.
	ValueSelections  []string `json:"value_selections,omitempty"`
	ExtentSelections []string `json:"extent_selections,omitempty"`
}

// Field returns a resolved role value or "".
func (o *Output) Field(role registry.FieldRole) string {
	return o.Fields[role]
}

// individualRoles are resolved across the whole individual form.
var individualRoles = []registry.FieldRole{
	registry.RoleNomineeName,
	registry.RoleNomineeOrg,
	registry.RolePayPlan,
	registry.RoleSupervisorName,
	registry.RoleSupervisorOrg,
	registry.RoleNominatorName,
	registry.RoleNominatorOrg,
	registry.RoleCertifierName,
	registry.RoleCertifierOrg,
	registry.RoleApproverName,
	registry.RoleApproverOrg,
	registry.RoleFundingString,
	registry.RoleJustification,
	registry.RoleDateReceived,
}

// groupRoles are resolved from the outer pages of a group form; nominee
// rows come from the slot templates instead.
var groupRoles = []registry.FieldRole{
	registry.RoleGroupName,
	registry.RoleNominatorName,
	registry.RoleNominatorOrg,
	registry.RoleCertifierName,
	registry.RoleCertifierOrg,
	registry.RoleApproverName,
	registry.RoleApproverOrg,
	registry.RoleFundingString,
	registry.RoleJustification,
	registry.RoleDateReceived,
}
