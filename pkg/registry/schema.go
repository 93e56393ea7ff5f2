// pkg/registry/schema.go
package registry

// FieldRole is a canonical semantic field of a nomination form.
type FieldRole string

const (
	RoleNomineeName    FieldRole = "nominee_name"
	RoleNomineeOrg     FieldRole = "nominee_org"
	RolePayPlan        FieldRole = "pay_plan"
	RoleGroupName      FieldRole = "group_name"
	RoleSupervisorName FieldRole = "supervisor_name"
	RoleSupervisorOrg  FieldRole = "supervisor_org"
	RoleNominatorName  FieldRole = "nominator_name"
	RoleNominatorOrg   FieldRole = "nominator_org"
	RoleCertifierName  FieldRole = "certifier_name"
	RoleCertifierOrg   FieldRole = "certifier_org"
	RoleApproverName   FieldRole = "approver_name"
	RoleApproverOrg    FieldRole = "approver_org"
	RoleFundingString  FieldRole = "funding_string"
	RoleJustification  FieldRole = "justification"
	RoleDateReceived   FieldRole = "date_received"
	RoleSASMonetary    FieldRole = "sas_monetary"
	RoleSASHours       FieldRole = "sas_hours"
	RoleOTSMonetary    FieldRole = "ots_monetary"
	RoleOTSHours       FieldRole = "ots_hours"
	// RoleSharedHours is a single hours field whose sub-type is decided by
	// RoleOTSCheckbox or a nonzero OTS monetary amount.
	RoleSharedHours FieldRole = "shared_hours"
	RoleOTSCheckbox FieldRole = "ots_checkbox"
)

// FieldRule lists the raw keys that may carry a role, in priority order.
type FieldRule struct {
	Keys []string `json:"keys"`
	// Longest picks the longest valid value instead of the first one.
	Longest bool `json:"longest,omitempty"`
}

// Revision is one historical naming revision of the form family.
type Revision struct {
	Name string `json:"name"`
	// Markers are raw keys that only this revision uses; the revision with
	// the most markers present is selected.
	Markers []string `json:"markers"`
	// External marks the external-agency layout, whose funding organization
	// and signature blocks are not part of the form.
	External bool                    `json:"external,omitempty"`
	Fields   map[FieldRole]FieldRule `json:"fields"`
	// Defaults are used for roles the revision never carries.
	Defaults map[FieldRole]string `json:"defaults,omitempty"`
}

// Slot is the set of raw keys for one nominee row of a group form.
type Slot struct {
	Name         string `json:"name"`
	Supervisor   string `json:"supervisor"`
	Organization string `json:"organization"`
	PayPlan      string `json:"pay_plan"`
	Monetary     string `json:"monetary"`
	Hours        string `json:"hours"`
}

// SlotTemplate is the fixed positional nominee layout of a group variant.
type SlotTemplate struct {
	Slots []Slot `json:"slots"`
	// Placeholders are zero-based slot positions that exist on the printed
	// form but are never filled in.
	Placeholders []int `json:"placeholders,omitempty"`
}

// IsPlaceholder reports whether position i is a declared placeholder.
func (t SlotTemplate) IsPlaceholder(i int) bool {
	for _, p := range t.Placeholders {
		if p == i {
			return true
		}
	}
	return false
}

// FieldRegistry is the static field-mapping data for every form layout.
type FieldRegistry struct {
	Version   string                  `json:"version"`
	Common    map[FieldRole]FieldRule `json:"common"`
	Revisions []Revision              `json:"revisions"`
	Templates map[string]SlotTemplate `json:"templates"`
	// ValueOptions and ExtentOptions are last-page checkbox keys, in
	// ascending order.
	ValueOptions  []string `json:"value_options"`
	ExtentOptions []string `json:"extent_options"`
	// FundingOrgRoles are the organization-bearing roles whose matches vote
	// for the funding organization, in tie-break order.
	FundingOrgRoles []FieldRole `json:"funding_org_roles"`
	// PayPlans are the recognized pay-plan code prefixes.
	PayPlans []string `json:"pay_plans"`
}
