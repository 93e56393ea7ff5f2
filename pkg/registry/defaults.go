// pkg/registry/defaults.go
package registry

import "fmt"

// Default returns the built-in field registry covering the 2019 and 2023
// form revisions, the external-agency layout and the three group layouts.
func Default() *FieldRegistry {
	max14 := max14Slots()
	return &FieldRegistry{
		Version: "2024.1",
		Common: map[FieldRole]FieldRule{
			RoleNomineeName:   {Keys: []string{"employee name"}},
			RoleNomineeOrg:    {Keys: []string{"organization"}},
			RolePayPlan:       {Keys: []string{"pay plan gradestep 1", "pay plan gradestep"}},
			RoleGroupName:     {Keys: []string{"group name", "employee name"}},
			RoleFundingString: {Keys: []string{"special act award funding string 1"}},
			RoleCertifierName: {Keys: []string{"special act award funding string 2"}},
			RoleCertifierOrg:  {Keys: []string{"org_2"}},
			RoleDateReceived:  {Keys: []string{"date received"}},
		},
		Revisions: []Revision{
			{
				Name:    "2019",
				Markers: []string{"please print", "please print_2", "please print_3", "undefined", "on the spot award", "org_4"},
				Fields: map[FieldRole]FieldRule{
					RoleSASMonetary:    {Keys: []string{"undefined"}},
					RoleSASHours:       {Keys: []string{"hours_2"}},
					RoleOTSMonetary:    {Keys: []string{"on the spot award"}},
					RoleOTSHours:       {Keys: []string{"hours"}},
					RoleNominatorName:  {Keys: []string{"please print"}},
					RoleNominatorOrg:   {Keys: []string{"org"}},
					RoleSupervisorName: {Keys: []string{"please print_2"}},
					RoleSupervisorOrg:  {Keys: []string{"org_3"}},
					RoleApproverName:   {Keys: []string{"please print_3"}},
					RoleApproverOrg:    {Keys: []string{"org_4"}},
					RoleJustification:  {Keys: []string{"extent of application"}},
				},
			},
			{
				Name: "2023",
				Markers: []string{
					"nominators name", "a nominees team leadersupervisor 1", "approving officialdesignee 1",
					"amount", "amount_2", "organization_5",
				},
				Fields: map[FieldRole]FieldRule{
					RoleSASMonetary:    {Keys: []string{"amount"}},
					RoleSASHours:       {Keys: []string{"hours"}},
					RoleOTSMonetary:    {Keys: []string{"amount_2"}},
					RoleOTSHours:       {Keys: []string{"undefined_2", "hours_2"}},
					RoleNominatorName:  {Keys: []string{"nominators name"}},
					RoleNominatorOrg:   {Keys: []string{"organization_2"}},
					RoleSupervisorName: {Keys: []string{"a nominees team leadersupervisor 1"}},
					RoleSupervisorOrg:  {Keys: []string{"organization_3"}},
					RoleApproverName:   {Keys: []string{"approving officialdesignee 1"}},
					RoleApproverOrg:    {Keys: []string{"organization_5"}},
					RoleJustification:  {Keys: []string{"extent of application limited extended or general"}},
				},
			},
			{
				Name: "external",
				Markers: []string{
					"employee's name", "position title series and grade", "special act amount first page",
					"on the spot amount first page", "hours first page", "section 1 justification",
				},
				External: true,
				Fields: map[FieldRole]FieldRule{
					RoleNomineeName:   {Keys: []string{"employee's name"}},
					RolePayPlan:       {Keys: []string{"position title series and grade"}},
					RoleSASMonetary:   {Keys: []string{"special act amount first page"}},
					RoleOTSMonetary:   {Keys: []string{"on the spot amount first page"}},
					RoleSharedHours:   {Keys: []string{"hours first page"}},
					RoleOTSCheckbox:   {Keys: []string{"on-the-spot award checkbox"}},
					RoleJustification: {Keys: []string{"section 1 justification", "section 1 ots justification"}, Longest: true},
				},
				Defaults: map[FieldRole]string{
					RoleNominatorName:  "--",
					RoleSupervisorName: "--",
					RoleApproverName:   "--",
				},
			},
		},
		Templates: map[string]SlotTemplate{
			"GRP_MAX7":  {Slots: max14[:7]},
			"GRP_MAX14": {Slots: max14},
			"GRP_MAX21": {Slots: max21Slots(), Placeholders: []int{13, 14}},
		},
		ValueOptions:    []string{"moderate", "high", "exceptional"},
		ExtentOptions:   []string{"limited", "extended", "general"},
		FundingOrgRoles: []FieldRole{RoleNominatorOrg, RoleCertifierOrg, RoleApproverOrg},
		PayPlans:        []string{"ED", "EN", "ES", "NQ", "SL"},
	}
}

// suffixed returns base for n == 1 and base_n otherwise, the naming the PDF
// forms use for repeated widgets.
func suffixed(base string, n int) string {
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// max14Slots is the 14-row layout; its first seven rows are the 7-row form.
func max14Slots() []Slot {
	slots := make([]Slot, 14)
	for i := range slots {
		row := i + 1
		slots[i] = Slot{
			Name:         fmt.Sprintf("employee name_%d", row+1),
			Supervisor:   suffixed("immediate supervisor", row),
			Organization: fmt.Sprintf("organization_%d", row+6),
			PayPlan:      fmt.Sprintf("pay plan gradestep_%d", row+1),
			Monetary:     suffixed("award amount", row),
			Hours:        suffixed("time off hours", row),
		}
	}
	return slots
}

func max21Slots() []Slot {
	slots := make([]Slot, 21)
	for i := range slots {
		row := i + 1
		slots[i] = Slot{
			Name:         fmt.Sprintf("employee name_%d", row),
			Supervisor:   suffixed("immediate supervisor", row),
			Organization: fmt.Sprintf("organization_%d", row),
			PayPlan:      fmt.Sprintf("pay plan gradestep_%d", row),
			Monetary:     suffixed("award amount", row),
			Hours:        suffixed("time off hours", row),
		}
	}
	return slots
}
