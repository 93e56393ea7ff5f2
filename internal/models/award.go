// internal/models/award.go
package models

import "strings"

// Category is the award category encoded in the log id.
type Category string

const (
	CategoryIND Category = "IND"
	CategoryGRP Category = "GRP"
)

// FormVariant is the physical layout of a nomination form. It is determined
// once per submission by the classifier.
type FormVariant string

const (
	VariantIND       FormVariant = "IND"
	VariantGRPMax7   FormVariant = "GRP_MAX7"
	VariantGRPMax14  FormVariant = "GRP_MAX14"
	VariantGRPMax21  FormVariant = "GRP_MAX21"
	VariantUndefined FormVariant = ""
)

// Category returns IND for the individual form and GRP for every group layout.
func (v FormVariant) Category() Category {
	if v == VariantIND {
		return CategoryIND
	}
	return CategoryGRP
}

// MaxNominees is the number of nominee slots the layout provides.
func (v FormVariant) MaxNominees() int {
	switch v {
	case VariantIND:
		return 1
	case VariantGRPMax7:
		return 7
	case VariantGRPMax14:
		return 14
	case VariantGRPMax21:
		return 21
	}
	return 0
}

type AwardType string

const (
	AwardTypeSAS        AwardType = "SAS"
	AwardTypeOTS        AwardType = "OTS"
	AwardTypeUnresolved AwardType = "unresolved"
)

type Value string

const (
	ValueModerate    Value = "moderate"
	ValueHigh        Value = "high"
	ValueExceptional Value = "exceptional"
	ValueUnresolved  Value = "unresolved"
)

// Values lists the value ratings in ascending order.
var Values = []Value{ValueModerate, ValueHigh, ValueExceptional}

// Index returns the matrix row of v, or -1 when unresolved.
func (v Value) Index() int {
	for i, opt := range Values {
		if v == opt {
			return i
		}
	}
	return -1
}

func (v Value) Title() string { return titleWord(string(v)) }

type Extent string

const (
	ExtentLimited    Extent = "limited"
	ExtentExtended   Extent = "extended"
	ExtentGeneral    Extent = "general"
	ExtentUnresolved Extent = "unresolved"
)

// Extents lists the extent ratings in ascending order.
var Extents = []Extent{ExtentLimited, ExtentExtended, ExtentGeneral}

// Index returns the matrix column of e, or -1 when unresolved.
func (e Extent) Index() int {
	for i, opt := range Extents {
		if e == opt {
			return i
		}
	}
	return -1
}

func (e Extent) Title() string { return titleWord(string(e)) }

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type Status string

const (
	StatusValid    Status = "VALID"
	StatusRejected Status = "REJECTED"
)

// Employee is one nominee. It belongs to exactly one AwardRecord.
type Employee struct {
	Name           string `json:"name"`
	Organization   string `json:"organization"`
	PayPlan        string `json:"pay_plan"`
	PayPlanRaw     string `json:"pay_plan_raw,omitempty"`
	SupervisorName string `json:"supervisor_name"`
	MonetaryAmount int    `json:"monetary_amount"`
	HoursAmount    int    `json:"hours_amount"`
}

// HasAward reports whether at least one award component is nonzero.
func (e Employee) HasAward() bool {
	return e.MonetaryAmount > 0 || e.HoursAmount > 0
}

// Rejection is the typed outcome handed to the rejection-routing step.
type Rejection struct {
	Code     string                 `json:"code"`
	Category string                 `json:"category"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AwardRecord is the assembled result of one submission.
type AwardRecord struct {
	ID              string      `json:"id"`
	Source          string      `json:"source,omitempty"`
	Variant         FormVariant `json:"variant"`
	Category        Category    `json:"category"`
	AwardType       AwardType   `json:"award_type"`
	GroupName       string      `json:"group_name,omitempty"`
	NominatorName   string      `json:"nominator_name"`
	SupervisorName  string      `json:"supervisor_name,omitempty"`
	CertifierName   string      `json:"certifier_name,omitempty"`
	ApproverName    string      `json:"approver_name,omitempty"`
	FundingOrg      string      `json:"funding_org"`
	FundingDivision string      `json:"funding_division,omitempty"`
	FundingString   string      `json:"funding_string,omitempty"`
	Consultant      string      `json:"consultant,omitempty"`
	MBDivision      string      `json:"mb_division,omitempty"`
	Justification   string      `json:"justification"`
	WordCount       int         `json:"word_count"`
	Value           Value       `json:"value"`
	Extent          Extent      `json:"extent"`
	DateReceived    string      `json:"date_received"`
	Employee        *Employee   `json:"employee,omitempty"`
	Employees       []Employee  `json:"employees,omitempty"`
	Status          Status      `json:"status"`
	Rejection       *Rejection  `json:"rejection,omitempty"`
}

// Nominees returns the record's employees regardless of category.
func (r *AwardRecord) Nominees() []Employee {
	if r.Category == CategoryIND && r.Employee != nil {
		return []Employee{*r.Employee}
	}
	return r.Employees
}

// Totals sums monetary and hours amounts across all nominees.
func (r *AwardRecord) Totals() (monetary, hours int) {
	for _, e := range r.Nominees() {
		monetary += e.MonetaryAmount
		hours += e.HoursAmount
	}
	return monetary, hours
}
