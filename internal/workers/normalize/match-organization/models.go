// internal/workers/normalize/match-organization/models.go
package matchorganization

// Match is an (organization, division) pair. Both are empty when nothing
// matched; Division alone may be empty for an organization-level match.
type Match struct {
	Organization string `json:"organization"`
	Division     string `json:"division,omitempty"`
}

func (m Match) Found() bool { return m.Organization != "" }

type Input struct {
	// Values are organization-bearing field values in tie-break order.
	Values []string `json:"values"`
}

type Output struct {
	Match    Match   `json:"match"`
	PerField []Match `json:"perField"`
	// ManagementDivision is the most frequent division matched under the
	// management organization, whatever organization wins Match.
	ManagementDivision string `json:"managementDivision,omitempty"`
}
