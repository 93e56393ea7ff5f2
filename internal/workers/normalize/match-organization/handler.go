// internal/workers/normalize/match-organization/handler.go
package matchorganization

import (
	"context"
	"strings"

	"github.com/cinematicsodium/awards/internal/common/logger"
)

const (
	TaskType = "match-organization"
)

type Handler struct {
	config   *Config
	taxonomy *Taxonomy
	logger   logger.Logger
}

func NewHandler(config *Config, taxonomy *Taxonomy, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		taxonomy: taxonomy,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	perField := make([]Match, len(input.Values))
	for i, v := range input.Values {
		perField[i] = h.taxonomy.Match(v)
	}
	best := Elect(perField)
	mgmt := ElectDivision(perField, h.config.ManagementOrg)

	h.logger.Debug("organization matched", map[string]interface{}{
		"fields":             len(input.Values),
		"organization":       best.Organization,
		"division":           best.Division,
		"managementDivision": mgmt,
	})

	return &Output{Match: best, PerField: perField, ManagementDivision: mgmt}, nil
}

// Match returns the first organization+division match in taxonomy order. A
// division match implies its parent. Without any division match the first
// organization-level match is returned.
//
// A division whose normalized name equals the input wins before any
// containment test, so "NA-12" is not claimed by "NA-121.2".
func (t *Taxonomy) Match(value string) Match {
	input := NormalizeOrg(value)
	if input == "" {
		return Match{}
	}

	for _, org := range t.Organizations {
		for _, div := range org.Divisions {
			if div.key == input {
				return Match{Organization: org.Name, Division: div.Name}
			}
		}
	}

	var orgOnly Match
	for _, org := range t.Organizations {
		if !orgOnly.Found() && org.matches(input) {
			orgOnly = Match{Organization: org.Name}
		}
		for _, div := range org.Divisions {
			if contains(div.key, input) {
				return Match{Organization: org.Name, Division: div.Name}
			}
		}
	}
	return orgOnly
}

func (o Organization) matches(input string) bool {
	if contains(o.key, input) {
		return true
	}
	return o.abbreviation != "" && contains(o.abbreviation, input)
}

// contains tests substring containment in either direction.
func contains(key, input string) bool {
	if key == "" || input == "" {
		return false
	}
	return strings.Contains(input, key) || strings.Contains(key, input)
}

// Elect picks the most frequent organization among per-field matches. Ties
// go to the organization seen first. The division is the first one reported
// for the winning organization.
func Elect(matches []Match) Match {
	counts := make(map[string]int)
	var order []string
	for _, m := range matches {
		if !m.Found() {
			continue
		}
		if counts[m.Organization] == 0 {
			order = append(order, m.Organization)
		}
		counts[m.Organization]++
	}

	var winner string
	for _, org := range order {
		if counts[org] > counts[winner] {
			winner = org
		}
	}
	if winner == "" {
		return Match{}
	}

	best := Match{Organization: winner}
	for _, m := range matches {
		if m.Organization == winner && m.Division != "" {
			best.Division = m.Division
			break
		}
	}
	return best
}

// ElectDivision returns the most frequent division among matches under org,
// compared after NormalizeOrg. Ties go to the division seen first.
func ElectDivision(matches []Match, org string) string {
	key := NormalizeOrg(org)
	if key == "" {
		return ""
	}
	var divisions []Match
	for _, m := range matches {
		if m.Division != "" && NormalizeOrg(m.Organization) == key {
			divisions = append(divisions, Match{Organization: m.Division})
		}
	}
	return Elect(divisions).Organization
}

// MatchFields runs Match per value and elects the funding organization.
func (t *Taxonomy) MatchFields(values []string) Match {
	matches := make([]Match, len(values))
	for i, v := range values {
		matches[i] = t.Match(v)
	}
	return Elect(matches)
}
