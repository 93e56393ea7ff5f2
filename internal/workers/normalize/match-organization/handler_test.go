// internal/workers/normalize/match-organization/handler_test.go
package matchorganization

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cinematicsodium/awards/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Taxonomy Tests
// ==========================

func TestDefaultTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()
	require.NotEmpty(t, tax.Organizations)

	na10 := tax.Organizations[0]
	assert.Equal(t, "NA-10", na10.Name)
	assert.Equal(t, "NA-16", na10.Divisions[0].Name, "later declarations are checked first")
	assert.Equal(t, "NA-11", na10.Divisions[len(na10.Divisions)-1].Name)
}

func TestParseTaxonomy_ScalarAndMappingDivisions(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(`
organizations:
  - name: ORG-A
    divisions:
      - name: A-1
        specificity: 5
      - A-1.2
`))
	require.NoError(t, err)
	divs := tax.Organizations[0].Divisions
	require.Len(t, divs, 2)
	assert.Equal(t, "A-1", divs[0].Name, "explicit specificity overrides declaration order")
	assert.Equal(t, 5, divs[0].Specificity)
	assert.Equal(t, "A-1.2", divs[1].Name)

	assert.Equal(t, Match{Organization: "ORG-A", Division: "A-1"}, tax.Match("A-1.2 Logistics"))
}

func TestParseTaxonomy_Invalid(t *testing.T) {
	_, err := ParseTaxonomy([]byte(`organizations: []`))
	assert.Error(t, err)

	_, err = ParseTaxonomy([]byte(`organizations: [{divisions: [A]}]`))
	assert.Error(t, err)

	_, err = ParseTaxonomy([]byte(`organizations: {`))
	assert.Error(t, err)
}

func TestLoadTaxonomy(t *testing.T) {
	t.Run("empty path uses the embedded default", func(t *testing.T) {
		tax, err := LoadTaxonomy("")
		require.NoError(t, err)
		assert.Equal(t, "2024.1", tax.Version)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taxonomy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("organizations:\n  - name: X-1\n    divisions: [X-11]\n"), 0o600))

		tax, err := LoadTaxonomy(path)
		require.NoError(t, err)
		assert.Equal(t, Match{Organization: "X-1", Division: "X-11"}, tax.Match("x 11"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestNormalizeOrg(t *testing.T) {
	assert.Equal(t, "na10", NormalizeOrg("NA-10"))
	assert.Equal(t, "na10", NormalizeOrg("na 10"))
	assert.Equal(t, "na121.2budgetoffice", NormalizeOrg("NA-121.2 Budget Office"))
	assert.Equal(t, "oficina", NormalizeOrg("Oficína"))
	assert.Empty(t, NormalizeOrg(" - "))
}

// ==========================
// Matching Tests
// ==========================

func TestTaxonomy_Match(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name     string
		input    string
		expected Match
	}{
		{"division implies parent", "NA-121.2 Budget Office", Match{"NA-10", "NA-121.2"}},
		{"exact division beats longer containment", "NA-12", Match{"NA-10", "NA-12"}},
		{"organization only", "NA-20", Match{Organization: "NA-20"}},
		{"spacing variant", "na 20 front office", Match{Organization: "NA-20"}},
		{"division of another organization", "NA-72 Field Support", Match{"NA-70", "NA-72"}},
		{"parenthetical abbreviation", "NA-KC Operations", Match{Organization: "Kansas City Field Office (NA-KC)"}},
		{"input inside organization name", "Kansas City", Match{Organization: "Kansas City Field Office (NA-KC)"}},
		{"division under abbreviated organization", "KC-2 Facilities", Match{"Kansas City Field Office (NA-KC)", "KC-2"}},
		{"explicit specificity", "MB-30.1 Payroll", Match{"Management and Budget (NA-MB)", "MB-30.1"}},
		{"no match", "Department of Nothing", Match{}},
		{"blank", "  ", Match{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tax.Match(tt.input))
		})
	}
}

func TestElect(t *testing.T) {
	t.Run("most frequent organization wins", func(t *testing.T) {
		got := Elect([]Match{
			{Organization: "NA-20"},
			{Organization: "NA-10", Division: "NA-121.2"},
			{Organization: "NA-10"},
		})
		assert.Equal(t, Match{"NA-10", "NA-121.2"}, got)
	})

	t.Run("ties go to the first field", func(t *testing.T) {
		got := Elect([]Match{{}, {Organization: "NA-20"}, {Organization: "NA-10"}})
		assert.Equal(t, Match{Organization: "NA-20"}, got)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.False(t, Elect([]Match{{}, {}}).Found())
		assert.False(t, Elect(nil).Found())
	})
}

func TestElectDivision(t *testing.T) {
	mb := DefaultManagementOrg

	tests := []struct {
		name     string
		matches  []Match
		org      string
		expected string
	}{
		{"most frequent division", []Match{{mb, "MB-20"}, {mb, "MB-30"}, {mb, "MB-30"}}, mb, "MB-30"},
		{"ties go to the first field", []Match{{mb, "MB-20"}, {mb, "MB-30"}}, mb, "MB-20"},
		{"other organizations ignored", []Match{{"NA-10", "NA-12"}, {"NA-10", "NA-12"}, {mb, "MB-10"}}, mb, "MB-10"},
		{"organization level match only", []Match{{Organization: mb}}, mb, ""},
		{"organization compared normalized", []Match{{mb, "MB-10"}}, "management and budget na mb", "MB-10"},
		{"no management organization configured", []Match{{mb, "MB-10"}}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElectDivision(tt.matches, tt.org))
		})
	}
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), DefaultTaxonomy(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{
		Values: []string{"NA-20", "NA-121.2 Budget Office", "", "NA-10"},
	})
	require.NoError(t, err)
	assert.Equal(t, Match{"NA-10", "NA-121.2"}, out.Match)
	require.Len(t, out.PerField, 4)
	assert.False(t, out.PerField[2].Found())
}

func TestHandler_Execute_ManagementDivision(t *testing.T) {
	h := NewHandler(LoadConfig(), DefaultTaxonomy(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{
		Values: []string{"NA-10", "NA-121.2", "MB-30 Planning", "NA-10 Front Office"},
	})
	require.NoError(t, err)
	assert.Equal(t, Match{"NA-10", "NA-121.2"}, out.Match)
	assert.Equal(t, "MB-30", out.ManagementDivision)

	out, err = h.Execute(context.Background(), &Input{Values: []string{"NA-20"}})
	require.NoError(t, err)
	assert.Empty(t, out.ManagementDivision)
}
