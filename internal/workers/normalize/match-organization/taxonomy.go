// internal/workers/normalize/match-organization/taxonomy.go
package matchorganization

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/cinematicsodium/awards/internal/common/formatting"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

var abbreviationPattern = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)$`)

// Division is an organizational sub-unit. Higher specificity is checked
// first; zero falls back to reverse declaration order.
type Division struct {
	Name        string `yaml:"name"`
	Specificity int    `yaml:"specificity,omitempty"`

	key string
}

// UnmarshalYAML accepts a bare scalar as shorthand for {name: <scalar>}.
func (d *Division) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Name = node.Value
		return nil
	}
	type plain Division
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = Division(p)
	return nil
}

type Organization struct {
	Name      string     `yaml:"name"`
	Divisions []Division `yaml:"divisions"`

	key          string
	abbreviation string
}

type Taxonomy struct {
	Version       string         `yaml:"version"`
	Organizations []Organization `yaml:"organizations"`
}

// DefaultTaxonomy returns the embedded taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return t
}

// LoadTaxonomy reads a YAML taxonomy. An empty path returns the default.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	t, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return t, nil
}

// ParseTaxonomy decodes YAML and orders every division list by specificity.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if len(t.Organizations) == 0 {
		return nil, fmt.Errorf("no organizations declared")
	}
	for i := range t.Organizations {
		org := &t.Organizations[i]
		if strings.TrimSpace(org.Name) == "" {
			return nil, fmt.Errorf("organization %d has no name", i+1)
		}
		org.key = NormalizeOrg(org.Name)
		if m := abbreviationPattern.FindStringSubmatch(org.Name); m != nil {
			org.abbreviation = NormalizeOrg(m[2])
		}
		org.Divisions = bySpecificity(org.Divisions)
		for j := range org.Divisions {
			org.Divisions[j].key = NormalizeOrg(org.Divisions[j].Name)
		}
	}
	return &t, nil
}

// bySpecificity returns the divisions most specific first.
func bySpecificity(divs []Division) []Division {
	out := make([]Division, len(divs))
	for i := range divs {
		out[len(divs)-1-i] = divs[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Specificity > out[j].Specificity
	})
	return out
}

// NormalizeOrg folds text to lower-case ASCII letters, digits and periods,
// so "NA-10", "NA 10" and "na10" compare equal.
func NormalizeOrg(s string) string {
	s = strings.ToLower(formatting.ASCIIFold(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, s)
}
