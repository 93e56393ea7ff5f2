// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRegistry reads a JSON field registry. An empty path returns the
// built-in registry.
func LoadRegistry(path string) (*FieldRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg FieldRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks the structural rules the resolver relies on.
func (r *FieldRegistry) Validate() error {
	if len(r.Revisions) == 0 {
		return fmt.Errorf("no revisions declared")
	}
	if len(r.ValueOptions) != 3 || len(r.ExtentOptions) != 3 {
		return fmt.Errorf("value and extent must declare exactly three options each")
	}
	for name, tmpl := range r.Templates {
		if len(tmpl.Slots) == 0 {
			return fmt.Errorf("template %s has no slots", name)
		}
		for _, p := range tmpl.Placeholders {
			if p < 0 || p >= len(tmpl.Slots) {
				return fmt.Errorf("template %s placeholder %d out of range", name, p)
			}
		}
	}
	return nil
}

// Rule returns the rule for role in rev, falling back to the common table.
func (r *FieldRegistry) Rule(rev *Revision, role FieldRole) (FieldRule, bool) {
	if rev != nil {
		if rule, ok := rev.Fields[role]; ok {
			return rule, true
		}
	}
	rule, ok := r.Common[role]
	return rule, ok
}

// DetectRevision selects the revision with the most marker keys present.
// Ties go to the earlier declared revision; with no markers at all the
// first revision is used.
func (r *FieldRegistry) DetectRevision(has func(key string) bool) *Revision {
	best, bestScore := 0, 0
	for i := range r.Revisions {
		score := 0
		for _, m := range r.Revisions[i].Markers {
			if has(m) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return &r.Revisions[best]
}

// Template returns the nominee-slot template of a group variant.
func (r *FieldRegistry) Template(variant string) (SlotTemplate, bool) {
	t, ok := r.Templates[variant]
	return t, ok
}
