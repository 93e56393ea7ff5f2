// internal/models/fields.go
package models

import (
	"sort"
	"strings"
)

// Region identifies the page region a raw field was extracted from.
type Region string

const (
	RegionFirst Region = "first"
	RegionMid   Region = "mid"
	RegionLast  Region = "last"
	RegionAll   Region = "all"
	// RegionOuter is the first and last page without the nominee pages.
	RegionOuter Region = "outer"
)

// RawFieldMap is the per-submission output of the PDF extraction step.
// Keys are expected to be normalized with NormalizeKey. The engine reads it
// but never writes to it.
type RawFieldMap struct {
	Source    string            `json:"source"`
	PageCount int               `json:"page_count"`
	FirstPage map[string]string `json:"first_page"`
	MidPages  map[string]string `json:"mid_pages"`
	LastPage  map[string]string `json:"last_page"`
}

// NormalizeKey lower-cases a raw widget name and collapses internal whitespace.
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}

// IsValidField reports whether a raw value carries data: non-blank and not
// the "off" state of an unchecked checkbox.
func IsValidField(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, "off")
}

// Normalized returns a copy of the map with every key normalized. When two
// raw keys collapse to the same normalized key the valid value wins.
func (m RawFieldMap) Normalized() RawFieldMap {
	return RawFieldMap{
		Source:    m.Source,
		PageCount: m.PageCount,
		FirstPage: normalizeRegion(m.FirstPage),
		MidPages:  normalizeRegion(m.MidPages),
		LastPage:  normalizeRegion(m.LastPage),
	}
}

func normalizeRegion(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for _, k := range sortedKeys(in) {
		nk := NormalizeKey(k)
		if existing, ok := out[nk]; ok && IsValidField(existing) {
			continue
		}
		out[nk] = in[k]
	}
	return out
}

// Region returns the fields of a single region. RegionAll and RegionOuter
// merge regions; on key collisions the first page wins over the last page,
// which wins over the middle pages.
func (m RawFieldMap) Region(r Region) map[string]string {
	var merge []map[string]string
	switch r {
	case RegionFirst:
		return m.FirstPage
	case RegionMid:
		return m.MidPages
	case RegionLast:
		return m.LastPage
	case RegionOuter:
		merge = []map[string]string{m.LastPage, m.FirstPage}
	default:
		merge = []map[string]string{m.MidPages, m.LastPage, m.FirstPage}
	}
	all := make(map[string]string, len(m.FirstPage)+len(m.MidPages)+len(m.LastPage))
	for _, region := range merge {
		for k, v := range region {
			if existing, ok := all[k]; ok && IsValidField(existing) && !IsValidField(v) {
				continue
			}
			all[k] = v
		}
	}
	return all
}

// ValidFieldCount counts fields across all regions that pass IsValidField.
func (m RawFieldMap) ValidFieldCount() int {
	n := 0
	for _, region := range []map[string]string{m.FirstPage, m.MidPages, m.LastPage} {
		for _, v := range region {
			if IsValidField(v) {
				n++
			}
		}
	}
	return n
}

// Keys returns the sorted key set of region r.
func (m RawFieldMap) Keys(r Region) []string {
	return sortedKeys(m.Region(r))
}

func sortedKeys(in map[string]string) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
