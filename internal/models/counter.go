// internal/models/counter.go
package models

import (
	"fmt"
	"time"
)

// SerialCounter holds the next serial to try for each category. It is a
// plain value: callers load it once per batch, pass it to the allocator and
// persist it only after a record has been archived.
type SerialCounter struct {
	IND int `json:"ind"`
	GRP int `json:"grp"`
}

// Next returns the next serial to try for the category. Serials start at 1.
func (c SerialCounter) Next(cat Category) int {
	var n int
	switch cat {
	case CategoryIND:
		n = c.IND
	case CategoryGRP:
		n = c.GRP
	}
	if n < 1 {
		return 1
	}
	return n
}

// Advance returns a copy of the counter whose next serial for cat is
// serial+1. It never moves a counter backwards.
func (c SerialCounter) Advance(cat Category, serial int) SerialCounter {
	next := serial + 1
	switch cat {
	case CategoryIND:
		if next > c.IND {
			c.IND = next
		}
	case CategoryGRP:
		if next > c.GRP {
			c.GRP = next
		}
	}
	return c
}

// FiscalYear returns the federal fiscal year of t (October through
// September).
func FiscalYear(t time.Time) int {
	if t.Month() >= time.October {
		return t.Year() + 1
	}
	return t.Year()
}

// FiscalYearSuffix returns the two-digit fiscal year used in log ids.
func FiscalYearSuffix(t time.Time) string {
	return fmt.Sprintf("%02d", FiscalYear(t)%100)
}

// FormatLogID builds "{fy}-{CAT}-{serial:03d}".
func FormatLogID(fy string, cat Category, serial int) string {
	return fmt.Sprintf("%s-%s-%03d", fy, cat, serial)
}
