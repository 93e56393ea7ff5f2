// internal/workers/intake/classify-form/models.go
package classifyform

import "github.com/cinematicsodium/awards/internal/models"

type Input struct {
	PageCount int `json:"pageCount"`
	// Keys is the raw key set of the submission; the first page alone is
	// enough for individual forms, group forms need the nominee pages.
	Keys            []string `json:"keys"`
	ValidFieldCount int      `json:"validFieldCount"`
}

type Output struct {
	Variant  models.FormVariant `json:"variant"`
	Category models.Category    `json:"category"`
}

// variantsByPageCount is the page-count rule. It is final: every later
// field-mapping decision follows from it.
var variantsByPageCount = map[int]models.FormVariant{
	2: models.VariantIND,
	3: models.VariantGRPMax7,
	4: models.VariantGRPMax14,
	5: models.VariantGRPMax21,
}
